package checkpoint

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ineyio/ripemd"
)

// FileStore keeps one YAML file per checkpoint in a directory, so that a
// later process can resume an interrupted stream.
type FileStore struct {
	dir string
}

var _ ripemd.CheckpointStore = (*FileStore)(nil)

type fileRecord struct {
	Name      string     `yaml:"name"`
	RunID     string     `yaml:"run_id"`
	Offset    uint64     `yaml:"offset"`
	State     string     `yaml:"state"`
	Source    fileSource `yaml:"source"`
	UpdatedAt time.Time  `yaml:"updated_at"`
}

type fileSource struct {
	Size    int64     `yaml:"size"`
	ModTime time.Time `yaml:"mod_time"`
	Tail    string    `yaml:"tail"`
}

// NewFileStore creates a FileStore in dir, creating dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ripemd/checkpoint: create dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// path maps a stream name to a file name. Names are arbitrary strings
// (usually paths), so they are digested rather than escaped.
func (s *FileStore) path(name string) string {
	sum := ripemd.Sum160([]byte(name))
	return filepath.Join(s.dir, ripemd.EncodingHex.Format(sum)+".yaml")
}

// Save writes cp to a temporary file and renames it into place.
func (s *FileStore) Save(_ context.Context, cp ripemd.Checkpoint) error {
	rec := fileRecord{
		Name:      cp.Name,
		RunID:     cp.RunID,
		Offset:    cp.Offset,
		State:     base64.StdEncoding.EncodeToString(cp.State),
		Source: fileSource{
			Size:    cp.Source.Size,
			ModTime: cp.Source.ModTime,
			Tail:    base64.StdEncoding.EncodeToString(cp.Source.Tail),
		},
		UpdatedAt: cp.UpdatedAt,
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("ripemd/checkpoint: encode: %w", err)
	}

	f, err := os.CreateTemp(s.dir, ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("ripemd/checkpoint: save: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("ripemd/checkpoint: save: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ripemd/checkpoint: save: %w", err)
	}
	if err := os.Rename(tmp, s.path(cp.Name)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ripemd/checkpoint: save: %w", err)
	}
	return nil
}

// Load reads the checkpoint saved under name.
func (s *FileStore) Load(_ context.Context, name string) (ripemd.Checkpoint, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return ripemd.Checkpoint{}, ripemd.ErrCheckpointNotFound
	}
	if err != nil {
		return ripemd.Checkpoint{}, fmt.Errorf("ripemd/checkpoint: load: %w", err)
	}

	var rec fileRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return ripemd.Checkpoint{}, fmt.Errorf("ripemd/checkpoint: decode: %w", err)
	}
	if rec.Name != name {
		return ripemd.Checkpoint{}, ripemd.ErrCheckpointNotFound
	}
	state, err := base64.StdEncoding.DecodeString(rec.State)
	if err != nil {
		return ripemd.Checkpoint{}, fmt.Errorf("ripemd/checkpoint: decode state: %w", err)
	}
	tail, err := base64.StdEncoding.DecodeString(rec.Source.Tail)
	if err != nil {
		return ripemd.Checkpoint{}, fmt.Errorf("ripemd/checkpoint: decode tail: %w", err)
	}

	return ripemd.Checkpoint{
		Name:      rec.Name,
		RunID:     rec.RunID,
		Offset:    rec.Offset,
		State:     state,
		Source: ripemd.Source{
			Size:    rec.Source.Size,
			ModTime: rec.Source.ModTime,
			Tail:    tail,
		},
		UpdatedAt: rec.UpdatedAt,
	}, nil
}

// Delete removes the checkpoint file for name.
func (s *FileStore) Delete(_ context.Context, name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("ripemd/checkpoint: delete: %w", err)
	}
	return nil
}
