package ripemd

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Summer feeds readers and files into States, optionally saving
// checkpoints so that interrupted streams can be resumed.
type Summer struct {
	cfg   Config
	store CheckpointStore
	meter Meter
	open  func(name string) (io.ReadCloser, error)
}

// Option configures a Summer.
type Option func(*Summer)

// WithCheckpointStore enables checkpoints in the given store.
func WithCheckpointStore(cs CheckpointStore) Option {
	return func(s *Summer) { s.store = cs }
}

// WithMeter sets the meter.
func WithMeter(m Meter) Option {
	return func(s *Summer) { s.meter = m }
}

// WithOpener sets the function SumFile uses to open names.
func WithOpener(open func(name string) (io.ReadCloser, error)) Option {
	return func(s *Summer) { s.open = open }
}

// NewSummer creates a Summer from cfg. Zero values in cfg take their
// DefaultConfig value. Without a CheckpointStore option no checkpoints
// are taken.
func NewSummer(cfg Config, opts ...Option) (*Summer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	def := DefaultConfig()
	if cfg.Encoding == "" {
		cfg.Encoding = def.Encoding
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.Workers == 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Checkpoint.Interval == 0 {
		cfg.Checkpoint.Interval = def.Checkpoint.Interval
	}

	s := &Summer{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}

	// Apply defaults after options.
	if s.meter == nil {
		s.meter = noopMeter{}
	}
	if s.open == nil {
		s.open = func(name string) (io.ReadCloser, error) { return os.Open(name) }
	}

	return s, nil
}

// Config returns the effective configuration.
func (s *Summer) Config() Config {
	return s.cfg
}

// Sum digests everything read from r. name identifies the stream in
// results, events and checkpoints.
//
// Checkpoints are only used when a checkpoint store is set and r can
// seek. A checkpoint saved earlier under name is then resumed if it was
// taken from the same content: same size, same modification time when r
// has one (an *os.File does), and the same bytes just before its offset.
// Without a modification time, an edit further back that keeps the size
// goes unnoticed. A checkpoint that does not match fails the call with
// ErrCheckpointMismatch and is deleted, so the next call starts over.
// While reading, a checkpoint is saved every Checkpoint.Interval bytes
// and once more when ctx is done or r fails. The checkpoint is deleted
// after a successful digest.
func (s *Summer) Sum(ctx context.Context, name string, r io.Reader) (Result, error) {
	runID := uuid.New().String()
	start := time.Now()

	res, err := s.sum(ctx, runID, name, r)
	res.RunID = runID
	res.Name = name
	res.Duration = time.Since(start)

	s.meter.OnSum(SumEvent{
		RunID:    runID,
		Name:     name,
		Bytes:    res.Bytes,
		Duration: res.Duration,
		Resumed:  res.Resumed,
		Digest:   res.Digest,
		Err:      err,
	})
	return res, err
}

func (s *Summer) sum(ctx context.Context, runID, name string, r io.Reader) (Result, error) {
	var res Result

	st := New()
	var src *source
	if s.store != nil {
		var err error
		if src, err = newSource(r); err != nil {
			return res, &OpError{Op: OpRead, Name: name, Err: err}
		}
	}
	if src != nil {
		restored, err := s.restore(ctx, runID, name, src)
		if err != nil {
			return res, err
		}
		if restored != nil {
			st = restored
			res.Resumed = true
		}
	}

	buf := make([]byte, s.cfg.ChunkSize)
	saved := st.Len()
	for {
		if err := ctx.Err(); err != nil {
			s.interrupted(ctx, runID, name, st, src, saved)
			res.Bytes = st.Len()
			return res, &OpError{Op: OpRead, Name: name, Offset: st.Len(), Err: err}
		}

		n, err := r.Read(buf)
		if n > 0 {
			st.Write(buf[:n])
			if src != nil {
				src.absorbed(buf[:n])
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.interrupted(ctx, runID, name, st, src, saved)
			res.Bytes = st.Len()
			return res, &OpError{Op: OpRead, Name: name, Offset: st.Len(), Err: err}
		}

		if src != nil && st.Len()-saved >= uint64(s.cfg.Checkpoint.Interval) {
			if err := s.save(ctx, runID, name, st, src); err != nil {
				res.Bytes = st.Len()
				return res, err
			}
			saved = st.Len()
		}
	}

	if src != nil {
		s.delete(ctx, runID, name, st.Len())
	}

	res.Digest = st.Checksum()
	res.Bytes = st.Len()
	return res, nil
}

// restore loads the checkpoint for name and positions src after it.
// It returns a nil State when there is nothing to resume.
func (s *Summer) restore(ctx context.Context, runID, name string, src *source) (*State, error) {
	cp, err := s.store.Load(ctx, name)
	if errors.Is(err, ErrCheckpointNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &OpError{Op: OpCheckpoint, Name: name, Err: err}
	}

	st, err := cp.Restore()
	if err == nil {
		err = src.resume(cp)
	}
	if err != nil {
		if stale(err) {
			s.delete(ctx, runID, name, cp.Offset)
		}
		return nil, &OpError{Op: OpRestore, Name: name, Offset: cp.Offset, Err: err}
	}

	s.meter.OnCheckpoint(CheckpointEvent{
		RunID:  runID,
		Name:   name,
		Offset: cp.Offset,
		Op:     CheckpointRestore,
	})
	return st, nil
}

// stale reports whether err means the checkpoint itself can never be
// resumed.
func stale(err error) bool {
	return errors.Is(err, ErrCheckpointMismatch) ||
		errors.Is(err, ErrInvalidStateIdentifier) ||
		errors.Is(err, ErrInvalidStateSize)
}

func (s *Summer) save(ctx context.Context, runID, name string, st *State, src *source) error {
	cp, err := NewCheckpoint(name, runID, st)
	if err == nil {
		cp.Source = src.identity()
		err = s.store.Save(ctx, cp)
	}
	s.meter.OnCheckpoint(CheckpointEvent{
		RunID:  runID,
		Name:   name,
		Offset: st.Len(),
		Op:     CheckpointSave,
		Err:    err,
	})
	if err != nil {
		return &OpError{Op: OpCheckpoint, Name: name, Offset: st.Len(), Err: err}
	}
	return nil
}

func (s *Summer) delete(ctx context.Context, runID, name string, offset uint64) {
	err := s.store.Delete(ctx, name)
	s.meter.OnCheckpoint(CheckpointEvent{
		RunID:  runID,
		Name:   name,
		Offset: offset,
		Op:     CheckpointDelete,
		Err:    err,
	})
}

// interrupted saves a last checkpoint for a stream that could not be
// finished. ctx may already be done, so the save runs without its
// cancellation. Failures are reported to the meter only.
func (s *Summer) interrupted(ctx context.Context, runID, name string, st *State, src *source, saved uint64) {
	if src == nil || st.Len() == saved {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	_ = s.save(ctx, runID, name, st, src)
}

// SumFile opens name and digests its content.
func (s *Summer) SumFile(ctx context.Context, name string) (Result, error) {
	f, err := s.open(name)
	if err != nil {
		return Result{Name: name}, &OpError{Op: OpOpen, Name: name, Err: err}
	}
	defer f.Close()

	return s.Sum(ctx, name, f)
}

// SumFiles digests the named files with at most Workers files in flight.
// Results are in the order of names. The first failure cancels the
// remaining files.
func (s *Summer) SumFiles(ctx context.Context, names []string) ([]Result, error) {
	results := make([]Result, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, name := range names {
		g.Go(func() error {
			res, err := s.SumFile(ctx, name)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// SumEach digests the named files like SumFiles but does not stop at a
// failure: every file is attempted and errs[i] is the error for names[i].
func (s *Summer) SumEach(ctx context.Context, names []string) ([]Result, []error) {
	results := make([]Result, len(names))
	errs := make([]error, len(names))

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i, name := range names {
		g.Go(func() error {
			results[i], errs[i] = s.SumFile(ctx, name)
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}
