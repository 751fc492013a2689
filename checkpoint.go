package ripemd

import (
	"context"
	"time"
)

// CheckpointStore persists partial digest computations so that an
// interrupted stream can be resumed.
type CheckpointStore interface {
	// Save stores cp, replacing any checkpoint with the same name.
	Save(ctx context.Context, cp Checkpoint) error

	// Load returns the checkpoint for name or ErrCheckpointNotFound.
	Load(ctx context.Context, name string) (Checkpoint, error)

	// Delete removes the checkpoint for name. Deleting a missing
	// checkpoint is not an error.
	Delete(ctx context.Context, name string) error
}

// Checkpoint is a saved State together with its position in the stream.
type Checkpoint struct {
	Name      string
	RunID     string
	Offset    uint64 // bytes absorbed into State
	State     []byte // State.MarshalBinary output
	Source    Source
	UpdatedAt time.Time
}

// Source identifies the content a checkpoint was taken from. A checkpoint
// is only resumed on a stream whose Source still matches.
type Source struct {
	Size    int64     // stream size in bytes
	ModTime time.Time // zero when the stream has no modification time
	Tail    []byte    // last bytes absorbed before Offset
}

// NewCheckpoint captures s as a checkpoint for name.
func NewCheckpoint(name, runID string, s *State) (Checkpoint, error) {
	state, err := s.MarshalBinary()
	if err != nil {
		return Checkpoint{}, err
	}
	return Checkpoint{
		Name:      name,
		RunID:     runID,
		Offset:    s.Len(),
		State:     state,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// Restore decodes the saved state. The state must agree with Offset.
func (cp Checkpoint) Restore() (*State, error) {
	s := new(State)
	if err := s.UnmarshalBinary(cp.State); err != nil {
		return nil, err
	}
	if s.Len() != cp.Offset {
		return nil, ErrCheckpointMismatch
	}
	return s, nil
}
