package ripemd

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrInvalidStateIdentifier = errors.New("ripemd: invalid hash state identifier")
	ErrInvalidStateSize       = errors.New("ripemd: invalid hash state size")
	ErrCheckpointNotFound     = errors.New("ripemd: checkpoint not found")
	ErrCheckpointMismatch     = errors.New("ripemd: checkpoint does not match stream")
	ErrInvalidConfig          = errors.New("ripemd: invalid config")
)

// OpError wraps an error with the operation and stream it happened on.
type OpError struct {
	Op     string
	Name   string
	Offset uint64
	Err    error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("ripemd: %s %s at offset %d: %v", e.Op, e.Name, e.Offset, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if running the failed Summer operation again
// may succeed, typically resuming from its checkpoint. Corrupt or
// mismatched state is not retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidStateIdentifier) ||
		errors.Is(err, ErrInvalidStateSize) ||
		errors.Is(err, ErrCheckpointMismatch) ||
		errors.Is(err, ErrInvalidConfig) {
		return false
	}
	var opErr *OpError
	if !errors.As(err, &opErr) {
		return false
	}
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		opErr.Op == OpCheckpoint
}

// Operation names used in OpError.
const (
	OpRead       = "read"
	OpRestore    = "restore"
	OpCheckpoint = "checkpoint"
	OpOpen       = "open"
)
