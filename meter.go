package ripemd

import "time"

// Meter observes digest computations for monitoring/logging.
type Meter interface {
	// OnSum is called when a stream has been fully digested or has failed.
	OnSum(event SumEvent)

	// OnCheckpoint is called when a checkpoint is saved, restored or deleted.
	OnCheckpoint(event CheckpointEvent)
}

// SumEvent describes the outcome of one Summer.Sum call.
type SumEvent struct {
	RunID    string
	Name     string
	Bytes    uint64
	Duration time.Duration
	Resumed  bool
	Digest   [Size]byte
	Err      error
}

// CheckpointOp names what happened to a checkpoint.
type CheckpointOp string

const (
	CheckpointSave    CheckpointOp = "save"
	CheckpointRestore CheckpointOp = "restore"
	CheckpointDelete  CheckpointOp = "delete"
)

// CheckpointEvent describes a checkpoint store interaction.
type CheckpointEvent struct {
	RunID  string
	Name   string
	Offset uint64
	Op     CheckpointOp
	Err    error
}

type noopMeter struct{}

func (noopMeter) OnSum(SumEvent)               {}
func (noopMeter) OnCheckpoint(CheckpointEvent) {}
