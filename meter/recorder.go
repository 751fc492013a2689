package meter

import (
	"sync"

	"github.com/ineyio/ripemd"
)

// Recorder keeps every event in memory. It is meant for tests and for
// callers that summarise a batch after it finished.
type Recorder struct {
	mu          sync.Mutex
	sums        []ripemd.SumEvent
	checkpoints []ripemd.CheckpointEvent
}

var _ ripemd.Meter = (*Recorder)(nil)

func (r *Recorder) OnSum(e ripemd.SumEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sums = append(r.sums, e)
}

func (r *Recorder) OnCheckpoint(e ripemd.CheckpointEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkpoints = append(r.checkpoints, e)
}

// Sums returns a copy of the recorded sum events.
func (r *Recorder) Sums() []ripemd.SumEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ripemd.SumEvent(nil), r.sums...)
}

// Checkpoints returns a copy of the recorded checkpoint events.
func (r *Recorder) Checkpoints() []ripemd.CheckpointEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ripemd.CheckpointEvent(nil), r.checkpoints...)
}

// Multi fans events out to several meters.
type Multi []ripemd.Meter

var _ ripemd.Meter = Multi(nil)

func (m Multi) OnSum(e ripemd.SumEvent) {
	for _, mm := range m {
		mm.OnSum(e)
	}
}

func (m Multi) OnCheckpoint(e ripemd.CheckpointEvent) {
	for _, mm := range m {
		mm.OnCheckpoint(e)
	}
}
