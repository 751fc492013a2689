package meter

import "github.com/ineyio/ripemd"

// NoopMeter is a meter that does nothing.
type NoopMeter struct{}

var _ ripemd.Meter = (*NoopMeter)(nil)

func (m *NoopMeter) OnSum(ripemd.SumEvent)               {}
func (m *NoopMeter) OnCheckpoint(ripemd.CheckpointEvent) {}
