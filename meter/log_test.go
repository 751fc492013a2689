package meter_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ineyio/ripemd"
	"github.com/ineyio/ripemd/meter"
)

func newBufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLogMeter_OnSum(t *testing.T) {
	var buf bytes.Buffer
	m := meter.NewLogMeter(newBufferLogger(&buf))

	m.OnSum(ripemd.SumEvent{
		RunID:    "run-1",
		Name:     "abc.txt",
		Bytes:    3,
		Duration: 2 * time.Millisecond,
		Digest:   ripemd.Sum160([]byte("abc")),
	})

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "msg=sum")
	assert.Contains(t, out, "name=abc.txt")
	assert.Contains(t, out, "digest=8eb208f7e05d987a9b044a8e98c6b087f15a0bfc")
	assert.Contains(t, out, "duration_ms=2")
}

func TestLogMeter_OnSumError(t *testing.T) {
	var buf bytes.Buffer
	m := meter.NewLogMeter(newBufferLogger(&buf))

	m.OnSum(ripemd.SumEvent{Name: "bad", Err: errors.New("boom")})

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "msg=sum_error")
	assert.Contains(t, out, "error=boom")
	assert.NotContains(t, out, "digest=")
}

func TestLogMeter_OnCheckpoint(t *testing.T) {
	var buf bytes.Buffer
	m := meter.NewLogMeter(newBufferLogger(&buf))

	m.OnCheckpoint(ripemd.CheckpointEvent{Name: "f", Op: ripemd.CheckpointSave, Offset: 4096})
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "op=save")
	assert.Contains(t, buf.String(), "offset=4096")

	buf.Reset()
	m.OnCheckpoint(ripemd.CheckpointEvent{Name: "f", Op: ripemd.CheckpointDelete, Err: errors.New("gone")})
	assert.Contains(t, buf.String(), "msg=checkpoint_error")
	assert.Contains(t, buf.String(), "error=gone")
}

func TestNewLogMeter_NilUsesDefault(t *testing.T) {
	m := meter.NewLogMeter(nil)
	assert.Same(t, slog.Default(), m.Logger)
}

func TestRecorderAndMulti(t *testing.T) {
	a, b := &meter.Recorder{}, &meter.Recorder{}
	m := meter.Multi{a, b, &meter.NoopMeter{}}

	m.OnSum(ripemd.SumEvent{Name: "x"})
	m.OnCheckpoint(ripemd.CheckpointEvent{Name: "x", Op: ripemd.CheckpointRestore})

	for _, r := range []*meter.Recorder{a, b} {
		assert.Len(t, r.Sums(), 1)
		assert.Len(t, r.Checkpoints(), 1)
		assert.Equal(t, ripemd.CheckpointRestore, r.Checkpoints()[0].Op)
	}
}
