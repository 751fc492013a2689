package meter

import (
	"encoding/hex"
	"log/slog"

	"github.com/ineyio/ripemd"
)

// LogMeter logs digest and checkpoint events using slog.
type LogMeter struct {
	Logger *slog.Logger
}

var _ ripemd.Meter = (*LogMeter)(nil)

// NewLogMeter creates a LogMeter with the given logger.
// If logger is nil, slog.Default() is used.
func NewLogMeter(logger *slog.Logger) *LogMeter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMeter{Logger: logger}
}

func (m *LogMeter) OnSum(e ripemd.SumEvent) {
	if e.Err == nil {
		m.Logger.Info("sum",
			"run", e.RunID,
			"name", e.Name,
			"bytes", e.Bytes,
			"resumed", e.Resumed,
			"duration_ms", e.Duration.Milliseconds(),
			"digest", hex.EncodeToString(e.Digest[:]),
		)
	} else {
		m.Logger.Warn("sum_error",
			"run", e.RunID,
			"name", e.Name,
			"bytes", e.Bytes,
			"resumed", e.Resumed,
			"duration_ms", e.Duration.Milliseconds(),
			"error", e.Err,
		)
	}
}

func (m *LogMeter) OnCheckpoint(e ripemd.CheckpointEvent) {
	if e.Err == nil {
		m.Logger.Debug("checkpoint",
			"run", e.RunID,
			"name", e.Name,
			"op", string(e.Op),
			"offset", e.Offset,
		)
	} else {
		m.Logger.Warn("checkpoint_error",
			"run", e.RunID,
			"name", e.Name,
			"op", string(e.Op),
			"offset", e.Offset,
			"error", e.Err,
		)
	}
}
