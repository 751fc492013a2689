package checkpoint

import (
	"fmt"

	"github.com/ineyio/ripemd"
)

// FromConfig builds the store named by cfg.Backend. An empty backend
// disables checkpoints and yields a nil store.
func FromConfig(cfg ripemd.CheckpointConfig) (ripemd.CheckpointStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "":
		return nil, nil
	case ripemd.BackendMemory:
		return NewMemoryStore(), nil
	case ripemd.BackendFile:
		return NewFileStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("%w: checkpoint.backend: unknown backend %q", ripemd.ErrInvalidConfig, cfg.Backend)
	}
}
