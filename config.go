package ripemd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration of a Summer.
type Config struct {
	Encoding   Encoding         `yaml:"encoding"`
	ChunkSize  int              `yaml:"chunk_size"`
	Workers    int              `yaml:"workers"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Log        LogConfig        `yaml:"log"`
}

// CheckpointConfig configures resumable hashing.
type CheckpointConfig struct {
	// Backend is "", "memory" or "file". Empty disables checkpoints.
	// Redis and Postgres stores are passed in code with WithCheckpointStore.
	Backend string `yaml:"backend"`
	// Dir is the directory of the file backend.
	Dir string `yaml:"dir"`
	// Interval is the number of bytes between two checkpoints.
	Interval int64 `yaml:"interval"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	defaultChunkSize          = 32 * 1024
	defaultWorkers            = 4
	defaultCheckpointInterval = 64 << 20
)

// Checkpoint backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
)

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Encoding:  EncodingHex,
		ChunkSize: defaultChunkSize,
		Workers:   defaultWorkers,
		Checkpoint: CheckpointConfig{
			Interval: defaultCheckpointInterval,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads and parses a YAML config file on top of DefaultConfig.
// Environment variables in the format ${VAR} are expanded before parsing.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("ripemd: read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("ripemd: parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the config for consistency.
func (c Config) Validate() error {
	switch c.Encoding {
	case "", EncodingHex, EncodingBase64:
	default:
		return fmt.Errorf("%w: encoding: unknown encoding %q", ErrInvalidConfig, c.Encoding)
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("%w: chunk_size: must not be negative, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers: must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}

	if err := c.Checkpoint.Validate(); err != nil {
		return err
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format: unknown format %q", ErrInvalidConfig, c.Log.Format)
	}

	return nil
}

// Validate checks the checkpoint settings. The redis and postgres stores
// live in their own modules and are not built from configuration.
func (c CheckpointConfig) Validate() error {
	switch c.Backend {
	case "", BackendMemory:
	case BackendFile:
		if c.Dir == "" {
			return fmt.Errorf("%w: checkpoint.dir: required by the file backend", ErrInvalidConfig)
		}
	case "redis", "postgres":
		return fmt.Errorf("%w: checkpoint.backend: %q is not configurable, build it with checkpoint/%s.New and pass it with WithCheckpointStore",
			ErrInvalidConfig, c.Backend, c.Backend)
	default:
		return fmt.Errorf("%w: checkpoint.backend: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w: checkpoint.interval: must not be negative, got %d", ErrInvalidConfig, c.Interval)
	}
	return nil
}

// NewLogger returns a slog.Logger writing to w as configured.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return level, nil
}
