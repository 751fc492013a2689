// Package redis provides a Redis-backed CheckpointStore for ripemd.
//
// Each checkpoint is a Redis hash with an expiry, so abandoned streams do
// not accumulate. This makes it safe to resume a stream on another
// instance than the one that was interrupted.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ineyio/ripemd"
)

// Store is a Redis-backed CheckpointStore.
type Store struct {
	client    goredis.Cmdable
	keyPrefix string
	ttl       time.Duration
}

var _ ripemd.CheckpointStore = (*Store)(nil)

// Option configures Store.
type Option func(*Store)

// WithKeyPrefix sets the Redis key prefix (default "ripemd:checkpoint:").
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) { s.keyPrefix = prefix }
}

// WithTTL sets how long an untouched checkpoint is kept (default 24h).
// Zero keeps checkpoints forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// New creates a new Redis-backed CheckpointStore.
// The client must be a connected *goredis.Client or *goredis.ClusterClient.
func New(client goredis.Cmdable, opts ...Option) *Store {
	s := &Store{
		client:    client,
		keyPrefix: "ripemd:checkpoint:",
		ttl:       24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(name string) string {
	return s.keyPrefix + name
}

// Save replaces the checkpoint hash for cp.Name and refreshes its expiry.
func (s *Store) Save(ctx context.Context, cp ripemd.Checkpoint) error {
	key := s.key(cp.Name)
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"run_id", cp.RunID,
			"offset", strconv.FormatUint(cp.Offset, 10),
			"state", cp.State,
			"size", strconv.FormatInt(cp.Source.Size, 10),
			"mod_time", cp.Source.ModTime.UTC().Format(time.RFC3339Nano),
			"tail", cp.Source.Tail,
			"updated_at", cp.UpdatedAt.UTC().Format(time.RFC3339Nano),
		)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ripemd/redis: save: %w", err)
	}
	return nil
}

// Load returns the checkpoint saved under name.
func (s *Store) Load(ctx context.Context, name string) (ripemd.Checkpoint, error) {
	vals, err := s.client.HGetAll(ctx, s.key(name)).Result()
	if errors.Is(err, goredis.Nil) || (err == nil && len(vals) == 0) {
		return ripemd.Checkpoint{}, ripemd.ErrCheckpointNotFound
	}
	if err != nil {
		return ripemd.Checkpoint{}, fmt.Errorf("ripemd/redis: load: %w", err)
	}

	offset, err := strconv.ParseUint(vals["offset"], 10, 64)
	if err != nil {
		return ripemd.Checkpoint{}, fmt.Errorf("ripemd/redis: load: offset: %w", err)
	}
	size, err := strconv.ParseInt(vals["size"], 10, 64)
	if err != nil {
		return ripemd.Checkpoint{}, fmt.Errorf("ripemd/redis: load: size: %w", err)
	}
	modTime, err := time.Parse(time.RFC3339Nano, vals["mod_time"])
	if err != nil {
		return ripemd.Checkpoint{}, fmt.Errorf("ripemd/redis: load: mod_time: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, vals["updated_at"])
	if err != nil {
		return ripemd.Checkpoint{}, fmt.Errorf("ripemd/redis: load: updated_at: %w", err)
	}

	return ripemd.Checkpoint{
		Name:      name,
		RunID:     vals["run_id"],
		Offset:    offset,
		State:     []byte(vals["state"]),
		Source: ripemd.Source{
			Size:    size,
			ModTime: modTime,
			Tail:    []byte(vals["tail"]),
		},
		UpdatedAt: updatedAt,
	}, nil
}

// Delete removes the checkpoint saved under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, s.key(name)).Err(); err != nil {
		return fmt.Errorf("ripemd/redis: delete: %w", err)
	}
	return nil
}
