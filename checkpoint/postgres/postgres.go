// Package postgres provides a PostgreSQL-backed CheckpointStore for ripemd.
//
// Checkpoints are rows keyed by stream name and replaced with an upsert,
// which makes the store safe for multi-instance deployments and durable
// across restarts.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ineyio/ripemd"
)

// Store is a PostgreSQL-backed CheckpointStore.
type Store struct {
	pool        *pgxpool.Pool
	tablePrefix string
}

var _ ripemd.CheckpointStore = (*Store)(nil)

// Option configures Store.
type Option func(*Store)

// WithTablePrefix sets the table name prefix (default "ripemd_").
func WithTablePrefix(prefix string) Option {
	return func(s *Store) { s.tablePrefix = prefix }
}

// New creates a new PostgreSQL-backed CheckpointStore.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{
		pool:        pool,
		tablePrefix: "ripemd_",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) checkpointsTable() string { return s.tablePrefix + "checkpoints" }

// EnsureSchema creates the required table if it doesn't exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	q := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			name TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			"offset" BIGINT NOT NULL,
			state BYTEA NOT NULL,
			source_size BIGINT NOT NULL DEFAULT 0,
			source_mod_time_ns BIGINT NOT NULL DEFAULT 0,
			source_tail BYTEA NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		ALTER TABLE %[1]s ADD COLUMN IF NOT EXISTS source_size BIGINT NOT NULL DEFAULT 0;
		ALTER TABLE %[1]s ADD COLUMN IF NOT EXISTS source_mod_time_ns BIGINT NOT NULL DEFAULT 0;
		ALTER TABLE %[1]s ADD COLUMN IF NOT EXISTS source_tail BYTEA NOT NULL DEFAULT '';
	`, s.checkpointsTable())
	_, err := s.pool.Exec(ctx, q)
	if err != nil {
		return fmt.Errorf("ripemd/postgres: ensure schema: %w", err)
	}
	return nil
}

// Save inserts or replaces the checkpoint for cp.Name.
func (s *Store) Save(ctx context.Context, cp ripemd.Checkpoint) error {
	_, err := s.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (name, run_id, "offset", state,
				source_size, source_mod_time_ns, source_tail, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (name) DO UPDATE SET
				run_id = EXCLUDED.run_id,
				"offset" = EXCLUDED."offset",
				state = EXCLUDED.state,
				source_size = EXCLUDED.source_size,
				source_mod_time_ns = EXCLUDED.source_mod_time_ns,
				source_tail = EXCLUDED.source_tail,
				updated_at = EXCLUDED.updated_at`, s.checkpointsTable()),
		cp.Name, cp.RunID, int64(cp.Offset), cp.State,
		cp.Source.Size, unixNano(cp.Source.ModTime), nonNil(cp.Source.Tail), cp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ripemd/postgres: save: %w", err)
	}
	return nil
}

// Load returns the checkpoint saved under name.
func (s *Store) Load(ctx context.Context, name string) (ripemd.Checkpoint, error) {
	var (
		runID     string
		offset    int64
		state     []byte
		size      int64
		modTimeNs int64
		tail      []byte
		updatedAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT run_id, "offset", state, source_size, source_mod_time_ns, source_tail, updated_at
			FROM %s WHERE name = $1`,
			s.checkpointsTable()),
		name,
	).Scan(&runID, &offset, &state, &size, &modTimeNs, &tail, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ripemd.Checkpoint{}, ripemd.ErrCheckpointNotFound
	}
	if err != nil {
		return ripemd.Checkpoint{}, fmt.Errorf("ripemd/postgres: load: %w", err)
	}

	return ripemd.Checkpoint{
		Name:      name,
		RunID:     runID,
		Offset:    uint64(offset),
		State:     state,
		Source: ripemd.Source{
			Size:    size,
			ModTime: fromUnixNano(modTimeNs),
			Tail:    tail,
		},
		UpdatedAt: updatedAt,
	}, nil
}

// Modification times are stored as Unix nanoseconds; TIMESTAMPTZ would
// round them to microseconds and no longer compare equal.
func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

// Delete removes the checkpoint saved under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE name = $1`, s.checkpointsTable()),
		name,
	)
	if err != nil {
		return fmt.Errorf("ripemd/postgres: delete: %w", err)
	}
	return nil
}
