package checkpoint_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ineyio/ripemd"
	"github.com/ineyio/ripemd/checkpoint"
)

func testCheckpoint(t *testing.T, name string, n int) ripemd.Checkpoint {
	t.Helper()
	st := ripemd.New()
	st.Write(make([]byte, n))
	cp, err := ripemd.NewCheckpoint(name, "run-"+name, st)
	require.NoError(t, err)
	cp.Source = ripemd.Source{
		Size:    int64(n) * 2,
		ModTime: time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC),
		Tail:    []byte(name),
	}
	return cp
}

// storeContract runs the behaviour every CheckpointStore must have.
func storeContract(t *testing.T, store ripemd.CheckpointStore) {
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ripemd.ErrCheckpointNotFound)
	assert.NoError(t, store.Delete(ctx, "missing"))

	cp := testCheckpoint(t, "dir/file.bin", 100)
	require.NoError(t, store.Save(ctx, cp))

	got, err := store.Load(ctx, "dir/file.bin")
	require.NoError(t, err)
	assert.Equal(t, cp.Name, got.Name)
	assert.Equal(t, cp.RunID, got.RunID)
	assert.Equal(t, cp.Offset, got.Offset)
	assert.Equal(t, cp.State, got.State)
	assert.True(t, cp.UpdatedAt.Equal(got.UpdatedAt))
	assert.Equal(t, cp.Source.Size, got.Source.Size)
	assert.True(t, cp.Source.ModTime.Equal(got.Source.ModTime))
	assert.Equal(t, cp.Source.Tail, got.Source.Tail)

	// Replace.
	newer := testCheckpoint(t, "dir/file.bin", 200)
	require.NoError(t, store.Save(ctx, newer))
	got, err = store.Load(ctx, "dir/file.bin")
	require.NoError(t, err)
	assert.Equal(t, uint64(200), got.Offset)

	st, err := got.Restore()
	require.NoError(t, err)
	assert.Equal(t, ripemd.Sum160(make([]byte, 200)), st.Checksum())

	require.NoError(t, store.Delete(ctx, "dir/file.bin"))
	_, err = store.Load(ctx, "dir/file.bin")
	assert.ErrorIs(t, err, ripemd.ErrCheckpointNotFound)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, checkpoint.NewMemoryStore())
}

func TestMemoryStore_CopiesState(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	ctx := context.Background()

	cp := testCheckpoint(t, "x", 10)
	require.NoError(t, store.Save(ctx, cp))
	cp.State[0] ^= 0xff
	cp.Source.Tail[0] = 'y'

	got, err := store.Load(ctx, "x")
	require.NoError(t, err)
	_, err = got.Restore()
	assert.NoError(t, err, "mutating the saved slice must not reach the store")
	assert.Equal(t, []byte("x"), got.Source.Tail)

	got.State[0] ^= 0xff
	got.Source.Tail[0] = 'z'
	again, err := store.Load(ctx, "x")
	require.NoError(t, err)
	_, err = again.Restore()
	assert.NoError(t, err, "mutating a loaded slice must not reach the store")
	assert.Equal(t, []byte("x"), again.Source.Tail)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	ctx := context.Background()

	cps := make([]ripemd.Checkpoint, 50)
	for i := range cps {
		cps[i] = testCheckpoint(t, fmt.Sprintf("stream-%d", i%10), i)
	}

	var wg sync.WaitGroup
	for _, cp := range cps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Save(ctx, cp)
			_, _ = store.Load(ctx, cp.Name)
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, store.Len())
}
