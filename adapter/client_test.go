package adapter

import (
	"context"
	"fmt"
	"testing"

	"github.com/ChanhaBB/YCSB/kv"
	"github.com/ChanhaBB/YCSB/store"
	"github.com/stretchr/testify/require"
)

func newTestFactory(t *testing.T, batchSize int) (*Factory, store.Store) {
	t.Helper()

	st := store.NewMemoryStore()
	f, err := NewFactory(st, map[string]string{
		PropertyBatchSize: fmt.Sprintf("%d", batchSize),
	})
	require.NoError(t, err)

	return f, st
}

func storedFields(t *testing.T, st store.Store, table, id string) map[string]string {
	t.Helper()

	row, err := st.Get(context.Background(), kv.RowKey(DefaultDBName, table, id))
	require.NoError(t, err)

	fields, ok, err := kv.DecodeFields(row, nil)
	require.NoError(t, err)
	require.True(t, ok)

	return fields
}

func TestClient_BatchThreshold(t *testing.T) {
	t.Parallel()

	f, st := newTestFactory(t, 3)
	c := f.NewClient()
	ctx := context.Background()

	// The first T-1 calls only buffer; nothing reaches the store.
	require.Equal(t, kv.StatusBatched, c.Insert(ctx, "usertable", "u1", map[string]string{"a": "1"}))
	require.Equal(t, kv.StatusBatched, c.Insert(ctx, "usertable", "u2", map[string]string{"a": "2"}))

	_, err := st.Get(ctx, kv.RowKey(DefaultDBName, "usertable", "u1"))
	require.ErrorIs(t, err, store.ErrKeyNotFound)

	// The T-th call flushes all buffered operations in one transaction.
	require.Equal(t, kv.StatusOK, c.Insert(ctx, "usertable", "u3", map[string]string{"a": "3"}))

	for _, id := range []string{"u1", "u2", "u3"} {
		_, err := st.Get(ctx, kv.RowKey(DefaultDBName, "usertable", id))
		require.NoError(t, err)
	}

	// Queue is empty again: the next call buffers from scratch.
	require.Equal(t, kv.StatusBatched, c.Insert(ctx, "usertable", "u4", map[string]string{"a": "4"}))
}

func TestClient_NoBatchingFlushesEveryCall(t *testing.T) {
	t.Parallel()

	f, st := newTestFactory(t, 0)
	c := f.NewClient()
	ctx := context.Background()

	require.Equal(t, kv.StatusOK, c.Insert(ctx, "usertable", "u1", map[string]string{"a": "1"}))
	require.Equal(t, map[string]string{"a": "1"}, storedFields(t, st, "usertable", "u1"))

	require.Equal(t, kv.StatusOK, c.Read(ctx, "usertable", "u1", []string{"a"}))
	require.Equal(t, kv.StatusError, c.Read(ctx, "usertable", "ghost", nil))
}

func TestClient_UpdateMerge(t *testing.T) {
	t.Parallel()

	f, st := newTestFactory(t, 0)
	c := f.NewClient()
	ctx := context.Background()

	require.Equal(t, kv.StatusOK, c.Insert(ctx, "usertable", "u1", map[string]string{"a": "1", "b": "2"}))
	require.Equal(t, kv.StatusOK, c.Update(ctx, "usertable", "u1", map[string]string{"b": "3", "c": "4"}))

	require.Equal(t, map[string]string{"a": "1", "b": "3", "c": "4"}, storedFields(t, st, "usertable", "u1"))
}

func TestClient_UpdateMissingKey(t *testing.T) {
	t.Parallel()

	f, _ := newTestFactory(t, 0)
	c := f.NewClient()

	require.Equal(t, kv.StatusError, c.Update(context.Background(), "usertable", "ghost", map[string]string{"a": "1"}))
}

func TestClient_DeleteThenRead(t *testing.T) {
	t.Parallel()

	f, _ := newTestFactory(t, 0)
	c := f.NewClient()
	ctx := context.Background()

	require.Equal(t, kv.StatusOK, c.Insert(ctx, "usertable", "u1", map[string]string{"a": "1"}))
	require.Equal(t, kv.StatusOK, c.Delete(ctx, "usertable", "u1"))
	require.Equal(t, kv.StatusError, c.Read(ctx, "usertable", "u1", nil))
}

func TestClient_ScanSeesOnlyCommittedState(t *testing.T) {
	t.Parallel()

	f, _ := newTestFactory(t, 10)
	c := f.NewClient()
	ctx := context.Background()

	require.Equal(t, kv.StatusBatched, c.Insert(ctx, "usertable", "u1", map[string]string{"a": "1"}))

	// The insert is still buffered; the scan bypasses the queue.
	got, status := c.Scan(ctx, "usertable", "u1", 10, nil)
	require.Equal(t, kv.StatusOK, status)
	require.Empty(t, got)

	require.NoError(t, c.Cleanup(ctx))

	c2 := f.NewClient()
	got, status = c2.Scan(ctx, "usertable", "u1", 10, nil)
	require.Equal(t, kv.StatusOK, status)
	require.Len(t, got, 1)
	require.Equal(t, map[string]string{"a": "1"}, got[0])
}

func TestClient_CleanupFlushesOnce(t *testing.T) {
	t.Parallel()

	f, st := newTestFactory(t, 10)
	c := f.NewClient()
	ctx := context.Background()

	require.Equal(t, kv.StatusBatched, c.Insert(ctx, "usertable", "u1", map[string]string{"a": "1"}))

	require.NoError(t, c.Cleanup(ctx))

	_, err := st.Get(ctx, kv.RowKey(DefaultDBName, "usertable", "u1"))
	require.NoError(t, err)

	// Second cleanup is a no-op.
	require.NoError(t, c.Cleanup(ctx))
}

func TestClient_CleanupReportsFailedFlush(t *testing.T) {
	t.Parallel()

	f, _ := newTestFactory(t, 10)
	c := f.NewClient()
	ctx := context.Background()

	require.Equal(t, kv.StatusBatched, c.Update(ctx, "usertable", "ghost", map[string]string{"a": "1"}))

	err := c.Cleanup(ctx)
	require.ErrorIs(t, err, ErrFlushFailed)

	// Even a failed flush leaves nothing behind to replay.
	require.NoError(t, c.Cleanup(ctx))
}

func TestClient_MixedBatchCommitsAndReportsError(t *testing.T) {
	t.Parallel()

	f, st := newTestFactory(t, 2)
	c := f.NewClient()
	ctx := context.Background()

	require.Equal(t, kv.StatusBatched, c.Insert(ctx, "usertable", "u1", map[string]string{"a": "1"}))
	// The read of a missing key poisons the verdict, but the insert in the
	// same batch still commits.
	require.Equal(t, kv.StatusError, c.Read(ctx, "usertable", "ghost", nil))

	_, err := st.Get(ctx, kv.RowKey(DefaultDBName, "usertable", "u1"))
	require.NoError(t, err)
}
