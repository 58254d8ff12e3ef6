package store

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, []byte("k"), []byte("v")))

	v, err := s.Get(ctx, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), v)

	require.NoError(t, s.Delete(ctx, []byte("k")))

	_, err = s.Get(ctx, []byte("k"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryStore_ScanBounds(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	for _, k := range []string{"a1", "a2", "a3", "b1"} {
		require.NoError(t, s.Put(ctx, []byte(k), []byte("v-"+k)))
	}

	got, err := s.Scan(ctx, []byte("a2"), []byte("b1"), 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, []byte("a2"), got[0].Key)
	require.Equal(t, []byte("a3"), got[1].Key)
}

func TestMemoryStore_ScanLimit(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	for _, k := range []string{"a1", "a2", "a3", "a4"} {
		require.NoError(t, s.Put(ctx, []byte(k), []byte("v")))
	}

	got, err := s.Scan(ctx, []byte("a1"), nil, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, []byte("a3"), got[2].Key)
}

func TestMemoryStore_TxnCommitAndReadYourWrites(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, []byte("old"), []byte("1")))

	err := s.Txn(ctx, func(ctx context.Context, txn Txn) error {
		if err := txn.Set(ctx, []byte("new"), []byte("2")); err != nil {
			return err
		}

		// Staged write is visible inside the transaction.
		v, err := txn.Get(ctx, []byte("new"))
		if err != nil {
			return err
		}
		require.Equal(t, []byte("2"), v)

		// Staged clear shadows the committed value.
		if err := txn.Clear(ctx, []byte("old")); err != nil {
			return err
		}
		_, err = txn.Get(ctx, []byte("old"))
		require.ErrorIs(t, err, ErrKeyNotFound)

		return nil
	})
	require.NoError(t, err)

	v, err := s.Get(ctx, []byte("new"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), v)

	_, err = s.Get(ctx, []byte("old"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryStore_TxnErrorDiscardsWrites(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	boom := errors.New("boom")

	err := s.Txn(ctx, func(ctx context.Context, txn Txn) error {
		if err := txn.Set(ctx, []byte("k"), []byte("v")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Get(ctx, []byte("k"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}
