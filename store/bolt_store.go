package store

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"go.etcd.io/bbolt"
)

var defaultBucket = []byte("default")

const mode = 0666

type boltStore struct {
	mtx   sync.RWMutex
	log   *slog.Logger
	bbolt *bbolt.DB
}

func NewBoltStore(path string) (Store, error) {
	db, err := bbolt.Open(path, mode, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &boltStore{
		mtx:   sync.RWMutex{},
		bbolt: db,
		log: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		})),
	}, nil
}

var _ Store = (*boltStore)(nil)

func (s *boltStore) Get(_ context.Context, key []byte) ([]byte, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var v []byte

	err := s.bbolt.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(defaultBucket)
		if b == nil {
			return ErrKeyNotFound
		}
		got := b.Get(key)
		if got == nil {
			return ErrKeyNotFound
		}
		// bbolt memory is only valid inside the View.
		v = bytes.Clone(got)
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return v, nil
}

func (s *boltStore) Put(ctx context.Context, key []byte, value []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.log.InfoContext(ctx, "Put",
		slog.String("key", string(key)),
	)

	err := s.bbolt.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(defaultBucket)
		if err != nil {
			return errors.WithStack(err)
		}
		return errors.WithStack(b.Put(key, value))
	})

	return errors.WithStack(err)
}

func (s *boltStore) Delete(ctx context.Context, key []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.log.InfoContext(ctx, "Delete",
		slog.String("key", string(key)),
	)

	err := s.bbolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(defaultBucket)
		if b == nil {
			return nil
		}

		return errors.WithStack(b.Delete(key))
	})

	return errors.WithStack(err)
}

func (s *boltStore) Scan(_ context.Context, start []byte, end []byte, limit int) ([]*KVPair, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var result []*KVPair

	err := s.bbolt.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(defaultBucket)
		if b == nil {
			return nil
		}

		c := b.Cursor()
		k, v := c.First()
		if start != nil {
			k, v = c.Seek(start)
		}
		for ; k != nil; k, v = c.Next() {
			if end != nil && bytes.Compare(k, end) >= 0 {
				break
			}
			if limit > 0 && len(result) >= limit {
				break
			}
			result = append(result, &KVPair{
				Key:   bytes.Clone(k),
				Value: bytes.Clone(v),
			})
		}

		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return result, nil
}

func (s *boltStore) Txn(ctx context.Context, fn func(ctx context.Context, txn Txn) error) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	err := s.bbolt.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(defaultBucket)
		if err != nil {
			return errors.WithStack(err)
		}
		return fn(ctx, &boltStoreTxn{bucket: b})
	})

	return errors.WithStack(err)
}

func (s *boltStore) Name() string {
	return "bolt"
}

func (s *boltStore) Close() error {
	return errors.WithStack(s.bbolt.Close())
}

// boltStoreTxn serializes access to the underlying bbolt.Tx, which is not
// safe for concurrent use by itself.
type boltStoreTxn struct {
	mu     sync.Mutex
	bucket *bbolt.Bucket
}

var _ Txn = (*boltStoreTxn)(nil)

func (t *boltStoreTxn) Get(_ context.Context, key []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v := t.bucket.Get(key)
	if v == nil {
		return nil, ErrKeyNotFound
	}

	return bytes.Clone(v), nil
}

func (t *boltStoreTxn) Set(_ context.Context, key []byte, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return errors.WithStack(t.bucket.Put(key, value))
}

func (t *boltStoreTxn) Clear(_ context.Context, key []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return errors.WithStack(t.bucket.Delete(key))
}
