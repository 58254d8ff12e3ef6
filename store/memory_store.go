package store

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/emirpasic/gods/maps/treemap"
)

type memoryStore struct {
	tree *treemap.Map
	mtx  sync.RWMutex
	log  *slog.Logger
}

func byteSliceComparator(a, b interface{}) int {
	aAsserted, aOk := a.([]byte)
	bAsserted, bOK := b.([]byte)
	if !aOk || !bOK {
		panic("not a byte slice")
	}
	return bytes.Compare(aAsserted, bAsserted)
}

// NewMemoryStore returns a treemap-backed store. Transactions hold the store
// write lock for their whole body, so they are trivially serializable.
func NewMemoryStore() Store {
	return &memoryStore{
		mtx:  sync.RWMutex{},
		tree: treemap.NewWith(byteSliceComparator),
		log: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		})),
	}
}

var _ Store = (*memoryStore)(nil)

func (s *memoryStore) Get(_ context.Context, key []byte) ([]byte, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	v, ok := s.tree.Get(key)
	if !ok {
		return nil, ErrKeyNotFound
	}

	vv, ok := v.([]byte)
	if !ok {
		return nil, errors.WithStack(ErrKeyNotFound)
	}

	return vv, nil
}

func (s *memoryStore) Put(_ context.Context, key []byte, value []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.tree.Put(bytes.Clone(key), bytes.Clone(value))

	return nil
}

func (s *memoryStore) Delete(ctx context.Context, key []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.tree.Remove(key)
	s.log.InfoContext(ctx, "Delete",
		slog.String("key", string(key)),
	)

	return nil
}

func (s *memoryStore) Scan(_ context.Context, start []byte, end []byte, limit int) ([]*KVPair, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var result []*KVPair

	s.tree.Each(func(key interface{}, value interface{}) {
		k, ok := key.([]byte)
		if !ok {
			return
		}
		v, ok := value.([]byte)
		if !ok {
			return
		}

		if start != nil && bytes.Compare(k, start) < 0 {
			return
		}

		if end != nil && bytes.Compare(k, end) >= 0 {
			return
		}

		if limit > 0 && len(result) >= limit {
			return
		}

		result = append(result, &KVPair{
			Key:   k,
			Value: v,
		})
	})

	return result, nil
}

func (s *memoryStore) Txn(ctx context.Context, fn func(ctx context.Context, txn Txn) error) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	txn := &memoryStoreTxn{
		mu:      &sync.RWMutex{},
		overlay: treemap.NewWith(byteSliceComparator),
		s:       s,
	}

	if err := fn(ctx, txn); err != nil {
		return errors.WithStack(err)
	}

	for _, op := range txn.ops {
		switch op.opType {
		case OpTypePut:
			s.tree.Put(op.key, op.v)
		case OpTypeDelete:
			s.tree.Remove(op.key)
		default:
			return errors.WithStack(ErrUnknownOp)
		}
	}

	return nil
}

func (s *memoryStore) Name() string {
	return "memory"
}

func (s *memoryStore) Close() error {
	return nil
}

// OpType describes a staged mutation kind.
type OpType int

const (
	OpTypePut OpType = iota
	OpTypeDelete
)

type memOp struct {
	opType OpType
	key    []byte
	v      []byte
}

// overlayEntry shadows the base tree inside a transaction. tombstone marks a
// clear so reads do not fall through to the committed value.
type overlayEntry struct {
	value     []byte
	tombstone bool
}

type memoryStoreTxn struct {
	mu *sync.RWMutex
	// uncommitted writes, newest wins
	overlay *treemap.Map
	// time series of staged operations, replayed on commit
	ops []memOp
	s   *memoryStore
}

var _ Txn = (*memoryStoreTxn)(nil)

func (t *memoryStoreTxn) Get(_ context.Context, key []byte) ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if e, ok := t.overlay.Get(key); ok {
		entry, ok := e.(overlayEntry)
		if !ok || entry.tombstone {
			return nil, ErrKeyNotFound
		}
		return entry.value, nil
	}

	v, ok := t.s.tree.Get(key)
	if !ok {
		return nil, ErrKeyNotFound
	}

	vv, ok := v.([]byte)
	if !ok {
		return nil, ErrKeyNotFound
	}

	return vv, nil
}

func (t *memoryStoreTxn) Set(_ context.Context, key []byte, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := bytes.Clone(key)
	v := bytes.Clone(value)

	t.overlay.Put(k, overlayEntry{value: v})
	t.ops = append(t.ops, memOp{
		opType: OpTypePut,
		key:    k,
		v:      v,
	})

	return nil
}

func (t *memoryStoreTxn) Clear(_ context.Context, key []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := bytes.Clone(key)

	t.overlay.Put(k, overlayEntry{tombstone: true})
	t.ops = append(t.ops, memOp{
		opType: OpTypeDelete,
		key:    k,
	})

	return nil
}
