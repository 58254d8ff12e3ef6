package store

import (
	"context"

	"github.com/cockroachdb/errors"
)

var ErrKeyNotFound = errors.New("not found")
var ErrTxnConflict = errors.New("transaction conflict")
var ErrUnknownOp = errors.New("unknown op")
var ErrClosed = errors.New("store closed")

type KVPair struct {
	Key   []byte
	Value []byte
}

// Store is the transactional key-value engine the benchmark adapter drives.
// The adapter never looks inside it; isolation and commit semantics belong to
// the driver.
type Store interface {
	Get(ctx context.Context, key []byte) ([]byte, error)
	Put(ctx context.Context, key []byte, value []byte) error
	Delete(ctx context.Context, key []byte) error
	// Scan returns committed pairs in [start, end) in ascending key order.
	// A non-positive limit means unbounded.
	Scan(ctx context.Context, start []byte, end []byte, limit int) ([]*KVPair, error)
	// Txn runs fn inside one atomic transaction. Writes staged through the
	// Txn become visible only if fn returns nil.
	Txn(ctx context.Context, fn func(ctx context.Context, txn Txn) error) error
	Name() string
	Close() error
}

// Txn is the per-transaction surface handed to fn. Implementations must be
// safe for concurrent use: the batch executor fans out sub-requests against
// a single Txn.
type Txn interface {
	Get(ctx context.Context, key []byte) ([]byte, error)
	Set(ctx context.Context, key []byte, value []byte) error
	Clear(ctx context.Context, key []byte) error
}
