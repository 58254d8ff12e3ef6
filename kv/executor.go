package kv

import (
	"context"
	"log/slog"
	"os"

	"github.com/ChanhaBB/YCSB/store"
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// Executor drains operation batches into single atomic transactions against
// the store, and serves range scans outside the batch path.
type Executor struct {
	store store.Store
	log   *slog.Logger
}

func NewExecutor(st store.Store) *Executor {
	return &Executor{
		store: st,
		log: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		})),
	}
}

// Flush executes the drained batch inside one transaction and reduces the
// per-operation outcomes to a single verdict.
//
// INSERT and DELETE are staged in order with no result slot; a failure there
// only ever surfaces as a transaction-level fault. READ and UPDATE fan out as
// concurrent sub-requests against the same transaction. All of them are
// dispatched before any is awaited; eg.Wait is the sole synchronization
// barrier before reduction. There is no retry: a conflicting or failing
// transaction yields ERROR once and the batch is gone.
func (e *Executor) Flush(ctx context.Context, ops []*Op) Status {
	if len(ops) == 0 {
		return StatusOK
	}

	results := make([]Status, len(ops))

	err := e.store.Txn(ctx, func(ctx context.Context, txn store.Txn) error {
		eg, egctx := errgroup.WithContext(ctx)

		// A staging failure must still wait for already dispatched
		// sub-requests; they hold a reference to the live transaction.
		var stageErr error

	dispatch:
		for i, op := range ops {
			switch op.Kind {
			case OpInsert:
				if err := txn.Set(ctx, op.Key, EncodeFields(op.Values)); err != nil {
					stageErr = errors.WithStack(err)
					break dispatch
				}
			case OpDelete:
				if err := txn.Clear(ctx, op.Key); err != nil {
					stageErr = errors.WithStack(err)
					break dispatch
				}
			case OpRead:
				eg.Go(func() error {
					st, err := e.performRead(egctx, txn, op)
					if err != nil {
						return err
					}
					results[i] = st
					return nil
				})
			case OpUpdate:
				eg.Go(func() error {
					st, err := e.performUpdate(egctx, txn, op)
					if err != nil {
						return err
					}
					results[i] = st
					return nil
				})
			default:
				stageErr = errors.WithStack(store.ErrUnknownOp)
				break dispatch
			}
		}

		waitErr := eg.Wait()
		if stageErr != nil {
			return stageErr
		}
		return waitErr
	})
	if err != nil {
		e.log.ErrorContext(ctx, "batch failed",
			slog.Int("ops", len(ops)),
			slog.String("error", err.Error()),
		)
		return StatusError
	}

	for _, st := range results {
		if !st.IsOK() {
			return StatusError
		}
	}

	return StatusOK
}

func (e *Executor) performRead(ctx context.Context, txn store.Txn, op *Op) (Status, error) {
	row, err := txn.Get(ctx, op.Key)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return StatusNotFound, nil
		}
		return StatusError, errors.WithStack(err)
	}

	_, ok, err := DecodeFields(row, op.Fields)
	if err != nil {
		return StatusError, errors.WithStack(err)
	}
	if !ok {
		return StatusNotFound, nil
	}

	return StatusOK, nil
}

// performUpdate is a read-modify-write merge: the stored map is decoded in
// full, the supplied pairs win, untouched pairs are preserved. A missing key
// yields NOT_FOUND and performs no write.
func (e *Executor) performUpdate(ctx context.Context, txn store.Txn, op *Op) (Status, error) {
	row, err := txn.Get(ctx, op.Key)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return StatusNotFound, nil
		}
		return StatusError, errors.WithStack(err)
	}

	existing, ok, err := DecodeFields(row, nil)
	if err != nil {
		return StatusError, errors.WithStack(err)
	}
	if !ok {
		return StatusNotFound, nil
	}

	for name, value := range op.Values {
		existing[name] = value
	}

	if err := txn.Set(ctx, op.Key, EncodeFields(existing)); err != nil {
		return StatusError, errors.WithStack(err)
	}

	return StatusOK, nil
}
