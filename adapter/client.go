package adapter

import (
	"context"

	"github.com/ChanhaBB/YCSB/kv"
	"github.com/cockroachdb/errors"
)

var ErrFlushFailed = errors.New("cleanup flush failed")

// Client is one benchmark session. It owns its operation queue exclusively;
// calls either return StatusBatched immediately or block on the flush that
// their append triggered.
type Client struct {
	factory  *Factory
	queue    *kv.Queue
	executor *kv.Executor
	closed   bool
}

// Read buffers a projected point read. The result map is not surfaced to the
// caller: in batched mode only the status is observable.
func (c *Client) Read(ctx context.Context, table, id string, fields []string) kv.Status {
	opCounter.WithLabelValues("read").Inc()
	return c.push(ctx, &kv.Op{
		Kind:   kv.OpRead,
		Table:  table,
		Key:    kv.RowKey(c.factory.config.DBName, table, id),
		Fields: fields,
	})
}

func (c *Client) Insert(ctx context.Context, table, id string, values map[string]string) kv.Status {
	opCounter.WithLabelValues("insert").Inc()
	return c.push(ctx, &kv.Op{
		Kind:   kv.OpInsert,
		Table:  table,
		Key:    kv.RowKey(c.factory.config.DBName, table, id),
		Values: cloneValues(values),
	})
}

func (c *Client) Update(ctx context.Context, table, id string, values map[string]string) kv.Status {
	opCounter.WithLabelValues("update").Inc()
	return c.push(ctx, &kv.Op{
		Kind:   kv.OpUpdate,
		Table:  table,
		Key:    kv.RowKey(c.factory.config.DBName, table, id),
		Values: cloneValues(values),
	})
}

func (c *Client) Delete(ctx context.Context, table, id string) kv.Status {
	opCounter.WithLabelValues("delete").Inc()
	return c.push(ctx, &kv.Op{
		Kind:  kv.OpDelete,
		Table: table,
		Key:   kv.RowKey(c.factory.config.DBName, table, id),
	})
}

// Scan bypasses the queue: one immediate bounded range read over committed
// state. A non-positive count is delegated to the store's unbounded-range
// convention.
func (c *Client) Scan(ctx context.Context, table, startID string, count int, fields []string) ([]map[string]string, kv.Status) {
	opCounter.WithLabelValues("scan").Inc()
	return c.executor.Scan(ctx, c.factory.config.DBName, table, startID, count, fields)
}

// Cleanup flushes any buffered operations before the session is released.
// Only the first call flushes; later calls are no-ops.
func (c *Client) Cleanup(ctx context.Context) error {
	if c.closed {
		return nil
	}
	c.closed = true

	if c.queue.Len() == 0 {
		return nil
	}

	if st := c.flush(ctx); st != kv.StatusOK {
		return errors.Wrapf(ErrFlushFailed, "status %s", st)
	}

	return nil
}

func (c *Client) push(ctx context.Context, op *kv.Op) kv.Status {
	c.queue.Append(op)

	if !c.queue.ShouldFlush(c.factory.config.BatchSize) {
		return kv.StatusBatched
	}

	return c.flush(ctx)
}

// flush drains first, so the queue is empty again whatever the verdict; a
// failed batch is discarded, never replayed.
func (c *Client) flush(ctx context.Context) kv.Status {
	ops := c.queue.DrainAll()

	st := c.executor.Flush(ctx, ops)
	flushCounter.WithLabelValues(st.String()).Inc()

	return st
}

// Ops are immutable once queued; the harness is free to reuse its map.
func cloneValues(values map[string]string) map[string]string {
	if values == nil {
		return nil
	}
	cl := make(map[string]string, len(values))
	for k, v := range values {
		cl[k] = v
	}
	return cl
}
