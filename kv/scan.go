package kv

import (
	"context"
	"log/slog"
)

// Scan bypasses the queue entirely: one bounded range read over committed
// state, decoded record by record in key order. Scans read whatever was last
// committed rather than the session's unflushed writes; benchmark scans
// target throughput, not session consistency.
//
// One undecodable or projection-missing record poisons the whole scan: the
// caller gets ERROR and no partial results.
func (e *Executor) Scan(ctx context.Context, namespace, table, startID string, limit int, projection []string) ([]map[string]string, Status) {
	start := RowKey(namespace, table, startID)
	end := RowKeyRangeEnd(namespace, table)

	pairs, err := e.store.Scan(ctx, start, end, limit)
	if err != nil {
		e.log.ErrorContext(ctx, "scan failed",
			slog.String("start", string(start)),
			slog.String("end", string(end)),
			slog.Int("limit", limit),
			slog.String("error", err.Error()),
		)
		return nil, StatusError
	}

	result := make([]map[string]string, 0, len(pairs))
	for _, pair := range pairs {
		fields, ok, err := DecodeFields(pair.Value, projection)
		if err != nil || !ok {
			e.log.ErrorContext(ctx, "scan decode failed",
				slog.String("key", string(pair.Key)),
			)
			return nil, StatusError
		}
		result = append(result, fields)
	}

	return result, StatusOK
}
