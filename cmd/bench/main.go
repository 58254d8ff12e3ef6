package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/ChanhaBB/YCSB/adapter"
	"github.com/ChanhaBB/YCSB/kv"
	"github.com/ChanhaBB/YCSB/store"
	"github.com/cockroachdb/errors"
	"github.com/spaolacci/murmur3"
	"golang.org/x/sync/errgroup"
)

var (
	storeName  = flag.String("store", "memory", "Store driver: memory, bolt or redis")
	boltPath   = flag.String("bolt_path", "data/bench.db", "bbolt database file")
	redisAddr  = flag.String("redis_address", "localhost:6379", "TCP host+port for redis")
	dbName     = flag.String("dbname", "DB", "Logical namespace used as row key prefix")
	batchSize  = flag.Int("batchsize", 0, "Buffered operations per transactional flush (0 = no batching)")
	threads    = flag.Int("threads", 4, "Worker sessions")
	records    = flag.Int("records", 1000, "Records loaded per worker")
	operations = flag.Int("operations", 10000, "Mixed operations per worker")
	scanLimit  = flag.Int("scan_limit", 100, "Record cap per scan")
)

const (
	tableName  = "usertable"
	fieldCount = 5
)

func main() {
	flag.Parse()

	st, err := newStore()
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	factory, err := adapter.NewFactory(st, map[string]string{
		adapter.PropertyBatchSize: strconv.Itoa(*batchSize),
		adapter.PropertyDBName:    *dbName,
	})
	if err != nil {
		log.Fatalf("failed to build session factory: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	startedAt := time.Now()

	eg := errgroup.Group{}
	for w := 0; w < *threads; w++ {
		eg.Go(func() error {
			return runWorker(ctx, factory.NewClient(), logger, w)
		})
	}
	if err := eg.Wait(); err != nil {
		log.Fatalf("worker failed: %v", err)
	}

	elapsed := time.Since(startedAt)
	total := *threads * (*records + *operations)
	logger.Info("bench finished",
		slog.String("store", st.Name()),
		slog.Int("threads", *threads),
		slog.Int("total_ops", total),
		slog.Duration("elapsed", elapsed),
		slog.Float64("ops_per_sec", float64(total)/elapsed.Seconds()),
	)

	if err := factory.Close(); err != nil {
		log.Fatalf("failed to close store: %v", err)
	}
}

func newStore() (store.Store, error) {
	switch *storeName {
	case "memory":
		return store.NewMemoryStore(), nil
	case "bolt":
		return store.NewBoltStore(*boltPath)
	case "redis":
		return store.NewRedisStore(*redisAddr), nil
	default:
		return nil, errors.Newf("unknown store driver %q", *storeName)
	}
}

func runWorker(ctx context.Context, c *adapter.Client, logger *slog.Logger, worker int) error {
	var errorCount int

	for i := 0; i < *records; i++ {
		if st := c.Insert(ctx, tableName, recordID(worker, uint64(i)), recordValues(i)); st == kv.StatusError {
			errorCount++
		}
	}

	for i := 0; i < *operations; i++ {
		// Scramble the sequence so the access pattern is not an ordered walk.
		h := murmur3.Sum64([]byte(fmt.Sprintf("%d-%d", worker, i)))
		id := recordID(worker, h%uint64(*records))

		var st kv.Status
		switch h % 10 {
		case 0:
			_, st = c.Scan(ctx, tableName, id, *scanLimit, nil)
		case 1, 2:
			st = c.Update(ctx, tableName, id, map[string]string{"field0": fmt.Sprintf("updated-%d", i)})
		default:
			st = c.Read(ctx, tableName, id, nil)
		}
		if st == kv.StatusError {
			errorCount++
		}
	}

	if err := c.Cleanup(ctx); err != nil {
		return err
	}

	logger.Info("worker finished",
		slog.Int("worker", worker),
		slog.Int("errors", errorCount),
	)

	return nil
}

func recordID(worker int, n uint64) string {
	return fmt.Sprintf("w%d-user%010d", worker, n)
}

func recordValues(i int) map[string]string {
	values := make(map[string]string, fieldCount)
	for f := 0; f < fieldCount; f++ {
		values[fmt.Sprintf("field%d", f)] = fmt.Sprintf("value-%d-%d", i, f)
	}
	return values
}
