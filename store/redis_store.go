package store

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

const redisScanBatch = 1000

// redisStore drives a single redis node. Transactions use MULTI/EXEC
// pipelining: staged writes apply atomically on commit, but reads inside a
// transaction observe committed state plus the transaction's own staged
// writes, with no conflict detection. Weaker isolation than the embedded
// drivers; acceptable for the store contract, which leaves isolation to the
// driver.
type redisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string) Store {
	return &redisStore{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
	}
}

var _ Store = (*redisStore)(nil)

func (s *redisStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	v, err := s.client.Get(ctx, string(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, errors.WithStack(err)
	}

	return v, nil
}

func (s *redisStore) Put(ctx context.Context, key []byte, value []byte) error {
	return errors.WithStack(s.client.Set(ctx, string(key), value, 0).Err())
}

func (s *redisStore) Delete(ctx context.Context, key []byte) error {
	return errors.WithStack(s.client.Del(ctx, string(key)).Err())
}

func (s *redisStore) Scan(ctx context.Context, start []byte, end []byte, limit int) ([]*KVPair, error) {
	match := scanMatch(start, end)

	var keys []string
	iter := s.client.Scan(ctx, 0, match, redisScanBatch).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if start != nil && k < string(start) {
			continue
		}
		if end != nil && k >= string(end) {
			continue
		}
		keys = append(keys, k)
	}
	if err := iter.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	// SCAN yields keys in no particular order.
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	if len(keys) == 0 {
		return nil, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	result := make([]*KVPair, 0, len(keys))
	for i, v := range values {
		sv, ok := v.(string)
		if !ok {
			// Deleted between SCAN and MGET.
			continue
		}
		result = append(result, &KVPair{
			Key:   []byte(keys[i]),
			Value: []byte(sv),
		})
	}

	return result, nil
}

func (s *redisStore) Txn(ctx context.Context, fn func(ctx context.Context, txn Txn) error) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		txn := &redisStoreTxn{
			client: s.client,
			pipe:   pipe,
			staged: map[string]overlayEntry{},
		}
		return fn(ctx, txn)
	})

	return errors.WithStack(err)
}

func (s *redisStore) Name() string {
	return "redis"
}

func (s *redisStore) Close() error {
	return errors.WithStack(s.client.Close())
}

// scanMatch derives a MATCH glob from the longest common prefix of the scan
// bounds so the server filters most foreign keys before they reach us.
func scanMatch(start []byte, end []byte) string {
	if start == nil || end == nil {
		return "*"
	}

	n := 0
	for n < len(start) && n < len(end) && start[n] == end[n] {
		n++
	}
	if n == 0 {
		return "*"
	}

	var buf bytes.Buffer
	for _, c := range start[:n] {
		switch c {
		case '*', '?', '[', ']', '\\':
			buf.WriteByte('\\')
		}
		buf.WriteByte(c)
	}
	buf.WriteByte('*')

	return buf.String()
}

type redisStoreTxn struct {
	mu     sync.Mutex
	client *redis.Client
	pipe   redis.Pipeliner
	staged map[string]overlayEntry
}

var _ Txn = (*redisStoreTxn)(nil)

func (t *redisStoreTxn) Get(ctx context.Context, key []byte) ([]byte, error) {
	t.mu.Lock()
	entry, ok := t.staged[string(key)]
	t.mu.Unlock()

	if ok {
		if entry.tombstone {
			return nil, ErrKeyNotFound
		}
		return entry.value, nil
	}

	v, err := t.client.Get(ctx, string(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, errors.WithStack(err)
	}

	return v, nil
}

func (t *redisStoreTxn) Set(ctx context.Context, key []byte, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.staged[string(key)] = overlayEntry{value: bytes.Clone(value)}

	return errors.WithStack(t.pipe.Set(ctx, string(key), value, 0).Err())
}

func (t *redisStoreTxn) Clear(ctx context.Context, key []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.staged[string(key)] = overlayEntry{tombstone: true}

	return errors.WithStack(t.pipe.Del(ctx, string(key)).Err())
}
