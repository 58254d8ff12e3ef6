package adapter

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Property names mirror the harness property file. Connection and TLS
// properties are consumed by the bootstrap that builds the store; this layer
// only reads the values below and ignores the rest.
const (
	PropertyBatchSize = "batchsize"
	PropertyDBName    = "dbname"

	DefaultDBName = "DB"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	// BatchSize is the flush threshold. 0 disables batching: every call
	// drains the queue immediately.
	BatchSize int
	// DBName is the logical namespace prefixed to every row key.
	DBName string
}

// ParseConfig validates property values at session-factory construction.
// A malformed value is fatal: the factory is never built and no session can
// be created from it.
func ParseConfig(props map[string]string) (Config, error) {
	cfg := Config{
		DBName: DefaultDBName,
	}

	if v, ok := props[PropertyBatchSize]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Config{}, errors.Wrapf(ErrInvalidConfig, "%s=%q", PropertyBatchSize, v)
		}
		if n < 0 {
			return Config{}, errors.Wrapf(ErrInvalidConfig, "%s=%q must not be negative", PropertyBatchSize, v)
		}
		cfg.BatchSize = n
	}

	if v, ok := props[PropertyDBName]; ok && v != "" {
		cfg.DBName = v
	}

	return cfg, nil
}
