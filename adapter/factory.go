package adapter

import (
	"github.com/ChanhaBB/YCSB/kv"
	"github.com/ChanhaBB/YCSB/store"
	"github.com/cockroachdb/errors"
)

// Factory is built exactly once per process by the harness bootstrap and
// handed to every session by reference. It replaces the usual guarded
// process-global init: the store connection lives here, sessions only borrow
// it.
type Factory struct {
	store  store.Store
	config Config
}

func NewFactory(st store.Store, props map[string]string) (*Factory, error) {
	cfg, err := ParseConfig(props)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &Factory{
		store:  st,
		config: cfg,
	}, nil
}

// NewClient creates one benchmark session. Each worker goroutine gets its
// own; a Client must never be shared.
func (f *Factory) NewClient() *Client {
	return &Client{
		factory:  f,
		queue:    kv.NewQueue(),
		executor: kv.NewExecutor(f.store),
	}
}

// Close releases the shared store connection. Call it after every session
// has been cleaned up.
func (f *Factory) Close() error {
	return errors.WithStack(f.store.Close())
}
