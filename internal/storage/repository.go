// Package storage contains storage-agnostic contracts and utilities: the
// Repository a compiled statement batch is executed against, a factory that
// lets backends register themselves by kind, and ExecBatch, which runs a batch
// in order and reports the first failing statement.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pgpartition/internal/config"
)

// Repository is the execution backend of the partition builder.
//
// Exec runs one statement and discards any result. QueryColumn runs a query
// and returns the named column of every row as text, in result order.
// Implementations must be safe for concurrent use.
type Repository interface {
	Exec(ctx context.Context, sql string) error
	QueryColumn(ctx context.Context, sql, column string) ([]string, error)
	Close()
}

// Transactor is implemented by repositories that can run a group of
// statements atomically. fn receives a Repository bound to the transaction;
// returning an error from fn rolls the transaction back.
type Transactor interface {
	InTx(ctx context.Context, fn func(tx Repository) error) error
}

// Config selects and configures a backend.
type Config struct {
	Kind    string
	DSN     string
	Options config.Options
}

// Factory constructs a Repository for a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. Registering the same kind
// again replaces the previous factory. Backends call it from init().
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New constructs the Repository registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
