// Package dryrun provides a storage.Repository that executes nothing. Every
// statement is recorded and, when a writer is configured, printed followed by
// ";" so the output can be piped to psql.
package dryrun

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"pgpartition/internal/storage"
)

// Repository records statements instead of running them. Catalog queries
// return the canned rows set with SetRows, or nothing.
type Repository struct {
	mu    sync.Mutex
	w     io.Writer
	stmts []string
	rows  map[string][]string
}

var _ storage.Repository = (*Repository)(nil)

// New returns a Repository printing to w. A nil w records silently.
func New(w io.Writer) *Repository {
	return &Repository{w: w, rows: map[string][]string{}}
}

func init() {
	storage.Register("dryrun", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		if cfg.Options.Bool("quiet", false) {
			return New(nil), nil
		}
		return New(os.Stdout), nil
	})
}

func (r *Repository) Exec(ctx context.Context, sql string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stmts = append(r.stmts, sql)
	if r.w != nil {
		if _, err := fmt.Fprintf(r.w, "%s;\n", sql); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) QueryColumn(ctx context.Context, sql, column string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.rows[sql]...), nil
}

// SetRows makes QueryColumn return rows for the query sql.
func (r *Repository) SetRows(sql string, rows []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[sql] = append([]string(nil), rows...)
}

// Statements returns the statements recorded so far, in order.
func (r *Repository) Statements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.stmts...)
}

// Reset forgets the recorded statements.
func (r *Repository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stmts = nil
}

func (r *Repository) Close() {}
