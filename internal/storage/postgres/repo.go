// Package postgres implements storage.Repository on a pgx v5 connection pool.
// Statements are executed verbatim with the simple protocol semantics of
// pool.Exec; catalog queries are read back as text.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pgpartition/internal/storage"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN      string // connection string for pgxpool
	MaxConns int    // pool upper bound; 0 keeps the pgxpool default
	MinConns int    // idle connections kept open; 0 keeps the pgxpool default
}

// querier is the subset shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	q    querier
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = int32(cfg.MinConns)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	close := func() { pool.Close() }
	return &Repository{pool: pool, q: pool}, close, nil
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	return exec(ctx, r.q, sql)
}

// QueryColumn implements storage.Repository.QueryColumn for Postgres.
func (r *Repository) QueryColumn(ctx context.Context, sql, column string) ([]string, error) {
	return queryColumn(ctx, r.q, sql, column)
}

// InTx implements storage.Transactor. The transaction commits when fn
// returns nil and rolls back otherwise.
func (r *Repository) InTx(ctx context.Context, fn func(storage.Repository) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&txRepository{tx: tx})
	})
}

// txRepository binds the Repository methods to one open transaction.
type txRepository struct {
	tx pgx.Tx
}

func (t *txRepository) Exec(ctx context.Context, sql string) error {
	return exec(ctx, t.tx, sql)
}

func (t *txRepository) QueryColumn(ctx context.Context, sql, column string) ([]string, error) {
	return queryColumn(ctx, t.tx, sql, column)
}

// Close is a no-op; the transaction ends when InTx returns.
func (t *txRepository) Close() {}

func exec(ctx context.Context, q querier, sql string) error {
	_, err := q.Exec(ctx, sql)
	return err
}

// queryColumn returns the named column of every row as text. NULL becomes "".
func queryColumn(ctx context.Context, q querier, sql, column string) ([]string, error) {
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	idx := -1
	for i, fd := range rows.FieldDescriptions() {
		if fd.Name == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("postgres: result has no column %q", column)
	}

	var out []string
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		out = append(out, toString(vals[idx]))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// toString converts values to their string representation suitable for TEXT.
func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
