package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ExecutionError reports the statement of a batch that the backend rejected.
// Statements before Index were executed and are not rolled back unless the
// batch ran inside a Transactor.
type ExecutionError struct {
	Index     int
	Statement string
	Err       error
}

func (e *ExecutionError) Error() string {
	var pgErr *pgconn.PgError
	if errors.As(e.Err, &pgErr) {
		msg := fmt.Sprintf("statement %d failed: %s (SQLSTATE %s)", e.Index, pgErr.Message, pgErr.Code)
		if pgErr.Detail != "" {
			msg += ": " + pgErr.Detail
		}
		return msg + "\n\t" + e.Statement
	}
	return fmt.Sprintf("statement %d failed: %v\n\t%s", e.Index, e.Err, e.Statement)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// SQLState returns the Postgres error code of the failure, or "" when the
// backend did not report one.
func (e *ExecutionError) SQLState() string {
	var pgErr *pgconn.PgError
	if errors.As(e.Err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// ExecBatch executes stmts in order and stops at the first failure, which is
// returned as an *ExecutionError. It returns the number of statements that
// completed. A canceled context stops the batch before the next statement.
func ExecBatch(ctx context.Context, repo Repository, stmts []string) (int, error) {
	for i, s := range stmts {
		if err := ctx.Err(); err != nil {
			return i, &ExecutionError{Index: i, Statement: s, Err: err}
		}
		if err := repo.Exec(ctx, s); err != nil {
			return i, &ExecutionError{Index: i, Statement: s, Err: err}
		}
	}
	return len(stmts), nil
}

// ExecBatchTx runs ExecBatch inside a transaction when repo implements
// Transactor, so a failure leaves no statement of the batch applied. Other
// repositories fall back to ExecBatch.
func ExecBatchTx(ctx context.Context, repo Repository, stmts []string) (int, error) {
	tr, ok := repo.(Transactor)
	if !ok {
		return ExecBatch(ctx, repo, stmts)
	}
	var n int
	err := tr.InTx(ctx, func(tx Repository) error {
		var err error
		n, err = ExecBatch(ctx, tx, stmts)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
