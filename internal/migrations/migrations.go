// Package migrations turns a partition plan into sql-migrate migrations so
// that a plan can be applied once and re-run safely: every step becomes a
// migration whose id is recorded in the partition_migrations table.
package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// ensure "pgx" driver is loaded
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	migrate "github.com/rubenv/sql-migrate"

	"pgpartition/internal/config"
	"pgpartition/internal/partition"
	"pgpartition/internal/schema"
	pgddl "pgpartition/internal/storage/postgres/ddl"
)

const (
	// TableName records applied plan steps.
	TableName = "partition_migrations"
	dialect   = "postgres"
)

var ErrMigrationsNotRun = errors.New("not all partition migrations applied")

// ID returns the migration id of the i-th (0-based) step.
func ID(i int, s config.Step) string {
	return fmt.Sprintf("%04d_%s_%s", i+1, s.Op, s.Table)
}

// FromPlan compiles every step with b. Up holds the compiled batch. Down
// detaches the partition for attach steps and is empty otherwise; created
// tables are never dropped.
func FromPlan(b *schema.Builder, steps []config.Step) ([]*migrate.Migration, error) {
	out := make([]*migrate.Migration, 0, len(steps))
	for i, s := range steps {
		cmd, err := s.Command()
		if err != nil {
			return nil, fmt.Errorf("plan[%d]: %w", i, err)
		}
		up, err := b.Compile(s.Table, pgddl.FromStep(s), cmd)
		if err != nil {
			return nil, fmt.Errorf("plan[%d] %s %s: %w", i, s.Op, s.Table, err)
		}

		m := &migrate.Migration{Id: ID(i, s), Up: up}
		if at, ok := cmd.(partition.AttachPartition); ok {
			down, err := b.Compile(s.Table, nil, partition.Detach(at.Table))
			if err != nil {
				return nil, fmt.Errorf("plan[%d] down: %w", i, err)
			}
			m.Down = down
		}
		out = append(out, m)
	}
	return out, nil
}

// Open opens a database/sql handle on the pgx driver.
func Open(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

func migrationSet() migrate.MigrationSet {
	return migrate.MigrationSet{TableName: TableName}
}

// Run applies the migrations not yet recorded and returns how many ran.
// Each migration runs in its own transaction.
func Run(ctx context.Context, db *sql.DB, ms []*migrate.Migration) (int, error) {
	src := migrate.MemoryMigrationSource{Migrations: ms}
	return migrationSet().ExecContext(ctx, db, dialect, src, migrate.Up)
}

// Rollback reverts the last n applied migrations.
func Rollback(ctx context.Context, db *sql.DB, ms []*migrate.Migration, n int) (int, error) {
	src := migrate.MemoryMigrationSource{Migrations: ms}
	return migrationSet().ExecMaxContext(ctx, db, dialect, src, migrate.Down, n)
}

// Pending returns the ids of migrations not yet applied.
func Pending(db *sql.DB, ms []*migrate.Migration) ([]string, error) {
	src := migrate.MemoryMigrationSource{Migrations: ms}
	planned, _, err := migrationSet().PlanMigration(db, dialect, src, migrate.Up, 0)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(planned))
	for _, p := range planned {
		ids = append(ids, p.Id)
	}
	return ids, nil
}

// Check returns ErrMigrationsNotRun when any migration is pending, logging
// each one to the context logger.
func Check(ctx context.Context, db *sql.DB, ms []*migrate.Migration) error {
	ids, err := Pending(db, ms)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	logger := zerolog.Ctx(ctx)
	for _, id := range ids {
		logger.Warn().Str("migrationID", id).Msg("missing migration")
	}
	return ErrMigrationsNotRun
}
