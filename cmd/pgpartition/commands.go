package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"pgpartition/internal/config"
	"pgpartition/internal/migrations"
	"pgpartition/internal/partition"
	"pgpartition/internal/schema"
	"pgpartition/internal/storage"
	"pgpartition/internal/storage/dryrun"
	pgddl "pgpartition/internal/storage/postgres/ddl"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError{msg: fmt.Sprintf("%s: %v", fs.Name(), err)}
	}
	return nil
}

func (a *app) openRepo(ctx context.Context) (storage.Repository, error) {
	return storage.New(ctx, storage.Config{
		Kind:    a.cfg.Connection.Kind,
		DSN:     a.cfg.Connection.DSN,
		Options: a.cfg.Connection.Options,
	})
}

func (a *app) builder(repo storage.Repository, opts ...schema.Option) *schema.Builder {
	opts = append([]schema.Option{schema.WithLogger(a.log)}, opts...)
	return schema.NewBuilder(repo, a.cfg.Connection.Options, opts...)
}

// applyPlan runs the steps in order and stops at the first failure.
func applyPlan(ctx context.Context, b *schema.Builder, steps []config.Step, before func(i int, s config.Step)) error {
	for i, s := range steps {
		cmd, err := s.Command()
		if err != nil {
			return fmt.Errorf("plan[%d]: %w", i, err)
		}
		if before != nil {
			before(i, s)
		}
		if err := b.Apply(ctx, s.Table, pgddl.FromStep(s), cmd); err != nil {
			return fmt.Errorf("plan[%d]: %w", i, err)
		}
	}
	return nil
}

// cmdPlan prints the plan as SQL, one "-- <migration id>" header per step.
// Nothing is executed and no database is needed.
func cmdPlan(ctx context.Context, a *app, args []string) error {
	if err := parseFlags(newFlagSet("plan"), args); err != nil {
		return err
	}
	if err := a.lint(); err != nil {
		return err
	}
	repo := dryrun.New(a.stdout)
	return applyPlan(ctx, a.builder(repo), a.cfg.Plan, func(i int, s config.Step) {
		fmt.Fprintf(a.stdout, "-- %s\n", migrations.ID(i, s))
	})
}

// cmdApply executes the plan against the configured backend. With -tx the
// whole plan runs in one transaction when the backend supports it. With
// -atomic each step runs in its own transaction, so completed steps stay
// applied while a failing step leaves nothing behind.
func cmdApply(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("apply")
	inTx := fs.Bool("tx", false, "run the whole plan in one transaction")
	atomic := fs.Bool("atomic", false, "run each step in its own transaction")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := a.lint(); err != nil {
		return err
	}

	repo, err := a.openRepo(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	if *inTx {
		if tr, ok := repo.(storage.Transactor); ok {
			return tr.InTx(ctx, func(tx storage.Repository) error {
				return applyPlan(ctx, a.builder(tx), a.cfg.Plan, nil)
			})
		}
		a.log.Warn().Str("kind", a.cfg.Connection.Kind).Msg("backend has no transactions; applying without -tx")
	}
	var opts []schema.Option
	if *atomic {
		opts = append(opts, schema.WithAtomicBatches())
	}
	return applyPlan(ctx, a.builder(repo, opts...), a.cfg.Plan, nil)
}

// cmdMigrate applies the plan through sql-migrate so that steps already
// recorded are skipped.
func cmdMigrate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("migrate")
	check := fs.Bool("check", false, "fail when any step is not applied yet")
	down := fs.Int("down", 0, "roll back the last n applied steps")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := a.lint(); err != nil {
		return err
	}
	if a.cfg.Connection.DSN == "" {
		return errors.New("migrate: connection.dsn is required")
	}

	ms, err := migrations.FromPlan(a.builder(nil), a.cfg.Plan)
	if err != nil {
		return err
	}
	db, err := migrations.Open(a.cfg.Connection.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	switch {
	case *check:
		return migrations.Check(ctx, db, ms)
	case *down > 0:
		n, err := migrations.Rollback(ctx, db, ms, *down)
		if err != nil {
			return err
		}
		a.log.Info().Int("rolled_back", n).Msg("migrations reverted")
	default:
		n, err := migrations.Run(ctx, db, ms)
		if err != nil {
			return err
		}
		a.log.Info().Int("applied", n).Int("total", len(ms)).Msg("migrations applied")
	}
	return nil
}

func cmdPartitions(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("partitions")
	table := fs.String("table", "", "partitioned table")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *table == "" {
		return usageError{msg: "partitions: -table is required"}
	}

	repo, err := a.openRepo(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()

	parts, err := a.builder(repo).GetPartitions(ctx, *table)
	if err != nil {
		return err
	}
	for _, p := range parts {
		fmt.Fprintln(a.stdout, p)
	}
	return nil
}

// cmdPartitioned prints "<strategy>\t<table>" lines. With -strategy all the
// three catalog queries run concurrently; output order stays range, list,
// hash.
func cmdPartitioned(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("partitioned")
	name := fs.String("strategy", "all", "range, list, hash or all")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	strategies := partition.Strategies()
	if *name != "all" {
		s, err := partition.ParseStrategy(*name)
		if err != nil {
			return usageError{msg: "partitioned: " + err.Error()}
		}
		strategies = []partition.Strategy{s}
	}

	repo, err := a.openRepo(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()
	b := a.builder(repo)

	results := make([][]string, len(strategies))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range strategies {
		i, s := i, s
		g.Go(func() error {
			tables, err := b.GetAllPartitionedTables(gctx, s)
			if err != nil {
				return fmt.Errorf("%s: %w", s, err)
			}
			results[i] = tables
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, s := range strategies {
		for _, t := range results[i] {
			fmt.Fprintf(a.stdout, "%s\t%s\n", s, t)
		}
	}
	return nil
}
