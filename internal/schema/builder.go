// Package schema is the entry point for partition changes: a Builder turns a
// table name, a column callback and one partition command into a compiled
// statement batch and runs it against a storage.Repository.
//
// A Builder holds no per-call state. Each call creates its own blueprint and
// command, so one Builder may be shared by concurrent callers as long as the
// repository allows it.
package schema

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"

	"pgpartition/internal/ddl"
	"pgpartition/internal/metrics"
	"pgpartition/internal/partition"
	"pgpartition/internal/storage"
	pgddl "pgpartition/internal/storage/postgres/ddl"
)

// ConnectionConfig is the read-only key/value view of the connection the
// Builder reads "prefix" and "prefix_indexes" from. config.Options satisfies
// it.
type ConnectionConfig interface {
	String(key, def string) string
	Bool(key string, def bool) bool
}

// Callback is the column callback: it receives the table definition before
// compilation and declares columns, keys and indexes on it. It may be nil.
type Callback func(*ddl.Blueprint)

// Builder compiles and executes partition commands.
type Builder struct {
	repo    storage.Repository
	conn    ConnectionConfig
	grammar pgddl.Grammar
	log     zerolog.Logger
	atomic  bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// WithAtomicBatches runs every batch in its own transaction when the
// repository is a storage.Transactor, so a failing fixup also undoes the
// create it follows. Other repositories execute as without the option.
func WithAtomicBatches() Option {
	return func(b *Builder) { b.atomic = true }
}

// NewBuilder returns a Builder executing against repo. conn may be nil, in
// which case no prefix is applied.
func NewBuilder(repo storage.Repository, conn ConnectionConfig, opts ...Option) *Builder {
	b := &Builder{repo: repo, conn: conn, log: zerolog.Nop()}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Prefix returns the index-name prefix: the connection "prefix" when
// "prefix_indexes" is true, otherwise "".
func (b *Builder) Prefix() string {
	if b.conn == nil || !b.conn.Bool("prefix_indexes", false) {
		return ""
	}
	return b.conn.String("prefix", "")
}

// Range

func (b *Builder) CreateRangePartitioned(ctx context.Context, table string, cb Callback, keys ...string) error {
	return b.Apply(ctx, table, cb, partition.NewRangePartitioned(keys...))
}

func (b *Builder) CreateRangePartition(ctx context.Context, table string, cb Callback, suffix, from, to string) error {
	return b.Apply(ctx, table, cb, partition.NewRangePartition(suffix, from, to))
}

func (b *Builder) AttachRangePartition(ctx context.Context, table string, cb Callback, partitionTable, from, to string) error {
	return b.Apply(ctx, table, cb, partition.AttachRange(partitionTable, from, to))
}

// List

func (b *Builder) CreateListPartitioned(ctx context.Context, table string, cb Callback, keys ...string) error {
	return b.Apply(ctx, table, cb, partition.NewListPartitioned(keys...))
}

func (b *Builder) CreateListPartition(ctx context.Context, table string, cb Callback, suffix, value string) error {
	return b.Apply(ctx, table, cb, partition.NewListPartition(suffix, value))
}

func (b *Builder) AttachListPartition(ctx context.Context, table string, cb Callback, partitionTable, value string) error {
	return b.Apply(ctx, table, cb, partition.AttachList(partitionTable, value))
}

// Hash

func (b *Builder) CreateHashPartitioned(ctx context.Context, table string, cb Callback, keys ...string) error {
	return b.Apply(ctx, table, cb, partition.NewHashPartitioned(keys...))
}

func (b *Builder) CreateHashPartition(ctx context.Context, table string, cb Callback, suffix string, modulus, remainder int) error {
	return b.Apply(ctx, table, cb, partition.NewHashPartition(suffix, modulus, remainder))
}

func (b *Builder) AttachHashPartition(ctx context.Context, table string, cb Callback, partitionTable string, modulus, remainder int) error {
	return b.Apply(ctx, table, cb, partition.AttachHash(partitionTable, modulus, remainder))
}

// DetachPartition turns partitionTable back into a standalone table.
func (b *Builder) DetachPartition(ctx context.Context, table string, cb Callback, partitionTable string) error {
	return b.Apply(ctx, table, cb, partition.Detach(partitionTable))
}

// Compile builds the blueprint for table, runs cb on it, attaches cmd and
// returns the compiled batch without executing it.
func (b *Builder) Compile(table string, cb Callback, cmd partition.Command) ([]string, error) {
	bp := ddl.NewBlueprint(table, b.Prefix())
	if err := bp.SetCommand(cmd); err != nil {
		return nil, err
	}
	if cb != nil {
		cb(bp)
	}
	return b.grammar.Compile(bp)
}

// Apply compiles cmd for table and executes the batch in order. Execution
// stops at the first failing statement; the returned error then wraps a
// *storage.ExecutionError. Statements that already ran stay applied unless
// the Builder was created WithAtomicBatches.
func (b *Builder) Apply(ctx context.Context, table string, cb Callback, cmd partition.Command) error {
	stmts, err := b.Compile(table, cb, cmd)
	if err != nil {
		return fmt.Errorf("%s %s: %w", cmd.Kind(), table, err)
	}

	op := string(cmd.Kind())
	log := b.log.With().
		Str("batch", uuid.NewString()).
		Str("op", op).
		Str("table", table).
		Str("digest", Digest(stmts)).
		Logger()
	for i, s := range stmts {
		log.Debug().Int("index", i).Str("sql", s).Msg("statement")
	}

	start := time.Now()
	exec := storage.ExecBatch
	if b.atomic {
		exec = storage.ExecBatchTx
	}
	n, err := exec(ctx, b.repo, stmts)
	took := time.Since(start)
	metrics.RecordBatch(op, err, took)
	metrics.RecordStatements(op, n)

	if err != nil {
		var execErr *storage.ExecutionError
		if errors.As(err, &execErr) {
			log.Error().
				Err(execErr.Err).
				Int("index", execErr.Index).
				Str("sql", execErr.Statement).
				Str("sqlstate", execErr.SQLState()).
				Msg("statement failed")
		}
		return fmt.Errorf("%s %s: %w", op, table, err)
	}

	log.Info().Int("statements", n).Dur("took", took).Msg("batch applied")
	return nil
}

// Digest returns the xxh3 fingerprint of a compiled batch. The same
// statements in the same order always give the same digest, so identical
// batches can be matched across runs and hosts.
func Digest(stmts []string) string {
	h := xxh3.New()
	for _, s := range stmts {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// GetPartitions returns the direct partitions of table in catalog order.
func (b *Builder) GetPartitions(ctx context.Context, table string) ([]string, error) {
	return b.repo.QueryColumn(ctx, b.grammar.CompileGetPartitionsOf(table), pgddl.CatalogColumn)
}

// GetAllPartitionedTables returns the partitioned parents declared with
// strategy.
func (b *Builder) GetAllPartitionedTables(ctx context.Context, strategy partition.Strategy) ([]string, error) {
	q, err := b.grammar.CompileGetAllPartitionedTables(strategy)
	if err != nil {
		return nil, err
	}
	return b.repo.QueryColumn(ctx, q, pgddl.CatalogColumn)
}

func (b *Builder) GetAllRangePartitionedTables(ctx context.Context) ([]string, error) {
	return b.GetAllPartitionedTables(ctx, partition.Range)
}

func (b *Builder) GetAllListPartitionedTables(ctx context.Context) ([]string, error) {
	return b.GetAllPartitionedTables(ctx, partition.List)
}

func (b *Builder) GetAllHashPartitionedTables(ctx context.Context) ([]string, error) {
	return b.GetAllPartitionedTables(ctx, partition.Hash)
}
