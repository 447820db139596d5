// Package ddl compiles table blueprints carrying a partition command into
// PostgreSQL DDL, and builds the catalog queries that list partitions.
//
// Every Compile* function is pure: the same blueprint and command always
// yield the same statements, and a Grammar value holds no state, so one can
// be shared by concurrent callers.
//
// Quoting rules:
//
//   - "create table <T> (...) partition by ..." uses the fully quoted table
//     name ("public"."events").
//   - Child partition names, the "partition of" parent reference and the
//     target of "alter table" are emitted with identifier quotes stripped
//     (public.events_2024 partition of public.events).
//   - Bound values are single-quoted literals; hash modulus and remainder
//     are bare integers.
package ddl

import (
	"errors"
	"fmt"
	"strings"

	gddl "pgpartition/internal/ddl"
	"pgpartition/internal/partition"
)

var (
	// ErrNoCommand is returned by Compile for a blueprint without a
	// partition command.
	ErrNoCommand = errors.New("postgres ddl: blueprint has no partition command")

	// ErrUnsupportedCommand is returned for a command or bounds type the
	// grammar does not know.
	ErrUnsupportedCommand = errors.New("postgres ddl: unsupported partition command")
)

// Grammar is the PostgreSQL partition DDL compiler.
type Grammar struct{}

// Compile validates and compiles the blueprint's partition command into an
// ordered batch: primary statements first, sequence fixups last.
func (g Grammar) Compile(bp *gddl.Blueprint) ([]string, error) {
	switch cmd := bp.Command().(type) {
	case nil:
		return nil, ErrNoCommand
	case partition.CreatePartitioned:
		return g.CompileCreatePartitioned(bp, cmd)
	case partition.CreatePartition:
		return g.CompileCreatePartition(bp, cmd)
	case partition.AttachPartition:
		return g.CompileAttachPartition(bp, cmd)
	case partition.DetachPartition:
		return g.CompileDetachPartition(bp, cmd)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedCommand, cmd)
	}
}

// CompileCreatePartitioned renders the parent table:
//
//	create table "events" ("id" bigserial not null, ...) partition by range (created_at)
//	create table "events" (...) partition by list(region)
//	create table "events" (...) partition by hash(user_id)
//
// followed by the blueprint's indexes and, for range and hash, the
// auto-increment starting value fixups.
func (g Grammar) CompileCreatePartitioned(bp *gddl.Blueprint, cmd partition.CreatePartitioned) ([]string, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var by string
	switch cmd.Strategy {
	case partition.Range:
		by = "range (" + cmd.Key() + ")"
	case partition.List:
		by = "list(" + cmd.Key() + ")"
	case partition.Hash:
		by = "hash(" + cmd.Key() + ")"
	default:
		return nil, fmt.Errorf("%w: %q", partition.ErrUnknownStrategy, string(cmd.Strategy))
	}

	stmts := []string{fmt.Sprintf("create table %s (%s) partition by %s",
		wrapTable(bp),
		strings.Join(g.columns(bp), ", "),
		by,
	)}
	stmts = append(stmts, g.indexes(bp)...)

	if cmd.Strategy != partition.List {
		stmts = append(stmts, g.autoIncrementStartingValues(bp)...)
	}
	return compact(stmts), nil
}

// CompileCreatePartition renders a new child table named <parent>_<suffix>:
//
//	create table events_2024 partition of events for values from ('2024-01-01') to ('2025-01-01')
//	create table events_eu partition of events for values in ('eu')
//	create table events_p0 partition of events for values with (modulus 4, remainder 0)
//
// Range and hash batches end with the auto-increment fixups; list does not.
func (g Grammar) CompileCreatePartition(bp *gddl.Blueprint, cmd partition.CreatePartition) ([]string, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	values, err := boundsClause(cmd.Bounds)
	if err != nil {
		return nil, err
	}

	parent := unquote(wrapTable(bp))
	stmts := []string{fmt.Sprintf("create table %s_%s partition of %s for values %s",
		parent,
		cmd.Suffix,
		parent,
		values,
	)}

	if cmd.Bounds.Strategy() != partition.List {
		stmts = append(stmts, g.autoIncrementStartingValues(bp)...)
	}
	return compact(stmts), nil
}

// CompileAttachPartition binds an existing table:
//
//	alter table events attach partition events_old for values from ('2020-01-01') to ('2021-01-01')
//	alter table events partition of events_eu for values in ('eu')
//	alter table events partition of events_p1 for values with (modulus 4, remainder 1)
//
// The list and hash phrasing differs from range on purpose; it is kept as
// emitted by earlier releases of this tool.
func (g Grammar) CompileAttachPartition(bp *gddl.Blueprint, cmd partition.AttachPartition) ([]string, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	values, err := boundsClause(cmd.Bounds)
	if err != nil {
		return nil, err
	}

	parent := unquote(wrapTable(bp))
	if cmd.Bounds.Strategy() == partition.Range {
		return []string{fmt.Sprintf("alter table %s attach partition %s for values %s",
			parent, cmd.Table, values)}, nil
	}
	return []string{fmt.Sprintf("alter table %s partition of %s for values %s",
		parent, cmd.Table, values)}, nil
}

// CompileDetachPartition renders:
//
//	alter table events detach partition events_2024
func (g Grammar) CompileDetachPartition(bp *gddl.Blueprint, cmd partition.DetachPartition) ([]string, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("alter table %s detach partition %s",
		unquote(wrapTable(bp)), cmd.Table)}, nil
}

func boundsClause(b partition.Bounds) (string, error) {
	switch v := b.(type) {
	case partition.RangeBounds:
		return fmt.Sprintf("from (%s) to (%s)", literal(v.From), literal(v.To)), nil
	case partition.ListBounds:
		return fmt.Sprintf("in (%s)", literal(v.Value)), nil
	case partition.HashBounds:
		return fmt.Sprintf("with (modulus %d, remainder %d)", v.Modulus, v.Remainder), nil
	default:
		return "", fmt.Errorf("%w: bounds %T", ErrUnsupportedCommand, b)
	}
}

func wrapTable(bp *gddl.Blueprint) string {
	return quoteFQN(bp.Table())
}

// compact drops blank statements.
func compact(stmts []string) []string {
	out := stmts[:0]
	for _, s := range stmts {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
