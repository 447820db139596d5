// Package ddl holds the dialect-neutral table definition used by the
// compilers: a Blueprint collects the columns, keys and indexes of one table
// together with at most one partition command.
//
// Blueprints are filled by caller callbacks and read by a dialect compiler
// (see internal/storage/postgres/ddl). They are owned by a single call and
// are not safe for concurrent mutation.
package ddl

import (
	"errors"
	"strconv"
	"strings"

	"pgpartition/internal/partition"
)

// ErrCommandSet is returned when a second partition command is attached.
var ErrCommandSet = errors.New("ddl: blueprint already carries a partition command")

// Blueprint is the definition of a single table.
type Blueprint struct {
	table   string
	prefix  string
	columns []*ColumnDef
	primary []string
	indexes []IndexDef
	command partition.Command
}

// NewBlueprint starts a definition for table. The prefix is applied to
// generated index names.
func NewBlueprint(table, prefix string) *Blueprint {
	return &Blueprint{table: table, prefix: prefix}
}

// Table returns the table name as given, possibly schema-qualified
// ("public.events").
func (b *Blueprint) Table() string { return b.table }

// Prefix returns the index-name prefix resolved for this table.
func (b *Blueprint) Prefix() string { return b.prefix }

// Columns returns the columns in definition order.
func (b *Blueprint) Columns() []ColumnDef {
	out := make([]ColumnDef, len(b.columns))
	for i, c := range b.columns {
		out[i] = *c
	}
	return out
}

// PrimaryKey returns the columns of an explicit primary key, if any.
func (b *Blueprint) PrimaryKey() []string { return append([]string(nil), b.primary...) }

// Indexes returns the indexes in definition order.
func (b *Blueprint) Indexes() []IndexDef { return append([]IndexDef(nil), b.indexes...) }

// Command returns the attached partition command or nil.
func (b *Blueprint) Command() partition.Command { return b.command }

// SetCommand attaches cmd. A blueprint carries at most one command.
func (b *Blueprint) SetCommand(cmd partition.Command) error {
	if b.command != nil {
		return ErrCommandSet
	}
	b.command = cmd
	return nil
}

// Column adds a column of an arbitrary SQL type.
func (b *Blueprint) Column(name, sqlType string) ColumnBuilder {
	c := &ColumnDef{Name: name, SQLType: sqlType}
	b.columns = append(b.columns, c)
	return ColumnBuilder{col: c}
}

// BigIncrements adds a bigserial auto-increment column.
func (b *Blueprint) BigIncrements(name string) ColumnBuilder {
	return b.Column(name, "bigserial").AutoIncrement()
}

// Increments adds a serial auto-increment column.
func (b *Blueprint) Increments(name string) ColumnBuilder {
	return b.Column(name, "serial").AutoIncrement()
}

func (b *Blueprint) BigInteger(name string) ColumnBuilder { return b.Column(name, "bigint") }
func (b *Blueprint) Integer(name string) ColumnBuilder    { return b.Column(name, "integer") }
func (b *Blueprint) Text(name string) ColumnBuilder       { return b.Column(name, "text") }
func (b *Blueprint) Boolean(name string) ColumnBuilder    { return b.Column(name, "boolean") }
func (b *Blueprint) Date(name string) ColumnBuilder       { return b.Column(name, "date") }
func (b *Blueprint) UUID(name string) ColumnBuilder       { return b.Column(name, "uuid") }
func (b *Blueprint) JSONB(name string) ColumnBuilder      { return b.Column(name, "jsonb") }

// String adds a varchar column; length <= 0 yields an unbounded varchar.
func (b *Blueprint) String(name string, length int) ColumnBuilder {
	if length <= 0 {
		return b.Column(name, "varchar")
	}
	return b.Column(name, "varchar("+strconv.Itoa(length)+")")
}

func (b *Blueprint) Timestamp(name string) ColumnBuilder {
	return b.Column(name, "timestamp(0) without time zone")
}

func (b *Blueprint) TimestampTz(name string) ColumnBuilder {
	return b.Column(name, "timestamp(0) with time zone")
}

func (b *Blueprint) Decimal(name string, precision, scale int) ColumnBuilder {
	return b.Column(name, "decimal("+strconv.Itoa(precision)+", "+strconv.Itoa(scale)+")")
}

// Primary declares a (possibly composite) primary key. On a partitioned
// table it must include every partition key column.
func (b *Blueprint) Primary(columns ...string) {
	b.primary = append([]string(nil), columns...)
}

// Index adds an index named <prefix><table>_<columns>_index.
func (b *Blueprint) Index(columns ...string) IndexDef {
	idx := IndexDef{Name: b.indexName(columns), Columns: append([]string(nil), columns...)}
	b.indexes = append(b.indexes, idx)
	return idx
}

func (b *Blueprint) indexName(columns []string) string {
	name := b.prefix + b.table + "_" + strings.Join(columns, "_") + "_index"
	return strings.ToLower(strings.NewReplacer("-", "_", ".", "_").Replace(name))
}
