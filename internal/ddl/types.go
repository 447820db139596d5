package ddl

// ColumnDef describes a single column of a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting/escaping happens at render time)
//   - SQLType: target SQL type (e.g., text, bigint, timestamptz, bigserial)
//   - Nullable: whether NULL is allowed
//   - Default: raw default expression (e.g., 'anon', CURRENT_TIMESTAMP)
//   - AutoIncrement: the column is backed by a <table>_<column>_seq sequence
//   - StartingValue: when > 0, the sequence is restarted at this value after
//     the table is created
type ColumnDef struct {
	Name          string
	SQLType       string
	Nullable      bool
	Default       string
	AutoIncrement bool
	StartingValue int64
}

// IndexDef is a plain index over one or more columns. Name is resolved from
// the table prefix when the index is added to a Blueprint.
type IndexDef struct {
	Name    string
	Columns []string
}

// ColumnBuilder is returned by the Blueprint column helpers so modifiers can
// be chained:
//
//	bp.BigIncrements("id").StartingValue(1000)
//	bp.Text("note").Nullable()
type ColumnBuilder struct {
	col *ColumnDef
}

func (c ColumnBuilder) Nullable() ColumnBuilder {
	c.col.Nullable = true
	return c
}

func (c ColumnBuilder) Default(expr string) ColumnBuilder {
	c.col.Default = expr
	return c
}

func (c ColumnBuilder) AutoIncrement() ColumnBuilder {
	c.col.AutoIncrement = true
	return c
}

// StartingValue sets the first value handed out by the column's sequence.
func (c ColumnBuilder) StartingValue(n int64) ColumnBuilder {
	c.col.StartingValue = n
	return c
}

// Def returns a copy of the column as currently defined.
func (c ColumnBuilder) Def() ColumnDef { return *c.col }
