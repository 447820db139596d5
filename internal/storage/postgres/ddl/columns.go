package ddl

import (
	"fmt"
	"strings"

	gddl "pgpartition/internal/ddl"
)

// columns renders the column list of a create table statement:
//
//	"name" TYPE [not null|null] [default EXPR]
//
// followed by a primary key clause when the blueprint declares one.
func (Grammar) columns(bp *gddl.Blueprint) []string {
	cols := bp.Columns()
	out := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		var sb strings.Builder
		sb.WriteString(quoteIdent(c.Name))
		sb.WriteByte(' ')
		sb.WriteString(strings.TrimSpace(c.SQLType))
		if c.Nullable {
			sb.WriteString(" null")
		} else {
			sb.WriteString(" not null")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			// default is raw SQL, no quoting here
			sb.WriteString(" default ")
			sb.WriteString(def)
		}
		out = append(out, sb.String())
	}
	if pk := bp.PrimaryKey(); len(pk) > 0 {
		out = append(out, fmt.Sprintf("primary key (%s)", strings.Join(quoteIdents(pk), ", ")))
	}
	return out
}

// indexes renders one create index statement per blueprint index.
func (Grammar) indexes(bp *gddl.Blueprint) []string {
	idxs := bp.Indexes()
	out := make([]string, 0, len(idxs))
	for _, idx := range idxs {
		out = append(out, fmt.Sprintf("create index %s on %s (%s)",
			quoteIdent(idx.Name),
			wrapTable(bp),
			strings.Join(quoteIdents(idx.Columns), ", "),
		))
	}
	return out
}

// autoIncrementStartingValues returns one entry per auto-increment column:
//
//	alter sequence events_id_seq restart with 1000
//
// Columns without a starting value yield an empty entry; callers drop those
// with compact.
func (Grammar) autoIncrementStartingValues(bp *gddl.Blueprint) []string {
	var out []string
	for _, c := range bp.Columns() {
		if !c.AutoIncrement {
			continue
		}
		if c.StartingValue <= 0 {
			out = append(out, "")
			continue
		}
		out = append(out, fmt.Sprintf("alter sequence %s_%s_seq restart with %d",
			bp.Table(), c.Name, c.StartingValue))
	}
	return out
}
