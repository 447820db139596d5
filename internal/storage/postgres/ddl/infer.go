package ddl

import (
	"strings"

	"pgpartition/internal/config"
	gddl "pgpartition/internal/ddl"
)

// FromStep returns a blueprint callback that declares the columns, primary
// key and indexes of a plan step. Column types go through MapType; serial
// types imply auto-increment.
//
// Steps other than create_*_partitioned usually carry no columns; their
// callback then leaves the blueprint empty.
func FromStep(s config.Step) func(*gddl.Blueprint) {
	cols := append([]config.Column(nil), s.Columns...)
	primary := append([]string(nil), s.Primary...)
	indexes := make([][]string, 0, len(s.Indexes))
	for _, idx := range s.Indexes {
		if len(idx) > 0 {
			indexes = append(indexes, append([]string(nil), idx...))
		}
	}

	return func(bp *gddl.Blueprint) {
		for _, c := range cols {
			sqlType := MapType(c.Type)
			col := bp.Column(c.Name, sqlType)
			if c.Nullable {
				col = col.Nullable()
			}
			if strings.TrimSpace(c.Default) != "" {
				col = col.Default(c.Default)
			}
			if c.AutoIncrement || strings.HasSuffix(sqlType, "serial") {
				col = col.AutoIncrement()
			}
			if c.StartingValue > 0 {
				col.StartingValue(c.StartingValue)
			}
		}
		if len(primary) > 0 {
			bp.Primary(primary...)
		}
		for _, idx := range indexes {
			bp.Index(idx...)
		}
	}
}
