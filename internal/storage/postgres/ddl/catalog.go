package ddl

import (
	"fmt"

	"pgpartition/internal/partition"
)

// CatalogColumn is the alias of the single column returned by the catalog
// queries.
const CatalogColumn = "tables"

// CompileGetPartitionsOf lists the direct children of table. The table name
// is inlined as a regclass literal; the query takes no parameters.
func (Grammar) CompileGetPartitionsOf(table string) string {
	return fmt.Sprintf("select inhrelid::regclass::text as %s from pg_catalog.pg_inherits where inhparent = %s::regclass",
		CatalogColumn, literal(table))
}

// CompileGetAllPartitionedTables lists the partitioned parents declared with
// strategy (partstrat 'r', 'l' or 'h').
func (Grammar) CompileGetAllPartitionedTables(strategy partition.Strategy) (string, error) {
	code, err := strategy.Code()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("select pg_class.relname as %s from pg_class inner join pg_partitioned_table on pg_class.oid = pg_partitioned_table.partrelid where pg_partitioned_table.partstrat = '%s'",
		CatalogColumn, code), nil
}
