package config

import (
	"fmt"

	"pgpartition/internal/partition"
)

// Step is one partition operation of a plan. Op is a partition.Kind such as
// "create_range_partition"; which of the remaining fields are read depends
// on Op.
type Step struct {
	Op    string `yaml:"op" json:"op" validate:"required"`
	Table string `yaml:"table" json:"table" validate:"required"`

	// Keys is the partition key of create_*_partitioned steps.
	Keys []string `yaml:"keys" json:"keys"`

	// Suffix names the child of create_*_partition steps (<table>_<suffix>).
	Suffix string `yaml:"suffix" json:"suffix"`

	// Partition is the existing table of attach_* and detach steps.
	Partition string `yaml:"partition" json:"partition"`

	From      string `yaml:"from" json:"from"`
	To        string `yaml:"to" json:"to"`
	Value     string `yaml:"value" json:"value"`
	Modulus   int    `yaml:"modulus" json:"modulus" validate:"gte=0"`
	Remainder int    `yaml:"remainder" json:"remainder" validate:"gte=0"`

	// Columns, Primary and Indexes describe the parent table of
	// create_*_partitioned steps; they are ignored by the other ops.
	Columns []Column   `yaml:"columns" json:"columns" validate:"dive"`
	Primary []string   `yaml:"primary" json:"primary"`
	Indexes [][]string `yaml:"indexes" json:"indexes"`
}

// Column is a column of a create_*_partitioned step. Type is either a SQL
// type or one of the logical names understood by the Postgres type mapper
// ("int", "string", "timestamp", ...).
type Column struct {
	Name          string `yaml:"name" json:"name" validate:"required"`
	Type          string `yaml:"type" json:"type"`
	Nullable      bool   `yaml:"nullable" json:"nullable"`
	Default       string `yaml:"default" json:"default"`
	AutoIncrement bool   `yaml:"auto_increment" json:"auto_increment"`
	StartingValue int64  `yaml:"starting_value" json:"starting_value" validate:"gte=0"`
}

// Command converts the step into its partition command. It does not check
// required fields; call Validate on the result for that.
func (s Step) Command() (partition.Command, error) {
	switch partition.Kind(s.Op) {
	case partition.KindCreateRangePartitioned:
		return partition.NewRangePartitioned(s.Keys...), nil
	case partition.KindCreateRangePartition:
		return partition.NewRangePartition(s.Suffix, s.From, s.To), nil
	case partition.KindAttachRangePartition:
		return partition.AttachRange(s.Partition, s.From, s.To), nil
	case partition.KindCreateListPartitioned:
		return partition.NewListPartitioned(s.Keys...), nil
	case partition.KindCreateListPartition:
		return partition.NewListPartition(s.Suffix, s.Value), nil
	case partition.KindAttachListPartition:
		return partition.AttachList(s.Partition, s.Value), nil
	case partition.KindCreateHashPartitioned:
		return partition.NewHashPartitioned(s.Keys...), nil
	case partition.KindCreateHashPartition:
		return partition.NewHashPartition(s.Suffix, s.Modulus, s.Remainder), nil
	case partition.KindAttachHashPartition:
		return partition.AttachHash(s.Partition, s.Modulus, s.Remainder), nil
	case partition.KindDetachPartition:
		return partition.Detach(s.Partition), nil
	default:
		return nil, fmt.Errorf("config: unknown op %q", s.Op)
	}
}
