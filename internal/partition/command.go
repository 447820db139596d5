package partition

import "strings"

// Kind names one of the ten partition operations.
type Kind string

const (
	KindCreateRangePartitioned Kind = "create_range_partitioned"
	KindCreateRangePartition   Kind = "create_range_partition"
	KindAttachRangePartition   Kind = "attach_range_partition"
	KindCreateListPartitioned  Kind = "create_list_partitioned"
	KindCreateListPartition    Kind = "create_list_partition"
	KindAttachListPartition    Kind = "attach_list_partition"
	KindCreateHashPartitioned  Kind = "create_hash_partitioned"
	KindCreateHashPartition    Kind = "create_hash_partition"
	KindAttachHashPartition    Kind = "attach_hash_partition"
	KindDetachPartition        Kind = "detach_partition"
)

// Command is a single partition operation attached to a table definition.
//
// The concrete types are CreatePartitioned, CreatePartition, AttachPartition
// and DetachPartition; together with the bounds type they cover every Kind.
type Command interface {
	Kind() Kind
	// Validate returns a *MissingFieldError when a required field is empty.
	Validate() error
}

// Bounds is the "for values" part of a partition: RangeBounds, ListBounds or
// HashBounds.
type Bounds interface {
	Strategy() Strategy
	validate(k Kind) error
}

// RangeBounds covers values from From (inclusive) to To (exclusive).
type RangeBounds struct {
	From string
	To   string
}

func (RangeBounds) Strategy() Strategy { return Range }

func (b RangeBounds) validate(k Kind) error {
	if b.From == "" {
		return missing(k, "start value")
	}
	if b.To == "" {
		return missing(k, "end value")
	}
	return nil
}

// ListBounds holds the single list value routed to a partition.
type ListBounds struct {
	Value string
}

func (ListBounds) Strategy() Strategy { return List }

func (b ListBounds) validate(k Kind) error {
	if b.Value == "" {
		return missing(k, "list value")
	}
	return nil
}

// HashBounds selects rows whose key hash modulo Modulus equals Remainder.
// A zero Remainder is valid.
type HashBounds struct {
	Modulus   int
	Remainder int
}

func (HashBounds) Strategy() Strategy { return Hash }

func (b HashBounds) validate(k Kind) error {
	if b.Modulus == 0 {
		return missing(k, "modulus")
	}
	return nil
}

// CreatePartitioned defines the parent table with a strategy and key. Keys
// holds one or more key columns or expressions (composite keys are joined
// with ", ").
type CreatePartitioned struct {
	Strategy Strategy
	Keys     []string
}

func (c CreatePartitioned) Kind() Kind {
	switch c.Strategy {
	case Range:
		return KindCreateRangePartitioned
	case List:
		return KindCreateListPartitioned
	case Hash:
		return KindCreateHashPartitioned
	}
	return Kind("create_" + string(c.Strategy) + "_partitioned")
}

func (c CreatePartitioned) Validate() error {
	if _, err := c.Strategy.Code(); err != nil {
		return err
	}
	if len(c.Keys) == 0 {
		return missing(c.Kind(), "partition key")
	}
	for _, k := range c.Keys {
		if strings.TrimSpace(k) == "" {
			return missing(c.Kind(), "partition key")
		}
	}
	return nil
}

// Key renders the partition key list.
func (c CreatePartitioned) Key() string { return strings.Join(c.Keys, ", ") }

// CreatePartition creates a new child table named <parent>_<Suffix>.
type CreatePartition struct {
	Suffix string
	Bounds Bounds
}

func (c CreatePartition) Kind() Kind {
	if c.Bounds == nil {
		return Kind("create_partition")
	}
	switch c.Bounds.Strategy() {
	case Range:
		return KindCreateRangePartition
	case List:
		return KindCreateListPartition
	default:
		return KindCreateHashPartition
	}
}

func (c CreatePartition) Validate() error {
	if strings.TrimSpace(c.Suffix) == "" {
		return missing(c.Kind(), "partition suffix")
	}
	if c.Bounds == nil {
		return missing(c.Kind(), "bounds")
	}
	return c.Bounds.validate(c.Kind())
}

// AttachPartition binds the existing table Table as a partition.
type AttachPartition struct {
	Table  string
	Bounds Bounds
}

func (c AttachPartition) Kind() Kind {
	if c.Bounds == nil {
		return Kind("attach_partition")
	}
	switch c.Bounds.Strategy() {
	case Range:
		return KindAttachRangePartition
	case List:
		return KindAttachListPartition
	default:
		return KindAttachHashPartition
	}
}

func (c AttachPartition) Validate() error {
	if strings.TrimSpace(c.Table) == "" {
		return missing(c.Kind(), "partition table")
	}
	if c.Bounds == nil {
		return missing(c.Kind(), "bounds")
	}
	return c.Bounds.validate(c.Kind())
}

// DetachPartition turns the partition Table back into a standalone table.
type DetachPartition struct {
	Table string
}

func (DetachPartition) Kind() Kind { return KindDetachPartition }

func (c DetachPartition) Validate() error {
	if strings.TrimSpace(c.Table) == "" {
		return missing(c.Kind(), "partition table")
	}
	return nil
}

// Constructors, one per Kind.

func NewRangePartitioned(keys ...string) CreatePartitioned {
	return CreatePartitioned{Strategy: Range, Keys: keys}
}

func NewRangePartition(suffix, from, to string) CreatePartition {
	return CreatePartition{Suffix: suffix, Bounds: RangeBounds{From: from, To: to}}
}

func AttachRange(table, from, to string) AttachPartition {
	return AttachPartition{Table: table, Bounds: RangeBounds{From: from, To: to}}
}

func NewListPartitioned(keys ...string) CreatePartitioned {
	return CreatePartitioned{Strategy: List, Keys: keys}
}

func NewListPartition(suffix, value string) CreatePartition {
	return CreatePartition{Suffix: suffix, Bounds: ListBounds{Value: value}}
}

func AttachList(table, value string) AttachPartition {
	return AttachPartition{Table: table, Bounds: ListBounds{Value: value}}
}

func NewHashPartitioned(keys ...string) CreatePartitioned {
	return CreatePartitioned{Strategy: Hash, Keys: keys}
}

func NewHashPartition(suffix string, modulus, remainder int) CreatePartition {
	return CreatePartition{Suffix: suffix, Bounds: HashBounds{Modulus: modulus, Remainder: remainder}}
}

func AttachHash(table string, modulus, remainder int) AttachPartition {
	return AttachPartition{Table: table, Bounds: HashBounds{Modulus: modulus, Remainder: remainder}}
}

func Detach(table string) DetachPartition {
	return DetachPartition{Table: table}
}
