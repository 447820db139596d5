// Package partition defines the partition operations that can be attached to
// a table definition: creating a partitioned parent, creating or attaching a
// range/list/hash partition, and detaching a partition.
//
// Commands are plain values. They are built once, checked with Validate and
// then handed to a dialect compiler; nothing in this package talks to a
// database.
package partition

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy is a native partitioning strategy.
type Strategy string

const (
	Range Strategy = "range"
	List  Strategy = "list"
	Hash  Strategy = "hash"
)

// ErrUnknownStrategy is returned for a strategy outside range/list/hash.
var ErrUnknownStrategy = errors.New("partition: unknown strategy")

// Strategies lists the supported strategies in catalog order.
func Strategies() []Strategy { return []Strategy{Range, List, Hash} }

// ParseStrategy accepts the strategy name case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case Range, List, Hash:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Code returns the single-letter code stored in pg_partitioned_table.partstrat.
func (s Strategy) Code() (string, error) {
	switch s {
	case Range:
		return "r", nil
	case List:
		return "l", nil
	case Hash:
		return "h", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, string(s))
	}
}
