// Package predicate implements a small, closed filter algebra: comparisons
// evaluated against raw rows via a column's typed field.
package predicate

import (
	"bytes"

	"github.com/kaedr/OgmaDB/internal/codec"
	"github.com/kaedr/OgmaDB/internal/coltype"
)

// Op tags the closed set of predicate kinds.
type Op int

const (
	All Op = iota
	EqualTo
	GreaterThan
	GreaterThanEqualTo
	LessThan
	LessThanEqualTo
	Between
	In
)

// Filter is one predicate in a filter list. Column/Value(s) are only
// meaningful for the Op that uses them.
type Filter struct {
	Op     Op
	Column string
	Value  coltype.Value   // EqualTo, GreaterThan(EqualTo), LessThan(EqualTo)
	Lo, Hi coltype.Value   // Between
	Values []coltype.Value // In
}

// List is a filter list; it matches a row iff every filter in it matches
// (logical AND; an empty list matches every row).
type List []Filter

// Match evaluates a filter list against a raw row, converting fields on
// demand via infoMap.
func (l List) Match(row []uint64, infoMap coltype.TableInfoMap) bool {
	for _, f := range l {
		if !f.match(row, infoMap) {
			return false
		}
	}
	return true
}

func (f Filter) match(row []uint64, infoMap coltype.TableInfoMap) bool {
	if f.Op == All {
		return true
	}

	meta, ok := infoMap[f.Column]
	if !ok {
		return false // absent column never matches
	}
	if meta.Offset >= len(row) {
		return false
	}

	field := codec.ConvertField(row[meta.Offset], meta.Type)

	switch f.Op {
	case EqualTo:
		return equal(field, f.Value)
	case GreaterThan:
		return less(f.Value, field)
	case GreaterThanEqualTo:
		return equal(field, f.Value) || less(f.Value, field)
	case LessThan:
		return less(field, f.Value)
	case LessThanEqualTo:
		return equal(field, f.Value) || less(field, f.Value)
	case Between:
		return less(f.Lo, field) && less(field, f.Hi)
	case In:
		for _, v := range f.Values {
			if equal(field, v) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// equal reports f == v. Values of different ColumnType are never
// comparable and evaluate to false.
func equal(f, v coltype.Value) bool {
	if f.Type != v.Type {
		return false
	}
	switch f.Type {
	case coltype.Integer:
		return f.Int == v.Int
	case coltype.Boolean:
		return f.Bool == v.Bool
	case coltype.Text:
		return f.Text == v.Text
	case coltype.Clob, coltype.Blob:
		return f.Ref == v.Ref
	default:
		return false
	}
}

// less reports a < b under each type's natural ordering. Cross-type
// comparisons are never comparable and evaluate to false.
func less(a, b coltype.Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case coltype.Integer:
		return a.Int < b.Int
	case coltype.Boolean:
		return !a.Bool && b.Bool // false < true
	case coltype.Text:
		return bytes.Compare([]byte(a.Text), []byte(b.Text)) < 0
	case coltype.Clob, coltype.Blob:
		return a.Ref < b.Ref
	default:
		return false
	}
}
