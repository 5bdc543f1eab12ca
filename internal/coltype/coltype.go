// Package coltype defines the column type model shared by the catalog, the
// codec, and the predicate engine.
package coltype

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// ColumnType is the closed set of column types a table cell can carry. All
// five are stored as an 8-byte cell on disk but interpreted differently.
type ColumnType int

const (
	Integer ColumnType = iota
	Boolean
	Text
	Clob
	Blob
)

func (t ColumnType) String() string {
	switch t {
	case Integer:
		return "Integer"
	case Boolean:
		return "Boolean"
	case Text:
		return "Text"
	case Clob:
		return "Clob"
	case Blob:
		return "Blob"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// ParseColumnType maps a variant name string (as used in the schema file)
// back to a ColumnType.
func ParseColumnType(s string) (ColumnType, error) {
	switch s {
	case "Integer":
		return Integer, nil
	case "Boolean":
		return Boolean, nil
	case "Text":
		return Text, nil
	case "Clob":
		return Clob, nil
	case "Blob":
		return Blob, nil
	default:
		return 0, fmt.Errorf("coltype: unknown column type %q", s)
	}
}

// ColumnHeader is an ordered pair of (name, type). Column names are unique
// within a table.
type ColumnHeader struct {
	Name string
	Type ColumnType
}

// MarshalJSON renders a ColumnHeader as the two-element array form the
// on-disk schema file requires: [name, typeVariantName].
func (c ColumnHeader) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{c.Name, c.Type.String()})
}

// UnmarshalJSON parses the two-element [name, typeVariantName] array form.
func (c *ColumnHeader) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	t, err := ParseColumnType(pair[1])
	if err != nil {
		return err
	}
	c.Name = pair[0]
	c.Type = t
	return nil
}

// TableInfo is an ordered sequence of ColumnHeader. A column's position in
// the sequence is its field offset within every row of the table.
type TableInfo []ColumnHeader

// ColumnMeta is the per-column lookup entry of a TableInfoMap.
type ColumnMeta struct {
	Type   ColumnType
	Offset int
}

// TableInfoMap is the name -> (type, offset) view of a TableInfo, used for
// O(1) lookup during predicate evaluation. It carries the same content as
// the TableInfo it was derived from, only reordered for lookup.
type TableInfoMap map[string]ColumnMeta

// NewTableInfoMap derives a TableInfoMap from a TableInfo by enumerating the
// sequence; the offset of each column is its position in info.
func NewTableInfoMap(info TableInfo) TableInfoMap {
	m := make(TableInfoMap, len(info))
	for i, col := range info {
		m[col.Name] = ColumnMeta{Type: col.Type, Offset: i}
	}
	return m
}

// DBSchema maps table name to TableInfo. This is the persisted catalog.
type DBSchema map[string]TableInfo
