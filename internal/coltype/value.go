package coltype

// Value is the typed projection of a single raw cell, tagged by the
// ColumnType that produced it. Only the field matching Type is meaningful.
type Value struct {
	Type ColumnType

	Int  int64  // Integer
	Bool bool   // Boolean
	Text string // Text: exactly 8 characters, one per raw octet
	Ref  uint64 // Clob / Blob: external reference id
}

// Row is the typed projection of a RawRow: one Value per column, in
// TableInfo order.
type Row []Value
