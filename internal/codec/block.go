// Package codec implements the fixed 8,192-byte block and 8-byte cell
// encoding used for on-disk rows. The codec is stateless and pure.
package codec

import (
	"encoding/binary"

	"github.com/kaedr/OgmaDB/internal/coltype"
)

// BlockSize is the fixed size of one on-disk block, a protocol constant.
const BlockSize = 8192

// CellSize is the fixed width of one cell within a row, a protocol constant.
const CellSize = 8

// Block is a fixed-size buffer of exactly BlockSize bytes.
type Block [BlockSize]byte

// RawRow is an ordered sequence of unsigned 64-bit cells, one per column, in
// TableInfo order. This is the wire/on-disk representation of a row.
type RawRow []uint64

// RowPredicate reports whether a raw row should be kept.
type RowPredicate func(RawRow) bool

// keepAll matches every row; used when no predicate is supplied.
func keepAll(RawRow) bool { return true }

// DecodeBlock partitions a block into contiguous chunks of columnCount*8
// bytes, discards any trailing remainder, decodes each chunk into a RawRow,
// and drops any row whose first cell (its row identifier) is zero.
func DecodeBlock(block *Block, columnCount int) []RawRow {
	return DecodeBlockFiltered(block, columnCount, keepAll)
}

// DecodeBlockFiltered is DecodeBlock with an additional predicate applied
// after the tombstone filter; tombstone filtering always happens first.
func DecodeBlockFiltered(block *Block, columnCount int, pred RowPredicate) []RawRow {
	if columnCount <= 0 {
		return nil
	}
	rowWidth := columnCount * CellSize

	var rows []RawRow
	for off := 0; off+rowWidth <= BlockSize; off += rowWidth {
		row := decodeRow(block[off:off+rowWidth], columnCount)
		if row[0] == 0 {
			continue // tombstone
		}
		if pred == nil || pred(row) {
			rows = append(rows, row)
		}
	}
	return rows
}

// DecodeBlocks concatenates, in block order, the decoded rows of each
// block.
func DecodeBlocks(blocks []Block, columnCount int) []RawRow {
	return DecodeBlocksFiltered(blocks, columnCount, keepAll)
}

// DecodeBlocksFiltered is DecodeBlocks with a predicate applied per row,
// after tombstone filtering, preserving block order then in-block order.
func DecodeBlocksFiltered(blocks []Block, columnCount int, pred RowPredicate) []RawRow {
	var rows []RawRow
	for i := range blocks {
		rows = append(rows, DecodeBlockFiltered(&blocks[i], columnCount, pred)...)
	}
	return rows
}

func decodeRow(buf []byte, columnCount int) RawRow {
	row := make(RawRow, columnCount)
	for i := 0; i < columnCount; i++ {
		row[i] = binary.LittleEndian.Uint64(buf[i*CellSize : (i+1)*CellSize])
	}
	return row
}

// EncodeBlock lays out rows contiguously starting at offset 0 into a single
// block, zero-padding any trailing bytes. The caller is responsible for
// ensuring rows fit (len(rows)*columnCount*8 <= BlockSize); EncodeRows
// should be preferred for producing a full sequence of fully-formed blocks.
func EncodeBlock(rows []RawRow, columnCount int) Block {
	var block Block
	rowWidth := columnCount * CellSize
	off := 0
	for _, row := range rows {
		if off+rowWidth > BlockSize {
			break
		}
		encodeRow(block[off:off+rowWidth], row)
		off += rowWidth
	}
	return block
}

// EncodeRows packs rows into as many fully-formed BlockSize blocks as
// needed, in input order, zero-padding the final block.
func EncodeRows(rows []RawRow, columnCount int) []Block {
	rowWidth := columnCount * CellSize
	rowsPerBlock := BlockSize / rowWidth

	var blocks []Block
	for start := 0; start < len(rows); start += rowsPerBlock {
		end := start + rowsPerBlock
		if end > len(rows) {
			end = len(rows)
		}
		blocks = append(blocks, EncodeBlock(rows[start:end], columnCount))
	}
	return blocks
}

func encodeRow(buf []byte, row RawRow) {
	for i, cell := range row {
		binary.LittleEndian.PutUint64(buf[i*CellSize:(i+1)*CellSize], cell)
	}
}

// ConvertField converts a raw cell into its typed value for the given
// column type.
func ConvertField(cell uint64, t coltype.ColumnType) coltype.Value {
	switch t {
	case coltype.Integer:
		return coltype.Value{Type: coltype.Integer, Int: int64(cell)}
	case coltype.Boolean:
		return coltype.Value{Type: coltype.Boolean, Bool: cell != 0}
	case coltype.Text:
		buf := make([]byte, CellSize)
		binary.LittleEndian.PutUint64(buf, cell)
		return coltype.Value{Type: coltype.Text, Text: string(buf)}
	case coltype.Clob, coltype.Blob:
		return coltype.Value{Type: t, Ref: cell}
	default:
		return coltype.Value{}
	}
}

// ConvertRow pairs each cell of a RawRow with the corresponding
// ColumnHeader by position, producing the typed Row projection.
func ConvertRow(row RawRow, info coltype.TableInfo) coltype.Row {
	out := make(coltype.Row, len(row))
	for i, cell := range row {
		if i >= len(info) {
			break
		}
		out[i] = ConvertField(cell, info[i].Type)
	}
	return out
}

// EncodeText packs an ASCII/byte string into the 8-byte little-endian cell
// form a Text column expects, truncating or zero-padding to exactly 8
// bytes.
func EncodeText(s string) uint64 {
	var buf [CellSize]byte
	copy(buf[:], s)
	return binary.LittleEndian.Uint64(buf[:])
}
