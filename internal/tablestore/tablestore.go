// Package tablestore implements block-addressed I/O on the per-table files
// opened by the catalog. Every operation is synchronous and non-suspending,
// reading and writing fixed 8,192-byte blocks at a table file's absolute
// byte offsets.
package tablestore

import (
	"io"
	"os"

	"github.com/kaedr/OgmaDB/internal/codec"
	"github.com/kaedr/OgmaDB/internal/coltype"
	"github.com/kaedr/OgmaDB/internal/dberrors"
)

// table bundles one open file handle with the column lookup the codec needs
// to interpret its rows.
type table struct {
	file    *os.File
	infoMap coltype.TableInfoMap
}

// Store is a block-addressed per-table store, backed by one open *os.File
// per table.
type Store struct {
	tables map[string]*table
}

// New builds a Store from the file handles the catalog opened (or created)
// and the schema describing each table's columns.
func New(files map[string]*os.File, schema coltype.DBSchema) *Store {
	tables := make(map[string]*table, len(files))
	for name, f := range files {
		tables[name] = &table{file: f, infoMap: coltype.NewTableInfoMap(schema[name])}
	}
	return &Store{tables: tables}
}

// Close closes every open table file handle.
func (s *Store) Close() error {
	var firstErr error
	for _, t := range s.tables {
		if err := t.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Store) lookup(tableName string) (*table, *dberrors.Error) {
	t, ok := s.tables[tableName]
	if !ok {
		return nil, dberrors.SchemaErrorf("tablestore: unknown table %q", tableName)
	}
	return t, nil
}

// InfoMap returns the column lookup for a table.
func (s *Store) InfoMap(tableName string) (coltype.TableInfoMap, *dberrors.Error) {
	t, err := s.lookup(tableName)
	if err != nil {
		return nil, err
	}
	return t.infoMap, nil
}

// Store writes each block at absolute offset index*BlockSize, where index
// is the block's zero-based position in blocks. Writes occur in input
// order and overwrite any previous content at those offsets.
func (s *Store) Store(tableName string, blocks []codec.Block) *dberrors.Error {
	t, err := s.lookup(tableName)
	if err != nil {
		return err
	}

	for i := range blocks {
		if _, ioErr := t.file.WriteAt(blocks[i][:], int64(i)*codec.BlockSize); ioErr != nil {
			return dberrors.IOErrorf("tablestore: write block %d of %q: %v", i, tableName, ioErr)
		}
	}
	return nil
}

// StoreBlockAt writes a single block at offset blockIndex*BlockSize.
func (s *Store) StoreBlockAt(tableName string, blockIndex int, block codec.Block) *dberrors.Error {
	t, err := s.lookup(tableName)
	if err != nil {
		return err
	}

	if _, ioErr := t.file.WriteAt(block[:], int64(blockIndex)*codec.BlockSize); ioErr != nil {
		return dberrors.IOErrorf("tablestore: write block %d of %q: %v", blockIndex, tableName, ioErr)
	}
	return nil
}

// Load reads sequentially from offset 0 in block-sized chunks until a read
// returns zero bytes. A short, non-zero read is still accepted and appended
// in full: the caller treats the final block as fully BlockSize bytes, with
// trailing zero padding a legitimate part of the layout.
func (s *Store) Load(tableName string) (coltype.TableInfoMap, []codec.Block, *dberrors.Error) {
	t, err := s.lookup(tableName)
	if err != nil {
		return nil, nil, err
	}

	var blocks []codec.Block
	offset := int64(0)
	for {
		var block codec.Block
		n, ioErr := t.file.ReadAt(block[:], offset)
		if n > 0 {
			blocks = append(blocks, block)
			offset += codec.BlockSize
		}
		if ioErr == io.EOF {
			break
		}
		if ioErr != nil {
			return nil, nil, dberrors.IOErrorf("tablestore: read block at offset %d of %q: %v", offset, tableName, ioErr)
		}
		if n == 0 {
			break
		}
	}

	return t.infoMap, blocks, nil
}

// LoadBlockAt reads a single block at offset blockIndex*BlockSize.
func (s *Store) LoadBlockAt(tableName string, blockIndex int) (codec.Block, *dberrors.Error) {
	t, err := s.lookup(tableName)
	if err != nil {
		return codec.Block{}, err
	}

	var block codec.Block
	_, ioErr := t.file.ReadAt(block[:], int64(blockIndex)*codec.BlockSize)
	if ioErr != nil && ioErr != io.EOF {
		return codec.Block{}, dberrors.IOErrorf("tablestore: read block %d of %q: %v", blockIndex, tableName, ioErr)
	}
	return block, nil
}
