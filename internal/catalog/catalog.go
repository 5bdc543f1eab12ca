package catalog

import (
	"os"

	"github.com/kaedr/OgmaDB/internal/coltype"
	"github.com/kaedr/OgmaDB/internal/dberrors"
)

// Catalog is the in-memory view of a database: its resolved paths and its
// schema. It does not itself hold table file handles — those are owned by
// the table store, opened here and handed off at construction time.
type Catalog struct {
	Paths  Paths
	Schema coltype.DBSchema
}

// Create makes a brand-new database at path: the schema file is written
// self-describing, and an empty file is created for every table named in
// schema.
func Create(path string, schema coltype.DBSchema) (*Catalog, *dberrors.Error) {
	paths, perr := ParsePath(path)
	if perr != nil {
		return nil, perr
	}

	if err := SaveSchema(paths.SchemaPath(), schema); err != nil {
		return nil, err
	}

	for table := range schema {
		f, ioErr := os.OpenFile(paths.TablePath(table), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
		if ioErr != nil {
			return nil, dberrors.IOErrorf("catalog: create table file for %q: %v", table, ioErr)
		}
		f.Close()
	}

	return &Catalog{Paths: paths, Schema: schema}, nil
}

// Open loads an existing database: the schema file is deserialised, then
// every table file named in the schema is opened read/write. A missing
// table file fails with an IO error.
func Open(path string) (*Catalog, map[string]*os.File, *dberrors.Error) {
	paths, perr := ParsePath(path)
	if perr != nil {
		return nil, nil, perr
	}

	schema, err := LoadSchema(paths.SchemaPath())
	if err != nil {
		return nil, nil, err
	}

	files := make(map[string]*os.File, len(schema))
	for table := range schema {
		f, ioErr := os.OpenFile(paths.TablePath(table), os.O_RDWR, 0o644)
		if ioErr != nil {
			for _, opened := range files {
				opened.Close()
			}
			return nil, nil, dberrors.IOErrorf("catalog: open table file for %q: %v", table, ioErr)
		}
		files[table] = f
	}

	return &Catalog{Paths: paths, Schema: schema}, files, nil
}
