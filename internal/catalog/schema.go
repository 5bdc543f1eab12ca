package catalog

import (
	"os"

	json "github.com/goccy/go-json"

	"github.com/kaedr/OgmaDB/internal/coltype"
	"github.com/kaedr/OgmaDB/internal/dberrors"
)

// LoadSchema reads and deserialises the DBSchema at the given schema file
// path.
func LoadSchema(schemaPath string) (coltype.DBSchema, *dberrors.Error) {
	raw, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, dberrors.IOErrorf("catalog: read schema file %q: %v", schemaPath, err)
	}

	var schema coltype.DBSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, dberrors.SerdeErrorf("catalog: decode schema file %q: %v", schemaPath, err)
	}

	return schema, nil
}

// SaveSchema serialises schema to self-describing JSON and writes it to
// schemaPath, creating the file (must not already exist).
func SaveSchema(schemaPath string, schema coltype.DBSchema) *dberrors.Error {
	raw, err := json.Marshal(schema)
	if err != nil {
		return dberrors.SerdeErrorf("catalog: encode schema: %v", err)
	}

	f, err := os.OpenFile(schemaPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return dberrors.IOErrorf("catalog: create schema file %q: %v", schemaPath, err)
	}
	defer f.Close()

	if _, err := f.Write(raw); err != nil {
		return dberrors.IOErrorf("catalog: write schema file %q: %v", schemaPath, err)
	}

	return nil
}
