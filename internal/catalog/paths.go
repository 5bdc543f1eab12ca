// Package catalog resolves a database root path into per-table file paths
// and owns loading/persisting the schema descriptor.
package catalog

import (
	"path/filepath"
	"strings"

	"github.com/kaedr/OgmaDB/internal/dberrors"
)

// Paths is the decomposition of a database path of the form
// "<dir>/<stem>.<ext>" into its three components, all of which must be
// non-empty.
type Paths struct {
	Dir  string
	Stem string
	Ext  string
}

// ParsePath decomposes a database path into (dir, stem, ext). It fails with
// a Path error if any of the three components is empty.
func ParsePath(path string) (Paths, *dberrors.Error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	ext = strings.TrimPrefix(ext, ".")

	// filepath.Dir reports "." both for a bare file name (no directory
	// component at all) and for an explicit "./" prefix; only the former
	// is empty.
	if dir == "." && base == path {
		dir = ""
	}

	if dir == "" || stem == "" || ext == "" {
		return Paths{}, dberrors.PathErrorf("path %q must decompose into <dir>/<stem>.<ext>", path)
	}

	return Paths{Dir: dir, Stem: stem, Ext: ext}, nil
}

// SchemaPath is the path to the database's schema file: the input path the
// caller supplied, in cleaned form (e.g. "./data/test.ogmadb" becomes
// "data/test.ogmadb").
func (p Paths) SchemaPath() string {
	return filepath.Join(p.Dir, p.Stem+"."+p.Ext)
}

// TablePath derives the per-table data file path deterministically. No path
// is ever stored in the schema; this derivation is the single source of
// truth.
func (p Paths) TablePath(table string) string {
	return filepath.Join(p.Dir, p.Stem+"_"+table+"."+p.Ext)
}
