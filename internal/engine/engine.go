// Package engine implements the Action -> Reaction facade that fronts a
// single open database. It owns the catalog, the table store, and the
// query cursor registry, and is itself single-threaded and non-suspending:
// callers that serve multiple concurrent sessions must serialise their
// calls into an Engine, for example with the mutex internal/server wraps
// around it.
package engine

import (
	"github.com/kaedr/OgmaDB/internal/catalog"
	"github.com/kaedr/OgmaDB/internal/codec"
	"github.com/kaedr/OgmaDB/internal/coltype"
	"github.com/kaedr/OgmaDB/internal/cursor"
	"github.com/kaedr/OgmaDB/internal/dberrors"
	"github.com/kaedr/OgmaDB/internal/predicate"
	"github.com/kaedr/OgmaDB/internal/tablestore"
)

// ActionKind tags the closed set of requests the engine accepts.
type ActionKind int

const (
	GetAll ActionKind = iota
	GetFiltered
	GetMore
)

// Action is the input variant of the engine facade.
type Action struct {
	Kind    ActionKind
	Table   string        // GetAll, GetFiltered
	Filters predicate.List // GetFiltered
	QID     uint64        // GetMore
}

// ReactionKind tags the closed set of responses the engine returns.
type ReactionKind int

const (
	ReactionQueryStart ReactionKind = iota
	ReactionData
	ReactionEmpty
	ReactionError
)

// Reaction is the output variant of the engine facade.
type Reaction struct {
	Kind   ReactionKind
	Schema coltype.TableInfoMap // QueryStart
	QID    uint64               // QueryStart
	Rows   []codec.RawRow       // Data
	Err    *dberrors.Error      // Error
}

// Engine coordinates the catalog, table store, and cursor registry for one
// open database.
type Engine struct {
	catalog *catalog.Catalog
	store   *tablestore.Store
	cursors *cursor.Registry
}

// Create makes a brand-new database at path with the given schema and
// returns an Engine ready to serve it.
func Create(path string, schema coltype.DBSchema) (*Engine, *dberrors.Error) {
	if _, err := catalog.Create(path, schema); err != nil {
		return nil, err
	}
	return Open(path)
}

// Open opens an existing database at path and returns an Engine ready to
// serve it.
func Open(path string) (*Engine, *dberrors.Error) {
	cat, files, err := catalog.Open(path)
	if err != nil {
		return nil, err
	}

	return &Engine{
		catalog: cat,
		store:   tablestore.New(files, cat.Schema),
		cursors: cursor.New(),
	}, nil
}

// Close releases the underlying table file handles.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Execute runs one Action to completion and returns its Reaction. It never
// retries, and a catalog/table-store failure that occurs before a cursor is
// registered never creates an entry.
func (e *Engine) Execute(action Action) Reaction {
	switch action.Kind {
	case GetAll:
		return e.getFiltered(action.Table, predicate.List{{Op: predicate.All}})
	case GetFiltered:
		return e.getFiltered(action.Table, action.Filters)
	case GetMore:
		return e.getMore(action.QID)
	default:
		return errorReaction(dberrors.SchemaErrorf("engine: unknown action kind %d", action.Kind))
	}
}

func (e *Engine) getFiltered(table string, filters predicate.List) Reaction {
	infoMap, blocks, err := e.store.Load(table)
	if err != nil {
		return errorReaction(err)
	}

	rows := codec.DecodeBlocksFiltered(blocks, len(infoMap), func(r codec.RawRow) bool {
		return filters.Match(r, infoMap)
	})

	qid := e.cursors.Register(rows)

	return Reaction{Kind: ReactionQueryStart, Schema: infoMap, QID: qid}
}

func (e *Engine) getMore(qid uint64) Reaction {
	rows, ok := e.cursors.Take(qid)
	if !ok {
		return Reaction{Kind: ReactionEmpty}
	}
	return Reaction{Kind: ReactionData, Rows: rows}
}

func errorReaction(err *dberrors.Error) Reaction {
	return Reaction{Kind: ReactionError, Err: err}
}
