package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaedr/OgmaDB/internal/codec"
	"github.com/kaedr/OgmaDB/internal/coltype"
	"github.com/kaedr/OgmaDB/internal/predicate"
)

func currencySchema() coltype.DBSchema {
	return coltype.DBSchema{
		"currency": coltype.TableInfo{
			{Name: "index", Type: coltype.Integer},
			{Name: "Platinum", Type: coltype.Integer},
			{Name: "Gold", Type: coltype.Integer},
			{Name: "Silver", Type: coltype.Integer},
			{Name: "Copper", Type: coltype.Integer},
		},
	}
}

func newTestDB(t *testing.T) (*Engine, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.ogmadb")
	eng, err := Create(dbPath, currencySchema())
	require.Nil(t, err)
	t.Cleanup(func() { eng.Close() })
	return eng, dbPath
}

// TestCreateStoreLoadAllIntegers verifies a large all-integer table
// survives a store, close, reopen, and full drain unchanged.
func TestCreateStoreLoadAllIntegers(t *testing.T) {
	eng, dbPath := newTestDB(t)

	rows := make([]codec.RawRow, 0, 204)
	for k := uint64(1); k <= 204; k++ {
		rows = append(rows, codec.RawRow{k, k % 100, (3 * k) % 10, (5 * k) % 10, (7 * k) % 10})
	}
	blocks := codec.EncodeRows(rows, 5)

	infoMap, terr := eng.store.InfoMap("currency")
	require.Nil(t, terr)
	require.Len(t, infoMap, 5)

	require.Nil(t, eng.store.Store("currency", blocks))
	eng.Close()

	reopened, err := Open(dbPath)
	require.Nil(t, err)
	defer reopened.Close()

	start := reopened.Execute(Action{Kind: GetAll, Table: "currency"})
	require.Equal(t, ReactionQueryStart, start.Kind)

	data := reopened.Execute(Action{Kind: GetMore, QID: start.QID})
	require.Equal(t, ReactionData, data.Kind)
	require.Equal(t, rows, data.Rows)
}

// TestDoubleDrain verifies a query handle yields its rows exactly once:
// draining it a second time returns Empty rather than repeating the data.
func TestDoubleDrain(t *testing.T) {
	eng, _ := newTestDB(t)
	require.Nil(t, eng.store.Store("currency", codec.EncodeRows([]codec.RawRow{{1, 2, 3, 4, 5}}, 5)))

	start := eng.Execute(Action{Kind: GetAll, Table: "currency"})
	require.Equal(t, ReactionQueryStart, start.Kind)

	first := eng.Execute(Action{Kind: GetMore, QID: start.QID})
	require.Equal(t, ReactionData, first.Kind)
	require.Len(t, first.Rows, 1)

	second := eng.Execute(Action{Kind: GetMore, QID: start.QID})
	require.Equal(t, ReactionEmpty, second.Kind)
}

// TestUnknownTableThenGetMoreIsEmpty verifies a failed query never
// registers a cursor: GetMore on the caller's stale guess comes back Empty,
// not an error.
func TestUnknownTableThenGetMoreIsEmpty(t *testing.T) {
	eng, _ := newTestDB(t)

	reaction := eng.Execute(Action{Kind: GetAll, Table: "no_such_table"})
	require.Equal(t, ReactionError, reaction.Kind)

	more := eng.Execute(Action{Kind: GetMore, QID: 42})
	require.Equal(t, ReactionEmpty, more.Kind)
}

func TestGetMoreOnNeverIssuedQIDIsEmptyNotError(t *testing.T) {
	eng, _ := newTestDB(t)
	reaction := eng.Execute(Action{Kind: GetMore, QID: 999999})
	require.Equal(t, ReactionEmpty, reaction.Kind)
}

func TestGetFilteredAppliesFilterList(t *testing.T) {
	eng, _ := newTestDB(t)
	require.Nil(t, eng.store.Store("currency", codec.EncodeRows([]codec.RawRow{
		{1, 10, 0, 0, 0},
		{2, 20, 0, 0, 0},
		{3, 30, 0, 0, 0},
	}, 5)))

	start := eng.Execute(Action{
		Kind:  GetFiltered,
		Table: "currency",
		Filters: predicate.List{{
			Op: predicate.GreaterThan, Column: "Platinum",
			Value: coltype.Value{Type: coltype.Integer, Int: 15},
		}},
	})
	require.Equal(t, ReactionQueryStart, start.Kind)

	data := eng.Execute(Action{Kind: GetMore, QID: start.QID})
	require.Equal(t, ReactionData, data.Kind)
	require.Len(t, data.Rows, 2)
}
