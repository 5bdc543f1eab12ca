package server

import (
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kaedr/OgmaDB/internal/coltype"
	"github.com/kaedr/OgmaDB/internal/engine"
	"github.com/kaedr/OgmaDB/internal/protocol"
)

func startTestServer(t *testing.T) (net.Addr, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.ogmadb")
	eng, err := engine.Create(dbPath, coltype.DBSchema{
		"currency": coltype.TableInfo{{Name: "index", Type: coltype.Integer}},
	})
	require.Nil(t, err)

	ln, lerr := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, lerr)

	srv := New(eng, zap.NewNop())
	go srv.Serve(ln)

	cleanup := func() {
		ln.Close()
		eng.Close()
	}
	return ln.Addr(), cleanup
}

func TestServerRoundTripsQueryThenData(t *testing.T) {
	addr, cleanup := startTestServer(t)
	defer cleanup()

	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	defer conn.Close()

	sock := protocol.NewBufSocket(conn)

	require.NoError(t, sock.WriteRequest(protocol.Request{Kind: protocol.RequestQuery, SQL: "SELECT * FROM currency"}))
	start, err := sock.ReadResponse()
	require.NoError(t, err)
	require.Equal(t, protocol.ResponseQueryHandle, start.Kind)

	require.NoError(t, sock.WriteRequest(protocol.Request{Kind: protocol.RequestMore, QID: start.QID}))
	data, err := sock.ReadResponse()
	require.NoError(t, err)
	require.Equal(t, protocol.ResponseData, data.Kind)
}

func TestServerReturnsErrorOnUnknownTable(t *testing.T) {
	addr, cleanup := startTestServer(t)
	defer cleanup()

	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	defer conn.Close()

	sock := protocol.NewBufSocket(conn)
	require.NoError(t, sock.WriteRequest(protocol.Request{Kind: protocol.RequestQuery, SQL: "SELECT * FROM no_such_table"}))

	resp, err := sock.ReadResponse()
	require.NoError(t, err)
	require.Equal(t, protocol.ResponseError, resp.Kind)
	require.NotNil(t, resp.Err)
}

func TestServerRejectsMalformedQuery(t *testing.T) {
	addr, cleanup := startTestServer(t)
	defer cleanup()

	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	defer conn.Close()

	sock := protocol.NewBufSocket(conn)
	require.NoError(t, sock.WriteRequest(protocol.Request{Kind: protocol.RequestQuery, SQL: "DROP TABLE currency"}))

	resp, err := sock.ReadResponse()
	require.NoError(t, err)
	require.Equal(t, protocol.ResponseError, resp.Kind)
}
