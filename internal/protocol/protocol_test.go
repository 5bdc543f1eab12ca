package protocol

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaedr/OgmaDB/internal/codec"
	"github.com/kaedr/OgmaDB/internal/coltype"
	"github.com/kaedr/OgmaDB/internal/dberrors"
	"github.com/kaedr/OgmaDB/internal/engine"
	"github.com/kaedr/OgmaDB/internal/predicate"
)

func TestToActionTranslatesQueryRequest(t *testing.T) {
	act, err := ToAction(Request{Kind: RequestQuery, SQL: "SELECT * FROM currency WHERE Platinum > 1"})
	require.Nil(t, err)
	require.Equal(t, engine.GetFiltered, act.Kind)
	require.Equal(t, "currency", act.Table)
	require.Equal(t, predicate.List{{Op: predicate.GreaterThan, Column: "Platinum",
		Value: coltype.Value{Type: coltype.Integer, Int: 1}}}, act.Filters)
}

func TestToActionTranslatesMoreRequest(t *testing.T) {
	act, err := ToAction(Request{Kind: RequestMore, QID: 42})
	require.Nil(t, err)
	require.Equal(t, engine.GetMore, act.Kind)
	require.Equal(t, uint64(42), act.QID)
}

func TestToActionRejectsUnknownKind(t *testing.T) {
	_, err := ToAction(Request{Kind: "bogus"})
	require.NotNil(t, err)
}

func TestToActionPropagatesParseError(t *testing.T) {
	_, err := ToAction(Request{Kind: RequestQuery, SQL: "NOT SQL"})
	require.NotNil(t, err)
}

func TestFromReactionTranslatesEachKind(t *testing.T) {
	start := FromReaction(engine.Reaction{Kind: engine.ReactionQueryStart, QID: 7})
	require.Equal(t, ResponseQueryHandle, start.Kind)
	require.Equal(t, uint64(7), start.QID)

	data := FromReaction(engine.Reaction{Kind: engine.ReactionData, Rows: []codec.RawRow{{1, 2}}})
	require.Equal(t, ResponseData, data.Kind)
	require.Len(t, data.Rows, 1)

	empty := FromReaction(engine.Reaction{Kind: engine.ReactionEmpty})
	require.Equal(t, ResponseEmpty, empty.Kind)

	errResp := FromReaction(engine.Reaction{Kind: engine.ReactionError, Err: dberrors.SchemaErrorf("boom")})
	require.Equal(t, ResponseError, errResp.Kind)
	require.Equal(t, "Schema", errResp.Err.Kind)
	require.Equal(t, "boom", errResp.Err.Message)
}

func TestBufSocketRoundTripsOneLinePerMessage(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	serverSock := NewBufSocket(server)
	clientSock := NewBufSocket(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		req, err := serverSock.ReadRequest()
		require.NoError(t, err)
		require.Equal(t, RequestMore, req.Kind)
		require.Equal(t, uint64(5), req.QID)

		require.NoError(t, serverSock.WriteResponse(Response{Kind: ResponseEmpty}))
	}()

	require.NoError(t, clientSock.WriteRequest(Request{Kind: RequestMore, QID: 5}))
	resp, err := clientSock.ReadResponse()
	require.NoError(t, err)
	require.Equal(t, ResponseEmpty, resp.Kind)
	<-done
}
