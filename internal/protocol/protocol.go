// Package protocol implements line-delimited wire framing over a buffered
// socket. It is a pure translation layer: Request -> engine.Action on the
// way in, engine.Reaction -> Response on the way out. It owns no state of
// its own and never touches storage directly.
package protocol

import (
	"bufio"
	"fmt"
	"net"

	json "github.com/goccy/go-json"

	"github.com/kaedr/OgmaDB/internal/codec"
	"github.com/kaedr/OgmaDB/internal/coltype"
	"github.com/kaedr/OgmaDB/internal/dberrors"
	"github.com/kaedr/OgmaDB/internal/engine"
	"github.com/kaedr/OgmaDB/internal/queryparse"
)

// RequestKind tags the closed set of messages a client may send.
type RequestKind string

const (
	RequestQuery RequestKind = "query"
	RequestMore  RequestKind = "more"
)

// Request is one line of client input.
type Request struct {
	Kind RequestKind `json:"kind"`
	SQL  string      `json:"sql,omitempty"`
	QID  uint64      `json:"qid,omitempty"`
}

// ResponseKind tags the closed set of messages the server sends back.
type ResponseKind string

const (
	ResponseError       ResponseKind = "error"
	ResponseQueryHandle ResponseKind = "query_handle"
	ResponseData        ResponseKind = "data"
	ResponseEmpty       ResponseKind = "empty"
)

// Response is one line of server output.
type Response struct {
	Kind   ResponseKind         `json:"kind"`
	Err    *WireError           `json:"error,omitempty"`
	Schema coltype.TableInfoMap `json:"schema,omitempty"`
	QID    uint64               `json:"qid,omitempty"`
	Rows   []codec.RawRow       `json:"rows,omitempty"`
}

// WireError is the on-the-wire shape of a dberrors.Error: a kind tag plus
// the single collapsed text message a dberrors.Error reduces to in transit.
type WireError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// BufSocket wraps a net.Conn in a buffered reader/writer pair and frames
// messages one-per-line.
type BufSocket struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer
}

// NewBufSocket wraps conn for line-delimited JSON framing.
func NewBufSocket(conn net.Conn) *BufSocket {
	return &BufSocket{conn: conn, r: bufio.NewReader(conn), w: bufio.NewWriter(conn)}
}

// ReadRequest blocks for the next request line and decodes it.
func (s *BufSocket) ReadRequest() (Request, error) {
	line, err := s.r.ReadBytes('\n')
	if err != nil {
		return Request{}, err
	}
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Request{}, fmt.Errorf("protocol: malformed request: %w", err)
	}
	return req, nil
}

// WriteResponse encodes resp as one JSON line and flushes it.
func (s *BufSocket) WriteResponse(resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("protocol: cannot encode response: %w", err)
	}
	if _, err := s.w.Write(data); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	return s.w.Flush()
}

// Close closes the underlying connection.
func (s *BufSocket) Close() error {
	return s.conn.Close()
}

// WriteRequest encodes req as one JSON line and flushes it. Used by clients;
// the server side only ever calls ReadRequest.
func (s *BufSocket) WriteRequest(req Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("protocol: cannot encode request: %w", err)
	}
	if _, err := s.w.Write(data); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	return s.w.Flush()
}

// ReadResponse blocks for the next response line and decodes it. Used by
// clients; the server side only ever calls WriteResponse.
func (s *BufSocket) ReadResponse() (Response, error) {
	line, err := s.r.ReadBytes('\n')
	if err != nil {
		return Response{}, err
	}
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return Response{}, fmt.Errorf("protocol: malformed response: %w", err)
	}
	return resp, nil
}

// ToAction translates a client Request into an engine.Action, parsing SQL
// text for Query requests via internal/queryparse.
func ToAction(req Request) (engine.Action, *dberrors.Error) {
	switch req.Kind {
	case RequestQuery:
		q, err := queryparse.Parse(req.SQL)
		if err != nil {
			return engine.Action{}, err
		}
		return engine.Action{Kind: engine.GetFiltered, Table: q.Table, Filters: q.Filters}, nil
	case RequestMore:
		return engine.Action{Kind: engine.GetMore, QID: req.QID}, nil
	default:
		return engine.Action{}, dberrors.SchemaErrorf("protocol: unknown request kind %q", req.Kind)
	}
}

// FromReaction translates an engine.Reaction into a wire Response.
func FromReaction(r engine.Reaction) Response {
	switch r.Kind {
	case engine.ReactionQueryStart:
		return Response{Kind: ResponseQueryHandle, Schema: r.Schema, QID: r.QID}
	case engine.ReactionData:
		return Response{Kind: ResponseData, Rows: r.Rows}
	case engine.ReactionEmpty:
		return Response{Kind: ResponseEmpty}
	case engine.ReactionError:
		return Response{Kind: ResponseError, Err: wireError(r.Err)}
	default:
		return Response{Kind: ResponseError, Err: &WireError{Kind: "Meta", Message: "engine: unrecognised reaction kind"}}
	}
}

func wireError(err *dberrors.Error) *WireError {
	if err == nil {
		return &WireError{Kind: "Meta", Message: "unknown error"}
	}
	return &WireError{Kind: err.Kind.String(), Message: err.Error()}
}
