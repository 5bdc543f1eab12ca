// Package server implements the TCP accept loop: one goroutine per
// connection, every call into the engine serialised through a single
// mutex, structured logging via zap.
package server

import (
	"errors"
	"io"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/kaedr/OgmaDB/internal/engine"
	"github.com/kaedr/OgmaDB/internal/protocol"
)

// Server accepts connections against a single underlying Engine. The
// engine's exported methods are not internally synchronised; mu is the
// sole serialisation point for all connection goroutines.
type Server struct {
	engine *engine.Engine
	log    *zap.Logger

	mu sync.Mutex
}

// New builds a Server around an already-open Engine.
func New(eng *engine.Engine, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{engine: eng, log: log}
}

// Serve accepts connections on ln until it returns a permanent error or is
// closed. Each connection is handled in its own goroutine.
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	s.log.Info("connection accepted", zap.String("remote", remote))
	defer func() {
		conn.Close()
		s.log.Info("connection closed", zap.String("remote", remote))
	}()

	sock := protocol.NewBufSocket(conn)
	for {
		req, err := sock.ReadRequest()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Warn("read failed", zap.String("remote", remote), zap.Error(err))
			}
			return
		}

		resp := s.dispatch(req)

		if err := sock.WriteResponse(resp); err != nil {
			s.log.Warn("write failed", zap.String("remote", remote), zap.Error(err))
			return
		}
	}
}

// dispatch translates, serialises, and executes one request, logging at
// Info for query handle issuance, Warn for recoverable protocol errors,
// and Error for catalog/table-store failures.
func (s *Server) dispatch(req protocol.Request) protocol.Response {
	action, perr := protocol.ToAction(req)
	if perr != nil {
		s.log.Warn("malformed request", zap.String("kind", string(req.Kind)), zap.String("reason", perr.Error()))
		return protocol.Response{Kind: protocol.ResponseError, Err: &protocol.WireError{Kind: perr.Kind.String(), Message: perr.Error()}}
	}

	s.mu.Lock()
	reaction := s.engine.Execute(action)
	s.mu.Unlock()

	if reaction.Kind == engine.ReactionError {
		s.log.Error("engine error", zap.String("table", action.Table), zap.String("reason", reaction.Err.Error()))
	} else if reaction.Kind == engine.ReactionQueryStart {
		s.log.Info("query handle issued", zap.String("table", action.Table), zap.Uint64("qid", reaction.QID))
	}

	return protocol.FromReaction(reaction)
}
