package bridge

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	vberrors "github.com/go-drift/viewbridge/pkg/errors"
)

// Server accepts bridge connections over WebSocket. Each text frame is one
// Batch; results of queries in that batch are written back on the same
// connection.
type Server struct {
	router   *Router
	codec    MessageCodec
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*client
}

// client serializes writes to one connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// NewServer creates a server that applies batches through router.
func NewServer(router *Router, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		router:  router,
		codec:   DefaultCodec,
		logger:  logger,
		clients: make(map[*websocket.Conn]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP upgrades the request and reads batches until the client
// disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}

	s.mu.Lock()
	s.clients[conn] = c
	s.mu.Unlock()
	s.logger.Debug("bridge client connected", "remote", req.RemoteAddr)

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()
	sink := ResultSinkFunc(func(r Result) { s.send(c, r) })

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if kind != websocket.TextMessage {
			continue
		}
		batch, err := s.codec.DecodeBatch(data)
		if err != nil {
			vberrors.ReportTo(s.router.handler, &vberrors.UIError{
				Op:       "bridge.Server",
				Kind:     vberrors.KindBridge,
				NonFatal: true,
				Err:      err,
			})
			s.send(c, Result{Error: err.Error()})
			continue
		}
		if _, err := s.router.ApplyTo(ctx, batch, sink); err != nil {
			s.send(c, Result{Error: err.Error()})
		}
	}

	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
	s.logger.Debug("bridge client disconnected", "remote", req.RemoteAddr)
}

func (s *Server) send(c *client, r Result) {
	data, err := s.codec.EncodeResult(r)
	if err != nil {
		s.logger.Warn("encode result", "callId", r.CallID, "err", err)
		return
	}
	if err := c.write(data); err != nil {
		s.mu.Lock()
		delete(s.clients, c.conn)
		s.mu.Unlock()
		c.conn.Close()
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close closes all client connections.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
	}
}
