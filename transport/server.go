// Package transport exposes the relay over WebSocket. Each accepted
// socket is wrapped in a contract.Conn adapter and handed to its own
// session goroutine; nothing in here knows about routing or persistence.
package transport

import (
	"chat-relay/contract"
	"chat-relay/runtime"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// wsConn adapts a gorilla websocket to contract.Conn. Gorilla permits a
// single concurrent writer, so writes are serialized behind a mutex; the
// router, peer sessions and the owning session all write to one conn.
type wsConn struct {
	id      uuid.UUID
	ws      *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsConn) ID() uuid.UUID { return c.id }

func (c *wsConn) ReadMessage() (string, error) {
	for {
		messageType, payload, err := c.ws.ReadMessage()
		if err != nil {
			return "", err
		}
		if messageType != websocket.TextMessage {
			continue
		}
		return string(payload), nil
	}
}

func (c *wsConn) WriteMessage(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, []byte(line))
}

func (c *wsConn) Close() error {
	return c.ws.Close()
}

type Server struct {
	log      *slog.Logger
	registry contract.IRegistry
	router   contract.IRouter
	queue    contract.IQueue
	store    contract.IMessageStore
	upgrader websocket.Upgrader
}

func NewServer(log *slog.Logger, registry contract.IRegistry,
	router contract.IRouter, queue contract.IQueue,
	store contract.IMessageStore) *Server {
	return &Server{
		log:      log,
		registry: registry,
		router:   router,
		queue:    queue,
		store:    store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Display names are unauthenticated routing labels; origin
			// checks would add nothing here.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	conn := &wsConn{id: uuid.New(), ws: ws}
	s.log.Debug("connection accepted", "conn", conn.ID(), "remote", r.RemoteAddr)

	session := runtime.NewSession(s.log, conn, s.registry, s.router, s.queue, s.store)
	go session.Run()
}
