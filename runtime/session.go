package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"log/slog"

	"github.com/samber/lo"
)

// Session drives one connection through its whole lifecycle: handshake,
// history replay, inbound routing loop, teardown.
//
// The first inbound message is taken as the display name, unvalidated.
// Once registered the session replays the stored history visible to that
// name, announces presence, then routes inbound lines until the transport
// reports closure. Teardown runs exactly once however the loop exits.
type Session struct {
	log      *slog.Logger
	conn     contract.Conn
	registry contract.IRegistry
	router   contract.IRouter
	queue    contract.IQueue
	store    contract.IMessageStore
	name     string
}

func NewSession(log *slog.Logger, conn contract.Conn,
	registry contract.IRegistry, router contract.IRouter,
	queue contract.IQueue, store contract.IMessageStore) *Session {
	return &Session{
		log:      log,
		conn:     conn,
		registry: registry,
		router:   router,
		queue:    queue,
		store:    store,
	}
}

func (s *Session) Run() {
	name, err := s.conn.ReadMessage()
	if err != nil {
		// Handshake never completed: nothing was registered, so there is
		// no presence to revoke.
		s.log.Debug("handshake failed", "conn", s.conn.ID(), "error", err)
		_ = s.conn.Close()
		return
	}
	s.name = name

	s.registry.Register(s.conn, s.name)
	defer s.teardown()
	s.log.Info("client joined", "name", s.name, "conn", s.conn.ID())

	// A broadcast arriving while the replay is in flight is delivered
	// rather than lost, at the cost of possibly interleaving with replay
	// lines. Documented weak-consistency window.
	if err := s.replay(); err != nil {
		s.log.Error("history replay failed", "name", s.name, "error", err)
		return
	}
	s.router.NotifyPresence()

	s.loop()
}

// replay sends the stored rows visible to this client, in storage
// insertion order, directly on this connection. Not routed through the
// router: the replay is private to the reconnecting client.
func (s *Session) replay() error {
	rows, err := s.store.ReadAllOrdered()
	if err != nil {
		return err
	}
	visible := lo.Filter(rows, func(m domain.Message, _ int) bool {
		return m.Broadcast() || m.Receiver == s.name
	})
	for _, m := range visible {
		if err := s.conn.WriteMessage(m.ReplayLine()); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) loop() {
	for {
		raw, err := s.conn.ReadMessage()
		if err != nil {
			s.log.Debug("read loop ended", "name", s.name, "error", err)
			return
		}
		if domain.IsWhisper(raw) {
			s.whisper(raw)
			continue
		}
		s.queue.Enqueue(domain.NewBroadcast(s.name, raw))
		s.router.Broadcast(domain.BroadcastLine(s.name, raw))
	}
}

// whisper routes a directed message. The sender is the only one told
// about parse errors and unknown targets; nothing is queued for
// persistence unless the whisper was actually routed.
func (s *Session) whisper(raw string) {
	target, body, err := domain.ParseWhisper(raw)
	if err != nil {
		s.send(domain.UsageLine)
		return
	}
	peer, ok := s.registry.LookupByName(target)
	if !ok {
		s.send(domain.OfflineLine(target))
		return
	}
	if err := peer.WriteMessage(domain.PrivateLine(s.name, body)); err != nil {
		// Transport fault on the peer: its own session will tear it down.
		s.log.Debug("whisper delivery failed", "target", target, "error", err)
	}
	s.send(domain.ConfirmationLine(target, body))
	s.queue.Enqueue(domain.NewWhisper(s.name, target, body))
}

func (s *Session) send(line string) {
	if err := s.conn.WriteMessage(line); err != nil {
		s.log.Debug("send failed", "name", s.name, "error", err)
	}
}

// teardown unregisters the connection, tells everyone who is left and
// releases the transport. Runs exactly once per registered session.
func (s *Session) teardown() {
	s.registry.Unregister(s.conn)
	s.router.NotifyPresence()
	_ = s.conn.Close()
	s.log.Info("client left", "name", s.name, "conn", s.conn.ID())
}
