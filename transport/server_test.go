package transport

import (
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type relayEnv struct {
	ts      *httptest.Server
	queue   *runtime.WriteBackQueue
	store   *repositories.MessageStore
	flusher *workers.FlushWorker
}

func newRelayEnv(t *testing.T) relayEnv {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	store := repositories.NewMessageStore(db, slog.Default())
	req.NoError(store.EnsureSchema())
	t.Cleanup(func() { _ = store.Close() })

	stats := observability.NewDeliveryStats()
	registry := runtime.NewRegistry()
	router := runtime.NewRouter(slog.Default(), registry, stats)
	queue := runtime.NewWriteBackQueue()
	flusher := workers.NewFlushWorker(slog.Default(), queue, store, stats, time.Second)

	server := NewServer(slog.Default(), registry, router, queue, store)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return relayEnv{ts: ts, queue: queue, store: store, flusher: flusher}
}

// join dials the relay and completes the display-name handshake.
func (e relayEnv) join(t *testing.T, name string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(name)))
	return ws
}

func readLine(t *testing.T, ws *websocket.Conn) string {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := ws.ReadMessage()
	require.NoError(t, err)
	return string(payload)
}

func TestRelay_Broadcast_And_History_Replay(t *testing.T) {
	req := require.New(t)
	env := newRelayEnv(t)

	// alice joins an empty relay
	alice := env.join(t, "alice")
	req.Equal("[online users] alice", readLine(t, alice))

	// bob joins: both see the updated presence
	bob := env.join(t, "bob")
	req.Equal("[online users] alice, bob", readLine(t, bob))
	req.Equal("[online users] alice, bob", readLine(t, alice))

	// alice broadcasts; everyone, sender included, receives it
	req.NoError(alice.WriteMessage(websocket.TextMessage, []byte("hello")))
	req.Equal("alice: hello", readLine(t, bob))
	req.Equal("alice: hello", readLine(t, alice))

	// The row reached the write-back queue, not yet the store
	rows, err := env.store.ReadAllOrdered()
	req.NoError(err)
	req.Empty(rows)

	// After a flush cycle the row is durable
	env.flusher.Flush()
	rows, err = env.store.ReadAllOrdered()
	req.NoError(err)
	req.Equal([]domain.Message{domain.NewBroadcast("alice", "hello")}, rows)

	// A fresh client replays the recorded conversation before presence
	carol := env.join(t, "carol")
	req.Equal("alice: hello", readLine(t, carol))
	req.Equal("[online users] alice, bob, carol", readLine(t, carol))
}

func TestRelay_Whisper_Routing(t *testing.T) {
	req := require.New(t)
	env := newRelayEnv(t)

	alice := env.join(t, "alice")
	readLine(t, alice) // own join presence
	bob := env.join(t, "bob")
	readLine(t, bob)
	readLine(t, alice) // bob's join presence

	// Online target: private line to bob, confirmation to alice
	req.NoError(alice.WriteMessage(websocket.TextMessage, []byte("/w bob hi there")))
	req.Equal("[private] alice: hi there", readLine(t, bob))
	req.Equal("[-> bob] hi there", readLine(t, alice))

	// Offline target: offline notice to alice only, nothing queued
	req.NoError(alice.WriteMessage(websocket.TextMessage, []byte("/w carol hi")))
	req.Equal("user carol is offline", readLine(t, alice))

	// Malformed: usage line to alice only
	req.NoError(alice.WriteMessage(websocket.TextMessage, []byte("/w ")))
	req.Equal(domain.UsageLine, readLine(t, alice))

	// Exactly the routed whisper is awaiting persistence
	batch := env.queue.DrainAll()
	req.Equal([]domain.Message{domain.NewWhisper("alice", "bob", "hi there")}, batch)
}

func TestRelay_Leave_Notifies_Survivors(t *testing.T) {
	req := require.New(t)
	env := newRelayEnv(t)

	alice := env.join(t, "alice")
	readLine(t, alice)
	bob := env.join(t, "bob")
	readLine(t, bob)
	readLine(t, alice)

	req.NoError(bob.Close())

	req.Equal("[online users] alice", readLine(t, alice))
}
