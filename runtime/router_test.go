package runtime

import (
	"log/slog"
	"testing"

	"chat-relay/observability"
	"github.com/stretchr/testify/require"
)

func TestRouter_Broadcast_Reaches_Every_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	stats := observability.NewDeliveryStats()
	router := NewRouter(slog.Default(), registry, stats)

	alice := newFakeConn()
	bob := newFakeConn()
	registry.Register(alice, "alice")
	registry.Register(bob, "bob")

	router.Broadcast("alice: hello")

	req.Equal([]string{"alice: hello"}, alice.Sent())
	req.Equal([]string{"alice: hello"}, bob.Sent())
	req.Equal(uint64(2), stats.Delivered.Load())
}

func TestRouter_Broadcast_Swallows_Failed_Deliveries(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	stats := observability.NewDeliveryStats()
	router := NewRouter(slog.Default(), registry, stats)

	broken := newFakeConn()
	broken.fail = true
	healthy := newFakeConn()
	registry.Register(broken, "broken")
	registry.Register(healthy, "healthy")

	// When delivery fails on the first connection
	router.Broadcast("still going")

	// Then the remaining connection is served anyway
	req.Equal([]string{"still going"}, healthy.Sent())
	req.Equal(uint64(1), stats.Failed.Load())
	req.Equal(uint64(1), stats.Delivered.Load())

	// And the broken connection stays registered; teardown belongs to
	// the session owning it
	req.Len(registry.Snapshot(), 2)
}

func TestRouter_NotifyPresence_Lists_Names_In_Registration_Order(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	router := NewRouter(slog.Default(), registry, observability.NewDeliveryStats())

	alice := newFakeConn()
	bob := newFakeConn()
	registry.Register(alice, "alice")
	registry.Register(bob, "bob")

	router.NotifyPresence()

	req.Equal([]string{"[online users] alice, bob"}, alice.Sent())
	req.Equal([]string{"[online users] alice, bob"}, bob.Sent())
}

func TestRouter_NotifyPresence_Empty_Registry_Delivers_Nothing(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	stats := observability.NewDeliveryStats()
	router := NewRouter(slog.Default(), registry, stats)

	router.NotifyPresence()

	req.Zero(stats.Delivered.Load())
}
