package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/observability"
	"log/slog"

	"github.com/samber/lo"
)

// Router fans a line out to every registered connection.
//
// Delivery is best effort: a broken connection must not abort delivery to
// the remaining ones, so per-recipient failures are collected, counted and
// logged but never escalated. Failed connections are not unregistered
// here; teardown belongs to the session that owns the connection.
type Router struct {
	log      *slog.Logger
	registry contract.IRegistry
	stats    *observability.DeliveryStats
}

func NewRouter(log *slog.Logger, registry contract.IRegistry, stats *observability.DeliveryStats) *Router {
	return &Router{log: log, registry: registry, stats: stats}
}

// Broadcast delivers line to every connection in a registry snapshot.
func (r *Router) Broadcast(line string) {
	r.deliver(r.registry.Snapshot(), line)
}

// NotifyPresence sends the current list of display names, in registry
// snapshot order, to every connection. Called after every join and every
// leave, so the presence view lags by at most one broadcast window.
func (r *Router) NotifyPresence() {
	snapshot := r.registry.Snapshot()
	names := lo.Map(snapshot, func(entry contract.Entry, _ int) string {
		return entry.Name
	})
	r.deliver(snapshot, domain.PresenceLine(names))
}

func (r *Router) deliver(entries []contract.Entry, line string) {
	for _, entry := range entries {
		if err := entry.Conn.WriteMessage(line); err != nil {
			r.stats.Failed.Add(1)
			r.log.Debug("delivery failed", "name", entry.Name, "conn", entry.Conn.ID(), "error", err)
			continue
		}
		r.stats.Delivered.Add(1)
	}
}
