// Package runtime holds the live side of the relay: the connection
// registry, the fan-out router, per-connection sessions and the
// write-back queue. It contains no storage or transport specifics.
package runtime

import (
	"chat-relay/contract"
	"sync"
)

// Registry is the single source of truth for who is online. Entries are
// kept in registration order so that name lookups and presence notices
// are deterministic. Each session inserts its own connection at handshake
// and removes it at teardown; everything else only reads snapshots.
type Registry struct {
	mu      sync.RWMutex
	entries []contract.Entry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register inserts conn under the given display name. The caller
// guarantees conn is not already registered.
func (r *Registry) Register(conn contract.Conn, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, contract.Entry{Conn: conn, Name: name})
}

// Unregister removes conn. Safe to call for a connection that was never
// registered or was already removed; disconnect paths may race with a
// forced close.
func (r *Registry) Unregister(conn contract.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, entry := range r.entries {
		if entry.Conn.ID() == conn.ID() {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// LookupByName returns the first registered connection carrying name.
// Display names are not unique: a later connection reusing a name is
// shadowed by the earlier one until that one leaves. Kept for
// compatibility with the relay's historical behavior.
func (r *Registry) LookupByName(name string) (contract.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, entry := range r.entries {
		if entry.Name == name {
			return entry.Conn, true
		}
	}
	return nil, false
}

// Snapshot returns a point-in-time copy of the registry in registration
// order, safe to iterate while sessions register and unregister.
func (r *Registry) Snapshot() []contract.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make([]contract.Entry, len(r.entries))
	copy(snapshot, r.entries)
	return snapshot
}
