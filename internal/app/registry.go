package app

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/freeflow/signaling/internal/core"
	"github.com/freeflow/signaling/internal/domain"
)

type presenceEntry struct {
	SID  core.SessionID
	Name string
	Conn core.SignalConnection
}

// Registry tracks which user identities currently have a live connection.
// A user announcing from a second connection overwrites the first entry
// (last-writer-wins); nothing is synchronized with the prior connection.
type Registry struct {
	mu        sync.RWMutex
	byUser    map[domain.UserID]*presenceEntry
	bySession map[core.SessionID]domain.UserID
	order     []domain.UserID
}

func NewRegistry() *Registry {
	return &Registry{
		byUser:    make(map[domain.UserID]*presenceEntry),
		bySession: make(map[core.SessionID]domain.UserID),
	}
}

func (r *Registry) Register(sid core.SessionID, id domain.UserID, name string, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byUser[id]; ok {
		delete(r.bySession, prev.SID)
	} else {
		r.order = append(r.order, id)
	}
	r.byUser[id] = &presenceEntry{SID: sid, Name: name, Conn: conn}
	r.bySession[sid] = id
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("user", string(id)).Str("name", name).Msg("user online")
}

// Unregister removes the presence entry owned by sid, if any, and returns
// the removed user id so callers can cascade room cleanup. A stale sid
// whose user has since re-announced elsewhere removes nothing.
func (r *Registry) Unregister(sid core.SessionID) (domain.UserID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.bySession[sid]
	if !ok {
		return "", false
	}
	delete(r.bySession, sid)
	if entry, ok := r.byUser[id]; ok && entry.SID == sid {
		delete(r.byUser, id)
		r.order = lo.Without(r.order, id)
		log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("user", string(id)).Msg("user offline")
		return id, true
	}
	return "", false
}

// Lookup returns the live connection for id. Callers treat a missing
// entry and an unwritable connection identically: undeliverable.
func (r *Registry) Lookup(id domain.UserID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.byUser[id]
	if !ok {
		return nil, false
	}
	return entry.Conn, true
}

// NameOf returns the most recently announced display name, or "".
func (r *Registry) NameOf(id domain.UserID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.byUser[id]; ok {
		return entry.Name
	}
	return ""
}

// Snapshot lists everyone online, in announcement order.
func (r *Registry) Snapshot() []core.PresenceDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Map(r.order, func(id domain.UserID, _ int) core.PresenceDTO {
		return core.PresenceDTO{ID: id, Name: r.byUser[id].Name}
	})
}

// Connections returns every live connection, for full broadcasts.
func (r *Registry) Connections() []core.SignalConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.SignalConnection, 0, len(r.byUser))
	for _, entry := range r.byUser {
		out = append(out, entry.Conn)
	}
	return out
}
