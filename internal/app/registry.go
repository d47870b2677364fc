package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/horlas08/awals-backend/internal/core"
	"github.com/horlas08/awals-backend/internal/domain"
)

type connEntry struct {
	Conn   core.Conn
	UserID domain.UserID
	RoomID domain.BookingID
	Cancel context.CancelFunc
}

// Registry tracks the universe of live connections. Rooms are not stored:
// a room is the set of entries whose RoomID matches, computed on demand.
type Registry struct {
	mu    sync.RWMutex
	conns map[core.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[core.ConnID]*connEntry)}
}

func (r *Registry) Register(id core.ConnID, c core.Conn, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connEntry{Conn: c, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("cid", string(id)).Msg("registered connection")
}

// Unregister removes the connection and cancels its context. Safe to call
// more than once and safe to race with an in-flight MembersOf snapshot.
func (r *Registry) Unregister(id core.ConnID) {
	r.mu.Lock()
	e, ok := r.conns[id]
	delete(r.conns, id)
	r.mu.Unlock()
	if !ok {
		return
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("cid", string(id)).Msg("unregistered connection")
}

// Authenticate binds the verified user to the connection. A repeated auth
// overwrites the previous identity.
func (r *Registry) Authenticate(id core.ConnID, uid domain.UserID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return false
	}
	e.UserID = uid
	log.Info().Str("module", "app.registry").Str("cid", string(id)).Str("user", string(uid)).Msg("authenticated")
	return true
}

func (r *Registry) UserOf(id core.ConnID) (domain.UserID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok || e.UserID == "" {
		return "", false
	}
	return e.UserID, true
}

// BindRoom points the connection at a booking room. Last join wins; there
// is no leave operation.
func (r *Registry) BindRoom(id core.ConnID, room domain.BookingID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return false
	}
	e.RoomID = room
	log.Info().Str("module", "app.registry").Str("cid", string(id)).Str("room", string(room)).Msg("bound room")
	return true
}

func (r *Registry) RoomOf(id core.ConnID) (domain.BookingID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok || e.RoomID == "" {
		return "", false
	}
	return e.RoomID, true
}

// Member is a point-in-time view of one room member.
type Member struct {
	ID   core.ConnID
	Conn core.Conn
}

// MembersOf returns a snapshot of the connections currently bound to the
// room. The snapshot may race with joins and disconnects; fan-out is
// best-effort by design.
func (r *Registry) MembersOf(room domain.BookingID) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Member, 0, len(r.conns))
	for id, e := range r.conns {
		if e.RoomID == room {
			out = append(out, Member{ID: id, Conn: e.Conn})
		}
	}
	return out
}

// Stats reports live connection and room counts.
func (r *Registry) Stats() (conns, rooms int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[domain.BookingID]struct{})
	for _, e := range r.conns {
		if e.RoomID != "" {
			seen[e.RoomID] = struct{}{}
		}
	}
	return len(r.conns), len(seen)
}
