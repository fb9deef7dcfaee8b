package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zodiora/live/internal/core"
	"github.com/zodiora/live/internal/domain"
)

type connEntry struct {
	Client  core.Client
	Session domain.SessionID
}

type seatKey struct {
	Session domain.SessionID
	User    domain.UserID
}

// Registry tracks which session, if any, each live connection sits in,
// plus the seats riding out a disconnect grace window. A connection is in
// at most one session; holding a seat and holding a connection are
// separate facts here.
type Registry struct {
	mu    sync.RWMutex
	conns map[core.ClientID]*connEntry
	away  map[seatKey]*time.Timer
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[core.ClientID]*connEntry),
		away:  make(map[seatKey]*time.Timer),
	}
}

// Bind registers a freshly accepted connection, sessionless until it
// creates or joins something.
func (r *Registry) Bind(c core.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[c.ID()] = &connEntry{Client: c}
	log.Info().Str("module", "app.registry").Str("cid", string(c.ID())).Msg("bound connection")
}

// Drop forgets a connection and reports the session it was in.
func (r *Registry) Drop(id core.ClientID) (domain.SessionID, core.Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return "", nil, false
	}
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("cid", string(id)).Msg("dropped connection")
	return e.Session, e.Client, true
}

func (r *Registry) ClientOf(id core.ClientID) (core.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.Client, true
	}
	return nil, false
}

// SessionOf reports the session a connection is currently in.
func (r *Registry) SessionOf(id core.ClientID) (domain.SessionID, core.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok || e.Session == "" {
		return "", nil, false
	}
	return e.Session, e.Client, true
}

func (r *Registry) SetSession(id core.ClientID, s domain.SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return false
	}
	e.Session = s
	return true
}

func (r *Registry) ClearSession(id core.ClientID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok {
		e.Session = ""
	}
}

// HoldSeat parks a seat for the grace window, replacing any earlier hold
// for the same seat.
func (r *Registry) HoldSeat(session domain.SessionID, user domain.UserID, t *time.Timer) {
	key := seatKey{Session: session, User: user}
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.away[key]; ok {
		old.Stop()
	}
	r.away[key] = t
	log.Info().Str("module", "app.registry").Str("sid", string(session)).Str("uid", string(user)).Msg("holding seat")
}

// ClaimSeat settles a held seat exactly once. The reconnect path and the
// expiry callback both call it; whichever gets true owns the outcome.
func (r *Registry) ClaimSeat(session domain.SessionID, user domain.UserID) bool {
	key := seatKey{Session: session, User: user}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.away[key]
	if !ok {
		return false
	}
	t.Stop()
	delete(r.away, key)
	return true
}

// DropSeats cancels every pending hold for a session, used when the
// session reaches its terminal state.
func (r *Registry) DropSeats(session domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, t := range r.away {
		if key.Session == session {
			t.Stop()
			delete(r.away, key)
		}
	}
}
