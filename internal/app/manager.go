// Package app orchestrates session kernels, connection bindings and the
// shared directories (room codes, grace seats, flood limits). Adapters
// talk to the Manager; the Manager talks to per-session state.
package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zodiora/live/internal/content"
	"github.com/zodiora/live/internal/core"
	"github.com/zodiora/live/internal/domain"
)

// Options carries the tunables the manager reads at runtime. Zero values
// fall back to serviceable defaults so tests can construct a Manager bare.
type Options struct {
	GraceWindow    time.Duration
	CursorInterval time.Duration
	IdleTimeout    time.Duration
	TypingTTL      time.Duration
	ChatBurst      int
	ChatWindow     time.Duration
	SweepInterval  time.Duration
}

func (o Options) withDefaults() Options {
	if o.GraceWindow <= 0 {
		o.GraceWindow = 45 * time.Second
	}
	if o.CursorInterval < 0 {
		o.CursorInterval = 0
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = 30 * time.Minute
	}
	if o.TypingTTL <= 0 {
		o.TypingTTL = 4 * time.Second
	}
	if o.ChatBurst <= 0 {
		o.ChatBurst = 10
	}
	if o.ChatWindow <= 0 {
		o.ChatWindow = 10 * time.Second
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = time.Minute
	}
	return o
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*core.State

	codes   *CodeDirectory
	reg     *Registry
	library content.Provider
	limiter *SlidingWindow
	cursors *CursorGate
	policy  Policy
	opts    Options

	typingMu sync.Mutex
	typing   map[seatKey]*time.Timer
}

func NewManager(library content.Provider, policy Policy, opts Options) *Manager {
	opts = opts.withDefaults()
	m := &Manager{
		sessions: make(map[domain.SessionID]*core.State),
		codes:    NewCodeDirectory(),
		reg:      NewRegistry(),
		library:  library,
		limiter:  NewSlidingWindow(opts.ChatBurst, opts.ChatWindow),
		policy:   policy,
		opts:     opts,
		typing:   make(map[seatKey]*time.Timer),
	}
	m.cursors = NewCursorGate(opts.CursorInterval, m.flushCursor)
	return m
}

// Registry exposes the connection directory to the transport adapter.
func (m *Manager) Registry() *Registry {
	return m.reg
}

func (m *Manager) state(id domain.SessionID) (*core.State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.sessions[id]
	return st, ok
}

// resolve maps a connection to the session it is seated in.
func (m *Manager) resolve(id core.ClientID) (*core.State, core.Client, error) {
	sid, client, ok := m.reg.SessionOf(id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: connection is not in a session", domain.ErrNotFound)
	}
	st, ok := m.state(sid)
	if !ok {
		m.reg.ClearSession(id)
		return nil, nil, fmt.Errorf("%w: session is gone", domain.ErrNotFound)
	}
	return st, client, nil
}

// enforce applies the backpressure policy to clients that dropped frames
// during a fan-out. The disconnect path emits nothing itself, so this
// never cascades.
func (m *Manager) enforce(st *core.State, res core.PublishResult) {
	if len(res.Dropped) == 0 {
		return
	}
	sid := st.Meta().ID
	for _, cid := range res.Dropped {
		switch m.policy.OnBackpressure(sid, cid) {
		case Disconnect:
			log.Warn().Str("module", "app.manager").Str("sid", string(sid)).Str("cid", string(cid)).
				Msg("disconnecting slow consumer")
			if cl, ok := m.reg.ClientOf(cid); ok {
				cl.Signal().Close()
			}
			m.DropConnection(cid)
		case MarkSlow, DropFrame, NoAction:
		}
	}
}

// completeSession releases the terminal session's room code and any grace
// holds. The state itself stays resident until its last viewer detaches.
func (m *Manager) completeSession(sid domain.SessionID) {
	m.codes.Release(sid)
	m.reg.DropSeats(sid)
}

func (m *Manager) purge(sid domain.SessionID) {
	m.mu.Lock()
	delete(m.sessions, sid)
	m.mu.Unlock()
	log.Info().Str("module", "app.manager").Str("sid", string(sid)).Msg("purged session")
}

// Run drives periodic housekeeping until ctx is canceled: idle sessions
// are expired and terminal sessions with no remaining viewers are purged.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

func (m *Manager) sweep(now time.Time) {
	m.mu.RLock()
	states := make(map[domain.SessionID]*core.State, len(m.sessions))
	for sid, st := range m.sessions {
		states[sid] = st
	}
	m.mu.RUnlock()

	for sid, st := range states {
		meta := st.Meta()
		switch {
		case meta.Status == domain.StatusComplete:
			if st.AttachedCount() == 0 {
				m.purge(sid)
			}
		case st.IdleFor(now) > m.opts.IdleTimeout:
			log.Info().Str("module", "app.manager").Str("sid", string(sid)).Msg("expiring idle session")
			res := st.Expire()
			m.completeSession(sid)
			m.enforce(st, res)
			if st.AttachedCount() == 0 {
				m.purge(sid)
			}
		}
	}
}

// SessionSummary is the lobby's view of one joinable session.
type SessionSummary struct {
	ID              domain.SessionID   `json:"id"`
	Type            domain.SessionType `json:"type"`
	Title           string             `json:"title"`
	Description     string             `json:"description,omitempty"`
	RoomCode        domain.RoomCode    `json:"room_code"`
	Status          domain.Status      `json:"status"`
	Participants    int                `json:"participants"`
	MaxParticipants int                `json:"max_participants"`
	CreatedAt       time.Time          `json:"created_at"`
}

// List reports public non-terminal sessions, newest first.
func (m *Manager) List() []SessionSummary {
	m.mu.RLock()
	states := make([]*core.State, 0, len(m.sessions))
	for _, st := range m.sessions {
		states = append(states, st)
	}
	m.mu.RUnlock()

	out := make([]SessionSummary, 0, len(states))
	for _, st := range states {
		meta := st.Meta()
		if meta.IsPrivate || meta.Status == domain.StatusComplete {
			continue
		}
		out = append(out, SessionSummary{
			ID:              meta.ID,
			Type:            meta.Type,
			Title:           meta.Title,
			Description:     meta.Description,
			RoomCode:        meta.RoomCode,
			Status:          meta.Status,
			Participants:    st.ParticipantCount(),
			MaxParticipants: meta.MaxParticipants,
			CreatedAt:       meta.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Snapshot returns the full authoritative state of the caller's session.
func (m *Manager) Snapshot(id core.ClientID) (core.SessionStateEvent, error) {
	st, _, err := m.resolve(id)
	if err != nil {
		return core.SessionStateEvent{}, err
	}
	return st.Snapshot(), nil
}
