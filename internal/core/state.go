// Package core holds the per-session kernel: the authoritative state of one
// live session and the fan-out that keeps every attached client in sync.
package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zodiora/live/internal/domain"
)

// State is the authoritative record of one session. Every mutation goes
// through a named operation that validates first, commits under the state
// lock, and only then enqueues fan-out frames in commit order, so each
// attached client observes the same per-session event order. Enqueueing
// uses TrySend and never blocks: a slow consumer surfaces in PublishResult
// instead of stalling the room. The lifecycle manager and turn coordinator
// are the only writers; everything else reads snapshots.
type State struct {
	mu sync.RWMutex

	meta         domain.Session
	participants []*domain.Participant // join order
	byUser       map[domain.UserID]*domain.Participant

	messages  []*domain.Message
	byMessage map[domain.MessageID]*domain.Message

	cards  []*domain.Card
	byCard map[domain.CardID]*domain.Card

	turnOrder []domain.UserID
	turnIndex int

	clients    map[ClientID]Client
	userClient map[domain.UserID]ClientID

	lastActivity time.Time
}

func NewState(meta domain.Session) *State {
	return &State{
		meta:         meta,
		byUser:       make(map[domain.UserID]*domain.Participant),
		byMessage:    make(map[domain.MessageID]*domain.Message),
		byCard:       make(map[domain.CardID]*domain.Card),
		clients:      make(map[ClientID]Client),
		userClient:   make(map[domain.UserID]ClientID),
		lastActivity: meta.CreatedAt,
	}
}

// Meta returns a copy of the session metadata.
func (s *State) Meta() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta
}

func (s *State) ParticipantCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants)
}

func (s *State) AttachedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *State) HasParticipant(uid domain.UserID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byUser[uid]
	return ok
}

// IdleFor reports how long ago the session last saw a committed mutation.
func (s *State) IdleFor(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastActivity)
}

// Detach drops a client's transport without touching its participant seat;
// the grace window decides whether the seat survives. Returns how many
// clients remain attached so the manager can purge drained sessions.
func (s *State) Detach(id ClientID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[id]; ok {
		delete(s.clients, id)
		if s.userClient[c.Identity().UserID] == id {
			delete(s.userClient, c.Identity().UserID)
		}
	}
	return len(s.clients)
}

// Snapshot builds the full session_state view under the read lock.
func (s *State) Snapshot() SessionStateEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() SessionStateEvent {
	ev := SessionStateEvent{
		Type:        EvtSessionState,
		Session:     s.meta,
		CurrentTurn: s.turnIndex,
	}
	ev.Participants = make([]domain.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		ev.Participants = append(ev.Participants, *p)
	}
	ev.Messages = make([]domain.Message, 0, len(s.messages))
	for _, m := range s.messages {
		ev.Messages = append(ev.Messages, *m)
	}
	if len(s.cards) > 0 {
		ev.Cards = make([]domain.Card, 0, len(s.cards))
		for _, c := range s.cards {
			ev.Cards = append(ev.Cards, *c)
		}
	}
	if len(s.turnOrder) > 0 {
		ev.TurnOrder = append([]domain.UserID(nil), s.turnOrder...)
	}
	return ev
}

// broadcast marshals once and enqueues to every attached client except
// skip ("" skips nobody). Callers hold the write lock.
func (s *State) broadcast(v any, skip ClientID) PublishResult {
	frame, ok := Encode(v)
	if !ok {
		return PublishResult{}
	}
	return s.publish(frame, skip)
}

func (s *State) publish(frame Frame, skip ClientID) PublishResult {
	res := PublishResult{}
	for id, c := range s.clients {
		if id == skip {
			continue
		}
		if err := c.Signal().TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, id)
			continue
		}
		res.Sent++
	}
	if len(res.Dropped) > 0 {
		log.Debug().Str("module", "core").Str("sid", string(s.meta.ID)).
			Int("sent", res.Sent).Int("dropped", len(res.Dropped)).Msg("fan-out backpressure")
	}
	return res
}

// sendTo enqueues one event to a single attached client. Callers hold the
// write lock; ordering relative to broadcasts is the enqueue order.
func (s *State) sendTo(id ClientID, v any) PublishResult {
	res := PublishResult{}
	c, ok := s.clients[id]
	if !ok {
		return res
	}
	frame, encOK := Encode(v)
	if !encOK {
		return res
	}
	if err := c.Signal().TrySend(frame); err != nil {
		res.Dropped = append(res.Dropped, id)
		return res
	}
	res.Sent = 1
	return res
}

func (s *State) touchLocked(now time.Time) {
	s.lastActivity = now
}

func (s *State) attachLocked(c Client) {
	uid := c.Identity().UserID
	s.clients[c.ID()] = c
	s.userClient[uid] = c.ID()
}
