package core

import (
	"fmt"
	"time"

	"github.com/zodiora/live/internal/domain"
)

// Turn coordination: who may act on a card and when the cursor advances.
// Order is frozen at start from the join order (host-first where the type
// policy says so) and repaired in place when a participant leaves.

func (s *State) buildTurnOrderLocked() {
	policy, _ := domain.PolicyFor(s.meta.Type)
	s.turnOrder = make([]domain.UserID, 0, len(s.participants))
	for _, p := range s.participants {
		s.turnOrder = append(s.turnOrder, p.UserID)
	}
	if policy.HostFirst {
		for i, uid := range s.turnOrder {
			if uid == s.meta.HostID && i != 0 {
				s.turnOrder = append(s.turnOrder[:i], s.turnOrder[i+1:]...)
				s.turnOrder = append([]domain.UserID{uid}, s.turnOrder...)
				break
			}
		}
	}
	s.turnIndex = 0
}

func (s *State) installCardsLocked(cards []domain.Card) {
	s.cards = make([]*domain.Card, 0, len(cards))
	for i := range cards {
		c := cards[i]
		s.cards = append(s.cards, &c)
		s.byCard[c.ID] = &c
	}
}

// Reveal flips a card exactly once. Where the type runs ordered turns,
// only the current turn holder or the host (facilitator override) may
// act; free-for-all types let any participant act. Two racing reveals
// serialize on the state lock: the first wins, the second gets
// AlreadyRevealed.
func (s *State) Reveal(uid domain.UserID, cardID domain.CardID, now time.Time) (PublishResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := PublishResult{}
	if s.meta.Status == domain.StatusComplete {
		return res, domain.ErrSessionClosed
	}
	if s.meta.Status != domain.StatusActive {
		return res, fmt.Errorf("%w: session has not started", domain.ErrInvalidTransition)
	}
	if _, ok := s.byUser[uid]; !ok {
		return res, fmt.Errorf("%w: not a participant", domain.ErrUnauthorized)
	}
	policy, _ := domain.PolicyFor(s.meta.Type)
	if policy.TurnAdvances && uid != s.meta.HostID && !s.isCurrentTurnLocked(uid) {
		return res, domain.ErrNotYourTurn
	}
	card, ok := s.byCard[cardID]
	if !ok {
		return res, fmt.Errorf("%w: unknown card %q", domain.ErrNotFound, cardID)
	}
	if card.Revealed {
		return res, domain.ErrAlreadyRevealed
	}

	card.Revealed = true
	card.RevealedBy = uid
	revealedAt := now
	card.RevealedAt = &revealedAt
	s.touchLocked(now)

	res.merge(s.broadcast(ResourceRevealedEvent{Type: EvtResourceRevealed, SessionID: s.meta.ID, Card: *card}, ""))

	if policy.TurnAdvances && len(s.turnOrder) > 0 {
		s.turnIndex = (s.turnIndex + 1) % len(s.turnOrder)
		res.merge(s.broadcast(TurnChangedEvent{
			Type: EvtTurnChanged, SessionID: s.meta.ID, TurnIndex: s.turnIndex, UserID: s.turnOrder[s.turnIndex],
		}, ""))
	}
	return res, nil
}

// TurnHolder reports the user whose turn it is, false when no order exists.
func (s *State) TurnHolder() (domain.UserID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.turnOrder) == 0 {
		return "", false
	}
	return s.turnOrder[s.turnIndex], true
}

func (s *State) isCurrentTurnLocked(uid domain.UserID) bool {
	if len(s.turnOrder) == 0 {
		return false
	}
	return s.turnOrder[s.turnIndex] == uid
}

// repairTurnLocked removes a departed participant from the order, keeping
// the relative order of the rest. If it was their turn, the turn passes
// immediately to the next remaining participant.
func (s *State) repairTurnLocked(removed domain.UserID) PublishResult {
	res := PublishResult{}
	idx := -1
	for i, uid := range s.turnOrder {
		if uid == removed {
			idx = i
			break
		}
	}
	if idx < 0 {
		return res
	}

	s.turnOrder = append(s.turnOrder[:idx], s.turnOrder[idx+1:]...)
	if len(s.turnOrder) == 0 {
		s.turnIndex = 0
		return res
	}
	if idx < s.turnIndex {
		s.turnIndex--
	}
	s.turnIndex %= len(s.turnOrder)

	if s.meta.Status == domain.StatusActive {
		res.merge(s.broadcast(TurnChangedEvent{
			Type: EvtTurnChanged, SessionID: s.meta.ID, TurnIndex: s.turnIndex, UserID: s.turnOrder[s.turnIndex],
		}, ""))
	}
	return res
}
