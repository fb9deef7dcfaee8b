package core

import (
	"fmt"
	"time"

	"github.com/zodiora/live/internal/domain"
)

// Append validates and commits one chat message, then fans it out. The log
// is append-only and ordered by commit; replyTo may only point backwards
// into the same session's log, which structurally rules out cycles.
func (s *State) Append(msg domain.Message) (PublishResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := PublishResult{}
	if s.meta.Status == domain.StatusComplete {
		return res, domain.ErrSessionClosed
	}
	p, ok := s.byUser[msg.UserID]
	if !ok {
		return res, fmt.Errorf("%w: not a participant", domain.ErrUnauthorized)
	}

	msg.Content = domain.TrimContent(msg.Content)
	if msg.Content == "" {
		return res, domain.ErrEmptyMessage
	}
	if msg.ReplyTo != "" {
		target, ok := s.byMessage[msg.ReplyTo]
		if !ok {
			return res, fmt.Errorf("%w: reply target not in this session", domain.ErrInvalidReply)
		}
		if target.Timestamp.After(msg.Timestamp) {
			return res, fmt.Errorf("%w: reply target is newer than the message", domain.ErrInvalidReply)
		}
	}

	msg.SessionID = s.meta.ID
	msg.DisplayName = p.DisplayName
	stored := msg
	s.messages = append(s.messages, &stored)
	s.byMessage[stored.ID] = &stored
	s.touchLocked(msg.Timestamp)

	res.merge(s.broadcast(MessageEvent{Type: EvtMessage, SessionID: s.meta.ID, Message: stored}, ""))
	return res, nil
}

// React appends a reaction to an existing message. Duplicate (user,
// symbol) pairs are idempotent: no mutation, no broadcast, no error.
func (s *State) React(messageID domain.MessageID, r domain.Reaction, now time.Time) (PublishResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := PublishResult{}
	if s.meta.Status == domain.StatusComplete {
		return res, domain.ErrSessionClosed
	}
	if _, ok := s.byUser[r.UserID]; !ok {
		return res, fmt.Errorf("%w: not a participant", domain.ErrUnauthorized)
	}
	msg, ok := s.byMessage[messageID]
	if !ok {
		return res, fmt.Errorf("%w: unknown message %q", domain.ErrNotFound, messageID)
	}
	if !msg.React(r) {
		return res, nil
	}
	s.touchLocked(now)

	res.merge(s.broadcast(ReactionAddedEvent{Type: EvtReactionAdded, SessionID: s.meta.ID, MessageID: messageID, Reaction: r}, ""))
	return res, nil
}

// FindMessage returns a copy, for read paths only.
func (s *State) FindMessage(id domain.MessageID) (domain.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byMessage[id]
	if !ok {
		return domain.Message{}, false
	}
	return *m, true
}

// systemMessageLocked appends an engine-authored log entry and fans it out
// to everyone except skip. Callers hold the write lock.
func (s *State) systemMessageLocked(content string, now time.Time, skip ClientID) PublishResult {
	msg := domain.NewSystemMessage(content, now)
	msg.SessionID = s.meta.ID
	s.messages = append(s.messages, msg)
	s.byMessage[msg.ID] = msg
	return s.broadcast(MessageEvent{Type: EvtMessage, SessionID: s.meta.ID, Message: *msg}, skip)
}
