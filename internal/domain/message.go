package domain

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

type MessageID string

type MessageType string

const (
	MessageText     MessageType = "text"
	MessageReaction MessageType = "reaction"
	MessageSystem   MessageType = "system"
)

const MaxContentLen = 2000

// Reaction is one user's symbol on a message. Label is an optional
// decorative name (e.g. the zodiac sign the emoji stands for).
type Reaction struct {
	UserID UserID `json:"user_id"`
	Symbol string `json:"symbol"`
	Label  string `json:"label,omitempty"`
}

// Message is an append-only chat entry. After creation only the reaction
// list may grow; nothing else is ever mutated.
type Message struct {
	ID               MessageID   `json:"id"`
	SessionID        SessionID   `json:"session_id"`
	UserID           UserID      `json:"user_id"`
	DisplayName      string      `json:"display_name"`
	Content          string      `json:"content"`
	Timestamp        time.Time   `json:"timestamp"`
	Type             MessageType `json:"message_type"`
	ReplyTo          MessageID   `json:"reply_to,omitempty"`
	AttachedEntityID string      `json:"attached_entity_id,omitempty"`
	Reactions        []Reaction  `json:"reactions,omitempty"`
}

// NewMessage mints a user text message. ULIDs keep IDs time-sortable,
// which makes the backward-only reply rule cheap to check.
func NewMessage(uid UserID, content string, at time.Time) *Message {
	return &Message{
		ID:        MessageID(ulid.Make().String()),
		UserID:    uid,
		Content:   content,
		Timestamp: at,
		Type:      MessageText,
	}
}

// NewSystemMessage mints an engine-authored log entry.
func NewSystemMessage(content string, at time.Time) *Message {
	return &Message{
		ID:        MessageID(ulid.Make().String()),
		Content:   content,
		Timestamp: at,
		Type:      MessageSystem,
	}
}

// TrimContent normalizes message text; empty results are rejected upstream
// with ErrEmptyMessage. The length cap counts characters, not bytes, and
// never cuts mid-rune.
func TrimContent(content string) string {
	c := strings.TrimSpace(content)
	if len(c) > MaxContentLen {
		if r := []rune(c); len(r) > MaxContentLen {
			c = string(r[:MaxContentLen])
		}
	}
	return c
}

// React appends a reaction. Re-adding an identical (user, symbol) pair is
// idempotent and reports false.
func (m *Message) React(r Reaction) bool {
	for _, have := range m.Reactions {
		if have.UserID == r.UserID && have.Symbol == r.Symbol {
			return false
		}
	}
	m.Reactions = append(m.Reactions, r)
	return true
}
