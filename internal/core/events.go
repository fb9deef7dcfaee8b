package core

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/zodiora/live/internal/domain"
)

// Server→client event names. Client→server names live in the ws adapter;
// these are the ones the kernel emits.
const (
	EvtSessionState     = "session_state"
	EvtPresenceUpdate   = "presence_update"
	EvtCursorUpdate     = "cursor_update"
	EvtMessage          = "message"
	EvtReactionAdded    = "reaction_added"
	EvtTurnChanged      = "turn_changed"
	EvtResourceRevealed = "resource_revealed"
	EvtVoiceState       = "voice_state"
	EvtSessionStatus    = "session_status"
	EvtTyping           = "typing"
	EvtVoiceJoined      = "voice_joined"
	EvtPong             = "pong"
	EvtError            = "error"
)

// Presence actions carried by presence_update.
const (
	PresenceJoined      = "joined"
	PresenceLeft        = "left"
	PresenceOnline      = "online"
	PresenceHostChanged = "host_changed"
)

// SessionStateEvent is the full authoritative snapshot, sent to a client
// on join, on reconnect, and on request.
type SessionStateEvent struct {
	Type         string               `json:"type"`
	Session      domain.Session       `json:"session"`
	Participants []domain.Participant `json:"participants"`
	Messages     []domain.Message     `json:"messages"`
	Cards        []domain.Card        `json:"cards,omitempty"`
	TurnOrder    []domain.UserID      `json:"turn_order,omitempty"`
	CurrentTurn  int                  `json:"current_turn"`
}

type PresenceUpdateEvent struct {
	Type        string             `json:"type"`
	SessionID   domain.SessionID   `json:"session_id"`
	Action      string             `json:"action"`
	Participant domain.Participant `json:"participant"`
	HostID      domain.UserID      `json:"host_id"`
	Count       int                `json:"count"`
}

type CursorUpdateEvent struct {
	Type      string           `json:"type"`
	SessionID domain.SessionID `json:"session_id"`
	UserID    domain.UserID    `json:"user_id"`
	X         float64          `json:"x"`
	Y         float64          `json:"y"`
	Element   string           `json:"element,omitempty"`
}

type MessageEvent struct {
	Type      string           `json:"type"`
	SessionID domain.SessionID `json:"session_id"`
	Message   domain.Message   `json:"message"`
}

type ReactionAddedEvent struct {
	Type      string           `json:"type"`
	SessionID domain.SessionID `json:"session_id"`
	MessageID domain.MessageID `json:"message_id"`
	Reaction  domain.Reaction  `json:"reaction"`
}

type TurnChangedEvent struct {
	Type      string           `json:"type"`
	SessionID domain.SessionID `json:"session_id"`
	TurnIndex int              `json:"turn_index"`
	UserID    domain.UserID    `json:"user_id"`
}

type ResourceRevealedEvent struct {
	Type      string           `json:"type"`
	SessionID domain.SessionID `json:"session_id"`
	Card      domain.Card      `json:"card"`
}

type VoiceStateEvent struct {
	Type      string            `json:"type"`
	SessionID domain.SessionID  `json:"session_id"`
	UserID    domain.UserID     `json:"user_id"`
	Voice     domain.VoiceState `json:"voice"`
}

type SessionStatusEvent struct {
	Type      string           `json:"type"`
	SessionID domain.SessionID `json:"session_id"`
	Status    domain.Status    `json:"status"`
}

type TypingEvent struct {
	Type        string           `json:"type"`
	SessionID   domain.SessionID `json:"session_id"`
	UserID      domain.UserID    `json:"user_id"`
	DisplayName string           `json:"display_name"`
	Typing      bool             `json:"typing"`
}

// Encode marshals an event for the wire. Marshal failures are programmer
// errors on our own structs; log and drop rather than tear the session down.
func Encode(v any) (Frame, bool) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "core").Msg("event marshal")
		return nil, false
	}
	return Frame(b), true
}
