package domain

import "time"

type Role string

const (
	RoleHost   Role = "host"
	RoleMember Role = "member"
)

// Cursor is the last sample of a participant's pointer, in percent of the
// shared viewport. Element is an opaque target identifier.
type Cursor struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Element string  `json:"element,omitempty"`
}

// ClampCursor bounds a raw sample to the [0,100] viewport range.
func ClampCursor(x, y float64, element string) Cursor {
	return Cursor{X: clamp(x), Y: clamp(y), Element: element}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// VoiceState is relay-only signaling; audio itself travels over the
// external media service.
type VoiceState struct {
	Connected bool `json:"connected"`
	Muted     bool `json:"muted"`
	Deafened  bool `json:"deafened"`
	Speaking  bool `json:"speaking"`
}

// Participant is one seat in a session, owned exclusively by that session.
type Participant struct {
	UserID      UserID      `json:"user_id"`
	DisplayName string      `json:"display_name"`
	ZodiacSign  string      `json:"zodiac_sign,omitempty"`
	Role        Role        `json:"role"`
	Online      bool        `json:"online"`
	JoinedAt    time.Time   `json:"joined_at"`
	Cursor      *Cursor     `json:"cursor,omitempty"`
	Voice       *VoiceState `json:"voice,omitempty"`
}

// NewParticipant seats an identity. Role is assigned by the lifecycle
// manager, never by callers directly.
func NewParticipant(id Identity, role Role, at time.Time) *Participant {
	return &Participant{
		UserID:      id.UserID,
		DisplayName: id.DisplayName,
		ZodiacSign:  id.ZodiacSign,
		Role:        role,
		Online:      true,
		JoinedAt:    at,
	}
}
