package domain

import "time"

type (
	SessionID string
	RoomCode  string
)

// SessionType is the closed set of collaboration flavours the engine hosts.
type SessionType string

const (
	TypeReading     SessionType = "reading"
	TypeMeditation  SessionType = "meditation"
	TypeExploration SessionType = "exploration"
	TypeCircle      SessionType = "circle"
	TypePlaylist    SessionType = "playlist-curation"
	TypeChat        SessionType = "generic-chat"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusActive   Status = "active"
	StatusComplete Status = "complete"
)

const (
	MaxTitleLen       = 80
	MaxDescriptionLen = 280
	RoomCodeLen       = 6
)

// Session is the metadata of one live collaboration instance. Participant,
// message and card collections live in the core state, not here.
type Session struct {
	ID              SessionID   `json:"id"`
	Type            SessionType `json:"type"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	HostID          UserID      `json:"host_id"`
	MaxParticipants int         `json:"max_participants"`
	IsPrivate       bool        `json:"is_private"`
	PasswordHash    []byte      `json:"-"`
	Layout          string      `json:"layout,omitempty"`
	RoomCode        RoomCode    `json:"room_code,omitempty"`
	Status          Status      `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	StartedAt       *time.Time  `json:"started_at,omitempty"`
}

// TypePolicy captures the per-type rules the engine consults instead of
// hard-coding behaviour into operations.
type TypePolicy struct {
	MinParticipants  int
	MaxParticipants  int
	ClosedAfterStart bool   // joins rejected once status is active
	TurnAdvances     bool   // a reveal advances the turn cursor; false = free-for-all
	HostFirst        bool   // host leads the turn order regardless of join order
	DefaultLayout    string // layout template allocated on start
}

var typePolicies = map[SessionType]TypePolicy{
	TypeReading:     {MinParticipants: 2, MaxParticipants: 6, ClosedAfterStart: true, TurnAdvances: true, HostFirst: true, DefaultLayout: "three-card"},
	TypeMeditation:  {MinParticipants: 2, MaxParticipants: 12, DefaultLayout: "single-focus"},
	TypeExploration: {MinParticipants: 2, MaxParticipants: 8, DefaultLayout: "constellation"},
	TypeCircle:      {MinParticipants: 2, MaxParticipants: 12, ClosedAfterStart: true, TurnAdvances: true, DefaultLayout: "zodiac-wheel"},
	TypePlaylist:    {MinParticipants: 2, MaxParticipants: 10, DefaultLayout: "queue"},
	TypeChat:        {MinParticipants: 2, MaxParticipants: 12, DefaultLayout: "none"},
}

// PolicyFor reports the rules for t, false for unknown types.
func PolicyFor(t SessionType) (TypePolicy, bool) {
	p, ok := typePolicies[t]
	return p, ok
}
