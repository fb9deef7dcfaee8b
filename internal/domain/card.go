package domain

import "time"

type CardID string

// Orientation is decorative draw metadata; the engine relays it untouched.
type Orientation string

const (
	OrientationNormal   Orientation = "normal"
	OrientationInverted Orientation = "inverted"
)

// Card is a shared turn-gated resource: one per layout slot, allocated in
// bulk when a session starts, cleared only with the session. Ref points
// into the content provider's deck and means nothing to the engine.
type Card struct {
	ID          CardID      `json:"id"`
	Ref         string      `json:"ref"`
	Position    string      `json:"position"`
	Revealed    bool        `json:"revealed"`
	Orientation Orientation `json:"orientation"`
	RevealedBy  UserID      `json:"revealed_by,omitempty"`
	RevealedAt  *time.Time  `json:"revealed_at,omitempty"`
}

// Layout is a named slot template from the content provider.
type Layout struct {
	Name  string   `json:"name"`
	Slots []string `json:"slots"`
}
