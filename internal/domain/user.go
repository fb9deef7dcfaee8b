// Package domain contains the engine's entities: metadata and invariants,
// no transport or scheduling logic.
package domain

import "errors"

const (
	MaxUserIDLen      = 36
	MaxDisplayNameLen = 36
)

var (
	ErrDisplayNameTooLong = errors.New("display name too long")
	ErrDisplayNameEmpty   = errors.New("display name empty")
)

type UserID string

// Identity is what the auth provider asserts about a connection: who the
// user is plus the decorative sign the engine carries but never interprets.
type Identity struct {
	UserID      UserID `json:"user_id"`
	DisplayName string `json:"display_name"`
	ZodiacSign  string `json:"zodiac_sign,omitempty"`
}

// NewIdentity validates provider claims so adapters never build ad-hoc
// literals from untrusted input.
func NewIdentity(id UserID, displayName, zodiacSign string) (Identity, error) {
	if len(id) == 0 || len(id) > MaxUserIDLen {
		return Identity{}, errors.New("invalid user id")
	}
	if len(displayName) == 0 {
		return Identity{}, ErrDisplayNameEmpty
	}
	if len(displayName) > MaxDisplayNameLen {
		return Identity{}, ErrDisplayNameTooLong
	}
	return Identity{UserID: id, DisplayName: displayName, ZodiacSign: zodiacSign}, nil
}
