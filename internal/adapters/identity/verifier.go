// Package identity is the boundary to the platform's auth provider: it
// verifies the tokens that provider issues and never mints its own.
package identity

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zodiora/live/internal/domain"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrGuestsDisabled = errors.New("guest access disabled")
)

type Verifier struct {
	secret      []byte
	allowGuests bool
}

func NewVerifier(secret string, allowGuests bool) *Verifier {
	return &Verifier{secret: []byte(secret), allowGuests: allowGuests}
}

// Verify extracts the connecting user's identity from a platform token.
func (v *Verifier) Verify(tokenString string) (domain.Identity, error) {
	if len(v.secret) == 0 {
		// An empty secret verifies nothing; token auth fails closed.
		return domain.Identity{}, ErrInvalidToken
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Identity{}, ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	displayName, _ := claims["display_name"].(string)
	zodiacSign, _ := claims["zodiac_sign"].(string)
	if userID == "" {
		return domain.Identity{}, errors.New("missing user_id claim")
	}
	if displayName == "" {
		displayName = "Stargazer"
	}
	return domain.NewIdentity(domain.UserID(userID), displayName, zodiacSign)
}

// Guest derives a stable anonymous identity from the client token, so a
// reconnecting guest lands back in the same seat.
func (v *Verifier) Guest(clientToken string) (domain.Identity, error) {
	if !v.allowGuests {
		return domain.Identity{}, ErrGuestsDisabled
	}
	if clientToken == "" {
		return domain.Identity{}, ErrInvalidToken
	}
	tag := clientToken
	if len(tag) > 8 {
		tag = tag[:8]
	}
	uid := "guest-" + tag
	return domain.NewIdentity(domain.UserID(uid), "Wanderer "+tag, "")
}
