package domain

import "errors"

// Rejection kinds. Every client-visible failure maps to exactly one of
// these; the transport adapter turns them into error events. There is no
// fatal class here: each rejection is recoverable by retrying with
// corrected input or state.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrFull              = errors.New("session full")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrAlreadyRevealed   = errors.New("already revealed")
	ErrInvalidReply      = errors.New("invalid reply")
	ErrEmptyMessage      = errors.New("empty message")
	ErrPrivateAuth       = errors.New("private auth failed")
	ErrRateLimited       = errors.New("rate limited")
	ErrInvalidConfig     = errors.New("invalid config")
	ErrSessionClosed     = errors.New("session closed")
)

// Code maps a rejection to its wire code. Unrecognized errors collapse to
// "internal" so internals never leak verbatim to clients.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrFull):
		return "session_full"
	case errors.Is(err, ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, ErrAlreadyRevealed):
		return "already_revealed"
	case errors.Is(err, ErrInvalidReply):
		return "invalid_reply"
	case errors.Is(err, ErrEmptyMessage):
		return "empty_message"
	case errors.Is(err, ErrPrivateAuth):
		return "private_auth_failed"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrInvalidConfig):
		return "invalid_config"
	case errors.Is(err, ErrSessionClosed):
		return "session_closed"
	default:
		return "internal"
	}
}
