package core

import (
	"fmt"
	"time"

	"github.com/zodiora/live/internal/domain"
)

// SetCursor commits a clamped cursor sample and relays it to everyone but
// the originator, whose local state is already authoritative. Throttling
// happens upstream; by the time a sample reaches the kernel it is the one
// that gets broadcast.
func (s *State) SetCursor(uid domain.UserID, cursor domain.Cursor, origin ClientID, now time.Time) (PublishResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := PublishResult{}
	if s.meta.Status == domain.StatusComplete {
		return res, domain.ErrSessionClosed
	}
	p, ok := s.byUser[uid]
	if !ok {
		return res, fmt.Errorf("%w: not a participant", domain.ErrUnauthorized)
	}

	c := cursor
	p.Cursor = &c
	s.touchLocked(now)

	res.merge(s.broadcast(CursorUpdateEvent{
		Type: EvtCursorUpdate, SessionID: s.meta.ID, UserID: uid,
		X: c.X, Y: c.Y, Element: c.Element,
	}, origin))
	return res, nil
}

// SetVoice applies one signaling mutation to a participant's voice state
// and relays the result. The engine never touches audio; it only keeps
// everyone agreeing on who is connected, muted, deafened, or speaking.
func (s *State) SetVoice(uid domain.UserID, apply func(*domain.VoiceState), now time.Time) (PublishResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := PublishResult{}
	if s.meta.Status == domain.StatusComplete {
		return res, domain.ErrSessionClosed
	}
	p, ok := s.byUser[uid]
	if !ok {
		return res, fmt.Errorf("%w: not a participant", domain.ErrUnauthorized)
	}

	if p.Voice == nil {
		p.Voice = &domain.VoiceState{}
	}
	apply(p.Voice)
	if !p.Voice.Connected {
		// Leaving voice clears the whole signaling state.
		p.Voice = &domain.VoiceState{}
	}
	s.touchLocked(now)

	res.merge(s.broadcast(VoiceStateEvent{Type: EvtVoiceState, SessionID: s.meta.ID, UserID: uid, Voice: *p.Voice}, ""))
	return res, nil
}

// SetOnline flips a participant's online flag. Drops during the grace
// window stay silent (announce=false); reconnects announce so anyone who
// joined mid-grace sees the seat come back.
func (s *State) SetOnline(uid domain.UserID, online, announce bool) PublishResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := PublishResult{}
	p, ok := s.byUser[uid]
	if !ok || p.Online == online {
		return res
	}
	p.Online = online
	if !announce {
		return res
	}
	res.merge(s.broadcast(PresenceUpdateEvent{
		Type: EvtPresenceUpdate, SessionID: s.meta.ID, Action: PresenceOnline,
		Participant: *p, HostID: s.meta.HostID, Count: len(s.participants),
	}, ""))
	return res
}

// Broadcast sends a prebuilt event to all attached clients; used for
// ephemeral relays (typing) that bypass session state entirely.
func (s *State) Broadcast(v any, skip ClientID) PublishResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.broadcast(v, skip)
}
