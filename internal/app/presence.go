package app

import (
	"time"

	"github.com/zodiora/live/internal/core"
	"github.com/zodiora/live/internal/domain"
)

// UpdateCursor feeds one raw pointer sample through the coalescing gate.
// Deliberately errorless: by the time a sample could be rejected it has
// already been superseded by a fresher one.
func (m *Manager) UpdateCursor(id core.ClientID, x, y float64, element string) {
	m.cursors.Offer(id, domain.ClampCursor(x, y, element))
}

func (m *Manager) flushCursor(id core.ClientID, c domain.Cursor) {
	sid, client, ok := m.reg.SessionOf(id)
	if !ok {
		return
	}
	st, ok := m.state(sid)
	if !ok {
		return
	}
	res, err := st.SetCursor(client.Identity().UserID, c, id, time.Now())
	if err != nil {
		return
	}
	m.enforce(st, res)
}

// JoinVoice marks the caller connected to the voice channel. The ICE
// configuration for the media leg rides back in the adapter's ack.
func (m *Manager) JoinVoice(id core.ClientID) error {
	return m.setVoice(id, func(v *domain.VoiceState) { v.Connected = true })
}

func (m *Manager) LeaveVoice(id core.ClientID) error {
	return m.setVoice(id, func(v *domain.VoiceState) { v.Connected = false })
}

func (m *Manager) SetMuted(id core.ClientID, muted bool) error {
	return m.setVoice(id, func(v *domain.VoiceState) { v.Muted = muted })
}

func (m *Manager) SetDeafened(id core.ClientID, deafened bool) error {
	return m.setVoice(id, func(v *domain.VoiceState) { v.Deafened = deafened })
}

func (m *Manager) SetSpeaking(id core.ClientID, speaking bool) error {
	return m.setVoice(id, func(v *domain.VoiceState) { v.Speaking = speaking })
}

func (m *Manager) setVoice(id core.ClientID, apply func(*domain.VoiceState)) error {
	st, client, err := m.resolve(id)
	if err != nil {
		return err
	}
	res, err := st.SetVoice(client.Identity().UserID, apply, time.Now())
	if err != nil {
		return err
	}
	m.enforce(st, res)
	return nil
}
