package app

import (
	"time"

	"github.com/zodiora/live/internal/core"
	"github.com/zodiora/live/internal/domain"
)

type MessageParams struct {
	Content          string
	ReplyTo          domain.MessageID
	AttachedEntityID string
}

// PostMessage appends a chat message to the caller's session. The flood
// guard charges the attempt before validation so hammering invalid
// payloads throttles too.
func (m *Manager) PostMessage(id core.ClientID, p MessageParams) error {
	st, client, err := m.resolve(id)
	if err != nil {
		return err
	}
	uid := client.Identity().UserID
	now := time.Now()
	if !m.limiter.Allow(uid, now) {
		return domain.ErrRateLimited
	}

	msg := domain.NewMessage(uid, p.Content, now)
	msg.ReplyTo = p.ReplyTo
	msg.AttachedEntityID = p.AttachedEntityID

	res, err := st.Append(*msg)
	if err != nil {
		return err
	}
	m.clearTyping(st.Meta().ID, uid)
	m.enforce(st, res)
	return nil
}

// AddReaction stamps one (user, symbol) reaction onto a message.
func (m *Manager) AddReaction(id core.ClientID, messageID domain.MessageID, symbol, label string) error {
	st, client, err := m.resolve(id)
	if err != nil {
		return err
	}
	r := domain.Reaction{UserID: client.Identity().UserID, Symbol: symbol, Label: label}
	res, err := st.React(messageID, r, time.Now())
	if err != nil {
		return err
	}
	m.enforce(st, res)
	return nil
}

// SetTyping relays a typing indicator to everyone else in the session.
// Indicators clear themselves after the TTL if no stop event arrives.
func (m *Manager) SetTyping(id core.ClientID, typing bool) error {
	st, client, err := m.resolve(id)
	if err != nil {
		return err
	}
	ident := client.Identity()
	sid := st.Meta().ID

	m.typingMu.Lock()
	key := seatKey{Session: sid, User: ident.UserID}
	if t, ok := m.typing[key]; ok {
		t.Stop()
		delete(m.typing, key)
	}
	if typing {
		m.typing[key] = time.AfterFunc(m.opts.TypingTTL, func() {
			m.typingExpired(sid, ident.UserID, ident.DisplayName)
		})
	}
	m.typingMu.Unlock()

	res := st.Broadcast(core.TypingEvent{
		Type: core.EvtTyping, SessionID: sid, UserID: ident.UserID,
		DisplayName: ident.DisplayName, Typing: typing,
	}, id)
	m.enforce(st, res)
	return nil
}

// typingExpired broadcasts the implicit stop once a TTL lapses.
func (m *Manager) typingExpired(sid domain.SessionID, uid domain.UserID, displayName string) {
	m.typingMu.Lock()
	key := seatKey{Session: sid, User: uid}
	if _, ok := m.typing[key]; !ok {
		m.typingMu.Unlock()
		return
	}
	delete(m.typing, key)
	m.typingMu.Unlock()

	st, ok := m.state(sid)
	if !ok {
		return
	}
	res := st.Broadcast(core.TypingEvent{
		Type: core.EvtTyping, SessionID: sid, UserID: uid,
		DisplayName: displayName, Typing: false,
	}, "")
	m.enforce(st, res)
}

// clearTyping cancels a pending TTL without broadcasting, for users whose
// indicator is mooted by a message, leave or disconnect.
func (m *Manager) clearTyping(sid domain.SessionID, uid domain.UserID) {
	m.typingMu.Lock()
	defer m.typingMu.Unlock()
	key := seatKey{Session: sid, User: uid}
	if t, ok := m.typing[key]; ok {
		t.Stop()
		delete(m.typing, key)
	}
}
