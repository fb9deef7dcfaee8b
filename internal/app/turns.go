package app

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zodiora/live/internal/core"
	"github.com/zodiora/live/internal/domain"
)

// Start moves the caller's session from waiting to active: draws a deck
// for its layout, freezes the turn order, and fans out the fresh state.
func (m *Manager) Start(id core.ClientID) error {
	st, client, err := m.resolve(id)
	if err != nil {
		return err
	}
	meta := st.Meta()
	cards, err := m.library.Draw(meta.Layout)
	if err != nil {
		return err
	}
	res, err := st.Start(client.Identity().UserID, cards, time.Now())
	if err != nil {
		return err
	}
	m.enforce(st, res)
	log.Info().Str("module", "app.manager").Str("sid", string(meta.ID)).
		Str("layout", meta.Layout).Int("cards", len(cards)).Msg("session started")
	return nil
}

// End is the host's terminal transition. The room code frees immediately;
// attached clients keep a read-only view until they drop.
func (m *Manager) End(id core.ClientID) error {
	st, client, err := m.resolve(id)
	if err != nil {
		return err
	}
	sid := st.Meta().ID
	res, err := st.End(client.Identity().UserID)
	if err != nil {
		return err
	}
	m.completeSession(sid)
	m.enforce(st, res)
	if st.AttachedCount() == 0 {
		m.purge(sid)
	}
	log.Info().Str("module", "app.manager").Str("sid", string(sid)).Msg("session ended")
	return nil
}

// Reveal flips one card face-up for the whole session.
func (m *Manager) Reveal(id core.ClientID, cardID domain.CardID) error {
	st, client, err := m.resolve(id)
	if err != nil {
		return err
	}
	res, err := st.Reveal(client.Identity().UserID, cardID, time.Now())
	if err != nil {
		return err
	}
	m.enforce(st, res)
	return nil
}
