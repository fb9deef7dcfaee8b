package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/zodiora/live/internal/core"
	"github.com/zodiora/live/internal/domain"
)

type CreateParams struct {
	Type            domain.SessionType
	Title           string
	Description     string
	MaxParticipants int
	IsPrivate       bool
	Password        string
	Layout          string
}

type JoinParams struct {
	SessionID string
	RoomCode  string
	Password  string
}

// Create validates the configuration, mints a session with its room code,
// and seats the caller as host. The caller leaves any previous session
// first; a connection is in at most one.
func (m *Manager) Create(id core.ClientID, p CreateParams) (domain.Session, error) {
	client, ok := m.reg.ClientOf(id)
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: unknown connection", domain.ErrNotFound)
	}
	policy, ok := domain.PolicyFor(p.Type)
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: unknown session type %q", domain.ErrInvalidConfig, p.Type)
	}

	title := strings.TrimSpace(p.Title)
	switch {
	case title == "":
		return domain.Session{}, fmt.Errorf("%w: title is required", domain.ErrInvalidConfig)
	case len(title) > domain.MaxTitleLen:
		return domain.Session{}, fmt.Errorf("%w: title exceeds %d characters", domain.ErrInvalidConfig, domain.MaxTitleLen)
	case len(p.Description) > domain.MaxDescriptionLen:
		return domain.Session{}, fmt.Errorf("%w: description exceeds %d characters", domain.ErrInvalidConfig, domain.MaxDescriptionLen)
	}

	capacity := p.MaxParticipants
	if capacity == 0 {
		capacity = policy.MaxParticipants
	}
	if capacity < policy.MinParticipants || capacity > policy.MaxParticipants {
		return domain.Session{}, fmt.Errorf("%w: %s sessions take %d to %d participants",
			domain.ErrInvalidConfig, p.Type, policy.MinParticipants, policy.MaxParticipants)
	}

	layout := p.Layout
	if layout == "" {
		layout = policy.DefaultLayout
	}
	if _, ok := m.library.Layout(layout); !ok {
		return domain.Session{}, fmt.Errorf("%w: unknown layout %q", domain.ErrInvalidConfig, layout)
	}

	var hash []byte
	if p.IsPrivate {
		if strings.TrimSpace(p.Password) == "" {
			return domain.Session{}, fmt.Errorf("%w: private sessions require a password", domain.ErrInvalidConfig)
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.Session{}, fmt.Errorf("hash session password: %w", err)
		}
	}

	m.Leave(id)

	now := time.Now()
	sid := domain.SessionID(uuid.NewString())
	meta := domain.Session{
		ID:              sid,
		Type:            p.Type,
		Title:           title,
		Description:     strings.TrimSpace(p.Description),
		HostID:          client.Identity().UserID,
		MaxParticipants: capacity,
		IsPrivate:       p.IsPrivate,
		PasswordHash:    hash,
		Layout:          layout,
		RoomCode:        m.codes.Issue(sid),
		Status:          domain.StatusWaiting,
		CreatedAt:       now,
	}

	st := core.NewState(meta)
	m.mu.Lock()
	m.sessions[sid] = st
	m.mu.Unlock()

	m.reg.SetSession(id, sid)
	res := st.Seat(client.Identity(), client, now)
	m.enforce(st, res)

	log.Info().Str("module", "app.manager").Str("sid", string(sid)).
		Str("type", string(p.Type)).Str("code", string(meta.RoomCode)).
		Str("host", string(meta.HostID)).Msg("created session")
	return meta, nil
}

// Join seats the caller in an existing session, found by id or room code.
// Reconnects within the grace window skip the password gate; their seat
// was never released. Any previous seat is released only once the new
// join commits.
func (m *Manager) Join(id core.ClientID, p JoinParams) error {
	client, ok := m.reg.ClientOf(id)
	if !ok {
		return fmt.Errorf("%w: unknown connection", domain.ErrNotFound)
	}

	var sid domain.SessionID
	switch {
	case p.RoomCode != "":
		code := domain.RoomCode(strings.ToUpper(strings.TrimSpace(p.RoomCode)))
		sid, ok = m.codes.Resolve(code)
		if !ok {
			return fmt.Errorf("%w: unknown room code", domain.ErrNotFound)
		}
	case p.SessionID != "":
		sid = domain.SessionID(p.SessionID)
	default:
		return fmt.Errorf("%w: a session id or room code is required", domain.ErrInvalidConfig)
	}

	st, ok := m.state(sid)
	if !ok {
		return fmt.Errorf("%w: unknown session", domain.ErrNotFound)
	}

	uid := client.Identity().UserID
	rejoin := st.HasParticipant(uid)
	if rejoin {
		// Settle any pending grace hold before the expiry can.
		m.reg.ClaimSeat(sid, uid)
	} else if meta := st.Meta(); meta.IsPrivate {
		if err := bcrypt.CompareHashAndPassword(meta.PasswordHash, []byte(p.Password)); err != nil {
			return domain.ErrPrivateAuth
		}
	}

	res, superseded, err := st.Join(client.Identity(), client, time.Now())
	if err != nil {
		return err
	}

	// The implicit detach from any previous session waits until the new
	// seat is committed; a rejected join leaves the caller where they were.
	if current, _, ok := m.reg.SessionOf(id); ok && current != sid {
		m.Leave(id)
	}
	m.reg.SetSession(id, sid)

	if superseded != nil {
		// Same user on an older connection; the new one owns the seat now.
		m.cursors.Forget(superseded.ID())
		m.reg.Drop(superseded.ID())
		superseded.Signal().Close()
	}

	m.enforce(st, res)
	log.Info().Str("module", "app.manager").Str("sid", string(sid)).
		Str("uid", string(uid)).Bool("rejoin", rejoin).Msg("joined session")
	return nil
}

// Leave releases the caller's seat. Leaving while not in a session is a
// no-op, not an error.
func (m *Manager) Leave(id core.ClientID) {
	sid, client, ok := m.reg.SessionOf(id)
	if !ok {
		return
	}
	m.reg.ClearSession(id)
	m.cursors.Forget(id)

	st, ok := m.state(sid)
	if !ok {
		return
	}
	uid := client.Identity().UserID
	m.clearTyping(sid, uid)
	m.limiter.Forget(uid)

	out := st.Leave(uid, time.Now())
	if out.Emptied {
		m.completeSession(sid)
		m.purge(sid)
		log.Info().Str("module", "app.manager").Str("sid", string(sid)).Msg("session drained")
		return
	}
	if out.HostMoved {
		log.Info().Str("module", "app.manager").Str("sid", string(sid)).
			Str("uid", string(out.NewHost)).Msg("host transferred")
	}
	m.enforce(st, out.Res)
}

// DropConnection handles a transport-level disconnect: the seat survives
// for the grace window, silently offline, and the session only learns of
// the departure if the window runs out.
func (m *Manager) DropConnection(id core.ClientID) {
	m.cursors.Forget(id)
	sid, client, ok := m.reg.Drop(id)
	if !ok || sid == "" {
		return
	}
	st, ok := m.state(sid)
	if !ok {
		return
	}
	uid := client.Identity().UserID
	m.clearTyping(sid, uid)

	st.Detach(id)
	if st.Meta().Status == domain.StatusComplete {
		if st.AttachedCount() == 0 {
			m.purge(sid)
		}
		return
	}
	if !st.HasParticipant(uid) {
		return
	}

	st.SetOnline(uid, false, false)
	t := time.AfterFunc(m.opts.GraceWindow, func() { m.expireSeat(sid, uid) })
	m.reg.HoldSeat(sid, uid, t)
	log.Info().Str("module", "app.manager").Str("sid", string(sid)).
		Str("uid", string(uid)).Dur("grace", m.opts.GraceWindow).Msg("connection lost, holding seat")
}

// expireSeat runs when a grace window lapses with no reconnect. The
// departure then follows the normal leave path.
func (m *Manager) expireSeat(sid domain.SessionID, uid domain.UserID) {
	if !m.reg.ClaimSeat(sid, uid) {
		return
	}
	st, ok := m.state(sid)
	if !ok {
		return
	}
	m.limiter.Forget(uid)
	log.Info().Str("module", "app.manager").Str("sid", string(sid)).
		Str("uid", string(uid)).Msg("grace window expired")

	out := st.LeaveIfOffline(uid, time.Now())
	if out.Emptied {
		m.completeSession(sid)
		m.purge(sid)
		return
	}
	m.enforce(st, out.Res)
}
