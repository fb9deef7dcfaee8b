package core

import (
	"fmt"
	"time"

	"github.com/zodiora/live/internal/domain"
)

// LeaveOutcome tells the manager what a leave changed beyond the fan-out:
// whether the session drained (code release + purge) and whether the host
// seat moved.
type LeaveOutcome struct {
	Res       PublishResult
	Emptied   bool
	HostMoved bool
	NewHost   domain.UserID
}

// Join seats an identity and attaches its client. Existing members get a
// presence_update and a system message; the newcomer gets the full
// snapshot, enqueued after those so its view is never ahead of theirs.
// Rejoining participants are re-seated without a second announcement.
// Returns any superseded client (same user, older connection) for the
// caller to close; the kernel never closes adapter-owned transports.
func (s *State) Join(id domain.Identity, c Client, now time.Time) (PublishResult, Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := PublishResult{}

	if s.meta.Status == domain.StatusComplete {
		return res, nil, domain.ErrSessionClosed
	}

	if p, ok := s.byUser[id.UserID]; ok {
		// Rejoin: same seat, fresh transport.
		superseded := s.supersedeLocked(c)
		p.Online = true
		s.touchLocked(now)
		res.merge(s.broadcast(PresenceUpdateEvent{
			Type: EvtPresenceUpdate, SessionID: s.meta.ID, Action: PresenceOnline,
			Participant: *p, HostID: s.meta.HostID, Count: len(s.participants),
		}, c.ID()))
		res.merge(s.sendTo(c.ID(), s.snapshotLocked()))
		return res, superseded, nil
	}

	policy, _ := domain.PolicyFor(s.meta.Type)
	if s.meta.Status == domain.StatusActive && policy.ClosedAfterStart {
		return res, nil, fmt.Errorf("%w: session already active and closed to joins", domain.ErrInvalidTransition)
	}
	if len(s.participants) >= s.meta.MaxParticipants {
		return res, nil, domain.ErrFull
	}

	p := domain.NewParticipant(id, domain.RoleMember, now)
	s.participants = append(s.participants, p)
	s.byUser[p.UserID] = p
	superseded := s.supersedeLocked(c)
	s.touchLocked(now)

	res.merge(s.broadcast(PresenceUpdateEvent{
		Type: EvtPresenceUpdate, SessionID: s.meta.ID, Action: PresenceJoined,
		Participant: *p, HostID: s.meta.HostID, Count: len(s.participants),
	}, c.ID()))
	res.merge(s.systemMessageLocked(fmt.Sprintf("%s joined the session", p.DisplayName), now, c.ID()))
	res.merge(s.sendTo(c.ID(), s.snapshotLocked()))
	return res, superseded, nil
}

// Seat places the creating host into a fresh session; no announcements,
// just the initial snapshot.
func (s *State) Seat(id domain.Identity, c Client, now time.Time) PublishResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := domain.NewParticipant(id, domain.RoleHost, now)
	s.participants = append(s.participants, p)
	s.byUser[p.UserID] = p
	s.supersedeLocked(c)
	s.touchLocked(now)
	return s.sendTo(c.ID(), s.snapshotLocked())
}

// Leave removes a seat. Idempotent: leaving a session one is not in is a
// no-op. Host departure hands the role to the earliest-joined remaining
// participant; the last departure completes the session.
func (s *State) Leave(uid domain.UserID, now time.Time) LeaveOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaveLocked(uid, now)
}

// LeaveIfOffline is the grace-expiry variant: the seat is only released
// when no transport is attached for uid, so an expiry firing alongside a
// reconnect can never evict the reconnected user.
func (s *State) LeaveIfOffline(uid domain.UserID, now time.Time) LeaveOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, attached := s.userClient[uid]; attached {
		return LeaveOutcome{}
	}
	return s.leaveLocked(uid, now)
}

func (s *State) leaveLocked(uid domain.UserID, now time.Time) LeaveOutcome {
	out := LeaveOutcome{}
	p, ok := s.byUser[uid]
	if !ok {
		return out
	}

	delete(s.byUser, uid)
	for i, have := range s.participants {
		if have.UserID == uid {
			s.participants = append(s.participants[:i], s.participants[i+1:]...)
			break
		}
	}
	if cid, ok := s.userClient[uid]; ok {
		delete(s.userClient, uid)
		delete(s.clients, cid)
	}
	s.touchLocked(now)

	if len(s.participants) == 0 {
		s.completeLocked()
		out.Emptied = true
		return out
	}

	out.Res.merge(s.broadcast(PresenceUpdateEvent{
		Type: EvtPresenceUpdate, SessionID: s.meta.ID, Action: PresenceLeft,
		Participant: *p, HostID: s.meta.HostID, Count: len(s.participants),
	}, ""))
	out.Res.merge(s.systemMessageLocked(fmt.Sprintf("%s left the session", p.DisplayName), now, ""))

	if p.Role == domain.RoleHost {
		heir := s.participants[0]
		heir.Role = domain.RoleHost
		s.meta.HostID = heir.UserID
		out.HostMoved = true
		out.NewHost = heir.UserID
		out.Res.merge(s.broadcast(PresenceUpdateEvent{
			Type: EvtPresenceUpdate, SessionID: s.meta.ID, Action: PresenceHostChanged,
			Participant: *heir, HostID: s.meta.HostID, Count: len(s.participants),
		}, ""))
		out.Res.merge(s.systemMessageLocked(fmt.Sprintf("%s now guides the session", heir.DisplayName), now, ""))
	}

	out.Res.merge(s.repairTurnLocked(uid))
	return out
}

// Start transitions waiting→active: installs the allocated cards, freezes
// the turn order, and pushes the fresh snapshot to everyone.
func (s *State) Start(hostID domain.UserID, cards []domain.Card, now time.Time) (PublishResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := PublishResult{}
	if s.meta.Status == domain.StatusComplete {
		return res, domain.ErrSessionClosed
	}
	if hostID != s.meta.HostID {
		return res, fmt.Errorf("%w: only the host may start the session", domain.ErrUnauthorized)
	}
	if s.meta.Status != domain.StatusWaiting {
		return res, fmt.Errorf("%w: session already started", domain.ErrInvalidTransition)
	}

	s.meta.Status = domain.StatusActive
	started := now
	s.meta.StartedAt = &started
	s.installCardsLocked(cards)
	s.buildTurnOrderLocked()
	s.touchLocked(now)

	res.merge(s.broadcast(SessionStatusEvent{Type: EvtSessionStatus, SessionID: s.meta.ID, Status: s.meta.Status}, ""))
	if len(s.turnOrder) > 0 {
		res.merge(s.broadcast(TurnChangedEvent{
			Type: EvtTurnChanged, SessionID: s.meta.ID, TurnIndex: s.turnIndex, UserID: s.turnOrder[s.turnIndex],
		}, ""))
	}
	snapshot := s.snapshotLocked()
	frame, ok := Encode(snapshot)
	if ok {
		res.merge(s.publish(frame, ""))
	}
	return res, nil
}

// End is the host's terminal transition. Clients still attached keep their
// read-only view until they disconnect; the manager purges after that.
func (s *State) End(hostID domain.UserID) (PublishResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := PublishResult{}
	if s.meta.Status == domain.StatusComplete {
		return res, domain.ErrSessionClosed
	}
	if hostID != s.meta.HostID {
		return res, fmt.Errorf("%w: only the host may end the session", domain.ErrUnauthorized)
	}
	res.merge(s.completeLocked())
	return res, nil
}

// Expire is the idle-timeout variant of End; no authorization involved.
func (s *State) Expire() PublishResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.meta.Status == domain.StatusComplete {
		return PublishResult{}
	}
	return s.completeLocked()
}

func (s *State) completeLocked() PublishResult {
	s.meta.Status = domain.StatusComplete
	s.meta.RoomCode = ""
	return s.broadcast(SessionStatusEvent{Type: EvtSessionStatus, SessionID: s.meta.ID, Status: s.meta.Status}, "")
}

// supersedeLocked attaches c, displacing any older connection of the same
// user. The displaced client is returned for the caller to close.
func (s *State) supersedeLocked(c Client) Client {
	uid := c.Identity().UserID
	var old Client
	if oldID, ok := s.userClient[uid]; ok && oldID != c.ID() {
		old = s.clients[oldID]
		delete(s.clients, oldID)
	}
	s.attachLocked(c)
	return old
}
