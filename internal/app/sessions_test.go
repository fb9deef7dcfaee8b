package app_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zodiora/live/internal/app"
	"github.com/zodiora/live/internal/domain"
)

func Test_Create_Seats_The_Host_With_A_Room_Code(t *testing.T) {
	m := newTestManager(app.Options{})
	cid, conn := connect(m, "u-a", "Aria")

	meta, err := m.Create(cid, app.CreateParams{Type: domain.TypeReading, Title: "  Evening reading  "})
	require.NoError(t, err)

	require.Equal(t, "Evening reading", meta.Title)
	require.Len(t, string(meta.RoomCode), 6)
	require.Equal(t, 6, meta.MaxParticipants)
	require.Equal(t, "three-card", meta.Layout)
	require.Equal(t, domain.StatusWaiting, meta.Status)

	events := conn.events(t)
	require.Len(t, events, 1)
	require.Equal(t, "session_state", events[0]["type"])
	seats := events[0]["participants"].([]any)
	require.Len(t, seats, 1)
	require.Equal(t, "host", seats[0].(map[string]any)["role"])
}

func Test_Create_Validates_The_Configuration(t *testing.T) {
	m := newTestManager(app.Options{})
	cid, _ := connect(m, "u-a", "Aria")

	cases := []struct {
		name string
		p    app.CreateParams
	}{
		{"unknown type", app.CreateParams{Type: "seance", Title: "Nope"}},
		{"missing title", app.CreateParams{Type: domain.TypeReading, Title: "   "}},
		{"title too long", app.CreateParams{Type: domain.TypeReading, Title: strings.Repeat("z", 81)}},
		{"description too long", app.CreateParams{Type: domain.TypeReading, Title: "Ok", Description: strings.Repeat("d", 281)}},
		{"capacity below minimum", app.CreateParams{Type: domain.TypeReading, Title: "Ok", MaxParticipants: 1}},
		{"capacity above maximum", app.CreateParams{Type: domain.TypeReading, Title: "Ok", MaxParticipants: 7}},
		{"unknown layout", app.CreateParams{Type: domain.TypeReading, Title: "Ok", Layout: "pentagram"}},
		{"private without password", app.CreateParams{Type: domain.TypeCircle, Title: "Ok", IsPrivate: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Create(cid, tc.p)
			require.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func Test_A_Connection_Holds_One_Seat_At_A_Time(t *testing.T) {
	m := newTestManager(app.Options{})
	cid, _ := connect(m, "u-a", "Aria")

	first := createReading(t, m, cid)
	second, err := m.Create(cid, app.CreateParams{Type: domain.TypeChat, Title: "Night circle"})
	require.NoError(t, err)

	// The first session drained when its host moved on.
	got := m.List()
	require.Len(t, got, 1)
	require.Equal(t, second.ID, got[0].ID)

	other, _ := connect(m, "u-b", "Bren")
	err = m.Join(other, app.JoinParams{RoomCode: string(first.RoomCode)})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func Test_Join_By_Room_Code_Ignores_Case_And_Padding(t *testing.T) {
	m := newTestManager(app.Options{})
	aCid, _ := connect(m, "u-a", "Aria")
	meta := createReading(t, m, aCid)

	bCid, _ := connect(m, "u-b", "Bren")
	sloppy := "  " + strings.ToLower(string(meta.RoomCode)) + "  "
	require.NoError(t, m.Join(bCid, app.JoinParams{RoomCode: sloppy}))

	cCid, _ := connect(m, "u-c", "Cass")
	// O is excluded from the code alphabet, so this can never resolve.
	err := m.Join(cCid, app.JoinParams{RoomCode: "OOOOOO"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	err = m.Join(cCid, app.JoinParams{})
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func Test_Join_Rejects_When_Full(t *testing.T) {
	m := newTestManager(app.Options{})
	aCid, _ := connect(m, "u-a", "Aria")
	meta, err := m.Create(aCid, app.CreateParams{Type: domain.TypeReading, Title: "Two seats", MaxParticipants: 2})
	require.NoError(t, err)

	bCid, _ := connect(m, "u-b", "Bren")
	require.NoError(t, m.Join(bCid, app.JoinParams{SessionID: string(meta.ID)}))

	cCid, _ := connect(m, "u-c", "Cass")
	err = m.Join(cCid, app.JoinParams{SessionID: string(meta.ID)})
	require.ErrorIs(t, err, domain.ErrFull)
}

func Test_A_Rejected_Join_Keeps_The_Current_Seat(t *testing.T) {
	m := newTestManager(app.Options{})
	aCid, aConn := connect(m, "u-a", "Aria")
	mine := createReading(t, m, aCid)

	bCid, _ := connect(m, "u-b", "Bren")
	full, err := m.Create(bCid, app.CreateParams{Type: domain.TypeReading, Title: "Two seats", MaxParticipants: 2})
	require.NoError(t, err)
	cCid, _ := connect(m, "u-c", "Cass")
	require.NoError(t, m.Join(cCid, app.JoinParams{SessionID: string(full.ID)}))

	err = m.Join(aCid, app.JoinParams{RoomCode: string(full.RoomCode)})
	require.ErrorIs(t, err, domain.ErrFull)

	// The refused join must not have drained the caller's own session.
	snap, err := m.Snapshot(aCid)
	require.NoError(t, err)
	require.Equal(t, mine.ID, snap.Session.ID)
	require.Len(t, snap.Participants, 1)
	require.Zero(t, aConn.countType(t, "session_status"))
	require.Len(t, m.List(), 2)
}

func Test_Joining_Another_Session_Releases_The_Old_Seat(t *testing.T) {
	m := newTestManager(app.Options{})
	aCid, _ := connect(m, "u-a", "Aria")
	old := createReading(t, m, aCid)

	bCid, _ := connect(m, "u-b", "Bren")
	next, err := m.Create(bCid, app.CreateParams{Type: domain.TypeChat, Title: "Night circle"})
	require.NoError(t, err)

	require.NoError(t, m.Join(aCid, app.JoinParams{SessionID: string(next.ID)}))

	snap, err := m.Snapshot(aCid)
	require.NoError(t, err)
	require.Equal(t, next.ID, snap.Session.ID)

	// The old session drained when its only member moved on.
	cCid, _ := connect(m, "u-c", "Cass")
	err = m.Join(cCid, app.JoinParams{RoomCode: string(old.RoomCode)})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func Test_Private_Sessions_Gate_On_The_Password(t *testing.T) {
	m := newTestManager(app.Options{})
	aCid, _ := connect(m, "u-a", "Aria")
	meta, err := m.Create(aCid, app.CreateParams{
		Type: domain.TypeCircle, Title: "Inner circle", IsPrivate: true, Password: "aurora7",
	})
	require.NoError(t, err)

	require.Empty(t, m.List())

	bCid, _ := connect(m, "u-b", "Bren")
	err = m.Join(bCid, app.JoinParams{SessionID: string(meta.ID), Password: "nebula"})
	require.ErrorIs(t, err, domain.ErrPrivateAuth)
	err = m.Join(bCid, app.JoinParams{SessionID: string(meta.ID)})
	require.ErrorIs(t, err, domain.ErrPrivateAuth)

	require.NoError(t, m.Join(bCid, app.JoinParams{SessionID: string(meta.ID), Password: "aurora7"}))
}

func Test_Reconnects_Skip_The_Password_Gate(t *testing.T) {
	m := newTestManager(app.Options{GraceWindow: time.Hour})
	aCid, _ := connect(m, "u-a", "Aria")
	meta, err := m.Create(aCid, app.CreateParams{
		Type: domain.TypeCircle, Title: "Inner circle", IsPrivate: true, Password: "aurora7",
	})
	require.NoError(t, err)

	bCid, _ := connect(m, "u-b", "Bren")
	require.NoError(t, m.Join(bCid, app.JoinParams{SessionID: string(meta.ID), Password: "aurora7"}))

	m.DropConnection(bCid)

	again, _ := connect(m, "u-b", "Bren")
	require.NoError(t, m.Join(again, app.JoinParams{SessionID: string(meta.ID)}))
}

func Test_Host_Departure_Promotes_The_Earliest_Joined(t *testing.T) {
	m := newTestManager(app.Options{})
	aCid, _ := connect(m, "u-a", "Aria")
	meta := createReading(t, m, aCid)

	bCid, bConn := connect(m, "u-b", "Bren")
	require.NoError(t, m.Join(bCid, app.JoinParams{SessionID: string(meta.ID)}))
	cCid, _ := connect(m, "u-c", "Cass")
	require.NoError(t, m.Join(cCid, app.JoinParams{SessionID: string(meta.ID)}))

	m.Leave(aCid)

	ev, ok := bConn.lastOfType(t, "presence_update")
	require.True(t, ok)
	require.Equal(t, "host_changed", ev["action"])
	require.Equal(t, "u-b", ev["host_id"])

	snap, err := m.Snapshot(bCid)
	require.NoError(t, err)
	require.Equal(t, domain.UserID("u-b"), snap.Session.HostID)
	require.Len(t, snap.Participants, 2)
}

func Test_The_Last_Leave_Releases_The_Room_Code(t *testing.T) {
	m := newTestManager(app.Options{})
	aCid, _ := connect(m, "u-a", "Aria")
	meta := createReading(t, m, aCid)

	m.Leave(aCid)
	require.Empty(t, m.List())

	bCid, _ := connect(m, "u-b", "Bren")
	err := m.Join(bCid, app.JoinParams{RoomCode: string(meta.RoomCode)})
	require.ErrorIs(t, err, domain.ErrNotFound)
	err = m.Join(bCid, app.JoinParams{SessionID: string(meta.ID)})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func Test_A_Disconnect_Holds_The_Seat_Quietly(t *testing.T) {
	m := newTestManager(app.Options{GraceWindow: time.Hour})
	aCid, aConn := connect(m, "u-a", "Aria")
	meta := createReading(t, m, aCid)

	bCid, _ := connect(m, "u-b", "Bren")
	require.NoError(t, m.Join(bCid, app.JoinParams{SessionID: string(meta.ID)}))
	before := len(aConn.events(t))

	m.DropConnection(bCid)

	require.Len(t, aConn.events(t), before)
	snap, err := m.Snapshot(aCid)
	require.NoError(t, err)
	require.Len(t, snap.Participants, 2)
	require.False(t, snap.Participants[1].Online)
}

func Test_A_Reconnect_Within_Grace_Restores_The_Seat(t *testing.T) {
	m := newTestManager(app.Options{GraceWindow: time.Hour})
	aCid, aConn := connect(m, "u-a", "Aria")
	meta := createReading(t, m, aCid)

	bCid, _ := connect(m, "u-b", "Bren")
	require.NoError(t, m.Join(bCid, app.JoinParams{SessionID: string(meta.ID)}))

	m.DropConnection(bCid)
	again, _ := connect(m, "u-b", "Bren")
	require.NoError(t, m.Join(again, app.JoinParams{SessionID: string(meta.ID)}))

	snap, err := m.Snapshot(aCid)
	require.NoError(t, err)
	require.Len(t, snap.Participants, 2)
	require.True(t, snap.Participants[1].Online)

	// One join announcement total; rejoins flip presence without re-greeting.
	require.Equal(t, 1, aConn.countType(t, "message"))
	ev, ok := aConn.lastOfType(t, "presence_update")
	require.True(t, ok)
	require.Equal(t, "online", ev["action"])
}

func Test_Grace_Expiry_Releases_The_Seat(t *testing.T) {
	m := newTestManager(app.Options{GraceWindow: 30 * time.Millisecond})
	aCid, aConn := connect(m, "u-a", "Aria")
	meta := createReading(t, m, aCid)

	bCid, _ := connect(m, "u-b", "Bren")
	require.NoError(t, m.Join(bCid, app.JoinParams{SessionID: string(meta.ID)}))

	m.DropConnection(bCid)

	require.Eventually(t, func() bool {
		snap, err := m.Snapshot(aCid)
		return err == nil && len(snap.Participants) == 1
	}, 2*time.Second, 5*time.Millisecond)

	ev, ok := aConn.lastOfType(t, "presence_update")
	require.True(t, ok)
	require.Equal(t, "left", ev["action"])
}

func Test_An_Expiry_Racing_A_Reconnect_Never_Evicts(t *testing.T) {
	m := newTestManager(app.Options{GraceWindow: 20 * time.Millisecond})
	aCid, _ := connect(m, "u-a", "Aria")
	meta := createReading(t, m, aCid)

	bCid, _ := connect(m, "u-b", "Bren")
	require.NoError(t, m.Join(bCid, app.JoinParams{SessionID: string(meta.ID)}))

	m.DropConnection(bCid)
	again, _ := connect(m, "u-b", "Bren")
	require.NoError(t, m.Join(again, app.JoinParams{SessionID: string(meta.ID)}))

	time.Sleep(100 * time.Millisecond)

	snap, err := m.Snapshot(aCid)
	require.NoError(t, err)
	require.Len(t, snap.Participants, 2)
	for _, p := range snap.Participants {
		require.True(t, p.Online, "participant %s should have kept their seat", p.UserID)
	}
}
