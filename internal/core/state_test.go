package core_test

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zodiora/live/internal/core"
	"github.com/zodiora/live/internal/domain"
)

// recorder stands in for a socket: it captures enqueued frames in order
// and can be flipped into rejecting sends to simulate a full buffer.
type recorder struct {
	mu     sync.Mutex
	frames []core.Frame
	reject bool
	closed bool
}

func (r *recorder) TrySend(f core.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reject {
		return errors.New("buffer full")
	}
	r.frames = append(r.frames, f)
	return nil
}

func (r *recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
}

func (r *recorder) events(t *testing.T) []map[string]any {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]map[string]any, 0, len(r.frames))
	for _, f := range r.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

func (r *recorder) types(t *testing.T) []string {
	t.Helper()
	evs := r.events(t)
	out := make([]string, 0, len(evs))
	for _, e := range evs {
		name, _ := e["type"].(string)
		out = append(out, name)
	}
	return out
}

func member(uid, name string) domain.Identity {
	return domain.Identity{UserID: domain.UserID(uid), DisplayName: name}
}

func newReadingState(max int) *core.State {
	return core.NewState(domain.Session{
		ID: "s-1", Type: domain.TypeReading, Title: "Evening reading",
		HostID: "u-a", MaxParticipants: max, RoomCode: "ABCDEF",
		Status: domain.StatusWaiting, CreatedAt: time.Now(),
	})
}

func seatHost(st *core.State) *recorder {
	r := &recorder{}
	st.Seat(member("u-a", "Aria"), core.NewClient("c-a", member("u-a", "Aria"), r), time.Now())
	return r
}

func attach(t *testing.T, st *core.State, uid, name, cid string) *recorder {
	t.Helper()
	r := &recorder{}
	_, _, err := st.Join(member(uid, name), core.NewClient(core.ClientID(cid), member(uid, name), r), time.Now())
	require.NoError(t, err)
	return r
}

func threeCards() []domain.Card {
	return []domain.Card{
		{ID: "card-1", Ref: "sign:aries", Position: "past", Orientation: domain.OrientationNormal},
		{ID: "card-2", Ref: "planet:venus", Position: "present", Orientation: domain.OrientationInverted},
		{ID: "card-3", Ref: "house:7", Position: "future", Orientation: domain.OrientationNormal},
	}
}

func Test_Join_Announces_To_The_Room_Before_The_Snapshot(t *testing.T) {
	st := newReadingState(4)
	host := seatHost(st)
	require.Equal(t, []string{"session_state"}, host.types(t))
	host.reset()

	b := attach(t, st, "u-b", "Bren", "c-b")

	require.Equal(t, []string{"presence_update", "message"}, host.types(t))
	evs := host.events(t)
	require.Equal(t, "joined", evs[0]["action"])
	require.Equal(t, float64(2), evs[0]["count"])

	// The newcomer only gets the snapshot, with the announcement already
	// folded into the log.
	require.Equal(t, []string{"session_state"}, b.types(t))
	snap := b.events(t)[0]
	require.Len(t, snap["participants"].([]any), 2)
	require.Len(t, snap["messages"].([]any), 1)
}

func Test_Join_Rejects_When_Full(t *testing.T) {
	st := newReadingState(2)
	seatHost(st)
	attach(t, st, "u-b", "Bren", "c-b")

	_, _, err := st.Join(member("u-c", "Cass"), core.NewClient("c-c", member("u-c", "Cass"), &recorder{}), time.Now())
	require.ErrorIs(t, err, domain.ErrFull)
	require.Equal(t, 2, st.ParticipantCount())
}

func Test_Closed_Types_Reject_Joins_After_Start(t *testing.T) {
	st := newReadingState(4)
	seatHost(st)
	attach(t, st, "u-b", "Bren", "c-b")

	_, err := st.Start("u-a", threeCards(), time.Now())
	require.NoError(t, err)

	_, _, err = st.Join(member("u-c", "Cass"), core.NewClient("c-c", member("u-c", "Cass"), &recorder{}), time.Now())
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func Test_Join_After_Completion_Reports_Session_Closed(t *testing.T) {
	st := newReadingState(4)
	seatHost(st)
	_, err := st.End("u-a")
	require.NoError(t, err)

	_, _, err = st.Join(member("u-b", "Bren"), core.NewClient("c-b", member("u-b", "Bren"), &recorder{}), time.Now())
	require.ErrorIs(t, err, domain.ErrSessionClosed)
}

func Test_Rejoin_Keeps_The_Seat_And_Skips_The_Announcement(t *testing.T) {
	st := newReadingState(4)
	host := seatHost(st)
	attach(t, st, "u-b", "Bren", "c-b")
	st.Detach("c-b")
	st.SetOnline("u-b", false, false)
	host.reset()

	b2 := attach(t, st, "u-b", "Bren", "c-b2")

	require.Equal(t, 2, st.ParticipantCount())
	require.Equal(t, []string{"presence_update"}, host.types(t))
	require.Equal(t, "online", host.events(t)[0]["action"])

	require.Equal(t, []string{"session_state"}, b2.types(t))
	// Still just the original join announcement in the log.
	snap := b2.events(t)[0]
	require.Len(t, snap["messages"].([]any), 1)
}

func Test_A_Second_Connection_Supersedes_The_First(t *testing.T) {
	st := newReadingState(4)
	seatHost(st)
	attach(t, st, "u-b", "Bren", "c-b")

	_, superseded, err := st.Join(member("u-b", "Bren"), core.NewClient("c-b2", member("u-b", "Bren"), &recorder{}), time.Now())
	require.NoError(t, err)
	require.NotNil(t, superseded)
	require.Equal(t, core.ClientID("c-b"), superseded.ID())
	require.Equal(t, 2, st.ParticipantCount())
	require.Equal(t, 2, st.AttachedCount())
}

func Test_Host_Leaving_Promotes_The_Earliest_Joined(t *testing.T) {
	st := newReadingState(4)
	seatHost(st)
	b := attach(t, st, "u-b", "Bren", "c-b")
	attach(t, st, "u-c", "Cass", "c-c")
	b.reset()

	out := st.Leave("u-a", time.Now())

	require.False(t, out.Emptied)
	require.True(t, out.HostMoved)
	require.Equal(t, domain.UserID("u-b"), out.NewHost)
	require.Equal(t, domain.UserID("u-b"), st.Meta().HostID)

	require.Equal(t, []string{"presence_update", "message", "presence_update", "message"}, b.types(t))
	evs := b.events(t)
	require.Equal(t, "left", evs[0]["action"])
	require.Equal(t, "host_changed", evs[2]["action"])
}

func Test_The_Last_Leave_Completes_The_Session(t *testing.T) {
	st := newReadingState(4)
	seatHost(st)

	out := st.Leave("u-a", time.Now())
	require.True(t, out.Emptied)

	meta := st.Meta()
	require.Equal(t, domain.StatusComplete, meta.Status)
	require.Empty(t, meta.RoomCode)
}

func Test_Leave_Is_Idempotent(t *testing.T) {
	st := newReadingState(4)
	seatHost(st)
	attach(t, st, "u-b", "Bren", "c-b")

	st.Leave("u-b", time.Now())
	out := st.Leave("u-b", time.Now())

	require.False(t, out.Emptied)
	require.Zero(t, out.Res.Sent)
	require.Equal(t, 1, st.ParticipantCount())
}

func Test_Detach_Keeps_The_Seat(t *testing.T) {
	st := newReadingState(4)
	seatHost(st)
	attach(t, st, "u-b", "Bren", "c-b")

	remaining := st.Detach("c-b")

	require.Equal(t, 1, remaining)
	require.Equal(t, 2, st.ParticipantCount())
	require.True(t, st.HasParticipant("u-b"))
}

func Test_Fan_Out_Reports_Clients_With_No_Buffer_Room(t *testing.T) {
	st := newReadingState(4)
	seatHost(st)
	b := attach(t, st, "u-b", "Bren", "c-b")
	b.reject = true

	res, err := st.Append(*domain.NewMessage("u-a", "hello", time.Now()))

	require.NoError(t, err)
	require.Equal(t, 1, res.Sent)
	require.Equal(t, []core.ClientID{"c-b"}, res.Dropped)
}

func Test_Commit_Order_Is_The_Delivery_Order(t *testing.T) {
	st := newReadingState(4)
	host := seatHost(st)
	attach(t, st, "u-b", "Bren", "c-b")
	host.reset()

	for _, text := range []string{"one", "two", "three"} {
		_, err := st.Append(*domain.NewMessage("u-b", text, time.Now()))
		require.NoError(t, err)
	}

	evs := host.events(t)
	require.Len(t, evs, 3)
	got := make([]string, 0, 3)
	for _, e := range evs {
		got = append(got, e["message"].(map[string]any)["content"].(string))
	}
	require.Equal(t, []string{"one", "two", "three"}, got)
}
