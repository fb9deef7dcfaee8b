package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zodiora/live/internal/domain"
)

func Test_Cursor_Updates_Skip_The_Originator(t *testing.T) {
	st := newReadingState(4)
	host := seatHost(st)
	b := attach(t, st, "u-b", "Bren", "c-b")
	host.reset()
	b.reset()

	_, err := st.SetCursor("u-b", domain.Cursor{X: 42.5, Y: 17, Element: "card-2"}, "c-b", time.Now())
	require.NoError(t, err)

	require.Empty(t, b.events(t))
	require.Equal(t, []string{"cursor_update"}, host.types(t))
	ev := host.events(t)[0]
	require.Equal(t, 42.5, ev["x"])
	require.Equal(t, "u-b", ev["user_id"])
	require.Equal(t, "card-2", ev["element"])

	snap := st.Snapshot()
	require.NotNil(t, snap.Participants[1].Cursor)
	require.Equal(t, 42.5, snap.Participants[1].Cursor.X)
}

func Test_Cursor_Requires_A_Seat(t *testing.T) {
	st := newReadingState(4)
	seatHost(st)

	_, err := st.SetCursor("u-x", domain.Cursor{X: 1}, "c-x", time.Now())
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func Test_Voice_State_Relays_To_Everyone(t *testing.T) {
	st := newReadingState(4)
	host := seatHost(st)
	b := attach(t, st, "u-b", "Bren", "c-b")
	host.reset()
	b.reset()

	_, err := st.SetVoice("u-b", func(v *domain.VoiceState) { v.Connected = true }, time.Now())
	require.NoError(t, err)

	// Both sides see it, the originator included.
	require.Equal(t, []string{"voice_state"}, host.types(t))
	require.Equal(t, []string{"voice_state"}, b.types(t))
	voice := host.events(t)[0]["voice"].(map[string]any)
	require.Equal(t, true, voice["connected"])
}

func Test_Leaving_Voice_Resets_The_Whole_State(t *testing.T) {
	st := newReadingState(4)
	host := seatHost(st)
	attach(t, st, "u-b", "Bren", "c-b")

	_, err := st.SetVoice("u-b", func(v *domain.VoiceState) { v.Connected = true }, time.Now())
	require.NoError(t, err)
	_, err = st.SetVoice("u-b", func(v *domain.VoiceState) { v.Muted = true }, time.Now())
	require.NoError(t, err)
	host.reset()

	_, err = st.SetVoice("u-b", func(v *domain.VoiceState) { v.Connected = false }, time.Now())
	require.NoError(t, err)

	voice := host.events(t)[0]["voice"].(map[string]any)
	require.Equal(t, false, voice["connected"])
	require.Equal(t, false, voice["muted"])

	snap := st.Snapshot()
	require.NotNil(t, snap.Participants[1].Voice)
	require.False(t, snap.Participants[1].Voice.Muted)
}

func Test_A_Silent_Offline_Flip_Emits_Nothing(t *testing.T) {
	st := newReadingState(4)
	host := seatHost(st)
	attach(t, st, "u-b", "Bren", "c-b")
	host.reset()

	res := st.SetOnline("u-b", false, false)
	require.Zero(t, res.Sent)
	require.Empty(t, host.events(t))
	require.False(t, st.Snapshot().Participants[1].Online)

	// The reconnect announces, so mid-grace joiners see the seat wake up.
	res = st.SetOnline("u-b", true, true)
	require.Equal(t, 2, res.Sent)
	require.Equal(t, "online", host.events(t)[0]["action"])
}

func Test_SetOnline_Ignores_Unknown_And_Unchanged_Seats(t *testing.T) {
	st := newReadingState(4)
	host := seatHost(st)
	host.reset()

	require.Zero(t, st.SetOnline("u-x", false, true).Sent)
	require.Zero(t, st.SetOnline("u-a", true, true).Sent) // already online
	require.Empty(t, host.events(t))
}
