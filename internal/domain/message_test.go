package domain_test

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/zodiora/live/internal/domain"
)

func Test_React_Deduplicates_User_Symbol_Pairs(t *testing.T) {
	msg := domain.NewMessage("u-1", "the stars align", time.Now())

	require.True(t, msg.React(domain.Reaction{UserID: "u-2", Symbol: "✨"}))
	require.False(t, msg.React(domain.Reaction{UserID: "u-2", Symbol: "✨"}))
	require.True(t, msg.React(domain.Reaction{UserID: "u-2", Symbol: "🌙"}))
	require.True(t, msg.React(domain.Reaction{UserID: "u-3", Symbol: "✨"}))

	require.Len(t, msg.Reactions, 3)
}

func Test_TrimContent_Normalizes_Whitespace_And_Length(t *testing.T) {
	require.Equal(t, "hello", domain.TrimContent("  hello  "))
	require.Equal(t, "", domain.TrimContent(" \n\t "))

	long := strings.Repeat("a", domain.MaxContentLen+50)
	require.Len(t, domain.TrimContent(long), domain.MaxContentLen)
}

func Test_TrimContent_Counts_Characters_Not_Bytes(t *testing.T) {
	// Three bytes per star; a thousand characters is well under the cap.
	stars := strings.Repeat("☆", 1000)
	require.Equal(t, stars, domain.TrimContent(stars))

	long := strings.Repeat("☆", domain.MaxContentLen+50)
	got := domain.TrimContent(long)
	require.Equal(t, domain.MaxContentLen, utf8.RuneCountInString(got))
	require.True(t, utf8.ValidString(got))
	require.True(t, strings.HasSuffix(got, "☆"))
}

func Test_Message_IDs_Sort_By_Creation_Time(t *testing.T) {
	first := domain.NewMessage("u-1", "first", time.Now())
	time.Sleep(5 * time.Millisecond)
	second := domain.NewMessage("u-1", "second", time.Now())

	require.Less(t, string(first.ID), string(second.ID))
}

func Test_System_Messages_Carry_No_Author(t *testing.T) {
	msg := domain.NewSystemMessage("Bren joined the session", time.Now())

	require.Equal(t, domain.MessageSystem, msg.Type)
	require.Empty(t, msg.UserID)
	require.NotEmpty(t, msg.ID)
}
