package mentions

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSession_SelectTwiceKeepsOneMention(t *testing.T) {
	s := NewSession(testRoster(3), Draft{})

	change := s.Edit("Hi @an", 6)
	require.NotNil(t, change.Trigger)
	require.Equal(t, []string{"u1"}, ids(slices.Collect(s.Candidates(10))))

	sel, ok := s.Select(ann)
	require.True(t, ok)
	require.Equal(t, 12, sel.NewCaret)
	require.Equal(t, Draft{Content: "Hi @Ann Lee ", Mentions: []string{"u1"}}, s.Draft())

	_, open := s.Trigger()
	require.False(t, open)

	text := s.Draft().Content + "and @An"
	s.Edit(text, len([]rune(text)))
	_, ok = s.Select(ann)
	require.True(t, ok)

	draft := s.Draft()
	require.Equal(t, "Hi @Ann Lee and @Ann Lee ", draft.Content)
	require.Equal(t, []string{"u1"}, draft.Mentions)
}

func TestSession_Dismiss(t *testing.T) {
	s := NewSession(testRoster(3), Draft{Content: "Hi @b"})

	trig, ok := s.Trigger()
	require.True(t, ok)
	require.Equal(t, "b", trig.Query)

	s.Dismiss()
	require.Empty(t, slices.Collect(s.Candidates(10)))
	_, ok = s.Select(ann)
	require.False(t, ok)

	s.Edit("Hi @bo", 6)
	require.Equal(t, []string{"u2"}, ids(slices.Collect(s.Candidates(10))))
}

func TestSession_EmptyRosterNeverTriggers(t *testing.T) {
	s := NewSession(nil, Draft{})
	change := s.Edit("@ann", 4)
	require.Nil(t, change.Trigger)
}

func TestSession_DeletedNameKeepsMention(t *testing.T) {
	s := NewSession(testRoster(3), Draft{Content: "Hi @Ann Lee ", Mentions: []string{"u1"}})
	s.Edit("Hi ", 3)

	require.Equal(t, []string{"u1"}, s.Draft().Mentions)
}
