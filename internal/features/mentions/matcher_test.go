package mentions

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func testRoster(n int) []Candidate {
	roster := []Candidate{
		{ID: "u1", Name: "Ann Lee", Email: "ann@bxtrack.dev"},
		{ID: "u2", Name: "Bob Stone", Email: "bob@bxtrack.dev"},
		{ID: "u3", Name: "Carla Diaz", Email: "carla.lee@bxtrack.dev"},
	}
	for i := len(roster); i < n; i++ {
		roster = append(roster, Candidate{
			ID:    fmt.Sprintf("u%d", i+1),
			Name:  fmt.Sprintf("User %02d", i+1),
			Email: fmt.Sprintf("user%02d@bxtrack.dev", i+1),
		})
	}
	return roster
}

func ids(cands []Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.ID)
	}
	return out
}

func TestMatchCandidates_EmptyQueryReturnsRosterHead(t *testing.T) {
	roster := testRoster(12)

	got := slices.Collect(MatchCandidates(roster, "", 10))

	require.Equal(t, ids(roster[:10]), ids(got))
}

func TestMatchCandidates_NoMatch(t *testing.T) {
	got := slices.Collect(MatchCandidates(testRoster(12), "zzz", 10))
	require.Empty(t, got)
}

func TestMatchCandidates_NameOrEmailCaseInsensitive(t *testing.T) {
	roster := testRoster(3)

	require.Equal(t, []string{"u1", "u3"}, ids(slices.Collect(MatchCandidates(roster, "LEE", 10))))
	require.Equal(t, []string{"u2"}, ids(slices.Collect(MatchCandidates(roster, "bob@", 10))))
}

func TestMatchCandidates_Limit(t *testing.T) {
	roster := testRoster(30)

	require.Len(t, slices.Collect(MatchCandidates(roster, "user", 5)), 5)
	require.Len(t, slices.Collect(MatchCandidates(roster, "", 0)), DefaultLimit)
}

func TestMatchCandidates_Restartable(t *testing.T) {
	seq := MatchCandidates(testRoster(12), "user", 3)

	first := slices.Collect(seq)
	second := slices.Collect(seq)

	require.Equal(t, first, second)
	require.Equal(t, []string{"u4", "u5", "u6"}, ids(first))
}

func TestMatchCandidates_StopsEarly(t *testing.T) {
	var seen []string
	for c := range MatchCandidates(testRoster(12), "", 10) {
		seen = append(seen, c.ID)
		if len(seen) == 2 {
			break
		}
	}
	require.Equal(t, []string{"u1", "u2"}, seen)
}
