package mentions

import (
	"iter"
	"strings"
)

// DefaultLimit caps the picker when callers pass no limit.
const DefaultLimit = 10

// Candidate is a roster entry that can be mentioned.
type Candidate struct {
	ID        string `json:"id" example:"665f1c2e9b1d4a0001a1b2c3"`
	Name      string `json:"name" example:"Ann Lee"`
	Email     string `json:"email" example:"ann@bxtrack.dev"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Matches reports whether the lowercased query is a substring of the
// candidate's name or email, ignoring case.
func (c Candidate) Matches(query string) bool {
	return strings.Contains(strings.ToLower(c.Name), query) ||
		strings.Contains(strings.ToLower(c.Email), query)
}

// MatchCandidates yields at most limit roster entries matching query, in
// roster order. An empty query yields the head of the roster unfiltered.
// The sequence is lazy and can be ranged over any number of times.
func MatchCandidates(roster []Candidate, query string, limit int) iter.Seq[Candidate] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	query = strings.ToLower(query)

	return func(yield func(Candidate) bool) {
		n := 0
		for _, c := range roster {
			if n >= limit {
				return
			}
			if query != "" && !c.Matches(query) {
				continue
			}
			n++
			if !yield(c) {
				return
			}
		}
	}
}
