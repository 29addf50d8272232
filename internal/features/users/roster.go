package users

import (
	"context"

	"github.com/syedhisham/bxtrack/internal/features/auth"
	"github.com/syedhisham/bxtrack/internal/features/mentions"
)

// Lister lists every user.
type Lister interface {
	ListUsers(ctx context.Context) ([]auth.User, error)
}

// Roster exposes the users collection as mention candidates.
type Roster struct {
	users Lister
}

func NewRoster(users Lister) *Roster {
	return &Roster{users: users}
}

func (r *Roster) Roster(ctx context.Context) ([]mentions.Candidate, error) {
	users, err := r.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return Candidates(users), nil
}

// Candidates converts users to mention candidates, keeping their order.
func Candidates(users []auth.User) []mentions.Candidate {
	out := make([]mentions.Candidate, 0, len(users))
	for _, u := range users {
		out = append(out, mentions.Candidate{
			ID:        u.ID.Hex(),
			Name:      u.Name,
			Email:     u.Email,
			AvatarURL: u.ProfileImage,
		})
	}
	return out
}
