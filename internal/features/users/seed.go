package users

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/syedhisham/bxtrack/internal/features/auth"
	"github.com/syedhisham/bxtrack/internal/pkg/validator"
)

// Upserter creates or refreshes a user keyed by email.
type Upserter interface {
	UpsertByEmail(ctx context.Context, user *auth.User) (bool, error)
}

// DemoUsers is the roster offered on the sign-in page.
func DemoUsers() []auth.User {
	return []auth.User{
		{Name: "Syed Hisham Shah", Email: "syed.hisham@example.com"},
		{Name: "Ali Ahmed", Email: "ali.ahmed@example.com"},
		{Name: "Fatima Khan", Email: "fatima.khan@example.com"},
		{Name: "Ahmed Hassan", Email: "ahmed.hassan@example.com"},
		{Name: "Muhammad Zain", Email: "muhammad.zain@example.com"},
		{Name: "Ayesha Malik", Email: "ayesha.malik@example.com"},
	}
}

// Seed upserts users by email and returns how many were newly created.
// Running it twice leaves the collection unchanged.
func Seed(ctx context.Context, store Upserter, users []auth.User) (int, error) {
	created := 0
	for i := range users {
		user := users[i]
		user.Email = validator.NormalizeEmail(user.Email)
		if !validator.IsValidEmail(user.Email) {
			return created, fmt.Errorf("seed user %q: invalid email %q", user.Name, user.Email)
		}

		inserted, err := store.UpsertByEmail(ctx, &user)
		if err != nil {
			return created, fmt.Errorf("seed user %s: %w", user.Email, err)
		}
		if inserted {
			created++
		}
		log.Debug().Str("email", user.Email).Bool("created", inserted).Msg("seeded user")
	}
	return created, nil
}
