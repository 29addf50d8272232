package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syedhisham/bxtrack/internal/features/auth"
)

type memUpserter struct {
	byEmail map[string]auth.User
}

func (m *memUpserter) UpsertByEmail(ctx context.Context, user *auth.User) (bool, error) {
	if existing, ok := m.byEmail[user.Email]; ok {
		existing.Name = user.Name
		m.byEmail[user.Email] = existing
		return false, nil
	}
	user.ID = primitive.NewObjectID()
	m.byEmail[user.Email] = *user
	return true, nil
}

func TestSeed_Idempotent(t *testing.T) {
	store := &memUpserter{byEmail: map[string]auth.User{}}

	created, err := Seed(context.Background(), store, DemoUsers())
	require.NoError(t, err)
	require.Equal(t, len(DemoUsers()), created)

	created, err = Seed(context.Background(), store, DemoUsers())
	require.NoError(t, err)
	require.Zero(t, created)
	require.Len(t, store.byEmail, len(DemoUsers()))
}

func TestSeed_NormalizesAndValidates(t *testing.T) {
	store := &memUpserter{byEmail: map[string]auth.User{}}

	_, err := Seed(context.Background(), store, []auth.User{{Name: "Dana", Email: " Dana@Example.COM "}})
	require.NoError(t, err)
	require.Contains(t, store.byEmail, "dana@example.com")

	_, err = Seed(context.Background(), store, []auth.User{{Name: "Broken", Email: "broken"}})
	require.Error(t, err)
}
