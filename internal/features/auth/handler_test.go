package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/syedhisham/bxtrack/internal/config"
	"github.com/syedhisham/bxtrack/internal/middleware"
	pkgerrors "github.com/syedhisham/bxtrack/pkg/errors"
)

type memStore struct {
	users []*User
	err   error
}

func (m *memStore) GetUserByID(ctx context.Context, userID string) (*User, error) {
	for _, u := range m.users {
		if u.ID.Hex() == userID {
			return u, nil
		}
	}
	return nil, pkgerrors.ErrNotFound
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetUserByGoogleID(ctx context.Context, googleID string) (*User, error) {
	for _, u := range m.users {
		if u.GoogleID == googleID {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateUser(ctx context.Context, user *User) error {
	user.ID = primitive.NewObjectID()
	m.users = append(m.users, user)
	return nil
}

func (m *memStore) LinkGoogleID(ctx context.Context, userID primitive.ObjectID, googleID string) error {
	for _, u := range m.users {
		if u.ID == userID {
			u.GoogleID = googleID
			return nil
		}
	}
	return pkgerrors.ErrNotFound
}

type fakeGoogle struct {
	user *GoogleUser
	err  error
}

func (f fakeGoogle) Verify(ctx context.Context, idToken string) (*GoogleUser, error) {
	return f.user, f.err
}

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", JWTExpire: 1, AppEnv: "test"}
}

func newTestRouter(store *memStore, google GoogleVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := testConfig()
	RegisterRoutes(r.Group("/api"), NewHandler(store, google, cfg), NewAuthMiddleware(store, cfg))
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func seededStore(t *testing.T) *memStore {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	return &memStore{users: []*User{
		{ID: primitive.NewObjectID(), Name: "Ann Lee", Email: "ann@example.com"},
		{ID: primitive.NewObjectID(), Name: "Bob Stone", Email: "bob@example.com", PasswordHash: string(hash)},
	}}
}

func TestLogin_EmailOnly(t *testing.T) {
	r := newTestRouter(seededStore(t), nil)

	w, env := do(t, r, http.MethodPost, "/api/auth/login", LoginRequest{Email: "  ANN@example.com "}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var res AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Equal(t, "Ann Lee", res.User.Name)
	require.NotEmpty(t, res.Token)
	require.Contains(t, w.Header().Get("Set-Cookie"), middleware.TokenCookie+"=")
}

func TestLogin_Password(t *testing.T) {
	r := newTestRouter(seededStore(t), nil)

	w, env := do(t, r, http.MethodPost, "/api/auth/login", LoginRequest{Email: "bob@example.com", Password: "wrong"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "INVALID_CREDENTIALS", env.Code)

	w, _ = do(t, r, http.MethodPost, "/api/auth/login", LoginRequest{Email: "bob@example.com", Password: "hunter22"}, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_Errors(t *testing.T) {
	store := seededStore(t)
	r := newTestRouter(store, nil)

	w, env := do(t, r, http.MethodPost, "/api/auth/login", LoginRequest{Email: "not-an-email"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "VALIDATION_FAILED", env.Code)

	w, _ = do(t, r, http.MethodPost, "/api/auth/login", LoginRequest{Email: "nobody@example.com"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	store.err = errors.New("connection reset")
	w, env = do(t, r, http.MethodPost, "/api/auth/login", LoginRequest{Email: "ann@example.com"}, "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "DATABASE_ERROR", env.Code)
}

func TestGoogleLogin_Disabled(t *testing.T) {
	r := newTestRouter(seededStore(t), nil)

	w, env := do(t, r, http.MethodPost, "/api/auth/google", GoogleLoginRequest{IDToken: "x"}, "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "GOOGLE_LOGIN_DISABLED", env.Code)
}

func TestGoogleLogin_LinksAndCreates(t *testing.T) {
	store := seededStore(t)

	r := newTestRouter(store, fakeGoogle{user: &GoogleUser{UID: "g-ann", Email: "Ann@Example.com"}})
	w, _ := do(t, r, http.MethodPost, "/api/auth/google", GoogleLoginRequest{IDToken: "x"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "g-ann", store.users[0].GoogleID)
	require.Len(t, store.users, 2)

	r = newTestRouter(store, fakeGoogle{user: &GoogleUser{UID: "g-new", Email: "dana@example.com", Picture: "https://img/d.png"}})
	w, env := do(t, r, http.MethodPost, "/api/auth/google", GoogleLoginRequest{IDToken: "x"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.users, 3)

	var res AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Equal(t, "dana", res.User.Name)
	require.Equal(t, "https://img/d.png", res.User.ProfileImage)
}

func TestGoogleLogin_InvalidToken(t *testing.T) {
	r := newTestRouter(seededStore(t), fakeGoogle{err: errors.New("expired")})

	w, env := do(t, r, http.MethodPost, "/api/auth/google", GoogleLoginRequest{IDToken: "x"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "INVALID_TOKEN", env.Code)
}

func TestMe(t *testing.T) {
	r := newTestRouter(seededStore(t), nil)

	_, env := do(t, r, http.MethodPost, "/api/auth/login", LoginRequest{Email: "ann@example.com"}, "")
	var res AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))

	w, env := do(t, r, http.MethodGet, "/api/auth/me", nil, res.Token)
	require.Equal(t, http.StatusOK, w.Code)

	var me map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &me))
	require.Equal(t, "ann@example.com", me["email"])
	require.NotContains(t, me, "passwordHash")

	w, env = do(t, r, http.MethodGet, "/api/auth/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "AUTH_REQUIRED", env.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	r := newTestRouter(seededStore(t), nil)

	w, _ := do(t, r, http.MethodPost, "/api/auth/logout", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}
