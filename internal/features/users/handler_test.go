package users

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syedhisham/bxtrack/internal/features/auth"
	"github.com/syedhisham/bxtrack/internal/pkg/cloudinary"
	pkgerrors "github.com/syedhisham/bxtrack/pkg/errors"
)

type memStore struct {
	users []auth.User
	err   error
}

func (m *memStore) ListUsers(ctx context.Context) ([]auth.User, error) {
	return m.users, m.err
}

func (m *memStore) GetUserByID(ctx context.Context, userID string) (*auth.User, error) {
	for i := range m.users {
		if m.users[i].ID.Hex() == userID {
			return &m.users[i], nil
		}
	}
	return nil, pkgerrors.ErrNotFound
}

func (m *memStore) UpdateProfileImage(ctx context.Context, userID primitive.ObjectID, url, publicID string) (*auth.User, error) {
	for i := range m.users {
		if m.users[i].ID == userID {
			m.users[i].ProfileImage = url
			m.users[i].ProfileImageID = publicID
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, pkgerrors.ErrNotFound
}

type fakeImages struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeImages) UploadImage(ctx context.Context, file io.Reader, subfolder string) (*cloudinary.UploadResult, error) {
	if _, err := io.ReadAll(file); err != nil {
		return nil, err
	}
	return &cloudinary.UploadResult{URL: "https://cdn.example.com/" + subfolder + "/new.png", PublicID: subfolder + "/new"}, nil
}

func (f *fakeImages) Delete(ctx context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicID)
	return nil
}

func (f *fakeImages) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type envelope struct {
	Code string          `json:"code"`
	Data json.RawMessage `json:"data"`
}

func newStore() *memStore {
	return &memStore{users: []auth.User{
		{ID: primitive.NewObjectID(), Name: "Ali Ahmed", Email: "ali.ahmed@example.com", ProfileImageID: "avatars/old"},
		{ID: primitive.NewObjectID(), Name: "Fatima Khan", Email: "fatima.khan@example.com"},
	}}
}

func newTestRouter(store *memStore, images ImageStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	current := store.users[0]
	asFirstUser := func(c *gin.Context) {
		c.Set("user", &current)
		c.Next()
	}
	RegisterRoutes(r.Group("/api"), NewHandler(store, images), asFirstUser)
	return r
}

func serve(t *testing.T, r http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestListUsers(t *testing.T) {
	store := newStore()
	r := newTestRouter(store, nil)

	w, env := serve(t, r, httptest.NewRequest(http.MethodGet, "/api/users/all-users", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var users []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 2)
	require.Equal(t, "Ali Ahmed", users[0]["name"])
	require.NotContains(t, users[0], "profileImageId")

	store.err = errors.New("timeout")
	w, env = serve(t, r, httptest.NewRequest(http.MethodGet, "/api/users/all-users", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "DATABASE_ERROR", env.Code)
}

func TestGetUser(t *testing.T) {
	store := newStore()
	r := newTestRouter(store, nil)

	w, _ := serve(t, r, httptest.NewRequest(http.MethodGet, "/api/users/"+store.users[1].ID.Hex(), nil))
	require.Equal(t, http.StatusOK, w.Code)

	w, env := serve(t, r, httptest.NewRequest(http.MethodGet, "/api/users/nope", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "INVALID_ID", env.Code)

	w, env = serve(t, r, httptest.NewRequest(http.MethodGet, "/api/users/"+primitive.NewObjectID().Hex(), nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "USER_NOT_FOUND", env.Code)
}

func multipartImage(t *testing.T, filename string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/users/me/avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadAvatar(t *testing.T) {
	store := newStore()
	images := &fakeImages{}
	r := newTestRouter(store, images)

	w, env := serve(t, r, multipartImage(t, "me.png"))
	require.Equal(t, http.StatusOK, w.Code)

	var user auth.User
	require.NoError(t, json.Unmarshal(env.Data, &user))
	require.Equal(t, "https://cdn.example.com/avatars/new.png", user.ProfileImage)
	require.Equal(t, "avatars/new", store.users[0].ProfileImageID)

	require.Eventually(t, func() bool {
		deleted := images.Deleted()
		return len(deleted) == 1 && deleted[0] == "avatars/old"
	}, time.Second, 10*time.Millisecond)
}

func TestUploadAvatar_Rejections(t *testing.T) {
	store := newStore()

	w, env := serve(t, newTestRouter(store, nil), multipartImage(t, "me.png"))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "UPLOADS_DISABLED", env.Code)

	w, env = serve(t, newTestRouter(store, &fakeImages{}), multipartImage(t, "notes.txt"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "INVALID_FILE", env.Code)
}

func TestDeleteAvatar(t *testing.T) {
	store := newStore()
	store.users[0].ProfileImage = "https://cdn.example.com/avatars/old.png"
	r := newTestRouter(store, nil)

	w, _ := serve(t, r, httptest.NewRequest(http.MethodDelete, "/api/users/me/avatar", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, store.users[0].ProfileImage)
}
