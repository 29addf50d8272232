package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syedhisham/bxtrack/internal/features/auth"
)

type envelope struct {
	Code string          `json:"code"`
	Data json.RawMessage `json:"data"`
}

type listPage struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int64                  `json:"total"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	TotalPages    int                    `json:"totalPages"`
	UnreadCount   int64                  `json:"unreadCount"`
}

func newTestRouter(store Store, recipient *auth.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	asRecipient := func(c *gin.Context) {
		c.Set("user", recipient)
		c.Next()
	}
	RegisterRoutes(r.Group("/api"), NewHandler(store, memActors{*actor}), asRecipient)
	return r
}

func request(t *testing.T, r http.Handler, method, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func seeded(t *testing.T) (*memStore, *auth.User) {
	t.Helper()
	store := &memStore{}
	svc := NewService(store)
	recipient := &auth.User{ID: bob, Name: "Bob Stone"}

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.IssueCreated(context.Background(), actor, issue, &bob))
	}
	require.NoError(t, svc.CommentAdded(context.Background(), actor, issue, nil, "hey @Bob", []primitive.ObjectID{bob}))
	require.NoError(t, svc.IssueCreated(context.Background(), actor, issue, &carla))
	return store, recipient
}

func TestListNotifications(t *testing.T) {
	store, recipient := seeded(t)
	r := newTestRouter(store, recipient)

	w, env := request(t, r, http.MethodGet, "/api/notifications?limit=3")
	require.Equal(t, http.StatusOK, w.Code)

	var page listPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Notifications, 3)
	require.Equal(t, int64(4), page.Total)
	require.Equal(t, 2, page.TotalPages)
	require.Equal(t, int64(4), page.UnreadCount)
	require.Equal(t, TypeMentioned, page.Notifications[0].Type)
	require.NotNil(t, page.Notifications[0].Actor)
	require.Equal(t, "Ann Lee", page.Notifications[0].Actor.Name)

	w, env = request(t, r, http.MethodGet, "/api/notifications?type=mentioned")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Notifications, 1)
}

func TestListNotifications_BadQuery(t *testing.T) {
	store, recipient := seeded(t)
	r := newTestRouter(store, recipient)

	for _, path := range []string{
		"/api/notifications?type=follow",
		"/api/notifications?limit=500",
		"/api/notifications?page=0",
	} {
		w, env := request(t, r, http.MethodGet, path)
		require.Equal(t, http.StatusBadRequest, w.Code, path)
		require.Equal(t, "INVALID_QUERY", env.Code, path)
	}
}

func TestMarkAsRead(t *testing.T) {
	store, recipient := seeded(t)
	r := newTestRouter(store, recipient)

	var mine, theirs primitive.ObjectID
	for _, n := range store.all() {
		if n.RecipientID == bob {
			mine = n.ID
		} else {
			theirs = n.ID
		}
	}

	w, env := request(t, r, http.MethodPatch, "/api/notifications/"+mine.Hex()+"/read")
	require.Equal(t, http.StatusOK, w.Code)
	var n Notification
	require.NoError(t, json.Unmarshal(env.Data, &n))
	require.True(t, n.Read)

	w, env = request(t, r, http.MethodPatch, "/api/notifications/"+theirs.Hex()+"/read")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "NOTIFICATION_NOT_FOUND", env.Code)

	w, env = request(t, r, http.MethodPatch, "/api/notifications/xyz/read")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "INVALID_ID", env.Code)

	w, env = request(t, r, http.MethodGet, "/api/notifications/unread-count")
	require.Equal(t, http.StatusOK, w.Code)
	var count UnreadCountResponse
	require.NoError(t, json.Unmarshal(env.Data, &count))
	require.Equal(t, int64(3), count.UnreadCount)
}

func TestMarkAllAsRead(t *testing.T) {
	store, recipient := seeded(t)
	r := newTestRouter(store, recipient)

	w, env := request(t, r, http.MethodPatch, "/api/notifications/read-all")
	require.Equal(t, http.StatusOK, w.Code)
	var res MarkAllReadResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Equal(t, int64(4), res.MarkedCount)

	unread, err := store.CountUnread(context.Background(), carla)
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)
}
