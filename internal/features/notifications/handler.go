package notifications

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syedhisham/bxtrack/internal/features/auth"
	"github.com/syedhisham/bxtrack/internal/pkg/response"
	pkgerrors "github.com/syedhisham/bxtrack/pkg/errors"
)

// ActorResolver loads the users who triggered notifications.
type ActorResolver interface {
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]auth.User, error)
}

type Handler struct {
	store  Store
	actors ActorResolver
}

func NewHandler(store Store, actors ActorResolver) *Handler {
	return &Handler{store: store, actors: actors}
}

// ListNotifications godoc
// @Summary List notifications
// @Description Get the current user's notifications, newest first, with the unread count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Items per page (default 10, max 100)"
// @Param type query string false "Only this notification type"
// @Param unread query bool false "Only unread notifications"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	currentUser, ok := auth.CurrentUser(c)
	if !ok {
		response.AuthenticationError(c, "Authentication required")
		return
	}

	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}
	if err := ValidateListQuery(&query); err != nil {
		response.BadRequest(c, err.Error(), "INVALID_QUERY")
		return
	}

	ctx := c.Request.Context()
	notifications, total, err := h.store.List(ctx, currentUser.ID, query)
	if err != nil {
		log.Error().Err(err).Msg("failed to list notifications")
		response.DatabaseError(c, "Failed to fetch notifications")
		return
	}
	unread, err := h.store.CountUnread(ctx, currentUser.ID)
	if err != nil {
		response.DatabaseError(c, "Failed to count notifications")
		return
	}

	response.Paginated(c, "notifications", h.withActors(ctx, notifications), total, query.Page, query.Limit,
		gin.H{"unreadCount": unread})
}

// GetUnreadCount godoc
// @Summary Get unread notification count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=UnreadCountResponse}
// @Failure 401 {object} response.APIResponse
// @Router /notifications/unread-count [get]
func (h *Handler) GetUnreadCount(c *gin.Context) {
	currentUser, ok := auth.CurrentUser(c)
	if !ok {
		response.AuthenticationError(c, "Authentication required")
		return
	}

	count, err := h.store.CountUnread(c.Request.Context(), currentUser.ID)
	if err != nil {
		response.DatabaseError(c, "Failed to count notifications")
		return
	}
	response.Success(c, UnreadCountResponse{UnreadCount: count})
}

// MarkAsRead godoc
// @Summary Mark notification as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} response.APIResponse{data=Notification}
// @Failure 400 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /notifications/{id}/read [patch]
func (h *Handler) MarkAsRead(c *gin.Context) {
	currentUser, ok := auth.CurrentUser(c)
	if !ok {
		response.AuthenticationError(c, "Authentication required")
		return
	}

	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.InvalidID(c, "notification")
		return
	}

	notification, err := h.store.MarkAsRead(c.Request.Context(), notificationID, currentUser.ID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			response.NotFound(c, "Notification not found", "NOTIFICATION_NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to mark as read")
		return
	}
	response.Success(c, notification)
}

// MarkAllAsRead godoc
// @Summary Mark all notifications as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=MarkAllReadResponse}
// @Failure 401 {object} response.APIResponse
// @Router /notifications/read-all [patch]
func (h *Handler) MarkAllAsRead(c *gin.Context) {
	currentUser, ok := auth.CurrentUser(c)
	if !ok {
		response.AuthenticationError(c, "Authentication required")
		return
	}

	count, err := h.store.MarkAllAsRead(c.Request.Context(), currentUser.ID)
	if err != nil {
		response.DatabaseError(c, "Failed to mark all as read")
		return
	}
	response.Success(c, MarkAllReadResponse{MarkedCount: count})
}

// withActors attaches actor summaries. Actors that cannot be loaded are left
// out rather than failing the list.
func (h *Handler) withActors(ctx context.Context, notifications []Notification) []NotificationResponse {
	out := make([]NotificationResponse, len(notifications))
	if len(notifications) == 0 {
		return out
	}

	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for _, n := range notifications {
		if !seen[n.ActorID] {
			seen[n.ActorID] = true
			ids = append(ids, n.ActorID)
		}
	}

	actors := make(map[primitive.ObjectID]*auth.Summary, len(ids))
	users, err := h.actors.GetUsersByIDs(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load notification actors")
	}
	for i := range users {
		actors[users[i].ID] = users[i].Summary()
	}

	for i, n := range notifications {
		out[i] = NotificationResponse{Notification: n, Actor: actors[n.ActorID]}
	}
	return out
}
