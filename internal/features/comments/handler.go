package comments

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syedhisham/bxtrack/internal/features/auth"
	"github.com/syedhisham/bxtrack/internal/features/issues"
	"github.com/syedhisham/bxtrack/internal/features/mentions"
	"github.com/syedhisham/bxtrack/internal/features/notifications"
	"github.com/syedhisham/bxtrack/internal/pkg/response"
	"github.com/syedhisham/bxtrack/internal/pkg/validator"
	pkgerrors "github.com/syedhisham/bxtrack/pkg/errors"
)

// IssueLookup finds the issue a comment belongs to.
type IssueLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*issues.Issue, error)
}

// UserLookup loads authors and mentioned users.
type UserLookup interface {
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]auth.User, error)
}

// Notifier is told about new and edited comments.
type Notifier interface {
	CommentAdded(ctx context.Context, actor *auth.User, issue notifications.IssueRef, watchers []primitive.ObjectID, content string, mentioned []primitive.ObjectID) error
	CommentEdited(ctx context.Context, actor *auth.User, issue notifications.IssueRef, content string, oldMentions, newMentions []primitive.ObjectID) error
}

const notifyTimeout = 10 * time.Second

type Handler struct {
	store    Store
	issues   IssueLookup
	users    UserLookup
	notifier Notifier
}

func NewHandler(store Store, issues IssueLookup, users UserLookup, notifier Notifier) *Handler {
	return &Handler{
		store:    store,
		issues:   issues,
		users:    users,
		notifier: notifier,
	}
}

// AddComment godoc
// @Summary Add comment to issue
// @Description Mention ids are deduplicated; malformed and unknown ids are dropped.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Issue ID"
// @Param request body CreateCommentRequest true "Comment"
// @Success 201 {object} response.APIResponse{data=CommentResponse}
// @Failure 400 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /issues/{id}/comments [post]
func (h *Handler) AddComment(c *gin.Context) {
	currentUser, ok := auth.CurrentUser(c)
	if !ok {
		response.AuthenticationError(c, "Authentication required")
		return
	}
	issue, ok := h.loadIssue(c, c.Param("id"))
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}
	if err := ValidateContent(&req.Content, req.Mentions); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	mentioned, err := h.resolveMentions(ctx, req.Mentions)
	if err != nil {
		response.DatabaseError(c, "Failed to look up mentioned users")
		return
	}

	comment := &Comment{
		IssueID:   issue.ID,
		CreatedBy: currentUser.ID,
		Content:   req.Content,
		Mentions:  mentioned,
	}
	if err := h.store.CreateComment(ctx, comment); err != nil {
		log.Error().Err(err).Str("issue_id", issue.ID.Hex()).Msg("failed to create comment")
		response.DatabaseError(c, "Failed to create comment")
		return
	}

	ref := notifications.IssueRef{ID: issue.ID, Title: issue.Title}
	watchers := issue.Watchers()
	h.notify("comment added", func(ctx context.Context) error {
		return h.notifier.CommentAdded(ctx, currentUser, ref, watchers, comment.Content, comment.Mentions)
	})

	response.Created(c, h.toResponses(ctx, []Comment{*comment})[0], "Comment added successfully")
}

// ListComments godoc
// @Summary List comments for issue
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Issue ID"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Items per page (default 10, max 100)"
// @Param sort query string false "oldest or newest (default oldest)"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /issues/{id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	issue, ok := h.loadIssue(c, c.Param("id"))
	if !ok {
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
	comments, total, err := h.store.ListByIssue(ctx, issue.ID, query.Sort, query.Page, query.Limit)
	if err != nil {
		log.Error().Err(err).Str("issue_id", issue.ID.Hex()).Msg("failed to list comments")
		response.DatabaseError(c, "Failed to fetch comments")
		return
	}

	response.Paginated(c, "comments", h.toResponses(ctx, comments), total, query.Page, query.Limit)
}

// GetComment godoc
// @Summary Get comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} response.APIResponse{data=CommentResponse}
// @Failure 404 {object} response.APIResponse
// @Router /comments/{id} [get]
func (h *Handler) GetComment(c *gin.Context) {
	comment, ok := h.loadComment(c)
	if !ok {
		return
	}
	response.Success(c, h.toResponses(c.Request.Context(), []Comment{*comment})[0])
}

// EditComment godoc
// @Summary Edit comment
// @Description Only the author can edit. Users newly added to the mentions are notified.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param request body UpdateCommentRequest true "Comment"
// @Success 200 {object} response.APIResponse{data=CommentResponse}
// @Failure 400 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /comments/{id} [patch]
func (h *Handler) EditComment(c *gin.Context) {
	currentUser, ok := auth.CurrentUser(c)
	if !ok {
		response.AuthenticationError(c, "Authentication required")
		return
	}
	comment, ok := h.loadComment(c)
	if !ok {
		return
	}
	if comment.CreatedBy != currentUser.ID {
		response.AuthorizationError(c, "Cannot edit others' comments")
		return
	}

	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}
	if err := ValidateContent(&req.Content, req.Mentions); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	issue, ok := h.loadIssue(c, comment.IssueID.Hex())
	if !ok {
		return
	}

	ctx := c.Request.Context()
	mentioned, err := h.resolveMentions(ctx, req.Mentions)
	if err != nil {
		response.DatabaseError(c, "Failed to look up mentioned users")
		return
	}

	oldMentions := comment.Mentions
	comment.Content = req.Content
	comment.Mentions = mentioned
	if err := h.store.UpdateComment(ctx, comment); err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			response.NotFound(c, "Comment not found", "COMMENT_NOT_FOUND")
			return
		}
		log.Error().Err(err).Str("comment_id", comment.ID.Hex()).Msg("failed to update comment")
		response.DatabaseError(c, "Failed to update comment")
		return
	}

	ref := notifications.IssueRef{ID: issue.ID, Title: issue.Title}
	h.notify("comment edited", func(ctx context.Context) error {
		return h.notifier.CommentEdited(ctx, currentUser, ref, comment.Content, oldMentions, mentioned)
	})

	response.Success(c, h.toResponses(ctx, []Comment{*comment})[0], "Comment updated successfully")
}

// DeleteComment godoc
// @Summary Delete comment
// @Description Only the author can delete a comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /comments/{id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	currentUser, ok := auth.CurrentUser(c)
	if !ok {
		response.AuthenticationError(c, "Authentication required")
		return
	}
	comment, ok := h.loadComment(c)
	if !ok {
		return
	}
	if comment.CreatedBy != currentUser.ID {
		response.AuthorizationError(c, "Cannot delete others' comments")
		return
	}

	if err := h.store.SoftDeleteComment(c.Request.Context(), comment.ID); err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			response.NotFound(c, "Comment not found", "COMMENT_NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to delete comment")
		return
	}
	response.Success(c, gin.H{"_id": comment.ID}, "Comment deleted successfully")
}

// resolveMentions keeps the first occurrence of each well-formed id that
// belongs to an existing user, in request order.
func (h *Handler) resolveMentions(ctx context.Context, raw []string) ([]primitive.ObjectID, error) {
	set := mentions.NewMentionSet(raw...)
	ids := validator.ParseObjectIDs(set.IDs())
	if len(ids) == 0 {
		return []primitive.ObjectID{}, nil
	}

	users, err := h.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	known := make(map[primitive.ObjectID]bool, len(users))
	for _, u := range users {
		known[u.ID] = true
	}

	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if known[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (h *Handler) loadIssue(c *gin.Context, rawID string) (*issues.Issue, bool) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		response.InvalidID(c, "issue")
		return nil, false
	}
	issue, err := h.issues.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			response.NotFound(c, "Issue not found", "ISSUE_NOT_FOUND")
			return nil, false
		}
		response.DatabaseError(c, "Failed to fetch issue")
		return nil, false
	}
	return issue, true
}

func (h *Handler) loadComment(c *gin.Context) (*Comment, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.InvalidID(c, "comment")
		return nil, false
	}
	comment, err := h.store.GetCommentByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			response.NotFound(c, "Comment not found", "COMMENT_NOT_FOUND")
			return nil, false
		}
		response.DatabaseError(c, "Failed to fetch comment")
		return nil, false
	}
	return comment, true
}

// notify runs fn after the response is written. Failures are logged only.
func (h *Handler) notify(event string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Error().Err(err).Str("event", event).Msg("failed to send notifications")
		}
	}()
}

// toResponses renders comment text and embeds authors and mentioned users.
func (h *Handler) toResponses(ctx context.Context, comments []Comment) []CommentResponse {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	collect := func(id primitive.ObjectID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, comment := range comments {
		collect(comment.CreatedBy)
		for _, id := range comment.Mentions {
			collect(id)
		}
	}

	users := make(map[primitive.ObjectID]*auth.Summary, len(ids))
	found, err := h.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load comment users")
	}
	for i := range found {
		users[found[i].ID] = found[i].Summary()
	}

	out := make([]CommentResponse, len(comments))
	for i, comment := range comments {
		mentioned := make([]auth.Summary, 0, len(comment.Mentions))
		for _, id := range comment.Mentions {
			if u, ok := users[id]; ok {
				mentioned = append(mentioned, *u)
			}
		}
		out[i] = CommentResponse{
			ID:          comment.ID,
			Issue:       comment.IssueID,
			Content:     comment.Content,
			ContentHTML: mentions.Render(comment.Content),
			CreatedBy:   users[comment.CreatedBy],
			Mentions:    mentioned,
			IsEdited:    comment.IsEdited,
			CreatedAt:   comment.CreatedAt,
			UpdatedAt:   comment.UpdatedAt,
		}
	}
	return out
}
