package issues

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syedhisham/bxtrack/internal/features/auth"
	"github.com/syedhisham/bxtrack/internal/features/notifications"
	"github.com/syedhisham/bxtrack/internal/pkg/markup"
	"github.com/syedhisham/bxtrack/internal/pkg/response"
	pkgerrors "github.com/syedhisham/bxtrack/pkg/errors"
)

// UserStore resolves assignees and embedded users.
type UserStore interface {
	GetUserByID(ctx context.Context, userID string) (*auth.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]auth.User, error)
}

// Notifier is told about issue activity.
type Notifier interface {
	IssueCreated(ctx context.Context, actor *auth.User, issue notifications.IssueRef, assignee *primitive.ObjectID) error
	IssueUpdated(ctx context.Context, actor *auth.User, issue notifications.IssueRef, change notifications.IssueChange) error
	IssueDeleted(ctx context.Context, issueID primitive.ObjectID) error
}

// CommentPurger removes the comments of a deleted issue.
type CommentPurger interface {
	DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error)
}

const notifyTimeout = 10 * time.Second

type Handler struct {
	store    Store
	users    UserStore
	notifier Notifier
	comments CommentPurger
}

func NewHandler(store Store, users UserStore, notifier Notifier, comments CommentPurger) *Handler {
	return &Handler{
		store:    store,
		users:    users,
		notifier: notifier,
		comments: comments,
	}
}

// ListIssues godoc
// @Summary List issues
// @Description Paginated issues, newest first, optionally filtered
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Items per page (default 10, max 100)"
// @Param status query string false "Open, In Progress or Resolved"
// @Param priority query string false "Low, Medium or High"
// @Param assignee query string false "Assignee user ID"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /issues [get]
func (h *Handler) ListIssues(c *gin.Context) {
	h.list(c, nil)
}

// MyIssues godoc
// @Summary List issues assigned to me
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Items per page (default 10, max 100)"
// @Param status query string false "Open, In Progress or Resolved"
// @Param priority query string false "Low, Medium or High"
// @Success 200 {object} response.APIResponse
// @Router /issues/my-issues [get]
func (h *Handler) MyIssues(c *gin.Context) {
	currentUser, ok := auth.CurrentUser(c)
	if !ok {
		response.AuthenticationError(c, "Authentication required")
		return
	}
	h.list(c, &currentUser.ID)
}

func (h *Handler) list(c *gin.Context, assignee *primitive.ObjectID) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}
	filter, err := ValidateListQuery(&query)
	if err != nil {
		response.BadRequest(c, err.Error(), "INVALID_QUERY")
		return
	}
	if assignee != nil {
		filter.AssigneeID = assignee
	}

	ctx := c.Request.Context()
	issues, total, err := h.store.List(ctx, filter, query.Page, query.Limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list issues")
		response.DatabaseError(c, "Failed to fetch issues")
		return
	}

	response.Paginated(c, "issues", h.toResponses(ctx, issues), total, query.Page, query.Limit)
}

// GetIssue godoc
// @Summary Get issue by ID
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param id path string true "Issue ID"
// @Success 200 {object} response.APIResponse{data=IssueResponse}
// @Failure 404 {object} response.APIResponse
// @Router /issues/{id} [get]
func (h *Handler) GetIssue(c *gin.Context) {
	issue, ok := h.loadIssue(c)
	if !ok {
		return
	}
	response.Success(c, h.toResponses(c.Request.Context(), []Issue{*issue})[0])
}

// CreateIssue godoc
// @Summary Create issue
// @Tags issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateIssueRequest true "Issue"
// @Success 201 {object} response.APIResponse{data=IssueResponse}
// @Failure 400 {object} response.APIResponse
// @Router /issues [post]
func (h *Handler) CreateIssue(c *gin.Context) {
	currentUser, ok := auth.CurrentUser(c)
	if !ok {
		response.AuthenticationError(c, "Authentication required")
		return
	}

	var req CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}
	assignee, err := ValidateCreateIssue(&req)
	if err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	if !h.assigneeExists(c, assignee) {
		return
	}

	issue := &Issue{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		AssigneeID:  assignee,
		CreatedBy:   currentUser.ID,
	}
	if err := h.store.Create(ctx, issue); err != nil {
		log.Error().Err(err).Msg("failed to create issue")
		response.DatabaseError(c, "Failed to create issue")
		return
	}

	ref := notifications.IssueRef{ID: issue.ID, Title: issue.Title}
	h.notify("issue created", func(ctx context.Context) error {
		return h.notifier.IssueCreated(ctx, currentUser, ref, assignee)
	})

	response.Created(c, h.toResponses(ctx, []Issue{*issue})[0], "Issue created successfully")
}

// UpdateIssue godoc
// @Summary Update issue
// @Description Partial update by the creator or assignee. "assignee": null unassigns.
// @Tags issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Issue ID"
// @Param request body UpdateIssueRequest true "Fields to change"
// @Success 200 {object} response.APIResponse{data=IssueResponse}
// @Failure 400 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /issues/{id} [patch]
func (h *Handler) UpdateIssue(c *gin.Context) {
	currentUser, ok := auth.CurrentUser(c)
	if !ok {
		response.AuthenticationError(c, "Authentication required")
		return
	}
	issue, ok := h.loadIssue(c)
	if !ok {
		return
	}
	if !canEdit(issue, currentUser.ID) {
		response.AuthorizationError(c, "Only the creator or assignee can update this issue")
		return
	}

	var req UpdateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}
	assignee, err := ValidateUpdateIssue(&req)
	if err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}
	if req.Assignee.Set && !h.assigneeExists(c, assignee) {
		return
	}

	change := notifications.IssueChange{
		CreatedBy:   issue.CreatedBy,
		OldAssignee: issue.AssigneeID,
		NewAssignee: issue.AssigneeID,
		OldStatus:   issue.Status,
		OldPriority: issue.Priority,
	}
	if req.Title != nil && *req.Title != issue.Title {
		issue.Title = *req.Title
		change.Edited = true
	}
	if req.Description != nil && *req.Description != issue.Description {
		issue.Description = *req.Description
		change.Edited = true
	}
	if req.Priority != nil {
		issue.Priority = *req.Priority
	}
	if req.Status != nil {
		issue.Status = *req.Status
	}
	if req.Assignee.Set {
		issue.AssigneeID = assignee
		change.NewAssignee = assignee
	}
	change.NewStatus = issue.Status
	change.NewPriority = issue.Priority

	ctx := c.Request.Context()
	if err := h.store.Update(ctx, issue); err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			response.NotFound(c, "Issue not found", "ISSUE_NOT_FOUND")
			return
		}
		log.Error().Err(err).Str("issue_id", issue.ID.Hex()).Msg("failed to update issue")
		response.DatabaseError(c, "Failed to update issue")
		return
	}

	ref := notifications.IssueRef{ID: issue.ID, Title: issue.Title}
	h.notify("issue updated", func(ctx context.Context) error {
		return h.notifier.IssueUpdated(ctx, currentUser, ref, change)
	})

	response.Success(c, h.toResponses(ctx, []Issue{*issue})[0], "Issue updated successfully")
}

// DeleteIssue godoc
// @Summary Delete issue
// @Description Only the creator can delete an issue. Its comments are deleted with it.
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param id path string true "Issue ID"
// @Success 200 {object} response.APIResponse
// @Failure 403 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /issues/{id} [delete]
func (h *Handler) DeleteIssue(c *gin.Context) {
	currentUser, ok := auth.CurrentUser(c)
	if !ok {
		response.AuthenticationError(c, "Authentication required")
		return
	}
	issue, ok := h.loadIssue(c)
	if !ok {
		return
	}
	if issue.CreatedBy != currentUser.ID {
		response.AuthorizationError(c, "Only the creator can delete this issue")
		return
	}

	ctx := c.Request.Context()
	if err := h.store.Delete(ctx, issue.ID); err != nil {
		log.Error().Err(err).Str("issue_id", issue.ID.Hex()).Msg("failed to delete issue")
		response.DatabaseError(c, "Failed to delete issue")
		return
	}
	if removed, err := h.comments.DeleteByIssue(ctx, issue.ID); err != nil {
		log.Error().Err(err).Str("issue_id", issue.ID.Hex()).Msg("failed to delete issue comments")
	} else {
		log.Debug().Int64("comments", removed).Str("issue_id", issue.ID.Hex()).Msg("deleted issue comments")
	}

	issueID := issue.ID
	h.notify("issue deleted", func(ctx context.Context) error {
		return h.notifier.IssueDeleted(ctx, issueID)
	})

	response.Success(c, gin.H{"_id": issue.ID}, "Issue deleted successfully")
}

// GetSummary godoc
// @Summary Issue summary
// @Description Counts by status, priority and assignee. The assignee breakdown is paginated.
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param assigneePage query int false "Assignee page (default 1)"
// @Param assigneeLimit query int false "Assignees per page (default 10, max 100)"
// @Success 200 {object} response.APIResponse{data=Summary}
// @Router /issues/summary [get]
func (h *Handler) GetSummary(c *gin.Context) {
	var query SummaryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	counts, err := h.store.Summary(c.Request.Context(), query.AssigneePage, query.AssigneeLimit)
	if err != nil {
		log.Error().Err(err).Msg("failed to build issue summary")
		response.DatabaseError(c, "Failed to fetch summary")
		return
	}
	response.Success(c, BuildSummary(counts, query.AssigneePage, query.AssigneeLimit))
}

func (h *Handler) loadIssue(c *gin.Context) (*Issue, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.InvalidID(c, "issue")
		return nil, false
	}

	issue, err := h.store.GetByID(c.Request.Context(), id)
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

func (h *Handler) assigneeExists(c *gin.Context, assignee *primitive.ObjectID) bool {
	if assignee == nil {
		return true
	}
	if _, err := h.users.GetUserByID(c.Request.Context(), assignee.Hex()); err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			response.ValidationFailed(c, "assignee does not exist")
			return false
		}
		response.DatabaseError(c, "Failed to look up assignee")
		return false
	}
	return true
}

func canEdit(issue *Issue, userID primitive.ObjectID) bool {
	return issue.CreatedBy == userID || (issue.AssigneeID != nil && *issue.AssigneeID == userID)
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

// toResponses embeds users and renders descriptions
func (h *Handler) toResponses(ctx context.Context, issues []Issue) []IssueResponse {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for _, issue := range issues {
		for _, id := range issue.Watchers() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	users := make(map[primitive.ObjectID]*auth.Summary, len(ids))
	found, err := h.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load issue users")
	}
	for i := range found {
		users[found[i].ID] = found[i].Summary()
	}

	out := make([]IssueResponse, len(issues))
	for i, issue := range issues {
		html, err := markup.Markdown(issue.Description)
		if err != nil {
			log.Warn().Err(err).Str("issue_id", issue.ID.Hex()).Msg("failed to render description")
		}
		out[i] = IssueResponse{
			ID:              issue.ID,
			Title:           issue.Title,
			Description:     issue.Description,
			DescriptionHTML: html,
			Priority:        issue.Priority,
			Status:          issue.Status,
			CreatedBy:       users[issue.CreatedBy],
			CreatedAt:       issue.CreatedAt,
			UpdatedAt:       issue.UpdatedAt,
		}
		if issue.AssigneeID != nil {
			out[i].Assignee = users[*issue.AssigneeID]
		}
	}
	return out
}
