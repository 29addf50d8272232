package mentions

import (
	"context"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/syedhisham/bxtrack/internal/pkg/response"
)

// RosterProvider supplies everyone who can be mentioned. The roster is loaded
// whole for each request; there is no paging contract.
type RosterProvider interface {
	Roster(ctx context.Context) ([]Candidate, error)
}

type Handler struct {
	roster RosterProvider
}

func NewHandler(roster RosterProvider) *Handler {
	return &Handler{roster: roster}
}

// Suggest godoc
// @Summary Detect a mention trigger and list candidates
// @Description Recomputes the @-trigger for the text and caret and returns matching users
// @Tags mentions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SuggestRequest true "Composer state"
// @Success 200 {object} response.APIResponse{data=SuggestResponse}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /mentions/suggest [post]
func (h *Handler) Suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}
	if err := ValidateSuggestRequest(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	roster, err := h.roster.Roster(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("mentions: failed to load roster")
		response.DatabaseError(c, "Failed to load users")
		return
	}

	change := OnTextChange(req.Text, req.Caret, roster)
	res := SuggestResponse{Trigger: change.Trigger, Candidates: []Candidate{}}
	if change.Trigger != nil {
		res.Candidates = slices.Collect(MatchCandidates(roster, change.Trigger.Query, req.Limit))
	}

	response.Success(c, res)
}

// Select godoc
// @Summary Insert a mention
// @Description Replaces the open trigger with @Name and appends the user to the mention list
// @Tags mentions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SelectRequest true "Composer state and chosen user"
// @Success 200 {object} response.APIResponse{data=SelectResponse}
// @Failure 400 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /mentions/select [post]
func (h *Handler) Select(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}
	if err := ValidateSelectRequest(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	roster, err := h.roster.Roster(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("mentions: failed to load roster")
		response.DatabaseError(c, "Failed to load users")
		return
	}

	idx := slices.IndexFunc(roster, func(cand Candidate) bool { return cand.ID == req.UserID })
	if idx < 0 {
		response.NotFound(c, "User not found", "USER_NOT_FOUND")
		return
	}

	session := NewSession(roster, Draft{Content: req.Text, Mentions: req.Mentions})
	session.Edit(req.Text, req.Caret)
	sel, ok := session.Select(roster[idx])
	if !ok {
		response.Conflict(c, "No mention is being typed at the caret", "NO_ACTIVE_TRIGGER")
		return
	}

	draft := session.Draft()
	response.Success(c, SelectResponse{
		Content:  draft.Content,
		Caret:    sel.NewCaret,
		Mentions: draft.Mentions,
	})
}

// Preview godoc
// @Summary Render comment markup
// @Description Renders mentions, bold and italic exactly as stored comments are displayed
// @Tags mentions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PreviewRequest true "Comment text"
// @Success 200 {object} response.APIResponse{data=PreviewResponse}
// @Failure 400 {object} response.APIResponse
// @Router /mentions/preview [post]
func (h *Handler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}
	if err := ValidatePreviewRequest(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	segs := Parse(req.Content)
	if segs == nil {
		segs = []Segment{}
	}
	names := Names(req.Content)
	if names == nil {
		names = []string{}
	}

	response.Success(c, PreviewResponse{
		HTML:     Render(req.Content),
		Names:    names,
		Segments: segs,
	})
}
