package issues

import (
	"bytes"
	"encoding/json"
	"html/template"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syedhisham/bxtrack/internal/features/auth"
	"github.com/syedhisham/bxtrack/internal/pkg/pagination"
)

// Priority values
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Status values
const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
)

var (
	Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
	Statuses   = []string{StatusOpen, StatusInProgress, StatusResolved}
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
)

// Issue is a tracked unit of work
type Issue struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	Priority    string              `bson:"priority" json:"priority"`
	Status      string              `bson:"status" json:"status"`
	AssigneeID  *primitive.ObjectID `bson:"assignee" json:"assigneeId"`
	CreatedBy   primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Watchers are the users who follow an issue's activity: its creator and
// its assignee, if any.
func (i *Issue) Watchers() []primitive.ObjectID {
	ids := []primitive.ObjectID{i.CreatedBy}
	if i.AssigneeID != nil && *i.AssigneeID != i.CreatedBy {
		ids = append(ids, *i.AssigneeID)
	}
	return ids
}

// Request DTOs

type CreateIssueRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	Assignee    *string `json:"assignee"`
}

// OptionalID distinguishes an absent field from an explicit null.
type OptionalID struct {
	Set   bool
	Value *string
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// UpdateIssueRequest carries only the fields being changed. Sending
// "assignee": null unassigns the issue.
type UpdateIssueRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	Status      *string    `json:"status"`
	Assignee    OptionalID `json:"assignee" swaggertype:"string"`
}

type ListQuery struct {
	Page     int    `form:"page,default=1" binding:"min=1"`
	Limit    int    `form:"limit,default=10" binding:"min=1,max=100"`
	Status   string `form:"status"`
	Priority string `form:"priority"`
	Assignee string `form:"assignee"`
}

type SummaryQuery struct {
	AssigneePage  int `form:"assigneePage,default=1" binding:"min=1"`
	AssigneeLimit int `form:"assigneeLimit,default=10" binding:"min=1,max=100"`
}

// Filter is a validated ListQuery.
type Filter struct {
	Status     string
	Priority   string
	AssigneeID *primitive.ObjectID
}

// Response DTOs

type IssueResponse struct {
	ID              primitive.ObjectID `json:"_id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	DescriptionHTML template.HTML      `json:"descriptionHtml"`
	Priority        string             `json:"priority"`
	Status          string             `json:"status"`
	Assignee        *auth.Summary      `json:"assignee"`
	CreatedBy       *auth.Summary      `json:"createdBy"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

type AssigneeCount struct {
	AssigneeID   *primitive.ObjectID `json:"assigneeId"`
	AssigneeName string              `json:"assigneeName"`
	Email        string              `json:"email,omitempty"`
	ProfileImage string              `json:"profileImage,omitempty"`
	Count        int64               `json:"count"`
}

type Summary struct {
	Total              int64                  `json:"total"`
	ByStatus           map[string]int64       `json:"byStatus"`
	ByPriority         map[string]int64       `json:"byPriority"`
	ByAssignee         []AssigneeCount        `json:"byAssignee"`
	AssigneePagination *pagination.Pagination `json:"assigneePagination"`
}
