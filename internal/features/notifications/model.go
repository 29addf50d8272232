package notifications

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syedhisham/bxtrack/internal/features/auth"
)

// Notification type constants
const (
	TypeIssueCreated    = "issue_created"
	TypeIssueAssigned   = "issue_assigned"
	TypeIssueUpdated    = "issue_updated"
	TypeStatusChanged   = "status_changed"
	TypePriorityChanged = "priority_changed"
	TypeCommentAdded    = "comment_added"
	TypeMentioned       = "mentioned"
)

// Types lists every notification type in display order.
var Types = []string{
	TypeIssueCreated,
	TypeIssueAssigned,
	TypeIssueUpdated,
	TypeStatusChanged,
	TypePriorityChanged,
	TypeCommentAdded,
	TypeMentioned,
}

// PreviewLength caps descriptions built from comment text, in characters.
const PreviewLength = 100

// Notification represents a user notification
type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	RecipientID primitive.ObjectID `bson:"recipientId" json:"recipientId"`
	ActorID     primitive.ObjectID `bson:"actorId" json:"actorId"`
	IssueID     primitive.ObjectID `bson:"issueId" json:"issueId"`
	Type        string             `bson:"type" json:"type"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Read        bool               `bson:"read" json:"read"`
	Link        string             `bson:"link,omitempty" json:"link,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Request DTOs

type ListQuery struct {
	Page       int    `form:"page,default=1" binding:"min=1"`
	Limit      int    `form:"limit,default=10" binding:"min=1,max=100"`
	Type       string `form:"type"`
	UnreadOnly bool   `form:"unread"`
}

// Response DTOs

type NotificationResponse struct {
	Notification
	Actor *auth.Summary `json:"actor,omitempty"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unreadCount"`
}

type MarkAllReadResponse struct {
	MarkedCount int64 `json:"markedCount"`
}
