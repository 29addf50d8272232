package comments

import (
	"html/template"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syedhisham/bxtrack/internal/features/auth"
)

// Sort constants
const (
	SortNewest = "newest"
	SortOldest = "oldest"
)

// MaxMentions caps the mention ids accepted with one comment.
const MaxMentions = 50

// Comment is a message on an issue. Mentions holds the ids chosen in the
// editor; the text only carries display names.
type Comment struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	IssueID   primitive.ObjectID   `bson:"issueId" json:"issue"`
	CreatedBy primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	Content   string               `bson:"content" json:"content"`
	Mentions  []primitive.ObjectID `bson:"mentions" json:"mentions"`
	IsEdited  bool                 `bson:"isEdited" json:"isEdited"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
	DeletedAt *time.Time           `bson:"deletedAt,omitempty" json:"-"`
}

// Request DTOs

type CreateCommentRequest struct {
	Content  string   `json:"content"`
	Mentions []string `json:"mentions"`
}

type UpdateCommentRequest struct {
	Content  string   `json:"content"`
	Mentions []string `json:"mentions"`
}

type ListQuery struct {
	Page  int    `form:"page,default=1" binding:"min=1"`
	Limit int    `form:"limit,default=10" binding:"min=1,max=100"`
	Sort  string `form:"sort,default=oldest"`
}

// Response DTOs

type CommentResponse struct {
	ID          primitive.ObjectID `json:"_id"`
	Issue       primitive.ObjectID `json:"issue"`
	Content     string             `json:"content"`
	ContentHTML template.HTML      `json:"contentHtml"`
	CreatedBy   *auth.Summary      `json:"createdBy"`
	Mentions    []auth.Summary     `json:"mentions"`
	IsEdited    bool               `json:"isEdited"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}
