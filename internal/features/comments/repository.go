package comments

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/syedhisham/bxtrack/internal/pkg/pagination"
	pkgerrors "github.com/syedhisham/bxtrack/pkg/errors"
)

// Store persists comments. Deleted comments are hidden from every read.
type Store interface {
	CreateComment(ctx context.Context, comment *Comment) error
	GetCommentByID(ctx context.Context, commentID primitive.ObjectID) (*Comment, error)
	ListByIssue(ctx context.Context, issueID primitive.ObjectID, sort string, page, limit int) ([]Comment, int64, error)
	UpdateComment(ctx context.Context, comment *Comment) error
	SoftDeleteComment(ctx context.Context, commentID primitive.ObjectID) error
	DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error)
}

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("comments")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "issueId", Value: 1},
				{Key: "deletedAt", Value: 1},
				{Key: "createdAt", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "createdBy", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "mentions", Value: 1}},
		},
	})

	return &Repository{collection: collection}
}

// CreateComment inserts a new comment
func (r *Repository) CreateComment(ctx context.Context, comment *Comment) error {
	now := time.Now()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	comment.IsEdited = false

	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// GetCommentByID retrieves a live comment by ID
func (r *Repository) GetCommentByID(ctx context.Context, commentID primitive.ObjectID) (*Comment, error) {
	var comment Comment
	err := r.collection.FindOne(ctx, bson.M{
		"_id":       commentID,
		"deletedAt": nil,
	}).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// ListByIssue retrieves a page of an issue's comments
func (r *Repository) ListByIssue(ctx context.Context, issueID primitive.ObjectID, sort string, page, limit int) ([]Comment, int64, error) {
	filter := bson.M{
		"issueId":   issueID,
		"deletedAt": nil,
	}

	order := 1
	if sort == SortNewest {
		order = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: order}, {Key: "_id", Value: order}}).
		SetSkip(pagination.Skip(page, limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	comments := []Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// UpdateComment saves new content and mentions and marks the comment edited
func (r *Repository) UpdateComment(ctx context.Context, comment *Comment) error {
	comment.UpdatedAt = time.Now()
	comment.IsEdited = true

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": comment.ID, "deletedAt": nil},
		bson.M{"$set": bson.M{
			"content":   comment.Content,
			"mentions":  comment.Mentions,
			"isEdited":  true,
			"updatedAt": comment.UpdatedAt,
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

// SoftDeleteComment soft deletes a comment
func (r *Repository) SoftDeleteComment(ctx context.Context, commentID primitive.ObjectID) error {
	now := time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": commentID, "deletedAt": nil},
		bson.M{"$set": bson.M{"deletedAt": now, "updatedAt": now}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

// DeleteByIssue removes every comment of a deleted issue
func (r *Repository) DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"issueId": issueID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
