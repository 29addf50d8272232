package notifications

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

// Store persists notifications.
type Store interface {
	CreateMany(ctx context.Context, notifications []Notification) error
	List(ctx context.Context, recipientID primitive.ObjectID, query ListQuery) ([]Notification, int64, error)
	CountUnread(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
	MarkAsRead(ctx context.Context, id, recipientID primitive.ObjectID) (*Notification, error)
	MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
	DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error)
}

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("notifications")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "recipientId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "recipientId", Value: 1},
				{Key: "read", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "issueId", Value: 1}},
		},
	})

	return &Repository{collection: collection}
}

// CreateMany inserts notifications in one batch
func (r *Repository) CreateMany(ctx context.Context, notifications []Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	now := time.Now()
	docs := make([]interface{}, len(notifications))
	for i := range notifications {
		notifications[i].ID = primitive.NewObjectID()
		notifications[i].CreatedAt = now
		notifications[i].UpdatedAt = now
		notifications[i].Read = false
		docs[i] = notifications[i]
	}

	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// List returns a page of the recipient's notifications, newest first
func (r *Repository) List(ctx context.Context, recipientID primitive.ObjectID, query ListQuery) ([]Notification, int64, error) {
	filter := bson.M{"recipientId": recipientID}
	if query.UnreadOnly {
		filter["read"] = false
	}
	if query.Type != "" {
		filter["type"] = query.Type
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(pagination.Skip(query.Page, query.Limit)).
		SetLimit(int64(query.Limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	notifications := []Notification{}
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// CountUnread counts unread notifications for a user
func (r *Repository) CountUnread(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"recipientId": recipientID,
		"read":        false,
	})
}

// MarkAsRead marks one of the recipient's notifications as read. Someone
// else's notification is reported as not found.
func (r *Repository) MarkAsRead(ctx context.Context, id, recipientID primitive.ObjectID) (*Notification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var notification Notification
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "recipientId": recipientID},
		bson.M{"$set": bson.M{"read": true, "updatedAt": time.Now()}},
		opts,
	).Decode(&notification)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &notification, nil
}

// MarkAllAsRead marks all notifications as read for a user
func (r *Repository) MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"recipientId": recipientID, "read": false},
		bson.M{"$set": bson.M{"read": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// DeleteByIssue removes notifications pointing at a deleted issue
func (r *Repository) DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"issueId": issueID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
