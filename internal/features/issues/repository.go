package issues

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

// Store persists issues.
type Store interface {
	Create(ctx context.Context, issue *Issue) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Issue, error)
	List(ctx context.Context, filter Filter, page, limit int) ([]Issue, int64, error)
	Update(ctx context.Context, issue *Issue) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Summary(ctx context.Context, assigneePage, assigneeLimit int) (*SummaryCounts, error)
}

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("issues")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "assignee", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "priority", Value: 1}}},
	})

	return &Repository{collection: collection}
}

func (r *Repository) Create(ctx context.Context, issue *Issue) error {
	now := time.Now()
	issue.CreatedAt = now
	issue.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, issue)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		issue.ID = oid
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Issue, error) {
	var issue Issue
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &issue, nil
}

// List returns a page of matching issues, newest first
func (r *Repository) List(ctx context.Context, filter Filter, page, limit int) ([]Issue, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.AssigneeID != nil {
		query["assignee"] = *filter.AssigneeID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(pagination.Skip(page, limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	issues := []Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

// Update writes the issue's mutable fields and bumps UpdatedAt
func (r *Repository) Update(ctx context.Context, issue *Issue) error {
	issue.UpdatedAt = time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": issue.ID},
		bson.M{"$set": bson.M{
			"title":       issue.Title,
			"description": issue.Description,
			"priority":    issue.Priority,
			"status":      issue.Status,
			"assignee":    issue.AssigneeID,
			"updatedAt":   issue.UpdatedAt,
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

func (r *Repository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

// SummaryCounts is the raw result of the summary aggregation.
type SummaryCounts struct {
	Total         []countRow    `bson:"total"`
	ByStatus      []keyCount    `bson:"byStatus"`
	ByPriority    []keyCount    `bson:"byPriority"`
	AssigneeTotal []countRow    `bson:"assigneeTotal"`
	ByAssignee    []assigneeRow `bson:"byAssignee"`
}

type countRow struct {
	N int64 `bson:"n"`
}

type keyCount struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

type assigneeRow struct {
	ID           *primitive.ObjectID `bson:"_id"`
	Count        int64               `bson:"count"`
	Name         string              `bson:"name"`
	Email        string              `bson:"email"`
	ProfileImage string              `bson:"profileImage"`
}

// Summary counts issues by status, priority and assignee in one pass. The
// assignee breakdown is sorted by count and paginated; unassigned issues are
// grouped under a null id.
func (r *Repository) Summary(ctx context.Context, assigneePage, assigneeLimit int) (*SummaryCounts, error) {
	byAssignee := bson.A{
		bson.M{"$group": bson.M{"_id": "$assignee", "count": bson.M{"$sum": 1}}},
		bson.M{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
		bson.M{"$skip": pagination.Skip(assigneePage, assigneeLimit)},
		bson.M{"$limit": int64(assigneeLimit)},
		bson.M{"$lookup": bson.M{
			"from":         "users",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "user",
		}},
		bson.M{"$unwind": bson.M{"path": "$user", "preserveNullAndEmptyArrays": true}},
		bson.M{"$project": bson.M{
			"count":        1,
			"name":         "$user.name",
			"email":        "$user.email",
			"profileImage": "$user.profileImage",
		}},
	}

	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"total":      bson.A{bson.M{"$count": "n"}},
			"byStatus":   bson.A{bson.M{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
			"byPriority": bson.A{bson.M{"$group": bson.M{"_id": "$priority", "count": bson.M{"$sum": 1}}}},
			"assigneeTotal": bson.A{
				bson.M{"$group": bson.M{"_id": "$assignee"}},
				bson.M{"$count": "n"},
			},
			"byAssignee": byAssignee,
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []SummaryCounts
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &SummaryCounts{}, nil
	}
	return &results[0], nil
}

// BuildSummary fills in zero counts for every status and priority and names
// the assignee rows.
func BuildSummary(counts *SummaryCounts, assigneePage, assigneeLimit int) *Summary {
	s := &Summary{
		ByStatus:   make(map[string]int64, len(Statuses)),
		ByPriority: make(map[string]int64, len(Priorities)),
		ByAssignee: make([]AssigneeCount, 0, len(counts.ByAssignee)),
	}
	for _, status := range Statuses {
		s.ByStatus[status] = 0
	}
	for _, priority := range Priorities {
		s.ByPriority[priority] = 0
	}

	if len(counts.Total) > 0 {
		s.Total = counts.Total[0].N
	}
	for _, row := range counts.ByStatus {
		s.ByStatus[row.Key] = row.Count
	}
	for _, row := range counts.ByPriority {
		s.ByPriority[row.Key] = row.Count
	}

	for _, row := range counts.ByAssignee {
		name := row.Name
		switch {
		case row.ID == nil:
			name = "Unassigned"
		case name == "":
			name = "Unknown user"
		}
		s.ByAssignee = append(s.ByAssignee, AssigneeCount{
			AssigneeID:   row.ID,
			AssigneeName: name,
			Email:        row.Email,
			ProfileImage: row.ProfileImage,
			Count:        row.Count,
		})
	}

	var assignees int64
	if len(counts.AssigneeTotal) > 0 {
		assignees = counts.AssigneeTotal[0].N
	}
	s.AssigneePagination = pagination.New(assigneePage, assigneeLimit, assignees)
	return s
}
