package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/syedhisham/bxtrack/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository handles the users collection
type Repository struct {
	collection *mongo.Collection
}

// NewRepository initializes the repository and creates necessary indexes
func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("users")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "googleId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "name", Value: 1}},
		},
	})

	return &Repository{collection: collection}
}

// CreateUser inserts a new user into the database
func (r *Repository) CreateUser(ctx context.Context, user *User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user %s: %w", user.Email, pkgerrors.ErrDuplicate)
		}
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

// GetUserByID returns pkgerrors.ErrNotFound for malformed or unknown ids.
func (r *Repository) GetUserByID(ctx context.Context, userID string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, pkgerrors.ErrNotFound
	}

	var user User
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail finds a user by their email address. A missing user is
// reported as nil, nil.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetUserByGoogleID finds a user by their Google subject
func (r *Repository) GetUserByGoogleID(ctx context.Context, googleID string) (*User, error) {
	return r.findOne(ctx, bson.M{"googleId": googleID})
}

func (r *Repository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var user User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every user sorted by name
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return r.find(ctx, bson.M{}, opts)
}

// GetUsersByIDs returns the users among ids that exist, in no particular order.
func (r *Repository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]User, error) {
	if len(ids) == 0 {
		return []User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *Repository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]User, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateProfileImage sets (or with empty values clears) the user's avatar
// and returns the updated user.
func (r *Repository) UpdateProfileImage(ctx context.Context, userID primitive.ObjectID, url, publicID string) (*User, error) {
	update := bson.M{"$set": bson.M{
		"profileImage":   url,
		"profileImageId": publicID,
		"updatedAt":      time.Now(),
	}}
	if url == "" {
		update = bson.M{
			"$unset": bson.M{"profileImage": "", "profileImageId": ""},
			"$set":   bson.M{"updatedAt": time.Now()},
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// LinkGoogleID attaches a Google subject to an existing user
func (r *Repository) LinkGoogleID(ctx context.Context, userID primitive.ObjectID, googleID string) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"googleId": googleID, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

// UpsertByEmail creates the user or refreshes its name, avatar and password
// hash. It reports whether a new document was inserted.
func (r *Repository) UpsertByEmail(ctx context.Context, user *User) (bool, error) {
	now := time.Now()
	set := bson.M{"name": user.Name, "updatedAt": now}
	if user.ProfileImage != "" {
		set["profileImage"] = user.ProfileImage
	}
	if user.PasswordHash != "" {
		set["passwordHash"] = user.PasswordHash
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"email": user.Email},
		bson.M{"$set": set, "$setOnInsert": bson.M{"createdAt": now}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	if oid, ok := result.UpsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return result.UpsertedCount > 0, nil
}
