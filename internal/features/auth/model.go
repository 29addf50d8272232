package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a member of the tracker. Only the public fields are serialized.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`
	PasswordHash   string             `bson:"passwordHash,omitempty" json:"-"`
	GoogleID       string             `bson:"googleId,omitempty" json:"-"`
	ProfileImage   string             `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	ProfileImageID string             `bson:"profileImageId,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Summary is the embedded form used inside issues, comments and summaries.
type Summary struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	ProfileImage string             `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
}

func (u *User) Summary() *Summary {
	if u == nil {
		return nil
	}
	return &Summary{ID: u.ID, Name: u.Name, Email: u.Email, ProfileImage: u.ProfileImage}
}

// LoginRequest logs in by email. Password is only checked for users that
// have one set.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password"`
}

// GoogleLoginRequest carries a Google or Firebase ID token.
type GoogleLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// AuthResponse is returned after a successful login
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
