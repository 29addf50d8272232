package auth

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syedhisham/bxtrack/internal/config"
	"github.com/syedhisham/bxtrack/internal/middleware"
	"github.com/syedhisham/bxtrack/internal/pkg/jwt"
	"github.com/syedhisham/bxtrack/internal/pkg/response"
	pkgerrors "github.com/syedhisham/bxtrack/pkg/errors"
)

const (
	userKey   = "user"
	userIDKey = "userID"
)

// UserLookup resolves the subject of a session token.
type UserLookup interface {
	GetUserByID(ctx context.Context, userID string) (*User, error)
}

// NewAuthMiddleware creates a Gin middleware for JWT authentication
func NewAuthMiddleware(users UserLookup, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := middleware.BearerToken(c)
		if token == "" {
			response.Unauthorized(c, "Authorization required", "AUTH_REQUIRED")
			c.Abort()
			return
		}

		claims, err := jwt.ValidateToken(token, cfg.JWTSecret)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token", "INVALID_TOKEN")
			c.Abort()
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if !errors.Is(err, pkgerrors.ErrNotFound) {
				log.Error().Err(err).Str("user_id", claims.UserID).Msg("auth lookup failed")
			}
			response.Unauthorized(c, "User not found", "USER_NOT_FOUND")
			c.Abort()
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the user when a valid token is present and
// lets the request through either way.
func OptionalAuthMiddleware(users UserLookup, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := middleware.BearerToken(c); token != "" {
			if claims, err := jwt.ValidateToken(token, cfg.JWTSecret); err == nil {
				if user, err := users.GetUserByID(c.Request.Context(), claims.UserID); err == nil {
					setUser(c, user)
				}
			}
		}
		c.Next()
	}
}

func setUser(c *gin.Context, user *User) {
	c.Set(userKey, user)
	c.Set(userIDKey, user.ID.Hex())
}

// CurrentUser returns the user attached by the auth middleware.
func CurrentUser(c *gin.Context) (*User, bool) {
	value, exists := c.Get(userKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*User)
	return user, ok && user != nil
}

// CurrentUserID is CurrentUser's id, or the zero id when unauthenticated.
func CurrentUserID(c *gin.Context) primitive.ObjectID {
	if user, ok := CurrentUser(c); ok {
		return user.ID
	}
	return primitive.NilObjectID
}
