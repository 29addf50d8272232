package routes

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/syedhisham/bxtrack/internal/config"
	"github.com/syedhisham/bxtrack/internal/features/auth"
	"github.com/syedhisham/bxtrack/internal/features/comments"
	"github.com/syedhisham/bxtrack/internal/features/issues"
	"github.com/syedhisham/bxtrack/internal/features/mentions"
	"github.com/syedhisham/bxtrack/internal/features/notifications"
	"github.com/syedhisham/bxtrack/internal/features/users"
	"github.com/syedhisham/bxtrack/internal/pkg/cloudinary"
	"github.com/syedhisham/bxtrack/internal/pkg/ratelimit"
)

const limiterCleanupInterval = 5 * time.Minute

// SetupRoutes registers every feature under /api. Background work started
// here stops when ctx is cancelled.
func SetupRoutes(ctx context.Context, router *gin.Engine, db *mongo.Database, cfg *config.Config) error {
	limiter := ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(limiterCleanupInterval, ctx.Done())

	api := router.Group("/api")
	api.Use(ratelimit.Middleware(limiter))

	// Shared repositories
	usersRepo := auth.NewRepository(db)
	issuesRepo := issues.NewRepository(db)
	commentsRepo := comments.NewRepository(db)
	notificationsRepo := notifications.NewRepository(db)

	google, err := auth.NewGoogleVerifier(ctx, cfg)
	if err != nil {
		return fmt.Errorf("google login: %w", err)
	}
	if google == nil {
		log.Warn().Msg("Google login disabled: set firebase_credentials or google_client_id")
	}

	authMiddleware := auth.NewAuthMiddleware(usersRepo, cfg)
	notifier := notifications.NewService(notificationsRepo)

	auth.RegisterRoutes(api, auth.NewHandler(usersRepo, google, cfg), authMiddleware)
	users.RegisterRoutes(api, users.NewHandler(usersRepo, avatarStore(cfg)), authMiddleware)
	mentions.RegisterRoutes(api, users.NewRoster(usersRepo), authMiddleware)
	issues.RegisterRoutes(api, issues.NewHandler(issuesRepo, usersRepo, notifier, commentsRepo), authMiddleware)
	comments.RegisterRoutes(api, comments.NewHandler(commentsRepo, issuesRepo, usersRepo, notifier), authMiddleware)
	notifications.RegisterRoutes(api, notifications.NewHandler(notificationsRepo, usersRepo), authMiddleware)

	return nil
}

// avatarStore returns nil, not a typed nil pointer, when uploads are not
// configured so the users handler can report them as disabled.
func avatarStore(cfg *config.Config) users.ImageStore {
	cld, err := cloudinary.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, "bxtrack")
	if err != nil {
		log.Warn().Err(err).Msg("Avatar uploads disabled")
		return nil
	}
	return cld
}
