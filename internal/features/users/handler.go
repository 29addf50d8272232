package users

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/syedhisham/bxtrack/internal/features/auth"
	"github.com/syedhisham/bxtrack/internal/pkg/cloudinary"
	"github.com/syedhisham/bxtrack/internal/pkg/response"
	pkgerrors "github.com/syedhisham/bxtrack/pkg/errors"
)

// Store is the part of the users repository the handlers read and write.
type Store interface {
	ListUsers(ctx context.Context) ([]auth.User, error)
	GetUserByID(ctx context.Context, userID string) (*auth.User, error)
	UpdateProfileImage(ctx context.Context, userID primitive.ObjectID, url, publicID string) (*auth.User, error)
}

// ImageStore uploads and removes avatar images.
type ImageStore interface {
	UploadImage(ctx context.Context, file io.Reader, subfolder string) (*cloudinary.UploadResult, error)
	Delete(ctx context.Context, publicID string) error
}

const avatarFolder = "avatars"

type Handler struct {
	store  Store
	images ImageStore
}

// NewHandler creates the users handler. images may be nil, which disables
// avatar uploads.
func NewHandler(store Store, images ImageStore) *Handler {
	return &Handler{store: store, images: images}
}

// ListUsers godoc
// @Summary List all users
// @Description Everyone who can be assigned an issue or mentioned, sorted by name
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=[]auth.User}
// @Router /users/all-users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")
		response.DatabaseError(c, "Failed to fetch users")
		return
	}
	response.Success(c, users)
}

// GetUser godoc
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.APIResponse{data=auth.User}
// @Failure 404 {object} response.APIResponse
// @Router /users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	id := c.Param("id")
	if !primitive.IsValidObjectID(id) {
		response.InvalidID(c, "user")
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			response.NotFound(c, "User not found", "USER_NOT_FOUND")
			return
		}
		response.DatabaseError(c, "Failed to fetch user")
		return
	}
	response.Success(c, user)
}

// UploadAvatar godoc
// @Summary Upload profile image
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file (jpg, png, gif, webp; max 5MB)"
// @Success 200 {object} response.APIResponse{data=auth.User}
// @Failure 400 {object} response.APIResponse
// @Failure 503 {object} response.APIResponse
// @Router /users/me/avatar [post]
func (h *Handler) UploadAvatar(c *gin.Context) {
	if h.images == nil {
		response.ServiceUnavailable(c, "Image uploads are not configured", "UPLOADS_DISABLED")
		return
	}
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.AuthenticationError(c, "Authentication required")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "Image file is required", "FILE_REQUIRED")
		return
	}
	if err := cloudinary.ValidateImageFile(header); err != nil {
		response.BadRequest(c, err.Error(), "INVALID_FILE")
		return
	}

	file, err := header.Open()
	if err != nil {
		response.BadRequest(c, "Failed to read file", "INVALID_FILE")
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	uploaded, err := h.images.UploadImage(ctx, file, avatarFolder)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("avatar upload failed")
		response.InternalServerError(c, "Failed to upload image", "UPLOAD_FAILED")
		return
	}

	previous := user.ProfileImageID
	updated, err := h.store.UpdateProfileImage(ctx, user.ID, uploaded.URL, uploaded.PublicID)
	if err != nil {
		response.DatabaseError(c, "Failed to save profile image")
		return
	}
	h.deleteImage(previous)

	response.Success(c, updated, "Profile image updated")
}

// DeleteAvatar godoc
// @Summary Remove profile image
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=auth.User}
// @Router /users/me/avatar [delete]
func (h *Handler) DeleteAvatar(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		response.AuthenticationError(c, "Authentication required")
		return
	}

	updated, err := h.store.UpdateProfileImage(c.Request.Context(), user.ID, "", "")
	if err != nil {
		response.DatabaseError(c, "Failed to remove profile image")
		return
	}
	h.deleteImage(user.ProfileImageID)

	response.Success(c, updated, "Profile image removed")
}

// deleteImage removes a replaced avatar in the background; failures only
// leave an orphaned asset.
func (h *Handler) deleteImage(publicID string) {
	if publicID == "" || h.images == nil {
		return
	}
	go func() {
		if err := h.images.Delete(context.Background(), publicID); err != nil {
			log.Warn().Err(err).Str("public_id", publicID).Msg("failed to delete old avatar")
		}
	}()
}
