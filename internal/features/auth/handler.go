package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/syedhisham/bxtrack/internal/config"
	"github.com/syedhisham/bxtrack/internal/middleware"
	"github.com/syedhisham/bxtrack/internal/pkg/jwt"
	"github.com/syedhisham/bxtrack/internal/pkg/response"
	"github.com/syedhisham/bxtrack/internal/pkg/validator"
	pkgerrors "github.com/syedhisham/bxtrack/pkg/errors"
)

// UserStore is the slice of the users repository the handlers need.
type UserStore interface {
	UserLookup
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	LinkGoogleID(ctx context.Context, userID primitive.ObjectID, googleID string) error
}

type Handler struct {
	users        UserStore
	google       GoogleVerifier
	jwtCfg       *jwt.Config
	secureCookie bool
}

// NewHandler wires the auth endpoints. google may be nil, which disables
// Google login.
func NewHandler(users UserStore, google GoogleVerifier, cfg *config.Config) *Handler {
	return &Handler{
		users:        users,
		google:       google,
		jwtCfg:       jwt.DefaultConfig(cfg.JWTSecret, cfg.JWTExpire),
		secureCookie: cfg.IsProduction(),
	}
}

// Login godoc
// @Summary Login user
// @Description Log in by email. Users with a password must supply it.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} response.APIResponse{data=AuthResponse}
// @Failure 400 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}
	if err := ValidateLogin(&req); err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	user, err := h.users.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("login lookup failed")
		response.DatabaseError(c, "Failed to look up user")
		return
	}
	if user == nil {
		response.Unauthorized(c, "Invalid email or password", "INVALID_CREDENTIALS")
		return
	}
	if user.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			response.Unauthorized(c, "Invalid email or password", "INVALID_CREDENTIALS")
			return
		}
	}

	h.issueToken(c, user, "Login successful")
}

// GoogleLogin godoc
// @Summary Login with Google
// @Description Verify a Google ID token and log in, creating the user on first sign-in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GoogleLoginRequest true "Google ID token"
// @Success 200 {object} response.APIResponse{data=AuthResponse}
// @Failure 401 {object} response.APIResponse
// @Failure 503 {object} response.APIResponse
// @Router /auth/google [post]
func (h *Handler) GoogleLogin(c *gin.Context) {
	if h.google == nil {
		response.ServiceUnavailable(c, "Google login is not configured", "GOOGLE_LOGIN_DISABLED")
		return
	}

	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	ctx := c.Request.Context()
	identity, err := h.google.Verify(ctx, req.IDToken)
	if err != nil {
		log.Warn().Err(err).Msg("google token rejected")
		response.Unauthorized(c, "Invalid Google token", "INVALID_TOKEN")
		return
	}
	email := validator.NormalizeEmail(identity.Email)
	if email == "" {
		response.BadRequest(c, "Google account has no email address", "EMAIL_REQUIRED")
		return
	}

	user, err := h.users.GetUserByGoogleID(ctx, identity.UID)
	if err == nil && user == nil {
		user, err = h.users.GetUserByEmail(ctx, email)
		if err == nil && user != nil {
			err = h.users.LinkGoogleID(ctx, user.ID, identity.UID)
		}
	}
	if err == nil && user == nil {
		user = &User{
			Name:         DisplayName(identity.Name, email),
			Email:        email,
			GoogleID:     identity.UID,
			ProfileImage: identity.Picture,
		}
		err = h.users.CreateUser(ctx, user)
	}
	if errors.Is(err, pkgerrors.ErrDuplicate) {
		response.Conflict(c, "Account is being created, try again", "ACCOUNT_CONFLICT")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("google login failed")
		response.DatabaseError(c, "Failed to sign in")
		return
	}

	h.issueToken(c, user, "Login successful")
}

func (h *Handler) issueToken(c *gin.Context, user *User, message string) {
	token, err := jwt.GenerateToken(user.ID.Hex(), user.Email, h.jwtCfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to sign token")
		response.InternalServerError(c, "Failed to generate token", "TOKEN_ERROR")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(h.jwtCfg.AccessExpiry.Seconds()), "/", "", h.secureCookie, true)
	response.Success(c, AuthResponse{User: user, Token: token}, message)
}

// Logout godoc
// @Summary Logout
// @Description Clear the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.secureCookie, true)
	response.Success(c, nil, "Logged out")
}

// Me godoc
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse{data=User}
// @Failure 401 {object} response.APIResponse
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		response.AuthenticationError(c, "Authentication required")
		return
	}
	response.Success(c, user)
}

