package response

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every endpoint responds with
type APIResponse struct {
	Success    bool        `json:"success" example:"true"`
	StatusCode int         `json:"statusCode" example:"200"`
	Message    string      `json:"message" example:"OK"`
	Data       interface{} `json:"data,omitempty"`
	Code       string      `json:"code,omitempty" example:"VALIDATION_FAILED"`
}

func write(c *gin.Context, statusCode int, message string, data interface{}, code string) {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	c.JSON(statusCode, APIResponse{
		Success:    statusCode < http.StatusBadRequest,
		StatusCode: statusCode,
		Message:    message,
		Data:       data,
		Code:       code,
	})
}

func first(values []string) string {
	if len(values) > 0 {
		return values[0]
	}
	return ""
}

// Success sends a 200 OK response with data
func Success(c *gin.Context, data interface{}, message ...string) {
	write(c, http.StatusOK, first(message), data, "")
}

// Created sends a 201 Created response
func Created(c *gin.Context, data interface{}, message ...string) {
	write(c, http.StatusCreated, first(message), data, "")
}

// Paginated sends a page of items under key together with its totals.
// Entries in extra are merged into the payload.
func Paginated(c *gin.Context, key string, items interface{}, total int64, page, limit int, extra ...gin.H) {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}

	data := gin.H{
		key:          items,
		"total":      total,
		"page":       page,
		"limit":      limit,
		"totalPages": totalPages,
	}
	for _, e := range extra {
		for k, v := range e {
			data[k] = v
		}
	}
	write(c, http.StatusOK, "", data, "")
}

// Error sends an error response with custom status code and message
func Error(c *gin.Context, statusCode int, message string, errorCode ...string) {
	write(c, statusCode, message, nil, first(errorCode))
}

// ErrorWithData sends an error response that also carries a data payload
func ErrorWithData(c *gin.Context, statusCode int, message string, data interface{}, errorCode ...string) {
	write(c, statusCode, message, data, first(errorCode))
}

// BadRequest sends a 400 Bad Request error
func BadRequest(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusBadRequest, message, errorCode...)
}

// Unauthorized sends a 401 Unauthorized error
func Unauthorized(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusUnauthorized, message, errorCode...)
}

// Forbidden sends a 403 Forbidden error
func Forbidden(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusForbidden, message, errorCode...)
}

// NotFound sends a 404 Not Found error
func NotFound(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusNotFound, message, errorCode...)
}

// Conflict sends a 409 Conflict error
func Conflict(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusConflict, message, errorCode...)
}

// ValidationError sends a 422 Unprocessable Entity error
func ValidationError(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusUnprocessableEntity, message, errorCode...)
}

// TooManyRequests sends a 429 error with retry information in data
func TooManyRequests(c *gin.Context, message string, data interface{}) {
	ErrorWithData(c, http.StatusTooManyRequests, message, data, "RATE_LIMITED")
}

// InternalServerError sends a 500 Internal Server Error
func InternalServerError(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusInternalServerError, message, errorCode...)
}

// ServiceUnavailable sends a 503 Service Unavailable error
func ServiceUnavailable(c *gin.Context, message string, errorCode ...string) {
	Error(c, http.StatusServiceUnavailable, message, errorCode...)
}

// BindJSONError handles JSON decode errors in request body
func BindJSONError(c *gin.Context, err error) {
	BadRequest(c, "Invalid request format", "INVALID_JSON")
}

// ValidationFailed handles validation errors
func ValidationFailed(c *gin.Context, message string) {
	BadRequest(c, message, "VALIDATION_FAILED")
}

// InvalidID handles malformed path ids
func InvalidID(c *gin.Context, what string) {
	BadRequest(c, "Invalid "+what+" ID", "INVALID_ID")
}

// DatabaseError handles database operation errors
func DatabaseError(c *gin.Context, message string) {
	InternalServerError(c, message, "DATABASE_ERROR")
}

// AuthenticationError handles authentication failures
func AuthenticationError(c *gin.Context, message string) {
	Unauthorized(c, message, "AUTH_FAILED")
}

// AuthorizationError handles authorization failures
func AuthorizationError(c *gin.Context, message string) {
	Forbidden(c, message, "FORBIDDEN")
}
