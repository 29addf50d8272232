package response

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccessAndErrorResponses(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, map[string]string{"foo": "bar"}, "ok")
	require.Equal(t, 200, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["success"])
	require.Equal(t, float64(200), body["statusCode"]) // json numbers decode to float64
	require.Equal(t, "ok", body["message"])
	require.Contains(t, body, "data")
	require.NotContains(t, body, "code")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Error(c, 400, "bad request", "BAD_REQ")
	require.Equal(t, 400, w.Code)
	bodyErr := decode(t, w)
	require.Equal(t, false, bodyErr["success"])
	require.Equal(t, float64(400), bodyErr["statusCode"])
	require.Equal(t, "bad request", bodyErr["message"])
	require.Equal(t, "BAD_REQ", bodyErr["code"])
}

func TestDefaultMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Created(c, gin.H{"id": "1"})
	require.Equal(t, 201, w.Code)
	require.Equal(t, "Created", decode(t, w)["message"])
}

func TestPaginatedResponse(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	items := []map[string]any{{"id": 1}, {"id": 2}}
	Paginated(c, "issues", items, 21, 1, 10, gin.H{"unreadCount": 4})

	require.Equal(t, 200, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["success"])
	require.Equal(t, float64(200), body["statusCode"])
	data := body["data"].(map[string]any)
	require.Len(t, data["issues"], 2)
	require.Equal(t, float64(4), data["unreadCount"])
	require.Equal(t, float64(21), data["total"].(float64))
	require.Equal(t, float64(10), data["limit"].(float64))
	require.Equal(t, float64(1), data["page"].(float64))
	require.Equal(t, float64(3), data["totalPages"].(float64))
}

func TestHelpersSetCodes(t *testing.T) {
	tests := []struct {
		name   string
		call   func(c *gin.Context)
		status int
		code   string
	}{
		{"bind", func(c *gin.Context) { BindJSONError(c, errors.New("eof")) }, 400, "INVALID_JSON"},
		{"validation", func(c *gin.Context) { ValidationFailed(c, "title is required") }, 400, "VALIDATION_FAILED"},
		{"invalid id", func(c *gin.Context) { InvalidID(c, "issue") }, 400, "INVALID_ID"},
		{"database", func(c *gin.Context) { DatabaseError(c, "boom") }, 500, "DATABASE_ERROR"},
		{"auth", func(c *gin.Context) { AuthenticationError(c, "nope") }, 401, "AUTH_FAILED"},
		{"forbidden", func(c *gin.Context) { AuthorizationError(c, "nope") }, 403, "FORBIDDEN"},
		{"rate", func(c *gin.Context) { TooManyRequests(c, "slow down", gin.H{"retry_after": "1s"}) }, 429, "RATE_LIMITED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.call(c)
			require.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			require.Equal(t, false, body["success"])
			require.Equal(t, tt.code, body["code"])
		})
	}
}
