package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenCookie is the cookie the web client stores its session token in.
const TokenCookie = "token"

// BearerToken returns the request's token from the Authorization header
// ("Bearer <token>", case-insensitive, or the raw token) or, failing that,
// from the token cookie. It returns "" when neither is present.
func BearerToken(c *gin.Context) string {
	if authHeader := strings.TrimSpace(c.GetHeader("Authorization")); authHeader != "" {
		fields := strings.Fields(authHeader)
		if len(fields) == 2 && strings.EqualFold(fields[0], "Bearer") {
			return fields[1]
		}
		if len(fields) == 1 {
			return fields[0]
		}
		return ""
	}

	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}
