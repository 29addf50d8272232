package auth

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the auth routes
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authMiddleware gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", handler.Login)
		auth.POST("/google", handler.GoogleLogin)
		auth.POST("/logout", handler.Logout)
		auth.GET("/me", authMiddleware, handler.Me)
	}
}
