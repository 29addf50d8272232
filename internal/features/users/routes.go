package users

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authMiddleware gin.HandlerFunc) {
	users := router.Group("/users")
	users.Use(authMiddleware)
	{
		users.GET("/all-users", handler.ListUsers)

		// /me routes must come before /:id
		users.POST("/me/avatar", handler.UploadAvatar)
		users.DELETE("/me/avatar", handler.DeleteAvatar)

		users.GET("/:id", handler.GetUser)
	}
}
