package comments

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authMiddleware gin.HandlerFunc) {
	issueComments := router.Group("/issues/:id/comments")
	issueComments.Use(authMiddleware)
	{
		issueComments.POST("", handler.AddComment)
		issueComments.GET("", handler.ListComments)
	}

	comments := router.Group("/comments")
	comments.Use(authMiddleware)
	{
		comments.GET("/:id", handler.GetComment)
		comments.PATCH("/:id", handler.EditComment)
		comments.DELETE("/:id", handler.DeleteComment)
	}
}
