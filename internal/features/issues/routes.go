package issues

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authMiddleware gin.HandlerFunc) {
	issues := router.Group("/issues")
	issues.Use(authMiddleware)
	{
		// Static paths before /:id
		issues.GET("/summary", handler.GetSummary)
		issues.GET("/my-issues", handler.MyIssues)

		issues.GET("", handler.ListIssues)
		issues.POST("", handler.CreateIssue)
		issues.GET("/:id", handler.GetIssue)
		issues.PATCH("/:id", handler.UpdateIssue)
		issues.DELETE("/:id", handler.DeleteIssue)
	}
}
