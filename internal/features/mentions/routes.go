package mentions

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, roster RosterProvider, authMiddleware gin.HandlerFunc) {
	handler := NewHandler(roster)

	mentions := router.Group("/mentions")
	mentions.Use(authMiddleware)
	{
		mentions.POST("/suggest", handler.Suggest)
		mentions.POST("/select", handler.Select)
		mentions.POST("/preview", handler.Preview)
	}
}
