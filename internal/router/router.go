package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mealtrace/mealtrace-bot/internal/api"
	"github.com/mealtrace/mealtrace-bot/internal/chat"
	"github.com/mealtrace/mealtrace-bot/internal/middleware"
	"github.com/mealtrace/mealtrace-bot/internal/service"
)

// SetupRouter configures the dashboard and chat-webhook routes
func SetupRouter(handler *api.Handler, webhook *chat.Webhook, authService *service.AuthService) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS())

	router.GET("/health", handler.Health)

	v1 := router.Group("/api/v1")

	webhook.RegisterRoutes(v1)

	auth := v1.Group("/auth")
	{
		auth.POST("/login", handler.Login)
	}

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	{
		protected.GET("/leaderboard", handler.GetLeaderboard)
		protected.GET("/stats", handler.GetStats)

		goals := protected.Group("/goals")
		{
			goals.GET("/:scope", handler.GetGoals)
			goals.PUT("/:scope", handler.PutGoals)
		}
	}

	return router
}
