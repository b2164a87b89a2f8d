package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/threadpost/threadpost-backend/internal/handler"
	"github.com/threadpost/threadpost-backend/internal/middleware"
)

// Deps carries everything route registration needs
type Deps struct {
	Messages      *handler.MessageHandler
	Notifications *handler.NotificationHandler
	Redis         *redis.Client
	RateLimit     middleware.RateLimitConfig
}

// Setup registers all routes on the engine
func Setup(r *gin.Engine, deps Deps) {
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RateLimit(deps.Redis, deps.RateLimit))
	api.Use(middleware.RequireIdentity())

	messages := api.Group("/messages")
	{
		messages.POST("", deps.Messages.Send)
		messages.GET("/inbox", deps.Messages.Inbox)
		messages.GET("/sent", deps.Messages.Sent)
		messages.GET("/unread", deps.Messages.Unread)
		messages.PATCH("/:id", deps.Messages.Edit)
		messages.POST("/:id/read", deps.Messages.MarkRead)
		messages.GET("/:id/history", deps.Messages.History)
		messages.GET("/:id/thread", deps.Messages.Thread)
	}

	// The conversation listing is the hottest read path; cache it briefly.
	api.GET("/conversations",
		middleware.Cache(deps.Redis, middleware.DefaultCacheConfig()),
		deps.Messages.Conversations)

	notifications := api.Group("/notifications")
	{
		notifications.GET("/unread", deps.Notifications.Unread)
		notifications.GET("/summary", deps.Notifications.Summary)
		notifications.POST("/:id/read", deps.Notifications.MarkRead)
		notifications.POST("/read-all", deps.Notifications.MarkAllRead)
	}

	api.DELETE("/identities/:id", deps.Messages.DeleteIdentity)
}
