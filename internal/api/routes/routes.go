// Package routes defines the HTTP routes for the chat service.
package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/streamchat/chat-service/internal/api/handlers"
	"github.com/streamchat/chat-service/internal/api/middleware"
)

// Config holds the dependencies for setting up routes.
type Config struct {
	HealthHandler       *handlers.HealthHandler
	ThreadsHandler      *handlers.ThreadsHandler
	MessagesHandler     *handlers.MessagesHandler
	ModelsHandler       *handlers.ModelsHandler
	PreferencesHandler  *handlers.PreferencesHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
}

// Setup configures all routes on the Gin engine.
func Setup(r *gin.Engine, cfg *Config) {
	// Health check routes (no auth required)
	r.GET("/health", cfg.HealthHandler.Health)
	r.GET("/ready", cfg.HealthHandler.Ready)
	r.GET("/live", cfg.HealthHandler.Live)

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes - all chat routes under /api/v1/chat
	v1 := r.Group("/api/v1/chat")
	v1.Use(cfg.AuthMiddleware.Authenticate())
	{
		// Messages
		messages := v1.Group("/messages")
		{
			// Streaming carries the per-user quota; it is the expensive path.
			messages.POST("/stream", cfg.RateLimitMiddleware.Limit(), cfg.MessagesHandler.StreamMessage)
			messages.POST("", cfg.RateLimitMiddleware.Limit(), cfg.MessagesHandler.SendMessage)
		}

		// Threads
		threads := v1.Group("/threads")
		{
			threads.GET("", cfg.ThreadsHandler.ListThreads)
			threads.GET("/:threadId", cfg.ThreadsHandler.GetThread)
			threads.DELETE("/:threadId", cfg.ThreadsHandler.DeleteThread)
		}

		// Model catalog
		v1.GET("/models", cfg.ModelsHandler.ListModels)

		// Preferences
		v1.GET("/preferences", cfg.PreferencesHandler.GetPreferences)
		v1.PATCH("/preferences", cfg.PreferencesHandler.UpdatePreferences)
	}

	// Fallbacks
	r.NoRoute(middleware.NotFound())
	r.NoMethod(middleware.MethodNotAllowed())
}

// SetupWithMiddleware sets up routes with common middleware.
func SetupWithMiddleware(r *gin.Engine, cfg *Config, loggingMw *middleware.LoggingMiddleware, errorMw *middleware.ErrorMiddleware, corsCfg middleware.CORSConfig) {
	r.Use(middleware.NewCORSMiddleware(corsCfg))
	r.Use(loggingMw.RequestID())
	r.Use(loggingMw.Logger())
	r.Use(errorMw.Recovery())
	r.Use(gin.Recovery())

	Setup(r, cfg)
}
