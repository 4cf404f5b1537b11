// Package main is the entry point for the StreamChat service.
// @title StreamChat Service API
// @version 1.0
// @description Web chat backend that proxies conversations to OpenRouter and streams responses over SSE with token and cost tracking
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/streamchat/chat-service

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token authentication
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/streamchat/chat-service/docs"
	"github.com/streamchat/chat-service/internal/api/handlers"
	"github.com/streamchat/chat-service/internal/api/middleware"
	"github.com/streamchat/chat-service/internal/api/routes"
	"github.com/streamchat/chat-service/internal/config"
	"github.com/streamchat/chat-service/internal/core/cache"
	"github.com/streamchat/chat-service/internal/core/docdb"
	rediscache "github.com/streamchat/chat-service/internal/infrastructure/cache/redis"
	"github.com/streamchat/chat-service/internal/infrastructure/docdb/mongodb"
	"github.com/streamchat/chat-service/internal/services/chat"
	"github.com/streamchat/chat-service/internal/services/identity"
	"github.com/streamchat/chat-service/internal/services/provider/openrouter"
	"github.com/streamchat/chat-service/internal/services/ratelimit"
	"github.com/streamchat/chat-service/internal/services/tokens"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg.Log)

	ctx := context.Background()

	// Initialize cache client using factory pattern
	cacheClient, err := createCacheClient(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize cache client")
	}
	defer cacheClient.Close()

	// Initialize document db client using factory pattern
	docDBClient, err := createDocDBClient(ctx, cfg.DocDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize document db client")
	}
	defer docDBClient.Close(ctx)

	// Ensure database indexes
	if err := docDBClient.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure indexes")
	}

	// Initialize upstream provider client
	providerClient, err := openrouter.NewClient(&openrouter.Config{
		BaseURL:    cfg.OpenRouter.BaseURL,
		APIKey:     cfg.OpenRouter.APIKey,
		Referer:    cfg.OpenRouter.Referer,
		Title:      cfg.OpenRouter.Title,
		HTTPClient: &http.Client{Timeout: cfg.OpenRouter.Timeout},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider client")
	}
	defer providerClient.Close()

	// Initialize chat service
	chatService, err := chat.NewService(&chat.Config{
		DocDB:               docDBClient,
		Provider:            providerClient,
		Estimator:           tokens.NewEstimator(),
		StreamTimeout:       cfg.Stream.Timeout,
		PersistOnDisconnect: cfg.Stream.PersistOnDisconnect,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize chat service")
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Setup router
	router, err := setupRouter(cfg, cacheClient, docDBClient, chatService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup router")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("address", cfg.Server.Address()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// setupLogging configures the global zerolog logger.
func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// createCacheClient creates a cache client based on the configuration.
func createCacheClient(cfg config.CacheConfig) (cache.Cache, error) {
	cacheType := cache.Type(cfg.Type)

	switch cacheType {
	case cache.TypeRedis:
		return rediscache.NewCache(rediscache.Config{
			Host:       cfg.Host,
			Port:       cfg.Port,
			Password:   cfg.Password,
			DB:         cfg.DB,
			DefaultTTL: cfg.TTL,
		})
	default:
		log.Fatal().Str("type", cfg.Type).Msg("unsupported cache type")
		return nil, nil
	}
}

// createDocDBClient creates a document database client based on the configuration.
func createDocDBClient(ctx context.Context, cfg config.DocDBConfig) (docdb.Client, error) {
	docDBType := docdb.Type(cfg.Type)

	switch docDBType {
	case docdb.TypeMongoDB, docdb.TypeFirestore:
		// Firestore deployments front MongoDB-compatible endpoints, so the
		// same driver serves both.
		return mongodb.NewClient(ctx, &mongodb.ClientConfig{
			URI:          cfg.URI,
			DatabaseName: cfg.Database,
		})
	default:
		log.Fatal().Str("type", cfg.Type).Msg("unsupported docdb type")
		return nil, nil
	}
}

// setupRouter creates and configures the Gin router.
func setupRouter(cfg *config.Config, cacheClient cache.Cache, docDBClient docdb.Client, chatService *chat.Service) (*gin.Engine, error) {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	// Create middleware
	loggingMw := middleware.NewLoggingMiddleware()
	errorMw := middleware.NewErrorMiddleware()

	identityClient, err := identity.NewClient(&identity.ClientConfig{
		BaseURL: cfg.Identity.URL,
		Timeout: cfg.Identity.Timeout,
	})
	if err != nil {
		return nil, err
	}
	authMw := middleware.NewAuthMiddleware(identityClient)

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		redisCache, ok := cacheClient.(*rediscache.Cache)
		if !ok {
			log.Warn().Msg("rate limiting requires a redis cache, disabling")
		} else {
			limiter, err = ratelimit.NewLimiter(&ratelimit.Config{
				Client:      redisCache.Client(),
				MaxRequests: cfg.RateLimit.MaxRequests,
				Window:      cfg.RateLimit.Window,
			})
			if err != nil {
				return nil, err
			}
		}
	}
	rateLimitMw := middleware.NewRateLimitMiddleware(limiter)

	// Create handlers
	healthHandler := handlers.NewHealthHandler(cacheClient, docDBClient)
	threadsHandler := handlers.NewThreadsHandler(docDBClient)
	messagesHandler := handlers.NewMessagesHandler(chatService)
	modelsHandler := handlers.NewModelsHandler(cacheClient)
	preferencesHandler := handlers.NewPreferencesHandler(docDBClient)

	// Setup routes
	routesCfg := &routes.Config{
		HealthHandler:       healthHandler,
		ThreadsHandler:      threadsHandler,
		MessagesHandler:     messagesHandler,
		ModelsHandler:       modelsHandler,
		PreferencesHandler:  preferencesHandler,
		AuthMiddleware:      authMw,
		RateLimitMiddleware: rateLimitMw,
	}

	routes.SetupWithMiddleware(router, routesCfg, loggingMw, errorMw, middleware.DefaultCORSConfig())

	return router, nil
}
