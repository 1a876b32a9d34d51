package router

import (
	"context"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-discover/internal/browse"
	"github.com/windoze95/saltybytes-discover/internal/config"
	"github.com/windoze95/saltybytes-discover/internal/handlers"
	"github.com/windoze95/saltybytes-discover/internal/logger"
	"github.com/windoze95/saltybytes-discover/internal/middleware"
	"github.com/windoze95/saltybytes-discover/internal/repository"
	"github.com/windoze95/saltybytes-discover/internal/service"
	"github.com/windoze95/saltybytes-discover/internal/spoonacular"
	"github.com/windoze95/saltybytes-discover/internal/ws"
	"gorm.io/gorm"
)

const (
	limiterCleanupInterval = time.Minute
	limiterExpiration      = 3 * time.Minute
)

// SetupRouter sets up the Gin router. The session sweeper and the limiter
// cleanup stop when ctx is done. A nil database disables search-event
// recording.
func SetupRouter(ctx context.Context, cfg *config.Config, provider spoonacular.RecipeProvider, database *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(corsConfig(cfg.EnvVars.AllowedOrigins)))

	// Add request ID middleware for request correlation
	r.Use(logger.RequestIDMiddleware())
	r.Use(logger.AccessLogMiddleware())

	// Ping route for testing
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Search-event recording
	var eventRepo repository.SearchEventRepo = repository.NoopSearchEventRepository{}
	if database != nil {
		eventRepo = repository.NewSearchEventRepository(database)
	}
	eventService := service.NewSearchEventService(cfg, eventRepo)
	eventHandler := handlers.NewSearchEventHandler(eventService)

	// Sessions and their live view stream
	hub := ws.NewHub()
	go hub.Run()
	sessionService := service.NewSessionService(cfg, provider, eventService)
	sessionService.OnViewChange(func(sessionID string, v browse.View) {
		hub.Publish(sessionID, ws.MsgTypeView, v)
	})
	sessionService.OnEnd(hub.End)
	go sessionService.RunSweeper(ctx, sweepInterval(cfg.EnvVars.SessionTTL))

	sessionHandler := handlers.NewSessionHandler(sessionService)
	similarHandler := handlers.NewSimilarHandler(sessionService)
	streamHandler := ws.NewSessionHandler(hub, cfg, sessionService)

	recipeService := service.NewRecipeService(cfg, provider)
	recipeHandler := handlers.NewRecipeHandler(recipeService)

	api := r.Group("/v1")
	api.Use(middleware.RateLimitByIP(ctx, cfg.EnvVars.RateLimitRPS, limiterCleanupInterval, limiterExpiration))
	if cfg.EnvVars.IDHeader != "" {
		api.Use(middleware.CheckIDHeader(cfg.EnvVars.IDHeader))
	}

	// Routes that don't require a session token
	{
		// Start a browsing session for one search screen
		api.POST("/sessions", sessionHandler.CreateSession)
		// Get a single recipe's details
		api.GET("/recipes/:recipe_id", recipeHandler.GetRecipeDetail)
		// Recorded searches per mode
		api.GET("/search-events/stats", eventHandler.GetStats)
		// Websocket view stream (authenticated via query param token)
		api.GET("/ws/sessions/:session_id", streamHandler.HandleSessionStream)
	}

	// Routes bound to one session by its token
	sessions := api.Group("/sessions/:session_id")
	{
		sessions.Use(middleware.VerifySessionToken(cfg), middleware.AttachSessionToContext(sessionService))

		sessions.GET("", sessionHandler.GetView)
		sessions.POST("/search", sessionHandler.SubmitQuery)
		sessions.PUT("/page", sessionHandler.GoToPage)
		sessions.POST("/reset", sessionHandler.ResetSession)
		sessions.GET("/rows", sessionHandler.GetRows)
		sessions.DELETE("", sessionHandler.DeleteSession)

		// Similar recipes modal of one recipe
		sessions.POST("/similar/:recipe_id/open", similarHandler.OpenSimilar)
		sessions.POST("/similar/:recipe_id/close", similarHandler.CloseSimilar)
		sessions.POST("/similar/:recipe_id/select/:selected_id", similarHandler.SelectSimilar)
		sessions.DELETE("/similar/:recipe_id", similarHandler.UnmountSimilar)
	}

	return r
}

// corsConfig allows the configured origins, or only localhost when none
// are configured.
func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) > 0 {
		c.AllowOrigins = origins
	} else {
		c.AllowOriginFunc = func(origin string) bool {
			return strings.HasPrefix(origin, "http://localhost:") || origin == "http://localhost"
		}
	}
	c.AddAllowHeaders("Authorization", "X-Request-ID", middleware.IDHeaderName)
	c.AddExposeHeaders("X-Request-ID", "Retry-After")
	return c
}

// sweepInterval checks for expired sessions a few times per TTL.
func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}
