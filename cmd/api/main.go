package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-discover/internal/config"
	"github.com/windoze95/saltybytes-discover/internal/db"
	"github.com/windoze95/saltybytes-discover/internal/logger"
	"github.com/windoze95/saltybytes-discover/internal/router"
	"github.com/windoze95/saltybytes-discover/internal/spoonacular"
	"go.uber.org/zap"
)

// messagesPath holds the user-facing copy.
const messagesPath = "configs/messages.yaml"

// init is called before the main function.
func init() {
	// Initialize structured logger (dev mode if GIN_MODE != release)
	isDev := os.Getenv("GIN_MODE") != "release"
	logger.Init(isDev)

	// Configure the runtime
	ConfigureRuntime()
}

// Entry point for the API.
func main() {
	defer logger.Sync()

	// Load the config
	var cfg *config.Config
	if c, err := config.LoadConfig(); err != nil {
		logger.Get().Fatal("failed to load config", zap.Error(err))
	} else {
		cfg = c
	}

	// Check that all ENV variables are set
	if err := cfg.CheckConfigEnvFields(); err != nil {
		logger.Get().Fatal("missing required config fields", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Get().Fatal("invalid config", zap.Error(err))
	}

	// Load user-facing messages from YAML
	messages, err := config.LoadMessages(messagesPath)
	if err != nil {
		logger.Get().Fatal("failed to load messages", zap.Error(err))
	}
	cfg.Messages = messages

	// Connect to the database, if one is configured
	database, err := db.New(cfg)
	if err != nil {
		logger.Get().Fatal("failed to connect to database", zap.Error(err))
	}
	if database != nil {
		sqlDB, err := database.DB()
		if err != nil {
			logger.Get().Fatal("failed to get underlying sql.DB", zap.Error(err))
		}
		defer sqlDB.Close()
	} else {
		logger.Get().Info("no database configured, search events will not be recorded")
	}

	provider := spoonacular.NewClient(
		cfg.BaseURL(),
		spoonacular.Credentials{APIKey: cfg.EnvVars.SpoonacularAPIKey},
		cfg.EnvVars.UpstreamTimeout,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create a new gin router
	gin.SetMode(gin.ReleaseMode)
	r := router.SetupRouter(ctx, cfg, provider, database)

	srv := &http.Server{
		Addr:    ":" + cfg.EnvVars.Port,
		Handler: r,
	}

	// Run the server
	go func() {
		logger.Get().Info("starting server", zap.String("port", cfg.EnvVars.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Get().Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Get().Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Get().Error("graceful shutdown failed", zap.Error(err))
	}
}

// ConfigureRuntime sets the number of operating system threads.
func ConfigureRuntime() {
	nuCPU := runtime.NumCPU()
	runtime.GOMAXPROCS(nuCPU)
	logger.Get().Info("runtime configured", zap.Int("cpus", nuCPU))
}
