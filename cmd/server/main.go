// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stockpilot/backend-go/internal/api"
	"github.com/stockpilot/backend-go/internal/cache"
	"github.com/stockpilot/backend-go/internal/config"
	"github.com/stockpilot/backend-go/internal/notify"
	"github.com/stockpilot/backend-go/internal/repository/postgres"
	"github.com/stockpilot/backend-go/internal/service"
	"github.com/stockpilot/backend-go/internal/storage"
	"github.com/stockpilot/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Repositories
	itemRepo := postgres.NewItemRepository(db)
	salesRepo := postgres.NewSalesRepository(db)
	predictionRepo := postgres.NewPredictionRepository(db)

	// Cache falls back to a noop implementation when redis is disabled or
	// unreachable, so the API keeps working without it.
	alertsCache, err := cache.NewAlertsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		alertsCache = cache.NewNoopAlertsCache()
	}

	// Optional upload archive
	var archive storage.ObjectStorage
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3Client(cfg.Storage)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Object storage unavailable, uploads will not be archived")
		} else {
			archive = s3
		}
	}

	notifier := notify.NewNotifier(cfg.SMTP)
	if !notifier.Configured() {
		logger.Log.Info().Msg("SMTP not configured, alert emails disabled")
	}

	// Services
	forecastService := service.NewForecastService(itemRepo, salesRepo, predictionRepo, alertsCache, cfg.Forecast)
	alertService := service.NewAlertService(itemRepo, alertsCache, notifier)
	ingestService := service.NewIngestService(itemRepo, salesRepo, alertsCache, archive)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		ForecastService: forecastService,
		AlertService:    alertService,
		IngestService:   ingestService,
	}, api.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		UploadDir:      cfg.App.UploadDir,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
