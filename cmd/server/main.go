package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/statmill/weekcast/internal/api"
	"github.com/statmill/weekcast/internal/cache"
	"github.com/statmill/weekcast/internal/config"
	"github.com/statmill/weekcast/internal/database"
	"github.com/statmill/weekcast/internal/logging"
	"github.com/statmill/weekcast/internal/services"
	"github.com/statmill/weekcast/internal/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.ConfigureLogrus(cfg.LogLevel)
	logger := logrus.StandardLogger()

	appLogger := logging.NewStandardOTLPLogger(logging.OTLPConfig{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Telemetry.ServiceVersion,
		Environment:    cfg.Environment,
		LogLevel:       cfg.Telemetry.LogLevel,
	})

	ctx := context.Background()

	// Initialize tracing
	provider, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Telemetry.ServiceVersion,
		Environment:    cfg.Environment,
	})
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Warn("Telemetry shutdown failed")
		}
	}()
	defer func() {
		if err := appLogger.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Warn("Logger shutdown failed")
		}
	}()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	repo := database.NewObservationRepository(database.NewTracedPool(db.Pool))
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	forecastCache := cache.NewRedisForecastCache(redis.Client, cfg.Forecast.CacheTTLDuration())

	// Wire services
	overlayService := services.NewOverlayService(logger)
	forecastService := services.NewForecastService(repo, forecastCache, overlayService, cfg.Forecast, logger)
	digestService := services.NewDigestService(repo, cfg.Telegram, cfg.Forecast)
	generatorService := services.NewGeneratorService(repo, cfg.Generator, logger)
	statsService := services.NewSystemStatsService(repo, appLogger.WithComponent("system"))

	// Seed demo series into an empty database
	if cfg.Generator.Enabled {
		if err := generatorService.SeedDefaults(ctx); err != nil {
			logger.WithError(err).Warn("Failed to seed default series")
		}
	}

	// Start the weekly digest scheduler
	digestService.Start(ctx)
	defer digestService.Stop()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	api.SetupRoutes(router, db, redis, forecastService, digestService, generatorService, statsService, forecastCache, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		appLogger.LogStartup(telemetry.ServiceName, telemetry.ServiceVersion, cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.LogShutdown(telemetry.ServiceName, "signal received")

	// Give outstanding requests a deadline for completion
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
