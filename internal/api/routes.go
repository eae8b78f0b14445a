package api

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/statmill/weekcast/internal/api/handlers"
	"github.com/statmill/weekcast/internal/cache"
	"github.com/statmill/weekcast/internal/config"
	"github.com/statmill/weekcast/internal/database"
	"github.com/statmill/weekcast/internal/middleware"
	"github.com/statmill/weekcast/internal/services"
	"github.com/statmill/weekcast/internal/telemetry"
)

// SetupRoutes configures all HTTP routes for the weekcast API.
//
// Health probes live at the root so load balancers can reach them without
// the /api/v1 prefix. Everything else is versioned under /api/v1; read
// endpoints are public, series creation requires a valid token, and the
// admin group additionally requires the admin role.
func SetupRoutes(
	router *gin.Engine,
	db *database.PostgresDB,
	redis *database.RedisClient,
	forecastService *services.ForecastService,
	digestService *services.DigestService,
	generatorService *services.GeneratorService,
	statsService *services.SystemStatsService,
	forecastCache *cache.RedisForecastCache,
	cfg *config.Config,
) {
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	authMiddleware := middleware.NewAuthMiddleware(cfg.Security.JWTSecret)

	healthHandler := handlers.NewHealthHandler(db, redis, telemetry.ServiceVersion)
	seriesHandler := handlers.NewSeriesHandler(forecastService)
	forecastHandler := handlers.NewForecastHandler(forecastService)
	authHandler := handlers.NewAuthHandler(authMiddleware, cfg.Security)
	adminHandler := handlers.NewAdminHandler(digestService, generatorService, forecastCache)
	systemHandler := handlers.NewSystemHandler(statsService)

	// Health endpoints outside the versioned prefix.
	router.GET("/health", healthHandler.HealthCheck)
	router.HEAD("/health", healthHandler.HealthCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	v1 := router.Group("/api/v1")
	v1.Use(otelgin.Middleware(telemetry.ServiceName))
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}

		series := v1.Group("/series")
		{
			series.GET("", seriesHandler.ListSeries)
			series.GET("/:slug", seriesHandler.GetSeries)
			series.GET("/:slug/forecast", forecastHandler.GetForecast)
			series.GET("/:slug/evaluation", forecastHandler.GetEvaluation)
			series.POST("", authMiddleware.RequireAuth(), seriesHandler.CreateSeries)
		}

		system := v1.Group("/system")
		{
			system.GET("/stats", systemHandler.GetStats)
		}

		admin := v1.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole("admin"))
		{
			admin.POST("/digest", adminHandler.TriggerDigest)
			admin.GET("/digest/preview", adminHandler.PreviewDigest)
			admin.POST("/reseed", adminHandler.Reseed)
			admin.POST("/cache/clear", adminHandler.ClearCache)
		}
	}
}
