// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stockpilot/backend-go/internal/api/handlers"
	"github.com/stockpilot/backend-go/internal/api/middleware"
	"github.com/stockpilot/backend-go/internal/service"
)

type Services struct {
	ForecastService *service.ForecastService
	AlertService    *service.AlertService
	IngestService   *service.IngestService
}

type RouterOptions struct {
	AllowedOrigins []string
	UploadDir      string
}

func NewRouter(services *Services, opts RouterOptions) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(opts.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.IngestService != nil {
			ingestHandler := handlers.NewIngestHandler(services.IngestService, opts.UploadDir)
			apiGroup.POST("/sales/upload", ingestHandler.UploadSales)
		}

		if services.ForecastService != nil {
			forecastHandler := handlers.NewForecastHandler(services.ForecastService)
			itemsGroup := apiGroup.Group("/items")
			{
				itemsGroup.GET("", forecastHandler.ListItems)
				itemsGroup.GET("/:sku/sales.csv", forecastHandler.ExportSales)
				itemsGroup.POST("/:sku/forecast", forecastHandler.RunForecast)
				itemsGroup.GET("/:sku/forecast", forecastHandler.GetForecast)
				itemsGroup.GET("/:sku/chart", forecastHandler.GetChart)
			}
		}

		if services.AlertService != nil {
			alertsHandler := handlers.NewAlertsHandler(services.AlertService)
			alertsGroup := apiGroup.Group("/alerts")
			{
				alertsGroup.GET("", alertsHandler.GetAlerts)
				alertsGroup.POST("/notify", alertsHandler.Notify)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
