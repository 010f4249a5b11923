// backend-go/internal/api/handlers/forecast_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stockpilot/backend-go/internal/service"
)

type ForecastHandler struct {
	forecastService *service.ForecastService
}

func NewForecastHandler(forecastService *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{forecastService: forecastService}
}

// ListItems returns every item with its latest forecast attached
func (h *ForecastHandler) ListItems(c *gin.Context) {
	items, err := h.forecastService.ListItems(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

type runForecastRequest struct {
	CurrentStock *int `json:"current_stock"`
}

// RunForecast generates and persists a fresh forecast for one SKU. The body
// may carry a current_stock override, applied before the run.
func (h *ForecastHandler) RunForecast(c *gin.Context) {
	sku := strings.ToUpper(strings.TrimSpace(c.Param("sku")))
	if sku == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sku is required"})
		return
	}

	var req runForecastRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	if req.CurrentStock != nil && *req.CurrentStock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current_stock must not be negative"})
		return
	}

	prediction, err := h.forecastService.GenerateForItem(c.Request.Context(), sku, req.CurrentStock)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate forecast"})
		return
	}

	c.JSON(http.StatusOK, prediction)
}

// GetForecast returns the latest stored forecast for a SKU, plus recent
// history when ?limit is set.
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	sku := strings.ToUpper(strings.TrimSpace(c.Param("sku")))
	if sku == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sku is required"})
		return
	}

	latest, err := h.forecastService.Latest(c.Request.Context(), sku)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch forecast"})
		return
	}
	if latest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no forecast found for item"})
		return
	}

	if c.Query("limit") == "" {
		c.JSON(http.StatusOK, latest)
		return
	}

	limit := parsePositiveIntWithDefault(c.Query("limit"), 10)
	history, err := h.forecastService.History(c.Request.Context(), sku, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch forecast history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"latest": latest, "history": history})
}

// GetChart returns the actual/predicted/threshold chart series for a SKU
func (h *ForecastHandler) GetChart(c *gin.Context) {
	sku := strings.ToUpper(strings.TrimSpace(c.Param("sku")))
	if sku == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sku is required"})
		return
	}

	windowDays := 0
	if raw := c.Query("window_days"); raw != "" {
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window_days must be a positive integer"})
			return
		}
		windowDays = v
	}

	points, err := h.forecastService.Chart(c.Request.Context(), sku, windowDays)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build chart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sku": sku, "points": points})
}

// ExportSales streams a SKU's recorded daily sales as a CSV download
func (h *ForecastHandler) ExportSales(c *gin.Context) {
	sku := strings.ToUpper(strings.TrimSpace(c.Param("sku")))
	if sku == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sku is required"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_sales.csv", sku))

	if err := h.forecastService.ExportSalesCSV(c.Request.Context(), sku, c.Writer); err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export sales"})
		return
	}
}

func parsePositiveIntWithDefault(value string, fallback int) int {
	if fallback <= 0 {
		fallback = 10
	}
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}
