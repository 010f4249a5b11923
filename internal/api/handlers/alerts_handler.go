// backend-go/internal/api/handlers/alerts_handler.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stockpilot/backend-go/internal/service"
)

type AlertsHandler struct {
	alertService *service.AlertService
}

func NewAlertsHandler(alertService *service.AlertService) *AlertsHandler {
	return &AlertsHandler{alertService: alertService}
}

// GetAlerts returns items inside the restock window, most urgent first
func (h *AlertsHandler) GetAlerts(c *gin.Context) {
	alerts, err := h.alertService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch alerts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

type notifyRequest struct {
	Emails []string `json:"emails"`
}

// Notify emails the current critical/low alerts to the given recipients
func (h *AlertsHandler) Notify(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	emails := make([]string, 0, len(req.Emails))
	for _, email := range req.Emails {
		trimmed := strings.TrimSpace(email)
		if trimmed == "" || !strings.Contains(trimmed, "@") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address: " + email})
			return
		}
		emails = append(emails, trimmed)
	}
	if len(emails) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one email is required"})
		return
	}

	notified, err := h.alertService.Notify(c.Request.Context(), emails)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send alert notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notified": len(notified), "alerts": notified})
}
