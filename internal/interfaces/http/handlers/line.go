// internal/interfaces/http/handlers/line.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/domain/analytics"
	"github.com/your-org/easystock-backend/internal/interfaces/http/middleware"
	"github.com/your-org/easystock-backend/internal/pkg/line"
	"gorm.io/gorm"
)

// LineHandler handles LINE messaging endpoints
type LineHandler struct {
	lineService      *line.Service
	analyticsService *analytics.Service
	config           *config.Config
}

// NewLineHandler creates a new LINE handler
func NewLineHandler(db *gorm.DB, cfg *config.Config, lineService *line.Service) *LineHandler {
	return &LineHandler{
		lineService:      lineService,
		analyticsService: analytics.NewService(db, cfg),
		config:           cfg,
	}
}

// TestMessage handles POST /line/test — broadcasts a test message
func (h *LineHandler) TestMessage(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	if req.Text == "" {
		req.Text = "EasyStock test message"
	}

	if err := h.lineService.Broadcast(c.Request.Context(), req.Text); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Test message sent",
	})
}

// SendStockAlerts handles POST /line/send-alerts — broadcasts the current
// low-stock and out-of-stock situation on demand
func (h *LineHandler) SendStockAlerts(c *gin.Context) {
	threshold := h.config.Inventory.LowStockThreshold

	lowStock, err := h.analyticsService.LowStock(threshold)
	if err != nil {
		respondError(c, err)
		return
	}
	outOfStock, err := h.analyticsService.OutOfStock()
	if err != nil {
		respondError(c, err)
		return
	}

	for _, p := range lowStock {
		h.lineService.NotifyLowStock(p.Code, p.Name, p.Stock, threshold)
	}
	for _, p := range outOfStock {
		h.lineService.NotifyOutOfStock(p.Code, p.Name)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock alerts queued",
		"data": gin.H{
			"low_stock":    len(lowStock),
			"out_of_stock": len(outOfStock),
		},
	})
}

// GetConnectCode handles GET /line/connect-code — issues a short-lived code
// for linking a LINE chat to the caller's account
func (h *LineHandler) GetConnectCode(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	code, expiry, err := h.lineService.GenerateConnectCode(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Connect code generated",
		"data": gin.H{
			"code":       code,
			"expires_in": int(expiry.Seconds()),
		},
	})
}
