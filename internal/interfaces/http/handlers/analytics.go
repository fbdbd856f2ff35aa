// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/domain/analytics"
	"gorm.io/gorm"
)

// AnalyticsHandler handles dashboard and aggregation endpoints
type AnalyticsHandler struct {
	analyticsService *analytics.Service
	config           *config.Config
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(db *gorm.DB, cfg *config.Config) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analytics.NewService(db, cfg),
		config:           cfg,
	}
}

// GetDashboardStats handles GET /dashboard-stats
func (h *AnalyticsHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.analyticsService.GetDashboardStats()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard stats retrieved successfully",
		"data":    stats,
	})
}

// GetEmployeeOverview handles GET /employee-dashboard/overview
func (h *AnalyticsHandler) GetEmployeeOverview(c *gin.Context) {
	overview, err := h.analyticsService.GetEmployeeOverview()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Employee overview retrieved successfully",
		"data":    overview,
	})
}

// GetLowStock handles GET /products/low-stock
func (h *AnalyticsHandler) GetLowStock(c *gin.Context) {
	threshold, _ := strconv.Atoi(c.DefaultQuery("threshold", "0"))

	products, err := h.analyticsService.LowStock(threshold)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Low stock products retrieved successfully",
		"data":    products,
	})
}

// GetOutOfStock handles GET /products/out-of-stock
func (h *AnalyticsHandler) GetOutOfStock(c *gin.Context) {
	products, err := h.analyticsService.OutOfStock()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Out of stock products retrieved successfully",
		"data":    products,
	})
}

// GetBestSellers handles GET /best-sellers/top_products
func (h *AnalyticsHandler) GetBestSellers(c *gin.Context) {
	period := c.DefaultQuery("period", "7days")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	sellers, err := h.analyticsService.BestSellers(period, limit, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Best sellers retrieved successfully",
		"data":    sellers,
	})
}

// GetDailyTotals handles GET /movement-totals
func (h *AnalyticsHandler) GetDailyTotals(c *gin.Context) {
	date := c.DefaultQuery("date", time.Now().In(h.config.Location()).Format("2006-01-02"))

	totals, err := h.analyticsService.DailyMovementTotals(date)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Daily totals retrieved successfully",
		"data":    totals,
	})
}

// GetFinancialSummary handles GET /admin-dashboard/financial
func (h *AnalyticsHandler) GetFinancialSummary(c *gin.Context) {
	summary, err := h.analyticsService.GetFinancialSummary()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Financial summary retrieved successfully",
		"data":    summary,
	})
}

// GetCategoryBreakdown handles GET /admin-dashboard/category_breakdown
func (h *AnalyticsHandler) GetCategoryBreakdown(c *gin.Context) {
	stats, err := h.analyticsService.CategoryBreakdown()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Category breakdown retrieved successfully",
		"data":    stats,
	})
}

// GetTopProductsByValue handles GET /admin-dashboard/top_products
func (h *AnalyticsHandler) GetTopProductsByValue(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	products, err := h.analyticsService.TopProductsByValue(limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Top products retrieved successfully",
		"data":    products,
	})
}
