// internal/interfaces/http/handlers/movement.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/domain/movement"
	"github.com/your-org/easystock-backend/internal/domain/product"
	"github.com/your-org/easystock-backend/internal/interfaces/http/middleware"
	"github.com/your-org/easystock-backend/internal/pkg/line"
	"github.com/your-org/easystock-backend/internal/pkg/pdf"
	"gorm.io/gorm"
)

// MovementHandler handles stock movement endpoints
type MovementHandler struct {
	movementService *movement.Service
	productService  *product.Service
	pdfService      *pdf.Service
	lineService     *line.Service
	config          *config.Config
}

// NewMovementHandler creates a new movement handler
func NewMovementHandler(db *gorm.DB, cfg *config.Config, lineService *line.Service) *MovementHandler {
	return &MovementHandler{
		movementService: movement.NewService(db, cfg),
		productService:  product.NewService(db, cfg),
		pdfService:      pdf.NewService(cfg),
		lineService:     lineService,
		config:          cfg,
	}
}

// ReceiveProducts handles POST /receive-products
func (h *MovementHandler) ReceiveProducts(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req movement.ReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	m, err := h.movementService.Receive(&req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if p, err := h.productService.Get(m.ProductID); err == nil {
		h.lineService.NotifyStockIn(p.Code, p.Name, m.Quantity, p.Stock)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Stock received successfully",
		"data":    m,
	})
}

// IssueProducts handles POST /issue-products. The whole batch succeeds or
// none of it does.
func (h *MovementHandler) IssueProducts(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req movement.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	movements, err := h.movementService.IssueBatch(&req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifyIssued(movements)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Stock issued successfully",
		"data":    movements,
	})
}

// notifyIssued sends fire-and-forget LINE alerts for an issued batch
func (h *MovementHandler) notifyIssued(movements []movement.Movement) {
	threshold := h.config.Inventory.LowStockThreshold
	for _, m := range movements {
		p, err := h.productService.Get(m.ProductID)
		if err != nil {
			continue
		}
		h.lineService.NotifyStockOut(p.Code, p.Name, m.Quantity, p.Stock)
		if p.IsOutOfStock() {
			h.lineService.NotifyOutOfStock(p.Code, p.Name)
		} else if p.IsLowStock(threshold) {
			h.lineService.NotifyLowStock(p.Code, p.Name, p.Stock, threshold)
		}
	}
}

// GetHistory handles GET /movement-history
func (h *MovementHandler) GetHistory(c *gin.Context) {
	var req movement.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	history, err := h.movementService.History(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Movement history retrieved successfully",
		"data":    history,
	})
}

// ExportHistory handles GET /movement-history/export — the filtered ledger
// as a PDF report
func (h *MovementHandler) ExportHistory(c *gin.Context) {
	var req movement.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}
	if req.Limit <= 0 {
		req.Limit = 1000
	}

	history, err := h.movementService.History(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	buf, err := h.pdfService.GenerateMovementHistory(history)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("movement_history_%s.pdf", time.Now().In(h.config.Location()).Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
