// internal/interfaces/http/handlers/product.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/domain/listing"
	"github.com/your-org/easystock-backend/internal/domain/movement"
	"github.com/your-org/easystock-backend/internal/domain/product"
	"github.com/your-org/easystock-backend/internal/interfaces/http/middleware"
	"github.com/your-org/easystock-backend/internal/pkg/line"
	"github.com/your-org/easystock-backend/internal/pkg/report"
	"gorm.io/gorm"
)

// ProductHandler handles product endpoints
type ProductHandler struct {
	productService  *product.Service
	listingService  *listing.Service
	movementService *movement.Service
	excelService    *report.ExcelService
	lineService     *line.Service
	config          *config.Config
}

// NewProductHandler creates a new product handler
func NewProductHandler(db *gorm.DB, cfg *config.Config, lineService *line.Service) *ProductHandler {
	return &ProductHandler{
		productService:  product.NewService(db, cfg),
		listingService:  listing.NewService(db, cfg),
		movementService: movement.NewService(db, cfg),
		excelService:    report.NewExcelService(cfg),
		lineService:     lineService,
		config:          cfg,
	}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var req product.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.productService.List(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    response,
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	p, err := h.productService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    p,
	})
}

// CreateProduct handles POST /products. Opening stock, when given, lands in
// the ledger as the product's first "in" row.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req product.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	p, err := h.productService.Create(&req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, err := h.movementService.RecordInitial(p, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"data":    p,
	})
}

// UpdateProduct handles PATCH /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req product.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	p, err := h.productService.Update(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"data":    p,
	})
}

// AdjustStock handles POST /products/:id/adjust-stock. The correction goes
// through the movement service so the ledger stays consistent.
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req movement.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	m, err := h.movementService.Adjust(id, &req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock adjusted successfully",
		"data":    m,
	})
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.listingService.UnlistByProduct(id); err != nil {
		respondError(c, err)
		return
	}
	if err := h.productService.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}

// UnlistProduct handles POST /products/:id/unlist
func (h *ProductHandler) UnlistProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.listingService.UnlistByProduct(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product unlisted successfully",
	})
}

// ExportProducts handles GET /products/export — the catalog as xlsx
func (h *ProductHandler) ExportProducts(c *gin.Context) {
	var req product.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}
	req.Page = 1
	req.Limit = 10000

	response, err := h.productService.List(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	buf, err := h.excelService.ProductStock(response.Products)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := h.excelService.Filename("products")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
