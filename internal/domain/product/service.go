// internal/domain/product/service.go
package product

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service handles product business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ListRequest represents product list query parameters
type ListRequest struct {
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=50"`
	Search     string `form:"search"`
	CategoryID uint   `form:"category_id"`
	Category   string `form:"category"`
	ShowEmpty  *bool  `form:"show_empty"`
	OnSale     *bool  `form:"on_sale"`
}

// CreateRequest represents product creation data
type CreateRequest struct {
	Code         string          `json:"code"`
	Name         string          `json:"name" binding:"required"`
	Unit         string          `json:"unit"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	InitialStock int             `json:"initial_stock"`
	Category     string          `json:"category"`
	CategoryID   *uint           `json:"category_id"`
	Image        string          `json:"image"`
}

// UpdateRequest represents partial product update data. Stock is absent on
// purpose: stock only moves through the movement ledger.
type UpdateRequest struct {
	Code         *string          `json:"code"`
	Name         *string          `json:"name"`
	Unit         *string          `json:"unit"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
	Category     *string          `json:"category"`
	CategoryID   *uint            `json:"category_id"`
	Image        *string          `json:"image"`
}

// ListResponse represents product list response with pagination
type ListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// List retrieves products with filtering and pagination, newest first
func (s *Service) List(req *ListRequest) (*ListResponse, error) {
	var products []Product
	var total int64

	query := s.db.Model(&Product{}).Preload("Category")

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", search, search)
	}

	if req.CategoryID > 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	} else if req.Category != "" {
		query = query.Where("category_id IN (?)",
			s.db.Model(&Category{}).Select("id").Where("LOWER(name) = ?", strings.ToLower(req.Category)))
	}

	if req.ShowEmpty != nil && !*req.ShowEmpty {
		query = query.Where("stock > 0")
	}

	if req.OnSale != nil {
		query = query.Where("on_sale = ?", *req.OnSale)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 50
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ListResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// Get retrieves a single product by ID
func (s *Service) Get(id uint) (*Product, error) {
	var p Product
	result := s.db.Preload("Category").First(&p, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("product", id)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}
	return &p, nil
}

// GetByCode retrieves a live product by code
func (s *Service) GetByCode(code string) (*Product, error) {
	var p Product
	result := s.db.Preload("Category").Where("code = ?", code).First(&p)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("product", code)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}
	return &p, nil
}

// Create creates a new product. A blank code is synthesized; prices must be
// non-negative (zero is a legal price); a named category is created on first
// use.
func (s *Service) Create(req *CreateRequest, createdBy uint) (*Product, error) {
	if req.CostPrice.IsNegative() || req.SellingPrice.IsNegative() {
		return nil, apperror.NewValidation("prices must not be negative")
	}
	if req.InitialStock < 0 {
		return nil, apperror.NewValidation("initial stock must not be negative")
	}

	unit := req.Unit
	if unit == "" {
		unit = "piece"
	}
	if !IsValidUnit(unit) {
		return nil, apperror.NewValidation("invalid unit %q", unit)
	}

	var p Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		code := strings.TrimSpace(req.Code)
		if code == "" {
			code = s.generateCode(tx)
		} else if taken, err := s.codeTaken(tx, code, 0); err != nil {
			return err
		} else if taken {
			return apperror.NewDuplicateCode(code)
		}

		categoryID := req.CategoryID
		if categoryID == nil && req.Category != "" {
			cat, err := getOrCreateCategory(tx, req.Category)
			if err != nil {
				return err
			}
			categoryID = &cat.ID
		}

		p = Product{
			Code:         code,
			Name:         req.Name,
			Unit:         unit,
			CostPrice:    req.CostPrice,
			SellingPrice: req.SellingPrice,
			Stock:        req.InitialStock,
			InitialStock: req.InitialStock,
			CategoryID:   categoryID,
			Image:        req.Image,
			CreatedBy:    createdBy,
		}
		if err := tx.Create(&p).Error; err != nil {
			if isUniqueViolation(err) {
				return apperror.NewDuplicateCode(code)
			}
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(p.ID)
}

// Update applies a partial update to a product
func (s *Service) Update(id uint, req *UpdateRequest) (*Product, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		if code == "" {
			return nil, apperror.NewValidation("code must not be blank")
		}
		if taken, err := s.codeTaken(s.db, code, id); err != nil {
			return nil, err
		} else if taken {
			return nil, apperror.NewDuplicateCode(code)
		}
		updates["code"] = code
	}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperror.NewValidation("name must not be blank")
		}
		updates["name"] = *req.Name
	}
	if req.Unit != nil {
		if !IsValidUnit(*req.Unit) {
			return nil, apperror.NewValidation("invalid unit %q", *req.Unit)
		}
		updates["unit"] = *req.Unit
	}
	if req.CostPrice != nil {
		if req.CostPrice.IsNegative() {
			return nil, apperror.NewValidation("cost price must not be negative")
		}
		updates["cost_price"] = *req.CostPrice
	}
	if req.SellingPrice != nil {
		if req.SellingPrice.IsNegative() {
			return nil, apperror.NewValidation("selling price must not be negative")
		}
		updates["selling_price"] = *req.SellingPrice
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	} else if req.Category != nil {
		if *req.Category == "" {
			updates["category_id"] = nil
		} else {
			cat, err := getOrCreateCategory(s.db, *req.Category)
			if err != nil {
				return nil, err
			}
			updates["category_id"] = cat.ID
		}
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}

	if len(updates) > 0 {
		if err := s.db.Model(p).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return s.Get(id)
}

// Delete soft-deletes a product. Ledger rows keep their snapshots, so history
// stays readable after the row is gone.
func (s *Service) Delete(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFound("product", id)
	}
	return nil
}

// SetOnSale flips the storefront flag
func (s *Service) SetOnSale(id uint, onSale bool) error {
	result := s.db.Model(&Product{}).Where("id = ?", id).Update("on_sale", onSale)
	if result.Error != nil {
		return fmt.Errorf("failed to update on_sale: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFound("product", id)
	}
	return nil
}

// generateCode synthesizes a product code: "A" plus the tail of the current
// unix-millisecond clock, widened until it is free.
func (s *Service) generateCode(tx *gorm.DB) string {
	ms := time.Now().UnixMilli()
	code := fmt.Sprintf("A%03d", ms%1000)
	if taken, _ := s.codeTaken(tx, code, 0); !taken {
		return code
	}
	return fmt.Sprintf("A%d", ms%1000000)
}

// codeTaken reports whether another live product already holds code
func (s *Service) codeTaken(tx *gorm.DB, code string, excludeID uint) (bool, error) {
	var count int64
	query := tx.Model(&Product{}).Where("code = ?", code)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check code: %w", err)
	}
	return count > 0, nil
}

// isUniqueViolation matches the database's unique-constraint error text so
// the racing creator also gets a DuplicateCode error.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique")
}
