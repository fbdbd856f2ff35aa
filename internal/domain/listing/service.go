// internal/domain/listing/service.go
package listing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/domain/product"
	"github.com/your-org/easystock-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service handles listing business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new listing service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateRequest represents listing creation data
type CreateRequest struct {
	ProductID uint             `json:"product_id" binding:"required"`
	Title     *string          `json:"title"`
	SalePrice *decimal.Decimal `json:"sale_price"`
	Unit      *string          `json:"unit"`
	Image     *string          `json:"image"`
	Quantity  int              `json:"quantity"`
}

// UpdateRequest represents partial listing update data. Only provided fields
// replace the stored overrides; an explicit empty string clears one.
type UpdateRequest struct {
	Title     *string          `json:"title"`
	SalePrice *decimal.Decimal `json:"sale_price"`
	Unit      *string          `json:"unit"`
	Image     *string          `json:"image"`
	Quantity  *int             `json:"quantity"`
	IsActive  *bool            `json:"is_active"`
}

// List returns resolved listing displays, newest first
func (s *Service) List(activeOnly bool) ([]Display, error) {
	var listings []Listing
	query := s.db.Preload("Product.Category").Order("created_at DESC, id DESC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}

	displays := make([]Display, 0, len(listings))
	for i := range listings {
		if listings[i].Product == nil {
			continue // product soft-deleted from under the listing
		}
		displays = append(displays, ResolveDisplay(&listings[i], listings[i].Product))
	}
	return displays, nil
}

// Get returns a single resolved listing
func (s *Service) Get(id uint) (*Display, error) {
	l, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if l.Product == nil {
		return nil, apperror.NewNotFound("product", l.ProductID)
	}
	d := ResolveDisplay(l, l.Product)
	return &d, nil
}

// Create publishes a product to the storefront. A product can hold only one
// listing; the display quantity may not exceed the product's stock.
func (s *Service) Create(req *CreateRequest) (*Display, error) {
	if req.Quantity < 0 {
		return nil, apperror.NewValidation("quantity must not be negative")
	}
	if req.SalePrice != nil && req.SalePrice.IsNegative() {
		return nil, apperror.NewValidation("sale price must not be negative")
	}
	if req.Unit != nil && *req.Unit != "" && !product.IsValidUnit(*req.Unit) {
		return nil, apperror.NewValidation("invalid unit %q", *req.Unit)
	}

	var p product.Product
	if err := s.db.First(&p, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("product", req.ProductID)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	if req.Quantity > p.Stock {
		return nil, apperror.NewInsufficientStock(p.Code, req.Quantity, p.Stock)
	}

	var existing Listing
	if err := s.db.Where("product_id = ?", req.ProductID).First(&existing).Error; err == nil {
		return nil, apperror.NewValidation("product %s is already listed", p.Code)
	}

	l := Listing{
		ProductID: req.ProductID,
		Title:     req.Title,
		SalePrice: req.SalePrice,
		Unit:      req.Unit,
		Image:     req.Image,
		Quantity:  req.Quantity,
		IsActive:  true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&l).Error; err != nil {
			return fmt.Errorf("failed to create listing: %w", err)
		}
		return tx.Model(&product.Product{}).Where("id = ?", p.ID).Update("on_sale", true).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(l.ID)
}

// Update applies a partial update to a listing. Raising the display quantity
// is re-validated against the product's current stock.
func (s *Service) Update(id uint, req *UpdateRequest) (*Display, error) {
	l, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if l.Product == nil {
		return nil, apperror.NewNotFound("product", l.ProductID)
	}

	updates := make(map[string]interface{})

	if req.Title != nil {
		if *req.Title == "" {
			updates["title"] = nil
		} else {
			updates["title"] = *req.Title
		}
	}
	if req.SalePrice != nil {
		if req.SalePrice.IsNegative() {
			return nil, apperror.NewValidation("sale price must not be negative")
		}
		updates["sale_price"] = *req.SalePrice
	}
	if req.Unit != nil {
		if *req.Unit == "" {
			updates["unit"] = nil
		} else {
			if !product.IsValidUnit(*req.Unit) {
				return nil, apperror.NewValidation("invalid unit %q", *req.Unit)
			}
			updates["unit"] = *req.Unit
		}
	}
	if req.Image != nil {
		if *req.Image == "" {
			updates["image"] = nil
		} else {
			updates["image"] = *req.Image
		}
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, apperror.NewValidation("quantity must not be negative")
		}
		if *req.Quantity > l.Quantity && *req.Quantity > l.Product.Stock {
			return nil, apperror.NewInsufficientStock(l.Product.Code, *req.Quantity, l.Product.Stock)
		}
		updates["quantity"] = *req.Quantity
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(l).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update listing: %w", err)
		}
	}

	return s.Get(id)
}

// Unlist deactivates a listing and clears the product's storefront flag
func (s *Service) Unlist(id uint) error {
	l, err := s.get(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(l).Update("is_active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate listing: %w", err)
		}
		return tx.Model(&product.Product{}).Where("id = ?", l.ProductID).Update("on_sale", false).Error
	})
}

// UnlistByProduct deactivates the listing belonging to a product, if any
func (s *Service) UnlistByProduct(productID uint) error {
	var l Listing
	err := s.db.Where("product_id = ?", productID).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// nothing listed; still clear the flag
		return s.db.Model(&product.Product{}).Where("id = ?", productID).Update("on_sale", false).Error
	}
	if err != nil {
		return fmt.Errorf("failed to retrieve listing: %w", err)
	}
	return s.Unlist(l.ID)
}

// Delete removes the projection entirely. The product keeps its stock; only
// its storefront flag is cleared.
func (s *Service) Delete(id uint) error {
	l, err := s.get(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&Listing{}, l.ID).Error; err != nil {
			return fmt.Errorf("failed to delete listing: %w", err)
		}
		return tx.Model(&product.Product{}).Where("id = ?", l.ProductID).Update("on_sale", false).Error
	})
}

func (s *Service) get(id uint) (*Listing, error) {
	var l Listing
	result := s.db.Preload("Product.Category").First(&l, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("listing", id)
		}
		return nil, fmt.Errorf("failed to retrieve listing: %w", result.Error)
	}
	return &l, nil
}

// ApplyIssue publishes an issued product inside the caller's transaction:
// the listing is created if missing, its quantity bumped by qty, and both
// the listing and the product flagged active. Ran as part of the issue
// transaction so the storefront never shows a half-applied batch.
func ApplyIssue(tx *gorm.DB, p *product.Product, qty int) error {
	var l Listing
	err := tx.Where("product_id = ?", p.ID).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		l = Listing{ProductID: p.ID, Quantity: qty, IsActive: true}
		if err := tx.Create(&l).Error; err != nil {
			return fmt.Errorf("failed to create listing: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to retrieve listing: %w", err)
	} else {
		updates := map[string]interface{}{
			"quantity":  gorm.Expr("quantity + ?", qty),
			"is_active": true,
		}
		if err := tx.Model(&l).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update listing: %w", err)
		}
	}

	return tx.Model(&product.Product{}).Where("id = ?", p.ID).Update("on_sale", true).Error
}
