// internal/domain/product/category_service.go
package product

import (
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/easystock-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// CategoryService handles category business logic
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new category service
func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// CategoryCreateRequest represents category creation data
type CategoryCreateRequest struct {
	Name string `json:"name" binding:"required"`
}

// CategoryWithCount is a category plus how many live products it holds
type CategoryWithCount struct {
	Category
	ProductCount int64 `json:"product_count"`
}

// List returns all categories with their live product counts
func (s *CategoryService) List() ([]CategoryWithCount, error) {
	var categories []Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	result := make([]CategoryWithCount, 0, len(categories))
	for _, cat := range categories {
		var count int64
		if err := s.db.Model(&Product{}).Where("category_id = ?", cat.ID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count products: %w", err)
		}
		result = append(result, CategoryWithCount{Category: cat, ProductCount: count})
	}
	return result, nil
}

// Create creates a category, returning the existing row if the name is
// already taken (get-or-create semantics)
func (s *CategoryService) Create(req *CategoryCreateRequest) (*Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.NewValidation("category name must not be blank")
	}
	return getOrCreateCategory(s.db, name)
}

// Get retrieves a category by ID
func (s *CategoryService) Get(id uint) (*Category, error) {
	var cat Category
	if err := s.db.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("category", id)
		}
		return nil, fmt.Errorf("failed to retrieve category: %w", err)
	}
	return &cat, nil
}

// getOrCreateCategory finds a category by name (case-insensitive) or creates
// it. Shared with the product service's create path.
func getOrCreateCategory(tx *gorm.DB, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	var cat Category
	err := tx.Where("LOWER(name) = ?", strings.ToLower(name)).First(&cat).Error
	if err == nil {
		return &cat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}

	cat = Category{Name: name}
	if err := tx.Create(&cat).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &cat, nil
}
