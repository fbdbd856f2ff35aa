// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Valid stock-keeping units
var ValidUnits = []string{"piece", "bottle", "box", "pack", "bag", "can", "case"}

// Product represents a stocked item. Code is unique among live rows only; a
// deleted product frees its code for reuse (partial unique index, see
// migration.CreateIndexes).
type Product struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Code         string          `gorm:"not null;size:50;index" json:"code"`
	Name         string          `gorm:"not null;size:255" json:"name"`
	Unit         string          `gorm:"not null;size:20;default:'piece'" json:"unit"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost_price"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"selling_price"`
	Stock        int             `gorm:"not null;default:0" json:"stock"`
	InitialStock int             `gorm:"not null;default:0" json:"initial_stock"`
	CategoryID   *uint           `gorm:"index" json:"category_id"`
	Image        string          `gorm:"size:500" json:"image"`
	OnSale       bool            `gorm:"default:false" json:"on_sale"`
	CreatedBy    uint            `gorm:"index" json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
}

// Category represents a product category
type Category struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:100;uniqueIndex" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for Product
func (Product) TableName() string {
	return "products"
}

// TableName overrides the table name for Category
func (Category) TableName() string {
	return "categories"
}

// IsValidUnit reports whether unit is one of the accepted stock-keeping units
func IsValidUnit(unit string) bool {
	for _, u := range ValidUnits {
		if u == unit {
			return true
		}
	}
	return false
}

// ProfitPerUnit returns selling price minus cost price
func (p *Product) ProfitPerUnit() decimal.Decimal {
	return p.SellingPrice.Sub(p.CostPrice)
}

// IsOutOfStock reports whether the product has no stock left
func (p *Product) IsOutOfStock() bool {
	return p.Stock <= 0
}

// IsLowStock reports whether the stock is at or below the given threshold
// while not empty
func (p *Product) IsLowStock(threshold int) bool {
	return p.Stock > 0 && p.Stock <= threshold
}
