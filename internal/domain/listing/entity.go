// internal/domain/listing/entity.go
package listing

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/easystock-backend/internal/domain/product"
)

// Listing is the storefront projection of a product. Every override field is
// nullable: nil means "fall back to the product". Quantity is a display
// counter, not authoritative stock.
type Listing struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	ProductID uint             `gorm:"not null;uniqueIndex" json:"product_id"`
	Title     *string          `gorm:"size:255" json:"title"`
	SalePrice *decimal.Decimal `gorm:"type:decimal(12,2)" json:"sale_price"`
	Unit      *string          `gorm:"size:20" json:"unit"`
	Image     *string          `gorm:"size:500" json:"image"`
	Quantity  int              `gorm:"not null;default:0" json:"quantity"`
	IsActive  bool             `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	// Relationships
	Product *product.Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"product,omitempty"`
}

// TableName overrides the table name for Listing
func (Listing) TableName() string {
	return "listings"
}

// Display is the resolved storefront view of a listing
type Display struct {
	ID           uint            `json:"id"`
	ProductID    uint            `json:"product_id"`
	Code         string          `json:"code"`
	Title        string          `json:"title"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Profit       decimal.Decimal `json:"profit"`
	Unit         string          `json:"unit"`
	Image        string          `json:"image"`
	Quantity     int             `json:"quantity"`
	Stock        int             `json:"stock"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ResolveDisplay merges the listing's overrides over the product's fields.
// Pure: no database access.
func ResolveDisplay(l *Listing, p *product.Product) Display {
	d := Display{
		ID:           l.ID,
		ProductID:    p.ID,
		Code:         p.Code,
		Title:        p.Name,
		SalePrice:    p.SellingPrice,
		CostPrice:    p.CostPrice,
		SellingPrice: p.SellingPrice,
		Unit:         p.Unit,
		Image:        p.Image,
		Quantity:     l.Quantity,
		Stock:        p.Stock,
		IsActive:     l.IsActive,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
	if l.Title != nil && *l.Title != "" {
		d.Title = *l.Title
	}
	if l.SalePrice != nil {
		d.SalePrice = *l.SalePrice
	}
	if l.Unit != nil && *l.Unit != "" {
		d.Unit = *l.Unit
	}
	if l.Image != nil && *l.Image != "" {
		d.Image = *l.Image
	}
	d.Profit = d.SalePrice.Sub(p.CostPrice)
	return d
}
