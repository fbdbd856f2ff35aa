// internal/domain/movement/entity.go
package movement

import (
	"time"
)

// Movement directions
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Movement is one immutable ledger row. Code, name and unit are snapshotted
// at write time so history stays readable after the product is renamed or
// deleted.
type Movement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProductID   uint      `gorm:"not null;index" json:"product_id"`
	Direction   string    `gorm:"not null;size:3;index" json:"direction"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	ProductCode string    `gorm:"not null;size:50;index" json:"product_code"`
	ProductName string    `gorm:"not null;size:255" json:"product_name"`
	Unit        string    `gorm:"not null;size:20" json:"unit"`
	BatchID     string    `gorm:"size:36;index" json:"batch_id,omitempty"`
	Note        string    `gorm:"size:255" json:"note,omitempty"`
	CreatedBy   uint      `gorm:"index" json:"created_by"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName overrides the table name for Movement
func (Movement) TableName() string {
	return "movements"
}
