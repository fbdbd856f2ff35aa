// internal/domain/calendar/entity.go
package calendar

import (
	"time"

	"gorm.io/gorm"
)

// Festival is a recurring sales event worth preparing stock for
type Festival struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	StartDate   time.Time      `gorm:"not null;index" json:"start_date"`
	EndDate     time.Time      `gorm:"not null" json:"end_date"`
	CreatedBy   uint           `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for Festival
func (Festival) TableName() string {
	return "festivals"
}

// DurationDays returns the festival length in whole days, inclusive
func (f *Festival) DurationDays() int {
	return int(f.EndDate.Sub(f.StartDate).Hours()/24) + 1
}

// DaysUntil returns whole days until the festival starts, negative once it
// has begun
func (f *Festival) DaysUntil(now time.Time) int {
	return int(f.StartDate.Sub(now).Hours() / 24)
}

// FestivalBestSeller records how a product sold during a festival, year over
// year. Product name and category are stored as text so records survive
// product deletion.
type FestivalBestSeller struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FestivalID  uint      `gorm:"not null;index" json:"festival_id"`
	ProductID   *uint     `gorm:"index" json:"product_id"`
	ProductName string    `gorm:"not null;size:255" json:"product_name"`
	Category    string    `gorm:"size:100" json:"category"`
	Rank        int       `gorm:"not null;default:0" json:"rank"`
	LastYear    int       `gorm:"not null;default:0" json:"last_year"`
	ThisYear    int       `gorm:"not null;default:0" json:"this_year"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName overrides the table name for FestivalBestSeller
func (FestivalBestSeller) TableName() string {
	return "festival_best_sellers"
}

// PercentageChange returns the year-over-year change in percent. Zero when
// there is no last-year baseline.
func (b *FestivalBestSeller) PercentageChange() float64 {
	if b.LastYear == 0 {
		return 0
	}
	return float64(b.ThisYear-b.LastYear) / float64(b.LastYear) * 100
}

// CustomEvent is a staff calendar entry. Shared events are visible to
// everyone; private ones only to their creator.
type CustomEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null;size:255" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	EventDate   time.Time      `gorm:"not null;index" json:"event_date"`
	IsShared    bool           `gorm:"default:false" json:"is_shared"`
	CreatedBy   uint           `gorm:"index" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for CustomEvent
func (CustomEvent) TableName() string {
	return "custom_events"
}
