// internal/domain/analytics/service.go
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/domain/movement"
	"github.com/your-org/easystock-backend/internal/domain/product"
	"github.com/your-org/easystock-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service computes read-only aggregates over products and the movement
// ledger. Every method is a pure read: empty data yields zero results, never
// errors.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new analytics service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// BestSeller is one row of the issue-ranked product list
type BestSeller struct {
	ProductID   uint   `json:"product_id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	TotalIssued int64  `json:"total_issued"`
	Stock       int    `json:"stock"`
}

// DailyTotals summarizes ledger activity for one calendar day
type DailyTotals struct {
	Date     string `json:"date"`
	InTotal  int64  `json:"in_total"`
	OutTotal int64  `json:"out_total"`
	InCount  int64  `json:"in_count"`
	OutCount int64  `json:"out_count"`
}

// CategoryStat is per-category product and stock totals
type CategoryStat struct {
	CategoryID   *uint           `json:"category_id"`
	CategoryName string          `json:"category_name"`
	ProductCount int64           `json:"product_count"`
	TotalStock   int64           `json:"total_stock"`
	StockValue   decimal.Decimal `json:"stock_value"`
}

// FinancialSummary values the current inventory at cost and at sale price
type FinancialSummary struct {
	InventoryValue decimal.Decimal `json:"inventory_value"`
	SellingValue   decimal.Decimal `json:"selling_value"`
	PotentialGain  decimal.Decimal `json:"potential_gain"`
	ProfitMargin   decimal.Decimal `json:"profit_margin"` // percent
	ProductCount   int64           `json:"product_count"`
	TotalStock     int64           `json:"total_stock"`
}

// DashboardStats is the composite payload for the main dashboard
type DashboardStats struct {
	TotalProducts       int64                    `json:"total_products"`
	LowStockCount       int64                    `json:"low_stock_count"`
	OutOfStockCount     int64                    `json:"out_of_stock_count"`
	InToday             int64                    `json:"in_today"`
	OutToday            int64                    `json:"out_today"`
	TotalInventoryValue decimal.Decimal          `json:"total_inventory_value"`
	LowStockItems       []product.Product        `json:"low_stock_items"`
	RecentMovements     []movement.Movement      `json:"movements"`
	CategoryStats       []CategoryStat           `json:"category_stats"`
}

// EmployeeOverview is the trimmed-down dashboard for non-admin staff
type EmployeeOverview struct {
	TotalProducts   int64               `json:"total_products"`
	LowStockCount   int64               `json:"low_stock_count"`
	OutOfStockCount int64               `json:"out_of_stock_count"`
	OutToday        int64               `json:"out_today"`
	LowStockItems   []product.Product   `json:"low_stock_items"`
	RecentMovements []movement.Movement `json:"recent_movements"`
}

// ValuedProduct is a product with its stock valued at cost
type ValuedProduct struct {
	ProductID  uint            `json:"product_id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Stock      int             `json:"stock"`
	CostPrice  decimal.Decimal `json:"cost_price"`
	StockValue decimal.Decimal `json:"stock_value"`
}

// LowStock returns live products strictly below the threshold but not empty,
// lowest stock first. A zero threshold falls back to the configured default.
func (s *Service) LowStock(threshold int) ([]product.Product, error) {
	if threshold <= 0 {
		threshold = s.config.Inventory.LowStockThreshold
	}
	var products []product.Product
	err := s.db.Preload("Category").
		Where("stock > 0 AND stock < ?", threshold).
		Order("stock ASC, code ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock: %w", err)
	}
	return products, nil
}

// OutOfStock returns live products with no stock left
func (s *Service) OutOfStock() ([]product.Product, error) {
	var products []product.Product
	err := s.db.Preload("Category").
		Where("stock <= 0").
		Order("code ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query out of stock: %w", err)
	}
	return products, nil
}

// periodStart maps a named period to its inclusive start time. A zero time
// means "all".
func periodStart(period string, now time.Time) (time.Time, error) {
	switch period {
	case "1days":
		return now.AddDate(0, 0, -1), nil
	case "3days":
		return now.AddDate(0, 0, -3), nil
	case "7days":
		return now.AddDate(0, 0, -7), nil
	case "30days":
		return now.AddDate(0, 0, -30), nil
	case "month":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	case "year":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), nil
	case "", "all":
		return time.Time{}, nil
	default:
		return time.Time{}, apperror.NewValidation("invalid period %q", period)
	}
}

// BestSellers ranks products by total issued quantity over the period,
// highest first, ties broken by code. period "custom" uses startDate/endDate
// (YYYY-MM-DD, endDate inclusive).
func (s *Service) BestSellers(period string, limit int, startDate, endDate string) ([]BestSeller, error) {
	if limit <= 0 {
		limit = 10
	}

	var start, end time.Time
	if period == "custom" {
		if startDate == "" || endDate == "" {
			return nil, apperror.NewValidation("custom period requires start_date and end_date")
		}
		var err error
		start, err = time.Parse("2006-01-02", startDate)
		if err != nil {
			return nil, apperror.NewValidation("invalid start_date %q", startDate)
		}
		end, err = time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, apperror.NewValidation("invalid end_date %q", endDate)
		}
		end = end.AddDate(0, 0, 1)
	} else {
		var err error
		start, err = periodStart(period, time.Now().In(s.config.Location()))
		if err != nil {
			return nil, err
		}
	}

	// group by product id only: snapshots differ across rows once a product
	// is renamed or recoded, and those rows still belong to one product.
	// Live product fields win; a representative snapshot covers deleted ones.
	query := s.db.Model(&movement.Movement{}).
		Select("movements.product_id, " +
			"COALESCE(MAX(products.code), MAX(movements.product_code)) AS code, " +
			"COALESCE(MAX(products.name), MAX(movements.product_name)) AS name, " +
			"COALESCE(MAX(products.unit), MAX(movements.unit)) AS unit, " +
			"SUM(movements.quantity) AS total_issued, " +
			"COALESCE(MAX(products.stock), 0) AS stock").
		Joins("LEFT JOIN products ON products.id = movements.product_id AND products.deleted_at IS NULL").
		Where("movements.direction = ?", movement.DirectionOut).
		Group("movements.product_id").
		Order("total_issued DESC, code ASC").
		Limit(limit)

	if !start.IsZero() {
		query = query.Where("movements.created_at >= ?", start)
	}
	if !end.IsZero() {
		query = query.Where("movements.created_at < ?", end)
	}

	var rows []BestSeller
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query best sellers: %w", err)
	}
	if rows == nil {
		rows = []BestSeller{}
	}
	return rows, nil
}

// DailyMovementTotals sums ledger activity for one calendar day
func (s *Service) DailyMovementTotals(date string) (*DailyTotals, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, apperror.NewValidation("invalid date %q", date)
	}
	start := day
	end := day.AddDate(0, 0, 1)

	totals := &DailyTotals{Date: date}
	s.db.Raw("SELECT COALESCE(SUM(quantity), 0) FROM movements WHERE direction = ? AND created_at >= ? AND created_at < ?",
		movement.DirectionIn, start, end).Scan(&totals.InTotal)
	s.db.Raw("SELECT COALESCE(SUM(quantity), 0) FROM movements WHERE direction = ? AND created_at >= ? AND created_at < ?",
		movement.DirectionOut, start, end).Scan(&totals.OutTotal)
	s.db.Raw("SELECT COUNT(*) FROM movements WHERE direction = ? AND created_at >= ? AND created_at < ?",
		movement.DirectionIn, start, end).Scan(&totals.InCount)
	s.db.Raw("SELECT COUNT(*) FROM movements WHERE direction = ? AND created_at >= ? AND created_at < ?",
		movement.DirectionOut, start, end).Scan(&totals.OutCount)

	return totals, nil
}

// CategoryBreakdown aggregates live products per category. Uncategorized
// products land in a synthetic "uncategorized" bucket.
func (s *Service) CategoryBreakdown() ([]CategoryStat, error) {
	var products []product.Product
	if err := s.db.Preload("Category").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byKey := make(map[string]*CategoryStat)
	order := make([]string, 0)
	for i := range products {
		p := &products[i]
		key := "uncategorized"
		name := "uncategorized"
		if p.Category != nil {
			key = fmt.Sprintf("c%d", p.Category.ID)
			name = p.Category.Name
		}
		stat, ok := byKey[key]
		if !ok {
			stat = &CategoryStat{CategoryID: p.CategoryID, CategoryName: name, StockValue: decimal.Zero}
			byKey[key] = stat
			order = append(order, key)
		}
		stat.ProductCount++
		stat.TotalStock += int64(p.Stock)
		stat.StockValue = stat.StockValue.Add(p.CostPrice.Mul(decimal.NewFromInt(int64(p.Stock))))
	}

	stats := make([]CategoryStat, 0, len(order))
	for _, key := range order {
		stats = append(stats, *byKey[key])
	}
	return stats, nil
}

// GetFinancialSummary values current stock at cost and at selling price.
// All-zero on an empty catalog.
func (s *Service) GetFinancialSummary() (*FinancialSummary, error) {
	var products []product.Product
	if err := s.db.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	summary := &FinancialSummary{
		InventoryValue: decimal.Zero,
		SellingValue:   decimal.Zero,
		PotentialGain:  decimal.Zero,
		ProfitMargin:   decimal.Zero,
	}

	for i := range products {
		p := &products[i]
		qty := decimal.NewFromInt(int64(p.Stock))
		summary.InventoryValue = summary.InventoryValue.Add(p.CostPrice.Mul(qty))
		summary.SellingValue = summary.SellingValue.Add(p.SellingPrice.Mul(qty))
		summary.TotalStock += int64(p.Stock)
	}
	summary.ProductCount = int64(len(products))
	summary.PotentialGain = summary.SellingValue.Sub(summary.InventoryValue)
	if summary.SellingValue.IsPositive() {
		summary.ProfitMargin = summary.PotentialGain.
			Div(summary.SellingValue).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	return summary, nil
}

// GetDashboardStats assembles the main dashboard payload
func (s *Service) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}
	threshold := s.config.Inventory.LowStockThreshold
	now := time.Now().In(s.config.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	s.db.Raw("SELECT COUNT(*) FROM products WHERE deleted_at IS NULL").Scan(&stats.TotalProducts)
	s.db.Raw("SELECT COUNT(*) FROM products WHERE deleted_at IS NULL AND stock > 0 AND stock < ?", threshold).Scan(&stats.LowStockCount)
	s.db.Raw("SELECT COUNT(*) FROM products WHERE deleted_at IS NULL AND stock <= 0").Scan(&stats.OutOfStockCount)
	s.db.Raw("SELECT COALESCE(SUM(quantity), 0) FROM movements WHERE direction = ? AND created_at >= ?",
		movement.DirectionIn, today).Scan(&stats.InToday)
	s.db.Raw("SELECT COALESCE(SUM(quantity), 0) FROM movements WHERE direction = ? AND created_at >= ?",
		movement.DirectionOut, today).Scan(&stats.OutToday)

	summary, err := s.GetFinancialSummary()
	if err != nil {
		return nil, err
	}
	stats.TotalInventoryValue = summary.InventoryValue

	lowStock, err := s.LowStock(threshold)
	if err != nil {
		return nil, err
	}
	stats.LowStockItems = lowStock

	if err := s.db.Order("created_at DESC, id DESC").Limit(10).Find(&stats.RecentMovements).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent movements: %w", err)
	}

	categoryStats, err := s.CategoryBreakdown()
	if err != nil {
		return nil, err
	}
	stats.CategoryStats = categoryStats

	return stats, nil
}

// GetEmployeeOverview assembles the employee dashboard payload
func (s *Service) GetEmployeeOverview() (*EmployeeOverview, error) {
	overview := &EmployeeOverview{}
	threshold := s.config.Inventory.LowStockThreshold
	now := time.Now().In(s.config.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	s.db.Raw("SELECT COUNT(*) FROM products WHERE deleted_at IS NULL").Scan(&overview.TotalProducts)
	s.db.Raw("SELECT COUNT(*) FROM products WHERE deleted_at IS NULL AND stock > 0 AND stock < ?", threshold).Scan(&overview.LowStockCount)
	s.db.Raw("SELECT COUNT(*) FROM products WHERE deleted_at IS NULL AND stock <= 0").Scan(&overview.OutOfStockCount)
	s.db.Raw("SELECT COALESCE(SUM(quantity), 0) FROM movements WHERE direction = ? AND created_at >= ?",
		movement.DirectionOut, today).Scan(&overview.OutToday)

	lowStock, err := s.LowStock(threshold)
	if err != nil {
		return nil, err
	}
	overview.LowStockItems = lowStock

	if err := s.db.Order("created_at DESC, id DESC").Limit(10).Find(&overview.RecentMovements).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent movements: %w", err)
	}

	return overview, nil
}

// TopProductsByValue ranks live products by stock valued at cost
func (s *Service) TopProductsByValue(limit int) ([]ValuedProduct, error) {
	if limit <= 0 {
		limit = 10
	}

	var products []product.Product
	if err := s.db.Where("stock > 0").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	valued := make([]ValuedProduct, 0, len(products))
	for i := range products {
		p := &products[i]
		valued = append(valued, ValuedProduct{
			ProductID:  p.ID,
			Code:       p.Code,
			Name:       p.Name,
			Stock:      p.Stock,
			CostPrice:  p.CostPrice,
			StockValue: p.CostPrice.Mul(decimal.NewFromInt(int64(p.Stock))),
		})
	}

	// rank by value desc, ties by code asc
	sort.Slice(valued, func(i, j int) bool {
		if !valued[i].StockValue.Equal(valued[j].StockValue) {
			return valued[i].StockValue.GreaterThan(valued[j].StockValue)
		}
		return valued[i].Code < valued[j].Code
	})

	if len(valued) > limit {
		valued = valued[:limit]
	}
	return valued, nil
}
