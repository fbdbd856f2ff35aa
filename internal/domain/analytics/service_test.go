// internal/domain/analytics/service_test.go
package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/domain/movement"
	"github.com/your-org/easystock-backend/internal/domain/product"
	"github.com/your-org/easystock-backend/internal/pkg/apperror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&product.Category{}, &product.Product{}, &movement.Movement{}))

	cfg := &config.Config{}
	cfg.Inventory.LowStockThreshold = 5
	return NewService(db, cfg), db
}

func seedProduct(t *testing.T, db *gorm.DB, code string, stock int, cost, sell int64) *product.Product {
	t.Helper()
	p := &product.Product{
		Code:         code,
		Name:         "Product " + code,
		Unit:         "piece",
		CostPrice:    decimal.NewFromInt(cost),
		SellingPrice: decimal.NewFromInt(sell),
		Stock:        stock,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedIssue(t *testing.T, db *gorm.DB, p *product.Product, qty int) {
	t.Helper()
	m := &movement.Movement{
		ProductID:   p.ID,
		Direction:   movement.DirectionOut,
		Quantity:    qty,
		ProductCode: p.Code,
		ProductName: p.Name,
		Unit:        p.Unit,
	}
	require.NoError(t, db.Create(m).Error)
}

func TestLowStockBoundaries(t *testing.T) {
	svc, db := newTestService(t)
	seedProduct(t, db, "A001", 0, 10, 15)  // out, not low
	seedProduct(t, db, "A002", 3, 10, 15)  // low
	seedProduct(t, db, "A003", 4, 10, 15)  // low, just under threshold
	seedProduct(t, db, "A004", 5, 10, 15)  // at threshold, not low
	seedProduct(t, db, "A005", 50, 10, 15) // fine

	low, err := svc.LowStock(0) // falls back to configured threshold
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "A002", low[0].Code, "lowest stock first")
	assert.Equal(t, "A003", low[1].Code)

	out, err := svc.OutOfStock()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "A001", out[0].Code)
}

func TestBestSellersRanking(t *testing.T) {
	svc, db := newTestService(t)
	p1 := seedProduct(t, db, "A010", 10, 10, 15)
	p2 := seedProduct(t, db, "A011", 10, 10, 15)
	p3 := seedProduct(t, db, "A012", 10, 10, 15)

	seedIssue(t, db, p1, 3)
	seedIssue(t, db, p1, 4)
	seedIssue(t, db, p2, 5)
	seedIssue(t, db, p3, 1)

	rows, err := svc.BestSellers("all", 2, "", "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A010", rows[0].Code)
	assert.Equal(t, int64(7), rows[0].TotalIssued)
	assert.Equal(t, "A011", rows[1].Code)
	assert.Equal(t, int64(5), rows[1].TotalIssued)
}

func TestBestSellersGroupByProductAcrossRenames(t *testing.T) {
	svc, db := newTestService(t)
	p1 := seedProduct(t, db, "A200", 20, 10, 15)
	p2 := seedProduct(t, db, "B200", 20, 10, 15)

	// issue under the old identity, rename, issue again
	seedIssue(t, db, p1, 4)
	require.NoError(t, db.Model(p1).Updates(map[string]interface{}{
		"code": "A299",
		"name": "Product A299",
	}).Error)
	p1.Code = "A299"
	p1.Name = "Product A299"
	seedIssue(t, db, p1, 4)
	seedIssue(t, db, p2, 5)

	rows, err := svc.BestSellers("all", 10, "", "")
	require.NoError(t, err)
	require.Len(t, rows, 2, "a renamed product stays one ranking row")
	assert.Equal(t, p1.ID, rows[0].ProductID)
	assert.Equal(t, "A299", rows[0].Code, "live code shown, not a stale snapshot")
	assert.Equal(t, int64(8), rows[0].TotalIssued)
	assert.Equal(t, p2.ID, rows[1].ProductID)
	assert.Equal(t, int64(5), rows[1].TotalIssued)

	// a deleted product keeps ranking under its snapshot identity
	require.NoError(t, db.Delete(&product.Product{}, p2.ID).Error)
	rows, err = svc.BestSellers("all", 10, "", "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "B200", rows[1].Code)
	assert.Equal(t, 0, rows[1].Stock)
}

func TestBestSellersEmptyLedger(t *testing.T) {
	svc, _ := newTestService(t)

	rows, err := svc.BestSellers("7days", 10, "", "")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestBestSellersValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.BestSellers("fortnight", 10, "", "")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.BestSellers("custom", 10, "", "")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.BestSellers("custom", 10, "2026-13-99", "2026-01-01")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestFinancialSummaryEmptyCatalog(t *testing.T) {
	svc, _ := newTestService(t)

	summary, err := svc.GetFinancialSummary()
	require.NoError(t, err)
	assert.True(t, summary.InventoryValue.IsZero())
	assert.True(t, summary.SellingValue.IsZero())
	assert.True(t, summary.PotentialGain.IsZero())
	assert.True(t, summary.ProfitMargin.IsZero(), "no division by zero on empty catalog")
	assert.Zero(t, summary.ProductCount)
	assert.Zero(t, summary.TotalStock)
}

func TestFinancialSummaryValues(t *testing.T) {
	svc, db := newTestService(t)
	seedProduct(t, db, "A020", 10, 10, 15) // cost 100, sell 150
	seedProduct(t, db, "A021", 5, 20, 30)  // cost 100, sell 150

	summary, err := svc.GetFinancialSummary()
	require.NoError(t, err)
	assert.True(t, summary.InventoryValue.Equal(decimal.NewFromInt(200)))
	assert.True(t, summary.SellingValue.Equal(decimal.NewFromInt(300)))
	assert.True(t, summary.PotentialGain.Equal(decimal.NewFromInt(100)))
	// 100/300 = 33.33%
	assert.True(t, summary.ProfitMargin.Equal(decimal.NewFromFloat(33.33)))
	assert.Equal(t, int64(2), summary.ProductCount)
	assert.Equal(t, int64(15), summary.TotalStock)
}

func TestCategoryBreakdown(t *testing.T) {
	svc, db := newTestService(t)

	cat := &product.Category{Name: "Drinks"}
	require.NoError(t, db.Create(cat).Error)

	p := seedProduct(t, db, "A030", 4, 25, 40)
	require.NoError(t, db.Model(p).Update("category_id", cat.ID).Error)
	seedProduct(t, db, "A031", 2, 10, 15) // uncategorized

	stats, err := svc.CategoryBreakdown()
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byName := make(map[string]CategoryStat)
	for _, s := range stats {
		byName[s.CategoryName] = s
	}
	drinks := byName["Drinks"]
	assert.Equal(t, int64(1), drinks.ProductCount)
	assert.Equal(t, int64(4), drinks.TotalStock)
	assert.True(t, drinks.StockValue.Equal(decimal.NewFromInt(100)))

	other := byName["uncategorized"]
	assert.Equal(t, int64(1), other.ProductCount)
	assert.True(t, other.StockValue.Equal(decimal.NewFromInt(20)))
}

func TestDailyMovementTotals(t *testing.T) {
	svc, db := newTestService(t)
	p := seedProduct(t, db, "A040", 50, 10, 15)

	seedIssue(t, db, p, 3)
	seedIssue(t, db, p, 2)
	require.NoError(t, db.Create(&movement.Movement{
		ProductID: p.ID, Direction: movement.DirectionIn, Quantity: 10,
		ProductCode: p.Code, ProductName: p.Name, Unit: p.Unit,
	}).Error)

	today := time.Now().Format("2006-01-02")
	totals, err := svc.DailyMovementTotals(today)
	require.NoError(t, err)
	assert.Equal(t, int64(10), totals.InTotal)
	assert.Equal(t, int64(5), totals.OutTotal)
	assert.Equal(t, int64(1), totals.InCount)
	assert.Equal(t, int64(2), totals.OutCount)

	_, err = svc.DailyMovementTotals("yesterday")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestDashboardStats(t *testing.T) {
	svc, db := newTestService(t)
	seedProduct(t, db, "A050", 2, 10, 15) // low
	seedProduct(t, db, "A051", 0, 10, 15) // out
	p := seedProduct(t, db, "A052", 40, 5, 9)
	seedIssue(t, db, p, 4)

	stats, err := svc.GetDashboardStats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.LowStockCount)
	assert.Equal(t, int64(1), stats.OutOfStockCount)
	assert.Equal(t, int64(4), stats.OutToday)
	assert.True(t, stats.TotalInventoryValue.Equal(decimal.NewFromInt(220)))
	assert.Len(t, stats.LowStockItems, 1)
	assert.Len(t, stats.RecentMovements, 1)
	assert.NotEmpty(t, stats.CategoryStats)
}

func TestTopProductsByValue(t *testing.T) {
	svc, db := newTestService(t)
	seedProduct(t, db, "A060", 10, 10, 15)   // value 100
	seedProduct(t, db, "A061", 3, 100, 150)  // value 300
	seedProduct(t, db, "A062", 0, 999, 1000) // no stock, excluded

	top, err := svc.TopProductsByValue(10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "A061", top[0].Code)
	assert.True(t, top[0].StockValue.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "A060", top[1].Code)
}
