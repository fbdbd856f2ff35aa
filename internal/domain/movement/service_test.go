// internal/domain/movement/service_test.go
package movement

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/domain/listing"
	"github.com/your-org/easystock-backend/internal/domain/product"
	"github.com/your-org/easystock-backend/internal/domain/user"
	"github.com/your-org/easystock-backend/internal/pkg/apperror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// one in-memory database, one connection
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&product.Category{},
		&product.Product{},
		&listing.Listing{},
		&Movement{},
	))
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewService(db, &config.Config{}), db
}

func seedProduct(t *testing.T, db *gorm.DB, code string, stock int) *product.Product {
	t.Helper()
	p := &product.Product{
		Code:         code,
		Name:         "Product " + code,
		Unit:         "piece",
		CostPrice:    decimal.NewFromInt(10),
		SellingPrice: decimal.NewFromInt(15),
		Stock:        stock,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestReceiveIncreasesStockAndWritesLedger(t *testing.T) {
	svc, db := newTestService(t)
	p := seedProduct(t, db, "A001", 10)

	m, err := svc.Receive(&ReceiveRequest{ProductID: p.ID, Quantity: 5, Note: "delivery"}, 1)
	require.NoError(t, err)

	assert.Equal(t, DirectionIn, m.Direction)
	assert.Equal(t, 5, m.Quantity)
	assert.Equal(t, "A001", m.ProductCode)
	assert.Equal(t, "Product A001", m.ProductName)
	assert.Equal(t, "delivery", m.Note)

	var fresh product.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	assert.Equal(t, 15, fresh.Stock)
}

func TestReceiveByCode(t *testing.T) {
	svc, db := newTestService(t)
	seedProduct(t, db, "A002", 0)

	m, err := svc.Receive(&ReceiveRequest{Code: "A002", Quantity: 3}, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Quantity)
}

func TestReceiveUnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Receive(&ReceiveRequest{ProductID: 999, Quantity: 1}, 1)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestReceiveRejectsNonPositiveQuantity(t *testing.T) {
	svc, db := newTestService(t)
	p := seedProduct(t, db, "A015", 10)

	_, err := svc.Receive(&ReceiveRequest{ProductID: p.ID, Quantity: -5}, 1)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.Receive(&ReceiveRequest{ProductID: p.ID, Quantity: 0}, 1)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	// stock untouched, ledger untouched
	var fresh product.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	assert.Equal(t, 10, fresh.Stock)

	var count int64
	db.Model(&Movement{}).Count(&count)
	assert.Zero(t, count)
}

func TestIssueDecreasesStockAndPublishesListing(t *testing.T) {
	svc, db := newTestService(t)
	p := seedProduct(t, db, "A003", 10)

	movements, err := svc.Issue(&IssueItem{ProductID: p.ID, Quantity: 4}, "sold", 1)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, DirectionOut, movements[0].Direction)
	assert.Empty(t, movements[0].BatchID, "single-line issues carry no batch id")

	var fresh product.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	assert.Equal(t, 6, fresh.Stock)
	assert.True(t, fresh.OnSale)

	var l listing.Listing
	require.NoError(t, db.Where("product_id = ?", p.ID).First(&l).Error)
	assert.Equal(t, 4, l.Quantity)
	assert.True(t, l.IsActive)
}

func TestIssueInsufficientStock(t *testing.T) {
	svc, db := newTestService(t)
	p := seedProduct(t, db, "A004", 3)

	_, err := svc.Issue(&IssueItem{ProductID: p.ID, Quantity: 5}, "", 1)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInsufficientStock))
	assert.EqualError(t, err, "insufficient stock for product A004: requested 5, available 3")

	// nothing moved
	var fresh product.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	assert.Equal(t, 3, fresh.Stock)

	var count int64
	db.Model(&Movement{}).Count(&count)
	assert.Zero(t, count)
}

func TestIssueBatchAllOrNothing(t *testing.T) {
	svc, db := newTestService(t)
	p1 := seedProduct(t, db, "A005", 10)
	p2 := seedProduct(t, db, "A006", 2)

	_, err := svc.IssueBatch(&IssueRequest{Items: []IssueItem{
		{ProductID: p1.ID, Quantity: 5},
		{ProductID: p2.ID, Quantity: 5},
	}}, 1)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInsufficientStock))

	// the first line must have rolled back with the second
	var fresh1, fresh2 product.Product
	require.NoError(t, db.First(&fresh1, p1.ID).Error)
	require.NoError(t, db.First(&fresh2, p2.ID).Error)
	assert.Equal(t, 10, fresh1.Stock)
	assert.Equal(t, 2, fresh2.Stock)

	var movements, listings int64
	db.Model(&Movement{}).Count(&movements)
	db.Model(&listing.Listing{}).Count(&listings)
	assert.Zero(t, movements)
	assert.Zero(t, listings)
}

func TestIssueBatchSharesBatchID(t *testing.T) {
	svc, db := newTestService(t)
	p1 := seedProduct(t, db, "A007", 10)
	p2 := seedProduct(t, db, "A008", 10)

	movements, err := svc.IssueBatch(&IssueRequest{Items: []IssueItem{
		{ProductID: p1.ID, Quantity: 2},
		{ProductID: p2.ID, Quantity: 3},
	}, Note: "bundle"}, 1)
	require.NoError(t, err)
	require.Len(t, movements, 2)

	assert.NotEmpty(t, movements[0].BatchID)
	assert.Equal(t, movements[0].BatchID, movements[1].BatchID)
	assert.Equal(t, "bundle", movements[0].Note)
}

func TestSequentialIssuesNeverOversell(t *testing.T) {
	svc, db := newTestService(t)
	p := seedProduct(t, db, "A009", 7)

	_, err := svc.Issue(&IssueItem{ProductID: p.ID, Quantity: 5}, "", 1)
	require.NoError(t, err)

	_, err = svc.Issue(&IssueItem{ProductID: p.ID, Quantity: 5}, "", 1)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInsufficientStock))

	var fresh product.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	assert.Equal(t, 2, fresh.Stock)
}

func TestConcurrentIssuesNeverOversell(t *testing.T) {
	svc, db := newTestService(t)
	p := seedProduct(t, db, "A100", 10)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Issue(&IssueItem{ProductID: p.ID, Quantity: 6}, "", 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	failed := 0
	for err := range errs {
		if err != nil {
			assert.True(t, apperror.IsKind(err, apperror.KindInsufficientStock))
			failed++
		}
	}
	assert.Equal(t, 1, failed, "exactly one of the racing issues loses")

	var fresh product.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	assert.Equal(t, 4, fresh.Stock)

	var count int64
	db.Model(&Movement{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAdjustRecordsDelta(t *testing.T) {
	svc, db := newTestService(t)
	p := seedProduct(t, db, "A010", 10)

	m, err := svc.Adjust(p.ID, &AdjustRequest{Stock: 4, Note: "recount"}, 1)
	require.NoError(t, err)
	assert.Equal(t, DirectionOut, m.Direction)
	assert.Equal(t, 6, m.Quantity)

	m, err = svc.Adjust(p.ID, &AdjustRequest{Stock: 9}, 1)
	require.NoError(t, err)
	assert.Equal(t, DirectionIn, m.Direction)
	assert.Equal(t, 5, m.Quantity)
	assert.Equal(t, "stock adjustment", m.Note)

	var fresh product.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	assert.Equal(t, 9, fresh.Stock)
}

func TestAdjustNoOpRejected(t *testing.T) {
	svc, db := newTestService(t)
	p := seedProduct(t, db, "A011", 5)

	_, err := svc.Adjust(p.ID, &AdjustRequest{Stock: 5}, 1)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestRecordInitial(t *testing.T) {
	svc, db := newTestService(t)
	p := seedProduct(t, db, "A012", 20)
	p.InitialStock = 20

	m, err := svc.RecordInitial(p, 1)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, DirectionIn, m.Direction)
	assert.Equal(t, 20, m.Quantity)
	assert.Equal(t, "initial stock", m.Note)

	// no row for zero opening stock
	p2 := seedProduct(t, db, "A013", 0)
	m, err = svc.RecordInitial(p2, 1)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestHistoryFiltersAndActors(t *testing.T) {
	svc, db := newTestService(t)
	p1 := seedProduct(t, db, "A014", 10)
	p2 := seedProduct(t, db, "B001", 10)

	actor := &user.User{Email: "staff@example.com", Password: "x", FirstName: "Malee", LastName: "S"}
	require.NoError(t, db.Create(actor).Error)

	_, err := svc.Receive(&ReceiveRequest{ProductID: p1.ID, Quantity: 5}, actor.ID)
	require.NoError(t, err)
	_, err = svc.Issue(&IssueItem{ProductID: p1.ID, Quantity: 2}, "", actor.ID)
	require.NoError(t, err)
	_, err = svc.Issue(&IssueItem{ProductID: p2.ID, Quantity: 1}, "", actor.ID)
	require.NoError(t, err)

	resp, err := svc.History(&HistoryRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, 3, resp.Shown)
	assert.Equal(t, "Malee S", resp.Entries[0].ActorName)

	resp, err = svc.History(&HistoryRequest{Direction: DirectionOut})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)

	resp, err = svc.History(&HistoryRequest{Search: "b00"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, "B001", resp.Entries[0].ProductCode)

	resp, err = svc.History(&HistoryRequest{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, 1, resp.Shown)
}

func TestHistoryRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.History(&HistoryRequest{Direction: "sideways"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.History(&HistoryRequest{StartDate: "not-a-date"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}
