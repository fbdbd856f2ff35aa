// internal/domain/product/service_test.go
package product

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/easystock-backend/internal/config"
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

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Category{}, &Product{}))
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewService(db, &config.Config{}), db
}

func TestCreateProduct(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.Create(&CreateRequest{
		Code:         "A100",
		Name:         "Rice 5kg",
		Unit:         "bag",
		CostPrice:    decimal.NewFromFloat(120.50),
		SellingPrice: decimal.NewFromFloat(150),
		InitialStock: 30,
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, "A100", p.Code)
	assert.Equal(t, "bag", p.Unit)
	assert.Equal(t, 30, p.Stock)
	assert.Equal(t, 30, p.InitialStock)
	assert.True(t, p.SellingPrice.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, uint(1), p.CreatedBy)
}

func TestCreateSynthesizesBlankCode(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.Create(&CreateRequest{Name: "Unnamed"}, 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.Code, "A"))
	assert.GreaterOrEqual(t, len(p.Code), 4)
	assert.Equal(t, "piece", p.Unit, "unit defaults to piece")
}

func TestCreateDuplicateCode(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(&CreateRequest{Code: "A101", Name: "First"}, 1)
	require.NoError(t, err)

	_, err = svc.Create(&CreateRequest{Code: "A101", Name: "Second"}, 1)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDuplicateCode))
	assert.Equal(t, 409, apperror.HTTPStatus(err))
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(&CreateRequest{Name: "X", CostPrice: decimal.NewFromInt(-1)}, 1)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.Create(&CreateRequest{Name: "X", InitialStock: -5}, 1)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.Create(&CreateRequest{Name: "X", Unit: "barrel"}, 1)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestCreateZeroPriceIsLegal(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.Create(&CreateRequest{Name: "Freebie"}, 1)
	require.NoError(t, err)
	assert.True(t, p.CostPrice.IsZero())
	assert.True(t, p.SellingPrice.IsZero())
}

func TestCreateWithNamedCategory(t *testing.T) {
	svc, db := newTestService(t)

	p1, err := svc.Create(&CreateRequest{Name: "One", Category: "Snacks"}, 1)
	require.NoError(t, err)
	require.NotNil(t, p1.Category)
	assert.Equal(t, "Snacks", p1.Category.Name)

	// same name reuses the category instead of duplicating it
	p2, err := svc.Create(&CreateRequest{Name: "Two", Category: "Snacks"}, 1)
	require.NoError(t, err)
	assert.Equal(t, *p1.CategoryID, *p2.CategoryID)

	var count int64
	db.Model(&Category{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateProduct(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.Create(&CreateRequest{Code: "A102", Name: "Old"}, 1)
	require.NoError(t, err)

	name := "New"
	price := decimal.NewFromInt(99)
	updated, err := svc.Update(p.ID, &UpdateRequest{Name: &name, SellingPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.True(t, updated.SellingPrice.Equal(price))
	assert.Equal(t, "A102", updated.Code, "unmentioned fields stay put")
}

func TestUpdateCodeConflict(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(&CreateRequest{Code: "A103", Name: "One"}, 1)
	require.NoError(t, err)
	p2, err := svc.Create(&CreateRequest{Code: "A104", Name: "Two"}, 1)
	require.NoError(t, err)

	taken := "A103"
	_, err = svc.Update(p2.ID, &UpdateRequest{Code: &taken})
	assert.True(t, apperror.IsKind(err, apperror.KindDuplicateCode))

	// keeping your own code is not a conflict
	own := "A104"
	_, err = svc.Update(p2.ID, &UpdateRequest{Code: &own})
	assert.NoError(t, err)
}

func TestDeleteFreesCodeForReuse(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.Create(&CreateRequest{Code: "A105", Name: "Doomed"}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(p.ID))

	_, err = svc.Get(p.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	// the code is free again for a new product
	_, err = svc.Create(&CreateRequest{Code: "A105", Name: "Successor"}, 1)
	assert.NoError(t, err)
}

func TestDeleteMissingProduct(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.Delete(12345)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(&CreateRequest{Code: "A106", Name: "Green Tea", InitialStock: 5, Category: "Drinks"}, 1)
	require.NoError(t, err)
	_, err = svc.Create(&CreateRequest{Code: "A107", Name: "Black Tea", InitialStock: 0, Category: "Drinks"}, 1)
	require.NoError(t, err)
	_, err = svc.Create(&CreateRequest{Code: "B200", Name: "Notebook", InitialStock: 3}, 1)
	require.NoError(t, err)

	resp, err := svc.List(&ListRequest{Search: "tea"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Pagination.Total)

	hideEmpty := false
	resp, err = svc.List(&ListRequest{ShowEmpty: &hideEmpty})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Pagination.Total, "empty products filtered out")

	resp, err = svc.List(&ListRequest{Category: "drinks"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Pagination.Total)

	resp, err = svc.List(&ListRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Products, 2)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasNext)
	assert.False(t, resp.Pagination.HasPrev)
}

func TestSetOnSale(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.Create(&CreateRequest{Code: "A108", Name: "Flagged"}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.SetOnSale(p.ID, true))
	fresh, err := svc.Get(p.ID)
	require.NoError(t, err)
	assert.True(t, fresh.OnSale)

	err = svc.SetOnSale(9999, true)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestGetByCode(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(&CreateRequest{Code: "A109", Name: "Lookup"}, 1)
	require.NoError(t, err)

	p, err := svc.GetByCode("A109")
	require.NoError(t, err)
	assert.Equal(t, "Lookup", p.Name)

	_, err = svc.GetByCode("ZZZ")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
