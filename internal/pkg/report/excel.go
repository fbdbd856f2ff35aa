// internal/pkg/report/excel.go
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/domain/product"
)

// ExcelService renders catalog exports as xlsx workbooks
type ExcelService struct {
	config *config.Config
}

// NewExcelService creates a new excel report service
func NewExcelService(cfg *config.Config) *ExcelService {
	return &ExcelService{config: cfg}
}

// ProductStock writes the product catalog with stock and valuations to a
// single-sheet workbook.
func (s *ExcelService) ProductStock(products []product.Product) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Products"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Code", "Name", "Category", "Unit", "Stock", "Cost Price", "Selling Price", "Stock Value", "On Sale", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		f.SetCellStyle(sheet, "A1", endCell, headerStyle)
	}

	for row, p := range products {
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		stockValue := p.CostPrice.Mul(decimal.NewFromInt(int64(p.Stock)))

		values := []interface{}{
			p.Code,
			p.Name,
			category,
			p.Unit,
			p.Stock,
			p.CostPrice.InexactFloat64(),
			p.SellingPrice.InexactFloat64(),
			stockValue.InexactFloat64(),
			p.OnSale,
			p.CreatedAt.In(s.config.Location()).Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 32)
	f.SetColWidth(sheet, "C", "D", 14)
	f.SetColWidth(sheet, "E", "H", 14)
	f.SetColWidth(sheet, "I", "J", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf, nil
}

// Filename builds a dated attachment name for a catalog export
func (s *ExcelService) Filename(prefix string) string {
	return fmt.Sprintf("%s_%s.xlsx", prefix, time.Now().In(s.config.Location()).Format("20060102"))
}
