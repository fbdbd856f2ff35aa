// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/domain/movement"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// HistoryReportData is the template payload for a movement history report
type HistoryReportData struct {
	Title       string
	GeneratedAt string
	AppName     string
	Entries     []movement.HistoryEntry
	Total       int64
	Shown       int
}

// GenerateMovementHistory renders the filtered ledger slice as a PDF
func (s *Service) GenerateMovementHistory(history *movement.HistoryResponse) (*bytes.Buffer, error) {
	data := HistoryReportData{
		Title:       "Stock Movement History",
		GeneratedAt: time.Now().In(s.config.Location()).Format("2 January 2006 15:04"),
		AppName:     s.config.App.Name,
		Entries:     history.Entries,
		Total:       history.Total,
		Shown:       history.Shown,
	}

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// generateHTML generates HTML content from template
func (s *Service) generateHTML(data HistoryReportData) (string, error) {
	tmpl := template.Must(template.New("history").Funcs(template.FuncMap{
		"fmtTime": func(t time.Time) string {
			return t.In(s.config.Location()).Format("2006-01-02 15:04")
		},
	}).Parse(historyTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

const historyTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #222; }
  h1 { font-size: 18px; margin-bottom: 2px; }
  .meta { color: #666; margin-bottom: 16px; }
  table { width: 100%; border-collapse: collapse; }
  th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: left; }
  th { background: #f2f2f2; }
  .in { color: #1a7f37; }
  .out { color: #b42318; }
</style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="meta">{{.AppName}} &mdash; generated {{.GeneratedAt}} &mdash; showing {{.Shown}} of {{.Total}} movements</div>
  <table>
    <thead>
      <tr>
        <th>Date</th><th>Code</th><th>Product</th><th>Direction</th><th>Qty</th><th>Unit</th><th>By</th><th>Note</th>
      </tr>
    </thead>
    <tbody>
      {{range .Entries}}
      <tr>
        <td>{{fmtTime .CreatedAt}}</td>
        <td>{{.ProductCode}}</td>
        <td>{{.ProductName}}</td>
        <td class="{{.Direction}}">{{.Direction}}</td>
        <td>{{.Quantity}}</td>
        <td>{{.Unit}}</td>
        <td>{{.ActorName}}</td>
        <td>{{.Note}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>
</body>
</html>`
