// internal/domain/movement/service.go
package movement

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/domain/listing"
	"github.com/your-org/easystock-backend/internal/domain/product"
	"github.com/your-org/easystock-backend/internal/domain/user"
	"github.com/your-org/easystock-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service owns every stock mutation. Product rows never change stock outside
// this package; each change lands in the same transaction as its ledger row.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new movement service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ReceiveRequest represents an inbound delivery for one product
type ReceiveRequest struct {
	ProductID uint   `json:"product_id"`
	Code      string `json:"code"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Note      string `json:"note"`
}

// IssueItem is one line of an outbound issue
type IssueItem struct {
	ProductID uint   `json:"product_id"`
	Code      string `json:"code"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// IssueRequest represents an outbound issue of one or more products
type IssueRequest struct {
	Items []IssueItem `json:"items" binding:"required,min=1,dive"`
	Note  string      `json:"note"`
}

// AdjustRequest represents an administrative stock correction
type AdjustRequest struct {
	Stock int    `json:"stock" binding:"min=0"`
	Note  string `json:"note"`
}

// Receive books an inbound delivery: stock goes up, an "in" row is written,
// both in one transaction.
func (s *Service) Receive(req *ReceiveRequest, userID uint) (*Movement, error) {
	if req.Quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	p, err := s.findProduct(tx, req.ProductID, req.Code)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Model(&product.Product{}).Where("id = ?", p.ID).
		UpdateColumn("stock", gorm.Expr("stock + ?", req.Quantity)).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	m := s.newRow(p, DirectionIn, req.Quantity, "", req.Note, userID)
	if err := tx.Create(m).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record movement: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit receive: %w", err)
	}
	return m, nil
}

// Issue books an outbound issue for a single product
func (s *Service) Issue(item *IssueItem, note string, userID uint) ([]Movement, error) {
	return s.IssueBatch(&IssueRequest{Items: []IssueItem{*item}, Note: note}, userID)
}

// IssueBatch books an outbound issue for several products atomically. Each
// decrement is guarded by the current stock, so two racing issues can never
// drive a product negative; any failing line rolls back the whole batch.
// Every issued product is also published to the storefront.
func (s *Service) IssueBatch(req *IssueRequest, userID uint) ([]Movement, error) {
	if len(req.Items) == 0 {
		return nil, apperror.NewValidation("at least one item is required")
	}

	batchID := ""
	if len(req.Items) > 1 {
		batchID = uuid.New().String()
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	movements := make([]Movement, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			tx.Rollback()
			return nil, apperror.NewValidation("quantity must be positive")
		}

		p, err := s.findProduct(tx, item.ProductID, item.Code)
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		result := tx.Model(&product.Product{}).
			Where("id = ? AND stock >= ?", p.ID, item.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
		if result.Error != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to update stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// the guard lost: re-read for an accurate "available" figure
			var current product.Product
			tx.Select("stock").First(&current, p.ID)
			tx.Rollback()
			return nil, apperror.NewInsufficientStock(p.Code, item.Quantity, current.Stock)
		}

		m := s.newRow(p, DirectionOut, item.Quantity, batchID, req.Note, userID)
		if err := tx.Create(m).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to record movement: %w", err)
		}

		if err := listing.ApplyIssue(tx, p, item.Quantity); err != nil {
			tx.Rollback()
			return nil, err
		}

		movements = append(movements, *m)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit issue: %w", err)
	}
	return movements, nil
}

// Adjust is the administrative stock correction: stock is set to the given
// value and the delta recorded as a corrective ledger row.
func (s *Service) Adjust(productID uint, req *AdjustRequest, userID uint) (*Movement, error) {
	if req.Stock < 0 {
		return nil, apperror.NewValidation("stock must not be negative")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	p, err := s.findProduct(tx, productID, "")
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	delta := req.Stock - p.Stock
	if delta == 0 {
		tx.Rollback()
		return nil, apperror.NewValidation("stock is already %d", req.Stock)
	}

	if err := tx.Model(&product.Product{}).Where("id = ?", p.ID).
		UpdateColumn("stock", req.Stock).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	direction := DirectionIn
	qty := delta
	if delta < 0 {
		direction = DirectionOut
		qty = -delta
	}
	note := req.Note
	if note == "" {
		note = "stock adjustment"
	}

	m := s.newRow(p, direction, qty, "", note, userID)
	if err := tx.Create(m).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record movement: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit adjustment: %w", err)
	}
	return m, nil
}

// RecordInitial writes the "in" row for a product created with opening
// stock. The product row already carries the stock, so only the ledger row
// is written here.
func (s *Service) RecordInitial(p *product.Product, userID uint) (*Movement, error) {
	if p.InitialStock <= 0 {
		return nil, nil
	}
	m := s.newRow(p, DirectionIn, p.InitialStock, "", "initial stock", userID)
	if err := s.db.Create(m).Error; err != nil {
		return nil, fmt.Errorf("failed to record initial stock: %w", err)
	}
	return m, nil
}

// HistoryRequest represents movement history query parameters
type HistoryRequest struct {
	Search    string `form:"search"`
	StartDate string `form:"start_date"` // YYYY-MM-DD, inclusive
	EndDate   string `form:"end_date"`   // YYYY-MM-DD, inclusive
	Direction string `form:"direction"`  // in | out
	Limit     int    `form:"limit,default=100"`
}

// HistoryEntry is a ledger row with its actor's display name
type HistoryEntry struct {
	Movement
	ActorName string `json:"actor_name"`
}

// HistoryResponse carries the filtered ledger slice plus counts
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
	Total   int64          `json:"total"`
	Shown   int            `json:"shown"`
}

// History returns ledger rows newest first with the given filters applied
func (s *Service) History(req *HistoryRequest) (*HistoryResponse, error) {
	query := s.db.Model(&Movement{})

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(product_code) LIKE ? OR LOWER(product_name) LIKE ?", search, search)
	}
	if req.Direction != "" {
		if req.Direction != DirectionIn && req.Direction != DirectionOut {
			return nil, apperror.NewValidation("direction must be %q or %q", DirectionIn, DirectionOut)
		}
		query = query.Where("direction = ?", req.Direction)
	}
	if req.StartDate != "" {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return nil, apperror.NewValidation("invalid start_date %q", req.StartDate)
		}
		query = query.Where("created_at >= ?", start)
	}
	if req.EndDate != "" {
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return nil, apperror.NewValidation("invalid end_date %q", req.EndDate)
		}
		query = query.Where("created_at < ?", end.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count movements: %w", err)
	}

	if req.Limit <= 0 {
		req.Limit = 100
	}

	var movements []Movement
	if err := query.Order("created_at DESC, id DESC").Limit(req.Limit).Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve movements: %w", err)
	}

	entries, err := s.attachActors(movements)
	if err != nil {
		return nil, err
	}

	return &HistoryResponse{
		Entries: entries,
		Total:   total,
		Shown:   len(entries),
	}, nil
}

// attachActors resolves created_by IDs to display names in one query
func (s *Service) attachActors(movements []Movement) ([]HistoryEntry, error) {
	ids := make([]uint, 0, len(movements))
	seen := make(map[uint]bool)
	for _, m := range movements {
		if m.CreatedBy > 0 && !seen[m.CreatedBy] {
			seen[m.CreatedBy] = true
			ids = append(ids, m.CreatedBy)
		}
	}

	names := make(map[uint]string)
	if len(ids) > 0 {
		var users []user.User
		if err := s.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
			return nil, fmt.Errorf("failed to resolve actors: %w", err)
		}
		for i := range users {
			names[users[i].ID] = users[i].GetDisplayName()
		}
	}

	entries := make([]HistoryEntry, 0, len(movements))
	for _, m := range movements {
		entries = append(entries, HistoryEntry{Movement: m, ActorName: names[m.CreatedBy]})
	}
	return entries, nil
}

// findProduct loads a product by ID or, failing that, by code
func (s *Service) findProduct(tx *gorm.DB, id uint, code string) (*product.Product, error) {
	var p product.Product
	var err error
	switch {
	case id > 0:
		err = tx.First(&p, id).Error
	case code != "":
		err = tx.Where("code = ?", code).First(&p).Error
	default:
		return nil, apperror.NewValidation("product_id or code is required")
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if id > 0 {
				return nil, apperror.NewNotFound("product", id)
			}
			return nil, apperror.NewNotFound("product", code)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &p, nil
}

func (s *Service) newRow(p *product.Product, direction string, qty int, batchID, note string, userID uint) *Movement {
	return &Movement{
		ProductID:   p.ID,
		Direction:   direction,
		Quantity:    qty,
		ProductCode: p.Code,
		ProductName: p.Name,
		Unit:        p.Unit,
		BatchID:     batchID,
		Note:        note,
		CreatedBy:   userID,
	}
}
