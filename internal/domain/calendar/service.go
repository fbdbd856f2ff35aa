// internal/domain/calendar/service.go
package calendar

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service handles festivals and staff calendar events
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new calendar service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// FestivalRequest represents festival create/update data
type FestivalRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
}

// FestivalView is a festival with its derived countdown fields
type FestivalView struct {
	Festival
	DurationDays int `json:"duration_days"`
	DaysUntil    int `json:"days_until"`
}

// EventRequest represents custom event create/update data
type EventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"event_date" binding:"required"`
	IsShared    bool      `json:"is_shared"`
}

// ListFestivals returns all festivals, soonest first
func (s *Service) ListFestivals() ([]FestivalView, error) {
	var festivals []Festival
	if err := s.db.Order("start_date ASC").Find(&festivals).Error; err != nil {
		return nil, fmt.Errorf("failed to list festivals: %w", err)
	}
	return s.toFestivalViews(festivals), nil
}

// UpcomingFestivals returns festivals that have not yet ended, soonest first
func (s *Service) UpcomingFestivals() ([]FestivalView, error) {
	now := time.Now().In(s.config.Location())
	var festivals []Festival
	if err := s.db.Where("end_date >= ?", now).Order("start_date ASC").Find(&festivals).Error; err != nil {
		return nil, fmt.Errorf("failed to list upcoming festivals: %w", err)
	}
	return s.toFestivalViews(festivals), nil
}

// GetFestival retrieves a single festival
func (s *Service) GetFestival(id uint) (*FestivalView, error) {
	var f Festival
	if err := s.db.First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("festival", id)
		}
		return nil, fmt.Errorf("failed to retrieve festival: %w", err)
	}
	view := s.toFestivalView(f)
	return &view, nil
}

// CreateFestival creates a new festival
func (s *Service) CreateFestival(req *FestivalRequest, createdBy uint) (*FestivalView, error) {
	if req.EndDate.Before(req.StartDate) {
		return nil, apperror.NewValidation("end_date must not be before start_date")
	}

	f := Festival{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedBy:   createdBy,
	}
	if err := s.db.Create(&f).Error; err != nil {
		return nil, fmt.Errorf("failed to create festival: %w", err)
	}
	return s.GetFestival(f.ID)
}

// UpdateFestival replaces a festival's fields
func (s *Service) UpdateFestival(id uint, req *FestivalRequest) (*FestivalView, error) {
	if req.EndDate.Before(req.StartDate) {
		return nil, apperror.NewValidation("end_date must not be before start_date")
	}

	var f Festival
	if err := s.db.First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("festival", id)
		}
		return nil, fmt.Errorf("failed to retrieve festival: %w", err)
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
		"start_date":  req.StartDate,
		"end_date":    req.EndDate,
	}
	if err := s.db.Model(&f).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update festival: %w", err)
	}
	return s.GetFestival(id)
}

// DeleteFestival removes a festival and its best-seller records
func (s *Service) DeleteFestival(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&Festival{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete festival: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.NewNotFound("festival", id)
		}
		return tx.Where("festival_id = ?", id).Delete(&FestivalBestSeller{}).Error
	})
}

// BestSellerRecord is one line of a bulk best-seller upsert
type BestSellerRecord struct {
	ProductID   *uint  `json:"product_id"`
	ProductName string `json:"product_name" binding:"required"`
	Category    string `json:"category"`
	Rank        int    `json:"rank"`
	LastYear    int    `json:"last_year"`
	ThisYear    int    `json:"this_year"`
}

// BulkUpsertRequest replaces a festival's best-seller records in one call
type BulkUpsertRequest struct {
	FestivalID uint               `json:"festival_id" binding:"required"`
	Records    []BestSellerRecord `json:"records" binding:"required,min=1,dive"`
}

// BestSellerView is a stored record plus its derived change percentage
type BestSellerView struct {
	FestivalBestSeller
	PercentageChange float64 `json:"percentage_change"`
}

// BulkUpsertBestSellers replaces the festival's records atomically
func (s *Service) BulkUpsertBestSellers(req *BulkUpsertRequest) ([]BestSellerView, error) {
	if _, err := s.GetFestival(req.FestivalID); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("festival_id = ?", req.FestivalID).Delete(&FestivalBestSeller{}).Error; err != nil {
			return fmt.Errorf("failed to clear records: %w", err)
		}
		for i, rec := range req.Records {
			rank := rec.Rank
			if rank == 0 {
				rank = i + 1
			}
			row := FestivalBestSeller{
				FestivalID:  req.FestivalID,
				ProductID:   rec.ProductID,
				ProductName: rec.ProductName,
				Category:    rec.Category,
				Rank:        rank,
				LastYear:    rec.LastYear,
				ThisYear:    rec.ThisYear,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to create record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.FestivalBestSellers(req.FestivalID)
}

// FestivalBestSellers returns the festival's records ordered by rank
func (s *Service) FestivalBestSellers(festivalID uint) ([]BestSellerView, error) {
	var records []FestivalBestSeller
	if err := s.db.Where("festival_id = ?", festivalID).Order("rank ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list best sellers: %w", err)
	}
	views := make([]BestSellerView, 0, len(records))
	for _, r := range records {
		views = append(views, BestSellerView{FestivalBestSeller: r, PercentageChange: r.PercentageChange()})
	}
	return views, nil
}

// ForecastLine is one suggested preparation quantity
type ForecastLine struct {
	ProductName       string `json:"product_name"`
	Category          string `json:"category"`
	LastYear          int    `json:"last_year"`
	SuggestedQuantity int    `json:"suggested_quantity"`
}

// Forecast suggests preparation quantities for a festival: last year's
// quantity plus ten percent, rounded up.
func (s *Service) Forecast(festivalID uint) ([]ForecastLine, error) {
	records, err := s.FestivalBestSellers(festivalID)
	if err != nil {
		return nil, err
	}

	lines := make([]ForecastLine, 0, len(records))
	for _, r := range records {
		lines = append(lines, ForecastLine{
			ProductName:       r.ProductName,
			Category:          r.Category,
			LastYear:          r.LastYear,
			SuggestedQuantity: int(math.Ceil(float64(r.LastYear) * 1.1)),
		})
	}
	return lines, nil
}

// CategoryShare is one category's slice of a festival's sales
type CategoryShare struct {
	Category string  `json:"category"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
}

// CategoryAnalysis groups a festival's this-year sales by category
func (s *Service) CategoryAnalysis(festivalID uint) ([]CategoryShare, error) {
	records, err := s.FestivalBestSellers(festivalID)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int)
	order := make([]string, 0)
	grand := 0
	for _, r := range records {
		cat := r.Category
		if cat == "" {
			cat = "uncategorized"
		}
		if _, ok := totals[cat]; !ok {
			order = append(order, cat)
		}
		totals[cat] += r.ThisYear
		grand += r.ThisYear
	}

	shares := make([]CategoryShare, 0, len(order))
	for _, cat := range order {
		share := CategoryShare{Category: cat, Total: totals[cat]}
		if grand > 0 {
			share.Percent = float64(totals[cat]) / float64(grand) * 100
		}
		shares = append(shares, share)
	}
	return shares, nil
}

// ListEvents returns events visible to the user, optionally filtered to one
// calendar month (YYYY-MM).
func (s *Service) ListEvents(userID uint, month string) ([]CustomEvent, error) {
	query := s.db.Where("is_shared = ? OR created_by = ?", true, userID)

	if month != "" {
		start, err := time.Parse("2006-01", month)
		if err != nil {
			return nil, apperror.NewValidation("invalid month %q, want YYYY-MM", month)
		}
		query = query.Where("event_date >= ? AND event_date < ?", start, start.AddDate(0, 1, 0))
	}

	var events []CustomEvent
	if err := query.Order("event_date ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// UpcomingEvents returns the next visible events from today onward
func (s *Service) UpcomingEvents(userID uint, limit int) ([]CustomEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	now := time.Now().In(s.config.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var events []CustomEvent
	err := s.db.
		Where("(is_shared = ? OR created_by = ?) AND event_date >= ?", true, userID, today).
		Order("event_date ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	return events, nil
}

// CreateEvent creates a calendar event owned by the user
func (s *Service) CreateEvent(req *EventRequest, createdBy uint) (*CustomEvent, error) {
	e := CustomEvent{
		Title:       req.Title,
		Description: req.Description,
		EventDate:   req.EventDate,
		IsShared:    req.IsShared,
		CreatedBy:   createdBy,
	}
	if err := s.db.Create(&e).Error; err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &e, nil
}

// UpdateEvent replaces an event's fields. Only the creator may touch a
// private event; shared events are editable by anyone.
func (s *Service) UpdateEvent(id uint, req *EventRequest, userID uint) (*CustomEvent, error) {
	e, err := s.getEvent(id, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"title":       req.Title,
		"description": req.Description,
		"event_date":  req.EventDate,
		"is_shared":   req.IsShared,
	}
	if err := s.db.Model(e).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return e, nil
}

// DeleteEvent removes an event under the same visibility rules as UpdateEvent
func (s *Service) DeleteEvent(id uint, userID uint) error {
	e, err := s.getEvent(id, userID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&CustomEvent{}, e.ID).Error; err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func (s *Service) getEvent(id, userID uint) (*CustomEvent, error) {
	var e CustomEvent
	if err := s.db.First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("event", id)
		}
		return nil, fmt.Errorf("failed to retrieve event: %w", err)
	}
	if !e.IsShared && e.CreatedBy != userID {
		return nil, apperror.NewNotFound("event", id)
	}
	return &e, nil
}

func (s *Service) toFestivalView(f Festival) FestivalView {
	now := time.Now().In(s.config.Location())
	return FestivalView{
		Festival:     f,
		DurationDays: f.DurationDays(),
		DaysUntil:    f.DaysUntil(now),
	}
}

func (s *Service) toFestivalViews(festivals []Festival) []FestivalView {
	views := make([]FestivalView, 0, len(festivals))
	for _, f := range festivals {
		views = append(views, s.toFestivalView(f))
	}
	return views
}
