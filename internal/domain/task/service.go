// internal/domain/task/service.go
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service handles task business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new task service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateRequest represents task creation data
type CreateRequest struct {
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description"`
	TaskType       string     `json:"task_type" binding:"omitempty,oneof=restock count prepare general"`
	Priority       string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssignedTo     *uint      `json:"assigned_to"`
	DueDate        *time.Time `json:"due_date"`
	TargetQuantity int        `json:"target_quantity"`
	FestivalID     *uint      `json:"festival_id"`
	Notes          string     `json:"notes"`
}

// UpdateRequest represents partial task update data. Status changes go
// through UpdateStatus, never through here.
type UpdateRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	TaskType       *string    `json:"task_type" binding:"omitempty,oneof=restock count prepare general"`
	Priority       *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssignedTo     *uint      `json:"assigned_to"`
	DueDate        *time.Time `json:"due_date"`
	TargetQuantity *int       `json:"target_quantity"`
	ActualQuantity *int       `json:"actual_quantity"`
}

// UpdateStatusRequest represents a status transition
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// ListRequest represents task list query parameters
type ListRequest struct {
	Status     string `form:"status"`
	Priority   string `form:"priority"`
	TaskType   string `form:"task_type"`
	AssignedTo uint   `form:"assigned_to"`
	FestivalID uint   `form:"festival_id"`
}

// TaskView is a task with its derived due-date countdown
type TaskView struct {
	Task
	DaysUntilDue *int `json:"days_until_due"`
}

// List returns tasks with the given filters, urgent and newest first
func (s *Service) List(req *ListRequest) ([]TaskView, error) {
	query := s.db.Model(&Task{})

	if req.Status != "" {
		if !IsValidStatus(req.Status) {
			return nil, apperror.NewValidation("invalid status %q", req.Status)
		}
		query = query.Where("status = ?", req.Status)
	}
	if req.Priority != "" {
		query = query.Where("priority = ?", req.Priority)
	}
	if req.TaskType != "" {
		query = query.Where("task_type = ?", req.TaskType)
	}
	if req.AssignedTo > 0 {
		query = query.Where("assigned_to = ?", req.AssignedTo)
	}
	if req.FestivalID > 0 {
		query = query.Where("festival_id = ?", req.FestivalID)
	}

	var tasks []Task
	if err := query.Order("created_at DESC, id DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return s.toViews(tasks), nil
}

// MyTasks returns open tasks assigned to the given user
func (s *Service) MyTasks(userID uint) ([]TaskView, error) {
	var tasks []Task
	err := s.db.
		Where("assigned_to = ? AND status IN ?", userID, []string{StatusPending, StatusInProgress}).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return s.toViews(tasks), nil
}

// UrgentTasks returns open tasks that are urgent or due within two days
func (s *Service) UrgentTasks() ([]TaskView, error) {
	cutoff := time.Now().In(s.config.Location()).AddDate(0, 0, 2)
	var tasks []Task
	err := s.db.
		Where("status IN ?", []string{StatusPending, StatusInProgress}).
		Where("priority = ? OR (due_date IS NOT NULL AND due_date <= ?)", PriorityUrgent, cutoff).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list urgent tasks: %w", err)
	}
	return s.toViews(tasks), nil
}

// Get retrieves a single task
func (s *Service) Get(id uint) (*TaskView, error) {
	var t Task
	if err := s.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("task", id)
		}
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}
	view := s.toView(t)
	return &view, nil
}

// Create creates a new task in pending state
func (s *Service) Create(req *CreateRequest, createdBy uint) (*TaskView, error) {
	t := Task{
		Title:          req.Title,
		Description:    req.Description,
		TaskType:       req.TaskType,
		Priority:       req.Priority,
		Status:         StatusPending,
		AssignedTo:     req.AssignedTo,
		CreatedBy:      createdBy,
		DueDate:        req.DueDate,
		TargetQuantity: req.TargetQuantity,
		FestivalID:     req.FestivalID,
		Notes:          req.Notes,
	}
	if t.TaskType == "" {
		t.TaskType = TypeGeneral
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}

	if err := s.db.Create(&t).Error; err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return s.Get(t.ID)
}

// Update applies a partial update to a task
func (s *Service) Update(id uint, req *UpdateRequest) (*TaskView, error) {
	var t Task
	if err := s.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("task", id)
		}
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.TaskType != nil {
		updates["task_type"] = *req.TaskType
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.AssignedTo != nil {
		updates["assigned_to"] = *req.AssignedTo
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.TargetQuantity != nil {
		updates["target_quantity"] = *req.TargetQuantity
	}
	if req.ActualQuantity != nil {
		updates["actual_quantity"] = *req.ActualQuantity
	}

	if len(updates) > 0 {
		if err := s.db.Model(&t).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update task: %w", err)
		}
	}
	return s.Get(id)
}

// UpdateStatus moves a task through its lifecycle. Legal moves are
// pending→in_progress→completed, with cancellation allowed from any open
// state. Completed and cancelled are terminal. A note is appended to the
// task's log with a timestamp.
func (s *Service) UpdateStatus(id uint, req *UpdateStatusRequest) (*TaskView, error) {
	if !IsValidStatus(req.Status) {
		return nil, apperror.NewValidation("invalid status %q", req.Status)
	}

	var t Task
	if err := s.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("task", id)
		}
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}

	if !t.CanTransitionTo(req.Status) {
		return nil, apperror.NewInvalidTransition(t.Status, req.Status)
	}

	now := time.Now().In(s.config.Location())
	updates := map[string]interface{}{"status": req.Status}
	if req.Status == StatusCompleted {
		updates["completed_at"] = now
	}

	line := fmt.Sprintf("[%s] %s -> %s", now.Format("2006-01-02 15:04"), t.Status, req.Status)
	if req.Note != "" {
		line += ": " + req.Note
	}
	notes := t.Notes
	if strings.TrimSpace(notes) != "" {
		notes += "\n"
	}
	updates["notes"] = notes + line

	if err := s.db.Model(&t).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	return s.Get(id)
}

// Delete removes a task
func (s *Service) Delete(id uint) error {
	result := s.db.Delete(&Task{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFound("task", id)
	}
	return nil
}

func (s *Service) toView(t Task) TaskView {
	now := time.Now().In(s.config.Location())
	return TaskView{Task: t, DaysUntilDue: t.DaysUntilDue(now)}
}

func (s *Service) toViews(tasks []Task) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, s.toView(t))
	}
	return views
}
