// internal/domain/task/entity.go
package task

import (
	"time"

	"gorm.io/gorm"
)

// Task statuses
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Task types
const (
	TypeRestock = "restock"
	TypeCount   = "count"
	TypePrepare = "prepare"
	TypeGeneral = "general"
)

// Task priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Task is a unit of staff work, optionally tied to a festival preparation
type Task struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Title          string         `gorm:"not null;size:255" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	TaskType       string         `gorm:"size:20;default:'general'" json:"task_type"`
	Priority       string         `gorm:"size:20;default:'medium';index" json:"priority"`
	Status         string         `gorm:"size:20;default:'pending';index" json:"status"`
	AssignedTo     *uint          `gorm:"index" json:"assigned_to"`
	CreatedBy      uint           `gorm:"index" json:"created_by"`
	DueDate        *time.Time     `json:"due_date"`
	CompletedAt    *time.Time     `json:"completed_at"`
	TargetQuantity int            `gorm:"default:0" json:"target_quantity"`
	ActualQuantity int            `gorm:"default:0" json:"actual_quantity"`
	FestivalID     *uint          `gorm:"index" json:"festival_id"`
	Notes          string         `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for Task
func (Task) TableName() string {
	return "tasks"
}

// validTransitions maps each status to the statuses it may move to
var validTransitions = map[string][]string{
	StatusPending:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransitionTo reports whether the task may move to the given status
func (t *Task) CanTransitionTo(status string) bool {
	for _, allowed := range validTransitions[t.Status] {
		if allowed == status {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether status is a known task status
func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// DaysUntilDue returns the calendar days left until the due date, negative
// when overdue, nil when no due date is set. Derived at read time, never
// stored. Calendar days, not 24h spans: a task due yesterday reports -1 even
// when less than a full day has passed.
func (t *Task) DaysUntilDue(now time.Time) *int {
	if t.DueDate == nil {
		return nil
	}
	due := t.DueDate.In(now.Location())
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	days := int(dueDay.Sub(today).Hours() / 24)
	return &days
}
