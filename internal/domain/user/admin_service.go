// internal/domain/user/admin_service.go
package user

import (
	"errors"
	"fmt"

	"github.com/your-org/easystock-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// AdminService handles staff management for admins
type AdminService struct {
	db *gorm.DB
}

// NewAdminService creates a new admin service
func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// AdminUpdateRequest represents admin-side user updates
type AdminUpdateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Role      *string `json:"role" binding:"omitempty,oneof=admin employee"`
	IsActive  *bool   `json:"is_active"`
}

// ListUsers returns all staff accounts, newest first
func (s *AdminService) ListUsers() ([]User, error) {
	var users []User
	if err := s.db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// UpdateUser applies an admin-side partial update to a staff account
func (s *AdminService) UpdateUser(userID uint, req *AdminUpdateRequest) (*User, error) {
	var u User
	if err := s.db.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("user", userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	updates := make(map[string]interface{})
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Role != nil {
		updates["role"] = *req.Role
		updates["is_admin"] = *req.Role == RoleAdmin
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(&u).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	u.Password = ""
	return &u, nil
}

// DeactivateUser disables a staff account without deleting its history
func (s *AdminService) DeactivateUser(userID uint) error {
	result := s.db.Model(&User{}).Where("id = ?", userID).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFound("user", userID)
	}
	return nil
}
