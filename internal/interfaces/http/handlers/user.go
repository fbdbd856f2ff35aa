// internal/interfaces/http/handlers/user.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/domain/user"
	"github.com/your-org/easystock-backend/internal/infrastructure/database/redis"
	"gorm.io/gorm"
)

// UserHandler handles staff management endpoints
type UserHandler struct {
	adminService    *user.AdminService
	presenceService *user.PresenceService
	config          *config.Config
}

// NewUserHandler creates a new user handler
func NewUserHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *UserHandler {
	return &UserHandler{
		adminService:    user.NewAdminService(db),
		presenceService: user.NewPresenceService(db, redisClient, cfg),
		config:          cfg,
	}
}

// GetUsers handles GET /users (admin)
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Users retrieved successfully",
		"data":    users,
	})
}

// GetOnlineUsers handles GET /users/online
func (h *UserHandler) GetOnlineUsers(c *gin.Context) {
	online, err := h.presenceService.OnlineUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Online users retrieved successfully",
		"data":    online,
	})
}

// UpdateUser handles PATCH /users/:id (admin)
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req user.AdminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	u, err := h.adminService.UpdateUser(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"data":    u,
	})
}

// DeactivateUser handles DELETE /users/:id (admin)
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.adminService.DeactivateUser(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deactivated successfully",
	})
}
