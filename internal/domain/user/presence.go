// internal/domain/user/presence.go
package user

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/infrastructure/database/redis"
	"gorm.io/gorm"
)

// PresenceService tracks which employees are currently online. A heartbeat
// refreshes a per-user redis key with a TTL; a user whose key has expired is
// considered offline.
type PresenceService struct {
	db     *gorm.DB
	redis  *redis.Client
	config *config.Config
}

// NewPresenceService creates a new presence service
func NewPresenceService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *PresenceService {
	return &PresenceService{
		db:     db,
		redis:  redisClient,
		config: cfg,
	}
}

// OnlineUser is a staff account with its last heartbeat time
type OnlineUser struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	LastSeen  time.Time `json:"last_seen"`
}

func heartbeatKey(userID uint) string {
	return fmt.Sprintf("presence:heartbeat:%d", userID)
}

// Heartbeat records that the user is active right now
func (s *PresenceService) Heartbeat(ctx context.Context, userID uint) error {
	now := time.Now().UTC()
	key := heartbeatKey(userID)
	if err := s.redis.Set(ctx, key, strconv.FormatInt(now.Unix(), 10), s.config.Inventory.HeartbeatTTL); err != nil {
		return fmt.Errorf("failed to record heartbeat: %w", err)
	}
	return nil
}

// OnlineUsers returns active staff accounts with a live heartbeat
func (s *PresenceService) OnlineUsers(ctx context.Context) ([]OnlineUser, error) {
	var users []User
	if err := s.db.Where("is_active = ?", true).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	online := make([]OnlineUser, 0)
	for _, u := range users {
		val, err := s.redis.Get(ctx, heartbeatKey(u.ID))
		if err != nil {
			continue // key expired or missing: offline
		}
		unix, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			continue
		}
		online = append(online, OnlineUser{
			ID:        u.ID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Role:      u.Role,
			LastSeen:  time.Unix(unix, 0).UTC(),
		})
	}
	return online, nil
}
