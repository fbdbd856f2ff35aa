// internal/pkg/line/service.go
package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/infrastructure/database/redis"
)

// Service pushes stock alerts to LINE. Delivery is best-effort: a failed
// push is logged and swallowed so it can never fail the mutation that
// triggered it.
type Service struct {
	config *config.Config
	redis  *redis.Client
	client *http.Client
	logger *logrus.Logger
}

// NewService creates a new LINE service
func NewService(cfg *config.Config, redisClient *redis.Client, logger *logrus.Logger) *Service {
	return &Service{
		config: cfg,
		redis:  redisClient,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Enabled reports whether LINE messaging is configured
func (s *Service) Enabled() bool {
	return s.config.Line.Enabled && s.config.Line.ChannelAccessToken != ""
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

type broadcastRequest struct {
	Messages []textMessage `json:"messages"`
}

// Push sends a text message to one LINE user
func (s *Service) Push(ctx context.Context, lineUserID, text string) error {
	if !s.Enabled() {
		return fmt.Errorf("LINE messaging is not configured")
	}
	body := pushRequest{
		To:       lineUserID,
		Messages: []textMessage{{Type: "text", Text: text}},
	}
	return s.post(ctx, "/v2/bot/message/push", body)
}

// Broadcast sends a text message to all friends of the channel
func (s *Service) Broadcast(ctx context.Context, text string) error {
	if !s.Enabled() {
		return fmt.Errorf("LINE messaging is not configured")
	}
	body := broadcastRequest{
		Messages: []textMessage{{Type: "text", Text: text}},
	}
	return s.post(ctx, "/v2/bot/message/broadcast", body)
}

// NotifyStockIn reports an inbound delivery, fire-and-forget
func (s *Service) NotifyStockIn(code, name string, qty, stock int) {
	s.notify(fmt.Sprintf("📦 Stock in: %s %s +%d (now %d)", code, name, qty, stock))
}

// NotifyStockOut reports an outbound issue, fire-and-forget
func (s *Service) NotifyStockOut(code, name string, qty, stock int) {
	s.notify(fmt.Sprintf("📤 Stock out: %s %s -%d (now %d)", code, name, qty, stock))
}

// NotifyLowStock warns that a product fell to or below the threshold
func (s *Service) NotifyLowStock(code, name string, stock, threshold int) {
	s.notify(fmt.Sprintf("⚠️ Low stock: %s %s has %d left (threshold %d)", code, name, stock, threshold))
}

// NotifyOutOfStock warns that a product ran dry
func (s *Service) NotifyOutOfStock(code, name string) {
	s.notify(fmt.Sprintf("🚨 Out of stock: %s %s", code, name))
}

// notify broadcasts in the background; failures are logged, never returned
func (s *Service) notify(text string) {
	if !s.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Broadcast(ctx, text); err != nil {
			s.logger.WithError(err).Warn("LINE notification failed")
		}
	}()
}

func connectCodeKey(code string) string {
	return "line:connect:" + code
}

// GenerateConnectCode issues a short-lived code a staff member types into
// the LINE bot to link their chat to their account.
func (s *Service) GenerateConnectCode(ctx context.Context, userID uint) (string, time.Duration, error) {
	code := uuid.New().String()[:8]
	expiry := s.config.Line.ConnectCodeExpiry
	if err := s.redis.Set(ctx, connectCodeKey(code), fmt.Sprintf("%d", userID), expiry); err != nil {
		return "", 0, fmt.Errorf("failed to store connect code: %w", err)
	}
	return code, expiry, nil
}

// ResolveConnectCode returns the user ID behind a connect code and burns it
func (s *Service) ResolveConnectCode(ctx context.Context, code string) (uint, error) {
	val, err := s.redis.Get(ctx, connectCodeKey(code))
	if err != nil {
		return 0, fmt.Errorf("connect code not found or expired")
	}
	var userID uint
	if _, err := fmt.Sscanf(val, "%d", &userID); err != nil {
		return 0, fmt.Errorf("malformed connect code entry")
	}
	_ = s.redis.Del(ctx, connectCodeKey(code))
	return userID, nil
}

func (s *Service) post(ctx context.Context, path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal LINE request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Line.APIBaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build LINE request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.Line.ChannelAccessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("LINE request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("LINE API returned status %d", resp.StatusCode)
	}
	return nil
}
