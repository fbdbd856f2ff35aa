// internal/domain/user/service_test.go
package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/pkg/apperror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&User{}))

	cfg := &config.Config{}
	cfg.App.Name = "easystock-test"
	cfg.JWT.Secret = "test-secret-test-secret-test-secret-xx"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.JWT.RefreshTokenExpiry = 24 * time.Hour
	cfg.Security.BcryptCost = 4 // keep the test fast
	return NewService(db, cfg), db
}

func registerReq(email string) *RegisterRequest {
	return &RegisterRequest{
		Email:           email,
		Password:        "secret123",
		ConfirmPassword: "secret123",
		FirstName:       "Malee",
		LastName:        "S",
	}
}

func TestRegisterIssuesTokens(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Register(registerReq("Staff@Example.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "staff@example.com", resp.User.Email, "email normalized to lowercase")
	assert.Equal(t, RoleEmployee, resp.User.Role, "role defaults to employee")
	assert.False(t, resp.User.IsAdmin)
	assert.Empty(t, resp.User.Password, "hash never leaves the service")
	assert.NotNil(t, resp.User.LastLoginAt)
}

func TestRegisterAdminRole(t *testing.T) {
	svc, _ := newTestService(t)

	req := registerReq("boss@example.com")
	req.Role = RoleAdmin
	resp, err := svc.Register(req)
	require.NoError(t, err)
	assert.True(t, resp.User.IsAdmin, "is_admin derived from role")
}

func TestRegisterRejectsMismatchAndDuplicates(t *testing.T) {
	svc, _ := newTestService(t)

	req := registerReq("dup@example.com")
	req.ConfirmPassword = "different"
	_, err := svc.Register(req)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.Register(registerReq("dup@example.com"))
	require.NoError(t, err)
	_, err = svc.Register(registerReq("dup@example.com"))
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Register(registerReq("login@example.com"))
	require.NoError(t, err)

	resp, err := svc.Login(&LoginRequest{Email: "login@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	// same opaque error for wrong password and unknown account
	_, err = svc.Login(&LoginRequest{Email: "login@example.com", Password: "wrong"})
	assert.EqualError(t, err, "invalid email or password")
	_, err = svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.EqualError(t, err, "invalid email or password")
}

func TestLoginDeactivatedAccount(t *testing.T) {
	svc, db := newTestService(t)
	resp, err := svc.Register(registerReq("gone@example.com"))
	require.NoError(t, err)

	require.NoError(t, db.Model(&User{}).Where("id = ?", resp.User.ID).Update("is_active", false).Error)

	_, err = svc.Login(&LoginRequest{Email: "gone@example.com", Password: "secret123"})
	assert.EqualError(t, err, "invalid email or password")
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, _ := newTestService(t)
	resp, err := svc.Register(registerReq("refresh@example.com"))
	require.NoError(t, err)

	fresh, err := svc.Refresh(&RefreshRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)
	assert.NotEmpty(t, fresh.RefreshToken)

	_, err = svc.Refresh(&RefreshRequest{RefreshToken: "garbage"})
	assert.True(t, apperror.IsKind(err, apperror.KindAuthExpired))
}

func TestRefreshDeactivatedAccount(t *testing.T) {
	svc, db := newTestService(t)
	resp, err := svc.Register(registerReq("locked@example.com"))
	require.NoError(t, err)

	require.NoError(t, db.Model(&User{}).Where("id = ?", resp.User.ID).Update("is_active", false).Error)

	_, err = svc.Refresh(&RefreshRequest{RefreshToken: resp.RefreshToken})
	assert.True(t, apperror.IsKind(err, apperror.KindAuthExpired))
	assert.EqualError(t, err, "account no longer active")
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService(t)
	resp, err := svc.Register(registerReq("profile@example.com"))
	require.NoError(t, err)

	name := "Nok"
	u, err := svc.UpdateProfile(resp.User.ID, &UpdateProfileRequest{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Nok", u.FirstName)
	assert.Equal(t, "S", u.LastName, "unmentioned fields stay put")

	_, err = svc.UpdateProfile(9999, &UpdateProfileRequest{FirstName: &name})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestDisplayName(t *testing.T) {
	u := &User{Email: "x@example.com", FirstName: "Malee", LastName: "S"}
	assert.Equal(t, "Malee S", u.GetDisplayName())

	u = &User{Email: "x@example.com"}
	assert.Equal(t, "x@example.com", u.GetDisplayName())
}
