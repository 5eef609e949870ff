package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainforge-app/forge_api/dto"
	"github.com/brainforge-app/forge_api/model"
	"github.com/brainforge-app/forge_api/shared"
)

func newTestAuthService(t *testing.T) (*AuthService, *SqlService) {
	t.Helper()
	sqlSvc := newTestSqlService(t)
	jwtSvc := &JWTService{AccessTokenDuration: time.Hour, jwtSecretKey: "test-secret"}
	return &AuthService{sqlSvc: sqlSvc, jwtSvc: jwtSvc}, sqlSvc
}

func TestRegister(t *testing.T) {
	authSvc, sqlSvc := newTestAuthService(t)

	resp, err := authSvc.Register(dto.RegisterRequest{
		Email:    "User@Example.com",
		Username: "johndoe",
		Password: "SecurePass123!",
		FullName: "John Doe",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.UserID)
	assert.Equal(t, "johndoe", resp.Username)

	user, err := sqlSvc.GetUser(resp.UserID)
	require.NoError(t, err)

	// Email is stored lowercased, password never in the clear
	assert.Equal(t, "user@example.com", user.Email)
	assert.NotEqual(t, "SecurePass123!", user.Password)
	assert.True(t, user.IsActive)
}

func TestRegisterDuplicates(t *testing.T) {
	authSvc, _ := newTestAuthService(t)

	req := dto.RegisterRequest{
		Email:    "user@example.com",
		Username: "johndoe",
		Password: "SecurePass123!",
	}
	_, err := authSvc.Register(req)
	require.NoError(t, err)

	t.Run("duplicate email", func(t *testing.T) {
		req2 := req
		req2.Username = "otherusername"
		_, err := authSvc.Register(req2)
		require.Error(t, err)

		appErr, ok := shared.GetAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, appErr.StatusCode)
	})

	t.Run("duplicate email different case", func(t *testing.T) {
		req2 := req
		req2.Email = "USER@example.com"
		req2.Username = "anotherusername"
		_, err := authSvc.Register(req2)
		require.Error(t, err)
	})

	t.Run("duplicate username", func(t *testing.T) {
		req2 := req
		req2.Email = "other@example.com"
		_, err := authSvc.Register(req2)
		require.Error(t, err)

		appErr, ok := shared.GetAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, appErr.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	authSvc, sqlSvc := newTestAuthService(t)

	reg, err := authSvc.Register(dto.RegisterRequest{
		Email:    "user@example.com",
		Username: "johndoe",
		Password: "SecurePass123!",
	})
	require.NoError(t, err)

	t.Run("by email", func(t *testing.T) {
		resp, err := authSvc.Login(dto.LoginRequest{
			EmailOrUsername: "user@example.com",
			Password:        "SecurePass123!",
		}, "10.0.0.1")
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, reg.UserID, resp.User.ID)
	})

	t.Run("by username", func(t *testing.T) {
		resp, err := authSvc.Login(dto.LoginRequest{
			EmailOrUsername: "johndoe",
			Password:        "SecurePass123!",
		}, "10.0.0.1")
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
	})

	t.Run("records last login", func(t *testing.T) {
		user, err := sqlSvc.GetUser(reg.UserID)
		require.NoError(t, err)
		require.NotNil(t, user.LastLoginAt)
		assert.Equal(t, "10.0.0.1", user.LastLoginIP)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := authSvc.Login(dto.LoginRequest{
			EmailOrUsername: "johndoe",
			Password:        "WrongPass123!",
		}, "10.0.0.1")
		require.Error(t, err)

		appErr, ok := shared.GetAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
	})

	t.Run("unknown account gets same error", func(t *testing.T) {
		_, err := authSvc.Login(dto.LoginRequest{
			EmailOrUsername: "nobody",
			Password:        "SecurePass123!",
		}, "10.0.0.1")
		require.Error(t, err)

		appErr, ok := shared.GetAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
		assert.Equal(t, "Invalid credentials", appErr.Message)
	})

	t.Run("failed attempts tracked and reset", func(t *testing.T) {
		_, _ = authSvc.Login(dto.LoginRequest{EmailOrUsername: "johndoe", Password: "bad"}, "10.0.0.1")
		user, err := sqlSvc.GetUser(reg.UserID)
		require.NoError(t, err)
		assert.Greater(t, user.FailedAttempts, 0)

		_, err = authSvc.Login(dto.LoginRequest{EmailOrUsername: "johndoe", Password: "SecurePass123!"}, "10.0.0.1")
		require.NoError(t, err)

		user, err = sqlSvc.GetUser(reg.UserID)
		require.NoError(t, err)
		assert.Equal(t, 0, user.FailedAttempts)
	})
}

func TestLoginDisabledAccount(t *testing.T) {
	authSvc, sqlSvc := newTestAuthService(t)

	reg, err := authSvc.Register(dto.RegisterRequest{
		Email:    "user@example.com",
		Username: "johndoe",
		Password: "SecurePass123!",
	})
	require.NoError(t, err)

	require.NoError(t, sqlSvc.Db().Model(&model.User{}).Where("id = ?", reg.UserID).
		Update("is_active", false).Error)

	_, err = authSvc.Login(dto.LoginRequest{
		EmailOrUsername: "johndoe",
		Password:        "SecurePass123!",
	}, "10.0.0.1")
	require.Error(t, err)

	appErr, ok := shared.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
}

func TestChangePassword(t *testing.T) {
	authSvc, _ := newTestAuthService(t)

	reg, err := authSvc.Register(dto.RegisterRequest{
		Email:    "user@example.com",
		Username: "johndoe",
		Password: "SecurePass123!",
	})
	require.NoError(t, err)

	t.Run("wrong current password", func(t *testing.T) {
		err := authSvc.ChangePassword(reg.UserID, dto.ChangePasswordRequest{
			CurrentPassword: "WrongPass123!",
			NewPassword:     "NewSecure456!",
		})
		require.Error(t, err)
	})

	t.Run("success", func(t *testing.T) {
		err := authSvc.ChangePassword(reg.UserID, dto.ChangePasswordRequest{
			CurrentPassword: "SecurePass123!",
			NewPassword:     "NewSecure456!",
		})
		require.NoError(t, err)

		_, err = authSvc.Login(dto.LoginRequest{
			EmailOrUsername: "johndoe",
			Password:        "NewSecure456!",
		}, "10.0.0.1")
		require.NoError(t, err)

		_, err = authSvc.Login(dto.LoginRequest{
			EmailOrUsername: "johndoe",
			Password:        "SecurePass123!",
		}, "10.0.0.1")
		require.Error(t, err)
	})
}

func TestDeleteAccount(t *testing.T) {
	authSvc, sqlSvc := newTestAuthService(t)
	statsSvc := &StatsService{sqlSvc: sqlSvc}

	reg, err := authSvc.Register(dto.RegisterRequest{
		Email:    "user@example.com",
		Username: "johndoe",
		Password: "SecurePass123!",
	})
	require.NoError(t, err)

	_, err = statsSvc.SubmitScore(reg.UserID, dto.SubmitScoreRequest{
		GameType:   "math_sprint",
		Difficulty: "easy",
		Score:      100,
		Accuracy:   80,
	})
	require.NoError(t, err)

	t.Run("wrong password refused", func(t *testing.T) {
		err := authSvc.DeleteAccount(reg.UserID, "WrongPass123!")
		require.Error(t, err)
	})

	t.Run("cascades scores and stats", func(t *testing.T) {
		require.NoError(t, authSvc.DeleteAccount(reg.UserID, "SecurePass123!"))

		_, err := sqlSvc.GetUser(reg.UserID)
		require.Error(t, err)

		var scores, stats int64
		require.NoError(t, sqlSvc.Db().Model(&model.GameScore{}).Where("user_id = ?", reg.UserID).Count(&scores).Error)
		require.NoError(t, sqlSvc.Db().Model(&model.UserStats{}).Where("user_id = ?", reg.UserID).Count(&stats).Error)
		assert.Equal(t, int64(0), scores)
		assert.Equal(t, int64(0), stats)
	})
}
