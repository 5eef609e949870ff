package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/brainforge-app/forge_api/dto"
)

type AuthServiceInterface interface {
	Register(req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(req dto.LoginRequest, clientIP string) (*dto.LoginResponse, error)
	ChangePassword(userID string, req dto.ChangePasswordRequest) error
	DeleteAccount(userID, password string) error
	RequiredAuth() fiber.Handler
}

type JWTServiceInterface interface {
	ExtractTokenFromHeader(authHeader string) (string, error)
	VerifyJWTToken(token string) (string, error)
}

type UserServiceInterface interface {
	GetProfile(userID string) (*dto.UserProfileResponse, error)
	UpdateProfile(userID string, req dto.UpdateProfileRequest) (*dto.UserProfileResponse, error)
	CheckUsernameAvailability(username string) (*dto.UsernameAvailabilityResponse, error)
	UploadAvatar(userID string, fileHeader *multipart.FileHeader) (*dto.AvatarUploadResponse, error)
}

type StatsServiceInterface interface {
	SubmitScore(userID string, req dto.SubmitScoreRequest) (*dto.GameScoreResponse, error)
	GetUserStats(userID string) (*dto.UserStatsResponse, error)
	GetGameHistory(userID, gameType string, limit int) (*dto.GameHistoryResponse, error)
	GetBestScore(userID, gameType string) (*dto.BestScoreResponse, error)
	GetLeaderboard(limit int) (*dto.LeaderboardResponse, error)
	GetPlatformStats() (*dto.PlatformStatsResponse, error)
}

type MonitoringServiceInterface interface {
	RecordScoreSubmission(gameType, difficulty string, sparks int)
	RecordRegistration()
}
