package dto

import "time"

// User Profile DTOs
type UpdateProfileRequest struct {
	Username string `json:"username,omitempty" validate:"omitempty,min=3,max=30,alphanum" example:"newusername"`
	Email    string `json:"email,omitempty" validate:"omitempty,email" example:"newemail@example.com"`
	FullName string `json:"full_name,omitempty" validate:"omitempty,max=100" example:"New Name"`
}

func (u UpdateProfileRequest) Validate() error {
	return GetValidator().Struct(u)
}

type UserProfileResponse struct {
	ID          string     `json:"id" example:"0190b2c3-usr"`
	Username    string     `json:"username" example:"johndoe"`
	Email       string     `json:"email" example:"user@example.com"`
	FullName    string     `json:"full_name,omitempty" example:"John Doe"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	IsActive    bool       `json:"is_active" example:"true"`
	CreatedAt   time.Time  `json:"created_at" example:"2023-01-01T00:00:00Z"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" example:"2023-01-15T10:30:00Z"`
}

type AvatarUploadResponse struct {
	AvatarURL string `json:"avatar_url"`
	Size      int64  `json:"size" example:"24576"`
}

type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required" example:"SecurePass123!"`
}

func (d DeleteAccountRequest) Validate() error {
	return GetValidator().Struct(d)
}

type UsernameAvailabilityResponse struct {
	Username  string `json:"username" example:"johndoe"`
	Available bool   `json:"available" example:"true"`
}
