package services

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/brainforge-app/forge_api/dto"
	"github.com/brainforge-app/forge_api/shared"
)

// AuthService owns account lifecycle and credential checks. Password hashes
// never leave this layer.
type AuthService struct {
	context.DefaultService

	sqlSvc *SqlService
	jwtSvc *JWTService
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.sqlSvc = svc.Service(SQL_SVC).(*SqlService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	return nil
}

// Register creates a new account after uniqueness checks on email and
// username. The database unique indexes are the final arbiter under races.
func (svc *AuthService) Register(req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	emailAvailable, err := svc.sqlSvc.IsEmailAvailable(req.Email)
	if err != nil {
		return nil, err
	}
	if !emailAvailable {
		return nil, shared.NewConflictError(nil, "Email already registered")
	}

	usernameAvailable, err := svc.sqlSvc.IsUsernameAvailable(req.Username)
	if err != nil {
		return nil, err
	}
	if !usernameAvailable {
		return nil, shared.NewConflictError(nil, "Username already taken")
	}

	user, err := svc.sqlSvc.CreateUser(req)
	if err != nil {
		if appErr, ok := shared.GetAppError(err); ok && appErr.StatusCode == http.StatusConflict {
			return nil, shared.NewConflictError(appErr.Err, "Email or username already registered")
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")

	return &dto.RegisterResponse{
		UserID:   user.ID,
		Username: user.Username,
		Message:  "Registration successful",
	}, nil
}

// Login verifies credentials and issues an access token. Failures are
// deliberately indistinguishable between unknown account and wrong password.
func (svc *AuthService) Login(req dto.LoginRequest, clientIP string) (*dto.LoginResponse, error) {
	user, err := svc.sqlSvc.GetUserByEmailOrUsername(req.EmailOrUsername)
	if err != nil {
		if appErr, ok := shared.GetAppError(err); ok && appErr.StatusCode == http.StatusNotFound {
			return nil, shared.NewUnauthorizedError(nil, "Invalid credentials")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, shared.NewUnauthorizedError(nil, "Account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		if incErr := svc.sqlSvc.IncrementFailedAttempts(user.ID); incErr != nil {
			log.WithError(incErr).WithField("user_id", user.ID).Warn("Failed to record failed login attempt")
		}
		return nil, shared.NewUnauthorizedError(nil, "Invalid credentials")
	}

	tokens, err := svc.jwtSvc.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to generate token")
	}

	if err := svc.sqlSvc.ResetFailedAttempts(user.ID); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to reset failed attempts")
	}
	if err := svc.sqlSvc.UpdateLastLogin(user.ID, clientIP); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to update last login")
	}

	log.WithFields(log.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User logged in")

	return &dto.LoginResponse{
		AccessToken: tokens.AccessToken,
		ExpiresIn:   tokens.ExpiresIn,
		User: dto.UserInfo{
			ID:          user.ID,
			Username:    user.Username,
			Email:       user.Email,
			FullName:    user.FullName,
			CreatedAt:   user.CreatedAt,
			LastLoginAt: user.LastLoginAt,
		},
	}, nil
}

// ChangePassword rotates the password after re-verifying the current one.
func (svc *AuthService) ChangePassword(userID string, req dto.ChangePasswordRequest) error {
	user, err := svc.sqlSvc.GetUser(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return shared.NewUnauthorizedError(nil, "Current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return shared.NewInternalError(err, "Failed to hash password")
	}

	if err := svc.sqlSvc.UpdateUserPassword(userID, string(hashed)); err != nil {
		return err
	}

	log.WithField("user_id", userID).Info("Password changed")
	return nil
}

// DeleteAccount removes the user after a password confirmation.
func (svc *AuthService) DeleteAccount(userID, password string) error {
	user, err := svc.sqlSvc.GetUser(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return shared.NewUnauthorizedError(nil, "Password is incorrect")
	}

	if err := svc.sqlSvc.DeleteUser(userID); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"username": user.Username,
	}).Info("Account deleted")
	return nil
}

// RequiredAuth guards a route group. On success the user id is stashed in the
// request locals under shared.UserID.
func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := svc.jwtSvc.ExtractTokenFromHeader(c.Get("Authorization"))
		if err != nil {
			return shared.ResponseJSON(c, 401, "Authentication required", nil)
		}

		userID, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil {
			return shared.ResponseJSON(c, 401, "Invalid or expired token", nil)
		}

		c.Locals(shared.UserID, userID)
		return c.Next()
	}
}
