package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/brainforge-app/forge_api/dto"
	"github.com/brainforge-app/forge_api/shared"
)

type AuthHandler struct {
	authSvc       AuthServiceInterface
	monitoringSvc MonitoringServiceInterface
}

func NewAuthHandler(authSvc AuthServiceInterface, monitoringSvc MonitoringServiceInterface) *AuthHandler {
	return &AuthHandler{
		authSvc:       authSvc,
		monitoringSvc: monitoringSvc,
	}
}

// @Summary Register a new user
// @Description Create a new user account
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body dto.RegisterRequest true "Registration details"
// @Success 201 {object} shared.Response{data=dto.RegisterResponse}
// @Router /api/v1/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.authSvc.Register(req)
	if err != nil {
		return err
	}

	if h.monitoringSvc != nil {
		h.monitoringSvc.RecordRegistration()
	}

	return shared.ResponseJSON(c, http.StatusCreated, "User registered successfully", resp)
}

// @Summary Login user
// @Description Authenticate user and return access token
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body dto.LoginRequest true "Login credentials"
// @Success 200 {object} shared.Response{data=dto.LoginResponse}
// @Router /api/v1/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.authSvc.Login(req, c.IP())
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Login successful", resp)
}

// @Summary Change password
// @Description Change the password of the authenticated user
// @Tags auth
// @Accept json
// @Produce json
// @Param changePasswordRequest body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} shared.Response
// @Security BearerAuth
// @Router /api/v1/password/change [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	if err := h.authSvc.ChangePassword(userID, req); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Password changed successfully", nil)
}

// @Summary Delete account
// @Description Permanently delete the authenticated user's account and all associated data
// @Tags auth
// @Accept json
// @Produce json
// @Param deleteAccountRequest body dto.DeleteAccountRequest true "Password confirmation"
// @Success 200 {object} shared.Response
// @Security BearerAuth
// @Router /api/v1/account [delete]
func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	if err := h.authSvc.DeleteAccount(userID, req.Password); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Account deleted successfully", nil)
}
