package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/brainforge-app/forge_api/dto"
	"github.com/brainforge-app/forge_api/shared"
)

type UserHandler struct {
	userSvc UserServiceInterface
}

func NewUserHandler(userSvc UserServiceInterface) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// @Summary Get profile
// @Description Get the authenticated user's profile
// @Tags user
// @Produce json
// @Success 200 {object} shared.Response{data=dto.UserProfileResponse}
// @Security BearerAuth
// @Router /api/v1/profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.userSvc.GetProfile(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Update profile
// @Description Update username, email or full name
// @Tags user
// @Accept json
// @Produce json
// @Param updateProfileRequest body dto.UpdateProfileRequest true "Fields to update"
// @Success 200 {object} shared.Response{data=dto.UserProfileResponse}
// @Security BearerAuth
// @Router /api/v1/profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.userSvc.UpdateProfile(userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Profile updated successfully", resp)
}

// @Summary Check username availability
// @Description Check whether a username is free to register
// @Tags user
// @Produce json
// @Param username path string true "Username to check"
// @Success 200 {object} shared.Response{data=dto.UsernameAvailabilityResponse}
// @Router /api/v1/username/check/{username} [get]
func (h *UserHandler) CheckUsername(c *fiber.Ctx) error {
	username := c.Params("username")
	if username == "" {
		return shared.NewBadRequestError(nil, "Username is required")
	}

	resp, err := h.userSvc.CheckUsernameAvailability(username)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Upload avatar
// @Description Upload a profile image (JPEG, PNG or WebP, max 5MB)
// @Tags user
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} shared.Response{data=dto.AvatarUploadResponse}
// @Security BearerAuth
// @Router /api/v1/profile/avatar [post]
func (h *UserHandler) UploadAvatar(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return shared.NewBadRequestError(err, "Avatar file is required")
	}

	resp, err := h.userSvc.UploadAvatar(userID, fileHeader)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Avatar uploaded successfully", resp)
}
