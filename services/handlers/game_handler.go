package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/brainforge-app/forge_api/dto"
	"github.com/brainforge-app/forge_api/shared"
)

type GameHandler struct {
	statsSvc      StatsServiceInterface
	monitoringSvc MonitoringServiceInterface
}

func NewGameHandler(statsSvc StatsServiceInterface, monitoringSvc MonitoringServiceInterface) *GameHandler {
	return &GameHandler{
		statsSvc:      statsSvc,
		monitoringSvc: monitoringSvc,
	}
}

// @Summary Submit game score
// @Description Record a completed game session and update cumulative stats
// @Tags game
// @Accept json
// @Produce json
// @Param submitScoreRequest body dto.SubmitScoreRequest true "Game session result"
// @Success 201 {object} shared.Response{data=dto.GameScoreResponse}
// @Security BearerAuth
// @Router /api/v1/games/score [post]
func (h *GameHandler) SubmitScore(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.SubmitScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.statsSvc.SubmitScore(userID, req)
	if err != nil {
		return err
	}

	if h.monitoringSvc != nil {
		h.monitoringSvc.RecordScoreSubmission(resp.GameType, resp.Difficulty, resp.SparksEarned)
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Score submitted successfully", resp)
}

// @Summary Get user stats
// @Description Get the authenticated user's cumulative training stats
// @Tags game
// @Produce json
// @Success 200 {object} shared.Response{data=dto.UserStatsResponse}
// @Security BearerAuth
// @Router /api/v1/stats [get]
func (h *GameHandler) GetStats(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.statsSvc.GetUserStats(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Get game history
// @Description Get recent game sessions, optionally filtered by game type
// @Tags game
// @Produce json
// @Param game_type query string false "Filter by game type"
// @Param limit query int false "Limit results (default 20, max 100)"
// @Success 200 {object} shared.Response{data=dto.GameHistoryResponse}
// @Security BearerAuth
// @Router /api/v1/games/history [get]
func (h *GameHandler) GetHistory(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	limit := 20
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	resp, err := h.statsSvc.GetGameHistory(userID, c.Query("game_type"), limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Get best score
// @Description Get the authenticated user's best score for a game type
// @Tags game
// @Produce json
// @Param gameType path string true "Game type"
// @Success 200 {object} shared.Response{data=dto.BestScoreResponse}
// @Security BearerAuth
// @Router /api/v1/games/best/{gameType} [get]
func (h *GameHandler) GetBestScore(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	gameType := c.Params("gameType")
	if gameType == "" {
		return shared.NewBadRequestError(nil, "Game type is required")
	}

	resp, err := h.statsSvc.GetBestScore(userID, gameType)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}
