package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/brainforge-app/forge_api/shared"
)

type LeaderboardHandler struct {
	statsSvc StatsServiceInterface
}

func NewLeaderboardHandler(statsSvc StatsServiceInterface) *LeaderboardHandler {
	return &LeaderboardHandler{statsSvc: statsSvc}
}

// @Summary Get leaderboard
// @Description Get the top players ranked by mind rating
// @Tags leaderboard
// @Produce json
// @Param limit query int false "Limit results (default 10, max 100)"
// @Success 200 {object} shared.Response{data=dto.LeaderboardResponse}
// @Router /api/v1/leaderboard [get]
func (h *LeaderboardHandler) GetLeaderboard(c *fiber.Ctx) error {
	limit := 10
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	resp, err := h.statsSvc.GetLeaderboard(limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Get platform stats
// @Description Get public aggregate counters for the landing page
// @Tags leaderboard
// @Produce json
// @Success 200 {object} shared.Response{data=dto.PlatformStatsResponse}
// @Router /api/v1/platform/stats [get]
func (h *LeaderboardHandler) GetPlatformStats(c *fiber.Ctx) error {
	resp, err := h.statsSvc.GetPlatformStats()
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}
