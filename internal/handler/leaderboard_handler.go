package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/techbridge-api/internal/middleware"
	"github.com/noah-isme/techbridge-api/internal/service"
	"github.com/noah-isme/techbridge-api/internal/utils"
)

// LeaderboardHandler ranks students by accumulated points.
type LeaderboardHandler struct {
	service service.PointsService
	logger  zerolog.Logger
}

// NewLeaderboardHandler constructs a leaderboard handler.
func NewLeaderboardHandler(service service.PointsService, logger zerolog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
		logger:  logger.With().Str("component", "leaderboard_handler").Logger(),
	}
}

// Register wires the leaderboard route.
func (h *LeaderboardHandler) Register(router fiber.Router) {
	router.Get("/leaderboard", middleware.WithAuth(h.list, middleware.AuthOptions{RequireUser: true}))
}

func (h *LeaderboardHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	entries, err := h.service.Leaderboard(requestContext(c), limit)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.OK(c, entries, "leaderboard retrieved", fiber.Map{"count": len(entries)})
}
