package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/middleware"
	"github.com/noah-isme/techbridge-api/internal/service"
	"github.com/noah-isme/techbridge-api/internal/utils"
)

// SeedHandler exposes tooling endpoints for loading a demo catalogue.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs a seed handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires seed routes.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/admin/seed", middleware.WithAuth(h.catalogue, middleware.AuthOptions{Role: middleware.AuthRoleAdmin}))
}

func (h *SeedHandler) catalogue(c *fiber.Ctx) error {
	token := c.Get("X-Seed-Token")
	var payload dto.SeedCatalogueRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.SeedCatalogue(requestContext(c), token, payload)
	switch {
	case errors.Is(err, service.ErrSeedDisabled):
		return utils.SendError(c, fiber.StatusForbidden, "seeding disabled")
	case errors.Is(err, service.ErrSeedUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, "invalid token")
	case err != nil:
		return respondError(h.logger, c, err)
	}

	requestLogger(h.logger, c).Info().
		Int64("catalogue", result.Catalogue).
		Int64("students", result.Students).
		Msg("catalogue seeded")

	return utils.SendSuccess(c, "catalogue seeded", fiber.Map{
		"catalogue": result.Catalogue,
		"students":  result.Students,
	})
}
