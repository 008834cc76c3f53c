package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/techbridge-api/internal/middleware"
	"github.com/noah-isme/techbridge-api/internal/service"
	"github.com/noah-isme/techbridge-api/internal/utils"
)

// CertificateHandler lists earned certificates and verifies certificate ids.
type CertificateHandler struct {
	service service.CertificateService
	logger  zerolog.Logger
}

// NewCertificateHandler constructs a certificate handler.
func NewCertificateHandler(service service.CertificateService, logger zerolog.Logger) *CertificateHandler {
	return &CertificateHandler{
		service: service,
		logger:  logger.With().Str("component", "certificate_handler").Logger(),
	}
}

// Register wires the authenticated certificate routes.
func (h *CertificateHandler) Register(router fiber.Router) {
	router.Get("/certificates", middleware.WithAuth(h.list, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))
}

// RegisterPublic wires the unauthenticated verification route.
func (h *CertificateHandler) RegisterPublic(router fiber.Router) {
	router.Get("/certificates/:certificateId/verify", h.verify)
}

func (h *CertificateHandler) list(c *fiber.Ctx) error {
	studentID, ok, err := requireUser(c)
	if !ok {
		return err
	}

	certificates, err := h.service.List(requestContext(c), studentID)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.OK(c, certificates, "certificates retrieved", fiber.Map{"count": len(certificates)})
}

func (h *CertificateHandler) verify(c *fiber.Ctx) error {
	certificateID := strings.TrimSpace(c.Params("certificateId"))
	if certificateID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "certificate id required")
	}

	verification, err := h.service.Verify(requestContext(c), certificateID)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.SendSuccess(c, "certificate verified", verification)
}
