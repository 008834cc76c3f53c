package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/techbridge-api/internal/middleware"
	"github.com/noah-isme/techbridge-api/internal/service"
	"github.com/noah-isme/techbridge-api/internal/utils"
)

// StudentDashboardHandler exposes the student dashboard endpoint.
type StudentDashboardHandler struct {
	service service.StudentDashboardService
	logger  zerolog.Logger
}

// NewStudentDashboardHandler creates a new handler instance.
func NewStudentDashboardHandler(service service.StudentDashboardService, logger zerolog.Logger) *StudentDashboardHandler {
	return &StudentDashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "student_dashboard_handler").Logger(),
	}
}

// Register attaches the dashboard endpoint.
func (h *StudentDashboardHandler) Register(router fiber.Router) {
	router.Get("/student/dashboard", middleware.WithAuth(h.getDashboard, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))
}

func (h *StudentDashboardHandler) getDashboard(c *fiber.Ctx) error {
	studentID, ok, err := requireUser(c)
	if !ok {
		return err
	}

	dashboard, err := h.service.GetDashboard(requestContext(c), studentID)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}
