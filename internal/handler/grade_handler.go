package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/middleware"
	"github.com/noah-isme/techbridge-api/internal/service"
	"github.com/noah-isme/techbridge-api/internal/utils"
)

// GradeHandler serves staff-facing course reporting: overall grades, cohort
// analytics and the audit trail.
type GradeHandler struct {
	grades    service.GradeService
	analytics service.AnalyticsService
	activity  service.ActivityService
	logger    zerolog.Logger
}

// NewGradeHandler constructs a grade handler.
func NewGradeHandler(grades service.GradeService, analytics service.AnalyticsService, activity service.ActivityService, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		grades:    grades,
		analytics: analytics,
		activity:  activity,
		logger:    logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register wires the reporting routes.
func (h *GradeHandler) Register(router fiber.Router) {
	staff := middleware.AuthOptions{Role: middleware.AuthRoleStaff}
	router.Get("/courses/:courseId/students/:studentId/grade", middleware.WithAuth(h.overall, staff))
	router.Get("/courses/:courseId/analytics", middleware.WithAuth(h.courseAnalytics, staff))
	router.Get("/courses/:courseId/activity", middleware.WithAuth(h.courseActivity, staff))
}

func (h *GradeHandler) overall(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	grade, err := h.grades.Overall(requestContext(c), studentID, courseID)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.SendSuccess(c, "grade calculated", grade)
}

func (h *GradeHandler) courseAnalytics(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	analytics, err := h.analytics.Course(requestContext(c), courseID)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.SendSuccess(c, "analytics retrieved", analytics)
}

func (h *GradeHandler) courseActivity(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}
	actorID, err := parseQueryUint(c, "actor_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	req := dto.ActivityListRequest{
		Page:     page,
		PageSize: pageSize,
		CourseID: courseID,
		Action:   strings.TrimSpace(c.Query("action")),
	}
	if actorID != nil {
		req.ActorID = *actorID
	}

	result, err := h.activity.List(requestContext(c), req)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.OK(c, result.Items, "activity retrieved", result.Pagination)
}
