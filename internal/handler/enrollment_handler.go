package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/middleware"
	"github.com/noah-isme/techbridge-api/internal/service"
	"github.com/noah-isme/techbridge-api/internal/utils"
)

// EnrollmentHandler exposes enrollment and lesson progress endpoints.
type EnrollmentHandler struct {
	service service.EnrollmentService
	logger  zerolog.Logger
}

// NewEnrollmentHandler constructs an enrollment handler.
func NewEnrollmentHandler(service service.EnrollmentService, logger zerolog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		logger:  logger.With().Str("component", "enrollment_handler").Logger(),
	}
}

// Register wires the enrollment routes.
func (h *EnrollmentHandler) Register(router fiber.Router) {
	student := middleware.AuthOptions{Role: middleware.AuthRoleStudent}
	router.Post("/courses/:courseId/enrollment", middleware.WithAuth(h.enroll, student))
	router.Delete("/courses/:courseId/enrollment", middleware.WithAuth(h.unenroll, student))
	router.Get("/courses/:courseId/progress", middleware.WithAuth(h.progress, student))
	router.Get("/progress", middleware.WithAuth(h.listProgress, student))
	router.Post("/lessons/:lessonId/complete", middleware.WithAuth(h.completeLesson, student))
}

func (h *EnrollmentHandler) enroll(c *fiber.Ctx) error {
	studentID, ok, err := requireUser(c)
	if !ok {
		return err
	}
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	enrollment, err := h.service.Enroll(requestContext(c), studentID, courseID)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "enrolled", enrollment)
}

func (h *EnrollmentHandler) unenroll(c *fiber.Ctx) error {
	studentID, ok, err := requireUser(c)
	if !ok {
		return err
	}
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Unenroll(requestContext(c), studentID, courseID); err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.SendSuccess(c, "unenrolled", fiber.Map{"course_id": courseID})
}

func (h *EnrollmentHandler) progress(c *fiber.Ctx) error {
	studentID, ok, err := requireUser(c)
	if !ok {
		return err
	}
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	progress, err := h.service.Progress(requestContext(c), studentID, courseID)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.SendSuccess(c, "progress retrieved", progress)
}

func (h *EnrollmentHandler) listProgress(c *fiber.Ctx) error {
	studentID, ok, err := requireUser(c)
	if !ok {
		return err
	}

	items, err := h.service.ListProgress(requestContext(c), studentID)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.OK(c, items, "progress retrieved", fiber.Map{"count": len(items)})
}

func (h *EnrollmentHandler) completeLesson(c *fiber.Ctx) error {
	studentID, ok, err := requireUser(c)
	if !ok {
		return err
	}
	lessonID, err := parseUintParam(c, "lessonId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.LessonCompleteRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	result, err := h.service.CompleteLesson(requestContext(c), studentID, lessonID, payload)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	message := "lesson completed"
	if result.AlreadyCompleted {
		message = "lesson already completed"
	}
	return utils.SendSuccess(c, message, result)
}
