package handler

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/middleware"
	"github.com/noah-isme/techbridge-api/internal/service"
	"github.com/noah-isme/techbridge-api/internal/utils"
)

// SubmissionHandler manages assignment submission and grading endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	student := middleware.AuthOptions{Role: middleware.AuthRoleStudent}
	staff := middleware.AuthOptions{Role: middleware.AuthRoleStaff}

	router.Post("/assignments/:assignmentId/submissions", middleware.WithAuth(h.create, student))
	router.Get("/assignments/:assignmentId/submissions", middleware.WithAuth(h.list, staff))
	router.Patch("/submissions/:submissionId/grade", middleware.WithAuth(h.grade, staff))
	router.Post("/submissions/:submissionId/resubmission", middleware.WithAuth(h.requestResubmission, staff))
	router.Post("/submissions/:submissionId/return", middleware.WithAuth(h.returnSubmission, staff))
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	studentID, ok, err := requireUser(c)
	if !ok {
		return err
	}
	assignmentID, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var (
		payload dto.SubmissionCreateRequest
		files   []*multipart.FileHeader
	)
	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid multipart form")
		}
		if values := form.Value["text_content"]; len(values) > 0 {
			payload.TextContent = values[0]
		}
		files = form.File["files"]
	} else if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Submit(requestContext(c), studentID, assignmentID, payload, files)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission received", submission)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	filter := dto.SubmissionListRequest{AssignmentID: assignmentID}
	studentID, err := parseQueryUint(c, "student_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	filter.StudentID = studentID
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		filter.Status = &status
	}

	submissions, err := h.service.List(requestContext(c), filter)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.OK(c, submissions, "submissions retrieved", fiber.Map{"count": len(submissions)})
}

func (h *SubmissionHandler) grade(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "submissionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmissionGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Grade(requestContext(c), graderFromContext(c), submissionID, payload)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.SendSuccess(c, "submission graded", submission)
}

func (h *SubmissionHandler) requestResubmission(c *fiber.Ctx) error {
	return h.handBack(c, "resubmission requested", h.service.RequestResubmission)
}

func (h *SubmissionHandler) returnSubmission(c *fiber.Ctx) error {
	return h.handBack(c, "submission returned", h.service.Return)
}

type handBackFunc func(ctx context.Context, grader service.Grader, submissionID uint, req dto.SubmissionFeedbackRequest) (dto.SubmissionResponse, error)

func (h *SubmissionHandler) handBack(c *fiber.Ctx, message string, action handBackFunc) error {
	submissionID, err := parseUintParam(c, "submissionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmissionFeedbackRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	submission, err := action(requestContext(c), graderFromContext(c), submissionID, payload)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.SendSuccess(c, message, submission)
}
