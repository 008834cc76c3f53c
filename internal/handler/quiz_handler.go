package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/middleware"
	"github.com/noah-isme/techbridge-api/internal/service"
	"github.com/noah-isme/techbridge-api/internal/utils"
)

// QuizHandler exposes quiz overview and attempt endpoints.
type QuizHandler struct {
	service       service.QuizService
	submitLimiter fiber.Handler
	logger        zerolog.Logger
}

// NewQuizHandler constructs a quiz handler. submitLimiter may be nil.
func NewQuizHandler(service service.QuizService, submitLimiter fiber.Handler, logger zerolog.Logger) *QuizHandler {
	if submitLimiter == nil {
		submitLimiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &QuizHandler{
		service:       service,
		submitLimiter: submitLimiter,
		logger:        logger.With().Str("component", "quiz_handler").Logger(),
	}
}

// Register wires the quiz routes.
func (h *QuizHandler) Register(router fiber.Router) {
	student := middleware.AuthOptions{Role: middleware.AuthRoleStudent}
	router.Get("/quizzes/:quizId", middleware.WithAuth(h.overview, student))
	router.Post("/quizzes/:quizId/attempts", h.submitLimiter, middleware.WithAuth(h.submit, student))
	router.Get("/quizzes/:quizId/attempts", middleware.WithAuth(h.listAttempts, student))
}

func (h *QuizHandler) overview(c *fiber.Ctx) error {
	studentID, ok, err := requireUser(c)
	if !ok {
		return err
	}
	quizID, err := parseUintParam(c, "quizId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	overview, err := h.service.Overview(requestContext(c), studentID, quizID)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.SendSuccess(c, "quiz retrieved", overview)
}

func (h *QuizHandler) submit(c *fiber.Ctx) error {
	studentID, ok, err := requireUser(c)
	if !ok {
		return err
	}
	quizID, err := parseUintParam(c, "quizId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.QuizSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Submit(requestContext(c), studentID, quizID, payload)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	requestLogger(h.logger, c).Info().
		Uint("student_id", studentID).
		Uint("quiz_id", quizID).
		Int("score", result.Attempt.Score).
		Bool("passed", result.Attempt.Passed).
		Msg("quiz attempt recorded")

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "quiz attempt graded", result)
}

func (h *QuizHandler) listAttempts(c *fiber.Ctx) error {
	studentID, ok, err := requireUser(c)
	if !ok {
		return err
	}
	quizID, err := parseUintParam(c, "quizId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	attempts, err := h.service.ListAttempts(requestContext(c), studentID, quizID)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.OK(c, attempts, "attempts retrieved", fiber.Map{"count": len(attempts)})
}
