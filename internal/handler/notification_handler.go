package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/techbridge-api/internal/middleware"
	"github.com/noah-isme/techbridge-api/internal/service"
	"github.com/noah-isme/techbridge-api/internal/utils"
)

// NotificationHandler lists and acknowledges stored student notifications.
type NotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
}

// NewNotificationHandler constructs a handler instance.
func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("component", "notification_handler").Logger(),
	}
}

// Register binds the notification routes.
func (h *NotificationHandler) Register(router fiber.Router) {
	authenticated := middleware.AuthOptions{RequireUser: true}
	router.Get("/notifications", middleware.WithAuth(h.list, authenticated))
	router.Patch("/notifications/:id/read", middleware.WithAuth(h.markRead, authenticated))
}

func (h *NotificationHandler) list(c *fiber.Ctx) error {
	userID, ok, err := requireUser(c)
	if !ok {
		return err
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	notifications, err := h.service.List(requestContext(c), userID, limit, offset)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	unread, err := h.service.UnreadCount(requestContext(c), userID)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.OK(c, notifications, "notifications", fiber.Map{"limit": limit, "offset": offset, "unread": unread})
}

func (h *NotificationHandler) markRead(c *fiber.Ctx) error {
	userID, ok, err := requireUser(c)
	if !ok {
		return err
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid notification id")
	}

	notification, err := h.service.MarkRead(requestContext(c), id, userID)
	if err != nil {
		return respondError(h.logger, c, err)
	}

	return utils.SendSuccess(c, "notification updated", notification)
}
