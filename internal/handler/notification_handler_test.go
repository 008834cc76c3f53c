package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/handler"
	"github.com/noah-isme/techbridge-api/internal/service"
	appErrors "github.com/noah-isme/techbridge-api/pkg/errors"
)

type stubNotificationService struct {
	lastUser          uint
	lastLimit, offset int
	published         []service.Event
}

func (s *stubNotificationService) Publish(_ context.Context, event service.Event) {
	s.published = append(s.published, event)
}

func (s *stubNotificationService) List(_ context.Context, userID uint, limit, offset int) ([]dto.NotificationResponse, error) {
	s.lastUser, s.lastLimit, s.offset = userID, limit, offset
	return []dto.NotificationResponse{{ID: 3, UserID: userID, Type: service.EventQuizGraded}}, nil
}

func (s *stubNotificationService) MarkRead(_ context.Context, id, userID uint) (dto.NotificationResponse, error) {
	if id != 3 {
		return dto.NotificationResponse{}, appErrors.NotFound("notification")
	}
	return dto.NotificationResponse{ID: id, UserID: userID, Read: true}, nil
}

func (s *stubNotificationService) UnreadCount(context.Context, uint) (int64, error) {
	return 4, nil
}

var _ service.NotificationService = (*stubNotificationService)(nil)

func TestNotificationHandler_ListAndMarkRead(t *testing.T) {
	svc := &stubNotificationService{}
	app := newTestApp(7, "student", handler.NewNotificationHandler(svc, zerolog.Nop()).Register)

	resp, payload := doRequest(t, app, http.MethodGet, "/api/v2/notifications?limit=5&offset=10", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, float64(4), payload.Meta["unread"])
	require.Equal(t, uint(7), svc.lastUser)
	require.Equal(t, 5, svc.lastLimit)
	require.Equal(t, 10, svc.offset)

	resp, payload = doRequest(t, app, http.MethodPatch, "/api/v2/notifications/3/read", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var notification dto.NotificationResponse
	decodeData(t, payload, &notification)
	require.True(t, notification.Read)

	resp, _ = doRequest(t, app, http.MethodPatch, "/api/v2/notifications/4/read", nil, "")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/v2/notifications?limit=abc", nil, "")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestNotificationHandler_RequiresUser(t *testing.T) {
	app := newTestApp(0, "", handler.NewNotificationHandler(&stubNotificationService{}, zerolog.Nop()).Register)

	resp, _ := doRequest(t, app, http.MethodGet, "/api/v2/notifications", nil, "")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
