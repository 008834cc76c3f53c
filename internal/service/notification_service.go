package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/models"
	"github.com/noah-isme/techbridge-api/internal/observability"
	"github.com/noah-isme/techbridge-api/internal/repository"
	appErrors "github.com/noah-isme/techbridge-api/pkg/errors"
)

// Domain event types.
const (
	EventCertificateIssued     = "certificate.issued"
	EventQuizGraded            = "quiz.graded"
	EventAssignmentGraded      = "assignment.graded"
	EventSubmissionReturned    = "assignment.returned"
	EventResubmissionRequested = "assignment.resubmission_requested"
)

// Event is a domain fact delivered to the affected student and to downstream consumers
// such as the certificate renderer.
type Event struct {
	Type       string                 `json:"type"`
	StudentID  uint                   `json:"student_id"`
	CourseID   uint                   `json:"course_id"`
	Message    string                 `json:"message"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// EventPublisher hands domain events to the brokers. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

// NotificationService stores events as student notifications and fans them out
// over Redis pub/sub and NATS.
type NotificationService interface {
	EventPublisher
	List(ctx context.Context, userID uint, limit, offset int) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id, userID uint) (dto.NotificationResponse, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
}

type notificationService struct {
	repo         repository.NotificationRepository
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	tracer       trace.Tracer
	sanitizer    *bluemonday.Policy
	nodeID       string
	now          func() time.Time
}

type eventEnvelope struct {
	Source         string    `json:"source"`
	NotificationID uint      `json:"notification_id,omitempty"`
	Event          Event     `json:"event"`
	SentAt         time.Time `json:"sent_at"`
}

// NewNotificationService constructs a notification service. Either broker may be nil.
func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) NotificationService {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &notificationService{
		repo:         repo,
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "notification_service").Logger(),
		tracer:       otel.Tracer("github.com/noah-isme/techbridge-api/internal/service/notification"),
		sanitizer:    bluemonday.StrictPolicy(),
		nodeID:       uuid.NewString(),
		now:          utcNow,
	}
}

func (s *notificationService) Publish(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	event.Message = strings.TrimSpace(s.sanitizer.Sanitize(event.Message))

	spanCtx, span := s.tracer.Start(ctx, "events.publish", trace.WithAttributes(
		attribute.String("event.type", event.Type),
		attribute.Int64("event.student_id", int64(event.StudentID)),
	))
	defer span.End()

	envelope := eventEnvelope{Source: s.nodeID, Event: event, SentAt: s.now()}

	if event.StudentID != 0 && event.Message != "" {
		notification := models.Notification{
			UserID:  event.StudentID,
			Type:    event.Type,
			Message: event.Message,
			Payload: datatypes.JSONMap(event.Payload),
		}
		if err := s.repo.Create(spanCtx, &notification); err != nil {
			span.RecordError(err)
			s.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to store notification")
		} else {
			envelope.NotificationID = notification.ID
		}
	}

	if err := s.broadcast(spanCtx, event.Type, envelope); err != nil {
		span.RecordError(err)
		s.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to publish event to broker")
		return
	}

	observability.EventsPublished().WithLabelValues(event.Type).Inc()
}

func (s *notificationService) broadcast(ctx context.Context, eventType string, envelope eventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject+"."+eventType, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *notificationService) List(ctx context.Context, userID uint, limit, offset int) ([]dto.NotificationResponse, error) {
	if userID == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}

	notifications, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, translateRepoError(err, "notification")
	}

	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID uint) (dto.NotificationResponse, error) {
	spanCtx, span := s.tracer.Start(ctx, "notifications.mark_read", trace.WithAttributes(
		attribute.Int64("notification.user_id", int64(userID)),
	))
	defer span.End()

	notification, err := s.repo.MarkRead(spanCtx, id, userID)
	if err != nil {
		span.RecordError(err)
		return dto.NotificationResponse{}, translateRepoError(err, "notification")
	}

	return dto.NewNotificationResponse(notification), nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, translateRepoError(err, "notification")
	}
	return count, nil
}
