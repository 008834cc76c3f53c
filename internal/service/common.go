package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/techbridge-api/internal/grading"
	"github.com/noah-isme/techbridge-api/internal/models"
	appErrors "github.com/noah-isme/techbridge-api/pkg/errors"
)

// Policy holds the grading defaults applied when authored content leaves a field unset.
type Policy struct {
	Quiz               models.QuizRules
	Late               models.LatePolicy
	QuizPassBonus      int
	LessonBonus        int
	UnenrollThreshold  int
	MaxAttachmentBytes int64
}

// DefaultPolicy mirrors the configuration defaults.
func DefaultPolicy() Policy {
	return Policy{
		Quiz: models.QuizRules{
			PassingScore: 60,
			Attempts:     grading.AttemptPolicy{MaxAttempts: 3, CooldownHours: 24},
		},
		Late:               models.LatePolicy{PenaltyPerDay: 10, MaxLateDays: 7},
		QuizPassBonus:      20,
		LessonBonus:        10,
		UnenrollThreshold:  50,
		MaxAttachmentBytes: 10 << 20,
	}
}

// SideEffects are the collaborators notified after a write commits. Any of them
// may be nil; failures are logged and never fail the request.
type SideEffects struct {
	Points   PointsAwarder
	Events   EventPublisher
	Activity ActivityRecorder
	Cache    CacheInvalidator
}

func (e SideEffects) award(ctx context.Context, studentID uint, points int, reason string) int {
	if e.Points == nil || points <= 0 {
		return 0
	}
	return e.Points.Award(ctx, studentID, points, reason)
}

func (e SideEffects) publish(ctx context.Context, event Event) {
	if e.Events != nil {
		e.Events.Publish(ctx, event)
	}
}

func (e SideEffects) record(ctx context.Context, entry ActivityEntry) {
	if e.Activity != nil {
		_, _ = e.Activity.Record(ctx, entry)
	}
}

func (e SideEffects) invalidate(ctx context.Context, studentID, courseID uint) {
	if e.Cache != nil {
		e.Cache.Invalidate(ctx, studentID, courseID)
	}
}

// translateRepoError maps persistence errors onto the error taxonomy.
func translateRepoError(err error, entity string) error {
	if err == nil {
		return nil
	}

	var appErr *appErrors.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return appErrors.NotFound(entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		conflict := appErrors.Clone(appErrors.ErrConcurrentWrite, "")
		conflict.Err = err
		return conflict
	default:
		return appErrors.Internal(err, "failed to load "+entity)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func utcNow() time.Time {
	return time.Now().UTC()
}
