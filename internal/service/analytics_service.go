package service

import (
	"context"
	"math"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/repository"
)

// AnalyticsService aggregates cohort statistics for course staff.
type AnalyticsService interface {
	Course(ctx context.Context, courseID uint) (dto.CourseAnalyticsResponse, error)
}

type analyticsService struct {
	repos  repository.Repositories
	logger zerolog.Logger
}

// NewAnalyticsService constructs the analytics service.
func NewAnalyticsService(repos repository.Repositories, logger zerolog.Logger) AnalyticsService {
	return &analyticsService{
		repos:  repos,
		logger: logger.With().Str("component", "analytics_service").Logger(),
	}
}

func (s *analyticsService) Course(ctx context.Context, courseID uint) (dto.CourseAnalyticsResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/techbridge-api/internal/service/analytics")
	ctx, span := tracer.Start(ctx, "analytics.course")
	span.SetAttributes(attribute.Int64("analytics.course_id", int64(courseID)))
	defer span.End()

	course, err := s.repos.Courses.GetByID(ctx, courseID)
	if err != nil {
		span.RecordError(err)
		return dto.CourseAnalyticsResponse{}, translateRepoError(err, "course")
	}

	stats, err := s.repos.Enrollments.CourseStats(ctx, courseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "course_stats_failed")
		return dto.CourseAnalyticsResponse{}, translateRepoError(err, "enrollment")
	}

	averageScore, attempts, err := s.repos.Attempts.AverageScoreByCourse(ctx, courseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "quiz_average_failed")
		return dto.CourseAnalyticsResponse{}, translateRepoError(err, "quiz attempt")
	}

	response := dto.CourseAnalyticsResponse{
		CourseID:         course.ID,
		Title:            course.Title,
		Enrolled:         stats.Enrolled,
		Completed:        stats.Completed,
		AverageProgress:  round2(stats.AverageProgress),
		AverageTimeSpent: round2(stats.AverageTimeSpent),
		QuizAttempts:     attempts,
		AverageQuizScore: round2(averageScore),
	}
	if stats.Enrolled > 0 {
		response.CompletionRate = round2(float64(stats.Completed) / float64(stats.Enrolled) * 100)
	}

	s.logger.Debug().Uint("course_id", courseID).Int64("enrolled", stats.Enrolled).Msg("course analytics computed")
	return response, nil
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
