package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/grading"
	"github.com/noah-isme/techbridge-api/internal/repository"
)

// GradeService computes blended course grades on demand.
type GradeService interface {
	Overall(ctx context.Context, studentID, courseID uint) (dto.GradeResponse, error)
}

type gradeService struct {
	repos  repository.Repositories
	cache  jsonCache
	logger zerolog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewGradeService builds the grade aggregator. A nil cache client disables caching.
func NewGradeService(repos repository.Repositories, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) GradeService {
	logger = logger.With().Str("component", "grade_service").Logger()
	return &gradeService{
		repos:  repos,
		cache:  jsonCache{name: "grade", client: cache, ttl: ttl, logger: logger},
		logger: logger,
		tracer: otel.Tracer("github.com/noah-isme/techbridge-api/internal/service/grade"),
		now:    utcNow,
	}
}

func (s *gradeService) Overall(ctx context.Context, studentID, courseID uint) (dto.GradeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grade.aggregate", trace.WithAttributes(
		attribute.Int64("grade.student_id", int64(studentID)),
		attribute.Int64("grade.course_id", int64(courseID)),
	))
	defer span.End()

	key := gradeCacheKey(studentID, courseID)
	var cached dto.GradeResponse
	if s.cache.get(ctx, key, &cached) {
		span.SetAttributes(attribute.Bool("grade.cache_hit", true))
		return cached, nil
	}

	if _, err := s.repos.Courses.GetByID(ctx, courseID); err != nil {
		span.RecordError(err)
		return dto.GradeResponse{}, translateRepoError(err, "course")
	}

	attempts, err := s.repos.Attempts.ListPassedByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_attempts_failed")
		return dto.GradeResponse{}, translateRepoError(err, "quiz attempt")
	}

	submissions, err := s.repos.Submissions.ListGradedByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_submissions_failed")
		return dto.GradeResponse{}, translateRepoError(err, "submission")
	}

	participation, err := s.repos.Forum.Participation(ctx, studentID, courseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "participation_failed")
		return dto.GradeResponse{}, translateRepoError(err, "forum")
	}

	inputs := grading.GradeInputs{
		QuizScores:       make([]int, 0, len(attempts)),
		AssignmentScores: make([]int, 0, len(submissions)),
		Posts:            participation.Posts,
		Replies:          participation.Replies,
	}
	for _, attempt := range attempts {
		inputs.QuizScores = append(inputs.QuizScores, attempt.Score)
	}
	for _, submission := range submissions {
		if submission.IsGraded() {
			inputs.AssignmentScores = append(inputs.AssignmentScores, *submission.AdjustedScore)
		}
	}

	breakdown := grading.Aggregate(inputs)
	span.SetAttributes(attribute.Int("grade.final", breakdown.FinalGrade))

	response := dto.NewGradeResponse(studentID, courseID, breakdown, s.now())
	s.cache.set(ctx, key, response)

	return response, nil
}
