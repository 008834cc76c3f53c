package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/grading"
	"github.com/noah-isme/techbridge-api/internal/models"
	"github.com/noah-isme/techbridge-api/internal/observability"
	"github.com/noah-isme/techbridge-api/internal/repository"
	appErrors "github.com/noah-isme/techbridge-api/pkg/errors"
)

// QuizService validates attempt eligibility, grades attempts and folds the result into progress.
type QuizService interface {
	Overview(ctx context.Context, studentID, quizID uint) (dto.QuizOverviewResponse, error)
	Submit(ctx context.Context, studentID, quizID uint, req dto.QuizSubmitRequest) (dto.QuizSubmissionResponse, error)
	ListAttempts(ctx context.Context, studentID, quizID uint) ([]dto.QuizAttemptResponse, error)
}

type quizService struct {
	repos     repository.Repositories
	uow       repository.UnitOfWork
	validator *validator.Validate
	policy    Policy
	effects   SideEffects
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewQuizService constructs the quiz attempt service.
func NewQuizService(repos repository.Repositories, uow repository.UnitOfWork, validate *validator.Validate, policy Policy, effects SideEffects, logger zerolog.Logger) QuizService {
	return &quizService{
		repos:     repos,
		uow:       uow,
		validator: validate,
		policy:    policy,
		effects:   effects,
		logger:    logger.With().Str("component", "quiz_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/techbridge-api/internal/service/quiz"),
		now:       utcNow,
	}
}

func (s *quizService) loadQuiz(ctx context.Context, repos repository.Repositories, quizID uint) (models.Quiz, error) {
	quiz, err := repos.Quizzes.GetWithQuestions(ctx, quizID)
	if err != nil {
		return models.Quiz{}, translateRepoError(err, "quiz")
	}
	if !quiz.IsPublished {
		return models.Quiz{}, appErrors.NotFound("quiz")
	}
	return quiz, nil
}

func (s *quizService) Overview(ctx context.Context, studentID, quizID uint) (dto.QuizOverviewResponse, error) {
	quiz, err := s.loadQuiz(ctx, s.repos, quizID)
	if err != nil {
		return dto.QuizOverviewResponse{}, err
	}

	attempts, err := s.repos.Attempts.ListByStudentAndQuiz(ctx, studentID, quizID)
	if err != nil {
		return dto.QuizOverviewResponse{}, translateRepoError(err, "quiz attempt")
	}

	rules := quiz.Rules(s.policy.Quiz)
	eligibility := grading.CanAttempt(priorAttempts(attempts), rules.Attempts, s.now())

	response := dto.QuizOverviewResponse{
		ID:                quiz.ID,
		CourseID:          quiz.CourseID,
		Title:             quiz.Title,
		Description:       quiz.Description,
		PassingScore:      rules.PassingScore,
		MaxAttempts:       rules.Attempts.MaxAttempts,
		CooldownHours:     rules.Attempts.CooldownHours,
		TimeLimitMinutes:  quiz.TimeLimitMinutes,
		AttemptsUsed:      eligibility.AttemptsUsed,
		AttemptsRemaining: eligibility.AttemptsRemaining,
		CanAttempt:        eligibility.Allowed,
		Reason:            eligibility.Reason,
		HoursRemaining:    eligibility.HoursRemaining,
		Questions:         dto.NewQuizQuestionViews(quiz.OrderedQuestions()),
	}

	for _, attempt := range attempts {
		if response.BestScore == nil || attempt.Score > *response.BestScore {
			score := attempt.Score
			response.BestScore = &score
		}
	}
	if eligibility.Reason == grading.ReasonCooldown {
		next := s.now().Add(eligibility.RetryAfter)
		response.NextAttemptAt = &next
	}

	return response, nil
}

func (s *quizService) ListAttempts(ctx context.Context, studentID, quizID uint) ([]dto.QuizAttemptResponse, error) {
	if _, err := s.loadQuiz(ctx, s.repos, quizID); err != nil {
		return nil, err
	}

	attempts, err := s.repos.Attempts.ListByStudentAndQuiz(ctx, studentID, quizID)
	if err != nil {
		return nil, translateRepoError(err, "quiz attempt")
	}

	return dto.NewQuizAttemptResponseSlice(attempts), nil
}

func (s *quizService) Submit(ctx context.Context, studentID, quizID uint, req dto.QuizSubmitRequest) (dto.QuizSubmissionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.QuizSubmissionResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "quiz.submit", trace.WithAttributes(
		attribute.Int64("quiz.id", int64(quizID)),
		attribute.Int64("quiz.student_id", int64(studentID)),
	))
	defer span.End()

	quiz, err := s.loadQuiz(ctx, s.repos, quizID)
	if err != nil {
		span.RecordError(err)
		return dto.QuizSubmissionResponse{}, err
	}

	answerKey, err := quiz.AnswerKey()
	if err != nil {
		span.RecordError(err)
		return dto.QuizSubmissionResponse{}, appErrors.Internal(err, "quiz definition is invalid")
	}

	rules := quiz.Rules(s.policy.Quiz)
	now := s.now()

	var (
		attempt      models.QuizAttempt
		enrollment   models.Enrollment
		eligibility  grading.Eligibility
		completedNow bool
	)

	err = s.uow.Do(ctx, func(repos repository.Repositories) error {
		var err error
		enrollment, err = repos.Enrollments.GetForUpdate(ctx, studentID, quiz.CourseID)
		if err != nil {
			if isNotFound(err) {
				return appErrors.ErrNotEnrolled
			}
			return translateRepoError(err, "enrollment")
		}

		previous, err := repos.Attempts.ListByStudentAndQuiz(ctx, studentID, quiz.ID)
		if err != nil {
			return translateRepoError(err, "quiz attempt")
		}

		eligibility = grading.CanAttempt(priorAttempts(previous), rules.Attempts, now)
		if !eligibility.Allowed {
			return eligibility.Err()
		}

		result, err := grading.GradeQuiz(answerKey, req.Answers, rules.PassingScore)
		if err != nil {
			return err
		}

		attempt = models.QuizAttempt{
			StudentID:            studentID,
			QuizID:               quiz.ID,
			CourseID:             quiz.CourseID,
			AttemptNumber:        eligibility.NextAttemptNumber,
			Answers:              result.Answers,
			Score:                result.Score,
			PointsEarned:         result.PointsEarned,
			TotalPoints:          result.TotalPoints,
			Passed:               result.Passed,
			TimeSpent:            req.TimeSpent,
			StartedAt:            attemptStart(req, now),
			CompletedAt:          now,
			NextAttemptAllowedAt: grading.NextAttemptAllowedAt(eligibility.NextAttemptNumber, now, rules.Attempts),
		}
		if err := repos.Attempts.Create(ctx, &attempt); err != nil {
			return translateRepoError(err, "quiz attempt")
		}

		totals, err := repos.Courses.Totals(ctx, quiz.CourseID)
		if err != nil {
			return translateRepoError(err, "course")
		}

		wasCompleted := enrollment.IsCompleted
		enrollment.RecordQuizResult(quiz.ID, attempt.Score, totals, now)
		completedNow = !wasCompleted && enrollment.IsCompleted

		if err := repos.Enrollments.Save(ctx, &enrollment); err != nil {
			return translateRepoError(err, "enrollment")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		if isPolicyError(err) {
			observability.QuizAttempts().WithLabelValues("rejected").Inc()
		}
		return dto.QuizSubmissionResponse{}, err
	}

	span.SetAttributes(attribute.Int("quiz.score", attempt.Score), attribute.Bool("quiz.passed", attempt.Passed))

	outcome := "failed"
	bonus := 0
	if attempt.Passed {
		outcome = "passed"
		bonus = s.effects.award(ctx, studentID, s.policy.QuizPassBonus, "quiz.passed")
	}
	observability.QuizAttempts().WithLabelValues(outcome).Inc()

	s.effects.publish(ctx, Event{
		Type:      EventQuizGraded,
		StudentID: studentID,
		CourseID:  quiz.CourseID,
		Message:   fmt.Sprintf("Your attempt %d at %q scored %d%%.", attempt.AttemptNumber, quiz.Title, attempt.Score),
		Payload: map[string]interface{}{
			"quiz_id":        quiz.ID,
			"attempt_number": attempt.AttemptNumber,
			"score":          attempt.Score,
			"passed":         attempt.Passed,
		},
	})

	attemptID := attempt.ID
	courseID := quiz.CourseID
	s.effects.record(ctx, ActivityEntry{
		ActorID:    studentID,
		ActorRole:  models.RoleStudent,
		Action:     models.ActionQuizSubmitted,
		EntityType: "quiz_attempt",
		EntityID:   &attemptID,
		CourseID:   &courseID,
		Metadata: map[string]interface{}{
			"quiz_id":        quiz.ID,
			"attempt_number": attempt.AttemptNumber,
			"score":          attempt.Score,
			"passed":         attempt.Passed,
		},
	})

	if completedNow {
		announceCompletion(ctx, s.effects, enrollment)
	}
	s.effects.invalidate(ctx, studentID, quiz.CourseID)

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("quiz_id", quiz.ID).
		Int("attempt", attempt.AttemptNumber).
		Int("score", attempt.Score).
		Bool("passed", attempt.Passed).
		Msg("quiz attempt graded")

	return dto.QuizSubmissionResponse{
		Attempt:           dto.NewQuizAttemptResponse(attempt),
		AttemptsRemaining: max(eligibility.AttemptsRemaining-1, 0),
		BonusPoints:       bonus,
		OverallProgress:   enrollment.OverallProgress,
		CertificateIssued: completedNow,
	}, nil
}

func priorAttempts(attempts []models.QuizAttempt) []grading.PriorAttempt {
	prior := make([]grading.PriorAttempt, 0, len(attempts))
	for _, attempt := range attempts {
		prior = append(prior, attempt.Prior())
	}
	return prior
}

func attemptStart(req dto.QuizSubmitRequest, now time.Time) time.Time {
	if req.StartedAt != nil && !req.StartedAt.IsZero() && !req.StartedAt.After(now) {
		return req.StartedAt.UTC()
	}
	return now.Add(-time.Duration(req.TimeSpent) * time.Second)
}

// isPolicyError reports whether err is a rule violation rather than a failure.
func isPolicyError(err error) bool {
	var appErr *appErrors.Error
	return errors.As(err, &appErr) && appErr.Kind == appErrors.KindPolicyViolation
}
