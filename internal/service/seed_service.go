package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/models"
	"github.com/noah-isme/techbridge-api/internal/repository"
	appErrors "github.com/noah-isme/techbridge-api/pkg/errors"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedResult counts the rows written by a seed run.
type SeedResult struct {
	Catalogue int64 `json:"catalogue"`
	Students  int64 `json:"students"`
}

// SeedService loads demo course catalogues and student profiles.
type SeedService interface {
	SeedCatalogue(ctx context.Context, token string, req dto.SeedCatalogueRequest) (SeedResult, error)
}

type seedService struct {
	courses   repository.CourseRepository
	students  repository.StudentRepository
	validator *validator.Validate
	enabled   bool
	token     string
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(courses repository.CourseRepository, students repository.StudentRepository, validate *validator.Validate, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		courses:   courses,
		students:  students,
		validator: validate,
		enabled:   enabled,
		token:     token,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedCatalogue(ctx context.Context, token string, req dto.SeedCatalogueRequest) (SeedResult, error) {
	if !s.enabled {
		return SeedResult{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return SeedResult{}, ErrSeedUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return SeedResult{}, err
	}

	normalizeQuizzes(req.Quizzes)
	normalizeStudents(req.Students)
	if err := validateCatalogue(req.Quizzes); err != nil {
		return SeedResult{}, err
	}

	var result SeedResult
	var err error
	if len(req.Courses)+len(req.Quizzes)+len(req.Assignments) > 0 {
		result.Catalogue, err = s.courses.UpsertCatalogue(ctx, req.Courses, req.Quizzes, req.Assignments)
		if err != nil {
			return SeedResult{}, appErrors.Internal(err, "failed to seed catalogue")
		}
	}

	if len(req.Students) > 0 {
		result.Students, err = s.students.UpsertBatch(ctx, req.Students)
		if err != nil {
			return SeedResult{}, appErrors.Internal(err, "failed to seed students")
		}
	}

	s.logger.Info().
		Int("courses", len(req.Courses)).
		Int("quizzes", len(req.Quizzes)).
		Int("assignments", len(req.Assignments)).
		Int64("students", result.Students).
		Msg("catalogue seeded")
	return result, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}

// validateCatalogue rejects quizzes whose answer key cannot be graded.
func validateCatalogue(quizzes []models.Quiz) error {
	for _, quiz := range quizzes {
		key, err := quiz.AnswerKey()
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, err.Error()).WithDetail("quiz", quiz.Title)
		}
		total := 0
		for _, question := range key {
			total += question.Points
		}
		if total == 0 {
			return appErrors.Clone(appErrors.ErrNoScoredQuestions, "quiz has no scored questions").WithDetail("quiz", quiz.Title)
		}
	}
	return nil
}

func normalizeQuizzes(quizzes []models.Quiz) {
	for i := range quizzes {
		for j := range quizzes[i].Questions {
			question := &quizzes[i].Questions[j]
			if question.Position == 0 {
				question.Position = j + 1
			}
			if question.Points == 0 {
				question.Points = 1
			}
		}
	}
}

func normalizeStudents(students []models.Student) {
	for i := range students {
		students[i].Email = strings.ToLower(strings.TrimSpace(students[i].Email))
		if students[i].Role == "" {
			students[i].Role = models.RoleStudent
		}
	}
}
