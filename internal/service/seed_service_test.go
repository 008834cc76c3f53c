package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/grading"
	"github.com/noah-isme/techbridge-api/internal/models"
)

func TestSeedServiceTokenGuard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	disabled := NewSeedService(env.repos.Courses, env.repos.Students, env.validate, false, "secret", testLogger())
	_, err := disabled.SeedCatalogue(ctx, "secret", dto.SeedCatalogueRequest{})
	require.ErrorIs(t, err, ErrSeedDisabled)

	svc := NewSeedService(env.repos.Courses, env.repos.Students, env.validate, true, "secret", testLogger())
	_, err = svc.SeedCatalogue(ctx, "wrong", dto.SeedCatalogueRequest{})
	require.ErrorIs(t, err, ErrSeedUnauthorized)

	blank := NewSeedService(env.repos.Courses, env.repos.Students, env.validate, true, "", testLogger())
	_, err = blank.SeedCatalogue(ctx, "", dto.SeedCatalogueRequest{})
	require.ErrorIs(t, err, ErrSeedUnauthorized)
}

func TestSeedCatalogueUpsertsContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewSeedService(env.repos.Courses, env.repos.Students, env.validate, true, "secret", testLogger())

	req := dto.SeedCatalogueRequest{
		Courses: []models.Course{{
			ID:          1,
			Title:       "Go Basics",
			IsPublished: true,
			Lessons:     []models.Lesson{{ID: 1, Title: "Intro", IsPublished: true}},
		}},
		Quizzes: []models.Quiz{{
			ID:          1,
			CourseID:    1,
			Title:       "Checkpoint",
			IsPublished: true,
			Questions: []models.QuizQuestion{
				{Type: grading.TypeTrueFalse, Prompt: "Go has generics", CorrectAnswer: "true"},
			},
		}},
		Students: []models.Student{{ID: 7, Name: "Ada", Email: " ADA@example.com "}},
	}

	result, err := svc.SeedCatalogue(ctx, " secret ", req)
	require.NoError(t, err)
	require.Positive(t, result.Catalogue)
	require.Equal(t, int64(1), result.Students)

	quiz, err := env.repos.Quizzes.GetWithQuestions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, quiz.Questions, 1)
	require.Equal(t, 1, quiz.Questions[0].Position)
	require.Equal(t, 1, quiz.Questions[0].Points)

	student, err := env.repos.Students.GetByID(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", student.Email)
	require.Equal(t, models.RoleStudent, student.Role)

	totals, err := env.repos.Courses.Totals(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, models.CourseTotals{Lessons: 1, Quizzes: 1}, totals)
}

func TestSeedCatalogueRejectsUngradableQuiz(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSeedService(env.repos.Courses, env.repos.Students, env.validate, true, "secret", testLogger())

	_, err := svc.SeedCatalogue(context.Background(), "secret", dto.SeedCatalogueRequest{
		Quizzes: []models.Quiz{{ID: 1, CourseID: 1, Title: "Broken", Questions: []models.QuizQuestion{{Type: "essay", Prompt: "Discuss"}}}},
	})
	requireAppError(t, err, "VALIDATION_ERROR")

	_, err = svc.SeedCatalogue(context.Background(), "secret", dto.SeedCatalogueRequest{
		Quizzes: []models.Quiz{{ID: 1, CourseID: 1, Title: "Empty"}},
	})
	requireAppError(t, err, "NO_SCORED_QUESTIONS")
}
