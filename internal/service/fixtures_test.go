package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/techbridge-api/internal/database"
	"github.com/noah-isme/techbridge-api/internal/grading"
	"github.com/noah-isme/techbridge-api/internal/models"
	"github.com/noah-isme/techbridge-api/internal/repository"
	appErrors "github.com/noah-isme/techbridge-api/pkg/errors"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type testEnv struct {
	db       *gorm.DB
	repos    repository.Repositories
	uow      repository.UnitOfWork
	validate *validator.Validate
	clock    *testClock
	events   *recordingPublisher
	effects  SideEffects
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.ConnectSQLite("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	repos := repository.NewRepositories(db)
	events := &recordingPublisher{}
	return &testEnv{
		db:       db,
		repos:    repos,
		uow:      repository.NewUnitOfWork(db),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		clock:    &testClock{now: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)},
		events:   events,
		effects: SideEffects{
			Points:   NewPointsService(repos.Students, testLogger()),
			Events:   events,
			Activity: NewActivityService(repos.Activity, testLogger()),
		},
	}
}

func (e *testEnv) enrollmentService() *enrollmentService {
	svc := NewEnrollmentService(e.repos, e.uow, e.validate, DefaultPolicy(), e.effects, testLogger()).(*enrollmentService)
	svc.now = e.clock.Now
	return svc
}

func (e *testEnv) quizService() *quizService {
	svc := NewQuizService(e.repos, e.uow, e.validate, DefaultPolicy(), e.effects, testLogger()).(*quizService)
	svc.now = e.clock.Now
	return svc
}

func (e *testEnv) submissionService(uploader FileUploader) *submissionService {
	svc := NewSubmissionService(e.repos, e.uow, e.validate, uploader, DefaultPolicy(), e.effects, testLogger()).(*submissionService)
	svc.now = e.clock.Now
	return svc
}

// seedCatalogue creates student 7 and a published course with four lessons and one
// two-question quiz.
func (e *testEnv) seedCatalogue(t *testing.T) models.Course {
	t.Helper()
	require.NoError(t, e.db.Create(&models.Student{ID: 7, Name: "Ada", Email: "ada@example.com", Role: models.RoleStudent}).Error)
	require.NoError(t, e.db.Create(&models.Student{ID: 9, Name: "Grace", Email: "grace@example.com", Role: models.RoleTeacher}).Error)

	course := models.Course{
		ID:           1,
		Title:        "Go Basics",
		InstructorID: 9,
		IsPublished:  true,
		Lessons: []models.Lesson{
			{ID: 1, Title: "Intro", Position: 1, IsPublished: true},
			{ID: 2, Title: "Types", Position: 2, IsPublished: true},
			{ID: 3, Title: "Functions", Position: 3, IsPublished: true},
			{ID: 4, Title: "Concurrency", Position: 4, IsPublished: true},
		},
	}
	require.NoError(t, e.db.Create(&course).Error)

	quiz := models.Quiz{
		ID:          1,
		CourseID:    course.ID,
		Title:       "Checkpoint",
		IsPublished: true,
		Questions: []models.QuizQuestion{
			{
				ID:       1,
				Position: 1,
				Type:     grading.TypeMultipleChoice,
				Prompt:   "Which language has goroutines?",
				Options:  []models.QuestionOption{{Text: "Go", IsCorrect: true}, {Text: "Rust"}},
				Points:   1,
			},
			{
				ID:            2,
				Position:      2,
				Type:          grading.TypeShortAnswer,
				Prompt:        "What keyword starts a goroutine?",
				CorrectAnswer: "go",
				Points:        1,
			},
		},
	}
	require.NoError(t, e.db.Create(&quiz).Error)
	return course
}

func (e *testEnv) enroll(t *testing.T, studentID, courseID uint) {
	t.Helper()
	_, err := e.enrollmentService().Enroll(context.Background(), studentID, courseID)
	require.NoError(t, err)
}

type recordingPublisher struct {
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) {
	p.events = append(p.events, event)
}

func (p *recordingPublisher) ofType(eventType string) []Event {
	matched := make([]Event, 0)
	for _, event := range p.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func requireAppError(t *testing.T, err error, code string) *appErrors.Error {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected *errors.Error, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
	return appErr
}

func ptrUint(v uint) *uint {
	return &v
}

func ptrFloat(v float64) *float64 {
	return &v
}
