package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/models"
	appErrors "github.com/noah-isme/techbridge-api/pkg/errors"
)

func seedGradeInputs(t *testing.T, env *testEnv) {
	t.Helper()
	now := env.clock.Now()

	attempts := []models.QuizAttempt{
		{StudentID: 7, QuizID: 1, CourseID: 1, AttemptNumber: 1, Score: 40, TotalPoints: 2, Passed: false, CompletedAt: now},
		{StudentID: 7, QuizID: 1, CourseID: 1, AttemptNumber: 2, Score: 80, TotalPoints: 2, Passed: true, CompletedAt: now},
	}
	require.NoError(t, env.db.Create(&attempts).Error)

	seedAssignment(t, env)
	require.NoError(t, env.db.Create(&models.Assignment{ID: 2, CourseID: 1, Title: "Pending", DueDate: now.Add(72 * time.Hour), IsPublished: true}).Error)

	adjusted := 70
	raw := 70.0
	submission := models.Submission{
		AssignmentID:  1,
		StudentID:     7,
		CourseID:      1,
		SubmittedAt:   now,
		RawScore:      &raw,
		AdjustedScore: &adjusted,
		GradedAt:      &now,
		Status:        models.SubmissionStatusGraded,
	}
	require.NoError(t, env.db.Omit("Assignment").Create(&submission).Error)

	for i := 0; i < 4; i++ {
		require.NoError(t, env.db.Create(&models.ForumThread{CourseID: 1, AuthorID: 7, Title: "Question"}).Error)
	}
	thread := models.ForumThread{CourseID: 1, AuthorID: 9, Title: "Welcome"}
	require.NoError(t, env.db.Create(&thread).Error)
	for i := 0; i < 2; i++ {
		require.NoError(t, env.db.Create(&models.ForumReply{ThreadID: thread.ID, AuthorID: 7, Content: "Thanks"}).Error)
	}
}

func TestGradeOverallBlendsSignals(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalogue(t)
	seedGradeInputs(t, env)

	svc := NewGradeService(env.repos, nil, 0, testLogger())
	grade, err := svc.Overall(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Equal(t, 80.0, grade.QuizAverage)
	require.Equal(t, 70.0, grade.AssignmentAverage)
	require.Equal(t, 50, grade.ParticipationScore)
	require.Equal(t, 70, grade.FinalGrade)
	require.Equal(t, 32, grade.Components.Quizzes)
	require.Equal(t, 28, grade.Components.Assignments)
	require.Equal(t, 10, grade.Components.Participation)

	empty, err := svc.Overall(context.Background(), 8, 1)
	require.NoError(t, err)
	require.Zero(t, empty.FinalGrade)

	_, err = svc.Overall(context.Background(), 7, 404)
	require.Equal(t, appErrors.KindNotFound, appErrors.KindOf(err))
}

func TestGradeOverallUsesCacheUntilInvalidated(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalogue(t)
	seedGradeInputs(t, env)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewGradeService(env.repos, client, time.Minute, testLogger())
	first, err := svc.Overall(ctx, 7, 1)
	require.NoError(t, err)
	require.True(t, mr.Exists(gradeCacheKey(7, 1)))

	require.NoError(t, env.db.Create(&models.ForumThread{CourseID: 1, AuthorID: 7, Title: "Another"}).Error)

	cached, err := svc.Overall(ctx, 7, 1)
	require.NoError(t, err)
	require.Equal(t, first.FinalGrade, cached.FinalGrade)

	NewCacheInvalidator(client, testLogger()).Invalidate(ctx, 7, 1)
	require.False(t, mr.Exists(gradeCacheKey(7, 1)))

	fresh, err := svc.Overall(ctx, 7, 1)
	require.NoError(t, err)
	require.Equal(t, 60, fresh.ParticipationScore)
	require.Equal(t, 72, fresh.FinalGrade)
}

func TestCourseAnalyticsSummarisesCohort(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalogue(t)
	seedGradeInputs(t, env)
	env.enroll(t, 7, 1)
	env.enroll(t, 9, 1)
	require.NoError(t, env.db.Model(&models.Enrollment{}).Where("student_id = ?", 7).
		Updates(map[string]interface{}{"overall_progress": 100, "is_completed": true, "total_time_spent": 600}).Error)

	analytics, err := NewAnalyticsService(env.repos, testLogger()).Course(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Go Basics", analytics.Title)
	require.Equal(t, int64(2), analytics.Enrolled)
	require.Equal(t, int64(1), analytics.Completed)
	require.Equal(t, 50.0, analytics.CompletionRate)
	require.Equal(t, 50.0, analytics.AverageProgress)
	require.Equal(t, int64(2), analytics.QuizAttempts)
	require.Equal(t, 60.0, analytics.AverageQuizScore)
}

func TestStudentDashboardAggregatesAndCaches(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalogue(t)
	seedGradeInputs(t, env)
	env.enroll(t, 7, 1)
	ctx := context.Background()

	_, err := env.enrollmentService().CompleteLesson(ctx, 7, 1, dto.LessonCompleteRequest{TimeSpent: 90})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewStudentDashboardService(env.repos, client, time.Minute, testLogger()).(*studentDashboardService)
	svc.now = env.clock.Now

	dashboard, err := svc.GetDashboard(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 1, dashboard.Summary.EnrolledCourses)
	require.Equal(t, 1, dashboard.Summary.InProgressCourses)
	require.Equal(t, 20.0, dashboard.Summary.AverageProgress)
	require.Equal(t, 90, dashboard.Summary.TotalTimeSpent)
	require.Equal(t, 10, dashboard.Summary.Points)
	require.Equal(t, 1, dashboard.Summary.PendingAssignments)
	require.Len(t, dashboard.PendingAssignments, 1)
	require.Equal(t, "Pending", dashboard.PendingAssignments[0].Title)
	require.False(t, dashboard.PendingAssignments[0].Overdue)
	require.Len(t, dashboard.RecentAttempts, 2)
	require.Len(t, dashboard.Courses, 1)
	require.Equal(t, "Go Basics", dashboard.Courses[0].CourseTitle)
	require.True(t, mr.Exists(dashboardCacheKey(7)))

	require.NoError(t, env.db.Model(&models.Student{}).Where("id = ?", 7).Update("points", 500).Error)
	cached, err := svc.GetDashboard(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 10, cached.Summary.Points)
}
