package models

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordLessonIsIdempotent(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	enrollment := NewEnrollment(7, 3, now)
	totals := CourseTotals{Lessons: 4, Quizzes: 1}

	require.True(t, enrollment.RecordLesson(11, 300, totals, now))
	require.Equal(t, 20, enrollment.OverallProgress)
	require.Equal(t, EnrollmentStatusInProgress, enrollment.Status)
	require.Equal(t, 300, enrollment.TotalTimeSpent)
	require.Equal(t, uint(11), *enrollment.CurrentLessonID)

	snapshot := enrollment
	snapshot.CompletedLessons = append([]EnrollmentLesson(nil), enrollment.CompletedLessons...)

	later := now.Add(time.Hour)
	require.False(t, enrollment.RecordLesson(11, 500, totals, later))
	require.Equal(t, snapshot.CompletedLessons, enrollment.CompletedLessons)
	require.Equal(t, snapshot.TotalTimeSpent, enrollment.TotalTimeSpent)
	require.Equal(t, snapshot.OverallProgress, enrollment.OverallProgress)
	require.Equal(t, now, *enrollment.LastAccessedAt)
}

func TestRecordQuizResultKeepsBestScore(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	enrollment := NewEnrollment(7, 3, now)
	totals := CourseTotals{Lessons: 1, Quizzes: 1}

	enrollment.RecordQuizResult(5, 80, totals, now)
	enrollment.RecordQuizResult(5, 40, totals, now.Add(25*time.Hour))

	summary, ok := enrollment.QuizSummary(5)
	require.True(t, ok)
	require.Equal(t, 80, summary.BestScore)
	require.Equal(t, 2, summary.Attempts)
	require.Equal(t, now.Add(25*time.Hour), summary.LastAttemptAt)
	require.Len(t, enrollment.CompletedQuizzes, 1)
	require.Equal(t, 50, enrollment.OverallProgress)
}

func TestCompletionTriggersCertificateOnce(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	enrollment := NewEnrollment(123, 456, start)
	totals := CourseTotals{Lessons: 4, Quizzes: 1}

	for lesson := uint(1); lesson <= 4; lesson++ {
		enrollment.RecordLesson(lesson, 60, totals, start.Add(time.Duration(lesson)*time.Minute))
		require.False(t, enrollment.IsCompleted)
	}
	require.Equal(t, 80, enrollment.OverallProgress)

	finish := start.Add(time.Hour)
	enrollment.RecordQuizResult(99, 90, totals, finish)

	require.Equal(t, 100, enrollment.OverallProgress)
	require.True(t, enrollment.IsCompleted)
	require.True(t, enrollment.CertificateIssued)
	require.Equal(t, EnrollmentStatusCompleted, enrollment.Status)
	require.Equal(t, finish, *enrollment.CompletedAt)
	require.NotNil(t, enrollment.CertificateID)
	certificateID := *enrollment.CertificateID
	require.Equal(t, CertificateIdentifier(123, 456, finish), certificateID)
	require.Equal(t, "CERT-000123-000456-"+strconv.FormatInt(finish.UnixMilli(), 10), certificateID)

	again := finish.Add(time.Hour)
	require.False(t, enrollment.Recompute(totals, again))
	require.False(t, enrollment.Recompute(CourseTotals{Lessons: 10, Quizzes: 2}, again))
	require.Equal(t, certificateID, *enrollment.CertificateID)
	require.Equal(t, finish, *enrollment.CompletedAt)
	require.Equal(t, 100, enrollment.OverallProgress)
	require.True(t, enrollment.IsCompleted)
}

func TestRecomputeWithoutCourseItems(t *testing.T) {
	enrollment := NewEnrollment(1, 1, time.Now())
	require.False(t, enrollment.Recompute(CourseTotals{}, time.Now()))
	require.Zero(t, enrollment.OverallProgress)
	require.Equal(t, EnrollmentStatusEnrolled, enrollment.Status)
}

func TestRecomputeNeverDecreasesProgress(t *testing.T) {
	now := time.Now()
	enrollment := NewEnrollment(1, 1, now)
	enrollment.RecordLesson(1, 0, CourseTotals{Lessons: 2}, now)
	require.Equal(t, 50, enrollment.OverallProgress)

	enrollment.Recompute(CourseTotals{Lessons: 4}, now)
	require.Equal(t, 50, enrollment.OverallProgress)

	enrollment.RecordLesson(2, 0, CourseTotals{Lessons: 4}, now)
	enrollment.RecordLesson(3, 0, CourseTotals{Lessons: 4}, now)
	require.Equal(t, 75, enrollment.OverallProgress)
}

func TestRecomputeKeepsExistingCertificateID(t *testing.T) {
	now := time.Now()
	enrollment := NewEnrollment(1, 1, now)
	existing := "CERT-LEGACY"
	enrollment.CertificateID = &existing

	require.True(t, enrollment.RecordLesson(1, 0, CourseTotals{Lessons: 1}, now))
	require.Equal(t, "CERT-LEGACY", *enrollment.CertificateID)
}

func TestCanUnenroll(t *testing.T) {
	enrollment := NewEnrollment(1, 1, time.Now())
	enrollment.OverallProgress = 40
	require.True(t, enrollment.CanUnenroll(50))

	enrollment.OverallProgress = 55
	require.False(t, enrollment.CanUnenroll(50))

	enrollment.OverallProgress = 50
	require.False(t, enrollment.CanUnenroll(50))
}
