package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/techbridge-api/internal/dto"
	"github.com/noah-isme/techbridge-api/internal/models"
	"github.com/noah-isme/techbridge-api/internal/repository"
)

const recentAttemptLimit = 5

// StudentDashboardService produces aggregated dashboard metrics.
type StudentDashboardService interface {
	GetDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
}

type studentDashboardService struct {
	repos  repository.Repositories
	cache  jsonCache
	logger zerolog.Logger
	now    func() time.Time
}

// NewStudentDashboardService builds the dashboard aggregator.
func NewStudentDashboardService(repos repository.Repositories, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StudentDashboardService {
	logger = logger.With().Str("component", "student_dashboard_service").Logger()
	return &studentDashboardService{
		repos:  repos,
		cache:  jsonCache{name: "dashboard", client: cache, ttl: ttl, logger: logger},
		logger: logger,
		now:    utcNow,
	}
}

func (s *studentDashboardService) GetDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	cacheKey := dashboardCacheKey(studentID)

	var cached dto.StudentDashboardResponse
	if s.cache.get(ctx, cacheKey, &cached) {
		s.logger.Debug().Uint("student_id", studentID).Msg("dashboard cache hit")
		return cached, nil
	}

	enrollments, err := s.repos.Enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, translateRepoError(err, "enrollment")
	}

	courseIDs := make([]uint, 0, len(enrollments))
	for _, enrollment := range enrollments {
		courseIDs = append(courseIDs, enrollment.CourseID)
	}

	courses, err := s.repos.Courses.ListByIDs(ctx, courseIDs)
	if err != nil {
		return dto.StudentDashboardResponse{}, translateRepoError(err, "course")
	}

	assignments, err := s.repos.Assignments.ListByCourses(ctx, courseIDs)
	if err != nil {
		return dto.StudentDashboardResponse{}, translateRepoError(err, "assignment")
	}

	submissions, err := s.repos.Submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
	if err != nil {
		return dto.StudentDashboardResponse{}, translateRepoError(err, "submission")
	}

	attempts, err := s.repos.Attempts.ListRecentByStudent(ctx, studentID, recentAttemptLimit)
	if err != nil {
		return dto.StudentDashboardResponse{}, translateRepoError(err, "quiz attempt")
	}

	points := 0
	if student, err := s.repos.Students.GetByID(ctx, studentID); err == nil {
		points = student.Points
	} else if !isNotFound(err) {
		return dto.StudentDashboardResponse{}, translateRepoError(err, "student")
	}

	response := s.buildResponse(enrollments, courses, assignments, submissions, attempts)
	response.Summary.Points = points

	s.cache.set(ctx, cacheKey, response)
	return response, nil
}

func (s *studentDashboardService) buildResponse(enrollments []models.Enrollment, courses []models.Course, assignments []models.Assignment, submissions []models.Submission, attempts []models.QuizAttempt) dto.StudentDashboardResponse {
	now := s.now()

	titles := make(map[uint]string, len(courses))
	for _, course := range courses {
		titles[course.ID] = course.Title
	}

	summary := dto.DashboardSummary{EnrolledCourses: len(enrollments)}
	progress := make([]dto.EnrollmentResponse, 0, len(enrollments))
	progressTotal := 0
	for _, enrollment := range enrollments {
		item := dto.NewEnrollmentResponse(enrollment)
		item.CourseTitle = titles[enrollment.CourseID]
		progress = append(progress, item)

		progressTotal += enrollment.OverallProgress
		summary.TotalTimeSpent += enrollment.TotalTimeSpent
		if enrollment.IsCompleted {
			summary.CompletedCourses++
		} else {
			summary.InProgressCourses++
		}
		if enrollment.CertificateIssued {
			summary.CertificatesEarned++
		}
	}
	if len(enrollments) > 0 {
		summary.AverageProgress = math.Round(float64(progressTotal)/float64(len(enrollments))*100) / 100
	}

	submissionByAssignment := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		if _, exists := submissionByAssignment[submission.AssignmentID]; !exists {
			submissionByAssignment[submission.AssignmentID] = submission
		}
	}

	pending := make([]dto.AssignmentProgress, 0)
	for _, assignment := range assignments {
		if !assignment.IsPublished {
			continue
		}

		item := dto.AssignmentProgress{
			AssignmentID: assignment.ID,
			CourseID:     assignment.CourseID,
			Title:        assignment.Title,
			DueDate:      assignment.DueDate,
			Status:       "pending",
		}

		submission, submitted := submissionByAssignment[assignment.ID]
		if submitted {
			id := submission.ID
			item.SubmissionID = &id
			item.Status = submission.Status
			item.AdjustedScore = submission.AdjustedScore
		}

		if submitted && submission.Status != models.SubmissionStatusResubmissionRequested {
			continue
		}

		item.Overdue = assignment.IsPastDue(now)
		summary.PendingAssignments++
		if item.Overdue {
			summary.OverdueAssignments++
		}
		pending = append(pending, item)
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].DueDate.Before(pending[j].DueDate)
	})

	recent := make([]dto.QuizAttemptSummary, 0, min(recentAttemptLimit, len(attempts)))
	for idx, attempt := range attempts {
		if idx >= recentAttemptLimit {
			break
		}
		recent = append(recent, dto.QuizAttemptSummary{
			QuizID:        attempt.QuizID,
			AttemptNumber: attempt.AttemptNumber,
			Score:         attempt.Score,
			Passed:        attempt.Passed,
			CompletedAt:   attempt.CompletedAt,
		})
	}

	return dto.StudentDashboardResponse{
		Summary:            summary,
		Courses:            progress,
		PendingAssignments: pending,
		RecentAttempts:     recent,
	}
}
