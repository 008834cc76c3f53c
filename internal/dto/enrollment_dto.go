package dto

import (
	"time"

	"github.com/noah-isme/techbridge-api/internal/models"
)

// LessonCompleteRequest is sent when a student finishes a lesson.
type LessonCompleteRequest struct {
	TimeSpent int `json:"time_spent" validate:"gte=0,lte=86400"`
}

// CompletedLessonResponse is one entry of the completed-lesson set.
type CompletedLessonResponse struct {
	LessonID    uint      `json:"lesson_id"`
	CompletedAt time.Time `json:"completed_at"`
	TimeSpent   int       `json:"time_spent"`
}

// CompletedQuizResponse summarises a student's attempts at one quiz.
type CompletedQuizResponse struct {
	QuizID        uint      `json:"quiz_id"`
	BestScore     int       `json:"best_score"`
	Attempts      int       `json:"attempts"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
}

// EnrollmentResponse is the progress view of an enrollment.
type EnrollmentResponse struct {
	ID                  uint                      `json:"id"`
	StudentID           uint                      `json:"student_id"`
	CourseID            uint                      `json:"course_id"`
	CourseTitle         string                    `json:"course_title,omitempty"`
	Status              string                    `json:"status"`
	EnrolledAt          time.Time                 `json:"enrolled_at"`
	LastAccessedAt      *time.Time                `json:"last_accessed_at"`
	CurrentLessonID     *uint                     `json:"current_lesson_id"`
	TotalTimeSpent      int                       `json:"total_time_spent"`
	OverallProgress     int                       `json:"overall_progress"`
	IsCompleted         bool                      `json:"is_completed"`
	CompletedAt         *time.Time                `json:"completed_at"`
	CertificateIssued   bool                      `json:"certificate_issued"`
	CertificateIssuedAt *time.Time                `json:"certificate_issued_at"`
	CertificateID       *string                   `json:"certificate_id"`
	CompletedLessons    []CompletedLessonResponse `json:"completed_lessons"`
	CompletedQuizzes    []CompletedQuizResponse   `json:"completed_quizzes"`
	Totals              *models.CourseTotals      `json:"totals,omitempty"`
}

// LessonCompletionResponse reports the outcome of completing a lesson.
type LessonCompletionResponse struct {
	Enrollment        EnrollmentResponse `json:"enrollment"`
	AlreadyCompleted  bool               `json:"already_completed"`
	PointsAwarded     int                `json:"points_awarded"`
	CertificateIssued bool               `json:"certificate_issued"`
}

// NewEnrollmentResponse converts an enrollment into its progress view.
func NewEnrollmentResponse(model models.Enrollment) EnrollmentResponse {
	response := EnrollmentResponse{
		ID:                  model.ID,
		StudentID:           model.StudentID,
		CourseID:            model.CourseID,
		Status:              model.Status,
		EnrolledAt:          model.EnrolledAt,
		LastAccessedAt:      model.LastAccessedAt,
		CurrentLessonID:     model.CurrentLessonID,
		TotalTimeSpent:      model.TotalTimeSpent,
		OverallProgress:     model.OverallProgress,
		IsCompleted:         model.IsCompleted,
		CompletedAt:         model.CompletedAt,
		CertificateIssued:   model.CertificateIssued,
		CertificateIssuedAt: model.CertificateIssuedAt,
		CertificateID:       model.CertificateID,
		CompletedLessons:    make([]CompletedLessonResponse, 0, len(model.CompletedLessons)),
		CompletedQuizzes:    make([]CompletedQuizResponse, 0, len(model.CompletedQuizzes)),
	}

	for _, entry := range model.CompletedLessons {
		response.CompletedLessons = append(response.CompletedLessons, CompletedLessonResponse{
			LessonID:    entry.LessonID,
			CompletedAt: entry.CompletedAt,
			TimeSpent:   entry.TimeSpent,
		})
	}

	for _, entry := range model.CompletedQuizzes {
		response.CompletedQuizzes = append(response.CompletedQuizzes, CompletedQuizResponse{
			QuizID:        entry.QuizID,
			BestScore:     entry.BestScore,
			Attempts:      entry.Attempts,
			LastAttemptAt: entry.LastAttemptAt,
		})
	}

	return response
}
