package models

import (
	"fmt"
	"time"

	"github.com/noah-isme/techbridge-api/internal/grading"
)

// Enrollment lifecycle states.
const (
	EnrollmentStatusEnrolled   = "enrolled"
	EnrollmentStatusInProgress = "in_progress"
	EnrollmentStatusCompleted  = "completed"
)

// Enrollment links one student to one course and carries all progress state.
type Enrollment struct {
	ID                  uint               `gorm:"primaryKey" json:"id"`
	StudentID           uint               `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"student_id"`
	CourseID            uint               `gorm:"not null;uniqueIndex:idx_enrollment_student_course;index" json:"course_id"`
	Status              string             `gorm:"size:32;not null" json:"status"`
	EnrolledAt          time.Time          `gorm:"not null" json:"enrolled_at"`
	LastAccessedAt      *time.Time         `json:"last_accessed_at"`
	CurrentLessonID     *uint              `json:"current_lesson_id"`
	TotalTimeSpent      int                `gorm:"not null;default:0" json:"total_time_spent"`
	OverallProgress     int                `gorm:"not null;default:0" json:"overall_progress"`
	IsCompleted         bool               `gorm:"not null;default:false" json:"is_completed"`
	CompletedAt         *time.Time         `json:"completed_at"`
	CertificateIssued   bool               `gorm:"not null;default:false" json:"certificate_issued"`
	CertificateIssuedAt *time.Time         `json:"certificate_issued_at"`
	CertificateID       *string            `gorm:"size:64;uniqueIndex" json:"certificate_id"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
	CompletedLessons    []EnrollmentLesson `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"completed_lessons"`
	CompletedQuizzes    []EnrollmentQuiz   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"completed_quizzes"`
}

// EnrollmentLesson records one completed lesson.
type EnrollmentLesson struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EnrollmentID uint      `gorm:"not null;uniqueIndex:idx_enrollment_lesson" json:"enrollment_id"`
	LessonID     uint      `gorm:"not null;uniqueIndex:idx_enrollment_lesson" json:"lesson_id"`
	CompletedAt  time.Time `gorm:"not null" json:"completed_at"`
	TimeSpent    int       `gorm:"not null;default:0" json:"time_spent"`
}

// EnrollmentQuiz summarises every attempt a student made at one quiz.
type EnrollmentQuiz struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	EnrollmentID  uint      `gorm:"not null;uniqueIndex:idx_enrollment_quiz" json:"enrollment_id"`
	QuizID        uint      `gorm:"not null;uniqueIndex:idx_enrollment_quiz" json:"quiz_id"`
	BestScore     int       `gorm:"not null;default:0" json:"best_score"`
	Attempts      int       `gorm:"not null;default:0" json:"attempts"`
	LastAttemptAt time.Time `gorm:"not null" json:"last_attempt_at"`
}

// NewEnrollment builds a fresh enrollment in the enrolled state.
func NewEnrollment(studentID, courseID uint, now time.Time) Enrollment {
	return Enrollment{
		StudentID:        studentID,
		CourseID:         courseID,
		Status:           EnrollmentStatusEnrolled,
		EnrolledAt:       now,
		LastAccessedAt:   &now,
		CompletedLessons: []EnrollmentLesson{},
		CompletedQuizzes: []EnrollmentQuiz{},
	}
}

// HasCompletedLesson reports whether lessonID is already recorded.
func (e *Enrollment) HasCompletedLesson(lessonID uint) bool {
	for _, entry := range e.CompletedLessons {
		if entry.LessonID == lessonID {
			return true
		}
	}
	return false
}

// QuizSummary returns the recorded summary for quizID, if any.
func (e *Enrollment) QuizSummary(quizID uint) (EnrollmentQuiz, bool) {
	for _, entry := range e.CompletedQuizzes {
		if entry.QuizID == quizID {
			return entry, true
		}
	}
	return EnrollmentQuiz{}, false
}

// RecordLesson marks lessonID complete and recomputes progress. A lesson that is
// already recorded leaves the enrollment untouched and returns false.
func (e *Enrollment) RecordLesson(lessonID uint, timeSpent int, totals CourseTotals, now time.Time) bool {
	if e.HasCompletedLesson(lessonID) {
		return false
	}

	timeSpent = max(timeSpent, 0)
	e.CompletedLessons = append(e.CompletedLessons, EnrollmentLesson{
		EnrollmentID: e.ID,
		LessonID:     lessonID,
		CompletedAt:  now,
		TimeSpent:    timeSpent,
	})
	e.TotalTimeSpent += timeSpent
	current := lessonID
	e.CurrentLessonID = &current
	e.LastAccessedAt = &now

	e.Recompute(totals, now)
	return true
}

// RecordQuizResult folds a graded attempt into the quiz summary, keeping the best score.
func (e *Enrollment) RecordQuizResult(quizID uint, score int, totals CourseTotals, now time.Time) {
	recorded := false
	for idx := range e.CompletedQuizzes {
		entry := &e.CompletedQuizzes[idx]
		if entry.QuizID != quizID {
			continue
		}
		entry.BestScore = max(entry.BestScore, score)
		entry.Attempts++
		entry.LastAttemptAt = now
		recorded = true
		break
	}

	if !recorded {
		e.CompletedQuizzes = append(e.CompletedQuizzes, EnrollmentQuiz{
			EnrollmentID:  e.ID,
			QuizID:        quizID,
			BestScore:     score,
			Attempts:      1,
			LastAttemptAt: now,
		})
	}
	e.LastAccessedAt = &now

	e.Recompute(totals, now)
}

// Recompute derives the progress percentage from completion counts and flips the
// completion and certificate flags the first time it reaches 100. Progress never
// moves backwards and completion is never undone. It reports whether this call
// completed the enrollment.
func (e *Enrollment) Recompute(totals CourseTotals, now time.Time) bool {
	completed := len(e.CompletedLessons) + len(e.CompletedQuizzes)
	progress := grading.Percentage(completed, totals.Items())
	e.OverallProgress = min(max(e.OverallProgress, progress), 100)

	if e.IsCompleted {
		e.Status = EnrollmentStatusCompleted
		return false
	}

	if e.OverallProgress < 100 {
		if completed > 0 || e.OverallProgress > 0 {
			e.Status = EnrollmentStatusInProgress
		} else if e.Status == "" {
			e.Status = EnrollmentStatusEnrolled
		}
		return false
	}

	e.IsCompleted = true
	e.Status = EnrollmentStatusCompleted
	e.CompletedAt = &now
	e.CertificateIssued = true
	e.CertificateIssuedAt = &now
	if e.CertificateID == nil || *e.CertificateID == "" {
		id := CertificateIdentifier(e.StudentID, e.CourseID, now)
		e.CertificateID = &id
	}
	return true
}

// CanUnenroll reports whether progress is still under threshold.
func (e *Enrollment) CanUnenroll(threshold int) bool {
	return !e.IsCompleted && e.OverallProgress < threshold
}

// CertificateIdentifier mints the certificate id from the enrollment key and issuance time.
func CertificateIdentifier(studentID, courseID uint, issuedAt time.Time) string {
	return fmt.Sprintf("CERT-%06d-%06d-%d", studentID%1000000, courseID%1000000, issuedAt.UnixMilli())
}
