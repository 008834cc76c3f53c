package dto

import (
	"time"

	"github.com/noah-isme/techbridge-api/internal/grading"
)

// GradeResponse is the blended course grade of one student.
type GradeResponse struct {
	StudentID          uint                    `json:"student_id"`
	CourseID           uint                    `json:"course_id"`
	QuizAverage        float64                 `json:"quiz_average"`
	AssignmentAverage  float64                 `json:"assignment_average"`
	ParticipationScore int                     `json:"participation_score"`
	FinalGrade         int                     `json:"final_grade"`
	Components         grading.GradeComponents `json:"components"`
	CalculatedAt       time.Time               `json:"calculated_at"`
}

// NewGradeResponse wraps a grade breakdown.
func NewGradeResponse(studentID, courseID uint, breakdown grading.GradeBreakdown, at time.Time) GradeResponse {
	return GradeResponse{
		StudentID:          studentID,
		CourseID:           courseID,
		QuizAverage:        breakdown.QuizAverage,
		AssignmentAverage:  breakdown.AssignmentAverage,
		ParticipationScore: breakdown.ParticipationScore,
		FinalGrade:         breakdown.FinalGrade,
		Components:         breakdown.Components,
		CalculatedAt:       at,
	}
}

// CertificateResponse lists a certificate earned by the current student.
type CertificateResponse struct {
	CertificateID string    `json:"certificate_id"`
	CourseID      uint      `json:"course_id"`
	CourseTitle   string    `json:"course_title"`
	CompletedAt   time.Time `json:"completed_at"`
	IssuedAt      time.Time `json:"issued_at"`
	FinalScore    int       `json:"final_score"`
}

// CertificateVerificationResponse is the public verification view of a certificate.
type CertificateVerificationResponse struct {
	CertificateID  string    `json:"certificate_id"`
	StudentName    string    `json:"student_name"`
	CourseName     string    `json:"course_name"`
	CompletionDate time.Time `json:"completion_date"`
	IssuedDate     time.Time `json:"issued_date"`
	IsValid        bool      `json:"is_valid"`
}
