package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/techbridge-api/internal/grading"
)

// QuizAttempt is one graded submission of a quiz by a student. Attempt numbers
// run 1..N per (student, quiz) and the unique index rejects a racing duplicate.
type QuizAttempt struct {
	ID                   uint                                      `gorm:"primaryKey" json:"id"`
	StudentID            uint                                      `gorm:"not null;uniqueIndex:idx_attempt_student_quiz_number" json:"student_id"`
	QuizID               uint                                      `gorm:"not null;uniqueIndex:idx_attempt_student_quiz_number;index" json:"quiz_id"`
	AttemptNumber        int                                       `gorm:"not null;uniqueIndex:idx_attempt_student_quiz_number" json:"attempt_number"`
	CourseID             uint                                      `gorm:"not null;index" json:"course_id"`
	Answers              datatypes.JSONSlice[grading.GradedAnswer] `json:"answers"`
	Score                int                                       `gorm:"not null" json:"score"`
	PointsEarned         int                                       `gorm:"not null" json:"points_earned"`
	TotalPoints          int                                       `gorm:"not null" json:"total_points"`
	Passed               bool                                      `gorm:"not null" json:"passed"`
	TimeSpent            int                                       `gorm:"not null;default:0" json:"time_spent"`
	StartedAt            time.Time                                 `json:"started_at"`
	CompletedAt          time.Time                                 `gorm:"not null" json:"completed_at"`
	NextAttemptAllowedAt *time.Time                                `json:"next_attempt_allowed_at"`
	CreatedAt            time.Time                                 `json:"created_at"`
}

// Prior reduces the attempt to what the eligibility policy needs.
func (a QuizAttempt) Prior() grading.PriorAttempt {
	return grading.PriorAttempt{AttemptNumber: a.AttemptNumber, CompletedAt: a.CompletedAt}
}
