package models

import (
	"time"

	"gorm.io/datatypes"
)

// Assignment is a course task with a due date and a late-submission policy.
type Assignment struct {
	ID                uint                        `gorm:"primaryKey" json:"id"`
	CourseID          uint                        `gorm:"index;not null" json:"course_id"`
	LessonID          *uint                       `gorm:"index" json:"lesson_id,omitempty"`
	Title             string                      `gorm:"size:255;not null" json:"title"`
	Description       string                      `gorm:"type:text" json:"description"`
	Instructions      string                      `gorm:"type:text" json:"instructions"`
	DueDate           time.Time                   `gorm:"not null" json:"due_date"`
	MaxPoints         int                         `gorm:"not null;default:100" json:"max_points"`
	LatePenaltyPerDay int                         `gorm:"not null;default:0" json:"late_penalty_per_day"`
	MaxLateDays       int                         `gorm:"not null;default:0" json:"max_late_days"`
	AllowedFileTypes  datatypes.JSONSlice[string] `json:"allowed_file_types"`
	IsPublished       bool                        `gorm:"not null;default:true" json:"is_published"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

// LatePolicy is the effective lateness configuration of an assignment.
type LatePolicy struct {
	PenaltyPerDay int
	MaxLateDays   int
}

// Policy fills unset late-policy fields from fallback.
func (a Assignment) Policy(fallback LatePolicy) LatePolicy {
	policy := fallback
	if a.LatePenaltyPerDay > 0 {
		policy.PenaltyPerDay = min(a.LatePenaltyPerDay, 100)
	}
	if a.MaxLateDays > 0 {
		policy.MaxLateDays = a.MaxLateDays
	}
	return policy
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}
