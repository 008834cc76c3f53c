package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audited actions.
const (
	ActionEnrolled              = "course.enrolled"
	ActionUnenrolled            = "course.unenrolled"
	ActionAssignmentSubmitted   = "assignment.submitted"
	ActionAssignmentGraded      = "assignment.graded"
	ActionSubmissionReturned    = "assignment.returned"
	ActionResubmissionRequested = "assignment.resubmission_requested"
	ActionQuizSubmitted         = "quiz.submitted"
	ActionCertificateIssued     = "certificate.issued"
)

// ActivityLog is the audit trail of grading and enrollment actions.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"index;not null" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`
	EntityType string            `gorm:"size:64;not null" json:"entity_type"`
	EntityID   *uint             `json:"entity_id"`
	CourseID   *uint             `gorm:"index" json:"course_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}
