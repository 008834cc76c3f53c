package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission is a student's answer to an assignment. There is at most one per
// (assignment, student); a resubmission overwrites it in place.
type Submission struct {
	ID                uint                                `gorm:"primaryKey" json:"id"`
	AssignmentID      uint                                `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"assignment_id"`
	StudentID         uint                                `gorm:"not null;uniqueIndex:idx_submission_assignment_student;index" json:"student_id"`
	CourseID          uint                                `gorm:"not null;index" json:"course_id"`
	TextContent       string                              `gorm:"type:text" json:"text_content"`
	Files             datatypes.JSONSlice[SubmissionFile] `json:"files"`
	SubmittedAt       time.Time                           `gorm:"not null" json:"submitted_at"`
	IsLate            bool                                `gorm:"not null;default:false" json:"is_late"`
	DaysLate          int                                 `gorm:"not null;default:0" json:"days_late"`
	LatePenalty       int                                 `gorm:"not null;default:0" json:"late_penalty"`
	RawScore          *float64                            `json:"raw_score"`
	AdjustedScore     *int                                `json:"adjusted_score"`
	Feedback          string                              `gorm:"type:text" json:"feedback"`
	GradedBy          *uint                               `json:"graded_by"`
	GradedAt          *time.Time                          `json:"graded_at"`
	Status            string                              `gorm:"size:32;not null" json:"status"`
	ResubmissionCount int                                 `gorm:"not null;default:0" json:"resubmission_count"`
	CreatedAt         time.Time                           `json:"created_at"`
	UpdatedAt         time.Time                           `json:"updated_at"`
	Assignment        Assignment                          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
}

// SubmissionFile describes an uploaded attachment.
type SubmissionFile struct {
	FileName   string    `json:"file_name"`
	FileURL    string    `json:"file_url"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

const (
	// SubmissionStatusSubmitted indicates the submission awaits grading.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGraded indicates the submission has been evaluated.
	SubmissionStatusGraded = "graded"
	// SubmissionStatusReturned indicates graded work was handed back to the student.
	SubmissionStatusReturned = "returned"
	// SubmissionStatusResubmissionRequested lets the student overwrite the submission.
	SubmissionStatusResubmissionRequested = "resubmission_requested"
)

var submissionTransitions = map[string][]string{
	SubmissionStatusSubmitted:             {SubmissionStatusGraded, SubmissionStatusResubmissionRequested},
	SubmissionStatusGraded:                {SubmissionStatusGraded, SubmissionStatusReturned, SubmissionStatusResubmissionRequested},
	SubmissionStatusReturned:              {SubmissionStatusGraded, SubmissionStatusResubmissionRequested},
	SubmissionStatusResubmissionRequested: {SubmissionStatusSubmitted},
}

// CanTransition reports whether the status machine allows moving to next.
func (s Submission) CanTransition(next string) bool {
	for _, allowed := range submissionTransitions[s.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AcceptsResubmission reports whether the student may overwrite the submission.
func (s Submission) AcceptsResubmission() bool {
	return s.Status == SubmissionStatusResubmissionRequested
}

// IsGraded reports whether the submission carries a final adjusted score.
func (s Submission) IsGraded() bool {
	return (s.Status == SubmissionStatusGraded || s.Status == SubmissionStatusReturned) && s.AdjustedScore != nil
}
