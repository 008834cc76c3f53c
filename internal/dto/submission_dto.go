package dto

import (
	"time"

	"github.com/noah-isme/techbridge-api/internal/models"
)

// SubmissionFileRequest references an attachment that is already hosted.
type SubmissionFileRequest struct {
	FileName string `json:"file_name" form:"file_name" validate:"required,max=255"`
	FileURL  string `json:"file_url" form:"file_url" validate:"required,url,max=2048"`
	FileType string `json:"file_type" form:"file_type" validate:"omitempty,max=128"`
	FileSize int64  `json:"file_size" form:"file_size" validate:"gte=0"`
}

// SubmissionCreateRequest is the JSON or multipart payload for an assignment submission.
type SubmissionCreateRequest struct {
	TextContent string                  `json:"text_content" form:"text_content" validate:"omitempty,max=50000"`
	Files       []SubmissionFileRequest `json:"files" validate:"omitempty,max=10,dive"`
}

// SubmissionGradeRequest is used to grade a submission. Range checks on the raw
// score happen in the grading engine so they surface as SCORE_OUT_OF_RANGE.
type SubmissionGradeRequest struct {
	RawScore *float64 `json:"raw_score" validate:"required"`
	Feedback string   `json:"feedback" validate:"omitempty,max=5000"`
}

// SubmissionFeedbackRequest carries optional grader feedback for return and resubmission.
type SubmissionFeedbackRequest struct {
	Feedback string `json:"feedback" validate:"omitempty,max=5000"`
}

// SubmissionListRequest describes query string filters for listing submissions.
type SubmissionListRequest struct {
	AssignmentID uint
	StudentID    *uint   `query:"student_id"`
	Status       *string `query:"status" validate:"omitempty,oneof=submitted graded returned resubmission_requested"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID      uint      `json:"id"`
	Title   string    `json:"title"`
	DueDate time.Time `json:"due_date"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID                uint                    `json:"id"`
	AssignmentID      uint                    `json:"assignment_id"`
	StudentID         uint                    `json:"student_id"`
	CourseID          uint                    `json:"course_id"`
	TextContent       string                  `json:"text_content"`
	Files             []models.SubmissionFile `json:"files"`
	SubmittedAt       time.Time               `json:"submitted_at"`
	IsLate            bool                    `json:"is_late"`
	DaysLate          int                     `json:"days_late"`
	LatePenalty       int                     `json:"late_penalty"`
	RawScore          *float64                `json:"raw_score"`
	AdjustedScore     *int                    `json:"adjusted_score"`
	Feedback          string                  `json:"feedback"`
	GradedBy          *uint                   `json:"graded_by"`
	GradedAt          *time.Time              `json:"graded_at"`
	Status            string                  `json:"status"`
	ResubmissionCount int                     `json:"resubmission_count"`
	Assignment        *AssignmentLite         `json:"assignment,omitempty"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	files := make([]models.SubmissionFile, 0, len(model.Files))
	files = append(files, model.Files...)

	response := SubmissionResponse{
		ID:                model.ID,
		AssignmentID:      model.AssignmentID,
		StudentID:         model.StudentID,
		CourseID:          model.CourseID,
		TextContent:       model.TextContent,
		Files:             files,
		SubmittedAt:       model.SubmittedAt,
		IsLate:            model.IsLate,
		DaysLate:          model.DaysLate,
		LatePenalty:       model.LatePenalty,
		RawScore:          model.RawScore,
		AdjustedScore:     model.AdjustedScore,
		Feedback:          model.Feedback,
		GradedBy:          model.GradedBy,
		GradedAt:          model.GradedAt,
		Status:            model.Status,
		ResubmissionCount: model.ResubmissionCount,
	}

	if model.Assignment.ID != 0 {
		response.Assignment = &AssignmentLite{
			ID:      model.Assignment.ID,
			Title:   model.Assignment.Title,
			DueDate: model.Assignment.DueDate,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(items []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(items))
	for _, submission := range items {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
