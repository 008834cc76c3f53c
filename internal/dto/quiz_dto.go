package dto

import (
	"time"

	"github.com/noah-isme/techbridge-api/internal/grading"
	"github.com/noah-isme/techbridge-api/internal/models"
)

// QuizSubmitRequest carries one answer per question, in question order.
type QuizSubmitRequest struct {
	Answers   []string   `json:"answers" validate:"required,dive,max=2000"`
	TimeSpent int        `json:"time_spent" validate:"gte=0"`
	StartedAt *time.Time `json:"started_at"`
}

// QuizQuestionView is a question as shown to students, without the answer key.
type QuizQuestionView struct {
	ID       uint     `json:"id"`
	Position int      `json:"position"`
	Type     string   `json:"type"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options,omitempty"`
	Points   int      `json:"points"`
}

// QuizOverviewResponse describes a quiz and whether the student may attempt it now.
type QuizOverviewResponse struct {
	ID                uint               `json:"id"`
	CourseID          uint               `json:"course_id"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	PassingScore      int                `json:"passing_score"`
	MaxAttempts       int                `json:"max_attempts"`
	CooldownHours     int                `json:"cooldown_hours"`
	TimeLimitMinutes  int                `json:"time_limit_minutes"`
	AttemptsUsed      int                `json:"attempts_used"`
	AttemptsRemaining int                `json:"attempts_remaining"`
	BestScore         *int               `json:"best_score"`
	CanAttempt        bool               `json:"can_attempt"`
	Reason            string             `json:"reason,omitempty"`
	HoursRemaining    int                `json:"hours_remaining,omitempty"`
	NextAttemptAt     *time.Time         `json:"next_attempt_at,omitempty"`
	Questions         []QuizQuestionView `json:"questions"`
}

// QuizAttemptResponse is a graded attempt.
type QuizAttemptResponse struct {
	ID                   uint                   `json:"id"`
	QuizID               uint                   `json:"quiz_id"`
	CourseID             uint                   `json:"course_id"`
	AttemptNumber        int                    `json:"attempt_number"`
	Score                int                    `json:"score"`
	PointsEarned         int                    `json:"points_earned"`
	TotalPoints          int                    `json:"total_points"`
	Passed               bool                   `json:"passed"`
	Answers              []grading.GradedAnswer `json:"answers"`
	TimeSpent            int                    `json:"time_spent"`
	StartedAt            time.Time              `json:"started_at"`
	CompletedAt          time.Time              `json:"completed_at"`
	NextAttemptAllowedAt *time.Time             `json:"next_attempt_allowed_at"`
}

// QuizSubmissionResponse wraps a graded attempt with its effect on the enrollment.
type QuizSubmissionResponse struct {
	Attempt           QuizAttemptResponse `json:"attempt"`
	AttemptsRemaining int                 `json:"attempts_remaining"`
	BonusPoints       int                 `json:"bonus_points"`
	OverallProgress   int                 `json:"overall_progress"`
	CertificateIssued bool                `json:"certificate_issued"`
}

// NewQuizAttemptResponse converts an attempt model.
func NewQuizAttemptResponse(model models.QuizAttempt) QuizAttemptResponse {
	answers := make([]grading.GradedAnswer, 0, len(model.Answers))
	answers = append(answers, model.Answers...)

	return QuizAttemptResponse{
		ID:                   model.ID,
		QuizID:               model.QuizID,
		CourseID:             model.CourseID,
		AttemptNumber:        model.AttemptNumber,
		Score:                model.Score,
		PointsEarned:         model.PointsEarned,
		TotalPoints:          model.TotalPoints,
		Passed:               model.Passed,
		Answers:              answers,
		TimeSpent:            model.TimeSpent,
		StartedAt:            model.StartedAt,
		CompletedAt:          model.CompletedAt,
		NextAttemptAllowedAt: model.NextAttemptAllowedAt,
	}
}

// NewQuizAttemptResponseSlice converts attempt models.
func NewQuizAttemptResponseSlice(items []models.QuizAttempt) []QuizAttemptResponse {
	out := make([]QuizAttemptResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewQuizAttemptResponse(item))
	}
	return out
}

// NewQuizQuestionViews strips the answer key from quiz questions.
func NewQuizQuestionViews(questions []models.QuizQuestion) []QuizQuestionView {
	views := make([]QuizQuestionView, 0, len(questions))
	for _, question := range questions {
		view := QuizQuestionView{
			ID:       question.ID,
			Position: question.Position,
			Type:     question.Type,
			Prompt:   question.Prompt,
			Points:   question.Points,
		}
		for _, option := range question.Options {
			view.Options = append(view.Options, option.Text)
		}
		views = append(views, view)
	}
	return views
}
