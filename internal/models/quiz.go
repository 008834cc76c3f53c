package models

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/techbridge-api/internal/grading"
)

// Quiz is an authored assessment attached to a course.
type Quiz struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	CourseID         uint           `gorm:"index;not null" json:"course_id"`
	LessonID         *uint          `gorm:"index" json:"lesson_id,omitempty"`
	Title            string         `gorm:"size:255;not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	PassingScore     int            `gorm:"not null;default:0" json:"passing_score"`
	MaxAttempts      int            `gorm:"not null;default:0" json:"max_attempts"`
	CooldownHours    int            `gorm:"not null;default:0" json:"cooldown_hours"`
	TimeLimitMinutes int            `gorm:"not null;default:0" json:"time_limit_minutes"`
	IsPublished      bool           `gorm:"not null;default:true" json:"is_published"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	Questions        []QuizQuestion `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions,omitempty"`
}

// QuestionOption is one choice of a multiple-choice question.
type QuestionOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// QuizQuestion stores the prompt and answer key of a single question.
type QuizQuestion struct {
	ID            uint                                `gorm:"primaryKey" json:"id"`
	QuizID        uint                                `gorm:"index;not null" json:"quiz_id"`
	Position      int                                 `gorm:"not null;default:0" json:"position"`
	Type          string                              `gorm:"size:32;not null" json:"type"`
	Prompt        string                              `gorm:"type:text;not null" json:"prompt"`
	CorrectAnswer string                              `gorm:"type:text" json:"correct_answer,omitempty"`
	Options       datatypes.JSONSlice[QuestionOption] `json:"options"`
	Explanation   string                              `gorm:"type:text" json:"explanation,omitempty"`
	Points        int                                 `gorm:"not null" json:"points"`
}

// QuizRules are the effective policy values of a quiz after defaults are applied.
type QuizRules struct {
	PassingScore int
	Attempts     grading.AttemptPolicy
}

// Rules fills unset quiz policy fields from fallback.
func (q Quiz) Rules(fallback QuizRules) QuizRules {
	rules := fallback
	if q.PassingScore > 0 {
		rules.PassingScore = q.PassingScore
	}
	if q.MaxAttempts > 0 {
		rules.Attempts.MaxAttempts = q.MaxAttempts
	}
	if q.CooldownHours > 0 {
		rules.Attempts.CooldownHours = q.CooldownHours
	}
	return rules
}

// OrderedQuestions returns the questions sorted by position then id.
func (q Quiz) OrderedQuestions() []QuizQuestion {
	ordered := make([]QuizQuestion, len(q.Questions))
	copy(ordered, q.Questions)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Position != ordered[j].Position {
			return ordered[i].Position < ordered[j].Position
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}

// AnswerKey converts stored questions into gradable ones, in stored order.
func (q Quiz) AnswerKey() ([]grading.Question, error) {
	ordered := q.OrderedQuestions()
	key := make([]grading.Question, 0, len(ordered))
	for _, question := range ordered {
		kind, err := grading.ParseQuestionKind(question.Type)
		if err != nil {
			return nil, fmt.Errorf("quiz %d question %d: %w", q.ID, question.ID, err)
		}

		options := make([]grading.Option, 0, len(question.Options))
		for _, option := range question.Options {
			options = append(options, grading.Option{Text: option.Text, IsCorrect: option.IsCorrect})
		}

		key = append(key, grading.Question{
			ID:            question.ID,
			Kind:          kind,
			CorrectAnswer: question.CorrectAnswer,
			Options:       options,
			Points:        max(question.Points, 0),
		})
	}
	return key, nil
}
