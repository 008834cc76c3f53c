// Package grading holds the scoring and policy rules shared by quiz, assignment
// and course-grade flows. Nothing here touches storage or the clock.
package grading

import (
	"fmt"
	"math"
	"strings"

	appErrors "github.com/noah-isme/techbridge-api/pkg/errors"
)

// QuestionKind selects the comparison rule used for a question.
type QuestionKind int

const (
	KindUnknown QuestionKind = iota
	MultipleChoice
	TrueFalse
	ShortAnswer
)

// Stored question type names.
const (
	TypeMultipleChoice = "multiple-choice"
	TypeTrueFalse      = "true-false"
	TypeShortAnswer    = "short-answer"
	TypeFillBlank      = "fill-blank"
)

// ParseQuestionKind maps a stored type name onto a QuestionKind.
// Fill-in-the-blank questions share the short-answer rule.
func ParseQuestionKind(name string) (QuestionKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case TypeMultipleChoice:
		return MultipleChoice, nil
	case TypeTrueFalse:
		return TrueFalse, nil
	case TypeShortAnswer, TypeFillBlank:
		return ShortAnswer, nil
	default:
		return KindUnknown, fmt.Errorf("unsupported question type %q", name)
	}
}

func (k QuestionKind) String() string {
	switch k {
	case MultipleChoice:
		return TypeMultipleChoice
	case TrueFalse:
		return TypeTrueFalse
	case ShortAnswer:
		return TypeShortAnswer
	default:
		return "unknown"
	}
}

// Option is a selectable answer of a multiple-choice question.
type Option struct {
	Text      string
	IsCorrect bool
}

// Question is the answer key for one quiz question.
type Question struct {
	ID            uint
	Kind          QuestionKind
	CorrectAnswer string
	Options       []Option
	Points        int
}

// Matches reports whether answer earns the question's points.
func (q Question) Matches(answer string) (bool, error) {
	switch q.Kind {
	case MultipleChoice:
		for _, option := range q.Options {
			if option.IsCorrect {
				return answer == option.Text, nil
			}
		}
		return false, nil
	case TrueFalse:
		return answer == q.CorrectAnswer, nil
	case ShortAnswer:
		return normalizeText(answer) == normalizeText(q.CorrectAnswer), nil
	default:
		return false, fmt.Errorf("question %d has no comparison rule for kind %s", q.ID, q.Kind)
	}
}

func normalizeText(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// GradedAnswer records the outcome for a single question.
type GradedAnswer struct {
	QuestionID   uint   `json:"question_id"`
	Answer       string `json:"answer"`
	IsCorrect    bool   `json:"is_correct"`
	PointsEarned int    `json:"points_earned"`
}

// QuizResult is the deterministic outcome of grading one submission.
type QuizResult struct {
	Answers      []GradedAnswer
	PointsEarned int
	TotalPoints  int
	Score        int
	Passed       bool
}

// GradeQuiz grades answers positionally against questions. No partial credit is given.
func GradeQuiz(questions []Question, answers []string, passingScore int) (QuizResult, error) {
	if len(answers) != len(questions) {
		return QuizResult{}, appErrors.Clone(appErrors.ErrAnswerCountMismatch,
			fmt.Sprintf("expected %d answers, received %d", len(questions), len(answers))).
			WithDetail("expected", len(questions)).
			WithDetail("received", len(answers))
	}

	result := QuizResult{Answers: make([]GradedAnswer, 0, len(questions))}
	for idx, question := range questions {
		correct, err := question.Matches(answers[idx])
		if err != nil {
			return QuizResult{}, err
		}

		earned := 0
		if correct {
			earned = question.Points
		}
		result.PointsEarned += earned
		result.TotalPoints += question.Points
		result.Answers = append(result.Answers, GradedAnswer{
			QuestionID:   question.ID,
			Answer:       answers[idx],
			IsCorrect:    correct,
			PointsEarned: earned,
		})
	}

	if result.TotalPoints <= 0 {
		return QuizResult{}, appErrors.Clone(appErrors.ErrNoScoredQuestions, "")
	}

	result.Score = Percentage(result.PointsEarned, result.TotalPoints)
	result.Passed = result.Score >= passingScore
	return result, nil
}

// Percentage returns round(100 * part / whole) clamped to [0,100]; a zero whole yields 0.
func Percentage(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	value := int(math.Round(100 * float64(part) / float64(whole)))
	return clamp(value, 0, 100)
}

func clamp(value, lower, upper int) int {
	if value < lower {
		return lower
	}
	if value > upper {
		return upper
	}
	return value
}
