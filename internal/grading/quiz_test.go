package grading

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/techbridge-api/pkg/errors"
)

func sampleQuestions() []Question {
	return []Question{
		{ID: 1, Kind: MultipleChoice, Points: 2, Options: []Option{{Text: "Go"}, {Text: "Rust", IsCorrect: true}}},
		{ID: 2, Kind: TrueFalse, Points: 1, CorrectAnswer: "true"},
		{ID: 3, Kind: ShortAnswer, Points: 1, CorrectAnswer: "Goroutine"},
	}
}

func TestParseQuestionKind(t *testing.T) {
	cases := map[string]QuestionKind{
		"multiple-choice": MultipleChoice,
		"true-false":      TrueFalse,
		"short-answer":    ShortAnswer,
		"fill-blank":      ShortAnswer,
		" Short-Answer ":  ShortAnswer,
	}
	for name, expected := range cases {
		kind, err := ParseQuestionKind(name)
		require.NoError(t, err, name)
		require.Equal(t, expected, kind, name)
	}

	_, err := ParseQuestionKind("essay")
	require.Error(t, err)
}

func TestGradeQuizAllCorrect(t *testing.T) {
	result, err := GradeQuiz(sampleQuestions(), []string{"Rust", "true", "  goroutine "}, 60)
	require.NoError(t, err)
	require.Equal(t, 100, result.Score)
	require.Equal(t, 4, result.PointsEarned)
	require.Equal(t, 4, result.TotalPoints)
	require.True(t, result.Passed)
	require.Len(t, result.Answers, 3)
	for _, answer := range result.Answers {
		require.True(t, answer.IsCorrect)
	}
}

func TestGradeQuizAllIncorrect(t *testing.T) {
	result, err := GradeQuiz(sampleQuestions(), []string{"Go", "false", "thread"}, 60)
	require.NoError(t, err)
	require.Equal(t, 0, result.Score)
	require.False(t, result.Passed)
}

func TestGradeQuizTrueFalseIsCaseSensitive(t *testing.T) {
	result, err := GradeQuiz(sampleQuestions(), []string{"Rust", "True", "goroutine"}, 60)
	require.NoError(t, err)
	require.False(t, result.Answers[1].IsCorrect)
	require.Equal(t, 75, result.Score)
	require.True(t, result.Passed)
}

func TestGradeQuizRoundsScore(t *testing.T) {
	questions := []Question{
		{ID: 1, Kind: TrueFalse, Points: 1, CorrectAnswer: "true"},
		{ID: 2, Kind: TrueFalse, Points: 1, CorrectAnswer: "true"},
		{ID: 3, Kind: TrueFalse, Points: 1, CorrectAnswer: "true"},
	}
	result, err := GradeQuiz(questions, []string{"true", "true", "false"}, 60)
	require.NoError(t, err)
	require.Equal(t, 67, result.Score)

	result, err = GradeQuiz(questions, []string{"true", "false", "false"}, 60)
	require.NoError(t, err)
	require.Equal(t, 33, result.Score)
	require.False(t, result.Passed)
}

func TestGradeQuizPassingThresholdIsInclusive(t *testing.T) {
	questions := make([]Question, 5)
	for i := range questions {
		questions[i] = Question{ID: uint(i + 1), Kind: TrueFalse, Points: 1, CorrectAnswer: "true"}
	}
	result, err := GradeQuiz(questions, []string{"true", "true", "true", "false", "false"}, 60)
	require.NoError(t, err)
	require.Equal(t, 60, result.Score)
	require.True(t, result.Passed)
}

func TestGradeQuizAnswerCountMismatch(t *testing.T) {
	_, err := GradeQuiz(sampleQuestions(), []string{"Rust"}, 60)
	require.Error(t, err)
	require.True(t, stderrors.Is(err, appErrors.ErrAnswerCountMismatch))
	require.Equal(t, appErrors.KindInvalidInput, appErrors.KindOf(err))
	require.Equal(t, 3, appErrors.FromError(err).Details["expected"])
}

func TestGradeQuizWithoutScoredQuestions(t *testing.T) {
	questions := []Question{{ID: 1, Kind: TrueFalse, Points: 0, CorrectAnswer: "true"}}
	_, err := GradeQuiz(questions, []string{"true"}, 60)
	require.True(t, stderrors.Is(err, appErrors.ErrNoScoredQuestions))

	_, err = GradeQuiz(nil, nil, 60)
	require.True(t, stderrors.Is(err, appErrors.ErrNoScoredQuestions))
}

func TestGradeQuizRejectsUnknownKind(t *testing.T) {
	_, err := GradeQuiz([]Question{{ID: 9, Points: 1}}, []string{"x"}, 60)
	require.Error(t, err)
	require.Equal(t, appErrors.KindInternal, appErrors.KindOf(err))
}

func TestMultipleChoiceWithoutCorrectOptionNeverMatches(t *testing.T) {
	question := Question{ID: 1, Kind: MultipleChoice, Points: 1, Options: []Option{{Text: "a"}, {Text: "b"}}}
	ok, err := question.Matches("a")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPercentage(t *testing.T) {
	require.Equal(t, 0, Percentage(3, 0))
	require.Equal(t, 100, Percentage(7, 5))
	require.Equal(t, 80, Percentage(4, 5))
	require.Equal(t, 0, Percentage(-1, 5))
}
