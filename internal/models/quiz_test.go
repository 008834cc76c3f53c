package models

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/techbridge-api/internal/grading"
)

func TestAnswerKeyFollowsStoredOrder(t *testing.T) {
	quiz := Quiz{ID: 4, Questions: []QuizQuestion{
		{ID: 3, Position: 2, Type: "fill-blank", CorrectAnswer: "channel", Points: 1},
		{ID: 1, Position: 0, Type: "multiple-choice", Points: 2, Options: []QuestionOption{{Text: "a"}, {Text: "b", IsCorrect: true}}},
		{ID: 2, Position: 1, Type: "true-false", CorrectAnswer: "false", Points: -4},
	}}

	key, err := quiz.AnswerKey()
	require.NoError(t, err)
	require.Len(t, key, 3)
	require.Equal(t, []uint{1, 2, 3}, []uint{key[0].ID, key[1].ID, key[2].ID})
	require.Equal(t, grading.MultipleChoice, key[0].Kind)
	require.True(t, key[0].Options[1].IsCorrect)
	require.Zero(t, key[1].Points)
	require.Equal(t, grading.ShortAnswer, key[2].Kind)
}

func TestAnswerKeyRejectsUnknownType(t *testing.T) {
	quiz := Quiz{ID: 4, Questions: []QuizQuestion{{ID: 1, Type: "essay", Points: 1}}}
	_, err := quiz.AnswerKey()
	require.ErrorContains(t, err, "essay")
}

func TestQuizRulesFallBackToDefaults(t *testing.T) {
	fallback := QuizRules{PassingScore: 60, Attempts: grading.AttemptPolicy{MaxAttempts: 3, CooldownHours: 24}}

	require.Equal(t, fallback, Quiz{}.Rules(fallback))

	custom := Quiz{PassingScore: 75, MaxAttempts: 5, CooldownHours: 1}.Rules(fallback)
	require.Equal(t, 75, custom.PassingScore)
	require.Equal(t, 5, custom.Attempts.MaxAttempts)
	require.Equal(t, 1, custom.Attempts.CooldownHours)
}

func TestSubmissionTransitions(t *testing.T) {
	submission := Submission{Status: SubmissionStatusSubmitted}
	require.True(t, submission.CanTransition(SubmissionStatusGraded))
	require.False(t, submission.CanTransition(SubmissionStatusReturned))
	require.False(t, submission.AcceptsResubmission())

	submission.Status = SubmissionStatusResubmissionRequested
	require.True(t, submission.AcceptsResubmission())
	require.True(t, submission.CanTransition(SubmissionStatusSubmitted))
	require.False(t, submission.CanTransition(SubmissionStatusGraded))
}

func TestAssignmentPolicyDefaults(t *testing.T) {
	fallback := LatePolicy{PenaltyPerDay: 10, MaxLateDays: 7}
	require.Equal(t, fallback, Assignment{}.Policy(fallback))
	require.Equal(t, LatePolicy{PenaltyPerDay: 100, MaxLateDays: 2}, Assignment{LatePenaltyPerDay: 150, MaxLateDays: 2}.Policy(fallback))
}

func TestCourseCapacity(t *testing.T) {
	require.True(t, Course{}.HasCapacity(1000))
	require.True(t, Course{MaxStudents: 2}.HasCapacity(1))
	require.False(t, Course{MaxStudents: 2}.HasCapacity(2))
}
