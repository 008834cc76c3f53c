package grading

import "math"

// Course grade weights.
const (
	QuizWeight          = 0.4
	AssignmentWeight    = 0.4
	ParticipationWeight = 0.2

	pointsPerPost  = 10
	pointsPerReply = 5
)

// GradeInputs carries everything the blended grade depends on.
type GradeInputs struct {
	QuizScores       []int
	AssignmentScores []int
	Posts            int
	Replies          int
}

// GradeComponents is the weighted contribution of each signal.
type GradeComponents struct {
	Quizzes       int `json:"quizzes"`
	Assignments   int `json:"assignments"`
	Participation int `json:"participation"`
}

// GradeBreakdown is the blended course grade and its parts.
type GradeBreakdown struct {
	QuizAverage        float64         `json:"quiz_average"`
	AssignmentAverage  float64         `json:"assignment_average"`
	ParticipationScore int             `json:"participation_score"`
	FinalGrade         int             `json:"final_grade"`
	Components         GradeComponents `json:"components"`
}

// ParticipationScore converts forum activity into a bounded 0-100 signal.
func ParticipationScore(posts, replies int) int {
	return clamp(posts*pointsPerPost+replies*pointsPerReply, 0, 100)
}

// Mean returns the arithmetic mean of scores, or 0 for none.
func Mean(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	total := 0
	for _, score := range scores {
		total += score
	}
	return float64(total) / float64(len(scores))
}

// Blend applies the fixed 40/40/20 weighting.
func Blend(quizAverage, assignmentAverage float64, participation int) int {
	return int(math.Round(quizAverage*QuizWeight + assignmentAverage*AssignmentWeight + float64(participation)*ParticipationWeight))
}

// Aggregate computes the full breakdown from raw inputs.
func Aggregate(in GradeInputs) GradeBreakdown {
	quizAverage := Mean(in.QuizScores)
	assignmentAverage := Mean(in.AssignmentScores)
	participation := ParticipationScore(in.Posts, in.Replies)

	return GradeBreakdown{
		QuizAverage:        quizAverage,
		AssignmentAverage:  assignmentAverage,
		ParticipationScore: participation,
		FinalGrade:         Blend(quizAverage, assignmentAverage, participation),
		Components: GradeComponents{
			Quizzes:       int(math.Round(quizAverage * QuizWeight)),
			Assignments:   int(math.Round(assignmentAverage * AssignmentWeight)),
			Participation: int(math.Round(float64(participation) * ParticipationWeight)),
		},
	}
}
