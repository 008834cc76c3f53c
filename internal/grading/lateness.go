package grading

import (
	"fmt"
	"math"
	"time"

	appErrors "github.com/noah-isme/techbridge-api/pkg/errors"
)

const day = 24 * time.Hour

// Lateness describes how far past the due date a submission arrived.
type Lateness struct {
	IsLate   bool `json:"is_late"`
	DaysLate int  `json:"days_late"`
}

// EvaluateLateness counts started days past dueDate and rejects submissions beyond maxLateDays.
func EvaluateLateness(submittedAt, dueDate time.Time, maxLateDays int) (Lateness, error) {
	if !submittedAt.After(dueDate) {
		return Lateness{}, nil
	}

	days := int(math.Ceil(float64(submittedAt.Sub(dueDate)) / float64(day)))
	lateness := Lateness{IsLate: true, DaysLate: days}
	if days > maxLateDays {
		return lateness, appErrors.Clone(appErrors.ErrLateWindowClosed,
			fmt.Sprintf("Assignment is too late. Maximum late submission period is %d days.", maxLateDays)).
			WithDetail("days_late", days).
			WithDetail("max_late_days", maxLateDays)
	}
	return lateness, nil
}

// LatePenalty returns the percentage deduction, capped at 100.
func LatePenalty(daysLate, penaltyPerDay int) int {
	if daysLate <= 0 || penaltyPerDay <= 0 {
		return 0
	}
	return min(100, penaltyPerDay*daysLate)
}

// AdjustedScore scales rawScore by the remaining share after penalty.
func AdjustedScore(rawScore float64, penalty int) (int, error) {
	if math.IsNaN(rawScore) || rawScore < 0 || rawScore > 100 {
		return 0, appErrors.Clone(appErrors.ErrScoreOutOfRange, "Score must be between 0 and 100").
			WithDetail("raw_score", rawScore)
	}
	penalty = clamp(penalty, 0, 100)
	return int(math.Round(rawScore * float64(100-penalty) / 100)), nil
}
