package grading

import (
	"fmt"
	"math"
	"time"

	appErrors "github.com/noah-isme/techbridge-api/pkg/errors"
)

// Eligibility reasons.
const (
	ReasonMaxAttempts = "max attempts reached"
	ReasonCooldown    = "cooldown"
)

// AttemptPolicy bounds how often a student may take a quiz.
type AttemptPolicy struct {
	MaxAttempts   int
	CooldownHours int
}

// PriorAttempt is the part of a stored attempt the policy looks at.
type PriorAttempt struct {
	AttemptNumber int
	CompletedAt   time.Time
}

// Eligibility is the outcome of CanAttempt.
type Eligibility struct {
	Allowed           bool          `json:"allowed"`
	Reason            string        `json:"reason,omitempty"`
	AttemptsUsed      int           `json:"attempts_used"`
	AttemptsRemaining int           `json:"attempts_remaining"`
	NextAttemptNumber int           `json:"next_attempt_number"`
	HoursRemaining    int           `json:"hours_remaining,omitempty"`
	RetryAfter        time.Duration `json:"-"`
	maxAttempts       int
	cooldownHours     int
}

// CanAttempt decides whether another attempt may start at now. The cooldown is
// measured from the completion time of the highest-numbered previous attempt.
func CanAttempt(previous []PriorAttempt, policy AttemptPolicy, now time.Time) Eligibility {
	used := len(previous)
	result := Eligibility{
		AttemptsUsed:      used,
		AttemptsRemaining: max(policy.MaxAttempts-used, 0),
		NextAttemptNumber: used + 1,
		maxAttempts:       policy.MaxAttempts,
		cooldownHours:     policy.CooldownHours,
	}

	if used >= policy.MaxAttempts {
		result.Reason = ReasonMaxAttempts
		return result
	}

	if used > 0 {
		latest := previous[0]
		for _, attempt := range previous[1:] {
			if attempt.AttemptNumber > latest.AttemptNumber {
				latest = attempt
			}
		}

		cooldown := time.Duration(policy.CooldownHours) * time.Hour
		elapsed := now.Sub(latest.CompletedAt)
		if elapsed < cooldown {
			remaining := cooldown - elapsed
			result.Reason = ReasonCooldown
			result.RetryAfter = remaining
			result.HoursRemaining = int(math.Ceil(remaining.Hours()))
			return result
		}
	}

	result.Allowed = true
	return result
}

// Err converts a denied eligibility into a policy violation carrying remediation text.
func (e Eligibility) Err() error {
	switch {
	case e.Allowed:
		return nil
	case e.Reason == ReasonMaxAttempts:
		return appErrors.Clone(appErrors.ErrMaxAttemptsReached,
			fmt.Sprintf("Maximum attempts (%d) reached for this quiz", e.maxAttempts)).
			WithDetail("reason", e.Reason).
			WithDetail("attempts_used", e.AttemptsUsed).
			WithDetail("attempts_remaining", 0)
	default:
		return appErrors.Clone(appErrors.ErrAttemptCooldown,
			fmt.Sprintf("You must wait %d hours between quiz attempts. Please try again in %d hour(s).", e.cooldownHours, e.HoursRemaining)).
			WithDetail("reason", e.Reason).
			WithDetail("hours_remaining", e.HoursRemaining).
			WithDetail("attempts_remaining", e.AttemptsRemaining).
			WithRetryAfter(e.RetryAfter)
	}
}

// NextAttemptAllowedAt returns when the attempt after attemptNumber may start, or nil
// when attemptNumber already used the last allowed attempt.
func NextAttemptAllowedAt(attemptNumber int, completedAt time.Time, policy AttemptPolicy) *time.Time {
	if attemptNumber >= policy.MaxAttempts {
		return nil
	}
	next := completedAt.Add(time.Duration(policy.CooldownHours) * time.Hour)
	return &next
}
