package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies an error for callers that need to branch on it.
type Kind string

const (
	KindNotFound        Kind = "NOT_FOUND"
	KindPolicyViolation Kind = "POLICY_VIOLATION"
	KindInvalidInput    Kind = "INVALID_INPUT"
	KindInternal        Kind = "INTERNAL_ERROR"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Kind       Kind                   `json:"kind"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Status     int                    `json:"-"`
	RetryAfter time.Duration          `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Err        error                  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so predefined errors work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

func statusFor(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindPolicyViolation:
		return http.StatusUnprocessableEntity
	case KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new Error instance.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Status: statusFor(kind)}
}

// Wrap attaches context to an existing error.
func Wrap(err error, kind Kind, code, message string) *Error {
	e := New(kind, code, message)
	e.Err = err
	return e
}

// NotFound builds a NOT_FOUND error for the named entity.
func NotFound(entity string) *Error {
	return New(KindNotFound, "NOT_FOUND", entity+" not found")
}

// InvalidInput builds an INVALID_INPUT error with the given code.
func InvalidInput(code, message string) *Error {
	return New(KindInvalidInput, code, message)
}

// PolicyViolation builds a POLICY_VIOLATION error with the given code.
func PolicyViolation(code, message string) *Error {
	return New(KindPolicyViolation, code, message)
}

// Internal wraps an unexpected failure.
func Internal(err error, message string) *Error {
	return Wrap(err, KindInternal, ErrInternal.Code, message)
}

// Predefined errors for errors.Is comparisons.
var (
	ErrNotFound                = New(KindNotFound, "NOT_FOUND", "resource not found")
	ErrValidation              = New(KindInvalidInput, "VALIDATION_ERROR", "validation failed")
	ErrInternal                = New(KindInternal, "INTERNAL_ERROR", "internal server error")
	ErrMaxAttemptsReached      = New(KindPolicyViolation, "MAX_ATTEMPTS_REACHED", "maximum attempts reached")
	ErrAttemptCooldown         = New(KindPolicyViolation, "ATTEMPT_COOLDOWN", "attempt cooldown in effect")
	ErrLateWindowClosed        = New(KindPolicyViolation, "LATE_WINDOW_CLOSED", "late submission window closed")
	ErrAlreadySubmitted        = New(KindInvalidInput, "ALREADY_SUBMITTED", "assignment already submitted")
	ErrAlreadyEnrolled         = New(KindPolicyViolation, "ALREADY_ENROLLED", "already enrolled in course")
	ErrCourseFull              = New(KindPolicyViolation, "COURSE_FULL", "course is full")
	ErrCourseUnpublished       = New(KindPolicyViolation, "COURSE_UNPUBLISHED", "course is not available for enrollment")
	ErrUnenrollLocked          = New(KindPolicyViolation, "UNENROLL_LOCKED", "cannot unenroll at current progress")
	ErrNotEnrolled             = New(KindPolicyViolation, "NOT_ENROLLED", "not enrolled in course")
	ErrAnswerCountMismatch     = New(KindInvalidInput, "ANSWER_COUNT_MISMATCH", "answer count does not match question count")
	ErrScoreOutOfRange         = New(KindInvalidInput, "SCORE_OUT_OF_RANGE", "score must be between 0 and 100")
	ErrNoScoredQuestions       = New(KindInvalidInput, "NO_SCORED_QUESTIONS", "quiz has no scored questions")
	ErrInvalidStatusTransition = New(KindPolicyViolation, "INVALID_STATUS_TRANSITION", "invalid submission status transition")
	ErrConcurrentWrite         = New(KindPolicyViolation, "CONCURRENT_WRITE", "a concurrent request already changed this record")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Kind, ErrInternal.Code, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	if err.Details != nil {
		clone.Details = make(map[string]interface{}, len(err.Details))
		for k, v := range err.Details {
			clone.Details[k] = v
		}
	}
	return &clone
}

// WithDetail returns e after attaching a detail entry.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

// WithRetryAfter returns e after setting the retry hint.
func (e *Error) WithRetryAfter(d time.Duration) *Error {
	e.RetryAfter = d
	return e
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus returns the response status for e.
func (e *Error) HTTPStatus() int {
	if e == nil {
		return http.StatusInternalServerError
	}
	if e.Status != 0 {
		return e.Status
	}
	return statusFor(e.Kind)
}
