package utils

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	appErrors "github.com/noah-isme/techbridge-api/pkg/errors"
)

// APIResponse describes the common structure for API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody is the machine-readable part of a failed response.
type ErrorBody struct {
	Kind              string                 `json:"kind"`
	Code              string                 `json:"code"`
	RetryAfterSeconds int64                  `json:"retry_after_seconds,omitempty"`
	Details           map[string]interface{} `json:"details,omitempty"`
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// OK sends a 200 response carrying optional pagination or summary metadata.
func OK(c *fiber.Ctx, data interface{}, message string, meta interface{}) error {
	if message == "" {
		message = "success"
	}

	return c.Status(fiber.StatusOK).JSON(APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
		Message: message,
	})
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	return Fail(c, status, message, nil)
}

// Fail sends a failed response with optional free-form details.
func Fail(c *fiber.Ctx, status int, message string, details interface{}) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
		Details: details,
	})
}

// SendAppError renders err using the error taxonomy. Validator failures become
// INVALID_INPUT and anything unknown becomes INTERNAL_ERROR with a generic message.
func SendAppError(c *fiber.Ctx, err error) error {
	appErr := toAppError(err)

	if appErr.RetryAfter > 0 {
		c.Set(fiber.HeaderRetryAfter, strconv.FormatInt(int64(appErr.RetryAfter.Seconds()), 10))
	}

	body := &ErrorBody{
		Kind:              string(appErr.Kind),
		Code:              appErr.Code,
		RetryAfterSeconds: int64(appErr.RetryAfter.Seconds()),
		Details:           appErr.Details,
	}

	return c.Status(appErr.HTTPStatus()).JSON(APIResponse{
		Success: false,
		Message: appErr.Message,
		Error:   body,
	})
}

func toAppError(err error) *appErrors.Error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(map[string]interface{}, len(validationErrors))
		for _, fieldErr := range validationErrors {
			fields[fieldErr.Field()] = fieldErr.Tag()
		}
		return appErrors.Clone(appErrors.ErrValidation, "request validation failed").WithDetail("fields", fields)
	}

	return appErrors.FromError(err)
}
