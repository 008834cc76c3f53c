package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/techbridge-api/internal/middleware"
	"github.com/noah-isme/techbridge-api/internal/service"
	"github.com/noah-isme/techbridge-api/internal/utils"
	appErrors "github.com/noah-isme/techbridge-api/pkg/errors"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Params(key))
	if value == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(parsed), nil
}

func parseQueryUint(c *fiber.Ctx, key string) (*uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	result := uint(parsed)
	return &result, nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return strings.ToLower(strings.TrimSpace(role))
		}
	}
	return ""
}

func graderFromContext(c *fiber.Ctx) service.Grader {
	return service.Grader{ID: userIDFromContext(c), Role: userRoleFromContext(c)}
}

// requireUser returns the authenticated user id or writes a 401.
func requireUser(c *fiber.Ctx) (uint, bool, error) {
	id := userIDFromContext(c)
	if id == 0 {
		return 0, false, utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	return id, true, nil
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// respondError logs server-side failures and renders err with the error taxonomy.
func respondError(base zerolog.Logger, c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) && appErrors.KindOf(err) == appErrors.KindInternal {
		requestLogger(base, c).Error().Err(err).Str("route", c.Path()).Msg("request failed")
	}
	return utils.SendAppError(c, err)
}
