package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/techbridge-api/internal/utils"
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role        string
	RequireUser bool
}

// WithAuth wraps a single handler with authentication and role guards.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}

	requireUser := opts.RequireUser || role != AuthRoleAny

	return func(c *fiber.Ctx) error {
		authenticated := c.Locals("user_id") != nil
		if requireUser && !authenticated {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		if role == AuthRoleAny {
			return handler(c)
		}

		if !roleSatisfies(normalizeRoleValue(c.Locals("user_role")), role) {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", fiber.Map{"required_role": role})
		}

		return handler(c)
	}
}
