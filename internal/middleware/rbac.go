package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/techbridge-api/internal/models"
	"github.com/noah-isme/techbridge-api/internal/utils"
)

// Auth roles understood by WithAuth and RequireRole. Staff covers teachers and admins.
const (
	AuthRoleAny     = "any"
	AuthRoleStudent = models.RoleStudent
	AuthRoleStaff   = "staff"
	AuthRoleAdmin   = models.RoleAdmin
)

// RequireRole guards a whole route group. The caller must be authenticated and
// satisfy at least one of required.
func RequireRole(required ...string) fiber.Handler {
	roles := make([]string, 0, len(required))
	for _, role := range required {
		if normalized := strings.ToLower(strings.TrimSpace(role)); normalized != "" {
			roles = append(roles, normalized)
		}
	}

	return func(c *fiber.Ctx) error {
		if c.Locals("user_id") == nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		current := normalizeRoleValue(c.Locals("user_role"))
		for _, role := range roles {
			if roleSatisfies(current, role) {
				return c.Next()
			}
		}
		return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", fiber.Map{"allowed_roles": roles})
	}
}

func roleSatisfies(current, required string) bool {
	switch required {
	case AuthRoleAny:
		return true
	case AuthRoleStaff:
		return current == models.RoleTeacher || current == models.RoleAdmin
	default:
		return current == required
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
