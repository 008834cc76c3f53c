package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/techbridge-api/internal/utils"
)

var (
	errSubjectMissing = errors.New("token subject missing")
	errRefreshToken   = errors.New("refresh tokens cannot access the api")
)

// Identity is the caller resolved from an access token.
type Identity struct {
	UserID uint
	Role   string
}

// JWTProtected validates HMAC-signed bearer tokens issued by the identity
// provider and exposes the caller as the user_id and user_role locals.
func JWTProtected(secret string) fiber.Handler {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}), jwt.WithExpirationRequired())

	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "bearer token required")
		}

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		identity, err := identityFromClaims(claims)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}

		c.Locals("user_id", identity.UserID)
		if identity.Role != "" {
			c.Locals("user_role", identity.Role)
		}
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func identityFromClaims(claims jwt.MapClaims) (Identity, error) {
	if tokenType, ok := claims["token_type"].(string); ok && strings.EqualFold(tokenType, "refresh") {
		return Identity{}, errRefreshToken
	}

	for _, key := range []string{"sub", "user_id", "id"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		userID, err := parseSubject(value)
		if err != nil || userID == 0 {
			continue
		}
		return Identity{UserID: userID, Role: roleFromClaims(claims)}, nil
	}
	return Identity{}, errSubjectMissing
}

func parseSubject(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 || v != float64(uint(v)) {
			return 0, fmt.Errorf("invalid subject %v", v)
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported subject type %T", value)
	}
}

// roleFromClaims accepts either a role string or the first usable entry of a roles list.
func roleFromClaims(claims jwt.MapClaims) string {
	if role := normalizeRoleValue(claims["role"]); role != "" {
		return role
	}
	roles, ok := claims["roles"].([]interface{})
	if !ok {
		return ""
	}
	for _, item := range roles {
		if role, ok := item.(string); ok {
			if role = normalizeRoleValue(role); role != "" {
				return role
			}
		}
	}
	return ""
}
