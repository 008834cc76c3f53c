package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func jwtApp() *fiber.App {
	app := fiber.New()
	app.Use(JWTProtected(testSecret))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": c.Locals("user_id"), "role": c.Locals("user_role")})
	})
	return app
}

func TestJWTProtectedSetsUserLocals(t *testing.T) {
	token := signedToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "42",
		"role": "Teacher",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := jwtApp().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"expired": "Bearer " + signedToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "42",
			"exp": time.Now().Add(-time.Hour).Unix(),
		}),
		"no expiry": "Bearer " + signedToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "42"}),
		"no subject": "Bearer " + signedToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}),
		"zero subject": "Bearer " + signedToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "0",
			"exp": time.Now().Add(time.Hour).Unix(),
		}),
		"refresh token": "Bearer " + signedToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":        "42",
			"token_type": "refresh",
			"exp":        time.Now().Add(time.Hour).Unix(),
		}),
		"empty bearer": "Bearer ",
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := jwtApp().Test(req, -1)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestJWTProtectedReadsRolesList(t *testing.T) {
	token := signedToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 9,
		"roles":   []string{"", "Admin"},
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer "+token)
	resp, err := jwtApp().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		ID   uint   `json:"id"`
		Role string `json:"role"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, uint(9), body.ID)
	require.Equal(t, "admin", body.Role)
}
