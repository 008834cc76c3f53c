package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type apiEnvelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Meta    map[string]interface{} `json:"meta"`
	Error   *struct {
		Kind              string                 `json:"kind"`
		Code              string                 `json:"code"`
		RetryAfterSeconds int64                  `json:"retry_after_seconds"`
		Details           map[string]interface{} `json:"details"`
	} `json:"error"`
}

// newTestApp mounts an /api/v2 group that authenticates every request as the given user.
func newTestApp(userID uint, role string, register func(fiber.Router)) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v2", func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals("user_id", userID)
			c.Locals("user_role", role)
		}
		return c.Next()
	})
	register(group)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, contentType string) (*http.Response, apiEnvelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var payload apiEnvelope
	require.NoError(t, decodeJSON(resp, &payload))
	return resp, payload
}

func decodeJSON(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

func decodeData(t *testing.T, payload apiEnvelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(payload.Data, target))
}
