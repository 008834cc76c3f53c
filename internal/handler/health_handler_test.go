package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/techbridge-api/internal/config"
	"github.com/noah-isme/techbridge-api/internal/handler"
)

func TestHealthCheck(t *testing.T) {
	cfg := config.Config{AppName: "TechBridge API", AppEnv: "test"}

	app := fiber.New()
	app.Get("/api/v1/health", handler.HealthCheck(cfg, map[string]handler.HealthProbe{
		"database": func(context.Context) error { return nil },
	}))

	resp, payload := doRequest(t, app, http.MethodGet, "/api/v1/health", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health handler.HealthResponse
	decodeData(t, payload, &health)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, cfg.AppName, health.Service)
	require.Equal(t, cfg.AppEnv, health.Environment)
	require.Equal(t, "up", health.Dependencies["database"])
	require.WithinDuration(t, time.Now().UTC(), health.Timestamp, 2*time.Second)
}

func TestHealthCheckReportsDegradedDependency(t *testing.T) {
	app := fiber.New()
	app.Get("/api/v1/health", handler.HealthCheck(config.Config{AppName: "TechBridge API"}, map[string]handler.HealthProbe{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}))

	resp, payload := doRequest(t, app, http.MethodGet, "/api/v1/health", nil, "")
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var health handler.HealthResponse
	decodeData(t, payload, &health)
	require.Equal(t, "degraded", health.Status)
	require.Equal(t, "down", health.Dependencies["redis"])
	require.Equal(t, "up", health.Dependencies["database"])
}
