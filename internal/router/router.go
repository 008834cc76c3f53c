package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/techbridge-api/internal/config"
	"github.com/noah-isme/techbridge-api/internal/handler"
	"github.com/noah-isme/techbridge-api/internal/middleware"
	"github.com/noah-isme/techbridge-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EnrollmentHandler       *handler.EnrollmentHandler
	QuizHandler             *handler.QuizHandler
	SubmissionHandler       *handler.SubmissionHandler
	GradeHandler            *handler.GradeHandler
	CertificateHandler      *handler.CertificateHandler
	NotificationHandler     *handler.NotificationHandler
	LeaderboardHandler      *handler.LeaderboardHandler
	StudentDashboardHandler *handler.StudentDashboardHandler
	SeedHandler             *handler.SeedHandler
	HealthProbes            map[string]handler.HealthProbe
	JWTMiddleware           fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	// Public v1 group for health and certificate verification
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))
	if deps.CertificateHandler != nil {
		deps.CertificateHandler.RegisterPublic(api)
	}

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	v2 := app.Group("/api/v2", jwtMiddleware)

	// Learner progress
	if deps.EnrollmentHandler != nil {
		deps.EnrollmentHandler.Register(v2)
	}
	if deps.QuizHandler != nil {
		deps.QuizHandler.Register(v2)
	}

	// Assignments and grading
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(v2)
	}
	if deps.GradeHandler != nil {
		deps.GradeHandler.Register(v2)
	}

	// Recognition
	if deps.CertificateHandler != nil {
		deps.CertificateHandler.Register(v2)
	}
	if deps.LeaderboardHandler != nil {
		deps.LeaderboardHandler.Register(v2)
	}
	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(v2)
	}

	// Student dashboard
	if deps.StudentDashboardHandler != nil {
		deps.StudentDashboardHandler.Register(v2)
	}

	// Tooling
	if deps.SeedHandler != nil {
		v2.Use("/admin", middleware.RequireRole(middleware.AuthRoleAdmin))
		deps.SeedHandler.Register(v2)
	}
}
