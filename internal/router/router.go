package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/coursehub-api/internal/config"
	"github.com/noah-isme/coursehub-api/internal/handler"
	"github.com/noah-isme/coursehub-api/internal/middleware"
	"github.com/noah-isme/coursehub-api/internal/models"
	"github.com/noah-isme/coursehub-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	CourseHandler       *handler.CourseHandler
	StudyPlanHandler    *handler.StudyPlanHandler
	AssignmentHandler   *handler.AssignmentHandler
	SubmissionHandler   *handler.SubmissionHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
	// StreamMiddleware authenticates SSE and WebSocket handshakes. It falls
	// back to JWTMiddleware when nil.
	StreamMiddleware fiber.Handler
	AuthRateLimit    fiber.Handler
	// UploadDir is served under /uploads when images are stored locally.
	UploadDir string
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	if deps.UploadDir != "" {
		app.Static("/uploads", deps.UploadDir)
	}

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	streamMiddleware := deps.StreamMiddleware
	if streamMiddleware == nil {
		streamMiddleware = jwtMiddleware
	}
	rateLimit := deps.AuthRateLimit
	if rateLimit == nil {
		rateLimit = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"), jwtMiddleware, rateLimit)
	}

	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users", jwtMiddleware))
	}

	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(api.Group("/courses"), jwtMiddleware)
	}

	if deps.StudyPlanHandler != nil {
		deps.StudyPlanHandler.Register(api.Group("/studyplans", jwtMiddleware))
	}

	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(api.Group("/assignments", jwtMiddleware))
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		submissions.Get("/assignment/:assignmentId/export", middleware.RequireRole(models.RoleEducator, models.RoleCoordinator))
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(api.Group("/notifications"), jwtMiddleware, streamMiddleware)
	}
}
