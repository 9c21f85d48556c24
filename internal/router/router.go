package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/edunexa/edunexa-api/internal/config"
	"github.com/edunexa/edunexa-api/internal/handler"
	"github.com/edunexa/edunexa-api/internal/middleware"
	"github.com/edunexa/edunexa-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CourseHandler     *handler.CourseHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	ProgressHandler   *handler.ProgressHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses)

		if deps.AssignmentHandler != nil {
			deps.AssignmentHandler.RegisterCourseScoped(courses)
		}
		if deps.ProgressHandler != nil {
			deps.ProgressHandler.Register(courses)
		}
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware,
			middleware.RateLimit("submissions", cfg.SubmitRateLimit, cfg.SubmitRateWindow))
		deps.SubmissionHandler.Register(submissions)
	}
}
