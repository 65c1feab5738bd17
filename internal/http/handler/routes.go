package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"pharmintake/internal/service"
)

// Pinger reports whether the delivery backend is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. pinger may be nil when the
// configured sink has no dependency worth probing.
func RegisterRoutes(app *fiber.App, pinger Pinger, svc service.SubmissionService) {
	app.Get("/health", HealthCheck(pinger))
	app.Get("/healthz", LivenessProbe())

	app.Get("/reference", ListReference())
	app.Get("/location", LocationLink())
	app.Post("/attachments/check", CheckAttachment())
	app.Post("/submissions", SubmitIntake(svc))
}

// HealthCheck godoc
// @Summary      Readiness probe
// @Description  Pings the delivery backend when one is configured.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  errorPayload
// @Router       /health [get]
func HealthCheck(pinger Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if pinger != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := pinger.PingContext(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe godoc
// @Summary  Liveness probe
// @Tags     health
// @Success  200
// @Router   /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
