// handlers/claim_routes.go
package handlers

import (
	"errors"
	"time"

	"reward-calibration-engine/middleware"
	"reward-calibration-engine/models"
	"reward-calibration-engine/services"
	"reward-calibration-engine/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupClaimRoutes wires the claim endpoint, the status endpoint, and
// the read-only user views.
func SetupClaimRoutes(app *fiber.App, claimService *services.ClaimService) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "online",
			"engine":    "reward-calibration-engine v1.0",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	securedGroup := app.Group("/s", middleware.UserContextMiddleware())

	securedGroup.Post("/daily-task", func(c *fiber.Ctx) error {
		var snap models.ActivitySnapshot
		if err := c.BodyParser(&snap); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
		}

		// Gateway-forwarded identity backs up a missing body userId.
		if snap.UserID == "" {
			if uid, ok := c.Locals("user_id").(string); ok {
				snap.UserID = uid
			}
		}
		snap.IPAddress = utils.ClientIP(c)

		decision, err := claimService.ProcessClaim(&snap)
		if err != nil {
			return claimError(c, err)
		}
		return c.JSON(decision)
	})

	securedGroup.Get("/user/claims", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		limit := c.QueryInt("limit", 20)
		if limit < 1 || limit > 100 {
			limit = 20
		}

		records, err := claimService.Store.RecentClaims(userID, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch claim history",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"claims": records, "count": len(records)})
	})

	securedGroup.Get("/user/state", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		state, err := claimService.Store.EnsureState(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch daily state",
				"cause": err.Error(),
			})
		}
		return c.JSON(state)
	})
}

// claimError maps the service error taxonomy onto HTTP statuses.
func claimError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	var rateLimitedErr *services.RateLimitedError

	switch {
	case errors.Is(err, services.ErrAuthRequired):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"reward": 0,
			"error":  "Authorization required",
		})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"reward": 0,
			"error":  validationErr.Error(),
		})
	case errors.As(err, &rateLimitedErr):
		seconds := int(rateLimitedErr.RetryAfter.Seconds())
		if rateLimitedErr.Cooldown {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"reward":             0,
				"error":              rateLimitedErr.Reason,
				"cooldown_remaining": seconds,
			})
		}
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"reward":      0,
			"error":       rateLimitedErr.Reason,
			"retry_after": seconds,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"reward": 0,
			"error":  "Calibration sync failed",
		})
	}
}
