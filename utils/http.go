package utils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ClientIP resolves the caller's address, trusting the first hop of
// X-Forwarded-For when the Gateway sets it.
func ClientIP(c *fiber.Ctx) string {
	if fwd := c.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	if ip := c.IP(); ip != "" {
		return ip
	}
	return "unknown"
}
