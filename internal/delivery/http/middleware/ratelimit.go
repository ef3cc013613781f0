package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/maps-gateway/internal/pkg/utils"
	"github.com/maps-gateway/internal/ratelimit"
)

// StrictRateLimit - жесткий лимит для публичных эндпоинтов
// (регистрация клиентов). Ключ - всегда IP источника.
func StrictRateLimit(governor *ratelimit.Governor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := governor.Allow("ip:"+c.IP(), ratelimit.CategoryStrict); err != nil {
			return utils.SendError(c, err)
		}
		return c.Next()
	}
}
