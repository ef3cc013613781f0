package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/maps-gateway/internal/domain"
	"github.com/maps-gateway/internal/domain/repository"
	"github.com/maps-gateway/internal/pkg/errors"
	"github.com/maps-gateway/internal/pkg/utils"
)

const clientLocalsKey = "auth_client"

// APIKeyAuth - middleware аутентификации по заголовку X-API-Key.
// Найденный активный клиент сохраняется в контексте запроса.
func APIKeyAuth(clientRepo repository.ClientRepository, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := c.Get("X-API-Key")
		if apiKey == "" {
			return utils.SendError(c, errors.ErrUnauthorized)
		}

		client, err := clientRepo.GetByAPIKey(c.Context(), apiKey)
		if err != nil {
			logger.Debug("API key lookup failed",
				zap.String("ip", c.IP()),
				zap.Error(err))
			return utils.SendError(c, err)
		}

		c.Locals(clientLocalsKey, client)
		return c.Next()
	}
}

// ClientFromContext возвращает аутентифицированного клиента запроса
func ClientFromContext(c *fiber.Ctx) (*domain.Client, bool) {
	client, ok := c.Locals(clientLocalsKey).(*domain.Client)
	return client, ok
}

// RateKey возвращает ключ лимита частоты: идентификатор клиента,
// а для неаутентифицированных запросов - IP источника
func RateKey(c *fiber.Ctx) string {
	if client, ok := ClientFromContext(c); ok {
		return client.ID.String()
	}
	return "ip:" + c.IP()
}
