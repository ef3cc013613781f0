package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/maps-gateway/internal/pkg/utils"
	"github.com/maps-gateway/internal/usecase"
)

// ProviderHandler - обработчик справочных запросов о провайдерах
type ProviderHandler struct {
	gatewayUC *usecase.GatewayUseCase
}

// NewProviderHandler - создание нового ProviderHandler
func NewProviderHandler(gatewayUC *usecase.GatewayUseCase) *ProviderHandler {
	return &ProviderHandler{gatewayUC: gatewayUC}
}

// ListProviders godoc
// @Summary Список сконфигурированных провайдеров
// @Description Возвращает провайдеров, доступных в этой инсталляции шлюза, с их режимами передвижения и флагом провайдера по умолчанию.
// @Tags Providers
// @Produce json
// @Param X-API-Key header string true "API ключ клиента"
// @Success 200 {object} utils.SuccessResponse{data=dto.ProvidersResponse}
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/v1/providers [get]
func (h *ProviderHandler) ListProviders(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.gatewayUC.Providers(), "")
}
