package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/maps-gateway/internal/delivery/http/middleware"
	"github.com/maps-gateway/internal/pkg/errors"
	"github.com/maps-gateway/internal/pkg/utils"
	"github.com/maps-gateway/internal/pkg/validator"
	"github.com/maps-gateway/internal/usecase"
	"github.com/maps-gateway/internal/usecase/dto"
)

// DirectionsHandler - обработчик маршрутных запросов
type DirectionsHandler struct {
	gatewayUC *usecase.GatewayUseCase
	logger    *zap.Logger
}

// NewDirectionsHandler - создание нового DirectionsHandler
func NewDirectionsHandler(gatewayUC *usecase.GatewayUseCase, logger *zap.Logger) *DirectionsHandler {
	return &DirectionsHandler{
		gatewayUC: gatewayUC,
		logger:    logger,
	}
}

// GetDirections godoc
// @Summary Построение маршрута
// @Description Строит маршрут между двумя текстовыми адресами. Для провайдеров без нативного геокодирования в маршрутизаторе адреса предварительно геокодируются параллельно.
// @Tags Directions
// @Produce json
// @Param origin query string true "Адрес отправления"
// @Param destination query string true "Адрес назначения"
// @Param mode query string false "Режим передвижения (driving, walking, bicycling, cycling, transit)" default(driving)
// @Param provider query string false "Провайдер (google, mapbox, osm)" default(osm)
// @Param X-API-Key header string true "API ключ клиента"
// @Success 200 {object} utils.SuccessResponse{data=dto.DirectionsResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/directions [get]
func (h *DirectionsHandler) GetDirections(c *fiber.Ctx) error {
	client, ok := middleware.ClientFromContext(c)
	if !ok {
		return utils.SendError(c, errors.ErrUnauthorized)
	}

	req := dto.DirectionsRequest{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		Mode:        c.Query("mode"),
		Provider:    c.Query("provider"),
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.gatewayUC.GetDirections(c.Context(), client, middleware.RateKey(c), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	setCacheHeader(c, resp.Cached)
	return utils.SendSuccess(c, resp, resp.Provider)
}

// GetModes godoc
// @Summary Режимы передвижения провайдера
// @Description Возвращает список режимов передвижения, поддерживаемых провайдером. Ответ не тратит квоту клиента.
// @Tags Directions
// @Produce json
// @Param provider query string false "Провайдер (google, mapbox, osm)" default(osm)
// @Param X-API-Key header string true "API ключ клиента"
// @Success 200 {object} utils.SuccessResponse{data=dto.ModesResponse}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/directions/modes [get]
func (h *DirectionsHandler) GetModes(c *fiber.Ctx) error {
	client, ok := middleware.ClientFromContext(c)
	if !ok {
		return utils.SendError(c, errors.ErrUnauthorized)
	}

	req := dto.ModesRequest{Provider: c.Query("provider")}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.gatewayUC.AvailableModes(c.Context(), client, req)
	if err != nil {
		return utils.SendError(c, err)
	}

	setCacheHeader(c, resp.Cached)
	return utils.SendSuccess(c, resp, resp.Provider)
}
