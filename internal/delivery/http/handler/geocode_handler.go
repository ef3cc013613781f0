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

// GeocodeHandler - обработчик запросов геокодирования
type GeocodeHandler struct {
	gatewayUC *usecase.GatewayUseCase
	logger    *zap.Logger
}

// NewGeocodeHandler - создание нового GeocodeHandler
func NewGeocodeHandler(gatewayUC *usecase.GatewayUseCase, logger *zap.Logger) *GeocodeHandler {
	return &GeocodeHandler{
		gatewayUC: gatewayUC,
		logger:    logger,
	}
}

// Geocode godoc
// @Summary Прямое геокодирование
// @Description Переводит текстовый адрес в координаты через выбранного провайдера карт. Результат нормализуется в единый формат независимо от провайдера.
// @Tags Geocoding
// @Produce json
// @Param address query string true "Адрес для геокодирования"
// @Param provider query string false "Провайдер (google, mapbox, osm)" default(osm)
// @Param X-API-Key header string true "API ключ клиента"
// @Success 200 {object} utils.SuccessResponse{data=dto.GeocodeResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/geocode [get]
func (h *GeocodeHandler) Geocode(c *fiber.Ctx) error {
	client, ok := middleware.ClientFromContext(c)
	if !ok {
		return utils.SendError(c, errors.ErrUnauthorized)
	}

	req := dto.GeocodeRequest{
		Address:  c.Query("address"),
		Provider: c.Query("provider"),
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.gatewayUC.Geocode(c.Context(), client, middleware.RateKey(c), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	setCacheHeader(c, resp.Cached)
	return utils.SendSuccess(c, resp, resp.Provider)
}

// ReverseGeocode godoc
// @Summary Обратное геокодирование
// @Description Определяет адрес по географическим координатам через выбранного провайдера карт.
// @Tags Geocoding
// @Produce json
// @Param lat query number true "Широта (-90..90)"
// @Param lng query number true "Долгота (-180..180)"
// @Param provider query string false "Провайдер (google, mapbox, osm)" default(osm)
// @Param X-API-Key header string true "API ключ клиента"
// @Success 200 {object} utils.SuccessResponse{data=dto.GeocodeResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/reverse-geocode [get]
func (h *GeocodeHandler) ReverseGeocode(c *fiber.Ctx) error {
	client, ok := middleware.ClientFromContext(c)
	if !ok {
		return utils.SendError(c, errors.ErrUnauthorized)
	}

	lat := c.QueryFloat("lat")
	lng := c.QueryFloat("lng")

	req := dto.ReverseGeocodeRequest{
		Lat:      lat,
		Lng:      lng,
		Provider: c.Query("provider"),
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.gatewayUC.ReverseGeocode(c.Context(), client, middleware.RateKey(c), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	setCacheHeader(c, resp.Cached)
	return utils.SendSuccess(c, resp, resp.Provider)
}

// setCacheHeader помечает ответ заголовком X-Cache
func setCacheHeader(c *fiber.Ctx, hit bool) {
	if hit {
		c.Set("X-Cache", "HIT")
		return
	}
	c.Set("X-Cache", "MISS")
}
