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

// ClientHandler - обработчик управления клиентами шлюза
type ClientHandler struct {
	clientUC *usecase.ClientUseCase
	logger   *zap.Logger
}

// NewClientHandler - создание нового ClientHandler
func NewClientHandler(clientUC *usecase.ClientUseCase, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientUC: clientUC,
		logger:   logger,
	}
}

// Register godoc
// @Summary Регистрация клиента
// @Description Создает клиента шлюза и возвращает API ключ. Ключ выдается единственный раз и не может быть получен повторно.
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body dto.RegisterClientRequest true "Данные клиента"
// @Success 201 {object} utils.SuccessResponse{data=dto.RegisterClientResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 429 {object} utils.ErrorResponse
// @Router /api/v1/clients [post]
func (h *ClientHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterClientRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("invalid request body"))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.clientUC.Register(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	c.Status(fiber.StatusCreated)
	return utils.SendSuccess(c, resp, "")
}

// GetMe godoc
// @Summary Профиль текущего клиента
// @Description Возвращает профиль, квоты и текущие счетчики использования аутентифицированного клиента.
// @Tags Clients
// @Produce json
// @Param X-API-Key header string true "API ключ клиента"
// @Success 200 {object} utils.SuccessResponse{data=dto.ClientResponse}
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/v1/clients/me [get]
func (h *ClientHandler) GetMe(c *fiber.Ctx) error {
	client, ok := middleware.ClientFromContext(c)
	if !ok {
		return utils.SendError(c, errors.ErrUnauthorized)
	}

	resp, err := h.clientUC.GetProfile(c.Context(), client.ID)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, "")
}

// UpdateMe godoc
// @Summary Изменение текущего клиента
// @Description Изменяет имя, тариф или разрешенных провайдеров. Смена тарифа переустанавливает квоты.
// @Tags Clients
// @Accept json
// @Produce json
// @Param X-API-Key header string true "API ключ клиента"
// @Param request body dto.UpdateClientRequest true "Изменяемые поля"
// @Success 200 {object} utils.SuccessResponse{data=dto.ClientResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/v1/clients/me [patch]
func (h *ClientHandler) UpdateMe(c *fiber.Ctx) error {
	client, ok := middleware.ClientFromContext(c)
	if !ok {
		return utils.SendError(c, errors.ErrUnauthorized)
	}

	var req dto.UpdateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("invalid request body"))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.clientUC.Update(c.Context(), client.ID, req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, "")
}

// DeactivateMe godoc
// @Summary Деактивация текущего клиента
// @Description Мягкое удаление: клиент помечается неактивным, его API ключ перестает приниматься.
// @Tags Clients
// @Produce json
// @Param X-API-Key header string true "API ключ клиента"
// @Success 204 "No Content"
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/v1/clients/me [delete]
func (h *ClientHandler) DeactivateMe(c *fiber.Ctx) error {
	client, ok := middleware.ClientFromContext(c)
	if !ok {
		return utils.SendError(c, errors.ErrUnauthorized)
	}

	if err := h.clientUC.Deactivate(c.Context(), client.ID); err != nil {
		return utils.SendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetUsage godoc
// @Summary Статистика использования
// @Description Возвращает агрегированную статистику вызовов клиента по дням, эндпоинтам и провайдерам за период. Без параметров возвращаются последние 30 дней.
// @Tags Clients
// @Produce json
// @Param X-API-Key header string true "API ключ клиента"
// @Param from query string false "Начало периода (YYYY-MM-DD)"
// @Param to query string false "Конец периода (YYYY-MM-DD)"
// @Success 200 {object} utils.SuccessResponse{data=dto.UsageResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/v1/clients/me/usage [get]
func (h *ClientHandler) GetUsage(c *fiber.Ctx) error {
	client, ok := middleware.ClientFromContext(c)
	if !ok {
		return utils.SendError(c, errors.ErrUnauthorized)
	}

	req := dto.UsageQueryRequest{
		From: c.Query("from"),
		To:   c.Query("to"),
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.clientUC.GetUsage(c.Context(), client.ID, req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, "")
}
