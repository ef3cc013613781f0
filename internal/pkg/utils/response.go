package utils

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maps-gateway/internal/pkg/errors"
)

// SuccessResponse - единый конверт успешного ответа шлюза
type SuccessResponse struct {
	Status    string      `json:"status"`
	Data      interface{} `json:"data"`
	Provider  string      `json:"provider,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorResponse - единый конверт ошибки
type ErrorResponse struct {
	Status    string                 `json:"status"`
	Message   string                 `json:"message"`
	Code      int                    `json:"code"`
	ErrorCode string                 `json:"error_code,omitempty"`
	Provider  string                 `json:"provider,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func SendSuccess(c *fiber.Ctx, data interface{}, provider string) error {
	return c.JSON(SuccessResponse{
		Status:    "success",
		Data:      data,
		Provider:  provider,
		Timestamp: time.Now().UTC(),
	})
}

func SendError(c *fiber.Ctx, err error) error {
	if appErr, ok := errors.AsAppError(err); ok {
		// 429 ответы несут подсказку Retry-After
		if retryAfter, ok := appErr.Details["retry_after"].(int); ok {
			c.Set("Retry-After", strconv.Itoa(retryAfter))
		}
		return c.Status(appErr.StatusCode).JSON(ErrorResponse{
			Status:    "error",
			Message:   appErr.Message,
			Code:      appErr.StatusCode,
			ErrorCode: appErr.Code,
			Details:   appErr.Details,
			Timestamp: time.Now().UTC(),
		})
	}

	// Unknown error - return 500
	return c.Status(500).JSON(ErrorResponse{
		Status:    "error",
		Message:   errors.ErrInternalServer.Message,
		Code:      500,
		ErrorCode: errors.ErrInternalServer.Code,
		Timestamp: time.Now().UTC(),
	})
}
