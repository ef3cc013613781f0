package errors

import (
	"fmt"
	"net/http"
)

var (
	ErrProviderUnavailable = New(
		"PROVIDER_UNAVAILABLE",
		"Requested provider is not configured",
		http.StatusServiceUnavailable,
	)

	ErrUnsupportedProvider = New(
		"UNSUPPORTED_PROVIDER",
		"Provider is outside the supported set",
		http.StatusInternalServerError,
	)

	ErrProviderForbidden = New(
		"PROVIDER_FORBIDDEN",
		"Provider is not allowed for your plan",
		http.StatusForbidden,
	)

	ErrUpstreamUnavailable = New(
		"UPSTREAM_UNAVAILABLE",
		"Provider API is not responding",
		http.StatusServiceUnavailable,
	)

	ErrUpstreamProtocol = New(
		"UPSTREAM_PROTOCOL_ERROR",
		"Provider returned an unexpected payload",
		http.StatusBadGateway,
	)

	ErrUnsupportedMode = New(
		"UNSUPPORTED_MODE",
		"Travel mode is not supported by this provider",
		http.StatusBadRequest,
	)

	ErrQuotaExceeded = New(
		"QUOTA_EXCEEDED",
		"Quota exceeded. Please upgrade your plan or try again later.",
		http.StatusTooManyRequests,
	)

	ErrRateLimited = New(
		"RATE_LIMITED",
		"Too many requests. Please try again later.",
		http.StatusTooManyRequests,
	)

	ErrUnauthorized = New(
		"UNAUTHORIZED",
		"API key is required",
		http.StatusUnauthorized,
	)

	ErrInvalidCredentials = New(
		"INVALID_CREDENTIALS",
		"Incorrect credentials",
		http.StatusUnauthorized,
	)

	ErrClientNotFound = New(
		"CLIENT_NOT_FOUND",
		"Client not found",
		http.StatusNotFound,
	)

	ErrClientExists = New(
		"CLIENT_EXISTS",
		"Client with this email already exists",
		http.StatusConflict,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)

// UpstreamError - ошибка провайдера с кодом ответа upstream API
func UpstreamError(provider string, providerStatus int, message string) *AppError {
	return &AppError{
		Code:       "UPSTREAM_ERROR",
		Message:    fmt.Sprintf("Provider API error: %s", message),
		StatusCode: http.StatusBadGateway,
		Details: map[string]interface{}{
			"provider":        provider,
			"provider_status": providerStatus,
		},
	}
}

// RateLimited - ошибка превышения лимита с подсказкой retry_after (секунды)
func RateLimited(retryAfterSec int) *AppError {
	return ErrRateLimited.WithDetails(map[string]interface{}{
		"retry_after": retryAfterSec,
	})
}
