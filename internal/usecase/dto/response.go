package dto

import (
	"time"

	"github.com/maps-gateway/internal/domain"
)

// GeocodeResponse - канонический результат геокодирования
type GeocodeResponse struct {
	Result   *domain.GeocodeResult `json:"result"`
	Provider string                `json:"provider"`
	Cached   bool                  `json:"-"`
}

// DirectionsResponse - канонический результат маршрута
type DirectionsResponse struct {
	Result   *domain.DirectionsResult `json:"result"`
	Provider string                   `json:"provider"`
	Cached   bool                     `json:"-"`
}

// ModesResponse - режимы передвижения, поддерживаемые провайдером
type ModesResponse struct {
	Provider string   `json:"provider"`
	Modes    []string `json:"modes"`
	Cached   bool     `json:"-"`
}

// ProviderInfo - описание провайдера в списке доступных
type ProviderInfo struct {
	Name      string   `json:"name"`
	IsDefault bool     `json:"is_default"`
	Modes     []string `json:"modes"`
}

// ProvidersResponse - список сконфигурированных провайдеров
type ProvidersResponse struct {
	Providers []ProviderInfo `json:"providers"`
	Default   string         `json:"default"`
}

// ClientResponse - публичное представление клиента
type ClientResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Plan             string    `json:"plan"`
	AllowedProviders []string  `json:"allowed_providers"`
	QuotaDaily       int64     `json:"quota_daily"`
	QuotaMonthly     int64     `json:"quota_monthly"`
	UsageDaily       int64     `json:"usage_daily"`
	UsageMonthly     int64     `json:"usage_monthly"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

// RegisterClientResponse - ответ на регистрацию: API ключ возвращается
// один раз и больше нигде не отдается
type RegisterClientResponse struct {
	Client ClientResponse `json:"client"`
	APIKey string         `json:"api_key"`
}

// UsageResponse - статистика использования клиента за период
type UsageResponse struct {
	ClientID string               `json:"client_id"`
	From     string               `json:"from"`
	To       string               `json:"to"`
	Records  []domain.UsageRecord `json:"records"`
}

// NewClientResponse собирает ClientResponse из доменной модели
func NewClientResponse(c *domain.Client) ClientResponse {
	return ClientResponse{
		ID:               c.ID.String(),
		Name:             c.Name,
		Email:            c.Email,
		Plan:             string(c.Plan),
		AllowedProviders: []string(c.AllowedProviders),
		QuotaDaily:       c.QuotaDaily,
		QuotaMonthly:     c.QuotaMonthly,
		UsageDaily:       c.UsageDaily,
		UsageMonthly:     c.UsageMonthly,
		IsActive:         c.IsActive,
		CreatedAt:        c.CreatedAt,
	}
}
