package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PlanTier - тарифный план клиента
type PlanTier string

const (
	PlanFree       PlanTier = "free"
	PlanBasic      PlanTier = "basic"
	PlanPremium    PlanTier = "premium"
	PlanEnterprise PlanTier = "enterprise"
)

// ParsePlanTier проверяет строку против набора тарифов
func ParsePlanTier(s string) (PlanTier, bool) {
	switch PlanTier(s) {
	case PlanFree, PlanBasic, PlanPremium, PlanEnterprise:
		return PlanTier(s), true
	}
	return "", false
}

// DefaultQuota возвращает дневной и месячный лимиты тарифа
func DefaultQuota(plan PlanTier) (daily, monthly int64) {
	switch plan {
	case PlanBasic:
		return 10000, 300000
	case PlanPremium:
		return 50000, 1500000
	case PlanEnterprise:
		return 200000, 6000000
	default: // free
		return 1000, 30000
	}
}

// Client - зарегистрированный потребитель API шлюза
type Client struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	Name             string         `db:"name" json:"name"`
	Email            string         `db:"email" json:"email"`
	APIKey           string         `db:"api_key" json:"api_key,omitempty"`
	Plan             PlanTier       `db:"plan" json:"plan"`
	QuotaDaily       int64          `db:"quota_daily" json:"quota_daily"`
	QuotaMonthly     int64          `db:"quota_monthly" json:"quota_monthly"`
	UsageDaily       int64          `db:"usage_daily" json:"usage_daily"`
	UsageMonthly     int64          `db:"usage_monthly" json:"usage_monthly"`
	UsageLastReset   time.Time      `db:"usage_last_reset" json:"usage_last_reset"`
	AllowedProviders pq.StringArray `db:"allowed_providers" json:"allowed_providers"`
	IsActive         bool           `db:"is_active" json:"is_active"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// CanUseProvider проверяет, входит ли провайдер в разрешенный набор клиента
func (c *Client) CanUseProvider(p Provider) bool {
	for _, allowed := range c.AllowedProviders {
		if Provider(allowed) == p {
			return true
		}
	}
	return false
}

// NormalizeAllowedProviders гарантирует непустой разрешенный набор:
// пустой набор заменяется безопасным провайдером по умолчанию
func (c *Client) NormalizeAllowedProviders() {
	if len(c.AllowedProviders) == 0 {
		c.AllowedProviders = pq.StringArray{DefaultProvider.String()}
	}
}

// UsageCounters - счетчики использования после ленивого сброса границ
type UsageCounters struct {
	Daily     int64     `db:"usage_daily"`
	Monthly   int64     `db:"usage_monthly"`
	LastReset time.Time `db:"usage_last_reset"`
}
