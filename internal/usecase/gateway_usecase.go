package usecase

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/maps-gateway/internal/domain"
	"github.com/maps-gateway/internal/domain/repository"
	"github.com/maps-gateway/internal/normalizer"
	"github.com/maps-gateway/internal/pkg/errors"
	"github.com/maps-gateway/internal/pkg/utils"
	"github.com/maps-gateway/internal/ratelimit"
	"github.com/maps-gateway/internal/usecase/dto"
)

// Типы операций для ключей кеша и журнала использования
const (
	opGeocode        = "geocode"
	opReverseGeocode = "reverseGeocode"
	opDirections     = "directions"
	opModes          = "modes"
)

// GatewayUseCase - оркестратор запросов к провайдерам карт.
// Каждый запрос проходит фиксированный конвейер: разрешение провайдера,
// кеш, лимит частоты, квота, вызов адаптера, нормализация, запись в кеш
// и журнал использования. Попадание в кеш не тратит ни квоту, ни лимит.
type GatewayUseCase struct {
	registry repository.ProviderRegistry
	cache    repository.ResultCacheRepository
	governor *ratelimit.Governor
	quota    *QuotaUseCase
	logger   *zap.Logger
}

// NewGatewayUseCase - создание нового GatewayUseCase
func NewGatewayUseCase(
	registry repository.ProviderRegistry,
	cache repository.ResultCacheRepository,
	governor *ratelimit.Governor,
	quota *QuotaUseCase,
	logger *zap.Logger,
) *GatewayUseCase {
	return &GatewayUseCase{
		registry: registry,
		cache:    cache,
		governor: governor,
		quota:    quota,
		logger:   logger,
	}
}

// Geocode переводит адрес в координаты через выбранного провайдера
func (uc *GatewayUseCase) Geocode(ctx context.Context, client *domain.Client, rateKey string, req dto.GeocodeRequest) (*dto.GeocodeResponse, error) {
	adapter, provider, err := uc.resolveProvider(client, req.Provider)
	if err != nil {
		return nil, err
	}

	params := map[string]string{
		"provider": provider.String(),
		"address":  req.Address,
	}

	if cached := uc.cacheLookup(ctx, opGeocode, params); cached != nil {
		var result domain.GeocodeResult
		if err := json.Unmarshal(cached, &result); err == nil {
			return &dto.GeocodeResponse{Result: &result, Provider: provider.String(), Cached: true}, nil
		}
	}

	if err := uc.admit(ctx, client, rateKey, ratelimit.CategoryGeocode); err != nil {
		return nil, err
	}

	result, err := uc.invokeGeocode(ctx, client, provider, opGeocode, func() (*domain.GeocodeIntermediate, error) {
		return adapter.Geocode(ctx, req.Address)
	})
	if err != nil {
		return nil, err
	}

	uc.cacheStore(ctx, opGeocode, params, result)
	return &dto.GeocodeResponse{Result: result, Provider: provider.String()}, nil
}

// ReverseGeocode переводит координаты в адрес через выбранного провайдера
func (uc *GatewayUseCase) ReverseGeocode(ctx context.Context, client *domain.Client, rateKey string, req dto.ReverseGeocodeRequest) (*dto.GeocodeResponse, error) {
	if !utils.ValidateCoordinates(req.Lat, req.Lng) {
		return nil, errors.ErrInvalidCoordinates
	}

	adapter, provider, err := uc.resolveProvider(client, req.Provider)
	if err != nil {
		return nil, err
	}

	params := map[string]string{
		"provider": provider.String(),
		"lat":      strconv.FormatFloat(req.Lat, 'f', -1, 64),
		"lng":      strconv.FormatFloat(req.Lng, 'f', -1, 64),
	}

	if cached := uc.cacheLookup(ctx, opReverseGeocode, params); cached != nil {
		var result domain.GeocodeResult
		if err := json.Unmarshal(cached, &result); err == nil {
			return &dto.GeocodeResponse{Result: &result, Provider: provider.String(), Cached: true}, nil
		}
	}

	if err := uc.admit(ctx, client, rateKey, ratelimit.CategoryGeocode); err != nil {
		return nil, err
	}

	result, err := uc.invokeGeocode(ctx, client, provider, opReverseGeocode, func() (*domain.GeocodeIntermediate, error) {
		return adapter.ReverseGeocode(ctx, req.Lat, req.Lng)
	})
	if err != nil {
		return nil, err
	}

	uc.cacheStore(ctx, opReverseGeocode, params, result)
	return &dto.GeocodeResponse{Result: result, Provider: provider.String()}, nil
}

// GetDirections строит маршрут между двумя адресами
func (uc *GatewayUseCase) GetDirections(ctx context.Context, client *domain.Client, rateKey string, req dto.DirectionsRequest) (*dto.DirectionsResponse, error) {
	adapter, provider, err := uc.resolveProvider(client, req.Provider)
	if err != nil {
		return nil, err
	}

	mode := domain.ModeDriving
	if req.Mode != "" {
		parsed, perr := domain.ParseTravelMode(req.Mode)
		if perr != nil {
			return nil, errors.ErrInvalidRequest.WithMessage(perr.Error())
		}
		mode = parsed
	}

	// Несовместимый режим отклоняется до кеша и любых внешних вызовов.
	// Канонизация склеивает синонимы bicycling/cycling, чтобы они
	// попадали в одну запись кеша.
	mode, ok := canonicalMode(provider, mode)
	if !ok {
		return nil, errors.ErrUnsupportedMode.WithDetails(map[string]interface{}{
			"provider": provider.String(),
			"mode":     string(req.Mode),
		})
	}

	params := map[string]string{
		"provider":    provider.String(),
		"origin":      req.Origin,
		"destination": req.Destination,
		"mode":        string(mode),
	}

	if cached := uc.cacheLookup(ctx, opDirections, params); cached != nil {
		var result domain.DirectionsResult
		if err := json.Unmarshal(cached, &result); err == nil {
			return &dto.DirectionsResponse{Result: &result, Provider: provider.String(), Cached: true}, nil
		}
	}

	if err := uc.admit(ctx, client, rateKey, ratelimit.CategoryDirections); err != nil {
		return nil, err
	}

	start := time.Now()
	intermediate, err := adapter.GetDirections(ctx, req.Origin, req.Destination, mode)
	if err != nil {
		uc.recordUsage(ctx, client, opDirections, provider, start, false)
		uc.logger.Error("Provider directions call failed",
			zap.String("provider", provider.String()),
			zap.Error(err))
		return nil, err
	}

	result, err := normalizer.NormalizeDirections(intermediate)
	if err != nil {
		uc.recordUsage(ctx, client, opDirections, provider, start, false)
		return nil, err
	}
	uc.recordUsage(ctx, client, opDirections, provider, start, true)

	uc.cacheStore(ctx, opDirections, params, result)
	return &dto.DirectionsResponse{Result: result, Provider: provider.String()}, nil
}

// AvailableModes возвращает режимы передвижения провайдера. Ответ
// детерминирован и кешируется, но не тратит квоту и лимит частоты.
func (uc *GatewayUseCase) AvailableModes(ctx context.Context, client *domain.Client, req dto.ModesRequest) (*dto.ModesResponse, error) {
	_, provider, err := uc.resolveProvider(client, req.Provider)
	if err != nil {
		return nil, err
	}

	params := map[string]string{"provider": provider.String()}

	if cached := uc.cacheLookup(ctx, opModes, params); cached != nil {
		var resp dto.ModesResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			resp.Cached = true
			return &resp, nil
		}
	}

	modes := domain.SupportedModes(provider)
	names := make([]string, 0, len(modes))
	for _, m := range modes {
		names = append(names, string(m))
	}

	resp := &dto.ModesResponse{Provider: provider.String(), Modes: names}
	uc.cacheStore(ctx, opModes, params, resp)
	return resp, nil
}

// Providers возвращает список сконфигурированных провайдеров
func (uc *GatewayUseCase) Providers() *dto.ProvidersResponse {
	available := uc.registry.Available()
	infos := make([]dto.ProviderInfo, 0, len(available))
	for _, p := range available {
		modes := domain.SupportedModes(p)
		names := make([]string, 0, len(modes))
		for _, m := range modes {
			names = append(names, string(m))
		}
		infos = append(infos, dto.ProviderInfo{
			Name:      p.String(),
			IsDefault: p == uc.registry.Default(),
			Modes:     names,
		})
	}
	return &dto.ProvidersResponse{
		Providers: infos,
		Default:   uc.registry.Default().String(),
	}
}

// resolveProvider выбирает провайдера: явный параметр запроса либо
// провайдер по умолчанию, с проверкой разрешений клиента
func (uc *GatewayUseCase) resolveProvider(client *domain.Client, name string) (repository.ProviderAdapter, domain.Provider, error) {
	provider := uc.registry.Default()
	if name != "" {
		parsed, err := domain.ParseProvider(name)
		if err != nil {
			return nil, "", errors.ErrInvalidRequest.WithMessage(err.Error())
		}
		provider = parsed
	}

	if !client.CanUseProvider(provider) {
		return nil, "", errors.ErrProviderForbidden.WithDetails(map[string]interface{}{
			"provider": provider.String(),
		})
	}

	adapter, err := uc.registry.Resolve(provider)
	if err != nil {
		return nil, "", err
	}
	return adapter, provider, nil
}

// admit пропускает запрос через лимит частоты и квоту, затем списывает
// единицу квоты. Списание предшествует вызову провайдера и не
// откатывается при его сбое.
func (uc *GatewayUseCase) admit(ctx context.Context, client *domain.Client, rateKey string, category ratelimit.Category) error {
	if err := uc.governor.Allow(rateKey, category); err != nil {
		return err
	}
	if err := uc.quota.Check(ctx, client); err != nil {
		return err
	}
	return uc.quota.Charge(ctx, client.ID)
}

// invokeGeocode выполняет вызов адаптера, нормализацию и запись события
// использования для операций геокодирования
func (uc *GatewayUseCase) invokeGeocode(ctx context.Context, client *domain.Client, provider domain.Provider, endpoint string, call func() (*domain.GeocodeIntermediate, error)) (*domain.GeocodeResult, error) {
	start := time.Now()
	intermediate, err := call()
	if err != nil {
		uc.recordUsage(ctx, client, endpoint, provider, start, false)
		uc.logger.Error("Provider geocode call failed",
			zap.String("provider", provider.String()),
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return nil, err
	}

	result, err := normalizer.NormalizeGeocode(intermediate)
	if err != nil {
		uc.recordUsage(ctx, client, endpoint, provider, start, false)
		return nil, err
	}
	uc.recordUsage(ctx, client, endpoint, provider, start, true)
	return result, nil
}

func (uc *GatewayUseCase) recordUsage(ctx context.Context, client *domain.Client, endpoint string, provider domain.Provider, start time.Time, success bool) {
	uc.quota.RecordUsage(ctx, &domain.UsageEvent{
		ClientID:       client.ID,
		Endpoint:       endpoint,
		Provider:       provider.String(),
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Success:        success,
		OccurredAt:     time.Now().UTC(),
	})
}

func (uc *GatewayUseCase) cacheLookup(ctx context.Context, opType string, params map[string]string) []byte {
	data, err := uc.cache.Get(ctx, opType, params)
	if err != nil {
		// Сбой кеша не валит запрос, идем к провайдеру
		return nil
	}
	return data
}

func (uc *GatewayUseCase) cacheStore(ctx context.Context, opType string, params map[string]string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, opType, params, data); err != nil {
		uc.logger.Warn("Failed to store result in cache",
			zap.String("op", opType),
			zap.Error(err))
	}
}

// canonicalMode приводит режим к каноническому для провайдера.
// Синонимы bicycling/cycling переводятся в режим, который провайдер
// объявляет в SupportedModes.
func canonicalMode(p domain.Provider, mode domain.TravelMode) (domain.TravelMode, bool) {
	for _, m := range domain.SupportedModes(p) {
		if m == mode {
			return mode, true
		}
		if (m == domain.ModeBicycling && mode == domain.ModeCycling) ||
			(m == domain.ModeCycling && mode == domain.ModeBicycling) {
			return m, true
		}
	}
	return "", false
}
