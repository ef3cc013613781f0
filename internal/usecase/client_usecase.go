package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/maps-gateway/internal/domain"
	"github.com/maps-gateway/internal/domain/repository"
	"github.com/maps-gateway/internal/pkg/errors"
	"github.com/maps-gateway/internal/pkg/utils"
	"github.com/maps-gateway/internal/usecase/dto"
)

// ClientUseCase - управление клиентами шлюза
type ClientUseCase struct {
	clientRepo repository.ClientRepository
	usageRepo  repository.UsageRepository
	logger     *zap.Logger
}

// NewClientUseCase - создание нового ClientUseCase
func NewClientUseCase(
	clientRepo repository.ClientRepository,
	usageRepo repository.UsageRepository,
	logger *zap.Logger,
) *ClientUseCase {
	return &ClientUseCase{
		clientRepo: clientRepo,
		usageRepo:  usageRepo,
		logger:     logger,
	}
}

// Register создает клиента с API-ключом и квотами тарифа.
// Ключ возвращается в ответе один раз и далее не выдается.
func (uc *ClientUseCase) Register(ctx context.Context, req dto.RegisterClientRequest) (*dto.RegisterClientResponse, error) {
	plan := domain.PlanFree
	if req.Plan != "" {
		parsed, ok := domain.ParsePlanTier(req.Plan)
		if !ok {
			return nil, errors.ErrInvalidRequest.WithMessage("unknown plan tier")
		}
		plan = parsed
	}

	apiKey, err := utils.GenerateAPIKey()
	if err != nil {
		uc.logger.Error("Failed to generate API key", zap.Error(err))
		return nil, errors.ErrInternalServer
	}

	daily, monthly := domain.DefaultQuota(plan)
	now := time.Now().UTC()

	client := &domain.Client{
		ID:               uuid.New(),
		Name:             req.Name,
		Email:            req.Email,
		APIKey:           apiKey,
		Plan:             plan,
		QuotaDaily:       daily,
		QuotaMonthly:     monthly,
		UsageLastReset:   now,
		AllowedProviders: pq.StringArray(req.AllowedProviders),
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	client.NormalizeAllowedProviders()

	if err := uc.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	uc.logger.Info("Client registered",
		zap.String("client_id", client.ID.String()),
		zap.String("plan", string(plan)))

	return &dto.RegisterClientResponse{
		Client: dto.NewClientResponse(client),
		APIKey: apiKey,
	}, nil
}

// GetProfile возвращает профиль клиента
func (uc *ClientUseCase) GetProfile(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error) {
	client, err := uc.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewClientResponse(client)
	return &resp, nil
}

// Update изменяет имя, тариф или разрешенных провайдеров клиента.
// Смена тарифа переустанавливает квоты на значения нового тарифа.
func (uc *ClientUseCase) Update(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	client, err := uc.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Plan != nil {
		plan, ok := domain.ParsePlanTier(*req.Plan)
		if !ok {
			return nil, errors.ErrInvalidRequest.WithMessage("unknown plan tier")
		}
		client.Plan = plan
		client.QuotaDaily, client.QuotaMonthly = domain.DefaultQuota(plan)
	}
	if req.AllowedProviders != nil {
		client.AllowedProviders = pq.StringArray(req.AllowedProviders)
		client.NormalizeAllowedProviders()
	}
	client.UpdatedAt = time.Now().UTC()

	if err := uc.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	resp := dto.NewClientResponse(client)
	return &resp, nil
}

// Deactivate - мягкое удаление клиента
func (uc *ClientUseCase) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := uc.clientRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("Client deactivated", zap.String("client_id", id.String()))
	return nil
}

// GetUsage возвращает статистику использования за период.
// Пустые границы означают последние 30 дней.
func (uc *ClientUseCase) GetUsage(ctx context.Context, id uuid.UUID, req dto.UsageQueryRequest) (*dto.UsageResponse, error) {
	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -30)

	if req.From != "" {
		parsed, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return nil, errors.ErrInvalidRequest.WithMessage("invalid 'from' date, expected YYYY-MM-DD")
		}
		from = parsed
	}
	if req.To != "" {
		parsed, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return nil, errors.ErrInvalidRequest.WithMessage("invalid 'to' date, expected YYYY-MM-DD")
		}
		to = parsed
	}
	if from.After(to) {
		return nil, errors.ErrInvalidRequest.WithMessage("'from' must not be after 'to'")
	}

	records, err := uc.usageRepo.ListByClient(ctx, id, from, to)
	if err != nil {
		return nil, err
	}

	return &dto.UsageResponse{
		ClientID: id.String(),
		From:     from.Format("2006-01-02"),
		To:       to.Format("2006-01-02"),
		Records:  records,
	}, nil
}
