package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"github.com/maps-gateway/internal/domain"
	"github.com/maps-gateway/internal/domain/repository"
	apperrors "github.com/maps-gateway/internal/pkg/errors"
	"github.com/maps-gateway/internal/repository/postgres"
	"github.com/maps-gateway/internal/repository/postgres/testhelpers"
)

type ClientRepositoryTestSuite struct {
	suite.Suite
	testDB *testhelpers.TestDB
	repo   repository.ClientRepository
	ctx    context.Context
}

func (s *ClientRepositoryTestSuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDB(s.T())

	err := testhelpers.ApplyMigrations(s.testDB.DB.DB, "../../../migrations")
	s.NoError(err, "Failed to apply migrations")

	s.repo = postgres.NewClientRepository(
		postgres.NewDBForTest(s.testDB.DB, s.testDB.Logger),
		s.testDB.Logger,
	)
}

func (s *ClientRepositoryTestSuite) TearDownSuite() {
	if s.testDB != nil {
		s.testDB.Close()
	}
}

func (s *ClientRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	err := s.testDB.Cleanup(s.ctx)
	s.NoError(err, "Failed to cleanup test database")
}

func (s *ClientRepositoryTestSuite) newClient(email string) *domain.Client {
	now := time.Now().UTC()
	return &domain.Client{
		ID:               uuid.New(),
		Name:             "Test Client",
		Email:            email,
		APIKey:           "mgw_" + uuid.NewString(),
		Plan:             domain.PlanFree,
		QuotaDaily:       1000,
		QuotaMonthly:     30000,
		UsageLastReset:   now,
		AllowedProviders: pq.StringArray{"osm", "google"},
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (s *ClientRepositoryTestSuite) TestCreateAndGetByAPIKey() {
	client := s.newClient("create@example.com")

	err := s.repo.Create(s.ctx, client)
	s.NoError(err)

	got, err := s.repo.GetByAPIKey(s.ctx, client.APIKey)
	s.NoError(err)
	s.Equal(client.ID, got.ID)
	s.Equal(client.Email, got.Email)
	s.Equal(domain.PlanFree, got.Plan)
	s.Equal(pq.StringArray{"osm", "google"}, got.AllowedProviders)
	s.True(got.IsActive)
}

func (s *ClientRepositoryTestSuite) TestCreate_DuplicateEmail() {
	first := s.newClient("dup@example.com")
	s.NoError(s.repo.Create(s.ctx, first))

	second := s.newClient("dup@example.com")
	err := s.repo.Create(s.ctx, second)
	s.ErrorIs(err, apperrors.ErrClientExists)
}

func (s *ClientRepositoryTestSuite) TestGetByAPIKey_InactiveClient() {
	client := s.newClient("inactive@example.com")
	s.NoError(s.repo.Create(s.ctx, client))
	s.NoError(s.repo.Deactivate(s.ctx, client.ID))

	_, err := s.repo.GetByAPIKey(s.ctx, client.APIKey)
	s.ErrorIs(err, apperrors.ErrInvalidCredentials)
}

func (s *ClientRepositoryTestSuite) TestGetByID_NotFound() {
	_, err := s.repo.GetByID(s.ctx, uuid.New())
	s.ErrorIs(err, apperrors.ErrClientNotFound)
}

func (s *ClientRepositoryTestSuite) TestUpdate() {
	client := s.newClient("update@example.com")
	s.NoError(s.repo.Create(s.ctx, client))

	client.Name = "Renamed"
	client.Plan = domain.PlanPremium
	client.QuotaDaily, client.QuotaMonthly = domain.DefaultQuota(domain.PlanPremium)
	client.AllowedProviders = pq.StringArray{"mapbox"}

	s.NoError(s.repo.Update(s.ctx, client))

	got, err := s.repo.GetByID(s.ctx, client.ID)
	s.NoError(err)
	s.Equal("Renamed", got.Name)
	s.Equal(domain.PlanPremium, got.Plan)
	s.Equal(int64(50000), got.QuotaDaily)
	s.Equal(pq.StringArray{"mapbox"}, got.AllowedProviders)
}

func (s *ClientRepositoryTestSuite) TestUpdate_NotFound() {
	client := s.newClient("ghost@example.com")
	err := s.repo.Update(s.ctx, client)
	s.ErrorIs(err, apperrors.ErrClientNotFound)
}

// Конкурентные инкременты не должны терять обновления: арифметика
// выполняется на стороне базы над заблокированной строкой.
func (s *ClientRepositoryTestSuite) TestIncrementUsage_Concurrent() {
	client := s.newClient("concurrent@example.com")
	s.NoError(s.repo.Create(s.ctx, client))

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.repo.IncrementUsage(context.Background(), client.ID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	got, err := s.repo.GetByID(s.ctx, client.ID)
	s.NoError(err)
	s.Equal(int64(n), got.UsageDaily)
	s.Equal(int64(n), got.UsageMonthly)
}

func (s *ClientRepositoryTestSuite) setUsage(clientID uuid.UUID, daily, monthly int64, lastReset time.Time) {
	_, err := s.testDB.DB.ExecContext(s.ctx, `
		UPDATE clients SET usage_daily = $1, usage_monthly = $2, usage_last_reset = $3
		WHERE id = $4`, daily, monthly, lastReset, clientID)
	s.NoError(err)
}

func (s *ClientRepositoryTestSuite) TestRolloverUsage_NewDay() {
	client := s.newClient("rollover-day@example.com")
	s.NoError(s.repo.Create(s.ctx, client))

	lastReset := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 16, 0, 5, 0, 0, time.UTC)
	s.setUsage(client.ID, 999, 5000, lastReset)

	counters, err := s.repo.RolloverUsage(s.ctx, client.ID, now)
	s.NoError(err)
	s.Equal(int64(0), counters.Daily, "daily counter resets on a new day")
	s.Equal(int64(5000), counters.Monthly, "monthly counter survives within the month")
}

func (s *ClientRepositoryTestSuite) TestRolloverUsage_NewMonth() {
	client := s.newClient("rollover-month@example.com")
	s.NoError(s.repo.Create(s.ctx, client))

	lastReset := time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC)
	now := time.Date(2026, 4, 1, 0, 5, 0, 0, time.UTC)
	s.setUsage(client.ID, 999, 29999, lastReset)

	counters, err := s.repo.RolloverUsage(s.ctx, client.ID, now)
	s.NoError(err)
	s.Equal(int64(0), counters.Daily)
	s.Equal(int64(0), counters.Monthly)
}

func (s *ClientRepositoryTestSuite) TestRolloverUsage_SameDay() {
	client := s.newClient("rollover-same@example.com")
	s.NoError(s.repo.Create(s.ctx, client))

	lastReset := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)
	s.setUsage(client.ID, 42, 420, lastReset)

	counters, err := s.repo.RolloverUsage(s.ctx, client.ID, now)
	s.NoError(err)
	s.Equal(int64(42), counters.Daily)
	s.Equal(int64(420), counters.Monthly)
}

// Конкурентные вызовы rollover на границе дня не должны сбросить
// счетчик дважды: условие сравнивает usage_last_reset внутри UPDATE.
func (s *ClientRepositoryTestSuite) TestRolloverUsage_ConcurrentSingleReset() {
	client := s.newClient("rollover-race@example.com")
	s.NoError(s.repo.Create(s.ctx, client))

	lastReset := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 16, 0, 0, 1, 0, time.UTC)
	s.setUsage(client.ID, 500, 500, lastReset)

	const n = 5
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.repo.RolloverUsage(context.Background(), client.ID, now)
			s.NoError(err)
		}()
	}
	wg.Wait()

	// После сброса инкременты должны накапливаться, а не исчезать
	s.NoError(s.repo.IncrementUsage(s.ctx, client.ID))
	counters, err := s.repo.RolloverUsage(s.ctx, client.ID, now)
	s.NoError(err)
	s.Equal(int64(1), counters.Daily)
}

func (s *ClientRepositoryTestSuite) TestRolloverUsage_NotFound() {
	_, err := s.repo.RolloverUsage(s.ctx, uuid.New(), time.Now().UTC())
	s.ErrorIs(err, apperrors.ErrClientNotFound)
}

func (s *ClientRepositoryTestSuite) TestDeactivate_NotFound() {
	err := s.repo.Deactivate(s.ctx, uuid.New())
	s.ErrorIs(err, apperrors.ErrClientNotFound)
}

func TestClientRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ClientRepositoryTestSuite))
}
