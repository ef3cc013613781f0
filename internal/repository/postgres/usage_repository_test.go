package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"github.com/maps-gateway/internal/domain"
	"github.com/maps-gateway/internal/domain/repository"
	"github.com/maps-gateway/internal/repository/postgres"
	"github.com/maps-gateway/internal/repository/postgres/testhelpers"
)

type UsageRepositoryTestSuite struct {
	suite.Suite
	testDB   *testhelpers.TestDB
	repo     repository.UsageRepository
	ctx      context.Context
	clientID uuid.UUID
}

func (s *UsageRepositoryTestSuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDB(s.T())

	err := testhelpers.ApplyMigrations(s.testDB.DB.DB, "../../../migrations")
	s.NoError(err, "Failed to apply migrations")

	db := postgres.NewDBForTest(s.testDB.DB, s.testDB.Logger)
	s.repo = postgres.NewUsageRepository(db, s.testDB.Logger)
}

func (s *UsageRepositoryTestSuite) TearDownSuite() {
	if s.testDB != nil {
		s.testDB.Close()
	}
}

func (s *UsageRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.NoError(s.testDB.Cleanup(s.ctx))

	// usage_records ссылается на clients, нужен родительский ряд
	s.clientID = uuid.New()
	now := time.Now().UTC()
	client := &domain.Client{
		ID:               s.clientID,
		Name:             "Usage Client",
		Email:            "usage@example.com",
		APIKey:           "mgw_" + uuid.NewString(),
		Plan:             domain.PlanFree,
		QuotaDaily:       1000,
		QuotaMonthly:     30000,
		UsageLastReset:   now,
		AllowedProviders: pq.StringArray{"osm"},
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	clientRepo := postgres.NewClientRepository(
		postgres.NewDBForTest(s.testDB.DB, s.testDB.Logger),
		s.testDB.Logger,
	)
	s.NoError(clientRepo.Create(s.ctx, client))
}

func (s *UsageRepositoryTestSuite) event(endpoint, provider string, responseMs int64, success bool, at time.Time) *domain.UsageEvent {
	return &domain.UsageEvent{
		ClientID:       s.clientID,
		Endpoint:       endpoint,
		Provider:       provider,
		ResponseTimeMs: responseMs,
		Success:        success,
		OccurredAt:     at,
	}
}

// Инвариант: average_response_time_ms == total / count после каждого
// обновления, включая смешанные успехи и ошибки по одному ключу.
func (s *UsageRepositoryTestSuite) TestUpsert_AverageInvariant() {
	at := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	s.NoError(s.repo.Upsert(s.ctx, s.event("geocode", "osm", 100, true, at)))
	s.NoError(s.repo.Upsert(s.ctx, s.event("geocode", "osm", 200, false, at)))
	s.NoError(s.repo.Upsert(s.ctx, s.event("geocode", "osm", 300, true, at)))

	records, err := s.repo.ListByClient(s.ctx, s.clientID,
		at.AddDate(0, 0, -1), at.AddDate(0, 0, 1))
	s.NoError(err)
	s.Require().Len(records, 1)

	rec := records[0]
	s.Equal(int64(3), rec.Count)
	s.Equal(int64(2), rec.SuccessCount)
	s.Equal(int64(1), rec.ErrorCount)
	s.Equal(int64(600), rec.TotalResponseTimeMs)
	s.InDelta(200.0, rec.AverageResponseTimeMs, 0.001)
}

func (s *UsageRepositoryTestSuite) TestUpsert_SeparateKeysPerEndpointAndProvider() {
	at := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	s.NoError(s.repo.Upsert(s.ctx, s.event("geocode", "osm", 100, true, at)))
	s.NoError(s.repo.Upsert(s.ctx, s.event("geocode", "google", 100, true, at)))
	s.NoError(s.repo.Upsert(s.ctx, s.event("directions", "osm", 100, true, at)))

	records, err := s.repo.ListByClient(s.ctx, s.clientID,
		at.AddDate(0, 0, -1), at.AddDate(0, 0, 1))
	s.NoError(err)
	s.Len(records, 3)
	for _, rec := range records {
		s.Equal(int64(1), rec.Count)
	}
}

func (s *UsageRepositoryTestSuite) TestUpsert_SeparateDays() {
	day1 := time.Date(2026, 5, 10, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2026, 5, 11, 0, 1, 0, 0, time.UTC)

	s.NoError(s.repo.Upsert(s.ctx, s.event("geocode", "osm", 100, true, day1)))
	s.NoError(s.repo.Upsert(s.ctx, s.event("geocode", "osm", 100, true, day2)))

	records, err := s.repo.ListByClient(s.ctx, s.clientID,
		day1.AddDate(0, 0, -1), day2.AddDate(0, 0, 1))
	s.NoError(err)
	s.Len(records, 2)
}

func (s *UsageRepositoryTestSuite) TestListByClient_RangeFilter() {
	inside := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	outside := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	s.NoError(s.repo.Upsert(s.ctx, s.event("geocode", "osm", 100, true, inside)))
	s.NoError(s.repo.Upsert(s.ctx, s.event("geocode", "osm", 100, true, outside)))

	records, err := s.repo.ListByClient(s.ctx, s.clientID,
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC))
	s.NoError(err)
	s.Require().Len(records, 1)
	s.Equal("geocode", records[0].Endpoint)
}

func (s *UsageRepositoryTestSuite) TestListByClient_Empty() {
	records, err := s.repo.ListByClient(s.ctx, s.clientID,
		time.Now().UTC().AddDate(0, 0, -30), time.Now().UTC())
	s.NoError(err)
	s.Empty(records)
}

func TestUsageRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(UsageRepositoryTestSuite))
}
