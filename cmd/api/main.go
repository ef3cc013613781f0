package main

// @title Maps Gateway API
// @version 1.0.0
// @description Шлюз к провайдерам карт (Google Maps, Mapbox, OpenStreetMap) с единым нормализованным форматом ответов.
// @description
// @description Основные возможности:
// @description - Прямое и обратное геокодирование через любого сконфигурированного провайдера
// @description - Построение маршрутов с расстоянием, длительностью и шагами
// @description - Кеширование результатов, квоты и лимиты частоты на клиента
// @description - Статистика использования по дням, эндпоинтам и провайдерам

// @contact.name API Support
// @contact.email support@maps-gateway.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/maps-gateway/docs/swagger"
	"github.com/maps-gateway/internal/config"
	httpDelivery "github.com/maps-gateway/internal/delivery/http"
	"github.com/maps-gateway/internal/delivery/http/handler"
	"github.com/maps-gateway/internal/infrastructure"
	"github.com/maps-gateway/internal/pkg/logger"
	"github.com/maps-gateway/internal/ratelimit"
	"github.com/maps-gateway/internal/repository/cache"
	"github.com/maps-gateway/internal/repository/postgres"
	redisRepo "github.com/maps-gateway/internal/repository/redis"
	"github.com/maps-gateway/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Maps Gateway")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}
	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}
	log.Info("All connections healthy")

	// 6. Initialize repositories
	clientRepo := postgres.NewClientRepository(db, log)
	usageRepo := postgres.NewUsageRepository(db, log)
	resultCache := cache.NewResultCache(redisClient, &cfg.Cache)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	// 7. Provider registry
	registry := infrastructure.NewRegistry(&cfg.Providers, log)
	log.Info("Provider registry initialized",
		zap.Int("providers", len(registry.Available())))

	// 8. Rate governor
	governor := ratelimit.NewGovernor(&cfg.RateLimit)
	defer governor.Stop()

	// 9. Initialize use cases
	quotaUC := usecase.NewQuotaUseCase(clientRepo, streamRepo, log)
	gatewayUC := usecase.NewGatewayUseCase(registry, resultCache, governor, quotaUC, log)
	clientUC := usecase.NewClientUseCase(clientRepo, usageRepo, log)

	// 10. Initialize HTTP handlers
	geocodeHandler := handler.NewGeocodeHandler(gatewayUC, log)
	directionsHandler := handler.NewDirectionsHandler(gatewayUC, log)
	providerHandler := handler.NewProviderHandler(gatewayUC)
	clientHandler := handler.NewClientHandler(clientUC, log)

	// 11. Initialize HTTP server
	server := httpDelivery.NewServer(
		cfg,
		log,
		db,
		redisClient,
		clientRepo,
		governor,
		geocodeHandler,
		directionsHandler,
		providerHandler,
		clientHandler,
	)

	// 12. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 13. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
