package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/maps-gateway/internal/config"
	"github.com/maps-gateway/internal/delivery/http/handler"
	"github.com/maps-gateway/internal/delivery/http/middleware"
	"github.com/maps-gateway/internal/domain/repository"
	"github.com/maps-gateway/internal/pkg/utils"
	"github.com/maps-gateway/internal/ratelimit"
	"github.com/maps-gateway/internal/repository/cache"
	"github.com/maps-gateway/internal/repository/postgres"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	db    *postgres.DB
	redis *cache.Redis

	clientRepo repository.ClientRepository
	governor   *ratelimit.Governor

	// Handlers
	geocodeHandler    *handler.GeocodeHandler
	directionsHandler *handler.DirectionsHandler
	providerHandler   *handler.ProviderHandler
	clientHandler     *handler.ClientHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	db *postgres.DB,
	redis *cache.Redis,
	clientRepo repository.ClientRepository,
	governor *ratelimit.Governor,
	geocodeHandler *handler.GeocodeHandler,
	directionsHandler *handler.DirectionsHandler,
	providerHandler *handler.ProviderHandler,
	clientHandler *handler.ClientHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Maps Gateway",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:               app,
		config:            cfg,
		logger:            logger,
		db:                db,
		redis:             redis,
		clientRepo:        clientRepo,
		governor:          governor,
		geocodeHandler:    geocodeHandler,
		directionsHandler: directionsHandler,
		providerHandler:   providerHandler,
		clientHandler:     clientHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", s.health)

	// Публичная регистрация с жестким лимитом по IP
	api.Post("/clients", middleware.StrictRateLimit(s.governor), s.clientHandler.Register)

	// Все остальные маршруты требуют API ключ
	auth := middleware.APIKeyAuth(s.clientRepo, s.logger)

	api.Get("/geocode", auth, s.geocodeHandler.Geocode)
	api.Get("/reverse-geocode", auth, s.geocodeHandler.ReverseGeocode)
	api.Get("/directions", auth, s.directionsHandler.GetDirections)
	api.Get("/directions/modes", auth, s.directionsHandler.GetModes)
	api.Get("/providers", auth, s.providerHandler.ListProviders)

	api.Get("/clients/me", auth, s.clientHandler.GetMe)
	api.Patch("/clients/me", auth, s.clientHandler.UpdateMe)
	api.Delete("/clients/me", auth, s.clientHandler.DeactivateMe)
	api.Get("/clients/me/usage", auth, s.clientHandler.GetUsage)
}

// health проверяет доступность Postgres и Redis
func (s *Server) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	checks := fiber.Map{"database": "ok", "redis": "ok"}

	if err := s.db.Health(ctx); err != nil {
		status = "degraded"
		checks["database"] = err.Error()
	}
	if err := s.redis.Health(ctx); err != nil {
		status = "degraded"
		checks["redis"] = err.Error()
	}

	code := fiber.StatusOK
	if status != "healthy" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": checks,
		"time":   time.Now().UTC(),
	})
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - обработчик ошибок, не перехваченных хендлерами
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if e, ok := err.(*fiber.Error); ok {
			return c.Status(e.Code).JSON(fiber.Map{
				"status":  "error",
				"message": e.Message,
				"code":    e.Code,
			})
		}

		logger.Error("Unhandled HTTP error",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return utils.SendError(c, err)
	}
}
