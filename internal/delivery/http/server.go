package http

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/config"
	"github.com/geo-routing-microservice/internal/delivery/http/handler"
	"github.com/geo-routing-microservice/internal/delivery/http/middleware"
	"github.com/geo-routing-microservice/internal/pkg/errors"
	"github.com/geo-routing-microservice/internal/pkg/metrics"
	"github.com/geo-routing-microservice/internal/pkg/utils"
)

// HealthChecker - зависимость, доступность которой проверяет /health
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handlers - набор обработчиков API
type Handlers struct {
	Spatial   *handler.SpatialHandler
	Geocoding *handler.GeocodingHandler
	Route     *handler.RouteHandler
	Dispatch  *handler.DispatchHandler
	Geofence  *handler.GeofenceHandler
	Position  *handler.PositionHandler
}

// Server - HTTP сервер на основе Fiber
type Server struct {
	app      *fiber.App
	config   *config.Config
	logger   *zap.Logger
	handlers Handlers
	checks   map[string]HealthChecker
}

// NewServer - создание нового HTTP сервера. checks - зависимости для /health по имени.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	handlers Handlers,
	checks map[string]HealthChecker,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Geo Routing Microservice",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:      app,
		config:   cfg,
		logger:   logger,
		handlers: handlers,
		checks:   checks,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App - экземпляр Fiber, используется в тестах
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(metrics.Middleware())
	s.app.Use(middleware.CORS(s.config.Server.AllowOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	api.Get("/health", s.health)
	api.Get("/metrics", metrics.Handler())

	h := s.handlers

	// Spatial
	api.Post("/vendors/nearby", h.Spatial.VendorsNearby)
	api.Post("/vendors/box", h.Spatial.VendorsInBox)
	api.Post("/clients/nearby", h.Spatial.ClientsNearby)
	api.Post("/clients/box", h.Spatial.ClientsInBox)
	api.Post("/grid", h.Spatial.Grid)

	// Geocoding
	api.Post("/geocode", h.Geocoding.Geocode)
	api.Post("/reverse-geocode", h.Geocoding.ReverseGeocode)
	api.Post("/places/search", h.Geocoding.SearchPlaces)

	// Routing
	api.Post("/routes", h.Route.Route)
	api.Post("/routes/eta", h.Route.Eta)
	api.Post("/routes/tour", h.Route.Tour)
	api.Post("/zones/optimize", h.Route.Zones)

	// Dispatch
	api.Post("/dispatch/agent", h.Dispatch.OptimalAgent)

	// Geofences
	api.Post("/geofences", h.Geofence.Register)
	api.Post("/geofences/check", h.Geofence.Check)
	api.Get("/geofences/:key", h.Geofence.Get)
	api.Delete("/geofences/:key", h.Geofence.Deactivate)

	// Positions
	api.Post("/positions", h.Position.Report)
}

// health godoc
// @Summary Состояние сервиса
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/health [get]
func (s *Server) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	deps := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check.Health(ctx); err != nil {
			s.logger.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			deps[name] = "unavailable"
			status = "degraded"
			continue
		}
		deps[name] = "ok"
	}

	code := fiber.StatusOK
	if status != "healthy" {
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":       status,
		"dependencies": deps,
		"time":         time.Now(),
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

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if stderrors.As(err, &fe) {
			code := "INTERNAL_SERVER_ERROR"
			switch fe.Code {
			case fiber.StatusNotFound:
				code = "NOT_FOUND"
			case fiber.StatusMethodNotAllowed:
				code = "METHOD_NOT_ALLOWED"
			}
			return c.Status(fe.Code).JSON(utils.ErrorResponse{
				Error: errors.New(code, fe.Message, fe.Code),
			})
		}

		// AppError - ожидаемая ошибка, её статус уже залогирован middleware
		var appErr *errors.AppError
		if !stderrors.As(err, &appErr) {
			logger.Error("Unhandled error",
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		return utils.SendError(c, err)
	}
}
