package main

// @title Geo Routing Microservice API
// @version 1.0.0
// @description Геопространственный сервис доставки: поиск заведений и клиентов рядом с точкой,
// @description геокодирование, маршруты и ETA, оптимизация туров, зоны доставки,
// @description выбор курьера и геозоны с уведомлениями.

// @contact.name API Support
// @contact.email support@geo-routing-microservice.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/geo-routing-microservice/docs/swagger"
	"github.com/geo-routing-microservice/internal/config"
	httpDelivery "github.com/geo-routing-microservice/internal/delivery/http"
	"github.com/geo-routing-microservice/internal/delivery/http/handler"
	"github.com/geo-routing-microservice/internal/domain/repository"
	"github.com/geo-routing-microservice/internal/infrastructure/geocoding"
	"github.com/geo-routing-microservice/internal/pkg/logger"
	"github.com/geo-routing-microservice/internal/repository/cache"
	"github.com/geo-routing-microservice/internal/repository/memory"
	"github.com/geo-routing-microservice/internal/repository/postgres"
	redisRepo "github.com/geo-routing-microservice/internal/repository/redis"
	"github.com/geo-routing-microservice/internal/repository/static"
	"github.com/geo-routing-microservice/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "geo-routing-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Geo Routing Microservice")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("geocoding_provider", cfg.Geocoding.Provider),
		zap.String("geofence_store", cfg.Geofence.Store),
		zap.String("agent_pool", cfg.Matching.AgentPool),
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
	log.Info("PostgreSQL connected")

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
	log.Info("Redis connected")

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

	// 6. Initialize Repositories
	vendorRepo := postgres.NewVendorRepository(db)
	clientRepo := postgres.NewClientRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	provider, err := geocoding.NewProvider(&cfg.Geocoding, log)
	if err != nil {
		log.Fatal("Failed to initialize geocoding provider", zap.Error(err))
	}

	geofenceStore := newGeofenceStore(cfg, redisClient, log)
	agentPool, agentDirectory := newAgentPool(cfg, redisClient, log)

	log.Info("Repositories initialized")

	// 7. Initialize Use Cases
	distance := usecase.NewDistanceCalculator(cfg.Cache.DistanceTTL, cfg.Cache.DistanceMaxEntries)

	spatialUC := usecase.NewSpatialUseCase(vendorRepo, clientRepo, distance, log)
	geocodingUC := usecase.NewGeocodingUseCase(provider, cacheRepo, vendorRepo, clientRepo, cfg.Cache, log)
	routeUC := usecase.NewRouteUseCase(geocodingUC, distance, cfg.Routing, log)
	zoneUC := usecase.NewZoneUseCase(spatialUC, routeUC, orderRepo, log)
	matcherUC := usecase.NewMatcherUseCase(agentPool, distance, log)
	geofenceUC := usecase.NewGeofenceUseCase(geofenceStore, distance, cfg.Geofence.TTL, log)
	positionUC := usecase.NewPositionUseCase(streamRepo, agentDirectory, log)

	log.Info("Use cases initialized")

	// 8. Initialize HTTP Handlers
	handlers := httpDelivery.Handlers{
		Spatial:   handler.NewSpatialHandler(spatialUC, log),
		Geocoding: handler.NewGeocodingHandler(geocodingUC, log),
		Route:     handler.NewRouteHandler(routeUC, geocodingUC, zoneUC, log),
		Dispatch:  handler.NewDispatchHandler(matcherUC, geocodingUC, log),
		Geofence:  handler.NewGeofenceHandler(geofenceUC, log),
		Position:  handler.NewPositionHandler(positionUC, log),
	}

	log.Info("HTTP handlers initialized")

	// 9. Initialize HTTP Server
	server := httpDelivery.NewServer(cfg, log, handlers, map[string]httpDelivery.HealthChecker{
		"postgres": db,
		"redis":    redisClient,
	})

	// 10. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}

// newGeofenceStore выбирает хранилище геозон. Воркер уведомлений видит только redis-хранилище.
func newGeofenceStore(cfg *config.Config, redisClient *cache.Redis, log *zap.Logger) repository.GeofenceStore {
	switch cfg.Geofence.Store {
	case "redis":
		return redisRepo.NewGeofenceStore(redisClient.Client(), log)
	case "memory":
		log.Warn("Geofences are kept in process memory and are not visible to the notification worker")
		return memory.NewGeofenceStore()
	default:
		log.Fatal("Unknown geofence store", zap.String("store", cfg.Geofence.Store))
		return nil
	}
}

// newAgentPool выбирает источник курьеров. Для redis возвращается и каталог для записи позиций.
func newAgentPool(
	cfg *config.Config,
	redisClient *cache.Redis,
	log *zap.Logger,
) (repository.AgentPoolProvider, repository.AgentLocationRepository) {
	switch cfg.Matching.AgentPool {
	case "redis":
		locator := redisRepo.NewAgentLocator(redisClient.Client(), cfg.Matching.SearchRadiusKm, log).
			WithHeartbeatTTL(cfg.Matching.AgentHeartbeatTTL)
		return locator, locator
	case "static":
		pool, err := static.NewAgentPool(cfg.Matching.StaticAgents)
		if err != nil {
			log.Fatal("Failed to parse static agents", zap.Error(err))
		}
		log.Info("Using static agent pool", zap.Int("agents", len(cfg.Matching.StaticAgents)))
		return pool, nil
	default:
		log.Fatal("Unknown agent pool", zap.String("pool", cfg.Matching.AgentPool))
		return nil, nil
	}
}
