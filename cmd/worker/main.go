package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/config"
	"github.com/geo-routing-microservice/internal/domain/repository"
	"github.com/geo-routing-microservice/internal/infrastructure/geocoding"
	"github.com/geo-routing-microservice/internal/infrastructure/natsbus"
	"github.com/geo-routing-microservice/internal/pkg/logger"
	"github.com/geo-routing-microservice/internal/repository/cache"
	"github.com/geo-routing-microservice/internal/repository/postgres"
	redisRepo "github.com/geo-routing-microservice/internal/repository/redis"
	"github.com/geo-routing-microservice/internal/usecase"
	"github.com/geo-routing-microservice/internal/worker"
	"github.com/geo-routing-microservice/internal/worker/backfill"
	"github.com/geo-routing-microservice/internal/worker/geofence"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "geo-routing-worker")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Geo Routing Worker")
	log.Info("Configuration loaded",
		zap.String("redis_addr", cfg.GetRedisAddr()),
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.String("notification_transport", cfg.Notification.Transport),
		zap.Duration("dedup_window", cfg.Notification.DedupWindow),
		zap.Bool("backfill_enabled", cfg.Worker.BackfillEnabled))

	if cfg.Geofence.Store != "redis" {
		// геозоны из памяти API-процесса воркеру недоступны
		log.Warn("GEOFENCE_STORE is not redis, the worker reads geofences from Redis regardless",
			zap.String("store", cfg.Geofence.Store))
	}

	// 3. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 4. Initialize repositories
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)
	cacheRepo := cache.NewCacheRepository(redisClient)
	geofenceStore := redisRepo.NewGeofenceStore(redisClient.Client(), log)
	distance := usecase.NewDistanceCalculator(cfg.Cache.DistanceTTL, cfg.Cache.DistanceMaxEntries)

	publisher, closePublisher := newPublisher(cfg, streamRepo, log)
	defer closePublisher()

	// 5. Initialize use cases
	geofenceUC := usecase.NewGeofenceUseCase(geofenceStore, distance, cfg.Geofence.TTL, log)
	notificationUC := usecase.NewNotificationUseCase(geofenceUC, cacheRepo, publisher, cfg.Notification.DedupWindow, log)

	// 6. Initialize workers
	manager := worker.NewWorkerManager(cfg.Worker.ShutdownTimeout, log)
	manager.Register(geofence.NewNotificationWorker(streamRepo, notificationUC, cfg.Worker.ConsumerGroup, log))

	if cfg.Worker.BackfillEnabled {
		db, err := postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}()

		provider, err := geocoding.NewProvider(&cfg.Geocoding, log)
		if err != nil {
			log.Fatal("Failed to initialize geocoding provider", zap.Error(err))
		}

		geocodingUC := usecase.NewGeocodingUseCase(
			provider,
			cacheRepo,
			postgres.NewVendorRepository(db),
			postgres.NewClientRepository(db),
			cfg.Cache,
			log,
		).WithBackfillRetryAfter(cfg.Worker.BackfillRetryAfter)
		manager.Register(backfill.NewCoordinateWorker(geocodingUC, cfg.Worker.BackfillInterval, cfg.Worker.BackfillBatch, log))
	}

	// 7. Start workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := manager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	log.Info("Workers started successfully")

	// 8. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down workers gracefully...")

	if err := manager.Stop(); err != nil {
		log.Error("Worker shutdown error", zap.Error(err))
	}

	log.Info("Workers stopped successfully")
}

// newPublisher выбирает транспорт уведомлений: Redis Stream или NATS
func newPublisher(
	cfg *config.Config,
	streamRepo repository.StreamRepository,
	log *zap.Logger,
) (repository.NotificationPublisher, func()) {
	switch cfg.Notification.Transport {
	case "nats":
		nc, err := natsbus.Connect(cfg.NATS.URL)
		if err != nil {
			log.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		log.Info("NATS connected", zap.String("url", cfg.NATS.URL))
		publisher := natsbus.NewPublisher(nc, cfg.NATS.SubjectPrefix, log)
		return publisher, publisher.Close
	case "redis":
		return redisRepo.NewNotificationPublisher(streamRepo, log), func() {}
	default:
		log.Fatal("Unknown notification transport", zap.String("transport", cfg.Notification.Transport))
		return nil, nil
	}
}
