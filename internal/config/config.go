package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Cache        CacheConfig
	Log          LogConfig
	Worker       WorkerConfig
	Geocoding    GeocodingConfig
	Routing      RoutingConfig
	Geofence     GeofenceConfig
	Matching     MatchingConfig
	Notification NotificationConfig
	NATS         NATSConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	AllowOrigins string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	DistanceTTL        time.Duration
	DistanceMaxEntries int
	GeocodeTTL         time.Duration
	PlacesTTL          time.Duration
	RouteTTL           time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled          bool
	ConsumerGroup    string
	BackfillEnabled  bool
	BackfillInterval time.Duration
	BackfillBatch    int

	// BackfillRetryAfter - через сколько повторять геокодирование адреса после неудачи
	BackfillRetryAfter time.Duration
	ShutdownTimeout    time.Duration
}

// GeocodingConfig - настройки провайдера геокодирования и маршрутов
type GeocodingConfig struct {
	Provider       string
	RequestTimeout time.Duration
	UserAgent      string

	NominatimBaseURL string

	GoogleBaseURL string
	GoogleAPIKey  string

	MapboxBaseURL     string
	MapboxAccessToken string
}

type RoutingConfig struct {
	MinutesPerKm       float64
	PreparationMinutes int
	BufferMinutes      int
	MaxTwoOptPasses    int
	TwoOptTimeout      time.Duration
}

type GeofenceConfig struct {
	Store string
	TTL   time.Duration
}

type MatchingConfig struct {
	AgentPool      string
	SearchRadiusKm float64
	// AgentHeartbeatTTL - курьер без обновлений дольше этого срока выпадает из поиска
	AgentHeartbeatTTL time.Duration
	// StaticAgents - "id|name|lat|lng" через запятую
	StaticAgents []string
}

type NotificationConfig struct {
	Transport   string
	DedupWindow time.Duration
}

type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// Provider names
const (
	ProviderNominatim = "nominatim"
	ProviderGoogle    = "google"
	ProviderMapbox    = "mapbox"
)

func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom читает конфигурацию из env-файла (если он существует) и переменных окружения
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("API_HOST"),
			Port:         v.GetInt("API_PORT"),
			Env:          v.GetString("API_ENV"),
			AllowOrigins: v.GetString("API_ALLOW_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			DistanceTTL:        time.Duration(v.GetInt("DISTANCE_CACHE_TTL")) * time.Second,
			DistanceMaxEntries: v.GetInt("DISTANCE_CACHE_MAX_ENTRIES"),
			GeocodeTTL:         time.Duration(v.GetInt("GEOCODE_CACHE_TTL")) * time.Second,
			PlacesTTL:          time.Duration(v.GetInt("PLACES_CACHE_TTL")) * time.Second,
			RouteTTL:           time.Duration(v.GetInt("ROUTE_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:            v.GetBool("WORKER_ENABLED"),
			ConsumerGroup:      v.GetString("WORKER_CONSUMER_GROUP"),
			BackfillEnabled:    v.GetBool("WORKER_BACKFILL_ENABLED"),
			BackfillInterval:   time.Duration(v.GetInt("WORKER_BACKFILL_INTERVAL")) * time.Second,
			BackfillBatch:      v.GetInt("WORKER_BACKFILL_BATCH"),
			BackfillRetryAfter: time.Duration(v.GetInt("WORKER_BACKFILL_RETRY_AFTER")) * time.Second,
			ShutdownTimeout:    time.Duration(v.GetInt("WORKER_SHUTDOWN_TIMEOUT")) * time.Second,
		},
		Geocoding: GeocodingConfig{
			Provider:          strings.ToLower(v.GetString("GEOCODING_PROVIDER")),
			RequestTimeout:    time.Duration(v.GetInt("GEOCODING_REQUEST_TIMEOUT")) * time.Second,
			UserAgent:         v.GetString("GEOCODING_USER_AGENT"),
			NominatimBaseURL:  v.GetString("NOMINATIM_BASE_URL"),
			GoogleBaseURL:     v.GetString("GOOGLE_MAPS_BASE_URL"),
			GoogleAPIKey:      v.GetString("GOOGLE_MAPS_API_KEY"),
			MapboxBaseURL:     v.GetString("MAPBOX_BASE_URL"),
			MapboxAccessToken: v.GetString("MAPBOX_ACCESS_TOKEN"),
		},
		Routing: RoutingConfig{
			MinutesPerKm:       v.GetFloat64("ROUTING_MINUTES_PER_KM"),
			PreparationMinutes: v.GetInt("ROUTING_PREPARATION_MINUTES"),
			BufferMinutes:      v.GetInt("ROUTING_BUFFER_MINUTES"),
			MaxTwoOptPasses:    v.GetInt("ROUTING_MAX_TWO_OPT_PASSES"),
			TwoOptTimeout:      time.Duration(v.GetInt("ROUTING_TWO_OPT_TIMEOUT_MS")) * time.Millisecond,
		},
		Geofence: GeofenceConfig{
			Store: strings.ToLower(v.GetString("GEOFENCE_STORE")),
			TTL:   time.Duration(v.GetInt("GEOFENCE_TTL")) * time.Second,
		},
		Matching: MatchingConfig{
			AgentPool:         strings.ToLower(v.GetString("MATCHING_AGENT_POOL")),
			SearchRadiusKm:    v.GetFloat64("MATCHING_SEARCH_RADIUS_KM"),
			AgentHeartbeatTTL: time.Duration(v.GetInt("MATCHING_AGENT_HEARTBEAT_TTL")) * time.Second,
			StaticAgents:      parseList(v.GetString("MATCHING_STATIC_AGENTS")),
		},
		Notification: NotificationConfig{
			Transport:   strings.ToLower(v.GetString("NOTIFICATION_TRANSPORT")),
			DedupWindow: time.Duration(v.GetInt("NOTIFICATION_DEDUP_WINDOW")) * time.Second,
		},
		NATS: NATSConfig{
			URL:           v.GetString("NATS_URL"),
			SubjectPrefix: v.GetString("NATS_SUBJECT_PREFIX"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "development")
	v.SetDefault("API_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "delivery")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 3600)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 600)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("DISTANCE_CACHE_TTL", 3600)
	v.SetDefault("DISTANCE_CACHE_MAX_ENTRIES", 100000)
	v.SetDefault("GEOCODE_CACHE_TTL", 86400)
	v.SetDefault("PLACES_CACHE_TTL", 86400)
	v.SetDefault("ROUTE_CACHE_TTL", 3600)

	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("WORKER_ENABLED", true)
	v.SetDefault("WORKER_CONSUMER_GROUP", "geofence-notification-workers")
	v.SetDefault("WORKER_BACKFILL_ENABLED", true)
	v.SetDefault("WORKER_BACKFILL_INTERVAL", 300)
	v.SetDefault("WORKER_BACKFILL_BATCH", 50)
	v.SetDefault("WORKER_BACKFILL_RETRY_AFTER", 86400)
	v.SetDefault("WORKER_SHUTDOWN_TIMEOUT", 30)

	v.SetDefault("GEOCODING_PROVIDER", ProviderNominatim)
	v.SetDefault("GEOCODING_REQUEST_TIMEOUT", 10)
	v.SetDefault("GEOCODING_USER_AGENT", "geo-routing-microservice/1.0")
	v.SetDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GOOGLE_MAPS_BASE_URL", "https://maps.googleapis.com")
	v.SetDefault("MAPBOX_BASE_URL", "https://api.mapbox.com")

	v.SetDefault("ROUTING_MINUTES_PER_KM", 3.0)
	v.SetDefault("ROUTING_PREPARATION_MINUTES", 15)
	v.SetDefault("ROUTING_BUFFER_MINUTES", 5)
	v.SetDefault("ROUTING_MAX_TWO_OPT_PASSES", 50)
	v.SetDefault("ROUTING_TWO_OPT_TIMEOUT_MS", 200)

	v.SetDefault("GEOFENCE_STORE", "memory")
	v.SetDefault("GEOFENCE_TTL", 86400)

	v.SetDefault("MATCHING_AGENT_POOL", "static")
	v.SetDefault("MATCHING_SEARCH_RADIUS_KM", 10.0)
	v.SetDefault("MATCHING_AGENT_HEARTBEAT_TTL", 300)
	v.SetDefault("MATCHING_STATIC_AGENTS", "dp-1|Alex Rider|40.7128|-74.0060,dp-2|Sam Carter|40.7580|-73.9855,dp-3|Jo Park|40.6892|-74.0445")

	v.SetDefault("NOTIFICATION_TRANSPORT", "redis")
	v.SetDefault("NOTIFICATION_DEDUP_WINDOW", 600)

	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("NATS_SUBJECT_PREFIX", "notifications")
}

func (c *Config) validate() error {
	switch c.Geocoding.Provider {
	case ProviderNominatim:
	case ProviderGoogle:
		if c.Geocoding.GoogleAPIKey == "" {
			return fmt.Errorf("GOOGLE_MAPS_API_KEY is required for provider %q", ProviderGoogle)
		}
	case ProviderMapbox:
		if c.Geocoding.MapboxAccessToken == "" {
			return fmt.Errorf("MAPBOX_ACCESS_TOKEN is required for provider %q", ProviderMapbox)
		}
	default:
		return fmt.Errorf("unknown geocoding provider %q", c.Geocoding.Provider)
	}

	if c.Routing.MinutesPerKm <= 0 {
		return fmt.Errorf("ROUTING_MINUTES_PER_KM must be positive, got %v", c.Routing.MinutesPerKm)
	}

	return nil
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
