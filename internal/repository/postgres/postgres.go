package postgres

import (
	"context"
	"fmt"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/config"
)

const (
	applicationName = "geo-routing-microservice"
	connectTimeout  = 5 * time.Second
)

// DB - пул соединений с базой заведений, клиентов и заказов
type DB struct {
	*sqlx.DB
	logger *zap.Logger
}

// DSN собирает строку подключения в URL-форме, пароль экранируется
func DSN(cfg *config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/" + cfg.DBName,
	}
	q := url.Values{}
	q.Set("sslmode", cfg.SSLMode)
	q.Set("application_name", applicationName)
	q.Set("connect_timeout", fmt.Sprintf("%d", int(connectTimeout.Seconds())))
	u.RawQuery = q.Encode()
	return u.String()
}

func New(cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sqlx.Open("pgx", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.DBName, err)
	}

	logger.Info("PostgreSQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.DBName),
		zap.Int("max_conns", cfg.MaxConns),
	)

	return &DB{DB: db, logger: logger}, nil
}

func (db *DB) Close() error {
	stats := db.Stats()
	db.logger.Info("Closing PostgreSQL connection",
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int64("wait_count", stats.WaitCount))
	return db.DB.Close()
}

// Health проверяет соединение, для /health
func (db *DB) Health(ctx context.Context) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

// NewDBForTest оборачивает готовое соединение тестовой базы
func NewDBForTest(sqlxDB *sqlx.DB, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{
		DB:     sqlxDB,
		logger: logger,
	}
}
