package testhelpers

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// TestDB - соединение с тестовой базой
type TestDB struct {
	DB     *sqlx.DB
	Logger *zap.Logger
}

// SetupTestDB подключается к тестовой базе (TEST_DB_*), тест пропускается, если база недоступна.
// Соединение закрывается в t.Cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s connect_timeout=2",
		getEnv("TEST_DB_HOST", "localhost"),
		getEnv("TEST_DB_PORT", "5433"),
		getEnv("TEST_DB_USER", "postgres"),
		getEnv("TEST_DB_PASSWORD", "postgres"),
		getEnv("TEST_DB_NAME", "delivery_test"),
		getEnv("TEST_DB_SSLMODE", "disable"),
	)

	var (
		db  *sqlx.DB
		err error
	)
	delay := 200 * time.Millisecond
	for attempt := 1; attempt <= 3; attempt++ {
		if db, err = sqlx.Connect("postgres", connStr); err == nil {
			break
		}
		t.Logf("Database not ready (attempt %d/3), waiting %v...", attempt, delay)
		time.Sleep(delay)
		delay *= 2
	}
	if err != nil {
		t.Skipf("Test database not available: %v", err)
	}

	tdb := &TestDB{DB: db, Logger: zap.NewNop()}
	t.Cleanup(tdb.Close)
	return tdb
}

// Close закрывает соединение
func (tdb *TestDB) Close() {
	if tdb.DB != nil {
		_ = tdb.DB.Close()
	}
}

// Cleanup очищает таблицы фикстур и сбрасывает последовательности
func (tdb *TestDB) Cleanup(ctx context.Context) error {
	query := "TRUNCATE TABLE " + strings.Join(fixtureTables, ", ") + " RESTART IDENTITY CASCADE"
	_, err := tdb.DB.ExecContext(ctx, query)
	return err
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
