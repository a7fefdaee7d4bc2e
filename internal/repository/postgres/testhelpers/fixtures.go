package testhelpers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
)

// fixtureTables - таблицы с BIGSERIAL id, которые фикстуры заполняют явными id
var fixtureTables = []string{"vendors", "clients", "orders"}

// LoadFixtures загружает SQL-фикстуры одной транзакцией и сдвигает последовательности id
// за максимальный вставленный id, чтобы последующие INSERT без id не конфликтовали.
func LoadFixtures(ctx context.Context, db *sqlx.DB, fixturesPath string, files []string) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin fixtures tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, file := range files {
		content, err := os.ReadFile(filepath.Join(fixturesPath, file))
		if err != nil {
			return fmt.Errorf("read fixture %s: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("load fixture %s: %w", file, err)
		}
	}

	for _, table := range fixtureTables {
		query := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)",
			table,
		)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("sync sequence for %s: %w", table, err)
		}
	}

	return tx.Commit()
}
