package testhelpers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

// ApplyMigrations применяет *.up.sql из migrationsPath в лексическом порядке.
// Миграции написаны с IF NOT EXISTS, повторный запуск безопасен.
func ApplyMigrations(ctx context.Context, db *sqlx.DB, migrationsPath string) error {
	files, err := migrationFiles(migrationsPath, ".up.sql")
	if err != nil {
		return err
	}
	return execFiles(ctx, db, migrationsPath, files)
}

// RollbackMigrations применяет *.down.sql в обратном порядке
func RollbackMigrations(ctx context.Context, db *sqlx.DB, migrationsPath string) error {
	files, err := migrationFiles(migrationsPath, ".down.sql")
	if err != nil {
		return err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return execFiles(ctx, db, migrationsPath, files)
}

func migrationFiles(migrationsPath, suffix string) ([]string, error) {
	entries, err := os.ReadDir(migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func execFiles(ctx context.Context, db *sqlx.DB, dir string, files []string) error {
	for _, file := range files {
		content, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}
