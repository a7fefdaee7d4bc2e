package worker

import (
	"context"
)

// Worker интерфейс для всех воркеров
type Worker interface {
	// Start запускает воркер и блокируется до остановки или отмены контекста
	Start(ctx context.Context) error

	// Stop сигнализирует воркеру завершиться. Повторный вызов безопасен.
	Stop() error

	// Name возвращает имя воркера
	Name() string
}

// Stats - счётчики обработки воркера
type Stats struct {
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
}
