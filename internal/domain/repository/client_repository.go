package repository

import (
	"context"
	"time"

	"github.com/geo-routing-microservice/internal/domain"
)

// ClientRepository определяет методы чтения клиентов
type ClientRepository interface {
	// ListInBox возвращает клиентов с известными координатами внутри области
	ListInBox(ctx context.Context, box domain.BoundingBox) ([]*domain.Client, error)

	// ListMissingCoordinates возвращает клиентов с адресом, но без координат.
	// Записи с попыткой геокодирования моложе retryAfter пропускаются, давние попытки идут первыми.
	ListMissingCoordinates(ctx context.Context, limit int, retryAfter time.Duration) ([]*domain.Client, error)

	// UpdateCoordinates сохраняет координаты, найденные геокодированием
	UpdateCoordinates(ctx context.Context, id int64, point domain.Coordinate) error

	// MarkGeocodeAttempted отмечает неудачную попытку геокодирования
	MarkGeocodeAttempted(ctx context.Context, id int64) error
}
