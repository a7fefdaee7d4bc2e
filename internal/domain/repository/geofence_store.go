package repository

import (
	"context"

	"github.com/geo-routing-microservice/internal/domain"
)

// GeofenceStore - хранилище зон. Реализации должны быть безопасны для конкурентного доступа.
type GeofenceStore interface {
	// Save сохраняет зону, заменяя существующую с тем же ключом
	Save(ctx context.Context, fence *domain.Geofence) error

	// Get возвращает зону по ключу или (nil, nil), если её нет
	Get(ctx context.Context, key string) (*domain.Geofence, error)

	// List возвращает все сохранённые зоны
	List(ctx context.Context) ([]*domain.Geofence, error)
}
