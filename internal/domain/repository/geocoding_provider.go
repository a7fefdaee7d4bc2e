package repository

import (
	"context"

	"github.com/geo-routing-microservice/internal/domain"
)

// GeocodingProvider определяет методы внешнего провайдера геокодирования и маршрутов.
// "Не найдено" возвращается как (nil, nil), ошибка означает недоступность провайдера.
type GeocodingProvider interface {
	// Name возвращает имя провайдера для логов и метрик
	Name() string

	// Geocode преобразует адрес в координаты
	Geocode(ctx context.Context, address string) (*domain.GeocodeResult, error)

	// ReverseGeocode преобразует координаты в адрес
	ReverseGeocode(ctx context.Context, point domain.Coordinate) (*domain.AddressComponents, error)

	// Route строит маршрут между двумя точками
	Route(
		ctx context.Context,
		origin, destination domain.Coordinate,
		mode domain.TravelMode,
	) (*domain.ProviderRoute, error)

	// SearchPlaces ищет места по запросу в радиусе от центра
	SearchPlaces(
		ctx context.Context,
		query string,
		center domain.Coordinate,
		radiusMeters int,
	) ([]domain.PlaceResult, error)
}
