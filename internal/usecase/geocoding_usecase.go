package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/config"
	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/domain/repository"
	"github.com/geo-routing-microservice/internal/pkg/errors"
	"github.com/geo-routing-microservice/internal/pkg/metrics"
)

// cacheDecimals - точность координат в ключах кеша (~1 м)
const cacheDecimals = 5

// DefaultBackfillRetryAfter - пауза перед повторным геокодированием адреса, который не нашёлся
const DefaultBackfillRetryAfter = 24 * time.Hour

// Provider call outcomes
const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

// GeocodingUseCase - единая точка доступа к внешнему провайдеру с кешем в Redis.
// Ошибки провайдера не пробрасываются: они логируются и превращаются в "не найдено".
type GeocodingUseCase struct {
	provider   repository.GeocodingProvider
	cache      repository.CacheRepository
	vendorRepo repository.VendorRepository
	clientRepo repository.ClientRepository
	cacheCfg   config.CacheConfig
	logger     *zap.Logger

	backfillRetryAfter time.Duration
}

func NewGeocodingUseCase(
	provider repository.GeocodingProvider,
	cache repository.CacheRepository,
	vendorRepo repository.VendorRepository,
	clientRepo repository.ClientRepository,
	cacheCfg config.CacheConfig,
	logger *zap.Logger,
) *GeocodingUseCase {
	return &GeocodingUseCase{
		provider:   provider,
		cache:      cache,
		vendorRepo: vendorRepo,
		clientRepo: clientRepo,
		cacheCfg:   cacheCfg,
		logger:     logger,

		backfillRetryAfter: DefaultBackfillRetryAfter,
	}
}

// WithBackfillRetryAfter задаёт паузу перед повторной попыткой геокодировать адрес
func (uc *GeocodingUseCase) WithBackfillRetryAfter(d time.Duration) *GeocodingUseCase {
	if d > 0 {
		uc.backfillRetryAfter = d
	}
	return uc
}

// NormalizeAddress приводит адрес к виду ключа кеша: нижний регистр, одиночные пробелы
func NormalizeAddress(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}

func coordKey(p domain.Coordinate) string {
	r := p.Rounded(cacheDecimals)
	return fmt.Sprintf("%.5f,%.5f", r.Lat, r.Lng)
}

// cachedCall читает значение из кеша или вызывает провайдера и кеширует найденное.
// fetch возвращает found=false для "не найдено"; такой результат не кешируется.
func cachedCall[T any](
	ctx context.Context,
	uc *GeocodingUseCase,
	operation, key string,
	ttl time.Duration,
	fetch func(ctx context.Context) (T, bool, error),
) (T, bool) {
	var zero T

	if uc.cache != nil {
		data, err := uc.cache.Get(ctx, key)
		if err != nil {
			uc.logger.Warn("Cache read failed, calling provider",
				zap.String("operation", operation),
				zap.String("key", key),
				zap.Error(err))
		} else if data != nil {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				metrics.CacheHits.WithLabelValues(operation).Inc()
				return v, true
			}
			uc.logger.Warn("Dropping undecodable cache entry", zap.String("key", key))
		}
		metrics.CacheMisses.WithLabelValues(operation).Inc()
	}

	started := time.Now()
	v, found, err := fetch(ctx)
	if err != nil {
		metrics.ObserveProvider(uc.provider.Name(), operation, outcomeError, started)
		uc.logger.Warn("Provider call failed",
			zap.String("provider", uc.provider.Name()),
			zap.String("operation", operation),
			zap.Error(err))
		return zero, false
	}
	if !found {
		metrics.ObserveProvider(uc.provider.Name(), operation, outcomeNotFound, started)
		return zero, false
	}
	metrics.ObserveProvider(uc.provider.Name(), operation, outcomeOK, started)

	if uc.cache != nil && ttl > 0 {
		data, err := json.Marshal(v)
		if err == nil {
			err = uc.cache.Set(ctx, key, data, ttl)
		}
		if err != nil {
			uc.logger.Warn("Failed to cache provider result",
				zap.String("operation", operation),
				zap.String("key", key),
				zap.Error(err))
		}
	}

	return v, true
}

// Geocode ищет координаты адреса. nil - адрес не найден или провайдер недоступен.
func (uc *GeocodingUseCase) Geocode(ctx context.Context, address string) *domain.GeocodeResult {
	normalized := NormalizeAddress(address)
	if normalized == "" {
		return nil
	}

	res, ok := cachedCall(ctx, uc, "geocode", "geocode:"+normalized, uc.cacheCfg.GeocodeTTL,
		func(ctx context.Context) (*domain.GeocodeResult, bool, error) {
			r, err := uc.provider.Geocode(ctx, address)
			return r, r != nil, err
		})
	if !ok {
		return nil
	}
	return res
}

// ReverseGeocode ищет адрес по координатам
func (uc *GeocodingUseCase) ReverseGeocode(ctx context.Context, point domain.Coordinate) *domain.AddressComponents {
	if !point.Valid() {
		return nil
	}

	res, ok := cachedCall(ctx, uc, "reverse_geocode", "reverse:"+coordKey(point), uc.cacheCfg.GeocodeTTL,
		func(ctx context.Context) (*domain.AddressComponents, bool, error) {
			r, err := uc.provider.ReverseGeocode(ctx, point)
			return r, r != nil, err
		})
	if !ok {
		return nil
	}
	return res
}

// Route запрашивает маршрут у провайдера. nil - маршрута нет, вызывающий строит оценку сам.
func (uc *GeocodingUseCase) Route(
	ctx context.Context,
	origin, destination domain.Coordinate,
	mode domain.TravelMode,
) *domain.ProviderRoute {
	key := fmt.Sprintf("route:%s:%s:%s", mode, coordKey(origin), coordKey(destination))

	res, ok := cachedCall(ctx, uc, "route", key, uc.cacheCfg.RouteTTL,
		func(ctx context.Context) (*domain.ProviderRoute, bool, error) {
			r, err := uc.provider.Route(ctx, origin, destination, mode)
			return r, r != nil, err
		})
	if !ok {
		return nil
	}
	return res
}

// SearchPlaces ищет места по запросу рядом с точкой. Пустой результат - не ошибка.
func (uc *GeocodingUseCase) SearchPlaces(
	ctx context.Context,
	query string,
	center domain.Coordinate,
	radiusMeters int,
) []domain.PlaceResult {
	normalized := NormalizeAddress(query)
	if normalized == "" || !center.Valid() || radiusMeters <= 0 {
		return []domain.PlaceResult{}
	}

	key := fmt.Sprintf("places:%s:%s:%d", normalized, coordKey(center), radiusMeters)
	res, ok := cachedCall(ctx, uc, "search_places", key, uc.cacheCfg.PlacesTTL,
		func(ctx context.Context) ([]domain.PlaceResult, bool, error) {
			r, err := uc.provider.SearchPlaces(ctx, query, center, radiusMeters)
			return r, len(r) > 0, err
		})
	if !ok || res == nil {
		return []domain.PlaceResult{}
	}
	return res
}

// ResolveLocation возвращает координату: заданную явно или найденную по адресу
func (uc *GeocodingUseCase) ResolveLocation(
	ctx context.Context,
	point *domain.Coordinate,
	address string,
) (domain.Coordinate, error) {
	if point != nil {
		if !point.Valid() {
			return domain.Coordinate{}, errors.ErrInvalidCoordinates
		}
		return *point, nil
	}

	if NormalizeAddress(address) == "" {
		return domain.Coordinate{}, errors.ErrInvalidRequest.WithMessage("either coordinates or address is required")
	}

	res := uc.Geocode(ctx, address)
	if res == nil {
		return domain.Coordinate{}, errors.ErrLocationNotFound.WithMessage("address %q could not be geocoded", address)
	}
	return res.Location, nil
}

// BackfillVendorCoordinates геокодирует заведения без координат. Возвращает число обновлённых.
func (uc *GeocodingUseCase) BackfillVendorCoordinates(ctx context.Context, limit int) (int, error) {
	vendors, err := uc.vendorRepo.ListMissingCoordinates(ctx, limit, uc.backfillRetryAfter)
	if err != nil {
		uc.logger.Error("Failed to list vendors without coordinates", zap.Error(err))
		return 0, err
	}

	updated := 0
	for _, v := range vendors {
		if uc.backfillOne(ctx, "vendor", v.ID, v.Address, uc.vendorRepo) {
			updated++
		}
	}
	return updated, nil
}

// BackfillClientCoordinates геокодирует клиентов без координат. Возвращает число обновлённых.
func (uc *GeocodingUseCase) BackfillClientCoordinates(ctx context.Context, limit int) (int, error) {
	clients, err := uc.clientRepo.ListMissingCoordinates(ctx, limit, uc.backfillRetryAfter)
	if err != nil {
		uc.logger.Error("Failed to list clients without coordinates", zap.Error(err))
		return 0, err
	}

	updated := 0
	for _, c := range clients {
		if uc.backfillOne(ctx, "client", c.ID, c.Address, uc.clientRepo) {
			updated++
		}
	}
	return updated, nil
}

// coordinateStore - общая часть репозиториев заведений и клиентов для дозаполнения координат
type coordinateStore interface {
	UpdateCoordinates(ctx context.Context, id int64, point domain.Coordinate) error
	MarkGeocodeAttempted(ctx context.Context, id int64) error
}

func (uc *GeocodingUseCase) backfillOne(
	ctx context.Context,
	entity string,
	id int64,
	address string,
	store coordinateStore,
) bool {
	res := uc.Geocode(ctx, address)
	if res == nil {
		uc.logger.Warn("Skipping entity: address not geocoded",
			zap.String("entity", entity),
			zap.Int64("id", id),
			zap.String("address", address))
		// без отметки адрес попадал бы в каждую следующую пачку
		if err := store.MarkGeocodeAttempted(ctx, id); err != nil {
			uc.logger.Warn("Failed to mark geocode attempt",
				zap.String("entity", entity),
				zap.Int64("id", id),
				zap.Error(err))
		}
		return false
	}

	if err := store.UpdateCoordinates(ctx, id, res.Location); err != nil {
		uc.logger.Warn("Skipping entity: failed to store coordinates",
			zap.String("entity", entity),
			zap.Int64("id", id),
			zap.Error(err))
		return false
	}
	return true
}
