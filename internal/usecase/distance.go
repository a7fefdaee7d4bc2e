package usecase

import (
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/pkg/utils"
)

// distanceDecimals - точность округления координат для мемоизации (~0.1 м)
const distanceDecimals = 6

type distanceKey struct {
	a, b domain.Coordinate
}

// DistanceCalculator считает расстояние по Haversine и мемоизирует результаты
type DistanceCalculator struct {
	cache *ttlcache.Cache[distanceKey, float64]
}

// NewDistanceCalculator создаёт калькулятор. ttl <= 0 отключает мемоизацию.
func NewDistanceCalculator(ttl time.Duration, maxEntries int) *DistanceCalculator {
	d := &DistanceCalculator{}
	if ttl > 0 {
		opts := []ttlcache.Option[distanceKey, float64]{
			ttlcache.WithTTL[distanceKey, float64](ttl),
			ttlcache.WithDisableTouchOnHit[distanceKey, float64](),
		}
		if maxEntries > 0 {
			opts = append(opts, ttlcache.WithCapacity[distanceKey, float64](uint64(maxEntries)))
		}
		d.cache = ttlcache.New[distanceKey, float64](opts...)
	}
	return d
}

// canonicalKey упорядочивает пару, чтобы d(a,b) и d(b,a) попадали в одну запись
func canonicalKey(a, b domain.Coordinate) distanceKey {
	if b.Lat < a.Lat || (b.Lat == a.Lat && b.Lng < a.Lng) {
		a, b = b, a
	}
	return distanceKey{a: a, b: b}
}

// DistanceKm возвращает расстояние между точками в километрах
func (d *DistanceCalculator) DistanceKm(a, b domain.Coordinate) float64 {
	key := canonicalKey(a.Rounded(distanceDecimals), b.Rounded(distanceDecimals))
	if d.cache != nil {
		if item := d.cache.Get(key); item != nil {
			return item.Value()
		}
	}

	km := utils.Distance(key.a, key.b)
	if d.cache != nil {
		d.cache.Set(key, km, ttlcache.DefaultTTL)
	}
	return km
}

// IsWithinRadius - точка на расстоянии не больше radiusKm от центра
func (d *DistanceCalculator) IsWithinRadius(center, point domain.Coordinate, radiusKm float64) bool {
	return d.DistanceKm(center, point) <= radiusKm
}

// Distance возвращает расстояние вместе с исходными точками
func (d *DistanceCalculator) Distance(from, to domain.Coordinate) domain.DistanceResult {
	return domain.DistanceResult{From: from, To: to, Km: d.DistanceKm(from, to)}
}
