package utils

import (
	"math"

	"github.com/geo-routing-microservice/internal/domain"
)

const (
	earthRadiusKm = 6371.0

	// KmPerDegreeLat - длина одного градуса широты
	KmPerDegreeLat = 111.32

	// MaxRadiusKm - максимальный радиус поиска
	MaxRadiusKm = 500.0
)

// HaversineDistance вычисляет расстояние между двумя точками в километрах
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	if a > 1 {
		a = 1
	}
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Distance - HaversineDistance для пары координат
func Distance(a, b domain.Coordinate) float64 {
	return HaversineDistance(a.Lat, a.Lng, b.Lat, b.Lng)
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ValidateRadius проверяет валидность радиуса (больше 0 и не больше MaxRadiusKm)
func ValidateRadius(radiusKm float64) bool {
	return radiusKm > 0 && radiusKm <= MaxRadiusKm
}

// ValidateBoundingBox проверяет, что границы области валидны и не перевёрнуты
func ValidateBoundingBox(box domain.BoundingBox) bool {
	if !ValidateCoordinates(box.MinLat, box.MinLng) || !ValidateCoordinates(box.MaxLat, box.MaxLng) {
		return false
	}
	return box.MinLat <= box.MaxLat && box.MinLng <= box.MaxLng
}

// LngDegreesForKm - сколько градусов долготы занимает distanceKm на широте lat
func LngDegreesForKm(distanceKm, lat float64) float64 {
	cos := math.Cos(lat * math.Pi / 180.0)
	if cos < 1e-6 {
		return 180
	}
	return distanceKm / (KmPerDegreeLat * cos)
}

// BoundingBoxAround возвращает область, гарантированно содержащую все точки
// на расстоянии не больше radiusKm от центра. Используется как грубый фильтр перед точным расчётом.
func BoundingBoxAround(center domain.Coordinate, radiusKm float64) domain.BoundingBox {
	angular := radiusKm / earthRadiusKm
	dLat := angular * 180.0 / math.Pi

	box := domain.BoundingBox{
		MinLat: math.Max(center.Lat-dLat, -90),
		MaxLat: math.Min(center.Lat+dLat, 90),
		MinLng: -180,
		MaxLng: 180,
	}

	// Круг касается полюса - по долготе ограничений нет
	cosLat := math.Cos(center.Lat * math.Pi / 180.0)
	if math.Sin(angular) >= cosLat || box.MaxLat == 90 || box.MinLat == -90 {
		return box
	}

	dLng := math.Asin(math.Sin(angular)/cosLat) * 180.0 / math.Pi

	// Круг пересекает антимеридиан - одной областью min<=max его не покрыть,
	// оставляем полный диапазон долготы
	if center.Lng-dLng < -180 || center.Lng+dLng > 180 {
		return box
	}
	box.MinLng = center.Lng - dLng
	box.MaxLng = center.Lng + dLng

	return box
}
