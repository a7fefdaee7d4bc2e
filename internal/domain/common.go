package domain

import (
	"fmt"
	"math"
)

// Coordinate - географическая точка в градусах WGS84
type Coordinate struct {
	Lat float64 `json:"lat" db:"lat"`
	Lng float64 `json:"lng" db:"lng"`
}

// Valid проверяет, что широта и долгота лежат в допустимых пределах
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Rounded возвращает координату, округлённую до заданного числа знаков
func (c Coordinate) Rounded(decimals int) Coordinate {
	p := math.Pow(10, float64(decimals))
	return Coordinate{
		Lat: math.Round(c.Lat*p) / p,
		Lng: math.Round(c.Lng*p) / p,
	}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// BoundingBox - прямоугольная область поиска. Области, пересекающие антимеридиан, не поддерживаются.
type BoundingBox struct {
	MinLat float64 `json:"min_lat" db:"min_lat"`
	MaxLat float64 `json:"max_lat" db:"max_lat"`
	MinLng float64 `json:"min_lng" db:"min_lng"`
	MaxLng float64 `json:"max_lng" db:"max_lng"`
}

// Contains проверяет попадание точки в область (границы включительно)
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat &&
		c.Lng >= b.MinLng && c.Lng <= b.MaxLng
}

// GridCell - центр ячейки сетки покрытия
type GridCell struct {
	Lat                  float64 `json:"lat"`
	Lng                  float64 `json:"lng"`
	DistanceFromCenterKm float64 `json:"distance_from_center_km"`
}

// DistanceResult - результат расчёта расстояния между двумя точками
type DistanceResult struct {
	From Coordinate `json:"from"`
	To   Coordinate `json:"to"`
	Km   float64    `json:"km"`
}
