package postgres

import (
	"database/sql"

	"github.com/geo-routing-microservice/internal/domain"
)

const (
	// DefaultQueryLimit - лимит по умолчанию для выборок без координат
	DefaultQueryLimit = 100
	// MaxQueryLimit - максимальный лимит для выборок
	MaxQueryLimit = 1000
)

// normalizeLimit приводит лимит к диапазону [1, MaxQueryLimit]
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}

// toCoordinate собирает координату из nullable колонок. Если любая из них NULL - координаты нет.
func toCoordinate(lat, lng sql.NullFloat64) *domain.Coordinate {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &domain.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
}
