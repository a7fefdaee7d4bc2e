package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/geo-routing-microservice/internal/domain"
)

// VendorMatch - заведение с расстоянием до центра поиска
type VendorMatch struct {
	Vendor     *domain.Vendor `json:"vendor"`
	DistanceKm float64        `json:"distance_km"`
}

// ClientMatch - клиент с расстоянием до центра поиска
type ClientMatch struct {
	Client     *domain.Client `json:"client"`
	DistanceKm float64        `json:"distance_km"`
}

// NearbyVendorsResponse - ответ на поиск заведений в радиусе
type NearbyVendorsResponse struct {
	Vendors []VendorMatch `json:"vendors"`
	Total   int           `json:"total"`
}

// NearbyClientsResponse - ответ на поиск клиентов в радиусе
type NearbyClientsResponse struct {
	Clients []ClientMatch `json:"clients"`
	Total   int           `json:"total"`
}

// BoxVendorsResponse - заведения в области
type BoxVendorsResponse struct {
	Vendors []*domain.Vendor `json:"vendors"`
	Total   int              `json:"total"`
}

// BoxClientsResponse - клиенты в области
type BoxClientsResponse struct {
	Clients []*domain.Client `json:"clients"`
	Total   int              `json:"total"`
}

// GridResponse - точки сетки
type GridResponse struct {
	Cells []domain.GridCell `json:"cells"`
	Total int               `json:"total"`
}

// PlacesResponse - найденные места
type PlacesResponse struct {
	Places []domain.PlaceResult `json:"places"`
	Total  int                  `json:"total"`
}

// EtaResponse - маршрут и оценка времени доставки
type EtaResponse struct {
	Route    *domain.Route           `json:"route"`
	Estimate domain.DeliveryEstimate `json:"estimate"`
}

// DispatchResponse - подобранный курьер. Found=false, если свободных нет.
type DispatchResponse struct {
	Found bool               `json:"found"`
	Match *domain.AgentMatch `json:"match,omitempty"`
}

// GeofenceResponse - зона и её текущее состояние
type GeofenceResponse struct {
	Geofence *domain.Geofence      `json:"geofence"`
	Status   domain.GeofenceStatus `json:"status"`
}

// GeofenceCheckResponse - зоны, содержащие точку
type GeofenceCheckResponse struct {
	Matches []domain.GeofenceMatch `json:"matches"`
	Total   int                    `json:"total"`
}

// PositionResponse - принятое обновление позиции
type PositionResponse struct {
	EventID    uuid.UUID `json:"event_id"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ToVendorMatches переводит результаты поиска заведений в ответ
func ToVendorMatches(matches []domain.EntityMatch[*domain.Vendor]) []VendorMatch {
	out := make([]VendorMatch, len(matches))
	for i, m := range matches {
		out[i] = VendorMatch{Vendor: m.Entity, DistanceKm: m.DistanceKm}
	}
	return out
}

// ToClientMatches переводит результаты поиска клиентов в ответ
func ToClientMatches(matches []domain.EntityMatch[*domain.Client]) []ClientMatch {
	out := make([]ClientMatch, len(matches))
	for i, m := range matches {
		out[i] = ClientMatch{Client: m.Entity, DistanceKm: m.DistanceKm}
	}
	return out
}
