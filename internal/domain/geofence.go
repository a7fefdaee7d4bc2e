package domain

import "time"

// GeofenceStatus - состояние зоны
type GeofenceStatus string

const (
	GeofenceStatusActive      GeofenceStatus = "active"
	GeofenceStatusExpired     GeofenceStatus = "expired"
	GeofenceStatusDeactivated GeofenceStatus = "deactivated"
)

// Geofence - круговая зона, при входе в которую отправляется уведомление
type Geofence struct {
	Key           string              `json:"key"`
	Center        Coordinate          `json:"center"`
	RadiusKm      float64             `json:"radius_km"`
	EventType     string              `json:"event_type"`
	Payload       NotificationPayload `json:"payload"`
	Active        bool                `json:"active"`
	CreatedAt     time.Time           `json:"created_at"`
	ExpiresAt     time.Time           `json:"expires_at"`
	DeactivatedAt *time.Time          `json:"deactivated_at,omitempty"`
}

// Status вычисляет состояние зоны на момент now. Деактивация терминальна.
func (g *Geofence) Status(now time.Time) GeofenceStatus {
	if !g.Active {
		return GeofenceStatusDeactivated
	}
	if !now.Before(g.ExpiresAt) {
		return GeofenceStatusExpired
	}
	return GeofenceStatusActive
}

// GeofenceMatch - зона, в которую попала точка
type GeofenceMatch struct {
	Key        string              `json:"key"`
	EventType  string              `json:"event_type"`
	Payload    NotificationPayload `json:"payload"`
	DistanceKm float64             `json:"distance_km"`
}
