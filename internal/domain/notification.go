package domain

import (
	"time"

	"github.com/google/uuid"
)

// Geofence event types
const (
	EventTypeAgentNearVendor = "agent_near_vendor"
	EventTypeAgentNearClient = "agent_near_client"
	EventTypeOrderArriving   = "order_arriving"
)

// NotificationPayload - типизированное содержимое уведомления, привязанного к зоне
type NotificationPayload struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	OrderID  *int64            `json:"order_id,omitempty"`
	VendorID *int64            `json:"vendor_id,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}

// NotificationEvent - исходящее событие для сервиса доставки уведомлений
type NotificationEvent struct {
	ID          uuid.UUID           `json:"id"`
	RecipientID string              `json:"recipient_id"`
	EventType   string              `json:"event_type"`
	GeofenceKey string              `json:"geofence_key"`
	Payload     NotificationPayload `json:"payload"`
	DistanceKm  float64             `json:"distance_km"`
	CreatedAt   time.Time           `json:"created_at"`
}
