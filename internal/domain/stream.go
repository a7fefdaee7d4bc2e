package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stream names
const (
	StreamPositionUpdate   = "stream:position:update"
	StreamNotificationSend = "stream:notification:send"
)

// Entity types for position updates
const (
	EntityTypeAgent  = "agent"
	EntityTypeClient = "client"
)

// PositionUpdateEvent - входящее событие изменения позиции курьера или клиента
type PositionUpdateEvent struct {
	EventID     uuid.UUID `json:"event_id"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	RecipientID string    `json:"recipient_id,omitempty"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// Location возвращает позицию из события
func (e *PositionUpdateEvent) Location() Coordinate {
	return Coordinate{Lat: e.Lat, Lng: e.Lng}
}

// Recipient - получатель уведомлений: явно указанный или сама сущность
func (e *PositionUpdateEvent) Recipient() string {
	if e.RecipientID != "" {
		return e.RecipientID
	}
	return e.EntityType + ":" + e.EntityID
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
