package repository

import (
	"context"

	"github.com/geo-routing-microservice/internal/domain"
)

// StreamRepository - интерфейс для работы с Redis Streams
type StreamRepository interface {
	// CreateConsumerGroup создаёт consumer group (и сам стрим, если его нет)
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// ConsumeStream читает сообщения группы в канал до отмены контекста.
	// Неподтверждённые сообщения этого consumer доставляются повторно при следующем запуске.
	ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error)

	// AckMessage подтверждает обработку сообщения
	AckMessage(ctx context.Context, stream, group, messageID string) error

	// PublishToStream сериализует data в JSON и добавляет в стрим, возвращает ID сообщения
	PublishToStream(ctx context.Context, stream string, data interface{}) (string, error)
}
