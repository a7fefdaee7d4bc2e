package redis

import (
	"context"

	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/domain/repository"
)

type streamNotificationPublisher struct {
	streams repository.StreamRepository
	logger  *zap.Logger
}

// NewNotificationPublisher публикует уведомления в Redis Stream domain.StreamNotificationSend
func NewNotificationPublisher(streams repository.StreamRepository, logger *zap.Logger) repository.NotificationPublisher {
	return &streamNotificationPublisher{
		streams: streams,
		logger:  logger,
	}
}

func (p *streamNotificationPublisher) Publish(ctx context.Context, event *domain.NotificationEvent) error {
	id, err := p.streams.PublishToStream(ctx, domain.StreamNotificationSend, event)
	if err != nil {
		return err
	}

	p.logger.Debug("Notification queued",
		zap.String("message_id", id),
		zap.String("recipient_id", event.RecipientID),
		zap.String("event_type", event.EventType))
	return nil
}
