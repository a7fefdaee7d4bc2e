package repository

import (
	"context"

	"github.com/geo-routing-microservice/internal/domain"
)

// NotificationPublisher отправляет события уведомлений во внешний транспорт
type NotificationPublisher interface {
	Publish(ctx context.Context, event *domain.NotificationEvent) error
}
