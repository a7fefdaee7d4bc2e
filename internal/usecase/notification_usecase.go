package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/domain/repository"
	"github.com/geo-routing-microservice/internal/pkg/metrics"
)

// DedupKey - ключ подавления повторных уведомлений одного типа одному получателю
func DedupKey(recipientID, eventType string) string {
	return fmt.Sprintf("notify:dedup:%s:%s", recipientID, eventType)
}

// NotificationUseCase превращает изменения позиций в уведомления о входе в зоны
type NotificationUseCase struct {
	geofences   *GeofenceUseCase
	cache       repository.CacheRepository
	publisher   repository.NotificationPublisher
	dedupWindow time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

func NewNotificationUseCase(
	geofences *GeofenceUseCase,
	cache repository.CacheRepository,
	publisher repository.NotificationPublisher,
	dedupWindow time.Duration,
	logger *zap.Logger,
) *NotificationUseCase {
	return &NotificationUseCase{
		geofences:   geofences,
		cache:       cache,
		publisher:   publisher,
		dedupWindow: dedupWindow,
		logger:      logger,
		now:         time.Now,
	}
}

// ProcessPositionUpdate публикует уведомление для каждой зоны, содержащей новую позицию,
// если такое же уведомление не отправлялось получателю в окне дедупликации.
// Возвращает число опубликованных уведомлений и первую ошибку публикации.
func (uc *NotificationUseCase) ProcessPositionUpdate(ctx context.Context, event domain.PositionUpdateEvent) (int, error) {
	matches, err := uc.geofences.CheckMembership(ctx, event.Location())
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		return 0, nil
	}

	recipient := event.Recipient()
	published := 0
	var firstErr error

	for _, m := range matches {
		key := DedupKey(recipient, m.EventType)

		fresh, err := uc.cache.SetNX(ctx, key, []byte(m.Key), uc.dedupWindow)
		if err != nil {
			// при недоступном кеше уведомление отправляется без дедупликации
			uc.logger.Warn("Dedup check failed, publishing anyway",
				zap.String("key", key),
				zap.Error(err))
			fresh = true
		}
		if !fresh {
			metrics.NotificationsSuppressed.WithLabelValues(m.EventType).Inc()
			uc.logger.Debug("Notification suppressed",
				zap.String("recipient_id", recipient),
				zap.String("event_type", m.EventType))
			continue
		}

		notification := &domain.NotificationEvent{
			ID:          uuid.New(),
			RecipientID: recipient,
			EventType:   m.EventType,
			GeofenceKey: m.Key,
			Payload:     m.Payload,
			DistanceKm:  m.DistanceKm,
			CreatedAt:   uc.now().UTC(),
		}

		if err := uc.publisher.Publish(ctx, notification); err != nil {
			uc.logger.Error("Failed to publish notification",
				zap.String("recipient_id", recipient),
				zap.String("geofence_key", m.Key),
				zap.Error(err))
			// освобождаем окно, чтобы следующее обновление позиции повторило попытку
			if delErr := uc.cache.Delete(ctx, key); delErr != nil {
				uc.logger.Warn("Failed to release dedup key", zap.String("key", key), zap.Error(delErr))
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		metrics.NotificationsPublished.WithLabelValues(m.EventType).Inc()
		published++
	}

	if published > 0 {
		uc.logger.Info("Geofence notifications published",
			zap.String("recipient_id", recipient),
			zap.String("event_id", event.EventID.String()),
			zap.Int("count", published))
	}

	return published, firstErr
}
