package geofence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/domain/repository"
	"github.com/geo-routing-microservice/internal/worker"
)

// PositionProcessor - обработка обновления позиции (NotificationUseCase)
type PositionProcessor interface {
	ProcessPositionUpdate(ctx context.Context, event domain.PositionUpdateEvent) (int, error)
}

// NotificationWorker читает stream:position:update и публикует уведомления о входе в зоны
type NotificationWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	processor    PositionProcessor
	consumerName string
}

// NewNotificationWorker создает новый NotificationWorker
func NewNotificationWorker(
	streamRepo repository.StreamRepository,
	processor PositionProcessor,
	consumerGroup string,
	logger *zap.Logger,
) *NotificationWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &NotificationWorker{
		BaseWorker:   worker.NewBaseWorker("geofence-notification", consumerGroup, logger),
		streamRepo:   streamRepo,
		processor:    processor,
		consumerName: consumerName,
	}
}

// Start запускает воркер
func (w *NotificationWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting NotificationWorker",
		zap.String("stream", domain.StreamPositionUpdate),
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamPositionUpdate, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	ctx, cancel := w.WithStop(ctx)
	defer cancel()

	messages, err := w.streamRepo.ConsumeStream(ctx, domain.StreamPositionUpdate, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("Worker stopped", zap.Int64("processed", w.Stats().Processed))
			return nil
		case msg, ok := <-messages:
			if !ok {
				logger.Info("Stream closed", zap.Int64("processed", w.Stats().Processed))
				return nil
			}
			w.handle(ctx, msg)
		}
	}
}

// handle обрабатывает одно сообщение. Сообщение подтверждается всегда:
// битое - чтобы не висело в pending, после ошибки публикации ключ дедупликации уже освобождён.
func (w *NotificationWorker) handle(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger()

	event, err := parseEvent(msg)
	if err != nil {
		logger.Warn("Failed to parse position update, skipping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		w.RecordFailed()
		w.ack(ctx, msg.ID)
		return
	}

	published, err := w.processor.ProcessPositionUpdate(ctx, *event)
	if err != nil {
		logger.Error("Failed to process position update",
			zap.String("message_id", msg.ID),
			zap.String("entity", event.EntityType+":"+event.EntityID),
			zap.Int("published", published),
			zap.Error(err))
		w.RecordFailed()
	} else {
		w.RecordProcessed()
	}

	w.ack(ctx, msg.ID)
}

func (w *NotificationWorker) ack(ctx context.Context, messageID string) {
	if err := w.streamRepo.AckMessage(ctx, domain.StreamPositionUpdate, w.ConsumerGroup(), messageID); err != nil {
		// неподтверждённое сообщение будет переобработано
		w.Logger().Warn("Failed to ack message", zap.String("message_id", messageID), zap.Error(err))
	}
}

// parseEvent разбирает JSON события и проверяет координаты
func parseEvent(msg domain.StreamMessage) (*domain.PositionUpdateEvent, error) {
	var event domain.PositionUpdateEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.EntityID == "" {
		return nil, fmt.Errorf("event has no entity_id")
	}
	if !event.Location().Valid() {
		return nil, fmt.Errorf("event has invalid coordinates %s", event.Location())
	}
	return &event, nil
}
