package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/domain/repository"
)

const (
	// streamReadCount - сколько сообщений читать за один XREADGROUP
	streamReadCount = 10
	// streamBlock - сколько ждать новых сообщений
	streamBlock = time.Second
	// streamMaxLen - приблизительный предел длины стрима (MAXLEN ~)
	streamMaxLen = 100000
	// newMessagesID - ID для чтения ещё не доставленных группе сообщений
	newMessagesID = ">"
)

type streamRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewStreamRepository создает новый экземпляр StreamRepository
func NewStreamRepository(client *redis.Client, logger *zap.Logger) repository.StreamRepository {
	return &streamRepository{
		client: client,
		logger: logger,
	}
}

// CreateConsumerGroup создаёт consumer group для стрима
func (r *streamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	// Пытаемся создать consumer group, начиная с ID "$" (новые сообщения)
	// MKSTREAM автоматически создаст стрим, если он не существует
	err := r.client.XGroupCreateMkStream(ctx, stream, group, "$").Err()
	if err != nil {
		// Игнорируем ошибку BUSYGROUP - группа уже существует
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			r.logger.Debug("Consumer group already exists",
				zap.String("stream", stream),
				zap.String("group", group))
			return nil
		}
		r.logger.Error("Failed to create consumer group",
			zap.String("stream", stream),
			zap.String("group", group),
			zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	r.logger.Info("Consumer group created successfully",
		zap.String("stream", stream),
		zap.String("group", group))
	return nil
}

// ConsumeStream читает сообщения группы в канал. Сначала отдаются собственные
// неподтверждённые сообщения consumer (остались после падения), затем новые.
// Канал закрывается при отмене контекста.
func (r *streamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	msgChan := make(chan domain.StreamMessage, streamReadCount)

	go func() {
		defer close(msgChan)

		// "0"... - история pending этого consumer, ">" - ещё не доставленные сообщения.
		// При повторной выдаче pending курсор сдвигается за последнее отданное сообщение.
		lastID := "0"

		for ctx.Err() == nil {
			block := streamBlock
			if lastID != newMessagesID {
				block = -1
			}

			result, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    group,
				Consumer: consumer,
				Streams:  []string{stream, lastID},
				Count:    streamReadCount,
				Block:    block,
			}).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					// pending пуст - дальше только новые сообщения
					lastID = newMessagesID
					continue
				}
				if ctx.Err() != nil {
					break
				}
				r.logger.Error("Failed to read from stream",
					zap.String("stream", stream),
					zap.Error(err))
				select {
				case <-time.After(time.Second):
				case <-ctx.Done():
				}
				continue
			}

			lastDelivered, ok := r.deliver(ctx, stream, group, result, msgChan)
			if !ok {
				break
			}
			if lastID == newMessagesID {
				continue
			}
			if lastDelivered == "" {
				r.logger.Debug("Pending messages replayed, switching to new messages",
					zap.String("stream", stream),
					zap.String("consumer", consumer))
				lastID = newMessagesID
				continue
			}
			lastID = lastDelivered
		}

		r.logger.Info("Stream consumer stopped",
			zap.String("stream", stream),
			zap.String("consumer", consumer))
	}()

	return msgChan, nil
}

// deliver отправляет прочитанные сообщения в канал. Возвращает ID последнего сообщения
// в ответе ("" - ответ пуст) и false, если контекст отменён во время отправки.
func (r *streamRepository) deliver(
	ctx context.Context,
	stream, group string,
	result []redis.XStream,
	out chan<- domain.StreamMessage,
) (string, bool) {
	last := ""
	for _, res := range result {
		for _, msg := range res.Messages {
			last = msg.ID

			data, ok := msg.Values["data"].(string)
			if !ok {
				// без поля data (или запись уже удалена из стрима) сообщение не разобрать
				r.logger.Warn("Message does not contain 'data' field",
					zap.String("message_id", msg.ID))
				_ = r.AckMessage(ctx, stream, group, msg.ID)
				continue
			}

			select {
			case out <- domain.StreamMessage{ID: msg.ID, Data: data}:
			case <-ctx.Done():
				return last, false
			}
		}
	}
	return last, true
}

// AckMessage подтверждает обработку сообщения
func (r *streamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	err := r.client.XAck(ctx, stream, group, messageID).Err()
	if err != nil {
		r.logger.Error("Failed to acknowledge message",
			zap.String("stream", stream),
			zap.String("group", group),
			zap.String("message_id", messageID),
			zap.Error(err))
		return fmt.Errorf("failed to acknowledge message: %w", err)
	}

	r.logger.Debug("Message acknowledged",
		zap.String("message_id", messageID))
	return nil
}

// PublishToStream публикует сообщение в стрим
func (r *streamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) (string, error) {
	// Сериализуем данные в JSON
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error("Failed to marshal data",
			zap.String("stream", stream),
			zap.Error(err))
		return "", fmt.Errorf("failed to marshal data: %w", err)
	}

	result, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(jsonData),
		},
	}).Result()

	if err != nil {
		r.logger.Error("Failed to publish to stream",
			zap.String("stream", stream),
			zap.Error(err))
		return "", fmt.Errorf("failed to publish to stream: %w", err)
	}

	r.logger.Debug("Message published to stream",
		zap.String("stream", stream),
		zap.String("message_id", result))
	return result, nil
}
