package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/domain/repository"
)

const defaultSubjectPrefix = "notifications"

// conn - часть *nats.Conn, которую использует издатель
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// Publisher публикует уведомления в NATS в subject "<prefix>.<event_type>"
type Publisher struct {
	conn   conn
	prefix string
	logger *zap.Logger
}

var _ repository.NotificationPublisher = (*Publisher)(nil)

// Connect подключается к NATS с бесконечными переподключениями
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("geo-routing-microservice"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return nc, nil
}

// NewPublisher создаёт издателя поверх соединения
func NewPublisher(nc conn, subjectPrefix string, logger *zap.Logger) *Publisher {
	prefix := strings.TrimSuffix(subjectPrefix, ".")
	if prefix == "" {
		prefix = defaultSubjectPrefix
	}
	return &Publisher{
		conn:   nc,
		prefix: prefix,
		logger: logger,
	}
}

// Subject возвращает subject для типа события
func (p *Publisher) Subject(eventType string) string {
	return p.prefix + "." + eventType
}

func (p *Publisher) Publish(_ context.Context, event *domain.NotificationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	subject := p.Subject(event.EventType)
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Error("Failed to publish notification",
			zap.String("subject", subject),
			zap.String("event_id", event.ID.String()),
			zap.Error(err))
		return fmt.Errorf("nats publish: %w", err)
	}

	p.logger.Debug("Notification published",
		zap.String("subject", subject),
		zap.String("recipient_id", event.RecipientID))
	return nil
}

// Close дожидается отправки буфера и закрывает соединение
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
