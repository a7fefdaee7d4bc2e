package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/domain/repository"
	"github.com/geo-routing-microservice/internal/pkg/errors"
)

// PositionInput - сообщённая позиция курьера или клиента
type PositionInput struct {
	EntityType  string
	EntityID    string
	RecipientID string
	Location    domain.Coordinate
	// Поля курьера для каталога доступных
	Name      string
	Phone     string
	Available bool
}

// PositionUseCase принимает позиции и ставит их в очередь проверки зон
type PositionUseCase struct {
	streams repository.StreamRepository
	agents  repository.AgentLocationRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewPositionUseCase создаёт use case. agents может быть nil, если живой каталог курьеров не используется.
func NewPositionUseCase(
	streams repository.StreamRepository,
	agents repository.AgentLocationRepository,
	logger *zap.Logger,
) *PositionUseCase {
	return &PositionUseCase{
		streams: streams,
		agents:  agents,
		logger:  logger,
		now:     time.Now,
	}
}

// ReportPosition публикует событие в stream:position:update и, для курьеров, обновляет каталог
func (uc *PositionUseCase) ReportPosition(ctx context.Context, in PositionInput) (*domain.PositionUpdateEvent, error) {
	if in.EntityType != domain.EntityTypeAgent && in.EntityType != domain.EntityTypeClient {
		return nil, errors.ErrInvalidRequest.WithMessage("entity_type must be %q or %q", domain.EntityTypeAgent, domain.EntityTypeClient)
	}
	if strings.TrimSpace(in.EntityID) == "" {
		return nil, errors.ErrInvalidRequest.WithMessage("entity_id is required")
	}
	if !in.Location.Valid() {
		return nil, errors.ErrInvalidCoordinates
	}

	event := &domain.PositionUpdateEvent{
		EventID:     uuid.New(),
		EntityType:  in.EntityType,
		EntityID:    in.EntityID,
		RecipientID: in.RecipientID,
		Lat:         in.Location.Lat,
		Lng:         in.Location.Lng,
		RecordedAt:  uc.now().UTC(),
	}

	if in.EntityType == domain.EntityTypeAgent && uc.agents != nil {
		agent := domain.Agent{
			ID:        in.EntityID,
			Name:      in.Name,
			Phone:     in.Phone,
			Available: in.Available,
			Location:  in.Location,
		}
		if err := uc.agents.UpdateLocation(ctx, agent); err != nil {
			uc.logger.Warn("Failed to refresh agent directory",
				zap.String("agent_id", in.EntityID),
				zap.Error(err))
		}
	}

	messageID, err := uc.streams.PublishToStream(ctx, domain.StreamPositionUpdate, event)
	if err != nil {
		uc.logger.Error("Failed to enqueue position update",
			zap.String("entity_type", in.EntityType),
			zap.String("entity_id", in.EntityID),
			zap.Error(err))
		return nil, errors.ErrCacheError.WithMessage("failed to enqueue position update")
	}

	uc.logger.Debug("Position update enqueued",
		zap.String("entity", in.EntityType+":"+in.EntityID),
		zap.String("message_id", messageID))
	return event, nil
}
