package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/domain/repository"
	"github.com/geo-routing-microservice/internal/pkg/errors"
)

// MatcherUseCase подбирает курьера для точки
type MatcherUseCase struct {
	pool     repository.AgentPoolProvider
	distance *DistanceCalculator
	logger   *zap.Logger
}

func NewMatcherUseCase(pool repository.AgentPoolProvider, distance *DistanceCalculator, logger *zap.Logger) *MatcherUseCase {
	return &MatcherUseCase{
		pool:     pool,
		distance: distance,
		logger:   logger,
	}
}

// NearestAgent - ближайший доступный курьер из пула. При равенстве выбирается первый.
func (uc *MatcherUseCase) NearestAgent(location domain.Coordinate, pool []domain.Agent) *domain.AgentMatch {
	var best *domain.AgentMatch
	for _, agent := range pool {
		if !agent.Available {
			continue
		}
		km := uc.distance.DistanceKm(location, agent.Location)
		if best == nil || km < best.DistanceKm {
			best = &domain.AgentMatch{Agent: agent, DistanceKm: km}
		}
	}
	return best
}

// OptimalDeliveryPerson выбирает курьера из настроенного пула. nil - подходящих нет.
func (uc *MatcherUseCase) OptimalDeliveryPerson(ctx context.Context, location domain.Coordinate) (*domain.AgentMatch, error) {
	if !location.Valid() {
		return nil, errors.ErrInvalidCoordinates
	}

	agents, err := uc.pool.ListAgents(ctx, location)
	if err != nil {
		uc.logger.Warn("Agent pool unavailable",
			zap.String("location", location.String()),
			zap.Error(err))
		return nil, nil
	}

	match := uc.NearestAgent(location, agents)
	if match == nil {
		uc.logger.Debug("No available agents", zap.String("location", location.String()), zap.Int("pool", len(agents)))
	}
	return match, nil
}
