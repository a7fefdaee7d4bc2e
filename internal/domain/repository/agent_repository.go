package repository

import (
	"context"

	"github.com/geo-routing-microservice/internal/domain"
)

// AgentPoolProvider - источник курьеров-кандидатов для точки назначения
type AgentPoolProvider interface {
	ListAgents(ctx context.Context, near domain.Coordinate) ([]domain.Agent, error)
}

// AgentLocationRepository хранит последние известные позиции курьеров
type AgentLocationRepository interface {
	// UpdateLocation сохраняет позицию и данные курьера
	UpdateLocation(ctx context.Context, agent domain.Agent) error

	// Remove убирает курьера из каталога доступных
	Remove(ctx context.Context, agentID string) error
}
