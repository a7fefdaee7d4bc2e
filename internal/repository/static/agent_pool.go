package static

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/domain/repository"
)

// AgentPool - фиксированный список курьеров из конфигурации
type AgentPool struct {
	agents []domain.Agent
}

var _ repository.AgentPoolProvider = (*AgentPool)(nil)

// NewAgentPool создаёт пул из записей вида "id|name|lat|lng"
func NewAgentPool(entries []string) (*AgentPool, error) {
	agents := make([]domain.Agent, 0, len(entries))
	for _, entry := range entries {
		agent, err := parseAgent(entry)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}
	return &AgentPool{agents: agents}, nil
}

// ListAgents возвращает копию всего пула, точка поиска не учитывается
func (p *AgentPool) ListAgents(_ context.Context, _ domain.Coordinate) ([]domain.Agent, error) {
	out := make([]domain.Agent, len(p.agents))
	copy(out, p.agents)
	return out, nil
}

func parseAgent(entry string) (domain.Agent, error) {
	parts := strings.Split(entry, "|")
	if len(parts) != 4 {
		return domain.Agent{}, fmt.Errorf("invalid agent entry %q: want id|name|lat|lng", entry)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return domain.Agent{}, fmt.Errorf("invalid agent %q latitude: %w", parts[0], err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil {
		return domain.Agent{}, fmt.Errorf("invalid agent %q longitude: %w", parts[0], err)
	}

	agent := domain.Agent{
		ID:        strings.TrimSpace(parts[0]),
		Name:      strings.TrimSpace(parts[1]),
		Available: true,
		Location:  domain.Coordinate{Lat: lat, Lng: lng},
	}
	if agent.ID == "" {
		return domain.Agent{}, fmt.Errorf("invalid agent entry %q: empty id", entry)
	}
	if !agent.Location.Valid() {
		return domain.Agent{}, fmt.Errorf("invalid agent %q: coordinates out of range", agent.ID)
	}
	return agent, nil
}
