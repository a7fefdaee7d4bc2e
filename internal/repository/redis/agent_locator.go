package redis

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/domain/repository"
	"github.com/geo-routing-microservice/internal/pkg/errors"
)

const (
	agentsGeoKey      = "agents:available"
	agentHashPrefix   = "agent:"
	agentSearchLimit  = 50
	defaultAgentRange = 10.0
	// defaultAgentHeartbeat - TTL карточки курьера, продлевается каждым обновлением позиции
	defaultAgentHeartbeat = 5 * time.Minute
	// maxGeoLatitude - предел широты, который принимает Redis GEO
	maxGeoLatitude = 85.05112878
)

// pruneAgentsScript убирает из GEO индекса курьеров, чья карточка истекла.
// EXISTS и ZREM выполняются атомарно, поэтому курьер, обновившийся между чтением и очисткой, остаётся.
// KEYS[1] - GEO индекс, ARGV[1] - префикс карточек, ARGV[2..] - ID курьеров.
var pruneAgentsScript = redis.NewScript(`
local removed = 0
for i = 2, #ARGV do
  if redis.call('EXISTS', ARGV[1] .. ARGV[i]) == 0 then
    removed = removed + redis.call('ZREM', KEYS[1], ARGV[i])
  end
end
return removed
`)

// AgentLocator - каталог доступных курьеров на Redis GEO.
// Реализует AgentPoolProvider (поиск рядом с точкой) и AgentLocationRepository (запись позиций).
type AgentLocator struct {
	client    *redis.Client
	logger    *zap.Logger
	radiusKm  float64
	heartbeat time.Duration
}

var (
	_ repository.AgentPoolProvider       = (*AgentLocator)(nil)
	_ repository.AgentLocationRepository = (*AgentLocator)(nil)
)

// NewAgentLocator создаёт каталог. radiusKm - радиус поиска кандидатов вокруг точки.
func NewAgentLocator(client *redis.Client, radiusKm float64, logger *zap.Logger) *AgentLocator {
	if radiusKm <= 0 {
		radiusKm = defaultAgentRange
	}
	return &AgentLocator{
		client:    client,
		logger:    logger,
		radiusKm:  radiusKm,
		heartbeat: defaultAgentHeartbeat,
	}
}

// WithHeartbeatTTL задаёт, сколько курьер остаётся в поиске без обновлений позиции
func (l *AgentLocator) WithHeartbeatTTL(ttl time.Duration) *AgentLocator {
	if ttl > 0 {
		l.heartbeat = ttl
	}
	return l
}

// UpdateLocation сохраняет позицию курьера. Недоступные курьеры убираются из GEO индекса.
func (l *AgentLocator) UpdateLocation(ctx context.Context, agent domain.Agent) error {
	if agent.ID == "" {
		return errors.ErrInvalidRequest.WithMessage("agent id is required")
	}
	if !agent.Location.Valid() {
		return errors.ErrInvalidCoordinates
	}
	if math.Abs(agent.Location.Lat) > maxGeoLatitude {
		return errors.ErrInvalidCoordinates.WithMessage("latitude must be within ±%.5f for agent tracking", maxGeoLatitude)
	}

	pipe := l.client.TxPipeline()
	pipe.HSet(ctx, agentHashPrefix+agent.ID, map[string]interface{}{
		"name":  agent.Name,
		"phone": agent.Phone,
	})
	pipe.Expire(ctx, agentHashPrefix+agent.ID, l.heartbeat)
	if agent.Available {
		pipe.GeoAdd(ctx, agentsGeoKey, &redis.GeoLocation{
			Name:      agent.ID,
			Longitude: agent.Location.Lng,
			Latitude:  agent.Location.Lat,
		})
	} else {
		pipe.ZRem(ctx, agentsGeoKey, agent.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Error("Failed to update agent location", zap.String("agent_id", agent.ID), zap.Error(err))
		return fmt.Errorf("update agent location: %w", err)
	}

	l.logger.Debug("Agent location updated",
		zap.String("agent_id", agent.ID),
		zap.Bool("available", agent.Available))
	return nil
}

// Remove убирает курьера из каталога
func (l *AgentLocator) Remove(ctx context.Context, agentID string) error {
	pipe := l.client.TxPipeline()
	pipe.ZRem(ctx, agentsGeoKey, agentID)
	pipe.Del(ctx, agentHashPrefix+agentID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remove agent: %w", err)
	}
	return nil
}

// ListAgents возвращает доступных курьеров в радиусе от точки, ближайшие первыми
func (l *AgentLocator) ListAgents(ctx context.Context, near domain.Coordinate) ([]domain.Agent, error) {
	locations, err := l.client.GeoRadius(ctx, agentsGeoKey, near.Lng, near.Lat, &redis.GeoRadiusQuery{
		Radius:    l.radiusKm,
		Unit:      "km",
		WithCoord: true,
		Sort:      "ASC",
		Count:     agentSearchLimit,
	}).Result()
	if err != nil {
		l.logger.Error("Failed to search agents", zap.String("near", near.String()), zap.Error(err))
		return nil, fmt.Errorf("search agents: %w", err)
	}
	if len(locations) == 0 {
		return []domain.Agent{}, nil
	}

	pipe := l.client.Pipeline()
	details := make([]*redis.MapStringStringCmd, len(locations))
	for i, loc := range locations {
		details[i] = pipe.HGetAll(ctx, agentHashPrefix+loc.Name)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("load agent details: %w", err)
	}

	agents := make([]domain.Agent, 0, len(locations))
	var stale []interface{}
	for i, loc := range locations {
		fields := details[i].Val()
		if len(fields) == 0 {
			// карточка истекла: курьер давно не присылал позицию
			stale = append(stale, loc.Name)
			continue
		}
		agents = append(agents, domain.Agent{
			ID:        loc.Name,
			Name:      fields["name"],
			Phone:     fields["phone"],
			Available: true,
			Location:  domain.Coordinate{Lat: loc.Latitude, Lng: loc.Longitude},
		})
	}

	if len(stale) > 0 {
		args := append([]interface{}{agentHashPrefix}, stale...)
		removed, err := pruneAgentsScript.Run(ctx, l.client, []string{agentsGeoKey}, args...).Int()
		if err != nil {
			l.logger.Warn("Failed to prune stale agents", zap.Error(err))
		} else {
			l.logger.Debug("Stale agents pruned", zap.Int("removed", removed))
		}
	}

	return agents, nil
}
