package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/domain/repository"
)

const (
	geofenceKeyPrefix = "geofence:"
	geofenceIndexKey  = "geofence:index"
	// geofenceMinTTL - минимальный TTL записи, чтобы уже истёкшая зона оставалась читаемой по ключу
	geofenceMinTTL = time.Minute
)

// pruneGeofenceIndexScript убирает из индекса ключи, у которых нет записи. Проверка EXISTS
// и SREM атомарны: зона, сохранённая заново после MGET, из индекса не пропадает.
// KEYS[1] - индекс, ARGV[1] - префикс записей, ARGV[2..] - ключи зон.
var pruneGeofenceIndexScript = redis.NewScript(`
local removed = 0
for i = 2, #ARGV do
  if redis.call('EXISTS', ARGV[1] .. ARGV[i]) == 0 then
    removed = removed + redis.call('SREM', KEYS[1], ARGV[i])
  end
end
return removed
`)

type geofenceStore struct {
	client *redis.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewGeofenceStore создаёт хранилище зон в Redis: JSON по ключу с TTL до истечения зоны и индекс ключей
func NewGeofenceStore(client *redis.Client, logger *zap.Logger) repository.GeofenceStore {
	return &geofenceStore{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

func (s *geofenceStore) Save(ctx context.Context, fence *domain.Geofence) error {
	data, err := json.Marshal(fence)
	if err != nil {
		return fmt.Errorf("marshal geofence: %w", err)
	}

	ttl := fence.ExpiresAt.Sub(s.now())
	if ttl < geofenceMinTTL {
		ttl = geofenceMinTTL
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, geofenceKeyPrefix+fence.Key, data, ttl)
	pipe.SAdd(ctx, geofenceIndexKey, fence.Key)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("Failed to save geofence", zap.String("key", fence.Key), zap.Error(err))
		return fmt.Errorf("save geofence: %w", err)
	}

	s.logger.Debug("Geofence saved", zap.String("key", fence.Key), zap.Duration("ttl", ttl))
	return nil
}

func (s *geofenceStore) Get(ctx context.Context, key string) (*domain.Geofence, error) {
	data, err := s.client.Get(ctx, geofenceKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to get geofence", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("get geofence: %w", err)
	}

	var fence domain.Geofence
	if err := json.Unmarshal(data, &fence); err != nil {
		return nil, fmt.Errorf("unmarshal geofence %s: %w", key, err)
	}
	return &fence, nil
}

func (s *geofenceStore) List(ctx context.Context) ([]*domain.Geofence, error) {
	keys, err := s.client.SMembers(ctx, geofenceIndexKey).Result()
	if err != nil {
		s.logger.Error("Failed to list geofence keys", zap.Error(err))
		return nil, fmt.Errorf("list geofences: %w", err)
	}
	if len(keys) == 0 {
		return []*domain.Geofence{}, nil
	}

	redisKeys := make([]string, len(keys))
	for i, k := range keys {
		redisKeys[i] = geofenceKeyPrefix + k
	}

	values, err := s.client.MGet(ctx, redisKeys...).Result()
	if err != nil {
		s.logger.Error("Failed to load geofences", zap.Error(err))
		return nil, fmt.Errorf("load geofences: %w", err)
	}

	fences := make([]*domain.Geofence, 0, len(values))
	var stale []interface{}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Запись истекла по TTL - чистим индекс
			stale = append(stale, keys[i])
			continue
		}

		var fence domain.Geofence
		if err := json.Unmarshal([]byte(raw), &fence); err != nil {
			s.logger.Warn("Skipping malformed geofence", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		fences = append(fences, &fence)
	}

	if len(stale) > 0 {
		s.pruneIndex(ctx, stale)
	}

	return fences, nil
}

func (s *geofenceStore) pruneIndex(ctx context.Context, keys []interface{}) {
	args := append([]interface{}{geofenceKeyPrefix}, keys...)
	removed, err := pruneGeofenceIndexScript.Run(ctx, s.client, []string{geofenceIndexKey}, args...).Int()
	if err != nil {
		s.logger.Warn("Failed to prune geofence index", zap.Error(err))
		return
	}
	s.logger.Debug("Geofence index pruned", zap.Int("removed", removed))
}
