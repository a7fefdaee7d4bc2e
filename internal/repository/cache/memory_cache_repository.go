package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain/repository"
)

// memoryCacheRepository - CacheRepository в памяти процесса, для запуска без Redis и для тестов
type memoryCacheRepository struct {
	store  *ttlcache.Cache[string, []byte]
	logger *zap.Logger
}

// NewMemoryCacheRepository создаёт кеш в памяти. При maxEntries > 0 лишние записи
// вытесняются по LRU.
func NewMemoryCacheRepository(maxEntries int, logger *zap.Logger) repository.CacheRepository {
	opts := []ttlcache.Option[string, []byte]{
		ttlcache.WithTTL[string, []byte](time.Hour),
		// TTL записи не продлевается чтением, иначе SetNX-блокировки жили бы вечно
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	}
	if maxEntries > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []byte](uint64(maxEntries)))
	}

	return &memoryCacheRepository{
		store:  ttlcache.New[string, []byte](opts...),
		logger: logger,
	}
}

func (r *memoryCacheRepository) Get(_ context.Context, key string) ([]byte, error) {
	item := r.store.Get(key)
	if item == nil {
		return nil, nil
	}
	r.logger.Debug("Cache hit", zap.String("key", key))
	return item.Value(), nil
}

func (r *memoryCacheRepository) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.store.Set(key, value, ttl)
	return nil
}

func (r *memoryCacheRepository) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	_, found := r.store.GetOrSet(key, value, ttlcache.WithTTL[string, []byte](ttl))
	return !found, nil
}

func (r *memoryCacheRepository) Delete(_ context.Context, key string) error {
	r.store.Delete(key)
	return nil
}

func (r *memoryCacheRepository) Exists(_ context.Context, key string) (bool, error) {
	return r.store.Get(key) != nil, nil
}
