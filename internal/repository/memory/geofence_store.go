package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/domain/repository"
)

// geofenceRetention - сколько истёкшая зона остаётся читаемой по ключу после сохранения
const geofenceRetention = time.Minute

type storedFence struct {
	fence       domain.Geofence
	retainUntil time.Time
}

// GeofenceStore - хранилище зон в памяти процесса. Зоны удаляются после истечения,
// как записи с TTL в Redis.
type GeofenceStore struct {
	mu     sync.RWMutex
	fences map[string]storedFence
	now    func() time.Time
}

var _ repository.GeofenceStore = (*GeofenceStore)(nil)

// NewGeofenceStore создаёт пустое хранилище
func NewGeofenceStore() *GeofenceStore {
	return &GeofenceStore{
		fences: make(map[string]storedFence),
		now:    time.Now,
	}
}

// WithClock подменяет источник времени
func (s *GeofenceStore) WithClock(now func() time.Time) *GeofenceStore {
	s.now = now
	return s
}

// Save сохраняет копию зоны, заменяя существующую с тем же ключом
func (s *GeofenceStore) Save(_ context.Context, fence *domain.Geofence) error {
	now := s.now()
	retainUntil := fence.ExpiresAt
	if floor := now.Add(geofenceRetention); retainUntil.Before(floor) {
		retainUntil = floor
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)
	s.fences[fence.Key] = storedFence{fence: *fence, retainUntil: retainUntil}
	return nil
}

func (s *GeofenceStore) Get(_ context.Context, key string) (*domain.Geofence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.fences[key]
	if !ok || !s.now().Before(stored.retainUntil) {
		return nil, nil
	}
	fence := stored.fence
	return &fence, nil
}

// List возвращает копии всех неистёкших зон, упорядоченные по ключу
func (s *GeofenceStore) List(_ context.Context) ([]*domain.Geofence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())

	fences := make([]*domain.Geofence, 0, len(s.fences))
	for _, stored := range s.fences {
		fence := stored.fence
		fences = append(fences, &fence)
	}
	sort.Slice(fences, func(i, j int) bool { return fences[i].Key < fences[j].Key })
	return fences, nil
}

// Len возвращает число хранимых зон, включая ещё не вычищенные
func (s *GeofenceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fences)
}

func (s *GeofenceStore) pruneLocked(now time.Time) {
	for key, stored := range s.fences {
		if !now.Before(stored.retainUntil) {
			delete(s.fences, key)
		}
	}
}
