package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/domain/repository"
	"github.com/geo-routing-microservice/internal/pkg/errors"
	"github.com/geo-routing-microservice/internal/pkg/utils"
)

// GeofenceInput - параметры регистрации зоны
type GeofenceInput struct {
	Key       string
	Center    domain.Coordinate
	RadiusKm  float64
	EventType string
	Payload   domain.NotificationPayload
}

type GeofenceUseCase struct {
	store    repository.GeofenceStore
	distance *DistanceCalculator
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewGeofenceUseCase(
	store repository.GeofenceStore,
	distance *DistanceCalculator,
	ttl time.Duration,
	logger *zap.Logger,
) *GeofenceUseCase {
	return &GeofenceUseCase{
		store:    store,
		distance: distance,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock подменяет источник времени
func (uc *GeofenceUseCase) WithClock(now func() time.Time) *GeofenceUseCase {
	uc.now = now
	return uc
}

// Register сохраняет новую зону. Существующая зона с тем же ключом заменяется.
func (uc *GeofenceUseCase) Register(ctx context.Context, in GeofenceInput) (*domain.Geofence, error) {
	if !in.Center.Valid() {
		return nil, errors.ErrInvalidCoordinates
	}
	if !utils.ValidateRadius(in.RadiusKm) {
		return nil, errors.ErrInvalidRadius
	}
	if strings.TrimSpace(in.EventType) == "" {
		return nil, errors.ErrInvalidRequest.WithMessage("event_type is required")
	}

	key := strings.TrimSpace(in.Key)
	if key == "" {
		key = uuid.NewString()
	}

	now := uc.now().UTC()
	fence := &domain.Geofence{
		Key:       key,
		Center:    in.Center,
		RadiusKm:  in.RadiusKm,
		EventType: in.EventType,
		Payload:   in.Payload,
		Active:    true,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}

	if err := uc.store.Save(ctx, fence); err != nil {
		uc.logger.Error("Failed to register geofence", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	uc.logger.Info("Geofence registered",
		zap.String("key", key),
		zap.String("event_type", fence.EventType),
		zap.Float64("radius_km", fence.RadiusKm),
		zap.Time("expires_at", fence.ExpiresAt))
	return fence, nil
}

// CheckMembership возвращает активные зоны, содержащие точку, ближайшие центры первыми
func (uc *GeofenceUseCase) CheckMembership(ctx context.Context, point domain.Coordinate) ([]domain.GeofenceMatch, error) {
	if !point.Valid() {
		return nil, errors.ErrInvalidCoordinates
	}

	fences, err := uc.store.List(ctx)
	if err != nil {
		uc.logger.Error("Failed to list geofences", zap.Error(err))
		return nil, err
	}

	now := uc.now()
	matches := make([]domain.GeofenceMatch, 0)
	for _, f := range fences {
		if f.Status(now) != domain.GeofenceStatusActive {
			continue
		}
		km := uc.distance.DistanceKm(f.Center, point)
		if km > f.RadiusKm {
			continue
		}
		matches = append(matches, domain.GeofenceMatch{
			Key:        f.Key,
			EventType:  f.EventType,
			Payload:    f.Payload,
			DistanceKm: km,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].DistanceKm != matches[j].DistanceKm {
			return matches[i].DistanceKm < matches[j].DistanceKm
		}
		return matches[i].Key < matches[j].Key
	})
	return matches, nil
}

// Deactivate окончательно выключает зону. Повторная деактивация ничего не меняет.
func (uc *GeofenceUseCase) Deactivate(ctx context.Context, key string) (*domain.Geofence, error) {
	fence, err := uc.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !fence.Active {
		return fence, nil
	}

	now := uc.now().UTC()
	fence.Active = false
	fence.DeactivatedAt = &now

	if err := uc.store.Save(ctx, fence); err != nil {
		uc.logger.Error("Failed to deactivate geofence", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	uc.logger.Info("Geofence deactivated", zap.String("key", key))
	return fence, nil
}

// Get возвращает зону по ключу
func (uc *GeofenceUseCase) Get(ctx context.Context, key string) (*domain.Geofence, error) {
	fence, err := uc.store.Get(ctx, key)
	if err != nil {
		uc.logger.Error("Failed to get geofence", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	if fence == nil {
		return nil, errors.ErrGeofenceNotFound.WithMessage("geofence %q not found", key)
	}
	return fence, nil
}

// Status - состояние зоны на текущий момент
func (uc *GeofenceUseCase) Status(fence *domain.Geofence) domain.GeofenceStatus {
	return fence.Status(uc.now())
}
