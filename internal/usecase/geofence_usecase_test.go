package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/pkg/errors"
	"github.com/geo-routing-microservice/internal/repository/memory"
	"github.com/geo-routing-microservice/internal/usecase"
)

// fakeClock - управляемые из теста часы
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newGeofences(ttl time.Duration) (*usecase.GeofenceUseCase, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	uc := usecase.NewGeofenceUseCase(memory.NewGeofenceStore().WithClock(clock.Now), usecase.NewDistanceCalculator(0, 0), ttl, zap.NewNop()).
		WithClock(clock.Now)
	return uc, clock
}

func TestGeofenceUseCase_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("stores an active fence", func(t *testing.T) {
		uc, clock := newGeofences(time.Hour)

		fence, err := uc.Register(ctx, usecase.GeofenceInput{
			Key:       "vendor-1",
			Center:    newYork,
			RadiusKm:  0.5,
			EventType: domain.EventTypeAgentNearVendor,
			Payload:   domain.NotificationPayload{Title: "Courier nearby"},
		})
		require.NoError(t, err)
		assert.True(t, fence.Active)
		assert.Equal(t, clock.now, fence.CreatedAt)
		assert.Equal(t, clock.now.Add(time.Hour), fence.ExpiresAt)
		assert.Equal(t, domain.GeofenceStatusActive, uc.Status(fence))

		stored, err := uc.Get(ctx, "vendor-1")
		require.NoError(t, err)
		assert.Equal(t, "Courier nearby", stored.Payload.Title)
	})

	t.Run("generates a key", func(t *testing.T) {
		uc, _ := newGeofences(time.Hour)

		fence, err := uc.Register(ctx, usecase.GeofenceInput{Center: newYork, RadiusKm: 1, EventType: "custom"})
		require.NoError(t, err)
		assert.Len(t, fence.Key, 36)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		uc, _ := newGeofences(time.Hour)

		_, err := uc.Register(ctx, usecase.GeofenceInput{Center: domain.Coordinate{Lat: 100}, RadiusKm: 1, EventType: "x"})
		assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)

		_, err = uc.Register(ctx, usecase.GeofenceInput{Center: newYork, RadiusKm: 0, EventType: "x"})
		assert.ErrorIs(t, err, errors.ErrInvalidRadius)

		_, err = uc.Register(ctx, usecase.GeofenceInput{Center: newYork, RadiusKm: 1, EventType: "  "})
		assert.ErrorIs(t, err, errors.ErrInvalidRequest)
	})
}

func TestGeofenceUseCase_CheckMembership(t *testing.T) {
	ctx := context.Background()
	uc, clock := newGeofences(time.Hour)

	_, err := uc.Register(ctx, usecase.GeofenceInput{Key: "wide", Center: newYork, RadiusKm: 2, EventType: domain.EventTypeOrderArriving})
	require.NoError(t, err)
	_, err = uc.Register(ctx, usecase.GeofenceInput{
		Key: "tight", Center: domain.Coordinate{Lat: 40.7135, Lng: -74.0060}, RadiusKm: 0.2, EventType: domain.EventTypeAgentNearClient,
	})
	require.NoError(t, err)
	_, err = uc.Register(ctx, usecase.GeofenceInput{Key: "la", Center: losAngeles, RadiusKm: 5, EventType: domain.EventTypeOrderArriving})
	require.NoError(t, err)

	point := domain.Coordinate{Lat: 40.7136, Lng: -74.0060}

	matches, err := uc.CheckMembership(ctx, point)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "tight", matches[0].Key)
	assert.Equal(t, "wide", matches[1].Key)
	assert.Less(t, matches[0].DistanceKm, matches[1].DistanceKm)

	_, err = uc.Deactivate(ctx, "tight")
	require.NoError(t, err)
	matches, err = uc.CheckMembership(ctx, point)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "wide", matches[0].Key)

	clock.Advance(time.Hour)
	matches, err = uc.CheckMembership(ctx, point)
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = uc.CheckMembership(ctx, domain.Coordinate{Lng: 181})
	assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)
}

func TestGeofenceUseCase_Deactivate(t *testing.T) {
	ctx := context.Background()
	uc, clock := newGeofences(time.Hour)

	_, err := uc.Register(ctx, usecase.GeofenceInput{Key: "g1", Center: newYork, RadiusKm: 1, EventType: "x"})
	require.NoError(t, err)

	first, err := uc.Deactivate(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, first.Active)
	require.NotNil(t, first.DeactivatedAt)
	assert.Equal(t, domain.GeofenceStatusDeactivated, uc.Status(first))

	clock.Advance(time.Minute)
	second, err := uc.Deactivate(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, *first.DeactivatedAt, *second.DeactivatedAt)

	_, err = uc.Deactivate(ctx, "missing")
	assert.ErrorIs(t, err, errors.ErrGeofenceNotFound)
}

func TestGeofenceUseCase_Status(t *testing.T) {
	ctx := context.Background()
	uc, clock := newGeofences(30 * time.Minute)

	fence, err := uc.Register(ctx, usecase.GeofenceInput{Key: "g1", Center: newYork, RadiusKm: 1, EventType: "x"})
	require.NoError(t, err)

	clock.Advance(29 * time.Minute)
	assert.Equal(t, domain.GeofenceStatusActive, uc.Status(fence))

	clock.Advance(time.Minute)
	assert.Equal(t, domain.GeofenceStatusExpired, uc.Status(fence))
}

func TestGeofenceUseCase_CheckMembership_Containment(t *testing.T) {
	ctx := context.Background()
	center := domain.Coordinate{Lat: 5.36, Lng: -4.00}

	for _, radius := range []float64{0.05, 0.5, 1, 5, 50} {
		uc, _ := newGeofences(time.Hour)
		_, err := uc.Register(ctx, usecase.GeofenceInput{Key: "zone", Center: center, RadiusKm: radius, EventType: "x"})
		require.NoError(t, err)

		matches, err := uc.CheckMembership(ctx, center)
		require.NoError(t, err)
		require.Len(t, matches, 1, "center is a member for r=%.2f", radius)
		assert.Zero(t, matches[0].DistanceKm)

		// one kilometre past the edge, due north
		outside := domain.Coordinate{Lat: center.Lat + (radius+1)/111.195, Lng: center.Lng}
		matches, err = uc.CheckMembership(ctx, outside)
		require.NoError(t, err)
		assert.Empty(t, matches, "r+1 km is outside for r=%.2f", radius)

		inside := domain.Coordinate{Lat: center.Lat + radius*0.9/111.195, Lng: center.Lng}
		matches, err = uc.CheckMembership(ctx, inside)
		require.NoError(t, err)
		assert.Len(t, matches, 1, "0.9r is inside for r=%.2f", radius)
	}
}
