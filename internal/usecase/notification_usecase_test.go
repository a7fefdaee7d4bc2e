package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/usecase"
)

const testDedupWindow = 10 * time.Minute

func setupNotifications(t *testing.T) (*usecase.NotificationUseCase, *MockCacheRepository, *MockNotificationPublisher) {
	t.Helper()
	ctx := context.Background()

	geofences, _ := newGeofences(time.Hour)
	_, err := geofences.Register(ctx, usecase.GeofenceInput{
		Key:       "vendor-7",
		Center:    newYork,
		RadiusKm:  0.5,
		EventType: domain.EventTypeAgentNearVendor,
		Payload:   domain.NotificationPayload{Title: "Courier is close"},
	})
	require.NoError(t, err)

	cache := &MockCacheRepository{}
	publisher := &MockNotificationPublisher{}
	uc := usecase.NewNotificationUseCase(geofences, cache, publisher, testDedupWindow, zap.NewNop())
	return uc, cache, publisher
}

func positionAt(p domain.Coordinate) domain.PositionUpdateEvent {
	return domain.PositionUpdateEvent{EntityType: domain.EntityTypeAgent, EntityID: "courier-1", Lat: p.Lat, Lng: p.Lng}
}

func TestDedupKey(t *testing.T) {
	assert.Equal(t, "notify:dedup:agent:42:order_arriving", usecase.DedupKey("agent:42", domain.EventTypeOrderArriving))
}

func TestNotificationUseCase_ProcessPositionUpdate(t *testing.T) {
	ctx := context.Background()
	dedupKey := usecase.DedupKey("agent:courier-1", domain.EventTypeAgentNearVendor)

	t.Run("publishes on first entry", func(t *testing.T) {
		uc, cache, publisher := setupNotifications(t)

		cache.On("SetNX", ctx, dedupKey, []byte("vendor-7"), testDedupWindow).Return(true, nil)
		publisher.On("Publish", ctx, mock.MatchedBy(func(e *domain.NotificationEvent) bool {
			return e.RecipientID == "agent:courier-1" &&
				e.GeofenceKey == "vendor-7" &&
				e.EventType == domain.EventTypeAgentNearVendor &&
				e.Payload.Title == "Courier is close"
		})).Return(nil)

		n, err := uc.ProcessPositionUpdate(ctx, positionAt(newYork))
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		publisher.AssertExpectations(t)
	})

	t.Run("suppressed inside the dedup window", func(t *testing.T) {
		uc, cache, publisher := setupNotifications(t)
		cache.On("SetNX", ctx, dedupKey, mock.Anything, testDedupWindow).Return(false, nil)

		n, err := uc.ProcessPositionUpdate(ctx, positionAt(newYork))
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("explicit recipient", func(t *testing.T) {
		uc, cache, publisher := setupNotifications(t)
		key := usecase.DedupKey("user-9", domain.EventTypeAgentNearVendor)
		cache.On("SetNX", ctx, key, mock.Anything, testDedupWindow).Return(true, nil)
		publisher.On("Publish", ctx, mock.MatchedBy(func(e *domain.NotificationEvent) bool {
			return e.RecipientID == "user-9"
		})).Return(nil)

		event := positionAt(newYork)
		event.RecipientID = "user-9"
		n, err := uc.ProcessPositionUpdate(ctx, event)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("cache failure still publishes", func(t *testing.T) {
		uc, cache, publisher := setupNotifications(t)
		cache.On("SetNX", ctx, dedupKey, mock.Anything, testDedupWindow).Return(false, assert.AnError)
		publisher.On("Publish", ctx, mock.Anything).Return(nil)

		n, err := uc.ProcessPositionUpdate(ctx, positionAt(newYork))
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("publish failure releases the dedup key", func(t *testing.T) {
		uc, cache, publisher := setupNotifications(t)
		cache.On("SetNX", ctx, dedupKey, mock.Anything, testDedupWindow).Return(true, nil)
		cache.On("Delete", ctx, dedupKey).Return(nil)
		publisher.On("Publish", ctx, mock.Anything).Return(assert.AnError)

		n, err := uc.ProcessPositionUpdate(ctx, positionAt(newYork))
		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, 0, n)
		cache.AssertCalled(t, "Delete", ctx, dedupKey)
	})

	t.Run("outside every fence", func(t *testing.T) {
		uc, cache, publisher := setupNotifications(t)

		n, err := uc.ProcessPositionUpdate(ctx, positionAt(losAngeles))
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		cache.AssertNotCalled(t, "SetNX", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}
