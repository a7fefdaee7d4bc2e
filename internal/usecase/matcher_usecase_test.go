package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/pkg/errors"
	"github.com/geo-routing-microservice/internal/usecase"
)

var testAgents = []domain.Agent{
	{ID: "a1", Name: "Far", Available: true, Location: domain.Coordinate{Lat: 40.7580, Lng: -73.9855}},
	{ID: "a2", Name: "Busy", Available: false, Location: domain.Coordinate{Lat: 40.7129, Lng: -74.0060}},
	{ID: "a3", Name: "Near", Available: true, Location: domain.Coordinate{Lat: 40.7150, Lng: -74.0060}},
	{ID: "a4", Name: "Near twin", Available: true, Location: domain.Coordinate{Lat: 40.7150, Lng: -74.0060}},
}

func TestMatcherUseCase_NearestAgent(t *testing.T) {
	uc := usecase.NewMatcherUseCase(&MockAgentPool{}, usecase.NewDistanceCalculator(0, 0), zap.NewNop())
	target := domain.Coordinate{Lat: 40.7128, Lng: -74.0060}

	match := uc.NearestAgent(target, testAgents)
	require.NotNil(t, match)
	assert.Equal(t, "a3", match.Agent.ID)
	assert.InDelta(t, 0.2446, match.DistanceKm, 0.001)

	assert.Nil(t, uc.NearestAgent(target, nil))
	assert.Nil(t, uc.NearestAgent(target, testAgents[1:2]))
}

func TestMatcherUseCase_OptimalDeliveryPerson(t *testing.T) {
	ctx := context.Background()
	target := domain.Coordinate{Lat: 40.7128, Lng: -74.0060}

	t.Run("picks from pool", func(t *testing.T) {
		pool := &MockAgentPool{}
		uc := usecase.NewMatcherUseCase(pool, usecase.NewDistanceCalculator(0, 0), zap.NewNop())
		pool.On("ListAgents", ctx, target).Return(testAgents, nil)

		match, err := uc.OptimalDeliveryPerson(ctx, target)
		require.NoError(t, err)
		require.NotNil(t, match)
		assert.Equal(t, "a3", match.Agent.ID)
	})

	t.Run("pool failure means no match", func(t *testing.T) {
		pool := &MockAgentPool{}
		uc := usecase.NewMatcherUseCase(pool, usecase.NewDistanceCalculator(0, 0), zap.NewNop())
		pool.On("ListAgents", ctx, target).Return(nil, assert.AnError)

		match, err := uc.OptimalDeliveryPerson(ctx, target)
		assert.NoError(t, err)
		assert.Nil(t, match)
	})

	t.Run("invalid location", func(t *testing.T) {
		pool := &MockAgentPool{}
		uc := usecase.NewMatcherUseCase(pool, usecase.NewDistanceCalculator(0, 0), zap.NewNop())

		_, err := uc.OptimalDeliveryPerson(ctx, domain.Coordinate{Lat: -91})
		assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)
		pool.AssertNotCalled(t, "ListAgents")
	})
}
