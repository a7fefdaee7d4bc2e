package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geo-routing-microservice/internal/domain"
)

func TestNewAgentPool(t *testing.T) {
	pool, err := NewAgentPool([]string{
		"dp-1|Alice|40.7128|-74.0060",
		" dp-2 | Bob | 40.7580 | -73.9855 ",
	})
	require.NoError(t, err)

	agents, err := pool.ListAgents(context.Background(), domain.Coordinate{})
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "dp-1", agents[0].ID)
	assert.Equal(t, "Bob", agents[1].Name)
	assert.Equal(t, domain.Coordinate{Lat: 40.7580, Lng: -73.9855}, agents[1].Location)
	assert.True(t, agents[1].Available)

	// Callers must not be able to mutate the pool
	agents[0].Name = "changed"
	again, _ := pool.ListAgents(context.Background(), domain.Coordinate{})
	assert.Equal(t, "Alice", again[0].Name)
}

func TestNewAgentPool_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{"too few parts", "dp-1|Alice|40.7"},
		{"bad latitude", "dp-1|Alice|north|-74"},
		{"bad longitude", "dp-1|Alice|40|west"},
		{"empty id", "|Alice|40|-74"},
		{"out of range", "dp-1|Alice|95|-74"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAgentPool([]string{tt.entry})
			assert.Error(t, err)
		})
	}
}

func TestNewAgentPool_Empty(t *testing.T) {
	pool, err := NewAgentPool(nil)
	require.NoError(t, err)
	agents, err := pool.ListAgents(context.Background(), domain.Coordinate{})
	require.NoError(t, err)
	assert.Empty(t, agents)
}
