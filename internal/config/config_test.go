package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ProviderNominatim, cfg.Geocoding.Provider)
	assert.Equal(t, 24*time.Hour, cfg.Cache.GeocodeTTL)
	assert.Equal(t, 24*time.Hour, cfg.Cache.PlacesTTL)
	assert.Equal(t, time.Hour, cfg.Cache.RouteTTL)
	assert.Equal(t, time.Hour, cfg.Cache.DistanceTTL)
	assert.Equal(t, 3.0, cfg.Routing.MinutesPerKm)
	assert.Equal(t, 15, cfg.Routing.PreparationMinutes)
	assert.Equal(t, 5, cfg.Routing.BufferMinutes)
	assert.Equal(t, 200*time.Millisecond, cfg.Routing.TwoOptTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Geofence.TTL)
	assert.Equal(t, "memory", cfg.Geofence.Store)
	assert.Equal(t, 10*time.Minute, cfg.Notification.DedupWindow)
	assert.Len(t, cfg.Matching.StaticAgents, 3)
	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddr())
}

func TestLoadFrom_EnvFileAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "API_PORT=9090\nGEOCODING_PROVIDER=google\nGOOGLE_MAPS_API_KEY=secret\nROUTE_CACHE_TTL=60\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("REDIS_HOST", "redis.internal")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ProviderGoogle, cfg.Geocoding.Provider)
	assert.Equal(t, "secret", cfg.Geocoding.GoogleAPIKey)
	assert.Equal(t, time.Minute, cfg.Cache.RouteTTL)
	assert.Equal(t, "redis.internal:6379", cfg.GetRedisAddr())
}

func TestLoadFrom_Validation(t *testing.T) {
	t.Run("google without key", func(t *testing.T) {
		t.Setenv("GEOCODING_PROVIDER", "google")
		_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
		assert.Error(t, err)
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Setenv("GEOCODING_PROVIDER", "here")
		_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
		assert.ErrorContains(t, err, "unknown geocoding provider")
	})
}

func TestParseList(t *testing.T) {
	assert.Nil(t, parseList(""))
	assert.Equal(t, []string{"a", "b"}, parseList(" a , ,b "))
}
