package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/config"
	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/pkg/errors"
	"github.com/geo-routing-microservice/internal/usecase"
)

var testCacheConfig = config.CacheConfig{
	GeocodeTTL: 24 * time.Hour,
	PlacesTTL:  24 * time.Hour,
	RouteTTL:   time.Hour,
}

func newGeocoding(
	provider *MockGeocodingProvider,
	cache *MockCacheRepository,
	vendors *MockVendorRepository,
	clients *MockClientRepository,
) *usecase.GeocodingUseCase {
	if cache == nil {
		return usecase.NewGeocodingUseCase(provider, nil, vendors, clients, testCacheConfig, zap.NewNop())
	}
	return usecase.NewGeocodingUseCase(provider, cache, vendors, clients, testCacheConfig, zap.NewNop())
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "350 5th ave new york", usecase.NormalizeAddress("  350  5th\tAve\nNew York "))
	assert.Equal(t, "", usecase.NormalizeAddress("   "))
}

func TestGeocodingUseCase_Geocode(t *testing.T) {
	ctx := context.Background()
	result := &domain.GeocodeResult{
		Location:         domain.Coordinate{Lat: 40.7484, Lng: -73.9857},
		FormattedAddress: "350 5th Ave, New York, NY 10118",
		Provider:         "mock",
	}

	t.Run("cache miss calls provider and stores result", func(t *testing.T) {
		provider := &MockGeocodingProvider{}
		cache := &MockCacheRepository{}
		uc := newGeocoding(provider, cache, nil, nil)

		cache.On("Get", ctx, "geocode:350 5th ave").Return(nil, nil)
		provider.On("Geocode", ctx, "350 5th  Ave").Return(result, nil)
		cache.On("Set", ctx, "geocode:350 5th ave", mock.Anything, 24*time.Hour).Return(nil)

		res := uc.Geocode(ctx, "350 5th  Ave")
		require.NotNil(t, res)
		assert.Equal(t, result.Location, res.Location)

		provider.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache hit skips provider", func(t *testing.T) {
		provider := &MockGeocodingProvider{}
		cache := &MockCacheRepository{}
		uc := newGeocoding(provider, cache, nil, nil)

		data, _ := json.Marshal(result)
		cache.On("Get", ctx, "geocode:350 5th ave").Return(data, nil)

		res := uc.Geocode(ctx, "350 5TH AVE")
		require.NotNil(t, res)
		assert.Equal(t, result.FormattedAddress, res.FormattedAddress)
		provider.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
	})

	t.Run("cache failure falls through to provider", func(t *testing.T) {
		provider := &MockGeocodingProvider{}
		cache := &MockCacheRepository{}
		uc := newGeocoding(provider, cache, nil, nil)

		cache.On("Get", ctx, mock.Anything).Return(nil, errors.ErrCacheError)
		provider.On("Geocode", ctx, "main st").Return(result, nil)
		cache.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.ErrCacheError)

		assert.NotNil(t, uc.Geocode(ctx, "main st"))
	})

	t.Run("provider error becomes not found", func(t *testing.T) {
		provider := &MockGeocodingProvider{}
		cache := &MockCacheRepository{}
		uc := newGeocoding(provider, cache, nil, nil)

		cache.On("Get", ctx, mock.Anything).Return(nil, nil)
		provider.On("Geocode", ctx, "broken").Return(nil, assert.AnError)

		assert.Nil(t, uc.Geocode(ctx, "broken"))
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found is not cached", func(t *testing.T) {
		provider := &MockGeocodingProvider{}
		uc := newGeocoding(provider, nil, nil, nil)

		provider.On("Geocode", ctx, "nowhere").Return(nil, nil)
		assert.Nil(t, uc.Geocode(ctx, "nowhere"))
	})

	t.Run("blank address", func(t *testing.T) {
		provider := &MockGeocodingProvider{}
		uc := newGeocoding(provider, nil, nil, nil)
		assert.Nil(t, uc.Geocode(ctx, "  "))
		provider.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
	})
}

func TestGeocodingUseCase_ReverseGeocode(t *testing.T) {
	ctx := context.Background()
	provider := &MockGeocodingProvider{}
	cache := &MockCacheRepository{}
	uc := newGeocoding(provider, cache, nil, nil)

	point := domain.Coordinate{Lat: 40.7127753, Lng: -74.0059728}
	cache.On("Get", ctx, "reverse:40.71278,-74.00597").Return(nil, nil)
	provider.On("ReverseGeocode", ctx, point).Return(&domain.AddressComponents{City: "New York"}, nil)
	cache.On("Set", ctx, "reverse:40.71278,-74.00597", mock.Anything, 24*time.Hour).Return(nil)

	res := uc.ReverseGeocode(ctx, point)
	require.NotNil(t, res)
	assert.Equal(t, "New York", res.City)
	cache.AssertExpectations(t)

	assert.Nil(t, uc.ReverseGeocode(ctx, domain.Coordinate{Lat: 100}))
}

func TestGeocodingUseCase_RouteUsesRouteTTL(t *testing.T) {
	ctx := context.Background()
	provider := &MockGeocodingProvider{}
	cache := &MockCacheRepository{}
	uc := newGeocoding(provider, cache, nil, nil)

	origin := domain.Coordinate{Lat: 40.7128, Lng: -74.006}
	dest := domain.Coordinate{Lat: 40.758, Lng: -73.9855}
	key := "route:walking:40.71280,-74.00600:40.75800,-73.98550"

	cache.On("Get", ctx, key).Return(nil, nil)
	provider.On("Route", ctx, origin, dest, domain.TravelModeWalking).
		Return(&domain.ProviderRoute{DistanceMeters: 5000, DurationSeconds: 3600}, nil)
	cache.On("Set", ctx, key, mock.Anything, time.Hour).Return(nil)

	route := uc.Route(ctx, origin, dest, domain.TravelModeWalking)
	require.NotNil(t, route)
	assert.Equal(t, 5000.0, route.DistanceMeters)
	cache.AssertExpectations(t)
}

func TestGeocodingUseCase_SearchPlaces(t *testing.T) {
	ctx := context.Background()
	provider := &MockGeocodingProvider{}
	uc := newGeocoding(provider, nil, nil, nil)

	center := domain.Coordinate{Lat: 40.7128, Lng: -74.006}
	provider.On("SearchPlaces", ctx, "pizza", center, 1000).
		Return([]domain.PlaceResult{{PlaceID: "p1", Name: "Joe's"}}, nil)
	provider.On("SearchPlaces", ctx, "sushi", center, 1000).Return(nil, assert.AnError)

	res := uc.SearchPlaces(ctx, "pizza", center, 1000)
	require.Len(t, res, 1)
	assert.Equal(t, "p1", res[0].PlaceID)

	res = uc.SearchPlaces(ctx, "sushi", center, 1000)
	assert.NotNil(t, res)
	assert.Empty(t, res)

	assert.Empty(t, uc.SearchPlaces(ctx, "", center, 1000))
	assert.Empty(t, uc.SearchPlaces(ctx, "pizza", center, 0))
}

func TestGeocodingUseCase_ResolveLocation(t *testing.T) {
	ctx := context.Background()
	provider := &MockGeocodingProvider{}
	uc := newGeocoding(provider, nil, nil, nil)

	t.Run("coordinate wins", func(t *testing.T) {
		p := domain.Coordinate{Lat: 1, Lng: 2}
		got, err := uc.ResolveLocation(ctx, &p, "ignored")
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("invalid coordinate", func(t *testing.T) {
		_, err := uc.ResolveLocation(ctx, &domain.Coordinate{Lat: -91}, "")
		assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)
	})

	t.Run("neither given", func(t *testing.T) {
		_, err := uc.ResolveLocation(ctx, nil, " ")
		assert.ErrorIs(t, err, errors.ErrInvalidRequest)
	})

	t.Run("address geocoded", func(t *testing.T) {
		provider.On("Geocode", ctx, "Times Square").
			Return(&domain.GeocodeResult{Location: domain.Coordinate{Lat: 40.758, Lng: -73.9855}}, nil).Once()
		got, err := uc.ResolveLocation(ctx, nil, "Times Square")
		require.NoError(t, err)
		assert.Equal(t, 40.758, got.Lat)
	})

	t.Run("address not found", func(t *testing.T) {
		provider.On("Geocode", ctx, "Atlantis").Return(nil, nil).Once()
		_, err := uc.ResolveLocation(ctx, nil, "Atlantis")
		assert.ErrorIs(t, err, errors.ErrLocationNotFound)
	})
}

func TestGeocodingUseCase_BackfillVendorCoordinates(t *testing.T) {
	ctx := context.Background()
	provider := &MockGeocodingProvider{}
	vendors := &MockVendorRepository{}
	uc := newGeocoding(provider, nil, vendors, &MockClientRepository{})

	point := domain.Coordinate{Lat: 40.7411, Lng: -73.9897}
	vendors.On("ListMissingCoordinates", ctx, 10, usecase.DefaultBackfillRetryAfter).Return([]*domain.Vendor{
		{ID: 5, Address: "200 5th Ave, New York"},
		{ID: 6, Address: "Unknown Place"},
		{ID: 7, Address: "1 Main St"},
	}, nil)
	provider.On("Geocode", ctx, "200 5th Ave, New York").Return(&domain.GeocodeResult{Location: point}, nil)
	provider.On("Geocode", ctx, "Unknown Place").Return(nil, nil)
	provider.On("Geocode", ctx, "1 Main St").Return(&domain.GeocodeResult{Location: point}, nil)
	vendors.On("UpdateCoordinates", ctx, int64(5), point).Return(nil)
	vendors.On("UpdateCoordinates", ctx, int64(7), point).Return(errors.ErrDatabaseError)
	vendors.On("MarkGeocodeAttempted", ctx, int64(6)).Return(nil).Once()

	updated, err := uc.BackfillVendorCoordinates(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	vendors.AssertExpectations(t)
}

func TestGeocodingUseCase_BackfillClientCoordinates(t *testing.T) {
	ctx := context.Background()
	provider := &MockGeocodingProvider{}
	clients := &MockClientRepository{}
	uc := newGeocoding(provider, nil, &MockVendorRepository{}, clients).WithBackfillRetryAfter(time.Hour)

	t.Run("list failure", func(t *testing.T) {
		clients.On("ListMissingCoordinates", ctx, 5, time.Hour).Return(nil, errors.ErrDatabaseError).Once()
		_, err := uc.BackfillClientCoordinates(ctx, 5)
		assert.ErrorIs(t, err, errors.ErrDatabaseError)
	})

	t.Run("updates geocoded clients", func(t *testing.T) {
		point := domain.Coordinate{Lat: 40.73, Lng: -73.99}
		clients.On("ListMissingCoordinates", ctx, 5, time.Hour).Return([]*domain.Client{{ID: 4, Address: "Union Square"}}, nil).Once()
		provider.On("Geocode", ctx, "Union Square").Return(&domain.GeocodeResult{Location: point}, nil)
		clients.On("UpdateCoordinates", ctx, int64(4), point).Return(nil)

		updated, err := uc.BackfillClientCoordinates(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, 1, updated)
	})

	t.Run("marks ungeocodable addresses", func(t *testing.T) {
		clients.On("ListMissingCoordinates", ctx, 5, time.Hour).Return([]*domain.Client{{ID: 9, Address: "Nowhere 0"}}, nil).Once()
		provider.On("Geocode", ctx, "Nowhere 0").Return(nil, nil)
		clients.On("MarkGeocodeAttempted", ctx, int64(9)).Return(errors.ErrDatabaseError).Once()

		updated, err := uc.BackfillClientCoordinates(ctx, 5)
		require.NoError(t, err)
		assert.Zero(t, updated)
		clients.AssertCalled(t, "MarkGeocodeAttempted", ctx, int64(9))
		clients.AssertNotCalled(t, "UpdateCoordinates", ctx, int64(9), mock.Anything)
	})
}
