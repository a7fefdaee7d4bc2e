package usecase_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/pkg/errors"
	"github.com/geo-routing-microservice/internal/usecase"
)

func coord(lat, lng float64) *domain.Coordinate {
	return &domain.Coordinate{Lat: lat, Lng: lng}
}

func newSpatial(vendors *MockVendorRepository, clients *MockClientRepository) *usecase.SpatialUseCase {
	return usecase.NewSpatialUseCase(vendors, clients, usecase.NewDistanceCalculator(0, 0), zap.NewNop())
}

func TestSpatialUseCase_FindVendorsInRadius(t *testing.T) {
	ctx := context.Background()
	center := domain.Coordinate{Lat: 40.7128, Lng: -74.0060}

	t.Run("filters, sorts by distance and breaks ties by id", func(t *testing.T) {
		vendors := &MockVendorRepository{}
		uc := newSpatial(vendors, &MockClientRepository{})

		vendors.On("ListInBox", ctx, mock.AnythingOfType("domain.BoundingBox")).Return([]*domain.Vendor{
			{ID: 4, Name: "Far", IsOpen: true, IsVerified: true, Location: coord(40.7580, -73.9855)},
			{ID: 2, Name: "Near B", IsOpen: true, IsVerified: true, Location: coord(40.7138, -74.0060)},
			{ID: 1, Name: "Near A", IsOpen: true, IsVerified: true, Location: coord(40.7138, -74.0060)},
			{ID: 3, Name: "Closed", IsOpen: false, IsVerified: true, Location: coord(40.7129, -74.0060)},
			{ID: 5, Name: "No coords", IsOpen: true, IsVerified: true},
			{ID: 6, Name: "Outside", IsOpen: true, IsVerified: true, Location: coord(41.0, -74.0060)},
		}, nil)

		matches, err := uc.FindVendorsInRadius(ctx, center, 10, usecase.VendorOpenAndVerified)
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, int64(1), matches[0].Entity.ID)
		assert.Equal(t, int64(2), matches[1].Entity.ID)
		assert.Equal(t, int64(4), matches[2].Entity.ID)
		assert.InDelta(t, 0.111, matches[0].DistanceKm, 0.001)

		vendors.AssertExpectations(t)
	})

	t.Run("nil predicate keeps every located vendor", func(t *testing.T) {
		vendors := &MockVendorRepository{}
		uc := newSpatial(vendors, &MockClientRepository{})

		vendors.On("ListInBox", ctx, mock.Anything).Return([]*domain.Vendor{
			{ID: 3, IsOpen: false, Location: coord(40.7129, -74.0060)},
			{ID: 5},
		}, nil)

		matches, err := uc.FindVendorsInRadius(ctx, center, 1, nil)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, int64(3), matches[0].Entity.ID)
	})

	t.Run("prefilter box contains the whole circle", func(t *testing.T) {
		vendors := &MockVendorRepository{}
		uc := newSpatial(vendors, &MockClientRepository{})

		vendors.On("ListInBox", ctx, mock.MatchedBy(func(box domain.BoundingBox) bool {
			return box.Contains(center) &&
				box.MaxLat-center.Lat >= 5/111.32 &&
				center.Lng-box.MinLng >= 5/(111.32*0.76)
		})).Return([]*domain.Vendor{}, nil)

		matches, err := uc.FindVendorsInRadius(ctx, center, 5, nil)
		require.NoError(t, err)
		assert.Empty(t, matches)
		vendors.AssertExpectations(t)
	})

	t.Run("invalid input", func(t *testing.T) {
		uc := newSpatial(&MockVendorRepository{}, &MockClientRepository{})

		_, err := uc.FindVendorsInRadius(ctx, domain.Coordinate{Lat: 91}, 1, nil)
		assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)

		for _, r := range []float64{0, -1, 500.1} {
			_, err = uc.FindVendorsInRadius(ctx, center, r, nil)
			assert.ErrorIs(t, err, errors.ErrInvalidRadius, "radius %v", r)
		}
	})

	t.Run("repository error", func(t *testing.T) {
		vendors := &MockVendorRepository{}
		uc := newSpatial(vendors, &MockClientRepository{})
		vendors.On("ListInBox", ctx, mock.Anything).Return(nil, errors.ErrDatabaseError)

		_, err := uc.FindVendorsInRadius(ctx, center, 1, nil)
		assert.ErrorIs(t, err, errors.ErrDatabaseError)
	})
}

func TestSpatialUseCase_FindClientsInRadius(t *testing.T) {
	ctx := context.Background()
	clients := &MockClientRepository{}
	uc := newSpatial(&MockVendorRepository{}, clients)

	clients.On("ListInBox", ctx, mock.Anything).Return([]*domain.Client{
		{ID: 1, Status: domain.ClientStatusBlocked, Location: coord(40.7128, -74.0060)},
		{ID: 2, Status: domain.ClientStatusActive, Location: coord(40.7130, -74.0060)},
		{ID: 3, Status: domain.ClientStatusActive},
	}, nil)

	matches, err := uc.FindClientsInRadius(ctx, newYork, 2, usecase.ClientActive)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int64(2), matches[0].Entity.ID)
}

func TestSpatialUseCase_FindInBox(t *testing.T) {
	ctx := context.Background()
	box := domain.BoundingBox{MinLat: 40.70, MaxLat: 40.80, MinLng: -74.05, MaxLng: -73.95}

	t.Run("vendors", func(t *testing.T) {
		vendors := &MockVendorRepository{}
		uc := newSpatial(vendors, &MockClientRepository{})
		vendors.On("ListInBox", ctx, box).Return([]*domain.Vendor{
			{ID: 1, IsOpen: true, IsVerified: true, Location: coord(40.75, -74.0)},
			{ID: 2, IsOpen: true, IsVerified: false, Location: coord(40.75, -74.0)},
			{ID: 3, IsOpen: true, IsVerified: true, Location: coord(40.90, -74.0)},
		}, nil)

		found, err := uc.FindVendorsInBox(ctx, box, usecase.VendorOpenAndVerified)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, int64(1), found[0].ID)
	})

	t.Run("clients", func(t *testing.T) {
		clients := &MockClientRepository{}
		uc := newSpatial(&MockVendorRepository{}, clients)
		clients.On("ListInBox", ctx, box).Return([]*domain.Client{
			{ID: 7, Status: domain.ClientStatusActive, Location: coord(40.71, -74.01)},
		}, nil)

		found, err := uc.FindClientsInBox(ctx, box, nil)
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("inverted box", func(t *testing.T) {
		uc := newSpatial(&MockVendorRepository{}, &MockClientRepository{})
		_, err := uc.FindVendorsInBox(ctx, domain.BoundingBox{MinLat: 41, MaxLat: 40, MinLng: -74, MaxLng: -73}, nil)
		assert.ErrorIs(t, err, errors.ErrInvalidBoundingBox)

		_, err = uc.FindClientsInBox(ctx, domain.BoundingBox{MinLat: 40, MaxLat: 41, MinLng: 170, MaxLng: -170}, nil)
		assert.ErrorIs(t, err, errors.ErrInvalidBoundingBox)
	})

	t.Run("out of range edge", func(t *testing.T) {
		uc := newSpatial(&MockVendorRepository{}, &MockClientRepository{})
		_, err := uc.FindVendorsInBox(ctx, domain.BoundingBox{MinLat: -95, MaxLat: 40, MinLng: -74, MaxLng: -73}, nil)
		assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)
	})
}

func TestSpatialUseCase_GenerateGrid(t *testing.T) {
	uc := newSpatial(&MockVendorRepository{}, &MockClientRepository{})

	t.Run("covers the circumscribing square", func(t *testing.T) {
		cells, err := uc.GenerateGrid(domain.Coordinate{Lat: 0, Lng: 0}, 111.32, 0.5)
		require.NoError(t, err)
		require.Len(t, cells, 25)

		assert.Equal(t, -1.0, cells[0].Lat)
		assert.Equal(t, -1.0, cells[0].Lng)
		assert.Equal(t, 1.0, cells[24].Lat)
		assert.Equal(t, 1.0, cells[24].Lng)

		centerCell := cells[12]
		assert.Equal(t, 0.0, centerCell.Lat)
		assert.Equal(t, 0.0, centerCell.Lng)
		assert.Equal(t, 0.0, centerCell.DistanceFromCenterKm)
		assert.Greater(t, cells[0].DistanceFromCenterKm, 111.0)
	})

	t.Run("invalid cell size", func(t *testing.T) {
		for _, size := range []float64{0, -0.1} {
			_, err := uc.GenerateGrid(newYork, 1, size)
			assert.ErrorIs(t, err, errors.ErrInvalidCellSize, fmt.Sprint(size))
		}
	})

	t.Run("too many cells", func(t *testing.T) {
		_, err := uc.GenerateGrid(newYork, 500, 0.001)
		assert.ErrorIs(t, err, errors.ErrInvalidCellSize)
	})

	t.Run("invalid radius", func(t *testing.T) {
		_, err := uc.GenerateGrid(newYork, 0, 0.1)
		assert.ErrorIs(t, err, errors.ErrInvalidRadius)
	})
}

// boxVendorRepo - репозиторий заведений в памяти с фильтром по области, как в Postgres
type boxVendorRepo struct {
	vendors []*domain.Vendor
}

func (r *boxVendorRepo) ListInBox(_ context.Context, box domain.BoundingBox) ([]*domain.Vendor, error) {
	var out []*domain.Vendor
	for _, v := range r.vendors {
		if v.Location != nil && box.Contains(*v.Location) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *boxVendorRepo) ListMissingCoordinates(context.Context, int, time.Duration) ([]*domain.Vendor, error) {
	return nil, nil
}

func (r *boxVendorRepo) UpdateCoordinates(context.Context, int64, domain.Coordinate) error {
	return nil
}

func (r *boxVendorRepo) MarkGeocodeAttempted(context.Context, int64) error { return nil }

func matchedIDs(matches []domain.EntityMatch[*domain.Vendor]) map[int64]bool {
	ids := make(map[int64]bool, len(matches))
	for _, m := range matches {
		ids[m.Entity.ID] = true
	}
	return ids
}

func TestSpatialUseCase_FindVendorsInRadius_Monotonic(t *testing.T) {
	ctx := context.Background()
	r := rand.New(rand.NewPCG(3, 5))
	center := domain.Coordinate{Lat: 5.36, Lng: -4.00}

	repo := &boxVendorRepo{}
	for i := 0; i < 300; i++ {
		repo.vendors = append(repo.vendors, &domain.Vendor{
			ID:         int64(i + 1),
			IsOpen:     i%3 != 0,
			IsVerified: true,
			Location:   coord(center.Lat+(r.Float64()-0.5)*0.6, center.Lng+(r.Float64()-0.5)*0.6),
		})
	}
	uc := usecase.NewSpatialUseCase(repo, &MockClientRepository{}, usecase.NewDistanceCalculator(0, 0), zap.NewNop())

	radii := []float64{0.5, 1, 2, 5, 10, 20, 40}
	var previous map[int64]bool
	for _, radius := range radii {
		matches, err := uc.FindVendorsInRadius(ctx, center, radius, usecase.VendorOpenAndVerified)
		require.NoError(t, err)

		current := matchedIDs(matches)
		for id := range previous {
			assert.True(t, current[id], "vendor %d found at a smaller radius but not at %.1f km", id, radius)
		}
		for i := 1; i < len(matches); i++ {
			assert.LessOrEqual(t, matches[i-1].DistanceKm, matches[i].DistanceKm)
		}
		previous = current
	}
}

func TestSpatialUseCase_FindVendorsInRadius_AtCenter(t *testing.T) {
	ctx := context.Background()
	repo := &boxVendorRepo{vendors: []*domain.Vendor{
		{ID: 1, IsOpen: true, IsVerified: true, Location: coord(5.36, -4.00)},
	}}
	uc := usecase.NewSpatialUseCase(repo, &MockClientRepository{}, usecase.NewDistanceCalculator(0, 0), zap.NewNop())

	matches, err := uc.FindVendorsInRadius(ctx, domain.Coordinate{Lat: 5.36, Lng: -4.00}, 1, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 0, matches[0].DistanceKm, 1e-9)
}

func TestSpatialUseCase_FindVendorsInRadius_AcrossAntimeridian(t *testing.T) {
	ctx := context.Background()
	repo := &boxVendorRepo{vendors: []*domain.Vendor{
		{ID: 1, IsOpen: true, IsVerified: true, Location: coord(-17, -179.99)},
		{ID: 2, IsOpen: true, IsVerified: true, Location: coord(-17, 179.95)},
		{ID: 3, IsOpen: true, IsVerified: true, Location: coord(-17, 170)},
	}}
	uc := usecase.NewSpatialUseCase(repo, &MockClientRepository{}, usecase.NewDistanceCalculator(0, 0), zap.NewNop())

	matches, err := uc.FindVendorsInRadius(ctx, domain.Coordinate{Lat: -17, Lng: 179.99}, 10, nil)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, int64(1), matches[0].Entity.ID)
	assert.Equal(t, int64(2), matches[1].Entity.ID)
}
