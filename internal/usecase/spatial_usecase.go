package usecase

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/domain/repository"
	"github.com/geo-routing-microservice/internal/pkg/errors"
	"github.com/geo-routing-microservice/internal/pkg/utils"
)

// MaxGridCells - верхняя граница размера сетки для одного запроса
const MaxGridCells = 10000

// VendorOpenAndVerified - фильтр открытых проверенных заведений
func VendorOpenAndVerified(v *domain.Vendor) bool {
	return v.IsOpen && v.IsVerified
}

// ClientActive - фильтр активных клиентов
func ClientActive(c *domain.Client) bool {
	return c.Status == domain.ClientStatusActive
}

type SpatialUseCase struct {
	vendorRepo repository.VendorRepository
	clientRepo repository.ClientRepository
	distance   *DistanceCalculator
	logger     *zap.Logger
}

func NewSpatialUseCase(
	vendorRepo repository.VendorRepository,
	clientRepo repository.ClientRepository,
	distance *DistanceCalculator,
	logger *zap.Logger,
) *SpatialUseCase {
	return &SpatialUseCase{
		vendorRepo: vendorRepo,
		clientRepo: clientRepo,
		distance:   distance,
		logger:     logger,
	}
}

func validateRadiusQuery(center domain.Coordinate, radiusKm float64) error {
	if !center.Valid() {
		return errors.ErrInvalidCoordinates
	}
	if !utils.ValidateRadius(radiusKm) {
		return errors.ErrInvalidRadius.WithMessage("radius must be greater than 0 and at most %.0f km", utils.MaxRadiusKm)
	}
	return nil
}

func validateBox(box domain.BoundingBox) error {
	if !utils.ValidateCoordinates(box.MinLat, box.MinLng) || !utils.ValidateCoordinates(box.MaxLat, box.MaxLng) {
		return errors.ErrInvalidCoordinates
	}
	if !utils.ValidateBoundingBox(box) {
		return errors.ErrInvalidBoundingBox
	}
	return nil
}

// matchInRadius оставляет сущности с координатами внутри радиуса, прошедшие фильтр,
// и сортирует их по расстоянию, при равенстве - по ID
func matchInRadius[T domain.Located](
	items []T,
	center domain.Coordinate,
	radiusKm float64,
	pred func(T) bool,
	distance *DistanceCalculator,
) []domain.EntityMatch[T] {
	matches := make([]domain.EntityMatch[T], 0, len(items))
	for _, item := range items {
		point := item.Coordinates()
		if point == nil {
			continue
		}
		if pred != nil && !pred(item) {
			continue
		}
		km := distance.DistanceKm(center, *point)
		if km > radiusKm {
			continue
		}
		matches = append(matches, domain.EntityMatch[T]{Entity: item, DistanceKm: km})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].DistanceKm != matches[j].DistanceKm {
			return matches[i].DistanceKm < matches[j].DistanceKm
		}
		return matches[i].Entity.EntityID() < matches[j].Entity.EntityID()
	})
	return matches
}

func filterInBox[T domain.Located](items []T, box domain.BoundingBox, pred func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		point := item.Coordinates()
		if point == nil || !box.Contains(*point) {
			continue
		}
		if pred != nil && !pred(item) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// FindVendorsInRadius ищет заведения в радиусе от центра, ближайшие первыми
func (uc *SpatialUseCase) FindVendorsInRadius(
	ctx context.Context,
	center domain.Coordinate,
	radiusKm float64,
	pred func(*domain.Vendor) bool,
) ([]domain.EntityMatch[*domain.Vendor], error) {
	if err := validateRadiusQuery(center, radiusKm); err != nil {
		return nil, err
	}

	candidates, err := uc.vendorRepo.ListInBox(ctx, utils.BoundingBoxAround(center, radiusKm))
	if err != nil {
		uc.logger.Error("Failed to load vendor candidates",
			zap.String("center", center.String()),
			zap.Float64("radius_km", radiusKm),
			zap.Error(err))
		return nil, err
	}

	matches := matchInRadius(candidates, center, radiusKm, pred, uc.distance)

	uc.logger.Debug("Vendors in radius",
		zap.String("center", center.String()),
		zap.Float64("radius_km", radiusKm),
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(matches)))

	return matches, nil
}

// FindClientsInRadius ищет клиентов в радиусе от центра, ближайшие первыми
func (uc *SpatialUseCase) FindClientsInRadius(
	ctx context.Context,
	center domain.Coordinate,
	radiusKm float64,
	pred func(*domain.Client) bool,
) ([]domain.EntityMatch[*domain.Client], error) {
	if err := validateRadiusQuery(center, radiusKm); err != nil {
		return nil, err
	}

	candidates, err := uc.clientRepo.ListInBox(ctx, utils.BoundingBoxAround(center, radiusKm))
	if err != nil {
		uc.logger.Error("Failed to load client candidates",
			zap.String("center", center.String()),
			zap.Float64("radius_km", radiusKm),
			zap.Error(err))
		return nil, err
	}

	return matchInRadius(candidates, center, radiusKm, pred, uc.distance), nil
}

// FindVendorsInBox возвращает заведения внутри области без расчёта расстояний
func (uc *SpatialUseCase) FindVendorsInBox(
	ctx context.Context,
	box domain.BoundingBox,
	pred func(*domain.Vendor) bool,
) ([]*domain.Vendor, error) {
	if err := validateBox(box); err != nil {
		return nil, err
	}

	vendors, err := uc.vendorRepo.ListInBox(ctx, box)
	if err != nil {
		uc.logger.Error("Failed to load vendors in box", zap.Error(err))
		return nil, err
	}
	return filterInBox(vendors, box, pred), nil
}

// FindClientsInBox возвращает клиентов внутри области без расчёта расстояний
func (uc *SpatialUseCase) FindClientsInBox(
	ctx context.Context,
	box domain.BoundingBox,
	pred func(*domain.Client) bool,
) ([]*domain.Client, error) {
	if err := validateBox(box); err != nil {
		return nil, err
	}

	clients, err := uc.clientRepo.ListInBox(ctx, box)
	if err != nil {
		uc.logger.Error("Failed to load clients in box", zap.Error(err))
		return nil, err
	}
	return filterInBox(clients, box, pred), nil
}

// GenerateGrid строит центры ячеек, покрывающих описанный вокруг радиуса квадрат
func (uc *SpatialUseCase) GenerateGrid(
	center domain.Coordinate,
	radiusKm float64,
	cellSizeDeg float64,
) ([]domain.GridCell, error) {
	if err := validateRadiusQuery(center, radiusKm); err != nil {
		return nil, err
	}
	if cellSizeDeg <= 0 || math.IsNaN(cellSizeDeg) || math.IsInf(cellSizeDeg, 0) {
		return nil, errors.ErrInvalidCellSize
	}

	dLat := radiusKm / utils.KmPerDegreeLat
	dLng := utils.LngDegreesForKm(radiusKm, center.Lat)

	minLat := math.Max(center.Lat-dLat, -90)
	maxLat := math.Min(center.Lat+dLat, 90)
	minLng := math.Max(center.Lng-dLng, -180)
	maxLng := math.Min(center.Lng+dLng, 180)

	rows := int(math.Floor((maxLat-minLat)/cellSizeDeg)) + 1
	cols := int(math.Floor((maxLng-minLng)/cellSizeDeg)) + 1
	if rows <= 0 || cols <= 0 || rows > MaxGridCells || cols > MaxGridCells || rows*cols > MaxGridCells {
		return nil, errors.ErrInvalidCellSize.WithMessage("grid would exceed %d cells", MaxGridCells)
	}

	cells := make([]domain.GridCell, 0, rows*cols)
	for i := 0; i < rows; i++ {
		lat := minLat + float64(i)*cellSizeDeg
		for j := 0; j < cols; j++ {
			lng := minLng + float64(j)*cellSizeDeg
			cells = append(cells, domain.GridCell{
				Lat:                  lat,
				Lng:                  lng,
				DistanceFromCenterKm: utils.HaversineDistance(center.Lat, center.Lng, lat, lng),
			})
		}
	}

	return cells, nil
}
