package usecase

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/domain/repository"
)

// zoneDecimals - округление координаты клиента для ключа зоны (~1.1 км)
const zoneDecimals = 2

// Skip reasons
const (
	skipMissingVendorLocation = "vendor has no coordinates"
	skipMissingClientLocation = "client has no coordinates"
)

// ZoneUseCase агрегирует маршруты заказов в работе по зонам доставки
type ZoneUseCase struct {
	spatial   *SpatialUseCase
	routes    *RouteUseCase
	orderRepo repository.OrderRepository
	logger    *zap.Logger
}

func NewZoneUseCase(
	spatial *SpatialUseCase,
	routes *RouteUseCase,
	orderRepo repository.OrderRepository,
	logger *zap.Logger,
) *ZoneUseCase {
	return &ZoneUseCase{
		spatial:   spatial,
		routes:    routes,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// ZoneKey - ключ зоны для точки доставки
func ZoneKey(p domain.Coordinate) string {
	r := p.Rounded(zoneDecimals)
	return fmt.Sprintf("%.2f,%.2f", r.Lat, r.Lng)
}

// ZoneOptimization строит отчёт по зонам для открытых проверенных заведений в радиусе
func (uc *ZoneUseCase) ZoneOptimization(
	ctx context.Context,
	center domain.Coordinate,
	radiusKm float64,
) (*domain.ZoneReport, error) {
	vendors, err := uc.spatial.FindVendorsInRadius(ctx, center, radiusKm, VendorOpenAndVerified)
	if err != nil {
		return nil, err
	}

	report := &domain.ZoneReport{
		Center:   center,
		RadiusKm: radiusKm,
		Zones:    []domain.ZoneSummary{},
	}
	if len(vendors) == 0 {
		return report, nil
	}

	vendorIDs := make([]int64, len(vendors))
	for i, v := range vendors {
		vendorIDs[i] = v.Entity.ID
	}

	orders, err := uc.orderRepo.ListActiveByVendorIDs(ctx, vendorIDs)
	if err != nil {
		uc.logger.Error("Failed to load in-flight orders", zap.Int("vendors", len(vendorIDs)), zap.Error(err))
		return nil, err
	}
	report.TotalOrders = len(orders)

	zones := make(map[string]*domain.ZoneSummary)
	for _, order := range orders {
		reason := ""
		switch {
		case order.VendorLocation == nil:
			reason = skipMissingVendorLocation
		case order.ClientLocation == nil:
			reason = skipMissingClientLocation
		}
		if reason != "" {
			uc.logger.Warn("Skipping order in zone report",
				zap.Int64("order_id", order.ID),
				zap.String("reason", reason))
			report.Skipped = append(report.Skipped, domain.SkippedOrder{OrderID: order.ID, Reason: reason})
			continue
		}

		route, err := uc.routes.SingleRoute(ctx, *order.VendorLocation, *order.ClientLocation, domain.TravelModeDriving)
		if err != nil {
			uc.logger.Warn("Skipping order in zone report",
				zap.Int64("order_id", order.ID),
				zap.Error(err))
			report.Skipped = append(report.Skipped, domain.SkippedOrder{OrderID: order.ID, Reason: err.Error()})
			continue
		}

		key := ZoneKey(*order.ClientLocation)
		zone, ok := zones[key]
		if !ok {
			zone = &domain.ZoneSummary{Key: key}
			zones[key] = zone
		}
		zone.OrderCount++
		zone.OrderIDs = append(zone.OrderIDs, order.ID)
		zone.TotalDistanceKm += route.DistanceKm
		zone.TotalDurationMinutes += route.DurationMinutes

		report.RoutedOrders++
		report.TotalDistanceKm += route.DistanceKm
		report.TotalDurationMinutes += route.DurationMinutes
	}

	for _, zone := range zones {
		zone.AverageDistanceKm = zone.TotalDistanceKm / float64(zone.OrderCount)
		report.Zones = append(report.Zones, *zone)
	}
	sort.Slice(report.Zones, func(i, j int) bool { return report.Zones[i].Key < report.Zones[j].Key })

	if report.RoutedOrders > 0 {
		report.AverageDistanceKm = report.TotalDistanceKm / float64(report.RoutedOrders)
	}

	uc.logger.Info("Zone report built",
		zap.String("center", center.String()),
		zap.Int("vendors", len(vendors)),
		zap.Int("orders", report.TotalOrders),
		zap.Int("zones", len(report.Zones)),
		zap.Int("skipped", len(report.Skipped)))

	return report, nil
}
