package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/config"
	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/pkg/errors"
	"github.com/geo-routing-microservice/internal/pkg/metrics"
)

const (
	// improvementEpsilon - минимальное сокращение тура (км), при котором разворот принимается
	improvementEpsilon = 1e-9

	originLabel      = "origin"
	destinationLabel = "destination"
)

// TourOptions - параметры построения тура
type TourOptions struct {
	// RespectPickupOrder запрещает посещать клиента раньше заведения того же заказа
	RespectPickupOrder bool
}

type RouteUseCase struct {
	geocoding *GeocodingUseCase
	distance  *DistanceCalculator
	cfg       config.RoutingConfig
	logger    *zap.Logger
	now       func() time.Time
}

func NewRouteUseCase(
	geocoding *GeocodingUseCase,
	distance *DistanceCalculator,
	cfg config.RoutingConfig,
	logger *zap.Logger,
) *RouteUseCase {
	return &RouteUseCase{
		geocoding: geocoding,
		distance:  distance,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock подменяет источник времени для расчёта ETA
func (uc *RouteUseCase) WithClock(now func() time.Time) *RouteUseCase {
	uc.now = now
	return uc
}

func (uc *RouteUseCase) minutesFor(km float64) int {
	return int(math.Round(km * uc.cfg.MinutesPerKm))
}

// SingleRoute строит маршрут между двумя точками. Если провайдер маршрута не дал,
// возвращается оценка по прямой (Estimated=true). Ошибка - только при неверных входных данных.
func (uc *RouteUseCase) SingleRoute(
	ctx context.Context,
	origin, destination domain.Coordinate,
	mode domain.TravelMode,
) (*domain.Route, error) {
	if !origin.Valid() || !destination.Valid() {
		return nil, errors.ErrInvalidCoordinates
	}
	if !mode.Valid() {
		return nil, errors.ErrInvalidTravelMode.WithMessage("unsupported travel mode %q", mode)
	}

	if pr := uc.geocoding.Route(ctx, origin, destination, mode); pr != nil {
		km := pr.DistanceMeters / 1000
		minutes := int(math.Round(pr.DurationSeconds / 60))

		leg := domain.RouteLeg{
			OriginLabel:      originLabel,
			DestinationLabel: destinationLabel,
			DistanceKm:       km,
			DurationMinutes:  minutes,
		}
		if len(pr.Steps) > 0 {
			leg.Instruction = pr.Steps[0].Instruction
		}
		steps := pr.Steps
		if steps == nil {
			steps = []domain.RouteStep{}
		}

		return &domain.Route{
			Origin:          origin,
			Destination:     destination,
			Mode:            mode,
			DistanceKm:      km,
			DurationMinutes: minutes,
			Legs:            []domain.RouteLeg{leg},
			Steps:           steps,
			Polyline:        pr.OverviewPolyline,
		}, nil
	}

	metrics.RouteFallbacks.Inc()
	return uc.estimatedRoute(origin, destination, mode), nil
}

func (uc *RouteUseCase) estimatedRoute(origin, destination domain.Coordinate, mode domain.TravelMode) *domain.Route {
	km := uc.distance.DistanceKm(origin, destination)
	minutes := uc.minutesFor(km)
	depart := fmt.Sprintf("Depart from %s", origin)

	uc.logger.Debug("Using straight-line route estimate",
		zap.String("origin", origin.String()),
		zap.String("destination", destination.String()),
		zap.Float64("distance_km", km))

	return &domain.Route{
		Origin:          origin,
		Destination:     destination,
		Mode:            mode,
		DistanceKm:      km,
		DurationMinutes: minutes,
		Legs: []domain.RouteLeg{{
			OriginLabel:      originLabel,
			DestinationLabel: destinationLabel,
			DistanceKm:       km,
			DurationMinutes:  minutes,
			Instruction:      depart,
		}},
		Steps: []domain.RouteStep{
			{Instruction: depart},
			{Instruction: fmt.Sprintf("Arrive at %s", destination)},
		},
		Estimated: true,
	}
}

// EstimateDeliveryTime складывает время в пути, приготовления и запас
func (uc *RouteUseCase) EstimateDeliveryTime(route *domain.Route, preparationMinutes, bufferMinutes int) domain.DeliveryEstimate {
	travel := 0
	if route != nil {
		travel = route.DurationMinutes
	}
	eta := travel + preparationMinutes + bufferMinutes

	return domain.DeliveryEstimate{
		TravelMinutes:      travel,
		PreparationMinutes: preparationMinutes,
		BufferMinutes:      bufferMinutes,
		EtaMinutes:         eta,
		EtaClockTime:       uc.now().Add(time.Duration(eta) * time.Minute),
	}
}

// EstimateDeliveryTimeDefault - EstimateDeliveryTime со значениями из конфигурации
func (uc *RouteUseCase) EstimateDeliveryTimeDefault(route *domain.Route) domain.DeliveryEstimate {
	return uc.EstimateDeliveryTime(route, uc.cfg.PreparationMinutes, uc.cfg.BufferMinutes)
}

// MultiStopTour упорядочивает точки забора и доставки: ближайший сосед, затем 2-opt.
// Улучшение ограничено числом проходов и временем; возвращается лучший найденный тур.
func (uc *RouteUseCase) MultiStopTour(
	ctx context.Context,
	start domain.Coordinate,
	orders []domain.OrderStops,
	opts TourOptions,
) (*domain.Tour, error) {
	if len(orders) == 0 {
		return nil, errors.ErrInvalidRequest.WithMessage("at least one order is required")
	}
	if !start.Valid() {
		return nil, errors.ErrInvalidCoordinates
	}

	stops := make([]domain.StopRef, 0, 1+2*len(orders))
	stops = append(stops, domain.StopRef{Kind: domain.StopKindStart, Location: start})
	for _, o := range orders {
		if !o.Vendor.Valid() || !o.Client.Valid() {
			return nil, errors.ErrInvalidCoordinates.WithMessage("order %d has invalid coordinates", o.OrderID)
		}
		stops = append(stops,
			domain.StopRef{Kind: domain.StopKindVendor, OrderID: o.OrderID, Location: o.Vendor},
			domain.StopRef{Kind: domain.StopKindClient, OrderID: o.OrderID, Location: o.Client},
		)
	}

	t := newTourSolver(stops, uc.distance, opts.RespectPickupOrder)
	t.nearestNeighbor()
	initial := t.length()

	var deadline time.Time
	if uc.cfg.TwoOptTimeout > 0 {
		deadline = time.Now().Add(uc.cfg.TwoOptTimeout)
	}
	passes := t.twoOpt(ctx, uc.cfg.MaxTwoOptPasses, deadline)
	metrics.TourImprovementPasses.Observe(float64(passes))

	tour := &domain.Tour{
		OrderedStops:      make([]domain.StopRef, len(t.path)),
		Legs:              make([]domain.RouteLeg, 0, len(t.path)-1),
		InitialDistanceKm: initial,
		ImprovementPasses: passes,
	}
	for i, node := range t.path {
		tour.OrderedStops[i] = stops[node]
	}
	for i := 1; i < len(t.path); i++ {
		from, to := stops[t.path[i-1]], stops[t.path[i]]
		km := t.d[t.path[i-1]][t.path[i]]
		tour.TotalDistanceKm += km
		tour.Legs = append(tour.Legs, domain.RouteLeg{
			OriginLabel:      from.Label(),
			DestinationLabel: to.Label(),
			DistanceKm:       km,
			DurationMinutes:  uc.minutesFor(km),
		})
	}
	tour.TotalDurationMinutes = uc.minutesFor(tour.TotalDistanceKm)

	uc.logger.Debug("Tour built",
		zap.Int("orders", len(orders)),
		zap.Float64("initial_km", initial),
		zap.Float64("total_km", tour.TotalDistanceKm),
		zap.Int("passes", passes))

	return tour, nil
}

// tourSolver - открытый путь по узлам; узел 0 - старт, 2k+1 - заведение заказа k, 2k+2 - его клиент
type tourSolver struct {
	d            [][]float64
	path         []int
	respectOrder bool
}

func newTourSolver(stops []domain.StopRef, distance *DistanceCalculator, respectOrder bool) *tourSolver {
	n := len(stops)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			km := distance.DistanceKm(stops[i].Location, stops[j].Location)
			d[i][j] = km
			d[j][i] = km
		}
	}
	return &tourSolver{d: d, respectOrder: respectOrder}
}

func isClientNode(node int) bool {
	return node > 0 && node%2 == 0
}

func (t *tourSolver) nearestNeighbor() {
	n := len(t.d)
	visited := make([]bool, n)
	visited[0] = true
	t.path = append(t.path[:0], 0)

	current := 0
	for len(t.path) < n {
		best := -1
		for j := 1; j < n; j++ {
			if visited[j] {
				continue
			}
			// клиент становится доступен только после своего заведения
			if t.respectOrder && isClientNode(j) && !visited[j-1] {
				continue
			}
			if best == -1 || t.d[current][j] < t.d[current][best] {
				best = j
			}
		}
		visited[best] = true
		t.path = append(t.path, best)
		current = best
	}
}

func (t *tourSolver) length() float64 {
	total := 0.0
	for i := 1; i < len(t.path); i++ {
		total += t.d[t.path[i-1]][t.path[i]]
	}
	return total
}

// precedenceHolds проверяет, что в пути каждое заведение стоит раньше своего клиента
func (t *tourSolver) precedenceHolds(path []int) bool {
	pos := make([]int, len(path))
	for i, node := range path {
		pos[node] = i
	}
	for node := 2; node < len(path); node += 2 {
		if pos[node-1] > pos[node] {
			return false
		}
	}
	return true
}

func reverse(path []int, i, k int) {
	for i < k {
		path[i], path[k] = path[k], path[i]
		i++
		k--
	}
}

// twoOpt разворачивает отрезки path[i..k], пока это сокращает путь. Возвращает число проходов
// с улучшением, включая прерванный по дедлайну.
func (t *tourSolver) twoOpt(ctx context.Context, maxPasses int, deadline time.Time) int {
	n := len(t.path)
	passes := 0
	if n < 3 {
		return passes
	}

	for maxPasses <= 0 || passes < maxPasses {
		improved := false
		for i := 1; i < n-1; i++ {
			if expired(ctx, deadline) {
				// прерванный проход тоже считается, если успел улучшить путь
				if improved {
					passes++
				}
				return passes
			}
			for k := i + 1; k < n; k++ {
				a, b, c := t.path[i-1], t.path[i], t.path[k]
				before := t.d[a][b]
				after := t.d[a][c]
				if k+1 < n {
					next := t.path[k+1]
					before += t.d[c][next]
					after += t.d[b][next]
				}
				if after >= before-improvementEpsilon {
					continue
				}

				reverse(t.path, i, k)
				if t.respectOrder && !t.precedenceHolds(t.path) {
					reverse(t.path, i, k)
					continue
				}
				improved = true
			}
		}
		if !improved {
			break
		}
		passes++
	}
	return passes
}

func expired(ctx context.Context, deadline time.Time) bool {
	if ctx.Err() != nil {
		return true
	}
	return !deadline.IsZero() && time.Now().After(deadline)
}
