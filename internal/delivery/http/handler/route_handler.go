package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/pkg/utils"
	"github.com/geo-routing-microservice/internal/pkg/validator"
	"github.com/geo-routing-microservice/internal/usecase"
	"github.com/geo-routing-microservice/internal/usecase/dto"
)

// RouteHandler - маршруты, ETA, туры и зоны доставки
type RouteHandler struct {
	routeUC     *usecase.RouteUseCase
	geocodingUC *usecase.GeocodingUseCase
	zoneUC      *usecase.ZoneUseCase
	logger      *zap.Logger
}

func NewRouteHandler(
	routeUC *usecase.RouteUseCase,
	geocodingUC *usecase.GeocodingUseCase,
	zoneUC *usecase.ZoneUseCase,
	logger *zap.Logger,
) *RouteHandler {
	return &RouteHandler{
		routeUC:     routeUC,
		geocodingUC: geocodingUC,
		zoneUC:      zoneUC,
		logger:      logger,
	}
}

// buildRoute разрешает адреса в координаты и строит маршрут
func (h *RouteHandler) buildRoute(ctx context.Context, req dto.RouteRequest) (*domain.Route, error) {
	origin, err := h.geocodingUC.ResolveLocation(ctx, dto.PointPtr(req.Origin), req.OriginAddress)
	if err != nil {
		return nil, err
	}
	destination, err := h.geocodingUC.ResolveLocation(ctx, dto.PointPtr(req.Destination), req.DestinationAddress)
	if err != nil {
		return nil, err
	}
	return h.routeUC.SingleRoute(ctx, origin, destination, req.Mode())
}

// Route godoc
// @Summary Маршрут между двумя точками
// @Description Точки задаются координатами или адресами. Без маршрута от провайдера возвращается оценка по прямой (estimated=true).
// @Tags Routing
// @Accept json
// @Produce json
// @Param request body dto.RouteRequest true "Начало, конец и способ передвижения"
// @Success 200 {object} utils.SuccessResponse{data=domain.Route}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/routes [post]
func (h *RouteHandler) Route(c *fiber.Ctx) error {
	var req dto.RouteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	route, err := h.buildRoute(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, route, nil)
}

// Eta godoc
// @Summary Оценка времени доставки
// @Description Время в пути плюс приготовление и запас. Без preparation_minutes/buffer_minutes используются значения из конфигурации.
// @Tags Routing
// @Accept json
// @Produce json
// @Param request body dto.EtaRequest true "Маршрут и параметры оценки"
// @Success 200 {object} utils.SuccessResponse{data=dto.EtaResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/routes/eta [post]
func (h *RouteHandler) Eta(c *fiber.Ctx) error {
	var req dto.EtaRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	route, err := h.buildRoute(c.Context(), req.RouteRequest)
	if err != nil {
		return utils.SendError(c, err)
	}

	estimate := h.routeUC.EstimateDeliveryTimeDefault(route)
	if req.PreparationMinutes != nil || req.BufferMinutes != nil {
		prep, buffer := estimate.PreparationMinutes, estimate.BufferMinutes
		if req.PreparationMinutes != nil {
			prep = *req.PreparationMinutes
		}
		if req.BufferMinutes != nil {
			buffer = *req.BufferMinutes
		}
		estimate = h.routeUC.EstimateDeliveryTime(route, prep, buffer)
	}

	return utils.SendSuccess(c, dto.EtaResponse{Route: route, Estimate: estimate}, nil)
}

// Tour godoc
// @Summary Тур курьера по нескольким заказам
// @Description Порядок посещения заведений и клиентов: ближайший сосед, затем 2-opt. respect_pickup_order запрещает доставку раньше забора.
// @Tags Routing
// @Accept json
// @Produce json
// @Param request body dto.TourRequest true "Старт и заказы (до 50)"
// @Success 200 {object} utils.SuccessResponse{data=domain.Tour}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/routes/tour [post]
func (h *RouteHandler) Tour(c *fiber.Ctx) error {
	var req dto.TourRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	tour, err := h.routeUC.MultiStopTour(c.Context(), req.Start.Coordinate(), req.OrderStops(), usecase.TourOptions{
		RespectPickupOrder: req.RespectPickupOrder,
	})
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, tour, nil)
}

// Zones godoc
// @Summary Отчёт по зонам доставки
// @Description Маршруты заказов в работе у открытых проверенных заведений в радиусе, сгруппированные по зоне клиента
// @Tags Routing
// @Accept json
// @Produce json
// @Param request body dto.ZoneRequest true "Центр и радиус"
// @Success 200 {object} utils.SuccessResponse{data=domain.ZoneReport}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/zones/optimize [post]
func (h *RouteHandler) Zones(c *fiber.Ctx) error {
	var req dto.ZoneRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	report, err := h.zoneUC.ZoneOptimization(c.Context(), req.Coordinate(), req.RadiusKm)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, report, nil)
}
