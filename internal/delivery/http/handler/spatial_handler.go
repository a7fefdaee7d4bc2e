package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/pkg/utils"
	"github.com/geo-routing-microservice/internal/pkg/validator"
	"github.com/geo-routing-microservice/internal/usecase"
	"github.com/geo-routing-microservice/internal/usecase/dto"
)

// SpatialHandler - поиск заведений и клиентов по геометрии
type SpatialHandler struct {
	spatialUC *usecase.SpatialUseCase
	logger    *zap.Logger
}

func NewSpatialHandler(spatialUC *usecase.SpatialUseCase, logger *zap.Logger) *SpatialHandler {
	return &SpatialHandler{
		spatialUC: spatialUC,
		logger:    logger,
	}
}

func vendorFilter(includeAll bool) func(*domain.Vendor) bool {
	if includeAll {
		return nil
	}
	return usecase.VendorOpenAndVerified
}

func clientFilter(includeAll bool) func(*domain.Client) bool {
	if includeAll {
		return nil
	}
	return usecase.ClientActive
}

// VendorsNearby godoc
// @Summary Заведения в радиусе
// @Description Возвращает заведения в радиусе от точки, ближайшие первыми. По умолчанию только открытые и проверенные.
// @Tags Spatial
// @Accept json
// @Produce json
// @Param request body dto.NearbyRequest true "Центр и радиус"
// @Success 200 {object} utils.SuccessResponse{data=dto.NearbyVendorsResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/vendors/nearby [post]
func (h *SpatialHandler) VendorsNearby(c *fiber.Ctx) error {
	var req dto.NearbyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	matches, err := h.spatialUC.FindVendorsInRadius(c.Context(), req.Coordinate(), req.RadiusKm, vendorFilter(req.IncludeAll))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.NearbyVendorsResponse{
		Vendors: dto.ToVendorMatches(matches),
		Total:   len(matches),
	}, nil)
}

// VendorsInBox godoc
// @Summary Заведения в области
// @Tags Spatial
// @Accept json
// @Produce json
// @Param request body dto.BoxRequest true "Границы области"
// @Success 200 {object} utils.SuccessResponse{data=dto.BoxVendorsResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/vendors/box [post]
func (h *SpatialHandler) VendorsInBox(c *fiber.Ctx) error {
	var req dto.BoxRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	vendors, err := h.spatialUC.FindVendorsInBox(c.Context(), req.BoundingBox(), vendorFilter(req.IncludeAll))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.BoxVendorsResponse{Vendors: vendors, Total: len(vendors)}, nil)
}

// ClientsNearby godoc
// @Summary Клиенты в радиусе
// @Description Возвращает клиентов в радиусе от точки. По умолчанию только активные.
// @Tags Spatial
// @Accept json
// @Produce json
// @Param request body dto.NearbyRequest true "Центр и радиус"
// @Success 200 {object} utils.SuccessResponse{data=dto.NearbyClientsResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/clients/nearby [post]
func (h *SpatialHandler) ClientsNearby(c *fiber.Ctx) error {
	var req dto.NearbyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	matches, err := h.spatialUC.FindClientsInRadius(c.Context(), req.Coordinate(), req.RadiusKm, clientFilter(req.IncludeAll))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.NearbyClientsResponse{
		Clients: dto.ToClientMatches(matches),
		Total:   len(matches),
	}, nil)
}

// ClientsInBox godoc
// @Summary Клиенты в области
// @Tags Spatial
// @Accept json
// @Produce json
// @Param request body dto.BoxRequest true "Границы области"
// @Success 200 {object} utils.SuccessResponse{data=dto.BoxClientsResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/clients/box [post]
func (h *SpatialHandler) ClientsInBox(c *fiber.Ctx) error {
	var req dto.BoxRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	clients, err := h.spatialUC.FindClientsInBox(c.Context(), req.BoundingBox(), clientFilter(req.IncludeAll))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.BoxClientsResponse{Clients: clients, Total: len(clients)}, nil)
}

// Grid godoc
// @Summary Сетка точек вокруг центра
// @Description Строит регулярную сетку с шагом cell_size_deg, покрывающую квадрат вокруг круга радиуса radius_km
// @Tags Spatial
// @Accept json
// @Produce json
// @Param request body dto.GridRequest true "Центр, радиус и шаг"
// @Success 200 {object} utils.SuccessResponse{data=dto.GridResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/grid [post]
func (h *SpatialHandler) Grid(c *fiber.Ctx) error {
	var req dto.GridRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	cells, err := h.spatialUC.GenerateGrid(req.Coordinate(), req.RadiusKm, req.CellSizeDeg)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.GridResponse{Cells: cells, Total: len(cells)}, &utils.Meta{Total: len(cells)})
}
