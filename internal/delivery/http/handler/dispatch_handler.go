package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/pkg/utils"
	"github.com/geo-routing-microservice/internal/pkg/validator"
	"github.com/geo-routing-microservice/internal/usecase"
	"github.com/geo-routing-microservice/internal/usecase/dto"
)

// DispatchHandler - подбор курьера
type DispatchHandler struct {
	matcherUC   *usecase.MatcherUseCase
	geocodingUC *usecase.GeocodingUseCase
	logger      *zap.Logger
}

func NewDispatchHandler(matcherUC *usecase.MatcherUseCase, geocodingUC *usecase.GeocodingUseCase, logger *zap.Logger) *DispatchHandler {
	return &DispatchHandler{
		matcherUC:   matcherUC,
		geocodingUC: geocodingUC,
		logger:      logger,
	}
}

// OptimalAgent godoc
// @Summary Ближайший свободный курьер
// @Description Точка задаётся координатами или адресом. found=false, если свободных курьеров нет.
// @Tags Dispatch
// @Accept json
// @Produce json
// @Param request body dto.DispatchRequest true "Точка забора"
// @Success 200 {object} utils.SuccessResponse{data=dto.DispatchResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/dispatch/agent [post]
func (h *DispatchHandler) OptimalAgent(c *fiber.Ctx) error {
	var req dto.DispatchRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	location, err := h.geocodingUC.ResolveLocation(c.Context(), dto.PointPtr(req.Location), req.Address)
	if err != nil {
		return utils.SendError(c, err)
	}

	match, err := h.matcherUC.OptimalDeliveryPerson(c.Context(), location)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.DispatchResponse{Found: match != nil, Match: match}, nil)
}
