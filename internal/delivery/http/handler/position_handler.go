package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/pkg/utils"
	"github.com/geo-routing-microservice/internal/pkg/validator"
	"github.com/geo-routing-microservice/internal/usecase"
	"github.com/geo-routing-microservice/internal/usecase/dto"
)

// PositionHandler - приём позиций курьеров и клиентов
type PositionHandler struct {
	positionUC *usecase.PositionUseCase
	logger     *zap.Logger
}

func NewPositionHandler(positionUC *usecase.PositionUseCase, logger *zap.Logger) *PositionHandler {
	return &PositionHandler{
		positionUC: positionUC,
		logger:     logger,
	}
}

// Report godoc
// @Summary Обновление позиции
// @Description Ставит позицию в очередь проверки зон. Для курьеров также обновляет каталог доступных.
// @Tags Positions
// @Accept json
// @Produce json
// @Param request body dto.PositionRequest true "Позиция"
// @Success 202 {object} utils.SuccessResponse{data=dto.PositionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/positions [post]
func (h *PositionHandler) Report(c *fiber.Ctx) error {
	var req dto.PositionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	event, err := h.positionUC.ReportPosition(c.Context(), usecase.PositionInput{
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		RecipientID: req.RecipientID,
		Location:    req.Coordinate(),
		Name:        req.Name,
		Phone:       req.Phone,
		Available:   available,
	})
	if err != nil {
		return utils.SendError(c, err)
	}

	c.Status(fiber.StatusAccepted)
	return utils.SendSuccess(c, dto.PositionResponse{EventID: event.EventID, RecordedAt: event.RecordedAt}, nil)
}
