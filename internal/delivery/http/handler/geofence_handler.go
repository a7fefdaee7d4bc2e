package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/pkg/utils"
	"github.com/geo-routing-microservice/internal/pkg/validator"
	"github.com/geo-routing-microservice/internal/usecase"
	"github.com/geo-routing-microservice/internal/usecase/dto"
)

// GeofenceHandler - управление зонами уведомлений
type GeofenceHandler struct {
	geofenceUC *usecase.GeofenceUseCase
	logger     *zap.Logger
}

func NewGeofenceHandler(geofenceUC *usecase.GeofenceUseCase, logger *zap.Logger) *GeofenceHandler {
	return &GeofenceHandler{
		geofenceUC: geofenceUC,
		logger:     logger,
	}
}

// Register godoc
// @Summary Регистрация зоны
// @Description Создаёт круговую зону. Зона с тем же ключом заменяется. Без key генерируется UUID.
// @Tags Geofences
// @Accept json
// @Produce json
// @Param request body dto.GeofenceRequest true "Параметры зоны"
// @Success 201 {object} utils.SuccessResponse{data=dto.GeofenceResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/geofences [post]
func (h *GeofenceHandler) Register(c *fiber.Ctx) error {
	var req dto.GeofenceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	fence, err := h.geofenceUC.Register(c.Context(), usecase.GeofenceInput{
		Key:       req.Key,
		Center:    req.Coordinate(),
		RadiusKm:  req.RadiusKm,
		EventType: req.EventType,
		Payload:   req.Payload,
	})
	if err != nil {
		return utils.SendError(c, err)
	}

	c.Status(fiber.StatusCreated)
	return utils.SendSuccess(c, dto.GeofenceResponse{Geofence: fence, Status: h.geofenceUC.Status(fence)}, nil)
}

// Check godoc
// @Summary Зоны, содержащие точку
// @Tags Geofences
// @Accept json
// @Produce json
// @Param request body dto.GeofenceCheckRequest true "Точка"
// @Success 200 {object} utils.SuccessResponse{data=dto.GeofenceCheckResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/geofences/check [post]
func (h *GeofenceHandler) Check(c *fiber.Ctx) error {
	var req dto.GeofenceCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	matches, err := h.geofenceUC.CheckMembership(c.Context(), req.Coordinate())
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.GeofenceCheckResponse{Matches: matches, Total: len(matches)}, nil)
}

// Get godoc
// @Summary Зона по ключу
// @Tags Geofences
// @Produce json
// @Param key path string true "Ключ зоны"
// @Success 200 {object} utils.SuccessResponse{data=dto.GeofenceResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/geofences/{key} [get]
func (h *GeofenceHandler) Get(c *fiber.Ctx) error {
	fence, err := h.geofenceUC.Get(c.Context(), c.Params("key"))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.GeofenceResponse{Geofence: fence, Status: h.geofenceUC.Status(fence)}, nil)
}

// Deactivate godoc
// @Summary Деактивация зоны
// @Description Деактивация окончательна, повторный вызов ничего не меняет
// @Tags Geofences
// @Produce json
// @Param key path string true "Ключ зоны"
// @Success 200 {object} utils.SuccessResponse{data=dto.GeofenceResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/geofences/{key} [delete]
func (h *GeofenceHandler) Deactivate(c *fiber.Ctx) error {
	fence, err := h.geofenceUC.Deactivate(c.Context(), c.Params("key"))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.GeofenceResponse{Geofence: fence, Status: h.geofenceUC.Status(fence)}, nil)
}
