package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/pkg/errors"
	"github.com/geo-routing-microservice/internal/pkg/utils"
	"github.com/geo-routing-microservice/internal/pkg/validator"
	"github.com/geo-routing-microservice/internal/usecase"
	"github.com/geo-routing-microservice/internal/usecase/dto"
)

// GeocodingHandler - геокодирование и поиск мест
type GeocodingHandler struct {
	geocodingUC *usecase.GeocodingUseCase
	logger      *zap.Logger
}

func NewGeocodingHandler(geocodingUC *usecase.GeocodingUseCase, logger *zap.Logger) *GeocodingHandler {
	return &GeocodingHandler{
		geocodingUC: geocodingUC,
		logger:      logger,
	}
}

// Geocode godoc
// @Summary Геокодирование адреса
// @Tags Geocoding
// @Accept json
// @Produce json
// @Param request body dto.GeocodeRequest true "Адрес"
// @Success 200 {object} utils.SuccessResponse{data=domain.GeocodeResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/geocode [post]
func (h *GeocodingHandler) Geocode(c *fiber.Ctx) error {
	var req dto.GeocodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result := h.geocodingUC.Geocode(c.Context(), req.Address)
	if result == nil {
		return utils.SendError(c, errors.ErrLocationNotFound)
	}

	return utils.SendSuccess(c, result, nil)
}

// ReverseGeocode godoc
// @Summary Обратное геокодирование
// @Description Возвращает адрес для координат
// @Tags Geocoding
// @Accept json
// @Produce json
// @Param request body dto.ReverseGeocodeRequest true "Координаты точки"
// @Success 200 {object} utils.SuccessResponse{data=domain.AddressComponents}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/reverse-geocode [post]
func (h *GeocodingHandler) ReverseGeocode(c *fiber.Ctx) error {
	var req dto.ReverseGeocodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	result := h.geocodingUC.ReverseGeocode(c.Context(), req.Coordinate())
	if result == nil {
		return utils.SendError(c, errors.ErrLocationNotFound)
	}

	return utils.SendSuccess(c, result, nil)
}

// SearchPlaces godoc
// @Summary Поиск мест рядом с точкой
// @Tags Geocoding
// @Accept json
// @Produce json
// @Param request body dto.PlacesSearchRequest true "Запрос, центр и радиус в метрах"
// @Success 200 {object} utils.SuccessResponse{data=dto.PlacesResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/places/search [post]
func (h *GeocodingHandler) SearchPlaces(c *fiber.Ctx) error {
	var req dto.PlacesSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendBadRequest(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	places := h.geocodingUC.SearchPlaces(c.Context(), req.Query, req.Coordinate(), req.RadiusMeters)
	return utils.SendSuccess(c, dto.PlacesResponse{Places: places, Total: len(places)}, &utils.Meta{Total: len(places)})
}
