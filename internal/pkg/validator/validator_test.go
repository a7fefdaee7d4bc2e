package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routeRequest struct {
	Lat  float64 `json:"lat" validate:"latitude"`
	Mode string  `json:"travel_mode" validate:"omitempty,travel_mode"`
}

type positionRequest struct {
	EntityType string `json:"entity_type" validate:"required,entity_type"`
	Internal   int    `validate:"min=1"`
}

func TestValidate_TravelMode(t *testing.T) {
	assert.NoError(t, Validate(&routeRequest{Lat: 40.7, Mode: "driving"}))
	assert.NoError(t, Validate(&routeRequest{Lat: 40.7}))
	assert.Error(t, Validate(&routeRequest{Lat: 40.7, Mode: "teleport"}))
	assert.Error(t, Validate(&routeRequest{Lat: 95, Mode: "walking"}))
}

func TestValidate_EntityType(t *testing.T) {
	assert.NoError(t, Validate(&positionRequest{EntityType: "agent", Internal: 1}))
	assert.NoError(t, Validate(&positionRequest{EntityType: "client", Internal: 1}))
	assert.Error(t, Validate(&positionRequest{EntityType: "vendor", Internal: 1}))
}

func TestValidate_FieldNamesFromJSON(t *testing.T) {
	err := Validate(&positionRequest{EntityType: "vendor"})

	var errs validator.ValidationErrors
	require.True(t, errors.As(err, &errs))

	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fe.Field())
	}
	assert.ElementsMatch(t, []string{"entity_type", "Internal"}, fields)
}
