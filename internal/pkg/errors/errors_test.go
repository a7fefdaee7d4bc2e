package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_WithDetails(t *testing.T) {
	withDetails := ErrInvalidRadius.WithDetails(map[string]interface{}{"radius_km": -1.0})

	assert.Equal(t, -1.0, withDetails.Details["radius_km"])
	assert.Nil(t, ErrInvalidRadius.Details, "sentinel must stay untouched")
	assert.Equal(t, http.StatusBadRequest, withDetails.StatusCode)
}

func TestAppError_Is(t *testing.T) {
	wrapped := fmt.Errorf("find vendors: %w", ErrInvalidCoordinates.WithMessage("latitude %v out of range", 91.0))

	assert.True(t, stderrors.Is(wrapped, ErrInvalidCoordinates))
	assert.False(t, stderrors.Is(wrapped, ErrInvalidRadius))

	var appErr *AppError
	assert.True(t, stderrors.As(wrapped, &appErr))
	assert.Equal(t, "latitude 91 out of range", appErr.Message)
}

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "GEOFENCE_NOT_FOUND: Geofence not found", ErrGeofenceNotFound.Error())
}
