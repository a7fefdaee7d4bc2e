package errors

import "net/http"

var (
	ErrLocationNotFound = New(
		"LOCATION_NOT_FOUND",
		"Location not found",
		http.StatusNotFound,
	)

	ErrGeofenceNotFound = New(
		"GEOFENCE_NOT_FOUND",
		"Geofence not found",
		http.StatusNotFound,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidRadius = New(
		"INVALID_RADIUS",
		"Invalid radius value",
		http.StatusBadRequest,
	)

	ErrInvalidBoundingBox = New(
		"INVALID_BOUNDING_BOX",
		"Invalid bounding box",
		http.StatusBadRequest,
	)

	ErrInvalidCellSize = New(
		"INVALID_CELL_SIZE",
		"Invalid grid cell size",
		http.StatusBadRequest,
	)

	ErrInvalidTravelMode = New(
		"INVALID_TRAVEL_MODE",
		"Invalid travel mode",
		http.StatusBadRequest,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
