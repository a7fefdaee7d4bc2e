package domain

import (
	"strconv"
	"time"
)

// TravelMode - способ передвижения при построении маршрута
type TravelMode string

const (
	TravelModeDriving   TravelMode = "driving"
	TravelModeWalking   TravelMode = "walking"
	TravelModeBicycling TravelMode = "bicycling"
	TravelModeTransit   TravelMode = "transit"
)

// Valid проверяет, что способ передвижения поддерживается
func (m TravelMode) Valid() bool {
	switch m {
	case TravelModeDriving, TravelModeWalking, TravelModeBicycling, TravelModeTransit:
		return true
	}
	return false
}

// RouteStep - шаг маршрута
type RouteStep struct {
	Instruction  string `json:"instruction"`
	DistanceText string `json:"distance_text,omitempty"`
	DurationText string `json:"duration_text,omitempty"`
}

// ProviderRoute - маршрут, полученный от внешнего провайдера
type ProviderRoute struct {
	DistanceMeters   float64     `json:"distance_meters"`
	DurationSeconds  float64     `json:"duration_seconds"`
	Steps            []RouteStep `json:"steps"`
	OverviewPolyline *string     `json:"overview_polyline,omitempty"`
}

// RouteLeg - участок маршрута между двумя точками
type RouteLeg struct {
	OriginLabel      string  `json:"origin_label"`
	DestinationLabel string  `json:"destination_label"`
	DistanceKm       float64 `json:"distance_km"`
	DurationMinutes  int     `json:"duration_minutes"`
	Instruction      string  `json:"instruction,omitempty"`
}

// Route - итоговый маршрут. Estimated=true означает оценку по прямой без провайдера.
type Route struct {
	Origin          Coordinate  `json:"origin"`
	Destination     Coordinate  `json:"destination"`
	Mode            TravelMode  `json:"mode"`
	DistanceKm      float64     `json:"distance_km"`
	DurationMinutes int         `json:"duration_minutes"`
	Legs            []RouteLeg  `json:"legs"`
	Steps           []RouteStep `json:"steps"`
	Polyline        *string     `json:"polyline,omitempty"`
	Estimated       bool        `json:"estimated"`
}

// DeliveryEstimate - оценка времени доставки
type DeliveryEstimate struct {
	TravelMinutes      int       `json:"travel_minutes"`
	PreparationMinutes int       `json:"preparation_minutes"`
	BufferMinutes      int       `json:"buffer_minutes"`
	EtaMinutes         int       `json:"eta_minutes"`
	EtaClockTime       time.Time `json:"eta_clock_time"`
}

// StopKind - тип остановки в туре
type StopKind string

const (
	StopKindStart  StopKind = "start"
	StopKindVendor StopKind = "vendor"
	StopKindClient StopKind = "client"
)

// StopRef - остановка тура
type StopRef struct {
	Kind     StopKind   `json:"kind"`
	OrderID  int64      `json:"order_id,omitempty"`
	Location Coordinate `json:"location"`
}

// Label - человекочитаемое имя остановки для отрезков тура
func (s StopRef) Label() string {
	if s.Kind == StopKindStart {
		return string(StopKindStart)
	}
	return string(s.Kind) + ":" + strconv.FormatInt(s.OrderID, 10)
}

// OrderStops - точки забора и доставки одного заказа
type OrderStops struct {
	OrderID int64      `json:"order_id"`
	Vendor  Coordinate `json:"vendor"`
	Client  Coordinate `json:"client"`
}

// Tour - маршрут курьера по нескольким заказам
type Tour struct {
	OrderedStops         []StopRef  `json:"ordered_stops"`
	Legs                 []RouteLeg `json:"legs"`
	TotalDistanceKm      float64    `json:"total_distance_km"`
	TotalDurationMinutes int        `json:"total_duration_minutes"`
	InitialDistanceKm    float64    `json:"initial_distance_km"`
	ImprovementPasses    int        `json:"improvement_passes"`
}
