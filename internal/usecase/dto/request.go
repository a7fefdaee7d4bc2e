package dto

import "github.com/geo-routing-microservice/internal/domain"

// MaxTourOrders - предел заказов в одном туре
const MaxTourOrders = 50

// Point - координаты точки
type Point struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

// Coordinate переводит точку в доменный тип
func (p Point) Coordinate() domain.Coordinate {
	return domain.Coordinate{Lat: p.Lat, Lng: p.Lng}
}

// PointPtr возвращает nil для отсутствующей точки
func PointPtr(p *Point) *domain.Coordinate {
	if p == nil {
		return nil
	}
	c := p.Coordinate()
	return &c
}

// NearbyRequest - поиск заведений или клиентов в радиусе
type NearbyRequest struct {
	Point
	RadiusKm float64 `json:"radius_km" validate:"gt=0,lte=500"`
	// IncludeAll отключает фильтр по статусу (открыт/проверен, активен)
	IncludeAll bool `json:"include_all"`
}

// BoxRequest - поиск в прямоугольной области
type BoxRequest struct {
	MinLat     float64 `json:"min_lat" validate:"min=-90,max=90"`
	MaxLat     float64 `json:"max_lat" validate:"min=-90,max=90"`
	MinLng     float64 `json:"min_lng" validate:"min=-180,max=180"`
	MaxLng     float64 `json:"max_lng" validate:"min=-180,max=180"`
	IncludeAll bool    `json:"include_all"`
}

// BoundingBox переводит запрос в доменный тип
func (r BoxRequest) BoundingBox() domain.BoundingBox {
	return domain.BoundingBox{MinLat: r.MinLat, MaxLat: r.MaxLat, MinLng: r.MinLng, MaxLng: r.MaxLng}
}

// GridRequest - построение сетки точек вокруг центра
type GridRequest struct {
	Point
	RadiusKm    float64 `json:"radius_km" validate:"gt=0,lte=500"`
	CellSizeDeg float64 `json:"cell_size_deg" validate:"gt=0"`
}

// GeocodeRequest - прямое геокодирование адреса
type GeocodeRequest struct {
	Address string `json:"address" validate:"required,max=500"`
}

// ReverseGeocodeRequest - обратное геокодирование точки
type ReverseGeocodeRequest struct {
	Point
}

// PlacesSearchRequest - поиск мест рядом с точкой
type PlacesSearchRequest struct {
	Point
	Query        string `json:"query" validate:"required,max=200"`
	RadiusMeters int    `json:"radius_meters" validate:"gt=0,lte=50000"`
}

// RouteRequest - маршрут между двумя точками. Каждая точка задаётся координатами или адресом.
type RouteRequest struct {
	Origin             *Point `json:"origin,omitempty" validate:"omitempty"`
	OriginAddress      string `json:"origin_address,omitempty" validate:"max=500"`
	Destination        *Point `json:"destination,omitempty" validate:"omitempty"`
	DestinationAddress string `json:"destination_address,omitempty" validate:"max=500"`
	TravelMode         string `json:"travel_mode,omitempty" validate:"omitempty,travel_mode"`
}

// Mode - способ передвижения, по умолчанию driving
func (r RouteRequest) Mode() domain.TravelMode {
	if r.TravelMode == "" {
		return domain.TravelModeDriving
	}
	return domain.TravelMode(r.TravelMode)
}

// EtaRequest - маршрут с оценкой времени доставки
type EtaRequest struct {
	RouteRequest
	PreparationMinutes *int `json:"preparation_minutes,omitempty" validate:"omitempty,min=0,max=240"`
	BufferMinutes      *int `json:"buffer_minutes,omitempty" validate:"omitempty,min=0,max=120"`
}

// TourOrder - точки одного заказа в туре
type TourOrder struct {
	OrderID int64 `json:"order_id" validate:"required"`
	Vendor  Point `json:"vendor"`
	Client  Point `json:"client"`
}

// TourRequest - тур курьера по нескольким заказам
type TourRequest struct {
	Start              Point       `json:"start"`
	Orders             []TourOrder `json:"orders" validate:"required,min=1,max=50,dive"`
	RespectPickupOrder bool        `json:"respect_pickup_order"`
}

// OrderStops переводит заказы в доменный тип
func (r TourRequest) OrderStops() []domain.OrderStops {
	stops := make([]domain.OrderStops, len(r.Orders))
	for i, o := range r.Orders {
		stops[i] = domain.OrderStops{OrderID: o.OrderID, Vendor: o.Vendor.Coordinate(), Client: o.Client.Coordinate()}
	}
	return stops
}

// ZoneRequest - отчёт по зонам доставки
type ZoneRequest struct {
	Point
	RadiusKm float64 `json:"radius_km" validate:"gt=0,lte=500"`
}

// DispatchRequest - подбор курьера для точки (координаты или адрес)
type DispatchRequest struct {
	Location *Point `json:"location,omitempty" validate:"omitempty"`
	Address  string `json:"address,omitempty" validate:"max=500"`
}

// GeofenceRequest - регистрация зоны уведомлений
type GeofenceRequest struct {
	Point
	Key       string                     `json:"key,omitempty" validate:"max=128"`
	RadiusKm  float64                    `json:"radius_km" validate:"gt=0,lte=500"`
	EventType string                     `json:"event_type" validate:"required,max=64"`
	Payload   domain.NotificationPayload `json:"payload"`
}

// GeofenceCheckRequest - проверка попадания точки в зоны
type GeofenceCheckRequest struct {
	Point
}

// PositionRequest - позиция курьера или клиента
type PositionRequest struct {
	Point
	EntityType  string `json:"entity_type" validate:"required,entity_type"`
	EntityID    string `json:"entity_id" validate:"required,max=128"`
	RecipientID string `json:"recipient_id,omitempty" validate:"max=128"`
	Name        string `json:"name,omitempty" validate:"max=200"`
	Phone       string `json:"phone,omitempty" validate:"max=32"`
	// Available по умолчанию true
	Available *bool `json:"available,omitempty"`
}
