package domain

// Located - сущность с идентификатором и, возможно, известными координатами
type Located interface {
	EntityID() int64
	Coordinates() *Coordinate
}

// Vendor - заведение (ресторан, магазин), из которого забирают заказы
type Vendor struct {
	ID         int64       `json:"id" db:"id"`
	Name       string      `json:"name" db:"name"`
	Address    string      `json:"address" db:"address"`
	IsVerified bool        `json:"is_verified" db:"is_verified"`
	IsOpen     bool        `json:"is_open" db:"is_open"`
	Location   *Coordinate `json:"location,omitempty"`
}

func (v *Vendor) EntityID() int64          { return v.ID }
func (v *Vendor) Coordinates() *Coordinate { return v.Location }

// Client statuses
const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
	ClientStatusBlocked  = "blocked"
)

// Client - получатель заказа
type Client struct {
	ID       int64       `json:"id" db:"id"`
	Name     string      `json:"name" db:"name"`
	Address  string      `json:"address" db:"address"`
	Status   string      `json:"status" db:"status"`
	Location *Coordinate `json:"location,omitempty"`
}

func (c *Client) EntityID() int64          { return c.ID }
func (c *Client) Coordinates() *Coordinate { return c.Location }

// EntityMatch - сущность, найденная в радиусе, вместе с расстоянием до центра
type EntityMatch[T Located] struct {
	Entity     T       `json:"entity"`
	DistanceKm float64 `json:"distance_km"`
}

// Order statuses, которые считаются "в работе"
const (
	OrderStatusAccepted  = "accepted"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusOnTheWay  = "on_the_way"
)

// InFlightOrderStatuses - статусы заказов, учитываемые при агрегации маршрутов по зонам
var InFlightOrderStatuses = []string{
	OrderStatusAccepted,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusOnTheWay,
}

// Order - заказ с координатами заведения и клиента (любая из них может отсутствовать)
type Order struct {
	ID             int64       `json:"id" db:"id"`
	VendorID       int64       `json:"vendor_id" db:"vendor_id"`
	ClientID       int64       `json:"client_id" db:"client_id"`
	Status         string      `json:"status" db:"status"`
	VendorLocation *Coordinate `json:"vendor_location,omitempty"`
	ClientLocation *Coordinate `json:"client_location,omitempty"`
}
