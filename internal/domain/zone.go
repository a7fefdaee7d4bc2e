package domain

// ZoneSummary - агрегат маршрутов для одной зоны доставки
type ZoneSummary struct {
	Key                  string  `json:"key"`
	OrderCount           int     `json:"order_count"`
	OrderIDs             []int64 `json:"order_ids"`
	TotalDistanceKm      float64 `json:"total_distance_km"`
	TotalDurationMinutes int     `json:"total_duration_minutes"`
	AverageDistanceKm    float64 `json:"average_distance_km"`
}

// SkippedOrder - заказ, пропущенный при агрегации
type SkippedOrder struct {
	OrderID int64  `json:"order_id"`
	Reason  string `json:"reason"`
}

// ZoneReport - отчёт по зонам доставки вокруг точки
type ZoneReport struct {
	Center               Coordinate     `json:"center"`
	RadiusKm             float64        `json:"radius_km"`
	Zones                []ZoneSummary  `json:"zones"`
	TotalOrders          int            `json:"total_orders"`
	RoutedOrders         int            `json:"routed_orders"`
	Skipped              []SkippedOrder `json:"skipped,omitempty"`
	TotalDistanceKm      float64        `json:"total_distance_km"`
	TotalDurationMinutes int            `json:"total_duration_minutes"`
	AverageDistanceKm    float64        `json:"average_distance_km"`
}
