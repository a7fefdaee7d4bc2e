package domain

// Agent - курьер
type Agent struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone,omitempty"`
	Available bool       `json:"available"`
	Location  Coordinate `json:"location"`
}

// AgentMatch - выбранный курьер и расстояние до точки назначения
type AgentMatch struct {
	Agent      Agent   `json:"agent"`
	DistanceKm float64 `json:"distance_km"`
}
