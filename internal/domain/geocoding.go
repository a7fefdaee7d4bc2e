package domain

// GeocodeResult - результат прямого геокодирования
type GeocodeResult struct {
	Location         Coordinate `json:"location"`
	FormattedAddress string     `json:"formatted_address"`
	Provider         string     `json:"provider"`
}

// AddressComponents - результат обратного геокодирования
type AddressComponents struct {
	FormattedAddress string `json:"formatted_address"`
	Street           string `json:"street,omitempty"`
	HouseNumber      string `json:"house_number,omitempty"`
	City             string `json:"city,omitempty"`
	Region           string `json:"region,omitempty"`
	PostalCode       string `json:"postal_code,omitempty"`
	Country          string `json:"country,omitempty"`
	CountryCode      string `json:"country_code,omitempty"`
}

// PlaceResult - место, найденное поиском по запросу рядом с точкой
type PlaceResult struct {
	PlaceID    string     `json:"place_id"`
	Name       string     `json:"name"`
	Address    string     `json:"address,omitempty"`
	Location   Coordinate `json:"location"`
	Rating     *float64   `json:"rating,omitempty"`
	Types      []string   `json:"types,omitempty"`
	DistanceKm float64    `json:"distance_km"`
}
