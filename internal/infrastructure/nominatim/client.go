package nominatim

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/config"
	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/domain/repository"
	"github.com/geo-routing-microservice/internal/infrastructure/httpclient"
	"github.com/geo-routing-microservice/internal/pkg/utils"
)

const (
	providerName     = config.ProviderNominatim
	placeSearchLimit = 20
)

type place struct {
	PlaceID     int64             `json:"place_id"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Category    string            `json:"category"`
	Type        string            `json:"type"`
	Address     map[string]string `json:"address"`
	Error       string            `json:"error"`
}

func (p *place) coordinate() (domain.Coordinate, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("parse lat %q: %w", p.Lat, err)
	}
	lng, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("parse lon %q: %w", p.Lon, err)
	}
	return domain.Coordinate{Lat: lat, Lng: lng}, nil
}

type client struct {
	http    *httpclient.Client
	baseURL string
	logger  *zap.Logger
}

// NewNominatimClient создаёт бесплатный провайдер на OpenStreetMap Nominatim.
// Маршруты не поддерживаются: Route всегда возвращает (nil, nil).
func NewNominatimClient(cfg *config.GeocodingConfig, logger *zap.Logger) repository.GeocodingProvider {
	return &client{
		http: httpclient.New(cfg.RequestTimeout, logger,
			httpclient.WithHeader("User-Agent", cfg.UserAgent)),
		baseURL: strings.TrimRight(cfg.NominatimBaseURL, "/"),
		logger:  logger,
	}
}

func (c *client) Name() string {
	return providerName
}

func (c *client) Geocode(ctx context.Context, address string) (*domain.GeocodeResult, error) {
	query := url.Values{
		"q":      {address},
		"format": {"jsonv2"},
		"limit":  {"1"},
	}

	var places []place
	if err := c.http.GetJSON(ctx, c.baseURL+"/search", query, &places); err != nil {
		return nil, fmt.Errorf("nominatim search: %w", err)
	}
	if len(places) == 0 {
		return nil, nil
	}

	point, err := places[0].coordinate()
	if err != nil {
		return nil, err
	}

	return &domain.GeocodeResult{
		Location:         point,
		FormattedAddress: places[0].DisplayName,
		Provider:         providerName,
	}, nil
}

func (c *client) ReverseGeocode(ctx context.Context, point domain.Coordinate) (*domain.AddressComponents, error) {
	query := url.Values{
		"lat":            {strconv.FormatFloat(point.Lat, 'f', -1, 64)},
		"lon":            {strconv.FormatFloat(point.Lng, 'f', -1, 64)},
		"format":         {"jsonv2"},
		"addressdetails": {"1"},
	}

	var p place
	if err := c.http.GetJSON(ctx, c.baseURL+"/reverse", query, &p); err != nil {
		return nil, fmt.Errorf("nominatim reverse: %w", err)
	}
	// "Unable to geocode" приходит со статусом 200
	if p.Error != "" || p.DisplayName == "" {
		return nil, nil
	}

	return &domain.AddressComponents{
		FormattedAddress: p.DisplayName,
		Street:           p.Address["road"],
		HouseNumber:      p.Address["house_number"],
		City:             firstNonEmpty(p.Address["city"], p.Address["town"], p.Address["village"]),
		Region:           p.Address["state"],
		PostalCode:       p.Address["postcode"],
		Country:          p.Address["country"],
		CountryCode:      strings.ToUpper(p.Address["country_code"]),
	}, nil
}

func (c *client) Route(_ context.Context, _, _ domain.Coordinate, _ domain.TravelMode) (*domain.ProviderRoute, error) {
	return nil, nil
}

func (c *client) SearchPlaces(
	ctx context.Context,
	query string,
	center domain.Coordinate,
	radiusMeters int,
) ([]domain.PlaceResult, error) {
	radiusKm := float64(radiusMeters) / 1000
	box := utils.BoundingBoxAround(center, radiusKm)

	params := url.Values{
		"q":       {query},
		"format":  {"jsonv2"},
		"limit":   {strconv.Itoa(placeSearchLimit)},
		"bounded": {"1"},
		// viewbox = left,top,right,bottom
		"viewbox": {fmt.Sprintf("%f,%f,%f,%f", box.MinLng, box.MaxLat, box.MaxLng, box.MinLat)},
	}

	var places []place
	if err := c.http.GetJSON(ctx, c.baseURL+"/search", params, &places); err != nil {
		return nil, fmt.Errorf("nominatim place search: %w", err)
	}

	results := make([]domain.PlaceResult, 0, len(places))
	for i := range places {
		p := &places[i]
		point, err := p.coordinate()
		if err != nil {
			c.logger.Warn("Skipping place with bad coordinates", zap.Int64("place_id", p.PlaceID), zap.Error(err))
			continue
		}
		dist := utils.Distance(center, point)
		if dist > radiusKm {
			continue
		}

		name := p.Name
		if name == "" {
			name = strings.SplitN(p.DisplayName, ",", 2)[0]
		}
		var types []string
		if p.Type != "" {
			types = []string{p.Type}
		}

		results = append(results, domain.PlaceResult{
			PlaceID:    strconv.FormatInt(p.PlaceID, 10),
			Name:       name,
			Address:    p.DisplayName,
			Location:   point,
			Types:      types,
			DistanceKm: dist,
		})
	}

	return results, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
