package google

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
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
	providerName = config.ProviderGoogle

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"

	// Nearby Search принимает радиус не больше 50 км
	maxPlacesRadiusMeters = 50000
)

var htmlTag = regexp.MustCompile(`<[^>]+>`)

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (l latLng) coordinate() domain.Coordinate {
	return domain.Coordinate{Lat: l.Lat, Lng: l.Lng}
}

type geometry struct {
	Location latLng `json:"location"`
}

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress  string             `json:"formatted_address"`
		Geometry          geometry           `json:"geometry"`
		AddressComponents []addressComponent `json:"address_components"`
	} `json:"results"`
}

type textValue struct {
	Text  string  `json:"text"`
	Value float64 `json:"value"`
}

type directionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Distance textValue `json:"distance"`
			Duration textValue `json:"duration"`
			Steps    []struct {
				HTMLInstructions string    `json:"html_instructions"`
				Distance         textValue `json:"distance"`
				Duration         textValue `json:"duration"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

type placesResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		PlaceID  string   `json:"place_id"`
		Name     string   `json:"name"`
		Vicinity string   `json:"vicinity"`
		Geometry geometry `json:"geometry"`
		Rating   *float64 `json:"rating"`
		Types    []string `json:"types"`
	} `json:"results"`
}

type client struct {
	http    *httpclient.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// NewGoogleClient создаёт провайдер на Google Maps Platform (Geocoding, Directions, Places)
func NewGoogleClient(cfg *config.GeocodingConfig, logger *zap.Logger) repository.GeocodingProvider {
	return &client{
		http:    httpclient.New(cfg.RequestTimeout, logger),
		baseURL: strings.TrimRight(cfg.GoogleBaseURL, "/"),
		apiKey:  cfg.GoogleAPIKey,
		logger:  logger,
	}
}

func (c *client) Name() string {
	return providerName
}

// checkStatus возвращает found=false для ZERO_RESULTS и ошибку для остальных статусов кроме OK
func checkStatus(api, status, message string) (bool, error) {
	switch status {
	case statusOK:
		return true, nil
	case statusZeroResults:
		return false, nil
	}
	return false, fmt.Errorf("google %s: status %s: %s", api, status, message)
}

func (c *client) Geocode(ctx context.Context, address string) (*domain.GeocodeResult, error) {
	var resp geocodeResponse
	query := url.Values{"address": {address}, "key": {c.apiKey}}
	if err := c.http.GetJSON(ctx, c.baseURL+"/maps/api/geocode/json", query, &resp); err != nil {
		return nil, fmt.Errorf("google geocode: %w", err)
	}

	found, err := checkStatus("geocode", resp.Status, resp.ErrorMessage)
	if err != nil || !found || len(resp.Results) == 0 {
		return nil, err
	}

	top := resp.Results[0]
	return &domain.GeocodeResult{
		Location:         top.Geometry.Location.coordinate(),
		FormattedAddress: top.FormattedAddress,
		Provider:         providerName,
	}, nil
}

func (c *client) ReverseGeocode(ctx context.Context, point domain.Coordinate) (*domain.AddressComponents, error) {
	var resp geocodeResponse
	query := url.Values{"latlng": {latLngParam(point)}, "key": {c.apiKey}}
	if err := c.http.GetJSON(ctx, c.baseURL+"/maps/api/geocode/json", query, &resp); err != nil {
		return nil, fmt.Errorf("google reverse geocode: %w", err)
	}

	found, err := checkStatus("reverse geocode", resp.Status, resp.ErrorMessage)
	if err != nil || !found || len(resp.Results) == 0 {
		return nil, err
	}

	top := resp.Results[0]
	out := &domain.AddressComponents{FormattedAddress: top.FormattedAddress}
	for _, comp := range top.AddressComponents {
		for _, typ := range comp.Types {
			switch typ {
			case "route":
				out.Street = comp.LongName
			case "street_number":
				out.HouseNumber = comp.LongName
			case "locality", "postal_town":
				if out.City == "" {
					out.City = comp.LongName
				}
			case "administrative_area_level_1":
				out.Region = comp.LongName
			case "postal_code":
				out.PostalCode = comp.LongName
			case "country":
				out.Country = comp.LongName
				out.CountryCode = comp.ShortName
			}
		}
	}
	return out, nil
}

func (c *client) Route(
	ctx context.Context,
	origin, destination domain.Coordinate,
	mode domain.TravelMode,
) (*domain.ProviderRoute, error) {
	var resp directionsResponse
	query := url.Values{
		"origin":      {latLngParam(origin)},
		"destination": {latLngParam(destination)},
		"mode":        {string(mode)},
		"key":         {c.apiKey},
	}
	if err := c.http.GetJSON(ctx, c.baseURL+"/maps/api/directions/json", query, &resp); err != nil {
		return nil, fmt.Errorf("google directions: %w", err)
	}

	found, err := checkStatus("directions", resp.Status, resp.ErrorMessage)
	if err != nil || !found || len(resp.Routes) == 0 {
		return nil, err
	}

	r := resp.Routes[0]
	route := &domain.ProviderRoute{Steps: []domain.RouteStep{}}
	for _, leg := range r.Legs {
		route.DistanceMeters += leg.Distance.Value
		route.DurationSeconds += leg.Duration.Value
		for _, step := range leg.Steps {
			route.Steps = append(route.Steps, domain.RouteStep{
				Instruction:  stripHTML(step.HTMLInstructions),
				DistanceText: step.Distance.Text,
				DurationText: step.Duration.Text,
			})
		}
	}
	if r.OverviewPolyline.Points != "" {
		polyline := r.OverviewPolyline.Points
		route.OverviewPolyline = &polyline
	}

	return route, nil
}

func (c *client) SearchPlaces(
	ctx context.Context,
	query string,
	center domain.Coordinate,
	radiusMeters int,
) ([]domain.PlaceResult, error) {
	if radiusMeters > maxPlacesRadiusMeters {
		radiusMeters = maxPlacesRadiusMeters
	}

	var resp placesResponse
	params := url.Values{
		"location": {latLngParam(center)},
		"radius":   {strconv.Itoa(radiusMeters)},
		"keyword":  {query},
		"key":      {c.apiKey},
	}
	if err := c.http.GetJSON(ctx, c.baseURL+"/maps/api/place/nearbysearch/json", params, &resp); err != nil {
		return nil, fmt.Errorf("google places: %w", err)
	}

	found, err := checkStatus("places", resp.Status, resp.ErrorMessage)
	if err != nil {
		return nil, err
	}
	if !found {
		return []domain.PlaceResult{}, nil
	}

	results := make([]domain.PlaceResult, 0, len(resp.Results))
	for _, p := range resp.Results {
		point := p.Geometry.Location.coordinate()
		results = append(results, domain.PlaceResult{
			PlaceID:    p.PlaceID,
			Name:       p.Name,
			Address:    p.Vicinity,
			Location:   point,
			Rating:     p.Rating,
			Types:      p.Types,
			DistanceKm: utils.Distance(center, point),
		})
	}
	return results, nil
}

func latLngParam(p domain.Coordinate) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

func stripHTML(s string) string {
	return strings.TrimSpace(htmlTag.ReplaceAllString(s, ""))
}
