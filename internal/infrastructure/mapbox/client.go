package mapbox

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
	providerName     = config.ProviderMapbox
	placeSearchLimit = 10
	codeOK           = "Ok"
	codeNoRoute      = "NoRoute"
)

type feature struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	PlaceName string    `json:"place_name"`
	Address   string    `json:"address"`
	Center    []float64 `json:"center"`
	PlaceType []string  `json:"place_type"`
	Context   []struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		ShortCode string `json:"short_code"`
	} `json:"context"`
	Properties struct {
		Category string `json:"category"`
	} `json:"properties"`
}

// center в Mapbox - [lng, lat]
func (f *feature) coordinate() (domain.Coordinate, bool) {
	if len(f.Center) != 2 {
		return domain.Coordinate{}, false
	}
	return domain.Coordinate{Lat: f.Center[1], Lng: f.Center[0]}, true
}

type geocodingResponse struct {
	Features []feature `json:"features"`
}

type directionsResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry string  `json:"geometry"`
		Legs     []struct {
			Steps []struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
				Maneuver struct {
					Instruction string `json:"instruction"`
				} `json:"maneuver"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

type client struct {
	http        *httpclient.Client
	baseURL     string
	accessToken string
	logger      *zap.Logger
}

// NewMapboxClient создает провайдер на Mapbox Geocoding v5 и Directions v5
func NewMapboxClient(cfg *config.GeocodingConfig, logger *zap.Logger) repository.GeocodingProvider {
	return &client{
		http:        httpclient.New(cfg.RequestTimeout, logger),
		baseURL:     strings.TrimRight(cfg.MapboxBaseURL, "/"),
		accessToken: cfg.MapboxAccessToken,
		logger:      logger,
	}
}

func (c *client) Name() string {
	return providerName
}

func (c *client) geocodingURL(search string) string {
	return fmt.Sprintf("%s/geocoding/v5/mapbox.places/%s.json", c.baseURL, url.PathEscape(search))
}

func (c *client) Geocode(ctx context.Context, address string) (*domain.GeocodeResult, error) {
	var resp geocodingResponse
	query := url.Values{"access_token": {c.accessToken}, "limit": {"1"}}
	if err := c.http.GetJSON(ctx, c.geocodingURL(address), query, &resp); err != nil {
		return nil, fmt.Errorf("mapbox geocode: %w", err)
	}
	if len(resp.Features) == 0 {
		return nil, nil
	}

	top := resp.Features[0]
	point, ok := top.coordinate()
	if !ok {
		return nil, fmt.Errorf("mapbox geocode: feature %s has no center", top.ID)
	}

	return &domain.GeocodeResult{
		Location:         point,
		FormattedAddress: top.PlaceName,
		Provider:         providerName,
	}, nil
}

func (c *client) ReverseGeocode(ctx context.Context, point domain.Coordinate) (*domain.AddressComponents, error) {
	var resp geocodingResponse
	query := url.Values{"access_token": {c.accessToken}, "limit": {"1"}, "types": {"address"}}
	if err := c.http.GetJSON(ctx, c.geocodingURL(lngLat(point)), query, &resp); err != nil {
		return nil, fmt.Errorf("mapbox reverse geocode: %w", err)
	}
	if len(resp.Features) == 0 {
		return nil, nil
	}

	top := resp.Features[0]
	out := &domain.AddressComponents{
		FormattedAddress: top.PlaceName,
		Street:           top.Text,
		HouseNumber:      top.Address,
	}
	// context id - "<layer>.<id>", например "place.123"
	for _, ctxItem := range top.Context {
		layer := strings.SplitN(ctxItem.ID, ".", 2)[0]
		switch layer {
		case "place":
			out.City = ctxItem.Text
		case "region":
			out.Region = ctxItem.Text
		case "postcode":
			out.PostalCode = ctxItem.Text
		case "country":
			out.Country = ctxItem.Text
			out.CountryCode = strings.ToUpper(ctxItem.ShortCode)
		}
	}
	return out, nil
}

func profile(mode domain.TravelMode) (string, bool) {
	switch mode {
	case domain.TravelModeDriving:
		return "mapbox/driving", true
	case domain.TravelModeWalking:
		return "mapbox/walking", true
	case domain.TravelModeBicycling:
		return "mapbox/cycling", true
	}
	return "", false
}

// Route строит маршрут через Directions API. Общественный транспорт Mapbox не поддерживает.
func (c *client) Route(
	ctx context.Context,
	origin, destination domain.Coordinate,
	mode domain.TravelMode,
) (*domain.ProviderRoute, error) {
	prof, ok := profile(mode)
	if !ok {
		c.logger.Debug("Mapbox has no profile for travel mode", zap.String("mode", string(mode)))
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/directions/v5/%s/%s;%s", c.baseURL, prof, lngLat(origin), lngLat(destination))
	query := url.Values{
		"access_token": {c.accessToken},
		"steps":        {"true"},
		"geometries":   {"polyline"},
		"overview":     {"full"},
	}

	var resp directionsResponse
	if err := c.http.GetJSON(ctx, endpoint, query, &resp); err != nil {
		return nil, fmt.Errorf("mapbox directions: %w", err)
	}

	switch resp.Code {
	case codeOK:
	case codeNoRoute:
		return nil, nil
	default:
		return nil, fmt.Errorf("mapbox directions: code %s: %s", resp.Code, resp.Message)
	}
	if len(resp.Routes) == 0 {
		return nil, nil
	}

	r := resp.Routes[0]
	route := &domain.ProviderRoute{
		DistanceMeters:  r.Distance,
		DurationSeconds: r.Duration,
		Steps:           []domain.RouteStep{},
	}
	for _, leg := range r.Legs {
		for _, step := range leg.Steps {
			route.Steps = append(route.Steps, domain.RouteStep{
				Instruction:  step.Maneuver.Instruction,
				DistanceText: fmt.Sprintf("%.1f km", step.Distance/1000),
				DurationText: fmt.Sprintf("%d min", int(step.Duration/60+0.5)),
			})
		}
	}
	if r.Geometry != "" {
		geometry := r.Geometry
		route.OverviewPolyline = &geometry
	}

	return route, nil
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
		"access_token": {c.accessToken},
		"proximity":    {lngLat(center)},
		"bbox":         {fmt.Sprintf("%f,%f,%f,%f", box.MinLng, box.MinLat, box.MaxLng, box.MaxLat)},
		"types":        {"poi"},
		"limit":        {strconv.Itoa(placeSearchLimit)},
	}

	var resp geocodingResponse
	if err := c.http.GetJSON(ctx, c.geocodingURL(query), params, &resp); err != nil {
		return nil, fmt.Errorf("mapbox place search: %w", err)
	}

	results := make([]domain.PlaceResult, 0, len(resp.Features))
	for i := range resp.Features {
		f := &resp.Features[i]
		point, ok := f.coordinate()
		if !ok {
			continue
		}
		dist := utils.Distance(center, point)
		if dist > radiusKm {
			continue
		}

		var types []string
		if f.Properties.Category != "" {
			for _, t := range strings.Split(f.Properties.Category, ",") {
				types = append(types, strings.TrimSpace(t))
			}
		}

		results = append(results, domain.PlaceResult{
			PlaceID:    f.ID,
			Name:       f.Text,
			Address:    f.PlaceName,
			Location:   point,
			Types:      types,
			DistanceKm: dist,
		})
	}

	return results, nil
}

func lngLat(p domain.Coordinate) string {
	return strconv.FormatFloat(p.Lng, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}
