package geocoding

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/config"
	"github.com/geo-routing-microservice/internal/domain/repository"
	"github.com/geo-routing-microservice/internal/infrastructure/google"
	"github.com/geo-routing-microservice/internal/infrastructure/mapbox"
	"github.com/geo-routing-microservice/internal/infrastructure/nominatim"
)

// NewProvider выбирает провайдера геокодирования по конфигурации
func NewProvider(cfg *config.GeocodingConfig, logger *zap.Logger) (repository.GeocodingProvider, error) {
	providerLogger := logger.With(zap.String("provider", cfg.Provider))

	switch cfg.Provider {
	case config.ProviderNominatim, "":
		return nominatim.NewNominatimClient(cfg, providerLogger), nil
	case config.ProviderGoogle:
		return google.NewGoogleClient(cfg, providerLogger), nil
	case config.ProviderMapbox:
		return mapbox.NewMapboxClient(cfg, providerLogger), nil
	}
	return nil, fmt.Errorf("unknown geocoding provider: %s", cfg.Provider)
}
