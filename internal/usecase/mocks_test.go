package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/geo-routing-microservice/internal/domain"
)

// MockVendorRepository - мок репозитория заведений
type MockVendorRepository struct {
	mock.Mock
}

func (m *MockVendorRepository) ListInBox(ctx context.Context, box domain.BoundingBox) ([]*domain.Vendor, error) {
	args := m.Called(ctx, box)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Vendor), args.Error(1)
}

func (m *MockVendorRepository) ListMissingCoordinates(ctx context.Context, limit int, retryAfter time.Duration) ([]*domain.Vendor, error) {
	args := m.Called(ctx, limit, retryAfter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Vendor), args.Error(1)
}

func (m *MockVendorRepository) UpdateCoordinates(ctx context.Context, id int64, point domain.Coordinate) error {
	args := m.Called(ctx, id, point)
	return args.Error(0)
}

func (m *MockVendorRepository) MarkGeocodeAttempted(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockClientRepository - мок репозитория клиентов
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) ListInBox(ctx context.Context, box domain.BoundingBox) ([]*domain.Client, error) {
	args := m.Called(ctx, box)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Client), args.Error(1)
}

func (m *MockClientRepository) ListMissingCoordinates(ctx context.Context, limit int, retryAfter time.Duration) ([]*domain.Client, error) {
	args := m.Called(ctx, limit, retryAfter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Client), args.Error(1)
}

func (m *MockClientRepository) UpdateCoordinates(ctx context.Context, id int64, point domain.Coordinate) error {
	args := m.Called(ctx, id, point)
	return args.Error(0)
}

func (m *MockClientRepository) MarkGeocodeAttempted(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOrderRepository - мок репозитория заказов
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) ListActiveByVendorIDs(ctx context.Context, vendorIDs []int64) ([]*domain.Order, error) {
	args := m.Called(ctx, vendorIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

// MockGeocodingProvider - мок внешнего провайдера
type MockGeocodingProvider struct {
	mock.Mock
}

func (m *MockGeocodingProvider) Name() string {
	return "mock"
}

func (m *MockGeocodingProvider) Geocode(ctx context.Context, address string) (*domain.GeocodeResult, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeocodeResult), args.Error(1)
}

func (m *MockGeocodingProvider) ReverseGeocode(ctx context.Context, point domain.Coordinate) (*domain.AddressComponents, error) {
	args := m.Called(ctx, point)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AddressComponents), args.Error(1)
}

func (m *MockGeocodingProvider) Route(
	ctx context.Context,
	origin, destination domain.Coordinate,
	mode domain.TravelMode,
) (*domain.ProviderRoute, error) {
	args := m.Called(ctx, origin, destination, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProviderRoute), args.Error(1)
}

func (m *MockGeocodingProvider) SearchPlaces(
	ctx context.Context,
	query string,
	center domain.Coordinate,
	radiusMeters int,
) ([]domain.PlaceResult, error) {
	args := m.Called(ctx, query, center, radiusMeters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PlaceResult), args.Error(1)
}

// MockCacheRepository - мок кеша
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockAgentPool - мок пула курьеров
type MockAgentPool struct {
	mock.Mock
}

func (m *MockAgentPool) ListAgents(ctx context.Context, near domain.Coordinate) ([]domain.Agent, error) {
	args := m.Called(ctx, near)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Agent), args.Error(1)
}

// MockAgentLocationRepository - мок каталога позиций курьеров
type MockAgentLocationRepository struct {
	mock.Mock
}

func (m *MockAgentLocationRepository) UpdateLocation(ctx context.Context, agent domain.Agent) error {
	args := m.Called(ctx, agent)
	return args.Error(0)
}

func (m *MockAgentLocationRepository) Remove(ctx context.Context, agentID string) error {
	args := m.Called(ctx, agentID)
	return args.Error(0)
}

// MockNotificationPublisher - мок издателя уведомлений
type MockNotificationPublisher struct {
	mock.Mock
}

func (m *MockNotificationPublisher) Publish(ctx context.Context, event *domain.NotificationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockStreamRepository - мок Redis Streams
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) (string, error) {
	args := m.Called(ctx, stream, data)
	return args.String(0), args.Error(1)
}
