package repository

import (
	"context"

	"github.com/geo-routing-microservice/internal/domain"
)

// OrderRepository определяет методы чтения заказов
type OrderRepository interface {
	// ListActiveByVendorIDs возвращает заказы в работе для указанных заведений
	ListActiveByVendorIDs(ctx context.Context, vendorIDs []int64) ([]*domain.Order, error)
}
