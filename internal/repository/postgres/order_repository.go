package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/domain/repository"
	"github.com/geo-routing-microservice/internal/pkg/errors"
)

type orderRow struct {
	ID        int64           `db:"id"`
	VendorID  int64           `db:"vendor_id"`
	ClientID  int64           `db:"client_id"`
	Status    string          `db:"status"`
	VendorLat sql.NullFloat64 `db:"vendor_lat"`
	VendorLng sql.NullFloat64 `db:"vendor_lng"`
	ClientLat sql.NullFloat64 `db:"client_lat"`
	ClientLng sql.NullFloat64 `db:"client_lng"`
}

type orderRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewOrderRepository(db *DB) repository.OrderRepository {
	return &orderRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *orderRepository) ListActiveByVendorIDs(ctx context.Context, vendorIDs []int64) ([]*domain.Order, error) {
	if len(vendorIDs) == 0 {
		return []*domain.Order{}, nil
	}

	query := `
		SELECT
			o.id, o.vendor_id, o.client_id, o.status,
			v.lat AS vendor_lat, v.lng AS vendor_lng,
			c.lat AS client_lat, c.lng AS client_lng
		FROM orders o
		JOIN vendors v ON v.id = o.vendor_id
		LEFT JOIN clients c ON c.id = o.client_id
		WHERE o.vendor_id = ANY($1)
		  AND o.status = ANY($2)
		ORDER BY o.id
	`

	var rows []orderRow
	err := r.db.SelectContext(ctx, &rows, query,
		pq.Array(vendorIDs),
		pq.Array(domain.InFlightOrderStatuses),
	)
	if err != nil {
		r.logger.Error("Failed to list active orders",
			zap.Int("vendor_count", len(vendorIDs)),
			zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	orders := make([]*domain.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, &domain.Order{
			ID:             row.ID,
			VendorID:       row.VendorID,
			ClientID:       row.ClientID,
			Status:         row.Status,
			VendorLocation: toCoordinate(row.VendorLat, row.VendorLng),
			ClientLocation: toCoordinate(row.ClientLat, row.ClientLng),
		})
	}

	return orders, nil
}
