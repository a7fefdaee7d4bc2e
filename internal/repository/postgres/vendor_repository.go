package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/geo-routing-microservice/internal/domain"
	"github.com/geo-routing-microservice/internal/domain/repository"
	"github.com/geo-routing-microservice/internal/pkg/errors"
)

type vendorRow struct {
	ID         int64           `db:"id"`
	Name       string          `db:"name"`
	Address    string          `db:"address"`
	IsVerified bool            `db:"is_verified"`
	IsOpen     bool            `db:"is_open"`
	Lat        sql.NullFloat64 `db:"lat"`
	Lng        sql.NullFloat64 `db:"lng"`
}

func (r vendorRow) toDomain() *domain.Vendor {
	return &domain.Vendor{
		ID:         r.ID,
		Name:       r.Name,
		Address:    r.Address,
		IsVerified: r.IsVerified,
		IsOpen:     r.IsOpen,
		Location:   toCoordinate(r.Lat, r.Lng),
	}
}

type vendorRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewVendorRepository(db *DB) repository.VendorRepository {
	return &vendorRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *vendorRepository) ListInBox(ctx context.Context, box domain.BoundingBox) ([]*domain.Vendor, error) {
	query := `
		SELECT id, name, address, is_verified, is_open, lat, lng
		FROM vendors
		WHERE lat IS NOT NULL AND lng IS NOT NULL
		  AND lat BETWEEN $1 AND $2
		  AND lng BETWEEN $3 AND $4
		ORDER BY id
	`

	var rows []vendorRow
	if err := r.db.SelectContext(ctx, &rows, query, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng); err != nil {
		r.logger.Error("Failed to list vendors in box", zap.Any("box", box), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	vendors := make([]*domain.Vendor, 0, len(rows))
	for _, row := range rows {
		vendors = append(vendors, row.toDomain())
	}

	r.logger.Debug("Vendors in box", zap.Int("count", len(vendors)))
	return vendors, nil
}

func (r *vendorRepository) ListMissingCoordinates(ctx context.Context, limit int, retryAfter time.Duration) ([]*domain.Vendor, error) {
	query := `
		SELECT id, name, address, is_verified, is_open, lat, lng
		FROM vendors
		WHERE (lat IS NULL OR lng IS NULL) AND address <> ''
		  AND (geocode_attempted_at IS NULL OR geocode_attempted_at < NOW() - make_interval(secs => $2))
		ORDER BY geocode_attempted_at NULLS FIRST, id
		LIMIT $1
	`

	var rows []vendorRow
	if err := r.db.SelectContext(ctx, &rows, query, normalizeLimit(limit), retryAfter.Seconds()); err != nil {
		r.logger.Error("Failed to list vendors without coordinates", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	vendors := make([]*domain.Vendor, 0, len(rows))
	for _, row := range rows {
		vendors = append(vendors, row.toDomain())
	}
	return vendors, nil
}

func (r *vendorRepository) UpdateCoordinates(ctx context.Context, id int64, point domain.Coordinate) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE vendors SET lat = $1, lng = $2, geocode_attempted_at = NOW(), updated_at = NOW() WHERE id = $3`,
		point.Lat, point.Lng, id,
	)
	if err != nil {
		r.logger.Error("Failed to update vendor coordinates", zap.Int64("id", id), zap.Error(err))
		return errors.ErrDatabaseError
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrLocationNotFound
	}
	return nil
}

func (r *vendorRepository) MarkGeocodeAttempted(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE vendors SET geocode_attempted_at = NOW() WHERE id = $1`, id); err != nil {
		r.logger.Error("Failed to mark vendor geocode attempt", zap.Int64("id", id), zap.Error(err))
		return errors.ErrDatabaseError
	}
	return nil
}
