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

type clientRow struct {
	ID      int64           `db:"id"`
	Name    string          `db:"name"`
	Address string          `db:"address"`
	Status  string          `db:"status"`
	Lat     sql.NullFloat64 `db:"lat"`
	Lng     sql.NullFloat64 `db:"lng"`
}

func (r clientRow) toDomain() *domain.Client {
	return &domain.Client{
		ID:       r.ID,
		Name:     r.Name,
		Address:  r.Address,
		Status:   r.Status,
		Location: toCoordinate(r.Lat, r.Lng),
	}
}

type clientRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewClientRepository(db *DB) repository.ClientRepository {
	return &clientRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

func (r *clientRepository) ListInBox(ctx context.Context, box domain.BoundingBox) ([]*domain.Client, error) {
	query := `
		SELECT id, name, address, status, lat, lng
		FROM clients
		WHERE lat IS NOT NULL AND lng IS NOT NULL
		  AND lat BETWEEN $1 AND $2
		  AND lng BETWEEN $3 AND $4
		ORDER BY id
	`

	var rows []clientRow
	if err := r.db.SelectContext(ctx, &rows, query, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng); err != nil {
		r.logger.Error("Failed to list clients in box", zap.Any("box", box), zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	clients := make([]*domain.Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, row.toDomain())
	}
	return clients, nil
}

func (r *clientRepository) ListMissingCoordinates(ctx context.Context, limit int, retryAfter time.Duration) ([]*domain.Client, error) {
	query := `
		SELECT id, name, address, status, lat, lng
		FROM clients
		WHERE (lat IS NULL OR lng IS NULL) AND address <> ''
		  AND (geocode_attempted_at IS NULL OR geocode_attempted_at < NOW() - make_interval(secs => $2))
		ORDER BY geocode_attempted_at NULLS FIRST, id
		LIMIT $1
	`

	var rows []clientRow
	if err := r.db.SelectContext(ctx, &rows, query, normalizeLimit(limit), retryAfter.Seconds()); err != nil {
		r.logger.Error("Failed to list clients without coordinates", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	clients := make([]*domain.Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, row.toDomain())
	}
	return clients, nil
}

func (r *clientRepository) UpdateCoordinates(ctx context.Context, id int64, point domain.Coordinate) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE clients SET lat = $1, lng = $2, geocode_attempted_at = NOW(), updated_at = NOW() WHERE id = $3`,
		point.Lat, point.Lng, id,
	)
	if err != nil {
		r.logger.Error("Failed to update client coordinates", zap.Int64("id", id), zap.Error(err))
		return errors.ErrDatabaseError
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return errors.ErrLocationNotFound
	}
	return nil
}

func (r *clientRepository) MarkGeocodeAttempted(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE clients SET geocode_attempted_at = NOW() WHERE id = $1`, id); err != nil {
		r.logger.Error("Failed to mark client geocode attempt", zap.Int64("id", id), zap.Error(err))
		return errors.ErrDatabaseError
	}
	return nil
}
