package postgres

import (
	"context"
	"database/sql"
	"time"

	"transit/internal/domain"
)

// PositionRepository is a PostgreSQL implementation of repository.PositionRepository.
type PositionRepository struct {
	q Querier
}

// NewPositionRepository creates a new PostgreSQL position repository.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{q: db}
}

// Append stores one position sample.
func (r *PositionRepository) Append(ctx context.Context, position *domain.DriverPosition) error {
	query := `
		INSERT INTO driver_positions (driver_id, lat, lng, seen_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.q.ExecContext(ctx, query, position.DriverID, position.Lat, position.Lng, position.SeenAt)
	return err
}

// FindAverageSince returns per-driver average positions computed from
// samples newer than since and inside the bounding box. One row per driver,
// most recent sample time included for freshness checks.
func (r *PositionRepository) FindAverageSince(ctx context.Context, latMin, latMax, lngMin, lngMax float64, since time.Time) ([]domain.DriverAvgPosition, error) {
	query := `
		SELECT driver_id, AVG(lat), AVG(lng), MAX(seen_at)
		FROM driver_positions
		WHERE seen_at >= $5
		  AND lat BETWEEN $1 AND $2
		  AND lng BETWEEN $3 AND $4
		GROUP BY driver_id
	`

	rows, err := r.q.QueryContext(ctx, query, latMin, latMax, lngMin, lngMax, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []domain.DriverAvgPosition
	for rows.Next() {
		var pos domain.DriverAvgPosition
		if err := rows.Scan(&pos.DriverID, &pos.Lat, &pos.Lng, &pos.SeenAt); err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}
