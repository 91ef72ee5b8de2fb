package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"transit/internal/domain"
	"transit/internal/repository"
)

// TransitRepository is a PostgreSQL implementation of repository.TransitRepository.
type TransitRepository struct {
	q Querier
}

// NewTransitRepository creates a new PostgreSQL transit repository.
func NewTransitRepository(db *sql.DB) *TransitRepository {
	return &TransitRepository{q: db}
}

// NewTransitRepositoryWithTx creates a transit repository using a transaction.
func NewTransitRepositoryWithTx(tx *sql.Tx) *TransitRepository {
	return &TransitRepository{q: tx}
}

const transitColumns = `id, status, client_id, pickup_id, destination_id, car_class, assigned_driver_id, proposed_driver_ids, awaiting_responses, distance_km, price, driver_fee, requested_at, published_at, accepted_at, started_at, completed_at`

// Create persists a new transit.
func (r *TransitRepository) Create(ctx context.Context, transit *domain.Transit) error {
	query := `
		INSERT INTO transits (` + transitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.q.ExecContext(ctx, query,
		transit.ID,
		transit.Status,
		transit.ClientID,
		transit.PickupID,
		transit.DestinationID,
		nullString(transit.CarClass),
		nullString(transit.AssignedDriverID),
		pq.Array(transit.ProposedDriverIDs),
		transit.AwaitingResponses,
		transit.DistanceKm,
		transit.Price,
		transit.DriverFee,
		transit.RequestedAt,
		nullTime(transit.PublishedAt),
		nullTime(transit.AcceptedAt),
		nullTime(transit.StartedAt),
		nullTime(transit.CompletedAt),
	)

	return err
}

// GetByID retrieves a transit by ID.
func (r *TransitRepository) GetByID(ctx context.Context, id string) (*domain.Transit, error) {
	query := `SELECT ` + transitColumns + ` FROM transits WHERE id = $1`

	transit, err := scanTransit(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return transit, nil
}

// Update updates an existing transit, including its proposed-driver set.
func (r *TransitRepository) Update(ctx context.Context, transit *domain.Transit) error {
	query := `
		UPDATE transits
		SET status = $2,
		    destination_id = $3,
		    assigned_driver_id = $4,
		    proposed_driver_ids = $5,
		    awaiting_responses = $6,
		    distance_km = $7,
		    price = $8,
		    driver_fee = $9,
		    pickup_id = $10,
		    published_at = $11,
		    accepted_at = $12,
		    started_at = $13,
		    completed_at = $14
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		transit.ID,
		transit.Status,
		transit.DestinationID,
		nullString(transit.AssignedDriverID),
		pq.Array(transit.ProposedDriverIDs),
		transit.AwaitingResponses,
		transit.DistanceKm,
		transit.Price,
		transit.DriverFee,
		transit.PickupID,
		nullTime(transit.PublishedAt),
		nullTime(transit.AcceptedAt),
		nullTime(transit.StartedAt),
		nullTime(transit.CompletedAt),
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetAll retrieves all transits.
func (r *TransitRepository) GetAll(ctx context.Context) ([]*domain.Transit, error) {
	query := `SELECT ` + transitColumns + ` FROM transits ORDER BY requested_at`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transits []*domain.Transit
	for rows.Next() {
		transit, err := scanTransit(rows)
		if err != nil {
			return nil, err
		}
		transits = append(transits, transit)
	}
	return transits, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransit(row rowScanner) (*domain.Transit, error) {
	var transit domain.Transit
	var carClass, assignedDriverID sql.NullString
	var publishedAt, acceptedAt, startedAt, completedAt sql.NullTime

	err := row.Scan(
		&transit.ID,
		&transit.Status,
		&transit.ClientID,
		&transit.PickupID,
		&transit.DestinationID,
		&carClass,
		&assignedDriverID,
		pq.Array(&transit.ProposedDriverIDs),
		&transit.AwaitingResponses,
		&transit.DistanceKm,
		&transit.Price,
		&transit.DriverFee,
		&transit.RequestedAt,
		&publishedAt,
		&acceptedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if carClass.Valid {
		transit.CarClass = carClass.String
	}
	if assignedDriverID.Valid {
		transit.AssignedDriverID = assignedDriverID.String
	}
	if publishedAt.Valid {
		transit.PublishedAt = publishedAt.Time
	}
	if acceptedAt.Valid {
		transit.AcceptedAt = acceptedAt.Time
	}
	if startedAt.Valid {
		transit.StartedAt = startedAt.Time
	}
	if completedAt.Valid {
		transit.CompletedAt = completedAt.Time
	}

	return &transit, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
