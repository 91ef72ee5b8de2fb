package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"transit/internal/domain"
	"transit/internal/repository"
)

// SessionRepository is a PostgreSQL implementation of repository.SessionRepository.
type SessionRepository struct {
	q Querier
}

// NewSessionRepository creates a new PostgreSQL session repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{q: db}
}

// Create persists a new session.
func (r *SessionRepository) Create(ctx context.Context, session *domain.DriverSession) error {
	query := `
		INSERT INTO driver_sessions (id, driver_id, car_class, logged_in_at, logged_out_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.ExecContext(ctx, query,
		session.ID,
		session.DriverID,
		session.CarClass,
		session.LoggedInAt,
		nullTime(session.LoggedOutAt),
	)
	return err
}

// GetActiveByDriverID retrieves the driver's current logged-in session.
func (r *SessionRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.DriverSession, error) {
	query := `
		SELECT id, driver_id, car_class, logged_in_at, logged_out_at
		FROM driver_sessions
		WHERE driver_id = $1 AND logged_out_at IS NULL
		ORDER BY logged_in_at DESC
		LIMIT 1
	`

	var session domain.DriverSession
	var loggedOutAt sql.NullTime
	err := r.q.QueryRowContext(ctx, query, driverID).Scan(
		&session.ID,
		&session.DriverID,
		&session.CarClass,
		&session.LoggedInAt,
		&loggedOutAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if loggedOutAt.Valid {
		session.LoggedOutAt = loggedOutAt.Time
	}
	return &session, nil
}

// Update updates an existing session.
func (r *SessionRepository) Update(ctx context.Context, session *domain.DriverSession) error {
	query := `UPDATE driver_sessions SET logged_out_at = $2 WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, session.ID, nullTime(session.LoggedOutAt))
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

// FindActiveDriverIDs returns the subset of driverIDs holding an active
// session in one of the given car classes.
func (r *SessionRepository) FindActiveDriverIDs(ctx context.Context, driverIDs []string, carClasses []string) ([]string, error) {
	query := `
		SELECT DISTINCT driver_id
		FROM driver_sessions
		WHERE logged_out_at IS NULL
		  AND driver_id = ANY($1)
		  AND car_class = ANY($2)
	`

	rows, err := r.q.QueryContext(ctx, query, pq.Array(driverIDs), pq.Array(carClasses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
