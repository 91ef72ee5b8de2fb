package postgres

import (
	"context"
	"database/sql"
	"errors"

	"transit/internal/domain"
	"transit/internal/repository"
)

// CarTypeRepository is a PostgreSQL implementation of repository.CarTypeRepository.
type CarTypeRepository struct {
	q Querier
}

// NewCarTypeRepository creates a new PostgreSQL car type repository.
func NewCarTypeRepository(db *sql.DB) *CarTypeRepository {
	return &CarTypeRepository{q: db}
}

// Upsert creates or replaces a car type.
func (r *CarTypeRepository) Upsert(ctx context.Context, carType *domain.CarType) error {
	query := `
		INSERT INTO car_types (class, description, active)
		VALUES ($1, $2, $3)
		ON CONFLICT (class) DO UPDATE SET description = $2, active = $3
	`

	_, err := r.q.ExecContext(ctx, query, carType.Class, carType.Description, carType.Active)
	return err
}

// GetByClass retrieves a car type by class identifier.
func (r *CarTypeRepository) GetByClass(ctx context.Context, class string) (*domain.CarType, error) {
	query := `SELECT class, description, active FROM car_types WHERE class = $1`

	var carType domain.CarType
	err := r.q.QueryRowContext(ctx, query, class).Scan(&carType.Class, &carType.Description, &carType.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &carType, nil
}

// FindActiveClasses returns the identifiers of all active classes.
func (r *CarTypeRepository) FindActiveClasses(ctx context.Context) ([]string, error) {
	query := `SELECT class FROM car_types WHERE active = TRUE ORDER BY class`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []string
	for rows.Next() {
		var class string
		if err := rows.Scan(&class); err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, rows.Err()
}
