package postgres

import (
	"context"
	"database/sql"
	"errors"

	"transit/internal/domain"
	"transit/internal/repository"
)

// AddressRepository is a PostgreSQL implementation of repository.AddressRepository.
type AddressRepository struct {
	q Querier
}

// NewAddressRepository creates a new PostgreSQL address repository.
func NewAddressRepository(db *sql.DB) *AddressRepository {
	return &AddressRepository{q: db}
}

// Create persists a new address.
func (r *AddressRepository) Create(ctx context.Context, address *domain.Address) error {
	query := `
		INSERT INTO addresses (id, country, city, street, building_number, lat, lng, resolved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		address.ID,
		address.Country,
		address.City,
		address.Street,
		address.BuildingNumber,
		address.Lat,
		address.Lng,
		address.Resolved,
	)
	return err
}

// GetByID retrieves an address by ID.
func (r *AddressRepository) GetByID(ctx context.Context, id string) (*domain.Address, error) {
	query := `
		SELECT id, country, city, street, building_number, lat, lng, resolved
		FROM addresses WHERE id = $1
	`

	var address domain.Address
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&address.ID,
		&address.Country,
		&address.City,
		&address.Street,
		&address.BuildingNumber,
		&address.Lat,
		&address.Lng,
		&address.Resolved,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &address, nil
}

// Update updates an address.
func (r *AddressRepository) Update(ctx context.Context, address *domain.Address) error {
	query := `
		UPDATE addresses
		SET country = $2, city = $3, street = $4, building_number = $5, lat = $6, lng = $7, resolved = $8
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		address.ID,
		address.Country,
		address.City,
		address.Street,
		address.BuildingNumber,
		address.Lat,
		address.Lng,
		address.Resolved,
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
