package postgres

import (
	"context"
	"database/sql"
	"errors"

	"transit/internal/domain"
	"transit/internal/repository"
)

// FeeRepository is a PostgreSQL implementation of repository.FeeRepository.
type FeeRepository struct {
	q Querier
}

// NewFeeRepository creates a new PostgreSQL fee repository.
func NewFeeRepository(db *sql.DB) *FeeRepository {
	return &FeeRepository{q: db}
}

// Upsert creates or replaces a driver's fee schedule.
func (r *FeeRepository) Upsert(ctx context.Context, schedule *domain.DriverFeeSchedule) error {
	query := `
		INSERT INTO driver_fee_schedules (driver_id, fee_type, amount, min_fee)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (driver_id) DO UPDATE SET fee_type = $2, amount = $3, min_fee = $4
	`

	_, err := r.q.ExecContext(ctx, query, schedule.DriverID, schedule.FeeType, schedule.Amount, schedule.MinFee)
	return err
}

// GetByDriverID retrieves the fee schedule for a driver.
func (r *FeeRepository) GetByDriverID(ctx context.Context, driverID string) (*domain.DriverFeeSchedule, error) {
	query := `SELECT driver_id, fee_type, amount, min_fee FROM driver_fee_schedules WHERE driver_id = $1`

	var schedule domain.DriverFeeSchedule
	err := r.q.QueryRowContext(ctx, query, driverID).Scan(
		&schedule.DriverID,
		&schedule.FeeType,
		&schedule.Amount,
		&schedule.MinFee,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &schedule, nil
}
