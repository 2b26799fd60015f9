package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// TimeRepository handles time dimension operations.
type TimeRepository struct {
	q Querier
}

// Upsert inserts a time row, leaving any existing row untouched. The same
// timestamp routinely appears across event batches; the derived fields are
// deterministic, so the first insert wins.
func (r *TimeRepository) Upsert(ctx context.Context, row *TimeRow) error {
	query := `
		INSERT INTO time (start_time, hour, day, week, month, year, weekday)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (start_time) DO NOTHING
	`
	_, err := r.q.Exec(ctx, query,
		row.StartTime,
		row.Hour,
		row.Day,
		row.Week,
		row.Month,
		row.Year,
		row.Weekday,
	)
	if err != nil {
		return fmt.Errorf("upserting time row: %w", err)
	}
	return nil
}

// Get retrieves a time row by timestamp.
func (r *TimeRepository) Get(ctx context.Context, startTime time.Time) (*TimeRow, error) {
	query := `
		SELECT start_time, hour, day, week, month, year, weekday
		FROM time
		WHERE start_time = $1
	`
	var row TimeRow
	err := r.q.QueryRow(ctx, query, startTime).Scan(
		&row.StartTime,
		&row.Hour,
		&row.Day,
		&row.Week,
		&row.Month,
		&row.Year,
		&row.Weekday,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying time row: %w", err)
	}
	return &row, nil
}

// Count returns the number of time rows.
func (r *TimeRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM time`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting time rows: %w", err)
	}
	return n, nil
}
