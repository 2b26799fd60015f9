package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// UserRepository handles user dimension operations.
type UserRepository struct {
	q Querier
}

// Upsert inserts a user or, on conflict, overwrites the subscription level
// only. Level is mutable state and must reflect the most recently observed
// value; the remaining columns are kept as first seen. The conflict policy
// is declared in the statement so the store applies it atomically.
func (r *UserRepository) Upsert(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (user_id, first_name, last_name, gender, level)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			level = EXCLUDED.level
	`
	_, err := r.q.Exec(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Gender,
		user.Level,
	)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

// Get retrieves a user by ID.
func (r *UserRepository) Get(ctx context.Context, id int) (*User, error) {
	query := `
		SELECT user_id, first_name, last_name, gender, level
		FROM users
		WHERE user_id = $1
	`
	var user User
	err := r.q.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Gender,
		&user.Level,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}

// Count returns the number of user rows.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}
