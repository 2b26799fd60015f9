package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ArtistRepository handles artist dimension operations.
type ArtistRepository struct {
	q Querier
}

// Upsert inserts an artist, leaving any existing row untouched.
func (r *ArtistRepository) Upsert(ctx context.Context, artist *Artist) error {
	query := `
		INSERT INTO artists (artist_id, name, location, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (artist_id) DO NOTHING
	`
	_, err := r.q.Exec(ctx, query,
		artist.ID,
		artist.Name,
		artist.Location,
		artist.Latitude,
		artist.Longitude,
	)
	if err != nil {
		return fmt.Errorf("upserting artist: %w", err)
	}
	return nil
}

// Get retrieves an artist by ID.
func (r *ArtistRepository) Get(ctx context.Context, id string) (*Artist, error) {
	query := `
		SELECT artist_id, name, location, latitude, longitude
		FROM artists
		WHERE artist_id = $1
	`
	var artist Artist
	err := r.q.QueryRow(ctx, query, id).Scan(
		&artist.ID,
		&artist.Name,
		&artist.Location,
		&artist.Latitude,
		&artist.Longitude,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying artist: %w", err)
	}
	return &artist, nil
}

// Count returns the number of artist rows.
func (r *ArtistRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM artists`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting artists: %w", err)
	}
	return n, nil
}
