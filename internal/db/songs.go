package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SongRepository handles song dimension operations.
type SongRepository struct {
	q Querier
}

// Upsert inserts a song, leaving any existing row untouched. Songs are
// immutable once first seen, so a conflicting insert is a no-op.
func (r *SongRepository) Upsert(ctx context.Context, song *Song) error {
	query := `
		INSERT INTO songs (song_id, title, artist_id, year, duration)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (song_id) DO NOTHING
	`
	_, err := r.q.Exec(ctx, query,
		song.ID,
		song.Title,
		song.ArtistID,
		song.Year,
		song.Duration,
	)
	if err != nil {
		return fmt.Errorf("upserting song: %w", err)
	}
	return nil
}

// Get retrieves a song by ID.
func (r *SongRepository) Get(ctx context.Context, id string) (*Song, error) {
	query := `
		SELECT song_id, title, artist_id, year, duration
		FROM songs
		WHERE song_id = $1
	`
	var song Song
	err := r.q.QueryRow(ctx, query, id).Scan(
		&song.ID,
		&song.Title,
		&song.ArtistID,
		&song.Year,
		&song.Duration,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying song: %w", err)
	}
	return &song, nil
}

// Match resolves an event's song and artist identifiers by equality join:
// song title, artist name, and duration within tolerance seconds (tolerance
// 0 means exact equality). Exactly one matching row yields a SongMatch; zero
// or multiple rows yield nil. An ambiguous join is treated as no match
// rather than trusting row order.
func (r *SongRepository) Match(ctx context.Context, title, artistName string, duration, tolerance float64) (*SongMatch, error) {
	query := `
		SELECT s.song_id, s.artist_id
		FROM songs s
		JOIN artists a ON s.artist_id = a.artist_id
		WHERE s.title = $1 AND a.name = $2 AND abs(s.duration - $3) <= $4
		LIMIT 2
	`
	rows, err := r.q.Query(ctx, query, title, artistName, duration, tolerance)
	if err != nil {
		return nil, fmt.Errorf("querying song match: %w", err)
	}
	defer rows.Close()

	var matches []SongMatch
	for rows.Next() {
		var m SongMatch
		if err := rows.Scan(&m.SongID, &m.ArtistID); err != nil {
			return nil, fmt.Errorf("scanning song match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading song matches: %w", err)
	}

	if len(matches) != 1 {
		return nil, nil
	}
	return &matches[0], nil
}

// Count returns the number of song rows.
func (r *SongRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM songs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting songs: %w", err)
	}
	return n, nil
}
