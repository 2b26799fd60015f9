package db

import (
	"context"
	"fmt"
)

// SongplayRepository handles songplay fact operations.
type SongplayRepository struct {
	q Querier
}

// Insert appends one songplay fact row. Facts are append-only: every
// qualifying event is a distinct occurrence, so there is no conflict policy
// and the sequence assigns the identity.
func (r *SongplayRepository) Insert(ctx context.Context, play *Songplay) error {
	query := `
		INSERT INTO songplays (start_time, user_id, level, song_id, artist_id, session_id, location, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING songplay_id
	`
	err := r.q.QueryRow(ctx, query,
		play.StartTime,
		play.UserID,
		play.Level,
		play.SongID,
		play.ArtistID,
		play.SessionID,
		play.Location,
		play.UserAgent,
	).Scan(&play.ID)
	if err != nil {
		return fmt.Errorf("inserting songplay: %w", err)
	}
	return nil
}

// Count returns the number of songplay rows.
func (r *SongplayRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM songplays`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting songplays: %w", err)
	}
	return n, nil
}

// ListByUser retrieves a user's songplays in insertion order.
func (r *SongplayRepository) ListByUser(ctx context.Context, userID int) ([]Songplay, error) {
	query := `
		SELECT songplay_id, start_time, user_id, level, song_id, artist_id, session_id, location, user_agent
		FROM songplays
		WHERE user_id = $1
		ORDER BY songplay_id
	`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying songplays: %w", err)
	}
	defer rows.Close()

	var plays []Songplay
	for rows.Next() {
		var play Songplay
		if err := rows.Scan(
			&play.ID,
			&play.StartTime,
			&play.UserID,
			&play.Level,
			&play.SongID,
			&play.ArtistID,
			&play.SessionID,
			&play.Location,
			&play.UserAgent,
		); err != nil {
			return nil, fmt.Errorf("scanning songplay: %w", err)
		}
		plays = append(plays, play)
	}
	return plays, rows.Err()
}
