package etl

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/justestif/go-songplay-warehouse/internal/db"
)

// songRecord mirrors one song metadata JSON object. Each file holds exactly
// one record.
type songRecord struct {
	SongID          string   `json:"song_id"`
	Title           string   `json:"title"`
	ArtistID        string   `json:"artist_id"`
	ArtistName      string   `json:"artist_name"`
	ArtistLocation  string   `json:"artist_location"`
	ArtistLatitude  *float64 `json:"artist_latitude"`
	ArtistLongitude *float64 `json:"artist_longitude"`
	Year            int      `json:"year"`
	Duration        float64  `json:"duration"`
}

// ProcessSongFile is the Processor for song metadata files. It upserts the
// artist row first, then the song row referencing it. Both upserts leave
// existing rows untouched, so reloading a file is a no-op.
func ProcessSongFile(ctx context.Context, batch Batch, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading song file: %w", err)
	}

	var rec songRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return &ParseError{Path: path, Err: err}
	}
	if rec.SongID == "" {
		return &ParseError{Path: path, Err: errMissingField("song_id")}
	}
	if rec.ArtistID == "" {
		return &ParseError{Path: path, Err: errMissingField("artist_id")}
	}

	artist := &db.Artist{
		ID:        rec.ArtistID,
		Name:      rec.ArtistName,
		Location:  nilIfEmpty(rec.ArtistLocation),
		Latitude:  rec.ArtistLatitude,
		Longitude: rec.ArtistLongitude,
	}
	if err := batch.UpsertArtist(ctx, artist); err != nil {
		return err
	}

	song := &db.Song{
		ID:       rec.SongID,
		Title:    rec.Title,
		ArtistID: rec.ArtistID,
		Year:     rec.Year,
		Duration: rec.Duration,
	}
	return batch.UpsertSong(ctx, song)
}

func errMissingField(name string) error {
	return fmt.Errorf("missing required field %q", name)
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
