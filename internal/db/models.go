package db

import "time"

// Song is one row of the songs dimension.
type Song struct {
	ID       string
	Title    string
	ArtistID string
	Year     int // 0 = unknown
	Duration float64
}

// Artist is one row of the artists dimension.
type Artist struct {
	ID        string
	Name      string
	Location  *string  // nullable
	Latitude  *float64 // nullable
	Longitude *float64 // nullable
}

// User is one row of the users dimension. Level is the most recently
// observed subscription level ("free" or "paid") for the user.
type User struct {
	ID        int
	FirstName string
	LastName  string
	Gender    string
	Level     string
}

// TimeRow is one row of the time dimension. All derived fields come from
// StartTime in UTC; Weekday follows time.Weekday (Sunday = 0).
type TimeRow struct {
	StartTime time.Time
	Hour      int
	Day       int
	Week      int
	Month     int
	Year      int
	Weekday   int
}

// Songplay is one row of the songplays fact table. SongID and ArtistID are
// nil when the dimension lookup found no unique match for the event.
type Songplay struct {
	ID        int64
	StartTime time.Time
	UserID    int
	Level     string
	SongID    *string // nullable
	ArtistID  *string // nullable
	SessionID int
	Location  string
	UserAgent string
}

// SongMatch is the result of resolving an event against the song and artist
// dimensions.
type SongMatch struct {
	SongID   string
	ArtistID string
}
