package etl

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/justestif/go-songplay-warehouse/internal/db"
)

// pageNextSong marks a play event in the activity logs. Every other page
// value (Home, Login, Logout, ...) is discarded before validation.
const pageNextSong = "NextSong"

// maxLineBytes bounds a single log line; the longest observed lines are a
// few KB of user agent and location text.
const maxLineBytes = 1 << 20

// flexInt decodes a JSON integer that the log files encode either as a
// number or as a quoted string. A value that is absent, empty, or not an
// integer leaves the field invalid; validation happens after the page
// filter so junk on discarded events never fails a run.
type flexInt struct {
	value int
	valid bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	f.value = v
	f.valid = true
	return nil
}

// logEvent mirrors one activity log line.
type logEvent struct {
	Page      string  `json:"page"`
	TS        int64   `json:"ts"`
	UserID    flexInt `json:"userId"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Gender    string  `json:"gender"`
	Level     string  `json:"level"`
	Song      string  `json:"song"`
	Artist    string  `json:"artist"`
	Length    float64 `json:"length"`
	SessionID int     `json:"sessionId"`
	Location  string  `json:"location"`
	UserAgent string  `json:"userAgent"`
}

// EventProcessor loads user activity log files (NDJSON, one event per line).
type EventProcessor struct {
	tolerance float64
}

// EventOption configures an EventProcessor.
type EventOption func(*EventProcessor)

// WithDurationTolerance sets the slack, in seconds, allowed between a song's
// stored duration and an event's length during dimension lookup. The default
// of zero requires exact equality.
func WithDurationTolerance(seconds float64) EventOption {
	return func(p *EventProcessor) {
		p.tolerance = seconds
	}
}

// NewEventProcessor creates an event log processor.
func NewEventProcessor(opts ...EventOption) *EventProcessor {
	p := &EventProcessor{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process is the Processor for activity log files. Retained events are
// written in foreign-key dependency order: all time rows, then all user
// rows, then one songplay fact per event.
func (p *EventProcessor) Process(ctx context.Context, batch Batch, path string) error {
	events, err := p.readEvents(path)
	if err != nil {
		return err
	}

	for _, ev := range events {
		if err := batch.UpsertTime(ctx, timeRowFromMillis(ev.TS)); err != nil {
			return err
		}
	}

	for _, ev := range events {
		user := &db.User{
			ID:        ev.UserID.value,
			FirstName: ev.FirstName,
			LastName:  ev.LastName,
			Gender:    ev.Gender,
			Level:     ev.Level,
		}
		if err := batch.UpsertUser(ctx, user); err != nil {
			return err
		}
	}

	for _, ev := range events {
		match, err := batch.MatchSong(ctx, ev.Song, ev.Artist, ev.Length, p.tolerance)
		if err != nil {
			return err
		}

		play := &db.Songplay{
			StartTime: time.UnixMilli(ev.TS).UTC(),
			UserID:    ev.UserID.value,
			Level:     ev.Level,
			SessionID: ev.SessionID,
			Location:  ev.Location,
			UserAgent: ev.UserAgent,
		}
		if match != nil {
			play.SongID = &match.SongID
			play.ArtistID = &match.ArtistID
		}
		if err := batch.InsertSongplay(ctx, play); err != nil {
			return err
		}
	}
	return nil
}

// readEvents parses the file and returns the play events, already filtered
// and validated. Blank lines are skipped; a malformed line or a play event
// missing ts or userId is a ParseError.
func (p *EventProcessor) readEvents(path string) ([]logEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	var (
		events []logEvent
		line   int
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var ev logEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, &ParseError{Path: path, Line: line, Err: err}
		}
		if ev.Page != pageNextSong {
			continue
		}
		if ev.TS <= 0 {
			return nil, &ParseError{Path: path, Line: line, Err: errors.New("missing or invalid ts")}
		}
		if !ev.UserID.valid {
			return nil, &ParseError{Path: path, Line: line, Err: errors.New("missing or invalid userId")}
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log file %s: %w", path, err)
	}
	return events, nil
}

// timeRowFromMillis derives the time dimension fields from a millisecond
// epoch timestamp, in UTC. Week is the ISO week number; Weekday follows
// time.Weekday (Sunday = 0).
func timeRowFromMillis(ms int64) *db.TimeRow {
	t := time.UnixMilli(ms).UTC()
	_, week := t.ISOWeek()
	return &db.TimeRow{
		StartTime: t,
		Hour:      t.Hour(),
		Day:       t.Day(),
		Week:      week,
		Month:     int(t.Month()),
		Year:      t.Year(),
		Weekday:   int(t.Weekday()),
	}
}
