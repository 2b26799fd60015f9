// Package etl transforms song metadata and user activity log files into the
// songplay star schema.
package etl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/justestif/go-songplay-warehouse/internal/db"
)

// Batch is the per-file transactional store handle the transformers write
// through. All rows of one input file go into one Batch; the driver commits
// it only after the whole file succeeds.
type Batch interface {
	UpsertSong(ctx context.Context, song *db.Song) error
	UpsertArtist(ctx context.Context, artist *db.Artist) error
	UpsertUser(ctx context.Context, user *db.User) error
	UpsertTime(ctx context.Context, row *db.TimeRow) error
	InsertSongplay(ctx context.Context, play *db.Songplay) error
	MatchSong(ctx context.Context, title, artistName string, duration, tolerance float64) (*db.SongMatch, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Database opens Batches. It is the driver's only view of the store.
type Database interface {
	Begin(ctx context.Context) (Batch, error)
}

// NewDatabase adapts a *db.DB to the Database interface.
func NewDatabase(d *db.DB) Database {
	return pgDatabase{d}
}

type pgDatabase struct {
	db *db.DB
}

func (p pgDatabase) Begin(ctx context.Context) (Batch, error) {
	return p.db.Begin(ctx)
}

// Processor transforms one input file into rows on the batch.
type Processor func(ctx context.Context, batch Batch, path string) error

// Driver walks one record-type directory and loads it file by file, one
// commit per file. Any processor error aborts the run; files committed
// before the failure stay committed.
type Driver struct {
	database  Database
	listFiles FileLister
	logger    *slog.Logger
	clock     clockwork.Clock
}

// Option configures a Driver.
type Option func(*Driver)

// WithFileLister replaces the default recursive .json discovery.
func WithFileLister(l FileLister) Option {
	return func(d *Driver) {
		d.listFiles = l
	}
}

// WithClock replaces the time source used for run timing.
func WithClock(c clockwork.Clock) Option {
	return func(d *Driver) {
		d.clock = c
	}
}

// NewDriver creates a file driver.
func NewDriver(database Database, logger *slog.Logger, opts ...Option) *Driver {
	d := &Driver{
		database:  database,
		listFiles: ListJSONFiles,
		logger:    logger,
		clock:     clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run discovers every data file under root and applies process to each, in
// listing order. Each file's rows are committed as a unit before the next
// file starts.
func (d *Driver) Run(ctx context.Context, root string, process Processor) error {
	files, err := d.listFiles(root)
	if err != nil {
		return fmt.Errorf("listing files in %s: %w", root, err)
	}
	d.logger.Info("files found", "count", len(files), "dir", root)

	start := d.clock.Now()
	for i, path := range files {
		if err := d.processFile(ctx, path, process); err != nil {
			return err
		}
		d.logger.Info("file processed", "processed", i+1, "total", len(files), "file", path)
	}
	d.logger.Info("directory loaded", "dir", root, "files", len(files), "elapsed", d.clock.Since(start))
	return nil
}

func (d *Driver) processFile(ctx context.Context, path string, process Processor) error {
	batch, err := d.database.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = batch.Rollback(ctx)
	}()

	if err := process(ctx, batch, path); err != nil {
		return err
	}
	return batch.Commit(ctx)
}
