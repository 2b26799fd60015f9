// Package db provides PostgreSQL database access for the songplay warehouse.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Common errors.
var (
	ErrNotFound = errors.New("not found")
)

// Querier is the subset of pgx operations the repositories need. It is
// satisfied by both *pgxpool.Pool and pgx.Tx, so the same repository code
// runs against the pool or inside a per-file transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Pool returns the underlying connection pool for advanced operations.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Songs returns a SongRepository backed by the pool.
func (db *DB) Songs() *SongRepository {
	return &SongRepository{q: db.pool}
}

// Artists returns an ArtistRepository backed by the pool.
func (db *DB) Artists() *ArtistRepository {
	return &ArtistRepository{q: db.pool}
}

// Users returns a UserRepository backed by the pool.
func (db *DB) Users() *UserRepository {
	return &UserRepository{q: db.pool}
}

// Times returns a TimeRepository backed by the pool.
func (db *DB) Times() *TimeRepository {
	return &TimeRepository{q: db.pool}
}

// Songplays returns a SongplayRepository backed by the pool.
func (db *DB) Songplays() *SongplayRepository {
	return &SongplayRepository{q: db.pool}
}

// Begin opens a transaction and returns it wrapped as a Batch. The caller
// owns the transaction: every Batch must end in Commit or Rollback.
func (db *DB) Begin(ctx context.Context) (*Batch, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &Batch{tx: tx}, nil
}

// Batch is one transactional unit of warehouse writes. The file driver holds
// one Batch per input file and commits it after the whole file succeeds.
type Batch struct {
	tx pgx.Tx
}

// Commit commits the batch's transaction.
func (b *Batch) Commit(ctx context.Context) error {
	if err := b.tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

// Rollback rolls the batch's transaction back. Calling it after a successful
// Commit is a harmless no-op, so it is safe to defer.
func (b *Batch) Rollback(ctx context.Context) error {
	err := b.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rolling back batch: %w", err)
	}
	return nil
}

// UpsertSong inserts a song dimension row inside the batch.
func (b *Batch) UpsertSong(ctx context.Context, song *Song) error {
	return (&SongRepository{q: b.tx}).Upsert(ctx, song)
}

// UpsertArtist inserts an artist dimension row inside the batch.
func (b *Batch) UpsertArtist(ctx context.Context, artist *Artist) error {
	return (&ArtistRepository{q: b.tx}).Upsert(ctx, artist)
}

// UpsertUser inserts or updates a user dimension row inside the batch.
func (b *Batch) UpsertUser(ctx context.Context, user *User) error {
	return (&UserRepository{q: b.tx}).Upsert(ctx, user)
}

// UpsertTime inserts a time dimension row inside the batch.
func (b *Batch) UpsertTime(ctx context.Context, row *TimeRow) error {
	return (&TimeRepository{q: b.tx}).Upsert(ctx, row)
}

// InsertSongplay appends a songplay fact row inside the batch.
func (b *Batch) InsertSongplay(ctx context.Context, play *Songplay) error {
	return (&SongplayRepository{q: b.tx}).Insert(ctx, play)
}

// MatchSong resolves song/artist identifiers inside the batch. See
// SongRepository.Match for the matching contract.
func (b *Batch) MatchSong(ctx context.Context, title, artistName string, duration, tolerance float64) (*SongMatch, error) {
	return (&SongRepository{q: b.tx}).Match(ctx, title, artistName, duration, tolerance)
}
