package etl

import (
	"context"
	"math"
	"time"

	"github.com/justestif/go-songplay-warehouse/internal/db"
)

// fakeStore is an in-memory stand-in for the warehouse tables. Batches stage
// their writes and apply them on Commit, mirroring the per-file transaction.
type fakeStore struct {
	songs   map[string]db.Song
	artists map[string]db.Artist
	users   map[int]db.User
	times   map[time.Time]db.TimeRow
	plays   []db.Songplay

	begun     int
	committed int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		songs:   make(map[string]db.Song),
		artists: make(map[string]db.Artist),
		users:   make(map[int]db.User),
		times:   make(map[time.Time]db.TimeRow),
	}
}

func (s *fakeStore) Begin(context.Context) (Batch, error) {
	s.begun++
	return &fakeBatch{store: s}, nil
}

// seedSong installs a committed song/artist pair for lookup tests.
func (s *fakeStore) seedSong(song db.Song, artist db.Artist) {
	s.songs[song.ID] = song
	s.artists[artist.ID] = artist
}

type fakeBatch struct {
	store   *fakeStore
	songs   []db.Song
	artists []db.Artist
	users   []db.User
	times   []db.TimeRow
	plays   []db.Songplay
}

func (b *fakeBatch) UpsertSong(_ context.Context, song *db.Song) error {
	b.songs = append(b.songs, *song)
	return nil
}

func (b *fakeBatch) UpsertArtist(_ context.Context, artist *db.Artist) error {
	b.artists = append(b.artists, *artist)
	return nil
}

func (b *fakeBatch) UpsertUser(_ context.Context, user *db.User) error {
	b.users = append(b.users, *user)
	return nil
}

func (b *fakeBatch) UpsertTime(_ context.Context, row *db.TimeRow) error {
	b.times = append(b.times, *row)
	return nil
}

func (b *fakeBatch) InsertSongplay(_ context.Context, play *db.Songplay) error {
	b.plays = append(b.plays, *play)
	return nil
}

// MatchSong reads committed dimension rows only, like the real lookup.
func (b *fakeBatch) MatchSong(_ context.Context, title, artistName string, duration, tolerance float64) (*db.SongMatch, error) {
	var matches []db.SongMatch
	for _, song := range b.store.songs {
		artist, ok := b.store.artists[song.ArtistID]
		if !ok {
			continue
		}
		if song.Title == title && artist.Name == artistName && math.Abs(song.Duration-duration) <= tolerance {
			matches = append(matches, db.SongMatch{SongID: song.ID, ArtistID: song.ArtistID})
		}
	}
	if len(matches) != 1 {
		return nil, nil
	}
	return &matches[0], nil
}

func (b *fakeBatch) Commit(context.Context) error {
	for _, song := range b.songs {
		if _, ok := b.store.songs[song.ID]; !ok {
			b.store.songs[song.ID] = song
		}
	}
	for _, artist := range b.artists {
		if _, ok := b.store.artists[artist.ID]; !ok {
			b.store.artists[artist.ID] = artist
		}
	}
	for _, user := range b.users {
		if existing, ok := b.store.users[user.ID]; ok {
			existing.Level = user.Level
			b.store.users[user.ID] = existing
		} else {
			b.store.users[user.ID] = user
		}
	}
	for _, row := range b.times {
		if _, ok := b.store.times[row.StartTime]; !ok {
			b.store.times[row.StartTime] = row
		}
	}
	b.store.plays = append(b.store.plays, b.plays...)
	b.store.committed++
	return nil
}

func (b *fakeBatch) Rollback(context.Context) error {
	return nil
}
