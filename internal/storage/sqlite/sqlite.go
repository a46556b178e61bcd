// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aanand-mishra/songs-api/internal/config"
	"github.com/aanand-mishra/songs-api/internal/storage"
	"github.com/aanand-mishra/songs-api/internal/types"

	_ "github.com/mattn/go-sqlite3"
)

// schema is idempotent and runs on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS artists (
		id         INTEGER  PRIMARY KEY AUTOINCREMENT,
		name       TEXT     NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS songs (
		id         INTEGER  PRIMARY KEY AUTOINCREMENT,
		title      TEXT     NOT NULL DEFAULT '',
		length     INTEGER  NOT NULL DEFAULT 0,
		play_count INTEGER  NOT NULL DEFAULT 0,
		artist_id  INTEGER  NOT NULL REFERENCES artists (id),
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS index_songs_on_artist_id ON songs (artist_id)`,
}

// dsnOptions turns on foreign key enforcement, waits on a locked
// database instead of failing at once, and makes write transactions take
// the write lock up front.
const dsnOptions = "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"

// SQLite is the concrete implementation of storage.Storage.
// A single *sql.DB is a connection pool and is safe for concurrent use.
type SQLite struct {
	Db *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New opens the SQLite database at cfg.Storage.Path, creates the tables
// if they do not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dsn(cfg.Storage.Path))
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite.New: create schema: %w", err)
		}
	}

	return &SQLite{Db: db}, nil
}

func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + dsnOptions
	}
	return path + "?" + dsnOptions
}

// now is truncated to microseconds so records round-trip identically
// through every backend.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.Db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.Db.Close()
}

func (s *SQLite) CreateArtist(ctx context.Context, name string) (types.Artist, error) {
	ts := now()
	result, err := s.Db.ExecContext(ctx,
		"INSERT INTO artists (name, created_at, updated_at) VALUES (?, ?, ?)",
		name, ts, ts,
	)
	if err != nil {
		return types.Artist{}, fmt.Errorf("CreateArtist: exec: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return types.Artist{}, fmt.Errorf("CreateArtist: last insert id: %w", err)
	}

	return types.Artist{ID: id, Name: name, CreatedAt: ts, UpdatedAt: ts}, nil
}

func (s *SQLite) GetArtistByID(ctx context.Context, id int64) (types.Artist, error) {
	var artist types.Artist
	err := s.Db.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM artists WHERE id = ? LIMIT 1", id,
	).Scan(&artist.ID, &artist.Name, &artist.CreatedAt, &artist.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Artist{}, fmt.Errorf("GetArtistByID: artist %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return types.Artist{}, fmt.Errorf("GetArtistByID: scan: %w", err)
	}

	return artist, nil
}

func (s *SQLite) GetArtists(ctx context.Context) ([]types.Artist, error) {
	rows, err := s.Db.QueryContext(ctx,
		"SELECT id, name, created_at, updated_at FROM artists ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("GetArtists: query: %w", err)
	}
	defer rows.Close()

	artists := make([]types.Artist, 0)
	for rows.Next() {
		var artist types.Artist
		if err := rows.Scan(&artist.ID, &artist.Name, &artist.CreatedAt, &artist.UpdatedAt); err != nil {
			return nil, fmt.Errorf("GetArtists: scan row: %w", err)
		}
		artists = append(artists, artist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetArtists: rows iteration: %w", err)
	}

	return artists, nil
}

// CreateSong checks the artist reference and inserts the song inside one
// transaction, so a concurrent artist change cannot slip in between.
func (s *SQLite) CreateSong(ctx context.Context, params types.SongParams) (types.Song, error) {
	if params.ArtistID == nil {
		return types.Song{}, storage.MissingArtist()
	}

	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return types.Song{}, fmt.Errorf("CreateSong: begin: %w", err)
	}
	defer tx.Rollback()

	if err := checkArtist(ctx, tx, *params.ArtistID); err != nil {
		return types.Song{}, err
	}

	var song types.Song
	params.Apply(&song)
	song.CreatedAt = now()
	song.UpdatedAt = song.CreatedAt

	result, err := tx.ExecContext(ctx,
		`INSERT INTO songs (title, length, play_count, artist_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		song.Title, song.Length, song.PlayCount, song.ArtistID, song.CreatedAt, song.UpdatedAt,
	)
	if err != nil {
		return types.Song{}, fmt.Errorf("CreateSong: exec: %w", err)
	}

	song.ID, err = result.LastInsertId()
	if err != nil {
		return types.Song{}, fmt.Errorf("CreateSong: last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Song{}, fmt.Errorf("CreateSong: commit: %w", err)
	}

	return song, nil
}

func (s *SQLite) GetSongByID(ctx context.Context, id int64) (types.Song, error) {
	song, err := getSong(ctx, s.Db, id)
	if err != nil {
		return types.Song{}, fmt.Errorf("GetSongByID: %w", err)
	}
	return song, nil
}

func (s *SQLite) GetSongs(ctx context.Context) ([]types.Song, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		`SELECT id, title, length, play_count, artist_id, created_at, updated_at
		 FROM songs ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("GetSongs: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetSongs: query: %w", err)
	}
	defer rows.Close()

	songs := make([]types.Song, 0)
	for rows.Next() {
		var song types.Song
		if err := rows.Scan(
			&song.ID,
			&song.Title,
			&song.Length,
			&song.PlayCount,
			&song.ArtistID,
			&song.CreatedAt,
			&song.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("GetSongs: scan row: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetSongs: rows iteration: %w", err)
	}

	return songs, nil
}

// UpdateSongByID reads, merges, re-checks the artist if it changed, and
// writes back, all in one transaction.
func (s *SQLite) UpdateSongByID(ctx context.Context, id int64, params types.SongParams) (types.Song, error) {
	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return types.Song{}, fmt.Errorf("UpdateSongByID: begin: %w", err)
	}
	defer tx.Rollback()

	song, err := getSong(ctx, tx, id)
	if err != nil {
		return types.Song{}, fmt.Errorf("UpdateSongByID: %w", err)
	}

	if params.Apply(&song) {
		if err := checkArtist(ctx, tx, song.ArtistID); err != nil {
			return types.Song{}, err
		}
	}
	song.UpdatedAt = now()

	_, err = tx.ExecContext(ctx,
		`UPDATE songs SET title = ?, length = ?, play_count = ?, artist_id = ?, updated_at = ?
		 WHERE id = ?`,
		song.Title, song.Length, song.PlayCount, song.ArtistID, song.UpdatedAt, id,
	)
	if err != nil {
		return types.Song{}, fmt.Errorf("UpdateSongByID: exec: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Song{}, fmt.Errorf("UpdateSongByID: commit: %w", err)
	}

	return song, nil
}

func (s *SQLite) DeleteSongByID(ctx context.Context, id int64) error {
	result, err := s.Db.ExecContext(ctx, "DELETE FROM songs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteSongByID: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteSongByID: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("DeleteSongByID: song %d: %w", id, storage.ErrNotFound)
	}

	return nil
}

func getSong(ctx context.Context, q querier, id int64) (types.Song, error) {
	var song types.Song
	err := q.QueryRowContext(ctx,
		`SELECT id, title, length, play_count, artist_id, created_at, updated_at
		 FROM songs WHERE id = ? LIMIT 1`, id,
	).Scan(
		&song.ID,
		&song.Title,
		&song.Length,
		&song.PlayCount,
		&song.ArtistID,
		&song.CreatedAt,
		&song.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Song{}, fmt.Errorf("song %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return types.Song{}, fmt.Errorf("scan song: %w", err)
	}
	return song, nil
}

// checkArtist returns a *storage.ValidationError when artistID does not
// reference an existing artist.
func checkArtist(ctx context.Context, q querier, artistID int64) error {
	var exists bool
	err := q.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM artists WHERE id = ?)", artistID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check artist: %w", err)
	}
	if !exists {
		return storage.MissingArtist()
	}
	return nil
}
