// Package postgres provides a PostgreSQL implementation of
// storage.Storage on top of a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aanand-mishra/songs-api/internal/config"
	"github.com/aanand-mishra/songs-api/internal/storage"
	"github.com/aanand-mishra/songs-api/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS artists (
	id         BIGSERIAL   PRIMARY KEY,
	name       TEXT        NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS songs (
	id         BIGSERIAL   PRIMARY KEY,
	title      TEXT        NOT NULL DEFAULT '',
	length     INTEGER     NOT NULL DEFAULT 0,
	play_count INTEGER     NOT NULL DEFAULT 0,
	artist_id  BIGINT      NOT NULL REFERENCES artists (id),
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS index_songs_on_artist_id ON songs (artist_id);
`

const songColumns = "id, title, length, play_count, artist_id, created_at, updated_at"

// Postgres wraps a PostgreSQL connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// New creates a connection pool for cfg.Storage.URL, verifies it, and
// creates the tables if needed.
func New(ctx context.Context, cfg *config.Config) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Storage.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Pool returns the underlying connection pool.
func (p *Postgres) Pool() *pgxpool.Pool {
	return p.pool
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (p *Postgres) CreateArtist(ctx context.Context, name string) (types.Artist, error) {
	artist := types.Artist{Name: name, CreatedAt: now()}
	artist.UpdatedAt = artist.CreatedAt

	err := p.pool.QueryRow(ctx,
		`INSERT INTO artists (name, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id`,
		artist.Name, artist.CreatedAt, artist.UpdatedAt,
	).Scan(&artist.ID)
	if err != nil {
		return types.Artist{}, fmt.Errorf("inserting artist: %w", err)
	}
	return artist, nil
}

func (p *Postgres) GetArtistByID(ctx context.Context, id int64) (types.Artist, error) {
	var artist types.Artist
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM artists WHERE id = $1`, id,
	).Scan(&artist.ID, &artist.Name, &artist.CreatedAt, &artist.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Artist{}, fmt.Errorf("artist %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return types.Artist{}, fmt.Errorf("querying artist: %w", err)
	}
	return artist, nil
}

func (p *Postgres) GetArtists(ctx context.Context) ([]types.Artist, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM artists ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying artists: %w", err)
	}
	defer rows.Close()

	artists := make([]types.Artist, 0)
	for rows.Next() {
		var artist types.Artist
		if err := rows.Scan(&artist.ID, &artist.Name, &artist.CreatedAt, &artist.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning artist: %w", err)
		}
		artists = append(artists, artist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating artists: %w", err)
	}
	return artists, nil
}

func (p *Postgres) CreateSong(ctx context.Context, params types.SongParams) (types.Song, error) {
	if params.ArtistID == nil {
		return types.Song{}, storage.MissingArtist()
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return types.Song{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// FOR SHARE keeps the artist row from being deleted before commit.
	if err := checkArtist(ctx, tx, *params.ArtistID); err != nil {
		return types.Song{}, err
	}

	var song types.Song
	params.Apply(&song)
	song.CreatedAt = now()
	song.UpdatedAt = song.CreatedAt

	err = tx.QueryRow(ctx,
		`INSERT INTO songs (title, length, play_count, artist_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		song.Title, song.Length, song.PlayCount, song.ArtistID, song.CreatedAt, song.UpdatedAt,
	).Scan(&song.ID)
	if err != nil {
		return types.Song{}, fmt.Errorf("inserting song: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Song{}, fmt.Errorf("committing song: %w", err)
	}
	return song, nil
}

func (p *Postgres) GetSongByID(ctx context.Context, id int64) (types.Song, error) {
	return getSong(ctx, p.pool, id, "")
}

func (p *Postgres) GetSongs(ctx context.Context) ([]types.Song, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+songColumns+` FROM songs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying songs: %w", err)
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
			return nil, fmt.Errorf("scanning song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating songs: %w", err)
	}
	return songs, nil
}

func (p *Postgres) UpdateSongByID(ctx context.Context, id int64, params types.SongParams) (types.Song, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return types.Song{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	song, err := getSong(ctx, tx, id, " FOR UPDATE")
	if err != nil {
		return types.Song{}, err
	}

	if params.Apply(&song) {
		if err := checkArtist(ctx, tx, song.ArtistID); err != nil {
			return types.Song{}, err
		}
	}
	song.UpdatedAt = now()

	_, err = tx.Exec(ctx,
		`UPDATE songs SET title = $1, length = $2, play_count = $3, artist_id = $4, updated_at = $5
		 WHERE id = $6`,
		song.Title, song.Length, song.PlayCount, song.ArtistID, song.UpdatedAt, id,
	)
	if err != nil {
		return types.Song{}, fmt.Errorf("updating song: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return types.Song{}, fmt.Errorf("committing song: %w", err)
	}
	return song, nil
}

func (p *Postgres) DeleteSongByID(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting song: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("song %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getSong(ctx context.Context, q querier, id int64, lock string) (types.Song, error) {
	var song types.Song
	err := q.QueryRow(ctx,
		`SELECT `+songColumns+` FROM songs WHERE id = $1`+lock, id,
	).Scan(
		&song.ID,
		&song.Title,
		&song.Length,
		&song.PlayCount,
		&song.ArtistID,
		&song.CreatedAt,
		&song.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Song{}, fmt.Errorf("song %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return types.Song{}, fmt.Errorf("querying song: %w", err)
	}
	return song, nil
}

func checkArtist(ctx context.Context, q querier, artistID int64) error {
	var id int64
	err := q.QueryRow(ctx,
		`SELECT id FROM artists WHERE id = $1 FOR SHARE`, artistID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.MissingArtist()
	}
	if err != nil {
		return fmt.Errorf("checking artist: %w", err)
	}
	return nil
}
