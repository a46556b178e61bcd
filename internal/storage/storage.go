// Package storage defines the Storage interface, the contract every
// database backend must satisfy, together with the error kinds a backend
// reports back to the HTTP layer.
//
// Handlers depend only on this interface. Switching databases means
// implementing it for the new backend and changing the wiring in main.
package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/aanand-mishra/songs-api/internal/types"
)

// ErrNotFound is returned (wrapped) when an id has no matching record.
var ErrNotFound = errors.New("record not found")

// ArtistMustExist is the constraint message for a song whose artist
// reference does not resolve.
const ArtistMustExist = "Artist must exist"

// ValidationError reports one or more violated record constraints.
// Backends return it before committing a write.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "Validation failed: " + strings.Join(e.Messages, ", ")
}

// Storage is the record store contract.
type Storage interface {
	// CreateArtist inserts a new artist and returns the stored record.
	CreateArtist(ctx context.Context, name string) (types.Artist, error)

	// GetArtistByID returns ErrNotFound if no artist has the given id.
	GetArtistByID(ctx context.Context, id int64) (types.Artist, error)

	// GetArtists returns every artist in id order, never nil.
	GetArtists(ctx context.Context) ([]types.Artist, error)

	// CreateSong checks that params.ArtistID references an existing
	// artist and inserts the song in the same transaction. A missing or
	// dangling reference yields a *ValidationError and nothing is written.
	CreateSong(ctx context.Context, params types.SongParams) (types.Song, error)

	// GetSongByID returns ErrNotFound if no song has the given id.
	GetSongByID(ctx context.Context, id int64) (types.Song, error)

	// GetSongs returns every song in id (insertion) order, never nil.
	GetSongs(ctx context.Context) ([]types.Song, error)

	// UpdateSongByID merges the supplied fields of params into the
	// stored song and returns the result. Returns ErrNotFound for an
	// unknown id and a *ValidationError if a new artist_id does not
	// resolve.
	UpdateSongByID(ctx context.Context, id int64, params types.SongParams) (types.Song, error)

	// DeleteSongByID removes a song permanently. Returns ErrNotFound for
	// an unknown id.
	DeleteSongByID(ctx context.Context, id int64) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}

// MissingArtist is the validation failure for a song without a valid
// artist reference.
func MissingArtist() *ValidationError {
	return &ValidationError{Messages: []string{ArtistMustExist}}
}
