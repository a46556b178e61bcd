// Package types holds the shared data structures used across the
// application. Keeping them in one place prevents import cycles:
// handlers, storage, and the serializer all import types without
// depending on each other.
package types

import "time"

// Artist owns zero or more songs.
type Artist struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Song is a persisted song record. Every stored song references an
// existing artist through ArtistID.
//
// This is the full record shape, returned as-is by create. Read paths go
// through the serializer package instead, which drops the artist and the
// timestamps.
type Song struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Length    int       `json:"length"`
	PlayCount int       `json:"play_count"`
	ArtistID  int64     `json:"artist_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SongParams is the allow-listed input accepted by create and update.
//
// Every field is a pointer so that "not supplied" (nil) can be told
// apart from a zero value. A partial update only touches the non-nil
// fields. Keys outside this struct are dropped by the JSON decoder and
// never reach the store.
//
// Only create runs the validator. On update every field is optional.
type SongParams struct {
	Title     *string `json:"title"`
	Length    *int    `json:"length"`
	PlayCount *int    `json:"play_count"`
	ArtistID  *int64  `json:"artist_id" validate:"required"`
}

// Apply copies every supplied field onto song and reports whether the
// artist reference changed.
func (p SongParams) Apply(song *Song) (artistChanged bool) {
	if p.Title != nil {
		song.Title = *p.Title
	}
	if p.Length != nil {
		song.Length = *p.Length
	}
	if p.PlayCount != nil {
		song.PlayCount = *p.PlayCount
	}
	if p.ArtistID != nil && *p.ArtistID != song.ArtistID {
		song.ArtistID = *p.ArtistID
		artistChanged = true
	}
	return artistChanged
}

// ArtistParams is the allow-listed input accepted when creating an artist.
type ArtistParams struct {
	Name string `json:"name" validate:"required"`
}
