// Package storagetest is a conformance suite every storage.Storage
// backend runs from its own tests.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/aanand-mishra/songs-api/internal/storage"
	"github.com/aanand-mishra/songs-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store. The suite calls it once per subtest.
type Factory func(t *testing.T) storage.Storage

func ptr[T any](v T) *T { return &v }

// Run exercises the full Storage contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Storage)
	}{
		{"ArtistRoundTrip", testArtistRoundTrip},
		{"CreateSong", testCreateSong},
		{"CreateSongRequiresArtist", testCreateSongRequiresArtist},
		{"GetSongsOrder", testGetSongsOrder},
		{"GetSongsEmpty", testGetSongsEmpty},
		{"UpdateSongPartial", testUpdateSongPartial},
		{"UpdateSongArtist", testUpdateSongArtist},
		{"UpdateSongNotFound", testUpdateSongNotFound},
		{"DeleteSong", testDeleteSong},
		{"DeleteSongNotFound", testDeleteSongNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func createPrince(t *testing.T, s storage.Storage) types.Artist {
	t.Helper()
	artist, err := s.CreateArtist(context.Background(), "Prince")
	require.NoError(t, err)
	return artist
}

func createSong(t *testing.T, s storage.Storage, artistID int64, title string, length, plays int) types.Song {
	t.Helper()
	song, err := s.CreateSong(context.Background(), types.SongParams{
		Title:     ptr(title),
		Length:    ptr(length),
		PlayCount: ptr(plays),
		ArtistID:  ptr(artistID),
	})
	require.NoError(t, err)
	return song
}

func assertSameSong(t *testing.T, want, got types.Song) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Length, got.Length)
	assert.Equal(t, want.PlayCount, got.PlayCount)
	assert.Equal(t, want.ArtistID, got.ArtistID)
}

func testArtistRoundTrip(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	prince := createPrince(t, s)
	assert.NotZero(t, prince.ID)
	assert.False(t, prince.CreatedAt.IsZero())

	got, err := s.GetArtistByID(ctx, prince.ID)
	require.NoError(t, err)
	assert.Equal(t, prince.ID, got.ID)
	assert.Equal(t, "Prince", got.Name)
	assert.True(t, prince.CreatedAt.Equal(got.CreatedAt))

	_, err = s.GetArtistByID(ctx, prince.ID+1000)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	artists, err := s.GetArtists(ctx)
	require.NoError(t, err)
	require.Len(t, artists, 1)
	assert.Equal(t, prince.ID, artists[0].ID)
}

func testCreateSong(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	prince := createPrince(t, s)

	created := createSong(t, s, prince.ID, "Get Up Offa That Thing", 4567, 456445)
	assert.NotZero(t, created.ID)
	assert.Equal(t, prince.ID, created.ArtistID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))

	got, err := s.GetSongByID(ctx, created.ID)
	require.NoError(t, err)
	assertSameSong(t, created, got)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func testCreateSongRequiresArtist(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	prince := createPrince(t, s)

	tests := []struct {
		name     string
		artistID *int64
	}{
		{"missing", nil},
		{"dangling", ptr(prince.ID + 1000)},
		{"zero", ptr(int64(0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateSong(ctx, types.SongParams{
				Title:    ptr("Get Up Offa That Thing"),
				ArtistID: tt.artistID,
			})

			var verr *storage.ValidationError
			require.True(t, errors.As(err, &verr), "want *ValidationError, got %v", err)
			assert.Equal(t, "Validation failed: Artist must exist", verr.Error())
		})
	}

	songs, err := s.GetSongs(ctx)
	require.NoError(t, err)
	assert.Empty(t, songs)
}

func testGetSongsOrder(t *testing.T, s storage.Storage) {
	prince := createPrince(t, s)
	want := []types.Song{
		createSong(t, s, prince.ID, "Raspberry Beret", 345, 34),
		createSong(t, s, prince.ID, "Purple Rain", 524, 19),
		createSong(t, s, prince.ID, "Kiss", 2301, 2300000),
	}

	songs, err := s.GetSongs(context.Background())
	require.NoError(t, err)
	require.Len(t, songs, len(want))
	for i := range want {
		assertSameSong(t, want[i], songs[i])
	}
}

func testGetSongsEmpty(t *testing.T, s storage.Storage) {
	songs, err := s.GetSongs(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, songs)
	assert.Empty(t, songs)
}

func testUpdateSongPartial(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	prince := createPrince(t, s)
	song := createSong(t, s, prince.ID, "Raspberry Beret", 345, 34)

	updated, err := s.UpdateSongByID(ctx, song.ID, types.SongParams{Length: ptr(323)})
	require.NoError(t, err)
	assert.Equal(t, 323, updated.Length)
	assert.False(t, updated.UpdatedAt.Before(song.UpdatedAt))

	got, err := s.GetSongByID(ctx, song.ID)
	require.NoError(t, err)
	assert.Equal(t, 323, got.Length)
	assert.Equal(t, "Raspberry Beret", got.Title)
	assert.Equal(t, 34, got.PlayCount)
	assert.Equal(t, prince.ID, got.ArtistID)
	assert.True(t, song.CreatedAt.Equal(got.CreatedAt))
}

func testUpdateSongArtist(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	prince := createPrince(t, s)
	brown, err := s.CreateArtist(ctx, "James Brown")
	require.NoError(t, err)
	song := createSong(t, s, prince.ID, "Get Up Offa That Thing", 4567, 456445)

	_, err = s.UpdateSongByID(ctx, song.ID, types.SongParams{
		Title:    ptr("Changed"),
		ArtistID: ptr(brown.ID + 1000),
	})
	var verr *storage.ValidationError
	require.True(t, errors.As(err, &verr), "want *ValidationError, got %v", err)

	got, err := s.GetSongByID(ctx, song.ID)
	require.NoError(t, err)
	assertSameSong(t, song, got)

	updated, err := s.UpdateSongByID(ctx, song.ID, types.SongParams{ArtistID: ptr(brown.ID)})
	require.NoError(t, err)
	assert.Equal(t, brown.ID, updated.ArtistID)
}

func testUpdateSongNotFound(t *testing.T, s storage.Storage) {
	_, err := s.UpdateSongByID(context.Background(), 123489846278, types.SongParams{Length: ptr(1)})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testDeleteSong(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	prince := createPrince(t, s)
	song := createSong(t, s, prince.ID, "Raspberry Beret", 345, 34)
	keep := createSong(t, s, prince.ID, "Kiss", 2301, 2300000)

	require.NoError(t, s.DeleteSongByID(ctx, song.ID))

	_, err := s.GetSongByID(ctx, song.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	songs, err := s.GetSongs(ctx)
	require.NoError(t, err)
	require.Len(t, songs, 1)
	assert.Equal(t, keep.ID, songs[0].ID)

	next := createSong(t, s, prince.ID, "Purple Rain", 524, 19)
	assert.Greater(t, next.ID, keep.ID, "ids are never reused")
}

func testDeleteSongNotFound(t *testing.T, s storage.Storage) {
	err := s.DeleteSongByID(context.Background(), 123489846278)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
