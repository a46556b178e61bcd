package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aanand-mishra/songs-api/internal/config"
	"github.com/aanand-mishra/songs-api/internal/storage"
	"github.com/aanand-mishra/songs-api/internal/storage/sqlite"
	"github.com/aanand-mishra/songs-api/internal/types"
	"github.com/aanand-mishra/songs-api/internal/utils/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type songShape struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Length    int    `json:"length"`
	PlayCount int    `json:"play_count"`
}

type fixture struct {
	store  storage.Storage
	server *httptest.Server
	prince types.Artist
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := sqlite.New(&config.Config{Storage: config.Storage{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "songs.db"),
	}})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := httptest.NewServer(New(store, log))
	t.Cleanup(server.Close)

	prince, err := store.CreateArtist(context.Background(), "Prince")
	require.NoError(t, err)

	return &fixture{store: store, server: server, prince: prince}
}

func (f *fixture) createSong(t *testing.T, title string, length, plays int) types.Song {
	t.Helper()
	song, err := f.store.CreateSong(context.Background(), types.SongParams{
		Title:     &title,
		Length:    &length,
		PlayCount: &plays,
		ArtistID:  &f.prince.ID,
	})
	require.NoError(t, err)
	return song
}

func (f *fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func assertError(t *testing.T, resp *http.Response, status int, message string) {
	t.Helper()
	assert.Equal(t, status, resp.StatusCode)

	env := decode[response.ErrorEnvelope](t, resp)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, fmt.Sprint(status), env.Errors[0].Status)
	assert.Equal(t, message, env.Errors[0].Message)
}

func TestListSongs(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/v1/songs", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]\n", readBody(t, resp))

	created := []types.Song{
		f.createSong(t, "Raspberry Beret", 345, 34),
		f.createSong(t, "Purple Rain", 524, 19),
		f.createSong(t, "Kiss", 2301, 2300000),
	}

	resp = f.do(t, http.MethodGet, "/api/v1/songs", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	songs := decode[[]songShape](t, resp)
	require.Len(t, songs, len(created))
	for i, want := range created {
		assert.Equal(t, songShape{want.ID, want.Title, want.Length, want.PlayCount}, songs[i])
	}
}

func TestListSongsOmitsArtistAndTimestamps(t *testing.T) {
	f := newFixture(t)
	f.createSong(t, "Raspberry Beret", 345, 34)

	resp := f.do(t, http.MethodGet, "/api/v1/songs", "")
	raw := decode[[]map[string]any](t, resp)
	require.Len(t, raw, 1)

	keys := make([]string, 0, len(raw[0]))
	for k := range raw[0] {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"id", "title", "length", "play_count"}, keys)
}

func TestShowSong(t *testing.T) {
	f := newFixture(t)
	song := f.createSong(t, "Raspberry Beret", 345, 34)

	resp := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/songs/%d", song.ID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, songShape{song.ID, "Raspberry Beret", 345, 34}, decode[songShape](t, resp))
}

func TestShowSongNotFound(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		id      string
		message string
	}{
		{"123489846278", "Couldn't find Song with 'id'=123489846278"},
		{"abc", "Couldn't find Song with 'id'=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			resp := f.do(t, http.MethodGet, "/api/v1/songs/"+tt.id, "")
			assertError(t, resp, http.StatusNotFound, tt.message)
		})
	}
}

func TestCreateSong(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"flat", `{"title":"Get Up Offa That Thing","length":4567,"play_count":456445,"artist_id":%d}`},
		{"nested", `{"song":{"title":"Get Up Offa That Thing","length":4567,"play_count":456445,"artist_id":%d}}`},
		{"unknown fields ignored", `{"id":999,"rating":5,"title":"Get Up Offa That Thing","length":4567,"play_count":456445,"artist_id":%d}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			resp := f.do(t, http.MethodPost, "/api/v1/songs", fmt.Sprintf(tt.body, f.prince.ID))
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			created := decode[types.Song](t, resp)
			assert.NotEqual(t, int64(999), created.ID)
			assert.Equal(t, f.prince.ID, created.ArtistID)
			assert.False(t, created.CreatedAt.IsZero())

			songs, err := f.store.GetSongs(context.Background())
			require.NoError(t, err)
			require.Len(t, songs, 1)

			last := songs[0]
			assert.Equal(t, created.ID, last.ID)
			assert.Equal(t, "Get Up Offa That Thing", last.Title)
			assert.Equal(t, 4567, last.Length)
			assert.Equal(t, 456445, last.PlayCount)
			assert.Equal(t, f.prince.ID, last.ArtistID)
		})
	}
}

func TestCreateSongWithoutArtist(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing artist_id", `{"title":"Get Up Offa That Thing","length":4567,"play_count":456445}`},
		{"unknown artist_id", `{"title":"Get Up Offa That Thing","length":4567,"play_count":456445,"artist_id":424242}`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			resp := f.do(t, http.MethodPost, "/api/v1/songs", tt.body)
			assertError(t, resp, http.StatusUnprocessableEntity, "Validation failed: Artist must exist")

			songs, err := f.store.GetSongs(context.Background())
			require.NoError(t, err)
			assert.Empty(t, songs)
		})
	}
}

func TestCreateSongMalformedBody(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/v1/songs", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env := decode[response.ErrorEnvelope](t, resp)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "400", env.Errors[0].Status)
}

func TestUpdateSong(t *testing.T) {
	f := newFixture(t)
	song := f.createSong(t, "Raspberry Beret", 345, 34)
	path := fmt.Sprintf("/api/v1/songs/%d", song.ID)

	resp := f.do(t, http.MethodPatch, path, `{"length":323}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, songShape{song.ID, "Raspberry Beret", 323, 34}, decode[songShape](t, resp))

	resp = f.do(t, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, songShape{song.ID, "Raspberry Beret", 323, 34}, decode[songShape](t, resp))
}

func TestUpdateSongNested(t *testing.T) {
	f := newFixture(t)
	song := f.createSong(t, "Raspberry Beret", 345, 34)

	resp := f.do(t, http.MethodPut, fmt.Sprintf("/api/v1/songs/%d", song.ID), `{"song":{"play_count":35}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 35, decode[songShape](t, resp).PlayCount)
}

func TestUpdateSongNotFound(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPatch, "/api/v1/songs/123489846278", `{"length":323}`)
	assertError(t, resp, http.StatusNotFound, "Couldn't find Song with 'id'=123489846278")
}

func TestUpdateSongUnknownArtist(t *testing.T) {
	f := newFixture(t)
	song := f.createSong(t, "Raspberry Beret", 345, 34)

	resp := f.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/songs/%d", song.ID), `{"length":1,"artist_id":424242}`)
	assertError(t, resp, http.StatusUnprocessableEntity, "Validation failed: Artist must exist")

	got, err := f.store.GetSongByID(context.Background(), song.ID)
	require.NoError(t, err)
	assert.Equal(t, 345, got.Length)
}

func TestDeleteSong(t *testing.T) {
	f := newFixture(t)
	song := f.createSong(t, "Raspberry Beret", 345, 34)
	f.createSong(t, "Kiss", 2301, 2300000)
	path := fmt.Sprintf("/api/v1/songs/%d", song.ID)

	resp := f.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, readBody(t, resp))

	resp = f.do(t, http.MethodGet, path, "")
	assertError(t, resp, http.StatusNotFound, fmt.Sprintf("Couldn't find Song with 'id'=%d", song.ID))

	resp = f.do(t, http.MethodGet, "/api/v1/songs", "")
	assert.Len(t, decode[[]songShape](t, resp), 1)
}

func TestDeleteSongNotFound(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodDelete, "/api/v1/songs/123489846278", "")
	assertError(t, resp, http.StatusNotFound, "Couldn't find Song with 'id'=123489846278")
}

func TestArtists(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/v1/artists", `{"artist":{"name":"James Brown"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	brown := decode[types.Artist](t, resp)
	assert.Equal(t, "James Brown", brown.Name)

	resp = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/artists/%d", brown.ID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, brown.ID, decode[types.Artist](t, resp).ID)

	resp = f.do(t, http.MethodGet, "/api/v1/artists", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]types.Artist](t, resp), 2)

	resp = f.do(t, http.MethodPost, "/api/v1/artists", `{"name":"   "}`)
	assertError(t, resp, http.StatusUnprocessableEntity, "Validation failed: Name can't be blank")

	resp = f.do(t, http.MethodGet, "/api/v1/artists/999", "")
	assertError(t, resp, http.StatusNotFound, "Couldn't find Artist with 'id'=999")
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, readBody(t, resp))

	resp = f.do(t, http.MethodGet, "/api/v1/albums", "")
	assertError(t, resp, http.StatusNotFound, "Not Found")

	resp = f.do(t, http.MethodPost, "/api/v1/songs/1", `{}`)
	assertError(t, resp, http.StatusMethodNotAllowed, "Method Not Allowed")
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}
