// Package song contains the HTTP handlers for the Song resource.
//
// Each exported function is a factory. It takes the store once at route
// registration and returns the http.HandlerFunc invoked per request:
//
//	r.Get("/", song.GetList(store))
package song

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/songs-api/internal/serializer"
	"github.com/aanand-mishra/songs-api/internal/storage"
	"github.com/aanand-mishra/songs-api/internal/types"
	"github.com/aanand-mishra/songs-api/internal/utils/request"
	"github.com/aanand-mishra/songs-api/internal/utils/response"
	"github.com/aanand-mishra/songs-api/internal/utils/validate"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	model = "Song"
	root  = "song"
)

// New handles POST /api/v1/songs.
//
// Request body, flat or nested under "song":
//
//	{ "title": "Kiss", "length": 2301, "play_count": 2300000, "artist_id": 1 }
//
// Responds 201 with the full stored record, or 422 when the artist
// reference is missing or does not resolve.
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a song")

		var params types.SongParams
		if err := request.DecodeParams(r, root, &params); err != nil {
			response.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := validate.Struct(params); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				response.WriteJSON(w, http.StatusUnprocessableEntity,
					response.Unprocessable(response.ValidationError(verrs)))
				return
			}
			writeStoreError(w, r, err, "")
			return
		}

		song, err := store.CreateSong(r.Context(), params)
		if err != nil {
			writeStoreError(w, r, err, "")
			return
		}

		slog.Info("song created", slog.Int64("id", song.ID))
		response.WriteJSON(w, http.StatusCreated, song)
	}
}

// GetByID handles GET /api/v1/songs/{id}.
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		slog.Info("getting a song", slog.String("id", id))

		intID, ok := parseID(id)
		if !ok {
			response.WriteJSON(w, http.StatusNotFound, response.NotFound(model, id))
			return
		}

		song, err := store.GetSongByID(r.Context(), intID)
		if err != nil {
			writeStoreError(w, r, err, id)
			return
		}

		response.WriteJSON(w, http.StatusOK, serializer.FormatSong(song))
	}
}

// GetList handles GET /api/v1/songs. An empty store yields [].
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all songs")

		songs, err := store.GetSongs(r.Context())
		if err != nil {
			writeStoreError(w, r, err, "")
			return
		}

		response.WriteJSON(w, http.StatusOK, serializer.FormatSongs(songs))
	}
}

// Update handles PATCH (and PUT) /api/v1/songs/{id}. Only the supplied
// fields change.
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		slog.Info("updating a song", slog.String("id", id))

		intID, ok := parseID(id)
		if !ok {
			response.WriteJSON(w, http.StatusNotFound, response.NotFound(model, id))
			return
		}

		var params types.SongParams
		if err := request.DecodeParams(r, root, &params); err != nil {
			response.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		song, err := store.UpdateSongByID(r.Context(), intID, params)
		if err != nil {
			writeStoreError(w, r, err, id)
			return
		}

		slog.Info("song updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, serializer.FormatSong(song))
	}
}

// Delete handles DELETE /api/v1/songs/{id} and responds 204 with no body.
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		slog.Info("deleting a song", slog.String("id", id))

		intID, ok := parseID(id)
		if !ok {
			response.WriteJSON(w, http.StatusNotFound, response.NotFound(model, id))
			return
		}

		if err := store.DeleteSongByID(r.Context(), intID); err != nil {
			writeStoreError(w, r, err, id)
			return
		}

		slog.Info("song deleted", slog.String("id", id))
		response.NoContent(w)
	}
}

// parseID reports false for anything that cannot be a stored id. Such an
// id is answered like any other id with no record.
func parseID(id string) (int64, bool) {
	intID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, false
	}
	return intID, true
}

// writeStoreError maps store failures onto the error envelope.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, id string) {
	var verr *storage.ValidationError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.WriteJSON(w, http.StatusNotFound, response.NotFound(model, id))
	case errors.As(err, &verr):
		response.WriteJSON(w, http.StatusUnprocessableEntity, response.Unprocessable(verr))
	default:
		slog.ErrorContext(r.Context(), "song store error",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		response.WriteError(w, http.StatusInternalServerError,
			http.StatusText(http.StatusInternalServerError))
	}
}
