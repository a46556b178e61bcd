// Package artist contains the HTTP handlers for the Artist resource.
// Songs must reference an existing artist, so these endpoints are how a
// client obtains a valid artist_id.
package artist

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aanand-mishra/songs-api/internal/storage"
	"github.com/aanand-mishra/songs-api/internal/types"
	"github.com/aanand-mishra/songs-api/internal/utils/request"
	"github.com/aanand-mishra/songs-api/internal/utils/response"
	"github.com/aanand-mishra/songs-api/internal/utils/validate"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const model = "Artist"

// New handles POST /api/v1/artists with { "name": "Prince" }, flat or
// nested under "artist".
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating an artist")

		var params types.ArtistParams
		if err := request.DecodeParams(r, "artist", &params); err != nil {
			response.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		params.Name = strings.TrimSpace(params.Name)

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

		artist, err := store.CreateArtist(r.Context(), params.Name)
		if err != nil {
			writeStoreError(w, r, err, "")
			return
		}

		slog.Info("artist created", slog.Int64("id", artist.ID))
		response.WriteJSON(w, http.StatusCreated, artist)
	}
}

// GetByID handles GET /api/v1/artists/{id}.
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusNotFound, response.NotFound(model, id))
			return
		}

		artist, err := store.GetArtistByID(r.Context(), intID)
		if err != nil {
			writeStoreError(w, r, err, id)
			return
		}

		response.WriteJSON(w, http.StatusOK, artist)
	}
}

// GetList handles GET /api/v1/artists.
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		artists, err := store.GetArtists(r.Context())
		if err != nil {
			writeStoreError(w, r, err, "")
			return
		}

		response.WriteJSON(w, http.StatusOK, artists)
	}
}

func writeStoreError(w http.ResponseWriter, r *http.Request, err error, id string) {
	if errors.Is(err, storage.ErrNotFound) {
		response.WriteJSON(w, http.StatusNotFound, response.NotFound(model, id))
		return
	}

	slog.ErrorContext(r.Context(), "artist store error",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))
	response.WriteError(w, http.StatusInternalServerError,
		http.StatusText(http.StatusInternalServerError))
}
