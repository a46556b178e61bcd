// Package router wires the HTTP handlers onto a chi router.
//
// Route table:
//
//	GET    /healthz
//	GET    /api/v1/songs
//	POST   /api/v1/songs
//	GET    /api/v1/songs/{id}
//	PATCH  /api/v1/songs/{id}
//	PUT    /api/v1/songs/{id}
//	DELETE /api/v1/songs/{id}
//	GET    /api/v1/artists
//	POST   /api/v1/artists
//	GET    /api/v1/artists/{id}
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/songs-api/internal/http/handlers/artist"
	"github.com/aanand-mishra/songs-api/internal/http/handlers/song"
	"github.com/aanand-mishra/songs-api/internal/storage"
	"github.com/aanand-mishra/songs-api/internal/utils/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// New returns the application's root handler.
func New(store storage.Storage, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.WriteError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.WriteError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", health(store))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/songs", func(r chi.Router) {
			r.Get("/", song.GetList(store))
			r.Post("/", song.New(store))
			r.Get("/{id}", song.GetByID(store))
			r.Patch("/{id}", song.Update(store))
			r.Put("/{id}", song.Update(store))
			r.Delete("/{id}", song.Delete(store))
		})

		r.Route("/artists", func(r chi.Router) {
			r.Get("/", artist.GetList(store))
			r.Post("/", artist.New(store))
			r.Get("/{id}", artist.GetByID(store))
		})
	})

	return r
}

func health(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			response.WriteError(w, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// requestLogger logs one line per request once the handler returns.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				log.InfoContext(r.Context(), "request",
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Int("status", ww.Status()),
					slog.Int("bytes", ww.BytesWritten()),
					slog.Duration("duration", time.Since(start)),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
