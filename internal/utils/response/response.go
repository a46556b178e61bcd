// Package response provides helpers for writing consistent JSON HTTP
// responses.
//
// Success responses may carry any JSON shape. Every failure uses the
// same envelope:
//
//	{ "errors": [ { "status": "404", "message": "Couldn't find Song with 'id'=7" } ] }
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/aanand-mishra/songs-api/internal/storage"
	"github.com/go-playground/validator/v10"
)

// ErrorObject is a single entry of the error envelope. Status is the
// HTTP status code rendered as a string.
type ErrorObject struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorEnvelope is the body of every failed response.
type ErrorEnvelope struct {
	Errors []ErrorObject `json:"errors"`
}

// WriteJSON writes data as JSON with the given HTTP status code.
// Headers must be set before WriteHeader, and the body after it.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// NoContent writes a bodiless 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error builds an envelope holding one entry per message, all carrying
// the same status.
func Error(status int, messages ...string) ErrorEnvelope {
	env := ErrorEnvelope{Errors: make([]ErrorObject, 0, len(messages))}
	for _, msg := range messages {
		env.Errors = append(env.Errors, ErrorObject{
			Status:  strconv.Itoa(status),
			Message: msg,
		})
	}
	return env
}

// WriteError is WriteJSON with an error envelope.
func WriteError(w http.ResponseWriter, status int, messages ...string) error {
	return WriteJSON(w, status, Error(status, messages...))
}

// NotFound is the envelope for an id that does not resolve. id is echoed
// exactly as the client sent it.
func NotFound(model, id string) ErrorEnvelope {
	return Error(http.StatusNotFound, fmt.Sprintf("Couldn't find %s with 'id'=%s", model, id))
}

// Unprocessable is the 422 envelope for a record that failed validation.
func Unprocessable(err *storage.ValidationError) ErrorEnvelope {
	return Error(http.StatusUnprocessableEntity, err.Error())
}

// ValidationError converts validator failures into record constraint
// messages, e.g. a missing artist_id reads "Artist must exist" and a
// missing name reads "Name can't be blank".
func ValidationError(errs validator.ValidationErrors) *storage.ValidationError {
	messages := make([]string, 0, len(errs))

	for _, e := range errs {
		field := e.Field()
		switch {
		case field == "artist_id" && e.ActualTag() == "required":
			messages = append(messages, storage.ArtistMustExist)
		case e.ActualTag() == "required":
			messages = append(messages, humanize(field)+" can't be blank")
		default:
			messages = append(messages, humanize(field)+" is invalid")
		}
	}

	return &storage.ValidationError{Messages: messages}
}

// humanize turns a JSON field name into a sentence-case attribute name:
// "play_count" becomes "Play count" and "artist_id" becomes "Artist".
func humanize(field string) string {
	field = strings.TrimSuffix(field, "_id")
	field = strings.ReplaceAll(field, "_", " ")
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
