// Package request normalizes incoming JSON bodies.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
)

// ErrMalformedBody is returned (wrapped) when the body is not a JSON
// object or a field has the wrong type.
var ErrMalformedBody = errors.New("malformed request body")

// DecodeParams reads a JSON object from r and decodes it into dst.
//
// Parameters may arrive flat or nested under root (e.g. {"song": {...}}).
// Top-level keys are read first and the nested object's keys are laid on
// top, so both shapes yield the same params. Keys that dst does not
// declare are dropped. An empty body decodes to dst's zero value.
func DecodeParams(r *http.Request, root string, dst any) error {
	var fields map[string]json.RawMessage

	err := json.NewDecoder(r.Body).Decode(&fields)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage)
	}

	if raw, ok := fields[root]; ok {
		delete(fields, root)

		var nested map[string]json.RawMessage
		if err := json.Unmarshal(raw, &nested); err != nil {
			return fmt.Errorf("%w: %q must be an object", ErrMalformedBody, root)
		}
		maps.Copy(fields, nested)
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if err := json.Unmarshal(merged, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	return nil
}
