// Package httpx holds the small JSON/request plumbing shared by all HTTP
// handlers: body decoding, response encoding, and query/path parameter
// parsing with range checks.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/TaxiPark/TaxiPark/internal/common/apperr"
)

// DecodeJSON decodes the request body into dst. An empty body leaves dst at
// its zero value so that PATCH with no fields is a valid no-op request.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err onto the error taxonomy and writes the JSON error body.
func WriteError(w http.ResponseWriter, err error) {
	body := map[string]any{"error": err.Error()}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		body["code"] = ae.Code
	} else {
		body["error"] = "internal error"
	}
	WriteJSON(w, apperr.StatusOf(err), body)
}

// PathID parses the {id} path value as a positive integer.
func PathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("id must be a positive integer")
	}
	return id, nil
}

// QueryInt parses an optional integer query parameter within [min, max].
func QueryInt(r *http.Request, name string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("%s must be an integer", name)
	}
	if v < min || v > max {
		return 0, apperr.Validation("%s must be in [%d, %d]", name, min, max)
	}
	return v, nil
}

// QueryFloat parses an optional float query parameter within [min, max].
// It returns nil when the parameter is absent.
func QueryFloat(r *http.Request, name string, min, max float64) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperr.Validation("%s must be a number", name)
	}
	if v < min || v > max {
		return nil, apperr.Validation("%s must be in [%g, %g]", name, min, max)
	}
	return &v, nil
}

// QueryBool parses an optional boolean query parameter.
func QueryBool(r *http.Request, name string, def bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperr.Validation("%s must be a boolean", name)
	}
	return v, nil
}
