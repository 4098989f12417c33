package helpers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PathID returns the named path parameter when it is a valid UUID.
// Otherwise it writes a 404 and returns false; malformed ids never reach the database.
func PathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
		return "", false
	}
	return id.String(), true
}

// QueryBool parses an optional boolean query parameter. Missing or invalid values yield nil.
func QueryBool(r *http.Request, name string) *bool {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &v
}

// QueryInt parses an optional integer query parameter, returning def when missing or invalid.
func QueryInt(r *http.Request, name string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil {
		return v
	}
	return def
}
