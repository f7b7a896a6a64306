package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/vovakirdan/space-dodge/internal/backend"
	"github.com/vovakirdan/space-dodge/internal/storage"
)

const invalidData = "The given data was invalid."

// fieldErrors collects validation messages per request field.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, format string, args ...any) {
	f[field] = append(f[field], fmt.Sprintf(format, args...))
}

func errorBody(msg string) backend.ErrorResponse {
	return backend.ErrorResponse{Message: msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeInvalid answers 422 with per-field messages.
func writeInvalid(w http.ResponseWriter, errs fieldErrors) {
	writeJSON(w, http.StatusUnprocessableEntity, backend.ErrorResponse{
		Message: invalidData,
		Errors:  errs,
	})
}

// decode reads a JSON body into v. Malformed bodies are answered with 422 and
// false is returned.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		errs := fieldErrors{}
		if errors.Is(err, io.EOF) {
			errs.add("body", "The request body is required.")
		} else {
			errs.add("body", "The request body must be valid JSON.")
		}
		writeInvalid(w, errs)
		return false
	}
	return true
}

// writeError maps storage errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("Not found."))
	case errors.Is(err, storage.ErrUserExists):
		writeJSON(w, http.StatusConflict, errorBody("The username has already been taken."))
	case errors.Is(err, storage.ErrInsufficientCoins):
		writeJSON(w, http.StatusConflict, errorBody("Not enough coins."))
	case errors.Is(err, storage.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody("Unauthenticated."))
	default:
		s.internalError(w, r, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeJSON(w, http.StatusInternalServerError, errorBody("Server Error"))
}
