// Package http holds the route handlers. Each handler is a closure over
// its store: decode, validate, permission scope, store call, encode.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/paramedtrack/paramedtrack/internal/clinical"
	"github.com/paramedtrack/paramedtrack/internal/eval"
	"github.com/paramedtrack/paramedtrack/internal/lab"
	"github.com/paramedtrack/paramedtrack/internal/notify"
	"github.com/paramedtrack/paramedtrack/internal/task"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeValid decodes the body into v and runs write-boundary validation.
// Returns false after writing the error response.
func decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			http.Error(w, "validation: "+verrs[0].Error(), http.StatusBadRequest)
			return false
		}
		http.Error(w, "validation failed", http.StatusBadRequest)
		return false
	}
	return true
}

// storeError maps store sentinels onto HTTP statuses.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, eval.ErrNotFound),
		errors.Is(err, lab.ErrNotFound),
		errors.Is(err, clinical.ErrNotFound),
		errors.Is(err, task.ErrNotFound),
		errors.Is(err, notify.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, eval.ErrGradingComplete),
		errors.Is(err, lab.ErrSessionFull),
		errors.Is(err, lab.ErrAlreadySigned),
		errors.Is(err, task.ErrBadStatus):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
