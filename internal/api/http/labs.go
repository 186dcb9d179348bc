package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/paramedtrack/paramedtrack/internal/lab"
	"github.com/paramedtrack/paramedtrack/internal/notify"
	"github.com/paramedtrack/paramedtrack/internal/rbac"
)

// POST /labs
func CreateLabSessionHandler(store *lab.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lab.CreateSessionRequest
		if !decodeValid(w, r, &req) {
			return
		}
		sess, err := store.CreateSession(r.Context(), req)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sess)
	}
}

// GET /labs?from=2006-01-02
func ListLabSessionsHandler(store *lab.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListSessions(r.Context(), strings.TrimSpace(r.URL.Query().Get("from")))
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// POST /labs/{sessionID}/signup — the authenticated student takes a slot.
func LabSignupHandler(store *lab.SQLStore, notifier *notify.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		sub := rbac.SubjectFromContext(r.Context())
		su, err := store.Signup(r.Context(), sessionID, sub)
		if err != nil {
			storeError(w, err)
			return
		}
		notifier.Notify(r.Context(), sub, "lab", "Lab signup confirmed",
			"Your lab session signup is confirmed.")
		writeJSON(w, http.StatusCreated, su)
	}
}

// DELETE /labs/{sessionID}/signup
func LabCancelHandler(store *lab.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		sub := rbac.SubjectFromContext(r.Context())
		if err := store.CancelSignup(r.Context(), sessionID, sub); err != nil {
			storeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /labs/{sessionID}/roster
func LabRosterHandler(store *lab.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roster, err := store.Roster(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, roster)
	}
}
