package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paramedtrack/paramedtrack/internal/notify"
	"github.com/paramedtrack/paramedtrack/internal/rbac"
)

// GET /notifications?unread=1
func ListNotificationsHandler(store *notify.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		unread := r.URL.Query().Get("unread") == "1"
		list, err := store.ListForUser(r.Context(), sub, unread)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// POST /notifications/{notificationID}/read
func MarkNotificationReadHandler(store *notify.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		if err := store.MarkRead(r.Context(), chi.URLParam(r, "notificationID"), sub); err != nil {
			storeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
