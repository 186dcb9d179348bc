package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/paramedtrack/paramedtrack/internal/audit"
	"github.com/paramedtrack/paramedtrack/internal/clinical"
	"github.com/paramedtrack/paramedtrack/internal/notify"
	"github.com/paramedtrack/paramedtrack/internal/rbac"
)

// POST /clinical — a student logs a shift for review.
func CreateClinicalEntryHandler(store *clinical.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req clinical.CreateRequest
		if !decodeValid(w, r, &req) {
			return
		}
		sub := rbac.SubjectFromContext(r.Context())
		e, err := store.CreateEntry(r.Context(), sub, req)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

// GET /clinical?student_id=...&status=...
// Without clinical:view-all the student filter is forced to the caller.
func ListClinicalEntriesHandler(store *clinical.SQLStore) http.HandlerFunc {
	checker := rbac.NewChecker(nil)
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := rbac.SubjectFromContext(r.Context())

		studentID := strings.TrimSpace(r.URL.Query().Get("student_id"))
		if !checker.Has(role, "clinical:view-all") {
			studentID = sub
		}
		list, err := store.ListEntries(r.Context(), clinical.ListOpts{
			StudentID: studentID,
			Status:    strings.TrimSpace(r.URL.Query().Get("status")),
		})
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// POST /clinical/{entryID}/review  { "approve": true, "note": "..." }
func ReviewClinicalEntryHandler(store *clinical.SQLStore, rec *audit.Recorder, notifier *notify.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Approve bool   `json:"approve"`
			Note    string `json:"note"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		sub := rbac.SubjectFromContext(r.Context())
		e, err := store.Review(r.Context(), chi.URLParam(r, "entryID"), sub, req.Approve)
		if err != nil {
			storeError(w, err)
			return
		}

		_ = rec.Record(r.Context(), audit.Entry{
			Actor: sub, Action: "ClinicalEntryReviewed", Entity: "clinical_entry", EntityID: e.ID,
			Detail: map[string]any{"status": e.Status, "note": req.Note},
		})
		title := "Clinical entry approved"
		if !req.Approve {
			title = "Clinical entry rejected"
		}
		body := "Entry for " + e.EntryDate + " at " + e.Site + " was " + e.Status + "."
		if req.Note != "" {
			body += " Note: " + req.Note
		}
		notifier.Notify(r.Context(), e.StudentID, "clinical", title, body)

		writeJSON(w, http.StatusOK, e)
	}
}

// GET /clinical/hours/{studentID}
func ClinicalHoursHandler(store *clinical.SQLStore) http.HandlerFunc {
	checker := rbac.NewChecker(nil)
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := chi.URLParam(r, "studentID")
		role := rbac.RoleFromContext(r.Context())
		sub := rbac.SubjectFromContext(r.Context())
		if !checker.Has(role, "clinical:view-all") && studentID != sub {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		totals, err := store.HourTotals(r.Context(), studentID)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, totals)
	}
}
