package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/paramedtrack/paramedtrack/internal/report"
)

// GET /reports/pass-rates?cohort_id=...
func PassRatesHandler(rep *report.Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rates, err := rep.EvaluationPassRates(r.Context(), strings.TrimSpace(r.URL.Query().Get("cohort_id")))
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rates)
	}
}

// GET /reports/clinical-hours
func ClinicalTotalsHandler(rep *report.Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		totals, err := rep.ClinicalHourTotals(r.Context())
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, totals)
	}
}

// GET /reports/evaluations/{evaluationID}/export — CSV download.
func ExportEvaluationCSVHandler(rep *report.Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "evaluationID")
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="evaluation-`+id+`.csv"`)
		if err := rep.WriteEvaluationCSV(r.Context(), w, id); err != nil {
			// Headers are already out; best we can do is log via the
			// chi logger and cut the stream.
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
