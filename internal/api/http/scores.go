package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paramedtrack/paramedtrack/internal/audit"
	"github.com/paramedtrack/paramedtrack/internal/eval"
	"github.com/paramedtrack/paramedtrack/internal/grading"
	"github.com/paramedtrack/paramedtrack/internal/notify"
	"github.com/paramedtrack/paramedtrack/internal/rbac"
)

// PUT /evaluations/{evaluationID}/scores/{scoreID}
// Partial grading update; the response carries the live running total so
// the grading UI can preview pass state before completion.
func UpdateScoreHandler(store *eval.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scoreID := chi.URLParam(r, "scoreID")
		var req eval.ScoreUpdate
		if !decodeValid(w, r, &req) {
			return
		}
		if !scoreBelongs(w, r, store, scoreID) {
			return
		}
		sc, err := store.UpdateScore(r.Context(), scoreID, req)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sc)
	}
}

// POST /evaluations/{evaluationID}/scores/{scoreID}/complete
func CompleteGradingHandler(store *eval.SQLStore, rec *audit.Recorder, notifier *notify.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scoreID := chi.URLParam(r, "scoreID")
		if !scoreBelongs(w, r, store, scoreID) {
			return
		}
		sc, err := store.CompleteGrading(r.Context(), scoreID)
		if err != nil {
			storeError(w, err)
			return
		}

		sub := rbac.SubjectFromContext(r.Context())
		_ = rec.Record(r.Context(), audit.Entry{
			Actor: sub, Action: "ScoreCompleted", Entity: "score", EntityID: sc.ID,
			Detail: map[string]any{"total": sc.Total, "passed": sc.Passed},
		})

		outcome := grading.OutcomeFail
		if sc.Passed != nil && *sc.Passed {
			outcome = grading.OutcomePass
		}
		notifier.Notify(r.Context(), sc.StudentID, "grading",
			"Summative evaluation graded",
			fmt.Sprintf("Your scenario evaluation has been graded: %s (%d/%d).", outcome, sc.Total, grading.MaxTotal))

		writeJSON(w, http.StatusOK, sc)
	}
}

// scoreBelongs confirms the score sits under the evaluation in the URL.
// Writes the error response and returns false when it does not.
func scoreBelongs(w http.ResponseWriter, r *http.Request, store *eval.SQLStore, scoreID string) bool {
	sc, err := store.GetScore(r.Context(), scoreID)
	if err != nil {
		storeError(w, err)
		return false
	}
	if sc.EvaluationID != chi.URLParam(r, "evaluationID") {
		http.Error(w, "score does not belong to evaluation", http.StatusNotFound)
		return false
	}
	return true
}

// GET /students/{studentID}/scores
// Students see only their own results; eval:view-all roles see anyone's.
func StudentScoresHandler(store *eval.SQLStore) http.HandlerFunc {
	checker := rbac.NewChecker(nil)
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := chi.URLParam(r, "studentID")
		role := rbac.RoleFromContext(r.Context())
		sub := rbac.SubjectFromContext(r.Context())
		if !checker.Has(role, "eval:view-all") && studentID != sub {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		scores, err := store.ListStudentScores(r.Context(), studentID)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, scores)
	}
}
