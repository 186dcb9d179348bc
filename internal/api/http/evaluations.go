package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/paramedtrack/paramedtrack/internal/audit"
	"github.com/paramedtrack/paramedtrack/internal/eval"
	"github.com/paramedtrack/paramedtrack/internal/rbac"
)

type evaluationResponse struct {
	Evaluation eval.Evaluation `json:"evaluation"`
	Scores     []eval.Score    `json:"scores"`
}

// POST /evaluations
func CreateEvaluationHandler(store *eval.SQLStore, rec *audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req eval.CreateRequest
		if !decodeValid(w, r, &req) {
			return
		}
		sub := rbac.SubjectFromContext(r.Context())

		ev, scores, err := store.CreateEvaluation(r.Context(), eval.Evaluation{
			ScenarioID: req.ScenarioID,
			CohortID:   req.CohortID,
			EvalDate:   req.EvalDate,
			StartTime:  req.StartTime,
			Examiner:   req.Examiner,
			Location:   req.Location,
			Notes:      req.Notes,
			CreatedBy:  sub,
		}, req.StudentIDs)
		if err != nil {
			storeError(w, err)
			return
		}

		_ = rec.Record(r.Context(), audit.Entry{
			Actor: sub, Action: "EvaluationCreated", Entity: "evaluation", EntityID: ev.ID,
			Detail: map[string]any{"students": len(scores), "scenario_id": ev.ScenarioID},
		})
		writeJSON(w, http.StatusCreated, evaluationResponse{Evaluation: ev, Scores: scores})
	}
}

// GET /evaluations?cohort_id=...&scenario_id=...&limit=50&offset=0
func ListEvaluationsHandler(store *eval.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := store.ListEvaluations(r.Context(), eval.ListOpts{
			CohortID:   strings.TrimSpace(q.Get("cohort_id")),
			ScenarioID: strings.TrimSpace(q.Get("scenario_id")),
			Limit:      parseIntDefault(q.Get("limit"), 50),
			Offset:     parseIntDefault(q.Get("offset"), 0),
		})
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /evaluations/{evaluationID}
func GetEvaluationHandler(store *eval.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "evaluationID")
		ev, scores, err := store.GetEvaluation(r.Context(), id)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, evaluationResponse{Evaluation: ev, Scores: scores})
	}
}
