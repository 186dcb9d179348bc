package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/paramedtrack/paramedtrack/internal/notify"
	"github.com/paramedtrack/paramedtrack/internal/rbac"
	"github.com/paramedtrack/paramedtrack/internal/task"
)

// POST /tasks
func CreateTaskHandler(store *task.SQLStore, notifier *notify.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req task.CreateRequest
		if !decodeValid(w, r, &req) {
			return
		}
		sub := rbac.SubjectFromContext(r.Context())
		t, err := store.Create(r.Context(), sub, req)
		if err != nil {
			storeError(w, err)
			return
		}
		if t.AssigneeID != "" && t.AssigneeID != sub {
			notifier.Notify(r.Context(), t.AssigneeID, "task", "New task assigned", t.Title)
		}
		writeJSON(w, http.StatusCreated, t)
	}
}

// GET /tasks?assignee_id=...&status=...
// Without task:view-all the assignee filter is forced to the caller.
func ListTasksHandler(store *task.SQLStore) http.HandlerFunc {
	checker := rbac.NewChecker(nil)
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := rbac.SubjectFromContext(r.Context())

		assignee := strings.TrimSpace(r.URL.Query().Get("assignee_id"))
		if !checker.Has(role, "task:view-all") {
			assignee = sub
		}
		list, err := store.List(r.Context(), task.ListOpts{
			AssigneeID: assignee,
			Status:     strings.TrimSpace(r.URL.Query().Get("status")),
		})
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// POST /tasks/{taskID}/status  { "status": "in_progress" }
// Assignees may move their own tasks; task:update roles may move any.
func UpdateTaskStatusHandler(store *task.SQLStore) http.HandlerFunc {
	checker := rbac.NewChecker(nil)
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		id := chi.URLParam(r, "taskID")
		role := rbac.RoleFromContext(r.Context())
		sub := rbac.SubjectFromContext(r.Context())
		if !checker.Has(role, "task:update") {
			t, err := store.Get(r.Context(), id)
			if err != nil {
				storeError(w, err)
				return
			}
			if t.AssigneeID != sub {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		t, err := store.UpdateStatus(r.Context(), id, req.Status)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}
