package task_test

import (
	"context"
	"errors"
	"testing"

	"github.com/paramedtrack/paramedtrack/internal/db"
	"github.com/paramedtrack/paramedtrack/internal/task"
)

func newTestStore(t *testing.T) *task.SQLStore {
	t.Helper()
	h, err := db.Open(context.Background(), db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return task.NewSQLStore(h)
}

func TestTaskLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tk, err := store.Create(ctx, "inst-1", task.CreateRequest{
		Title:      "Upload NREMT skill sheets",
		AssigneeID: "stu-1",
		DueDate:    "2026-09-01",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tk.Status != task.StatusOpen {
		t.Fatalf("new task status = %q, want open", tk.Status)
	}

	tk, err = store.UpdateStatus(ctx, tk.ID, task.StatusDone)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if tk.CompletedAt == nil {
		t.Fatal("completed_at not set on done")
	}

	tk, err = store.UpdateStatus(ctx, tk.ID, task.StatusOpen)
	if err != nil {
		t.Fatalf("UpdateStatus reopen: %v", err)
	}
	if tk.CompletedAt != nil {
		t.Fatal("completed_at not cleared on reopen")
	}

	if _, err := store.UpdateStatus(ctx, tk.ID, "archived"); !errors.Is(err, task.ErrBadStatus) {
		t.Fatalf("bad status: err = %v, want ErrBadStatus", err)
	}
	if _, err := store.UpdateStatus(ctx, "nope", task.StatusDone); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("unknown task: err = %v, want ErrNotFound", err)
	}
}

func TestListFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "inst-1", task.CreateRequest{Title: "a", AssigneeID: "stu-1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, "inst-1", task.CreateRequest{Title: "b", AssigneeID: "stu-2"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	own, err := store.List(ctx, task.ListOpts{AssigneeID: "stu-1"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(own) != 1 || own[0].Title != "a" {
		t.Fatalf("assignee filter mismatch: %+v", own)
	}

	all, err := store.List(ctx, task.ListOpts{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d tasks, want 2", len(all))
	}
}
