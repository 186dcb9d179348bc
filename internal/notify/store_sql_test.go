package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/paramedtrack/paramedtrack/internal/db"
	"github.com/paramedtrack/paramedtrack/internal/notify"
)

func newTestStore(t *testing.T) *notify.SQLStore {
	t.Helper()
	h, err := db.Open(context.Background(), db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return notify.NewSQLStore(h)
}

func TestInsertListMarkRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := store.Insert(ctx, notify.Notification{
		UserID: "stu-1", Kind: "grading", Title: "Summative evaluation graded",
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := store.Insert(ctx, notify.Notification{UserID: "stu-2", Kind: "lab", Title: "other"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	unread, err := store.ListForUser(ctx, "stu-1", true)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(unread) != 1 || unread[0].ID != n.ID || unread[0].Read {
		t.Fatalf("unread list mismatch: %+v", unread)
	}

	if err := store.MarkRead(ctx, n.ID, "stu-1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	unread, err = store.ListForUser(ctx, "stu-1", true)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(unread) != 0 {
		t.Fatalf("still unread after MarkRead: %+v", unread)
	}

	// A user cannot mark another user's notification.
	other, err := store.ListForUser(ctx, "stu-2", true)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if err := store.MarkRead(ctx, other[0].ID, "stu-1"); !errors.Is(err, notify.ErrNotFound) {
		t.Fatalf("cross-user MarkRead: err = %v, want ErrNotFound", err)
	}
}
