package clinical_test

import (
	"context"
	"errors"
	"testing"

	"github.com/paramedtrack/paramedtrack/internal/clinical"
	"github.com/paramedtrack/paramedtrack/internal/db"
)

func newTestStore(t *testing.T) *clinical.SQLStore {
	t.Helper()
	h, err := db.Open(context.Background(), db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return clinical.NewSQLStore(h)
}

func TestReviewFlowAndHourTotals(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mk := func(hours float64, entryType string) clinical.Entry {
		t.Helper()
		e, err := store.CreateEntry(ctx, "stu-1", clinical.CreateRequest{
			Site:      "County General ED",
			EntryDate: "2026-07-14",
			Hours:     hours,
			EntryType: entryType,
		})
		if err != nil {
			t.Fatalf("CreateEntry: %v", err)
		}
		if e.Status != clinical.StatusSubmitted {
			t.Fatalf("new entry status = %q, want submitted", e.Status)
		}
		return e
	}

	a := mk(8, "clinical")
	b := mk(12, "clinical")
	c := mk(10, "internship")

	if _, err := store.Review(ctx, a.ID, "inst-1", true); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := store.Review(ctx, b.ID, "inst-1", false); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := store.Review(ctx, c.ID, "inst-1", true); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// Only approved hours count.
	totals, err := store.HourTotals(ctx, "stu-1")
	if err != nil {
		t.Fatalf("HourTotals: %v", err)
	}
	want := map[string]float64{"clinical": 8, "internship": 10}
	if len(totals) != len(want) {
		t.Fatalf("totals = %+v, want %v", totals, want)
	}
	for _, tot := range totals {
		if want[tot.EntryType] != tot.Hours {
			t.Fatalf("%s hours = %v, want %v", tot.EntryType, tot.Hours, want[tot.EntryType])
		}
	}

	rejected, err := store.ListEntries(ctx, clinical.ListOpts{StudentID: "stu-1", Status: clinical.StatusRejected})
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(rejected) != 1 || rejected[0].ID != b.ID || rejected[0].ReviewedBy != "inst-1" {
		t.Fatalf("rejected list mismatch: %+v", rejected)
	}
}

func TestReviewUnknownEntry(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Review(context.Background(), "nope", "inst-1", true); !errors.Is(err, clinical.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
