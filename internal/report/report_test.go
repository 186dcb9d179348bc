package report_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/paramedtrack/paramedtrack/internal/db"
	"github.com/paramedtrack/paramedtrack/internal/eval"
	"github.com/paramedtrack/paramedtrack/internal/report"
)

func ip(v int) *int { return &v }

func seed(t *testing.T) (*report.Reporter, string) {
	t.Helper()
	h, err := db.Open(context.Background(), db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { h.Close() })

	store := eval.NewSQLStore(h)
	ctx := context.Background()
	ev, scores, err := store.CreateEvaluation(ctx, eval.Evaluation{
		ScenarioID: "scn-1", CohortID: "cohort-2026", EvalDate: "2026-05-01",
	}, []string{"stu-1", "stu-2", "stu-3"})
	if err != nil {
		t.Fatalf("CreateEvaluation: %v", err)
	}

	pass := eval.ScoreUpdate{SceneSizeUp: ip(3), PrimaryAssessment: ip(3), Treatment: ip(3), Communication: ip(3), TransportDecision: ip(3)}
	fail := eval.ScoreUpdate{SceneSizeUp: ip(2), PrimaryAssessment: ip(2), Treatment: ip(2), Communication: ip(2), TransportDecision: ip(2)}
	for i, upd := range []eval.ScoreUpdate{pass, fail} {
		if _, err := store.UpdateScore(ctx, scores[i].ID, upd); err != nil {
			t.Fatalf("UpdateScore: %v", err)
		}
		if _, err := store.CompleteGrading(ctx, scores[i].ID); err != nil {
			t.Fatalf("CompleteGrading: %v", err)
		}
	}
	// scores[2] stays ungraded.
	return report.NewReporter(h), ev.ID
}

func TestEvaluationPassRates(t *testing.T) {
	rep, _ := seed(t)

	rates, err := rep.EvaluationPassRates(context.Background(), "")
	if err != nil {
		t.Fatalf("EvaluationPassRates: %v", err)
	}
	if len(rates) != 1 {
		t.Fatalf("got %d groups, want 1", len(rates))
	}
	pr := rates[0]
	if pr.CohortID != "cohort-2026" || pr.Completed != 2 || pr.Passed != 1 || pr.Failed != 1 {
		t.Fatalf("pass rate mismatch: %+v", pr)
	}

	none, err := rep.EvaluationPassRates(context.Background(), "other-cohort")
	if err != nil {
		t.Fatalf("EvaluationPassRates: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("foreign cohort returned rows: %+v", none)
	}
}

func TestWriteEvaluationCSV(t *testing.T) {
	rep, evID := seed(t)

	var buf bytes.Buffer
	if err := rep.WriteEvaluationCSV(context.Background(), &buf, evID); err != nil {
		t.Fatalf("WriteEvaluationCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 { // header + 3 students
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "student_id,scene_size_up") {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	// The ungraded student exports blank sub-scores and a blank verdict.
	last := lines[3]
	if !strings.HasPrefix(last, "stu-3,,,,,") || !strings.HasSuffix(last, "false,") {
		t.Fatalf("ungraded row mismatch: %s", last)
	}
}
