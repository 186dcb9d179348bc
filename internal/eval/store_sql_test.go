package eval_test

import (
	"context"
	"testing"

	"github.com/paramedtrack/paramedtrack/internal/db"
	"github.com/paramedtrack/paramedtrack/internal/eval"
	"github.com/paramedtrack/paramedtrack/internal/grading"
)

func newTestStore(t *testing.T) *eval.SQLStore {
	t.Helper()
	h, err := db.Open(context.Background(), db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return eval.NewSQLStore(h)
}

func ip(v int) *int       { return &v }
func bp(v bool) *bool     { return &v }
func sp(v string) *string { return &v }

func TestCreateEvaluationBlanksScores(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ev, scores, err := store.CreateEvaluation(ctx, eval.Evaluation{
		ScenarioID: "scn-chest-pain",
		CohortID:   "cohort-2026",
		EvalDate:   "2026-05-01",
		Examiner:   "J. Alvarez",
	}, []string{"stu-1", "stu-2", "stu-3"})
	if err != nil {
		t.Fatalf("CreateEvaluation: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("got %d scores, want 3", len(scores))
	}
	if ev.Status != grading.StatusInProgress {
		t.Fatalf("fresh evaluation status = %q, want in_progress", ev.Status)
	}

	got, gotScores, err := store.GetEvaluation(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetEvaluation: %v", err)
	}
	if got.Examiner != "J. Alvarez" || got.EvalDate != "2026-05-01" {
		t.Fatalf("evaluation round-trip mismatch: %+v", got)
	}
	for _, sc := range gotScores {
		if sc.GradingComplete || sc.Passed != nil || sc.Total != 0 {
			t.Fatalf("blank score not blank: %+v", sc)
		}
		if sc.SceneSizeUp != nil {
			t.Fatalf("blank score has sub-score set")
		}
	}
}

func TestUpdateScoreRecomputesTotalAndAggregate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, scores, err := store.CreateEvaluation(ctx, eval.Evaluation{
		ScenarioID: "scn-1", CohortID: "c-1", EvalDate: "2026-05-01",
	}, []string{"stu-1"})
	if err != nil {
		t.Fatalf("CreateEvaluation: %v", err)
	}
	id := scores[0].ID

	sc, err := store.UpdateScore(ctx, id, eval.ScoreUpdate{
		SceneSizeUp:       ip(3),
		PrimaryAssessment: ip(2),
	})
	if err != nil {
		t.Fatalf("UpdateScore: %v", err)
	}
	if sc.Total != 5 {
		t.Fatalf("running total = %d, want 5 (nil categories count 0)", sc.Total)
	}
	if sc.Passed != nil {
		t.Fatal("passed must stay nil before grading completes")
	}

	// A specific critical flag must flip the stored aggregate.
	sc, err = store.UpdateScore(ctx, id, eval.ScoreUpdate{
		CriticalHarmfulIntervention: bp(true),
		CriticalNotes:               sp("administered contraindicated medication"),
	})
	if err != nil {
		t.Fatalf("UpdateScore: %v", err)
	}
	if !sc.Failed {
		t.Fatal("aggregate critical flag not recomputed to true")
	}

	// Clearing the specific flag clears the aggregate again.
	sc, err = store.UpdateScore(ctx, id, eval.ScoreUpdate{
		CriticalHarmfulIntervention: bp(false),
		CriticalFailed:              bp(false),
	})
	if err != nil {
		t.Fatalf("UpdateScore: %v", err)
	}
	if sc.Failed {
		t.Fatal("aggregate critical flag should clear when all flags are false")
	}
	if sc.CriticalNotes == "" {
		t.Fatal("critical notes must be retained")
	}
}

func TestCompleteGrading(t *testing.T) {
	tests := []struct {
		name   string
		upd    eval.ScoreUpdate
		total  int
		passed bool
	}{
		{
			"perfect run passes",
			eval.ScoreUpdate{SceneSizeUp: ip(3), PrimaryAssessment: ip(3), Treatment: ip(3), Communication: ip(3), TransportDecision: ip(3)},
			15, true,
		},
		{
			"flat twos fail below threshold",
			eval.ScoreUpdate{SceneSizeUp: ip(2), PrimaryAssessment: ip(2), Treatment: ip(2), Communication: ip(2), TransportDecision: ip(2)},
			10, false,
		},
		{
			"boundary twelve passes",
			eval.ScoreUpdate{SceneSizeUp: ip(2), PrimaryAssessment: ip(3), Treatment: ip(2), Communication: ip(3), TransportDecision: ip(2)},
			12, true,
		},
		{
			"critical override beats a perfect total",
			eval.ScoreUpdate{
				SceneSizeUp: ip(3), PrimaryAssessment: ip(3), Treatment: ip(3), Communication: ip(3), TransportDecision: ip(3),
				CriticalHarmfulIntervention: bp(true),
			},
			15, false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			ctx := context.Background()
			_, scores, err := store.CreateEvaluation(ctx, eval.Evaluation{
				ScenarioID: "scn-1", CohortID: "c-1", EvalDate: "2026-05-01",
			}, []string{"stu-1"})
			if err != nil {
				t.Fatalf("CreateEvaluation: %v", err)
			}
			if _, err := store.UpdateScore(ctx, scores[0].ID, tt.upd); err != nil {
				t.Fatalf("UpdateScore: %v", err)
			}
			sc, err := store.CompleteGrading(ctx, scores[0].ID)
			if err != nil {
				t.Fatalf("CompleteGrading: %v", err)
			}
			if sc.Total != tt.total {
				t.Fatalf("total = %d, want %d", sc.Total, tt.total)
			}
			if !sc.GradingComplete || sc.CompletedAt == nil {
				t.Fatal("score not marked complete")
			}
			if sc.Passed == nil || *sc.Passed != tt.passed {
				t.Fatalf("passed = %v, want %v", sc.Passed, tt.passed)
			}

			// Completed scores are frozen.
			if _, err := store.UpdateScore(ctx, sc.ID, eval.ScoreUpdate{SceneSizeUp: ip(0)}); err != eval.ErrGradingComplete {
				t.Fatalf("update after completion: err = %v, want ErrGradingComplete", err)
			}
		})
	}
}

func TestRollupAcrossStudents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ev, scores, err := store.CreateEvaluation(ctx, eval.Evaluation{
		ScenarioID: "scn-1", CohortID: "c-1", EvalDate: "2026-05-01",
	}, []string{"stu-1", "stu-2", "stu-3"})
	if err != nil {
		t.Fatalf("CreateEvaluation: %v", err)
	}

	// Grade two of three: one pass, one fail; the third stays open.
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

	got, _, err := store.GetEvaluation(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetEvaluation: %v", err)
	}
	if got.Status != grading.StatusInProgress {
		t.Fatalf("status = %q, want in_progress while one score is open", got.Status)
	}

	// Finish the last one as a pass: one failure remains in the set.
	if _, err := store.UpdateScore(ctx, scores[2].ID, pass); err != nil {
		t.Fatalf("UpdateScore: %v", err)
	}
	if _, err := store.CompleteGrading(ctx, scores[2].ID); err != nil {
		t.Fatalf("CompleteGrading: %v", err)
	}
	got, _, err = store.GetEvaluation(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetEvaluation: %v", err)
	}
	if got.Status != grading.StatusSomeFailed {
		t.Fatalf("status = %q, want some_failed", got.Status)
	}

	list, err := store.ListEvaluations(ctx, eval.ListOpts{CohortID: "c-1"})
	if err != nil {
		t.Fatalf("ListEvaluations: %v", err)
	}
	if len(list) != 1 || list[0].Status != grading.StatusSomeFailed {
		t.Fatalf("list rollup mismatch: %+v", list)
	}
}

func TestListStudentScores(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, _, err := store.CreateEvaluation(ctx, eval.Evaluation{
		ScenarioID: "scn-1", CohortID: "c-1", EvalDate: "2026-05-01",
	}, []string{"stu-1", "stu-2"}); err != nil {
		t.Fatalf("CreateEvaluation: %v", err)
	}

	own, err := store.ListStudentScores(ctx, "stu-1")
	if err != nil {
		t.Fatalf("ListStudentScores: %v", err)
	}
	if len(own) != 1 || own[0].StudentID != "stu-1" {
		t.Fatalf("student scores mismatch: %+v", own)
	}
}
