package eval

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paramedtrack/paramedtrack/internal/grading"
)

// SQLStore persists evaluations and scores. Works against both the sqlite
// and postgres drivers; placeholders are $n throughout.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// CreateEvaluation inserts the evaluation and one blank score per student.
// The student count is validated by the caller (1–6); the unique
// (evaluation_id, student_id) constraint rejects duplicates.
func (s *SQLStore) CreateEvaluation(ctx context.Context, ev Evaluation, studentIDs []string) (Evaluation, []Score, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Evaluation{}, nil, err
	}
	defer tx.Rollback()

	ev.ID = uuid.NewString()
	ev.CreatedAt = time.Now().Unix()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO evaluations (id, scenario_id, cohort_id, eval_date, start_time, examiner, location, notes, created_by, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		ev.ID, ev.ScenarioID, ev.CohortID, ev.EvalDate, ev.StartTime, ev.Examiner, ev.Location, ev.Notes, ev.CreatedBy, ev.CreatedAt)
	if err != nil {
		return Evaluation{}, nil, err
	}

	scores := make([]Score, 0, len(studentIDs))
	for _, sid := range studentIDs {
		sc := Score{ID: uuid.NewString(), EvaluationID: ev.ID, StudentID: sid}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO scores (id, evaluation_id, student_id) VALUES ($1,$2,$3)`,
			sc.ID, sc.EvaluationID, sc.StudentID)
		if err != nil {
			return Evaluation{}, nil, err
		}
		scores = append(scores, sc)
	}
	if err := tx.Commit(); err != nil {
		return Evaluation{}, nil, err
	}
	ev.Status = grading.StatusInProgress
	return ev, scores, nil
}

func (s *SQLStore) GetEvaluation(ctx context.Context, id string) (Evaluation, []Score, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, scenario_id, cohort_id, eval_date, start_time, examiner, location, notes, created_by, created_at
		 FROM evaluations WHERE id=$1`, id)
	var ev Evaluation
	if err := row.Scan(&ev.ID, &ev.ScenarioID, &ev.CohortID, &ev.EvalDate, &ev.StartTime,
		&ev.Examiner, &ev.Location, &ev.Notes, &ev.CreatedBy, &ev.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Evaluation{}, nil, fmt.Errorf("evaluation %s: %w", id, ErrNotFound)
		}
		return Evaluation{}, nil, err
	}
	scores, err := s.listScores(ctx, `WHERE evaluation_id=$1 ORDER BY student_id`, id)
	if err != nil {
		return Evaluation{}, nil, err
	}
	ev.Status = grading.RollupStatus(scoreStates(scores))
	return ev, scores, nil
}

func (s *SQLStore) ListEvaluations(ctx context.Context, opts ListOpts) ([]Evaluation, error) {
	q := `SELECT id, scenario_id, cohort_id, eval_date, start_time, examiner, location, notes, created_by, created_at
	      FROM evaluations`
	args := []any{}
	where := ""
	if opts.CohortID != "" {
		args = append(args, opts.CohortID)
		where = fmt.Sprintf(" WHERE cohort_id=$%d", len(args))
	}
	if opts.ScenarioID != "" {
		args = append(args, opts.ScenarioID)
		if where == "" {
			where = fmt.Sprintf(" WHERE scenario_id=$%d", len(args))
		} else {
			where += fmt.Sprintf(" AND scenario_id=$%d", len(args))
		}
	}
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, opts.Offset)
	q += where + fmt.Sprintf(" ORDER BY eval_date DESC, created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Evaluation{}
	for rows.Next() {
		var ev Evaluation
		if err := rows.Scan(&ev.ID, &ev.ScenarioID, &ev.CohortID, &ev.EvalDate, &ev.StartTime,
			&ev.Examiner, &ev.Location, &ev.Notes, &ev.CreatedBy, &ev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Status badge per evaluation.
	for i := range out {
		states, err := s.scoreStatesFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Status = grading.RollupStatus(states)
	}
	return out, nil
}

// UpdateScore applies a partial grading update. The aggregate critical flag
// and the running total are recomputed and persisted on every write.
// Last-write-wins; no locking.
func (s *SQLStore) UpdateScore(ctx context.Context, scoreID string, upd ScoreUpdate) (Score, error) {
	sc, err := s.GetScore(ctx, scoreID)
	if err != nil {
		return Score{}, err
	}
	if sc.GradingComplete {
		return Score{}, ErrGradingComplete
	}

	applyInt := func(dst **int, src *int) {
		if src != nil {
			*dst = src
		}
	}
	applyInt(&sc.SceneSizeUp, upd.SceneSizeUp)
	applyInt(&sc.PrimaryAssessment, upd.PrimaryAssessment)
	applyInt(&sc.Treatment, upd.Treatment)
	applyInt(&sc.Communication, upd.Communication)
	applyInt(&sc.TransportDecision, upd.TransportDecision)

	if upd.CriticalMissedMandatoryAction != nil {
		sc.MissedMandatoryAction = *upd.CriticalMissedMandatoryAction
	}
	if upd.CriticalHarmfulIntervention != nil {
		sc.HarmfulIntervention = *upd.CriticalHarmfulIntervention
	}
	if upd.CriticalUnprofessionalConduct != nil {
		sc.UnprofessionalConduct = *upd.CriticalUnprofessionalConduct
	}
	if upd.CriticalFailed != nil {
		sc.Failed = *upd.CriticalFailed
	}
	sc.Failed = sc.CriticalFlags.Aggregate()

	if upd.CriticalNotes != nil {
		sc.CriticalNotes = *upd.CriticalNotes
	}
	if upd.ExaminerNotes != nil {
		sc.ExaminerNotes = *upd.ExaminerNotes
	}
	if upd.StudentFeedback != nil {
		sc.StudentFeedback = *upd.StudentFeedback
	}
	if upd.StartedAt != nil {
		sc.StartedAt = upd.StartedAt
	}
	if upd.EndedAt != nil {
		sc.EndedAt = upd.EndedAt
	}

	sc.Total = grading.SumSubScores(sc.SubScores)

	_, err = s.db.ExecContext(ctx,
		`UPDATE scores SET
		   scene_size_up=$1, primary_assessment=$2, treatment=$3, communication=$4, transport_decision=$5,
		   critical_missed_mandatory_action=$6, critical_harmful_intervention=$7,
		   critical_unprofessional_conduct=$8, critical_failed=$9, critical_notes=$10,
		   total=$11, examiner_notes=$12, student_feedback=$13, started_at=$14, ended_at=$15
		 WHERE id=$16`,
		nullInt(sc.SceneSizeUp), nullInt(sc.PrimaryAssessment), nullInt(sc.Treatment),
		nullInt(sc.Communication), nullInt(sc.TransportDecision),
		sc.MissedMandatoryAction, sc.HarmfulIntervention, sc.UnprofessionalConduct, sc.Failed,
		sc.CriticalNotes, sc.Total, sc.ExaminerNotes, sc.StudentFeedback,
		nullInt64(sc.StartedAt), nullInt64(sc.EndedAt), scoreID)
	if err != nil {
		return Score{}, err
	}
	return s.GetScore(ctx, scoreID)
}

// CompleteGrading runs the final computation and freezes the score: total,
// pass/fail, grading_complete and the completion timestamp.
func (s *SQLStore) CompleteGrading(ctx context.Context, scoreID string) (Score, error) {
	sc, err := s.GetScore(ctx, scoreID)
	if err != nil {
		return Score{}, err
	}
	if sc.GradingComplete {
		return sc, nil
	}

	total := grading.SumSubScores(sc.SubScores)
	passed := grading.Decide(total, sc.CriticalFlags.Aggregate()) == grading.OutcomePass
	now := time.Now().Unix()

	_, err = s.db.ExecContext(ctx,
		`UPDATE scores SET total=$1, passed=$2, critical_failed=$3, grading_complete=TRUE, completed_at=$4 WHERE id=$5`,
		total, passed, sc.CriticalFlags.Aggregate(), now, scoreID)
	if err != nil {
		return Score{}, err
	}
	return s.GetScore(ctx, scoreID)
}

func (s *SQLStore) GetScore(ctx context.Context, id string) (Score, error) {
	scores, err := s.listScores(ctx, `WHERE id=$1`, id)
	if err != nil {
		return Score{}, err
	}
	if len(scores) == 0 {
		return Score{}, fmt.Errorf("score %s: %w", id, ErrNotFound)
	}
	return scores[0], nil
}

// ListStudentScores returns every score belonging to a student, newest
// evaluation first.
func (s *SQLStore) ListStudentScores(ctx context.Context, studentID string) ([]Score, error) {
	return s.listScores(ctx,
		`WHERE student_id=$1 ORDER BY (SELECT created_at FROM evaluations e WHERE e.id=evaluation_id) DESC`,
		studentID)
}

const scoreCols = `id, evaluation_id, student_id,
	scene_size_up, primary_assessment, treatment, communication, transport_decision,
	critical_missed_mandatory_action, critical_harmful_intervention, critical_unprofessional_conduct,
	critical_failed, critical_notes, total, passed, examiner_notes, student_feedback,
	started_at, ended_at, grading_complete, completed_at`

func (s *SQLStore) listScores(ctx context.Context, clause string, args ...any) ([]Score, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+scoreCols+` FROM scores `+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Score{}
	for rows.Next() {
		var sc Score
		var sub [5]sql.NullInt64
		var passed sql.NullBool
		var started, ended, completed sql.NullInt64
		if err := rows.Scan(&sc.ID, &sc.EvaluationID, &sc.StudentID,
			&sub[0], &sub[1], &sub[2], &sub[3], &sub[4],
			&sc.MissedMandatoryAction, &sc.HarmfulIntervention, &sc.UnprofessionalConduct,
			&sc.Failed, &sc.CriticalNotes, &sc.Total, &passed, &sc.ExaminerNotes, &sc.StudentFeedback,
			&started, &ended, &sc.GradingComplete, &completed); err != nil {
			return nil, err
		}
		sc.SceneSizeUp = intPtr(sub[0])
		sc.PrimaryAssessment = intPtr(sub[1])
		sc.Treatment = intPtr(sub[2])
		sc.Communication = intPtr(sub[3])
		sc.TransportDecision = intPtr(sub[4])
		if passed.Valid {
			v := passed.Bool
			sc.Passed = &v
		}
		sc.StartedAt = int64Ptr(started)
		sc.EndedAt = int64Ptr(ended)
		sc.CompletedAt = int64Ptr(completed)
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *SQLStore) scoreStatesFor(ctx context.Context, evaluationID string) ([]grading.ScoreState, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT grading_complete, passed FROM scores WHERE evaluation_id=$1`, evaluationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []grading.ScoreState{}
	for rows.Next() {
		var st grading.ScoreState
		var passed sql.NullBool
		if err := rows.Scan(&st.GradingComplete, &passed); err != nil {
			return nil, err
		}
		st.Passed = passed.Valid && passed.Bool
		out = append(out, st)
	}
	return out, rows.Err()
}

func scoreStates(scores []Score) []grading.ScoreState {
	out := make([]grading.ScoreState, len(scores))
	for i, sc := range scores {
		out[i] = grading.ScoreState{
			GradingComplete: sc.GradingComplete,
			Passed:          sc.Passed != nil && *sc.Passed,
		}
	}
	return out
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
