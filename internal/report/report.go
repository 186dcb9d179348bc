// Package report runs the read-only reporting queries behind the
// instructor dashboards and the CSV export.
package report

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

type Reporter struct{ db *sql.DB }

func NewReporter(db *sql.DB) *Reporter { return &Reporter{db: db} }

// PassRate aggregates completed scores per cohort and scenario.
type PassRate struct {
	CohortID   string `json:"cohort_id"`
	ScenarioID string `json:"scenario_id"`
	Completed  int    `json:"completed"`
	Passed     int    `json:"passed"`
	Failed     int    `json:"failed"`
}

// EvaluationPassRates counts completed scores grouped by cohort and
// scenario. Pass cohortID="" for all cohorts.
func (r *Reporter) EvaluationPassRates(ctx context.Context, cohortID string) ([]PassRate, error) {
	q := `SELECT e.cohort_id, e.scenario_id,
	             COUNT(*),
	             COALESCE(SUM(CASE WHEN s.passed THEN 1 ELSE 0 END),0),
	             COALESCE(SUM(CASE WHEN s.passed THEN 0 ELSE 1 END),0)
	      FROM scores s
	      JOIN evaluations e ON e.id = s.evaluation_id
	      WHERE s.grading_complete`
	args := []any{}
	if cohortID != "" {
		q += ` AND e.cohort_id=$1`
		args = append(args, cohortID)
	}
	q += ` GROUP BY e.cohort_id, e.scenario_id ORDER BY e.cohort_id, e.scenario_id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PassRate{}
	for rows.Next() {
		var pr PassRate
		if err := rows.Scan(&pr.CohortID, &pr.ScenarioID, &pr.Completed, &pr.Passed, &pr.Failed); err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

// StudentHours is approved clinical hours per student and entry type.
type StudentHours struct {
	StudentID string  `json:"student_id"`
	EntryType string  `json:"entry_type"`
	Hours     float64 `json:"hours"`
}

func (r *Reporter) ClinicalHourTotals(ctx context.Context) ([]StudentHours, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT student_id, entry_type, COALESCE(SUM(hours),0)
		 FROM clinical_entries WHERE status='approved'
		 GROUP BY student_id, entry_type ORDER BY student_id, entry_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []StudentHours{}
	for rows.Next() {
		var sh StudentHours
		if err := rows.Scan(&sh.StudentID, &sh.EntryType, &sh.Hours); err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

// WriteEvaluationCSV streams one evaluation's results as CSV.
func (r *Reporter) WriteEvaluationCSV(ctx context.Context, w io.Writer, evaluationID string) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT student_id, scene_size_up, primary_assessment, treatment, communication, transport_decision,
		        total, critical_failed, grading_complete, passed
		 FROM scores WHERE evaluation_id=$1 ORDER BY student_id`, evaluationID)
	if err != nil {
		return err
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"student_id", "scene_size_up", "primary_assessment", "treatment", "communication",
		"transport_decision", "total", "critical_failed", "grading_complete", "passed",
	}); err != nil {
		return err
	}
	for rows.Next() {
		var studentID string
		var sub [5]sql.NullInt64
		var total int
		var criticalFailed, complete bool
		var passed sql.NullBool
		if err := rows.Scan(&studentID, &sub[0], &sub[1], &sub[2], &sub[3], &sub[4],
			&total, &criticalFailed, &complete, &passed); err != nil {
			return err
		}
		rec := []string{studentID}
		for _, v := range sub {
			if v.Valid {
				rec = append(rec, strconv.FormatInt(v.Int64, 10))
			} else {
				rec = append(rec, "")
			}
		}
		rec = append(rec, strconv.Itoa(total), strconv.FormatBool(criticalFailed), strconv.FormatBool(complete))
		if passed.Valid {
			rec = append(rec, strconv.FormatBool(passed.Bool))
		} else {
			rec = append(rec, "")
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	return nil
}
