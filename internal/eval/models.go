package eval

import (
	"errors"

	"github.com/paramedtrack/paramedtrack/internal/grading"
)

// Evaluation is one summative grading event: a scenario run for 1–6
// students of a cohort. Immutable after creation; Status is derived from
// the score set and never stored.
type Evaluation struct {
	ID         string         `json:"id"`
	ScenarioID string         `json:"scenario_id"`
	CohortID   string         `json:"cohort_id"`
	EvalDate   string         `json:"eval_date"` // "2006-01-02"
	StartTime  string         `json:"start_time,omitempty"`
	Examiner   string         `json:"examiner,omitempty"`
	Location   string         `json:"location,omitempty"`
	Notes      string         `json:"notes,omitempty"`
	CreatedBy  string         `json:"created_by,omitempty"`
	CreatedAt  int64          `json:"created_at,omitempty"`
	Status     grading.Status `json:"status,omitempty"`
}

// Score is one student's graded result within an Evaluation. Passed stays
// nil until the grader marks grading complete.
type Score struct {
	ID           string `json:"id"`
	EvaluationID string `json:"evaluation_id"`
	StudentID    string `json:"student_id"`

	grading.SubScores
	grading.CriticalFlags

	CriticalNotes   string `json:"critical_notes,omitempty"`
	Total           int    `json:"total"`
	Passed          *bool  `json:"passed"`
	ExaminerNotes   string `json:"examiner_notes,omitempty"`
	StudentFeedback string `json:"student_feedback,omitempty"`
	StartedAt       *int64 `json:"started_at,omitempty"`
	EndedAt         *int64 `json:"ended_at,omitempty"`
	GradingComplete bool   `json:"grading_complete"`
	CompletedAt     *int64 `json:"completed_at,omitempty"`
}

// ScoreUpdate is the grading-workflow write payload. Nil fields are left
// unchanged. Sub-score range checks happen here, at the write boundary,
// before anything reaches the scoring engine.
type ScoreUpdate struct {
	SceneSizeUp       *int `json:"scene_size_up" validate:"omitempty,min=0,max=3"`
	PrimaryAssessment *int `json:"primary_assessment" validate:"omitempty,min=0,max=3"`
	Treatment         *int `json:"treatment" validate:"omitempty,min=0,max=3"`
	Communication     *int `json:"communication" validate:"omitempty,min=0,max=3"`
	TransportDecision *int `json:"transport_decision" validate:"omitempty,min=0,max=3"`

	CriticalMissedMandatoryAction *bool `json:"critical_missed_mandatory_action"`
	CriticalHarmfulIntervention   *bool `json:"critical_harmful_intervention"`
	CriticalUnprofessionalConduct *bool `json:"critical_unprofessional_conduct"`
	CriticalFailed                *bool `json:"critical_failed"`

	CriticalNotes   *string `json:"critical_notes"`
	ExaminerNotes   *string `json:"examiner_notes"`
	StudentFeedback *string `json:"student_feedback"`
	StartedAt       *int64  `json:"started_at"`
	EndedAt         *int64  `json:"ended_at"`
}

// CreateRequest is the write payload for a new evaluation.
type CreateRequest struct {
	ScenarioID string   `json:"scenario_id" validate:"required"`
	CohortID   string   `json:"cohort_id" validate:"required"`
	EvalDate   string   `json:"eval_date" validate:"required,datetime=2006-01-02"`
	StartTime  string   `json:"start_time"`
	Examiner   string   `json:"examiner"`
	Location   string   `json:"location"`
	Notes      string   `json:"notes"`
	StudentIDs []string `json:"student_ids" validate:"required,min=1,max=6,dive,required"`
}

// ListOpts filter ListEvaluations.
type ListOpts struct {
	CohortID   string
	ScenarioID string
	Limit      int
	Offset     int
}

var (
	ErrNotFound        = errors.New("not found")
	ErrGradingComplete = errors.New("grading already complete")
)
