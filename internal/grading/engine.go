// Package grading implements the summative evaluation scoring rules:
// rubric totals, the critical-criteria override, the pass/fail decision,
// and the evaluation-level status rollup. Everything here is pure; callers
// validate inputs at the write boundary and handle persistence themselves.
package grading

const (
	// MaxSubScore is the ceiling for a single rubric category.
	MaxSubScore = 3
	// MaxTotal is five categories at MaxSubScore each.
	MaxTotal = 15
	// PassThreshold is 80% of MaxTotal, inclusive.
	PassThreshold = 12
)

// SubScores holds the five rubric category scores for one student.
// A nil entry means the category has not been graded yet and counts as 0
// in any total shown before grading is complete.
type SubScores struct {
	SceneSizeUp       *int `json:"scene_size_up"`
	PrimaryAssessment *int `json:"primary_assessment"`
	Treatment         *int `json:"treatment"`
	Communication     *int `json:"communication"`
	TransportDecision *int `json:"transport_decision"`
}

func (s SubScores) each() [5]*int {
	return [5]*int{s.SceneSizeUp, s.PrimaryAssessment, s.Treatment, s.Communication, s.TransportDecision}
}

// Complete reports whether every category has been scored.
func (s SubScores) Complete() bool {
	for _, v := range s.each() {
		if v == nil {
			return false
		}
	}
	return true
}

// SumSubScores returns the rubric total in [0,MaxTotal], coalescing unset
// categories to 0. Range checks on individual values belong to the write
// boundary, not here.
func SumSubScores(s SubScores) int {
	total := 0
	for _, v := range s.each() {
		if v != nil {
			total += *v
		}
	}
	return total
}

// CriticalFlags are the critical-criteria markers on a score. Any one of
// the three specific criteria fails the student outright. Failed is the
// stored aggregate; it is normally derived from the other three but a
// grader may also set it directly.
type CriticalFlags struct {
	MissedMandatoryAction bool `json:"critical_missed_mandatory_action"`
	HarmfulIntervention   bool `json:"critical_harmful_intervention"`
	UnprofessionalConduct bool `json:"critical_unprofessional_conduct"`
	Failed                bool `json:"critical_failed"`
}

// Aggregate returns the value the stored aggregate flag must take: the OR
// of the three specific criteria and any directly-set aggregate.
func (f CriticalFlags) Aggregate() bool {
	return f.Failed || f.MissedMandatoryAction || f.HarmfulIntervention || f.UnprofessionalConduct
}

// Outcome is the pass/fail result of a completed score.
type Outcome string

const (
	OutcomePass Outcome = "pass"
	OutcomeFail Outcome = "fail"
)

// Decide applies the pass/fail rule: a critical failure fails regardless of
// total; otherwise the total must reach PassThreshold. The result is only
// persisted once the grader marks the score complete; before that it is a
// live preview.
func Decide(total int, criticalFailed bool) Outcome {
	if criticalFailed {
		return OutcomeFail
	}
	if total >= PassThreshold {
		return OutcomePass
	}
	return OutcomeFail
}
