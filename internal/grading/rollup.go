package grading

// Status is the evaluation-level badge derived from its scores.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusAllPassed  Status = "all_passed"
	StatusSomeFailed Status = "some_failed"
	// StatusCompleted is a defensive fallback. While passed is a plain
	// boolean it cannot occur; do not surface it as a badge.
	StatusCompleted Status = "completed"
)

// ScoreState is the minimal per-score view the rollup needs.
type ScoreState struct {
	GradingComplete bool
	Passed          bool
}

// RollupStatus derives the evaluation status from its score set.
// Precedence: emptiness, then completeness across all scores, then
// pass/fail composition.
func RollupStatus(scores []ScoreState) Status {
	if len(scores) == 0 {
		return StatusPending
	}
	allPassed := true
	anyFailed := false
	for _, s := range scores {
		if !s.GradingComplete {
			return StatusInProgress
		}
		if s.Passed {
			continue
		}
		allPassed = false
		anyFailed = true
	}
	switch {
	case allPassed:
		return StatusAllPassed
	case anyFailed:
		return StatusSomeFailed
	}
	return StatusCompleted
}
