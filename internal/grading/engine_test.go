package grading

import "testing"

func ip(v int) *int { return &v }

func subs(vals ...*int) SubScores {
	var s SubScores
	ptrs := []**int{&s.SceneSizeUp, &s.PrimaryAssessment, &s.Treatment, &s.Communication, &s.TransportDecision}
	for i, v := range vals {
		*ptrs[i] = v
	}
	return s
}

func TestSumSubScores(t *testing.T) {
	tests := []struct {
		name string
		s    SubScores
		want int
	}{
		{"all unset", SubScores{}, 0},
		{"all max", subs(ip(3), ip(3), ip(3), ip(3), ip(3)), 15},
		{"all twos", subs(ip(2), ip(2), ip(2), ip(2), ip(2)), 10},
		{"mixed boundary", subs(ip(2), ip(3), ip(2), ip(3), ip(2)), 12},
		{"nil coalesces to zero", subs(ip(3), nil, ip(3), nil, ip(3)), 9},
		{"all zero", subs(ip(0), ip(0), ip(0), ip(0), ip(0)), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SumSubScores(tt.s)
			if got != tt.want {
				t.Fatalf("SumSubScores = %d, want %d", got, tt.want)
			}
			if got < 0 || got > MaxTotal {
				t.Fatalf("SumSubScores = %d, outside [0,%d]", got, MaxTotal)
			}
		})
	}
}

func TestSubScoresComplete(t *testing.T) {
	if (SubScores{}).Complete() {
		t.Fatal("empty sub-scores reported complete")
	}
	if subs(ip(1), ip(2), ip(3), ip(0), nil).Complete() {
		t.Fatal("partially graded sub-scores reported complete")
	}
	if !subs(ip(1), ip(2), ip(3), ip(0), ip(2)).Complete() {
		t.Fatal("fully graded sub-scores reported incomplete")
	}
}

func TestCriticalAggregate(t *testing.T) {
	// Every combination of the three specific flags.
	for i := 0; i < 8; i++ {
		f := CriticalFlags{
			MissedMandatoryAction: i&1 != 0,
			HarmfulIntervention:   i&2 != 0,
			UnprofessionalConduct: i&4 != 0,
		}
		want := f.MissedMandatoryAction || f.HarmfulIntervention || f.UnprofessionalConduct
		if got := f.Aggregate(); got != want {
			t.Fatalf("Aggregate(%+v) = %v, want %v", f, got, want)
		}
	}
	// The stored aggregate can be set directly without any specific flag.
	if !(CriticalFlags{Failed: true}).Aggregate() {
		t.Fatal("directly-set aggregate flag not honored")
	}
}

func TestDecide(t *testing.T) {
	// A critical failure fails at every total, including a perfect 15.
	for total := 0; total <= MaxTotal; total++ {
		if got := Decide(total, true); got != OutcomeFail {
			t.Fatalf("Decide(%d, critical) = %v, want fail", total, got)
		}
	}
	for total := 0; total <= MaxTotal; total++ {
		want := OutcomeFail
		if total >= PassThreshold {
			want = OutcomePass
		}
		if got := Decide(total, false); got != want {
			t.Fatalf("Decide(%d, false) = %v, want %v", total, got, want)
		}
	}
}

func TestDecideBoundaries(t *testing.T) {
	if Decide(11, false) != OutcomeFail {
		t.Fatal("total 11 must fail")
	}
	if Decide(12, false) != OutcomePass {
		t.Fatal("total 12 must pass (inclusive threshold)")
	}
	if Decide(15, false) != OutcomePass {
		t.Fatal("total 15 must pass")
	}
}

func TestEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name  string
		s     SubScores
		flags CriticalFlags
		total int
		want  Outcome
	}{
		{"perfect scenario", subs(ip(3), ip(3), ip(3), ip(3), ip(3)), CriticalFlags{}, 15, OutcomePass},
		{"flat twos below threshold", subs(ip(2), ip(2), ip(2), ip(2), ip(2)), CriticalFlags{}, 10, OutcomeFail},
		{"perfect with harmful intervention", subs(ip(3), ip(3), ip(3), ip(3), ip(3)), CriticalFlags{HarmfulIntervention: true}, 15, OutcomeFail},
		{"exactly at threshold", subs(ip(2), ip(3), ip(2), ip(3), ip(2)), CriticalFlags{}, 12, OutcomePass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := SumSubScores(tt.s)
			if total != tt.total {
				t.Fatalf("total = %d, want %d", total, tt.total)
			}
			if got := Decide(total, tt.flags.Aggregate()); got != tt.want {
				t.Fatalf("Decide = %v, want %v", got, tt.want)
			}
		})
	}
}
