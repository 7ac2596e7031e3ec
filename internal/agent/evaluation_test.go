package agent

import (
	"math"
	"testing"
)

func TestWeightedScore(t *testing.T) {
	e := Evaluation{
		EffectivenessScore:    8.0,
		PreservationScore:     7.0,
		RepositoryImpactScore: 6.0,
		MinimalityScore:       9.0,
		StyleCoherenceScore:   5.0,
	}

	want := 8.0*0.35 + 7.0*0.30 + 6.0*0.15 + 9.0*0.10 + 5.0*0.10
	if got := e.WeightedScore(); math.Abs(got-want) > 1e-9 {
		t.Errorf("WeightedScore() = %v, want %v", got, want)
	}
}

func TestWeightedScoreRange(t *testing.T) {
	top := Evaluation{
		EffectivenessScore:    10,
		PreservationScore:     10,
		RepositoryImpactScore: 10,
		MinimalityScore:       10,
		StyleCoherenceScore:   10,
	}
	if got := top.WeightedScore(); math.Abs(got-10.0) > 1e-9 {
		t.Errorf("max WeightedScore() = %v, want 10", got)
	}
	if got := (Evaluation{}).WeightedScore(); got != 0 {
		t.Errorf("zero WeightedScore() = %v, want 0", got)
	}
}

func TestEvaluationValidate(t *testing.T) {
	valid := Evaluation{
		PatchIndex:            1,
		EffectivenessScore:    8,
		PreservationScore:     8,
		MinimalityScore:       8,
		StyleCoherenceScore:   8,
		RepositoryImpactScore: 8,
		OverallConfidence:     0.9,
	}

	if err := valid.Validate(3); err != nil {
		t.Errorf("valid evaluation rejected: %v", err)
	}

	outOfRange := valid
	outOfRange.PatchIndex = 3
	if err := outOfRange.Validate(3); err == nil {
		t.Error("expected error for out-of-range patch index")
	}

	negative := valid
	negative.PatchIndex = -1
	if err := negative.Validate(3); err == nil {
		t.Error("expected error for negative patch index")
	}

	badScore := valid
	badScore.EffectivenessScore = 11
	if err := badScore.Validate(3); err == nil {
		t.Error("expected error for score above 10")
	}

	badConfidence := valid
	badConfidence.OverallConfidence = 1.5
	if err := badConfidence.Validate(3); err == nil {
		t.Error("expected error for confidence above 1")
	}
}

func TestDefaultEvaluation(t *testing.T) {
	d := DefaultEvaluation()

	if d.PatchIndex != 0 {
		t.Errorf("default PatchIndex = %d, want 0", d.PatchIndex)
	}
	if d.OverallConfidence != 0.1 {
		t.Errorf("default OverallConfidence = %v, want 0.1", d.OverallConfidence)
	}
	for name, score := range map[string]float64{
		"effectiveness":     d.EffectivenessScore,
		"preservation":      d.PreservationScore,
		"minimality":        d.MinimalityScore,
		"style":             d.StyleCoherenceScore,
		"repository_impact": d.RepositoryImpactScore,
	} {
		if score != 5.0 {
			t.Errorf("default %s score = %v, want 5.0", name, score)
		}
	}
	if err := d.Validate(1); err != nil {
		t.Errorf("default evaluation must satisfy the contract: %v", err)
	}
}
