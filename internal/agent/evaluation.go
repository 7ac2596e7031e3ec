package agent

import "fmt"

// Weighted-total dimension weights. Fix effectiveness dominates,
// function preservation is close behind, the rest refine the ordering.
const (
	effectivenessWeight    = 0.35
	preservationWeight     = 0.30
	repositoryImpactWeight = 0.15
	minimalityWeight       = 0.10
	styleCoherenceWeight   = 0.10
)

// Evaluation is one agent's structured verdict on a patch set: the
// chosen patch, five dimension scores on a 0-10 scale, an overall
// confidence in [0, 1], and free-text reasoning. Once returned to the
// coordinator it is owned by the coordinator and never modified.
type Evaluation struct {
	Reasoning             string  `json:"reasoning"`
	PatchIndex            int     `json:"patch_index"`
	EffectivenessScore    float64 `json:"effectiveness_score"`
	PreservationScore     float64 `json:"preservation_score"`
	MinimalityScore       float64 `json:"minimality_score"`
	StyleCoherenceScore   float64 `json:"style_coherence_score"`
	RepositoryImpactScore float64 `json:"repository_impact_score"`
	OverallConfidence     float64 `json:"overall_confidence"`
	RiskAssessment        string  `json:"risk_assessment"`
}

// WeightedScore collapses the five dimensions into one comparable
// total on the same 0-10 scale.
func (e Evaluation) WeightedScore() float64 {
	return e.EffectivenessScore*effectivenessWeight +
		e.PreservationScore*preservationWeight +
		e.RepositoryImpactScore*repositoryImpactWeight +
		e.MinimalityScore*minimalityWeight +
		e.StyleCoherenceScore*styleCoherenceWeight
}

// Validate checks the evaluation against the contract: all dimension
// scores in [0, 10], confidence in [0, 1], and the chosen patch index
// inside the candidate set.
func (e Evaluation) Validate(numPatches int) error {
	if e.PatchIndex < 0 || e.PatchIndex >= numPatches {
		return fmt.Errorf("patch index %d out of range [0, %d)", e.PatchIndex, numPatches)
	}
	dims := map[string]float64{
		"effectiveness_score":     e.EffectivenessScore,
		"preservation_score":      e.PreservationScore,
		"minimality_score":        e.MinimalityScore,
		"style_coherence_score":   e.StyleCoherenceScore,
		"repository_impact_score": e.RepositoryImpactScore,
	}
	for name, score := range dims {
		if score < 0 || score > 10 {
			return fmt.Errorf("%s %v outside [0, 10]", name, score)
		}
	}
	if e.OverallConfidence < 0 || e.OverallConfidence > 1 {
		return fmt.Errorf("overall_confidence %v outside [0, 1]", e.OverallConfidence)
	}
	return nil
}

// DefaultEvaluation is the fixed low-confidence fallback substituted
// when an agent exhausts its retries: it points at patch 0 with
// neutral scores so the session can still count a vote.
func DefaultEvaluation() Evaluation {
	return Evaluation{
		Reasoning:             "Evaluation failed, returning default selection of first patch",
		PatchIndex:            0,
		EffectivenessScore:    5.0,
		PreservationScore:     5.0,
		MinimalityScore:       5.0,
		StyleCoherenceScore:   5.0,
		RepositoryImpactScore: 5.0,
		OverallConfidence:     0.1,
		RiskAssessment:        "Evaluation process failed, manual inspection recommended",
	}
}
