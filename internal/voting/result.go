package voting

import "github.com/Dicklesworthstone/patchquorum/internal/agent"

// ConsensusMetrics quantifies how much the agents agreed.
type ConsensusMetrics struct {
	// ConsensusStrength is the winning vote share, in (0, 1].
	ConsensusStrength float64 `json:"consensus_strength"`

	// ScoreVariance is the population variance of the weighted scores
	// across all delivered evaluations. 0 with fewer than two votes.
	ScoreVariance float64 `json:"score_variance"`

	MinConfidence float64 `json:"min_confidence"`
	AvgConfidence float64 `json:"avg_confidence"`
	MaxConfidence float64 `json:"max_confidence"`

	// VoteDiversity is how many distinct candidates received votes.
	VoteDiversity int `json:"vote_diversity"`

	// Unanimous is true exactly when every vote went to one candidate.
	Unanimous bool `json:"unanimous"`
}

// Result is the full outcome of one voting session. Indices refer to
// positions in the deduplicated candidate ordering, and
// SelectedPatchContent carries the winner's original (pre-normalized)
// text so callers apply exactly what was submitted.
type Result struct {
	SelectedPatchIndex   int                `json:"selected_patch_index"`
	SelectedPatchContent string             `json:"selected_patch_content"`
	VoteDistribution     map[int]int        `json:"vote_distribution"`
	AgentEvaluations     []agent.Evaluation `json:"agent_evaluations"`
	ConsensusMetrics     ConsensusMetrics   `json:"consensus_metrics"`

	// TotalVoters is the number of evaluations actually delivered; it
	// can be below the configured agent count after failures or an
	// early stop.
	TotalVoters int `json:"total_voters"`

	// EarlyStopped is true only when the stopping test fired while
	// undispatched agents remained. A session shortened by failures
	// alone is not early-stopped.
	EarlyStopped bool `json:"early_stopped"`
}

// WinningVotes returns how many votes the selected candidate received.
func (r *Result) WinningVotes() int {
	return r.VoteDistribution[r.SelectedPatchIndex]
}

// WinningScore returns the mean weighted score among the evaluations
// that voted for the selected candidate, 0 when none did.
func (r *Result) WinningScore() float64 {
	sum, n := 0.0, 0
	for _, ev := range r.AgentEvaluations {
		if ev.PatchIndex == r.SelectedPatchIndex {
			sum += ev.WeightedScore()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
