package voting

import (
	"log/slog"

	"github.com/Dicklesworthstone/patchquorum/internal/agent"
	"github.com/Dicklesworthstone/patchquorum/internal/patch"
)

// aggregate turns the committed votes into a final Result: it picks
// the winner (breaking ties deterministically), computes the consensus
// metrics, and binds the winner back to its original patch text.
func aggregate(candidates []patch.NormalizedPatch, evals []agent.Evaluation, tally *Tally, earlyStopped bool, logger *slog.Logger) *Result {
	leaders := tally.Leaders()
	winner := leaders[0]
	if len(leaders) > 1 {
		winner = resolveTie(leaders, evals)
		logger.Info("vote tie resolved",
			"leaders", leaders,
			"winner", winner,
		)
	}

	return &Result{
		SelectedPatchIndex:   winner,
		SelectedPatchContent: candidates[winner].OriginalContent,
		VoteDistribution:     tally.Distribution(),
		AgentEvaluations:     evals,
		ConsensusMetrics:     consensusMetrics(evals, tally),
		TotalVoters:          len(evals),
		EarlyStopped:         earlyStopped,
	}
}

// resolveTie picks among equally-voted leaders by mean weighted score,
// then mean confidence, then lowest candidate index. leaders is in
// ascending index order, so iterating and replacing only on a strict
// improvement realizes the lowest-index fallback.
func resolveTie(leaders []int, evals []agent.Evaluation) int {
	best := leaders[0]
	bestScore, bestConf := supporterAverages(best, evals)

	for _, idx := range leaders[1:] {
		score, conf := supporterAverages(idx, evals)
		if score > bestScore || (score == bestScore && conf > bestConf) {
			best, bestScore, bestConf = idx, score, conf
		}
	}
	return best
}

// supporterAverages returns the mean weighted score and mean confidence
// of the evaluations that voted for candidate idx.
func supporterAverages(idx int, evals []agent.Evaluation) (score, confidence float64) {
	n := 0
	for _, ev := range evals {
		if ev.PatchIndex == idx {
			score += ev.WeightedScore()
			confidence += ev.OverallConfidence
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return score / float64(n), confidence / float64(n)
}

func consensusMetrics(evals []agent.Evaluation, tally *Tally) ConsensusMetrics {
	m := ConsensusMetrics{
		ConsensusStrength: float64(tally.MaxVotes()) / float64(tally.TotalVotes()),
		VoteDiversity:     tally.DistinctChoices(),
	}
	m.Unanimous = m.VoteDiversity == 1

	scores := make([]float64, len(evals))
	confSum := 0.0
	m.MinConfidence = evals[0].OverallConfidence
	m.MaxConfidence = evals[0].OverallConfidence
	for i, ev := range evals {
		scores[i] = ev.WeightedScore()
		confSum += ev.OverallConfidence
		if ev.OverallConfidence < m.MinConfidence {
			m.MinConfidence = ev.OverallConfidence
		}
		if ev.OverallConfidence > m.MaxConfidence {
			m.MaxConfidence = ev.OverallConfidence
		}
	}
	m.AvgConfidence = confSum / float64(len(evals))
	m.ScoreVariance = populationVariance(scores)
	return m
}

// populationVariance is the variance over the whole vote population,
// not a sample estimate. 0 for fewer than two values.
func populationVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return variance / float64(len(values))
}
