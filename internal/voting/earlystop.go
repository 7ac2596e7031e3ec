package voting

import "math"

// StopDecision explains one early-stopping check. All three conditions
// must hold for Stop to be true, so a session never stops while a
// trailing candidate could still catch up.
type StopDecision struct {
	Stop bool

	// HasMajority: the leader holds strictly more than ceil(N/2) votes.
	HasMajority bool

	// SufficientParticipation: at least ceil(N*threshold) agents have
	// delivered a vote.
	SufficientParticipation bool

	// InsurmountableLead: even if every remaining agent voted for the
	// runner-up, the leader would still win. Vacuously true while only
	// one candidate has votes.
	InsurmountableLead bool
}

// evaluateStop runs the three-condition early-stopping test after a
// vote has been committed. completed is the number of delivered votes,
// numAgents the session's full roster size.
func evaluateStop(t *Tally, completed, numAgents int, threshold float64) StopDecision {
	maxVotes := t.MaxVotes()

	d := StopDecision{
		HasMajority:             maxVotes > int(math.Ceil(float64(numAgents)/2)),
		SufficientParticipation: completed >= int(math.Ceil(float64(numAgents)*threshold)),
		InsurmountableLead:      true,
	}
	if t.DistinctChoices() > 1 {
		remaining := numAgents - completed
		d.InsurmountableLead = maxVotes > t.SecondPlaceVotes()+remaining
	}
	d.Stop = d.HasMajority && d.SufficientParticipation && d.InsurmountableLead
	return d
}
