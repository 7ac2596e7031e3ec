// Package voting drives the multi-agent vote over a candidate patch
// set: it deduplicates the raw patches, dispatches differently-focused
// evaluators in a fixed order, stops early once the outcome is
// mathematically certain, and aggregates the votes into a single
// deterministic decision with consensus-quality metrics.
package voting

// Tally counts votes per candidate index. Candidate indices are dense
// (0..n-1), so counts live in a slice rather than a map: iteration is
// always in index order, which keeps max detection and tie breaking
// reproducible. A Tally has a single writer, the session that owns it.
type Tally struct {
	counts []int
	total  int
}

// NewTally creates a tally for numCandidates candidates.
func NewTally(numCandidates int) *Tally {
	return &Tally{counts: make([]int, numCandidates)}
}

// Add records one vote for the candidate at index. The caller
// validates the index before recording.
func (t *Tally) Add(index int) {
	t.counts[index]++
	t.total++
}

// Votes returns the vote count for one candidate.
func (t *Tally) Votes(index int) int {
	return t.counts[index]
}

// TotalVotes returns the number of votes recorded so far.
func (t *Tally) TotalVotes() int {
	return t.total
}

// MaxVotes returns the largest vote count, 0 when no votes exist.
func (t *Tally) MaxVotes() int {
	max := 0
	for _, c := range t.counts {
		if c > max {
			max = c
		}
	}
	return max
}

// SecondPlaceVotes returns the second-largest per-candidate count
// among candidates with at least one vote. When two candidates share
// the lead this equals MaxVotes. It is 0 when fewer than two
// candidates have votes.
func (t *Tally) SecondPlaceVotes() int {
	first, second := 0, 0
	for _, c := range t.counts {
		if c == 0 {
			continue
		}
		if c > first {
			second = first
			first = c
		} else if c > second {
			second = c
		}
	}
	return second
}

// Leaders returns the candidate indices holding MaxVotes, in ascending
// index order. Empty when no votes exist.
func (t *Tally) Leaders() []int {
	max := t.MaxVotes()
	if max == 0 {
		return nil
	}
	var leaders []int
	for i, c := range t.counts {
		if c == max {
			leaders = append(leaders, i)
		}
	}
	return leaders
}

// DistinctChoices returns how many candidates received at least one vote.
func (t *Tally) DistinctChoices() int {
	n := 0
	for _, c := range t.counts {
		if c > 0 {
			n++
		}
	}
	return n
}

// Distribution returns the index-to-count map for candidates with at
// least one vote, matching the serialized vote_distribution contract.
func (t *Tally) Distribution() map[int]int {
	dist := make(map[int]int)
	for i, c := range t.counts {
		if c > 0 {
			dist[i] = c
		}
	}
	return dist
}
