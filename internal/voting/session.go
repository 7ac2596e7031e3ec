package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/patchquorum/internal/agent"
	"github.com/Dicklesworthstone/patchquorum/internal/config"
	"github.com/Dicklesworthstone/patchquorum/internal/patch"
)

var (
	// ErrNoPatches is returned when the input contains no usable
	// candidates, before or after normalization.
	ErrNoPatches = errors.New("no candidate patches available for voting")

	// ErrAllEvaluatorsFailed is returned when every dispatched agent
	// failed to deliver a vote.
	ErrAllEvaluatorsFailed = errors.New("all agent evaluations failed")
)

// Session runs votes for one configuration. The agent roster is fixed
// at construction, so repeated runs over the same input are
// reproducible apart from the evaluator's own behavior.
type Session struct {
	cfg       config.Config
	evaluator agent.Evaluator
	configs   []agent.Config
	logger    *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithAspectCatalog generates the agent roster from a custom catalog
// instead of the built-in one.
func WithAspectCatalog(catalog agent.AspectCatalog) Option {
	return func(s *Session) { s.configs = catalog.Generate(s.rosterSize()) }
}

// NewSession validates cfg and builds a session around evaluator.
func NewSession(cfg config.Config, evaluator agent.Evaluator, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	if evaluator == nil {
		return nil, errors.New("session needs an evaluator")
	}

	s := &Session{cfg: cfg, evaluator: evaluator}
	for _, opt := range opts {
		opt(s)
	}
	if s.configs == nil {
		s.configs = agent.GenerateConfigs(s.rosterSize())
	}
	return s, nil
}

// rosterSize is the number of agents this session dispatches. With
// voting disabled a single agent acts as a plain selector.
func (s *Session) rosterSize() int {
	if !s.cfg.EnableAgentVoting {
		return 1
	}
	return s.cfg.NumVotingAgents
}

// Input is one selection problem: the issue being fixed, the raw
// candidate patches, and optional context blocks describing the
// surrounding code.
type Input struct {
	Issue   agent.IssueInfo
	Patches []string
	Context []string
}

// Run executes the vote and returns the selected patch. The result's
// indices refer to the deduplicated candidate ordering, which Run
// derives from in.Patches before any agent is dispatched.
func (s *Session) Run(ctx context.Context, in Input) (*Result, error) {
	if len(in.Patches) == 0 {
		return nil, ErrNoPatches
	}

	candidates := s.selectCandidates(in.Patches)
	if len(candidates) == 0 {
		return nil, ErrNoPatches
	}

	contextBlocks := in.Context
	if !s.cfg.EnableContextEnhancement {
		contextBlocks = nil
	}

	if len(candidates) == 1 {
		return s.confirmSingle(ctx, in.Issue, contextBlocks, candidates)
	}

	roster := s.configs
	if len(candidates) < s.cfg.MinPatchesForVoting {
		// Too few candidates to justify a full vote: one agent selects.
		roster = s.configs[:1]
	}

	if s.cfg.ParallelAgentExecution {
		return s.runParallel(ctx, in.Issue, contextBlocks, candidates, roster)
	}
	return s.runSequential(ctx, in.Issue, contextBlocks, candidates, roster)
}

// selectCandidates builds the candidate set the agents will see:
// normalization-based deduplication when enabled, otherwise a
// per-patch normalization that keeps duplicates apart, then the
// configured cap.
func (s *Session) selectCandidates(patches []string) []patch.NormalizedPatch {
	var candidates []patch.NormalizedPatch
	if s.cfg.EnablePatchNormalization {
		candidates = patch.Deduplicate(patches)
	} else {
		for i, raw := range patches {
			normalized := patch.Normalize(raw)
			if strings.TrimSpace(normalized) == "" {
				continue
			}
			candidates = append(candidates, patch.NormalizedPatch{
				OriginalIndex:     i,
				OriginalContent:   raw,
				NormalizedContent: normalized,
				Metrics:           patch.ComputeMetrics(normalized),
				OccurrenceCount:   1,
			})
		}
	}

	if max := s.cfg.MaxPatchesForVoting; len(candidates) > max {
		s.log().Info("capping candidate set",
			"candidates", len(candidates),
			"max", max,
		)
		candidates = candidates[:max]
	}
	return candidates
}

// confirmSingle handles candidate sets too small for a real vote: one
// agent audits the lone survivor and the result records a unanimous
// single-voter outcome. An audit failure is a session failure, there
// is no second agent to fall back on.
func (s *Session) confirmSingle(ctx context.Context, issue agent.IssueInfo, contextBlocks []string, candidates []patch.NormalizedPatch) (*Result, error) {
	eval, err := s.evaluator.Evaluate(ctx, s.request(issue, contextBlocks, candidates, s.configs[0]))
	if err != nil {
		return nil, fmt.Errorf("single-candidate audit: %w", err)
	}

	s.log().Info("single candidate confirmed without a vote",
		"confidence", eval.OverallConfidence,
		"weighted_score", eval.WeightedScore(),
	)
	return &Result{
		SelectedPatchIndex:   0,
		SelectedPatchContent: candidates[0].OriginalContent,
		VoteDistribution:     map[int]int{0: 1},
		AgentEvaluations:     []agent.Evaluation{eval},
		ConsensusMetrics: ConsensusMetrics{
			ConsensusStrength: 1.0,
			MinConfidence:     eval.OverallConfidence,
			AvgConfidence:     eval.OverallConfidence,
			MaxConfidence:     eval.OverallConfidence,
			VoteDiversity:     1,
			Unanimous:         true,
		},
		TotalVoters:  1,
		EarlyStopped: false,
	}, nil
}

func (s *Session) runSequential(ctx context.Context, issue agent.IssueInfo, contextBlocks []string, candidates []patch.NormalizedPatch, roster []agent.Config) (*Result, error) {
	return s.collectVotes(ctx, candidates, roster, func(i int) (agent.Evaluation, error) {
		return s.evaluator.Evaluate(ctx, s.request(issue, contextBlocks, candidates, roster[i]))
	})
}

// runParallel dispatches every agent concurrently, then commits the
// outcomes in agent-id order so tallies, early stopping, and therefore
// the final Result are identical to a sequential run. Votes landing
// past the stop point are discarded, not counted.
func (s *Session) runParallel(ctx context.Context, issue agent.IssueInfo, contextBlocks []string, candidates []patch.NormalizedPatch, roster []agent.Config) (*Result, error) {
	type outcome struct {
		eval agent.Evaluation
		err  error
	}
	outcomes := make([]outcome, len(roster))

	g, gctx := errgroup.WithContext(ctx)
	for i := range roster {
		i := i
		g.Go(func() error {
			eval, err := s.evaluator.Evaluate(gctx, s.request(issue, contextBlocks, candidates, roster[i]))
			outcomes[i] = outcome{eval: eval, err: err}
			return nil
		})
	}
	// Per-agent failures are tolerated and recorded in their slots, so
	// Wait only synchronizes.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.collectVotes(ctx, candidates, roster, func(i int) (agent.Evaluation, error) {
		return outcomes[i].eval, outcomes[i].err
	})
}

// collectVotes is the commit loop shared by both execution modes:
// outcomes are consumed in ascending agent-id order, failures are
// skipped, and the early-stopping test runs after every committed
// vote. fetch(i) yields agent i's outcome, lazily in sequential mode.
func (s *Session) collectVotes(ctx context.Context, candidates []patch.NormalizedPatch, roster []agent.Config, fetch func(i int) (agent.Evaluation, error)) (*Result, error) {
	numAgents := len(roster)
	tally := NewTally(len(candidates))
	evals := make([]agent.Evaluation, 0, numAgents)
	earlyStopped := false

	for i, ac := range roster {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		eval, err := fetch(i)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			s.log().Error("agent evaluation failed",
				"agent_id", ac.AgentID,
				"focus_aspect", ac.FocusAspect,
				"error", err,
			)
			continue
		}
		if err := eval.Validate(len(candidates)); err != nil {
			s.log().Error("discarding invalid agent evaluation",
				"agent_id", ac.AgentID,
				"error", err,
			)
			continue
		}

		evals = append(evals, eval)
		tally.Add(eval.PatchIndex)
		s.log().Info("agent vote committed",
			"agent_id", ac.AgentID,
			"focus_aspect", ac.FocusAspect,
			"patch_index", eval.PatchIndex,
			"weighted_score", eval.WeightedScore(),
			"confidence", eval.OverallConfidence,
		)

		if s.cfg.EnableEarlyStopping {
			decision := evaluateStop(tally, len(evals), numAgents, s.cfg.EarlyStoppingThreshold)
			if decision.Stop {
				if i+1 < len(roster) {
					earlyStopped = true
					s.log().Info("early stopping triggered",
						"committed_votes", len(evals),
						"skipped_agents", len(roster)-i-1,
						"leader_votes", tally.MaxVotes(),
					)
				}
				break
			}
		}
	}

	if len(evals) == 0 {
		return nil, ErrAllEvaluatorsFailed
	}
	return aggregate(candidates, evals, tally, earlyStopped, s.log()), nil
}

func (s *Session) request(issue agent.IssueInfo, contextBlocks []string, candidates []patch.NormalizedPatch, ac agent.Config) agent.Request {
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.OriginalContent
	}
	return agent.Request{
		Issue:      issue,
		Context:    contextBlocks,
		Patches:    texts,
		Normalized: candidates,
		Config:     ac,
	}
}

func (s *Session) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
