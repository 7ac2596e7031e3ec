package agent

import (
	"context"
	"log/slog"

	"github.com/Dicklesworthstone/patchquorum/internal/patch"
)

// IssueComment is one comment on the issue under repair.
type IssueComment struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// IssueInfo summarizes the bug being fixed.
type IssueInfo struct {
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Comments []IssueComment `json:"comments"`
}

// Request carries everything one evaluator call needs. Patches holds
// the candidate texts in voting order; Normalized, when present, lets
// the prompt annotate each candidate with its metrics. The slices are
// read-only for the whole session.
type Request struct {
	Issue      IssueInfo
	Context    []string
	Patches    []string
	Normalized []patch.NormalizedPatch
	Config     Config
}

// Evaluator scores a patch set and casts one vote. Implementations
// wrap whatever actually produces the judgment (an LLM call, a replay
// fixture in tests). An error means this attempt produced nothing.
type Evaluator interface {
	Evaluate(ctx context.Context, req Request) (Evaluation, error)
}

// DefaultMaxRetries is the retry budget applied when none is set.
const DefaultMaxRetries = 2

// Retrying wraps an Evaluator with the per-agent retry policy: failed
// or out-of-range attempts are retried up to MaxRetries times, then
// the fixed low-confidence default evaluation is substituted so the
// coordinator always gets a result per dispatched attempt. Context
// cancellation is the one condition that still propagates, since the
// underlying dependency is gone rather than flaky.
type Retrying struct {
	Inner      Evaluator
	MaxRetries int
	Logger     *slog.Logger
}

// NewRetrying wraps inner with the default retry budget.
func NewRetrying(inner Evaluator, logger *slog.Logger) *Retrying {
	return &Retrying{Inner: inner, MaxRetries: DefaultMaxRetries, Logger: logger}
}

// Evaluate implements Evaluator.
func (r *Retrying) Evaluate(ctx context.Context, req Request) (Evaluation, error) {
	retries := r.MaxRetries
	if retries <= 0 {
		retries = DefaultMaxRetries
	}

	logger := r.logger()
	for attempt := 1; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return Evaluation{}, err
		}

		eval, err := r.Inner.Evaluate(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return Evaluation{}, err
			}
			logger.Warn("agent evaluation attempt failed",
				"agent_id", req.Config.AgentID,
				"attempt", attempt,
				"error", err,
			)
			continue
		}

		if err := eval.Validate(len(req.Patches)); err != nil {
			logger.Warn("agent returned invalid evaluation",
				"agent_id", req.Config.AgentID,
				"attempt", attempt,
				"error", err,
			)
			continue
		}

		return eval, nil
	}

	logger.Warn("agent exhausted retries, substituting default evaluation",
		"agent_id", req.Config.AgentID,
		"retries", retries,
	)
	return DefaultEvaluation(), nil
}

func (r *Retrying) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
