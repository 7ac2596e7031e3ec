package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dicklesworthstone/patchquorum/internal/agent"
	"github.com/Dicklesworthstone/patchquorum/internal/redact"
)

// responseContract is appended to every user prompt so the model
// answers in the exact JSON shape ParseEvaluation expects.
const responseContract = `
Respond with a single JSON object and nothing else, using exactly these keys:
{
  "reasoning": "step-by-step analysis",
  "patch_index": 0,
  "effectiveness_score": 0.0,
  "preservation_score": 0.0,
  "minimality_score": 0.0,
  "style_coherence_score": 0.0,
  "repository_impact_score": 0.0,
  "overall_confidence": 0.0,
  "risk_assessment": "main risks of the selected patch"
}`

// Evaluator implements agent.Evaluator on top of a chat Client. Every
// outbound prompt is scrubbed for credential-shaped content first.
type Evaluator struct {
	client *Client
	logger *slog.Logger
}

// NewEvaluator wraps client. Callers normally wrap the result in
// agent.NewRetrying so transport and parse failures get the standard
// retry treatment.
func NewEvaluator(client *Client, logger *slog.Logger) *Evaluator {
	return &Evaluator{client: client, logger: logger}
}

// Evaluate implements agent.Evaluator.
func (e *Evaluator) Evaluate(ctx context.Context, req agent.Request) (agent.Evaluation, error) {
	system := agent.SystemPrompt(req.Config)
	user, findings := redact.String(agent.UserPrompt(req) + responseContract)
	if len(findings) > 0 {
		e.log().Warn("redacted sensitive content from evaluation prompt",
			"agent_id", req.Config.AgentID,
			"findings", len(findings),
		)
	}

	content, err := e.client.Chat(ctx, system, user, req.Config.Temperature)
	if err != nil {
		return agent.Evaluation{}, fmt.Errorf("chat completion: %w", err)
	}

	eval, err := ParseEvaluation(content)
	if err != nil {
		return agent.Evaluation{}, fmt.Errorf("agent %d response: %w", req.Config.AgentID, err)
	}
	return eval, nil
}

func (e *Evaluator) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return slog.Default()
}

// ParseEvaluation extracts an evaluation from raw model output,
// tolerating a markdown code fence around the JSON. Range validation
// is the caller's job; this only requires syntactically valid JSON.
func ParseEvaluation(content string) (agent.Evaluation, error) {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		if len(lines) >= 2 {
			end := len(lines)
			if strings.TrimSpace(lines[end-1]) == "```" {
				end--
			}
			content = strings.Join(lines[1:end], "\n")
		}
	}

	var eval agent.Evaluation
	if err := json.Unmarshal([]byte(content), &eval); err != nil {
		return agent.Evaluation{}, fmt.Errorf("invalid JSON object: %w", err)
	}
	return eval, nil
}
