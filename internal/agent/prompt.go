package agent

import (
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/patchquorum/internal/patch"
)

// patchPreviewLimit caps how much of each candidate is inlined into
// the prompt; evaluation quality degrades on very long diffs anyway.
const patchPreviewLimit = 1000

const systemPromptTemplate = `You are a professional code patch evaluation expert, responsible for selecting the best solution from multiple candidate patches. As an independent agent in a parallel voting system, you must perform deep evaluation based on the issue, the fix context, and semantic reasoning.

Evaluation dimensions and weights:
1. Fix Effectiveness (35%%): whether the issue is correctly solved
2. Function Preservation (30%%): whether existing functionality is maintained without breaking
3. Repository Impact (15%%): potential impact on the entire repository and dependencies
4. Minimality (10%%): whether minimal and focused modifications are adopted
5. Code Style (10%%): whether the change is consistent with project conventions

Special focus: %s
As agent %d, give special attention to %s, but still evaluate all dimensions.

Scoring requirements:
- Score each dimension 0-10 with a concrete numeric value backed by evidence
- Provide an overall confidence between 0 and 1 and a risk assessment
- Reason step by step: analyze the problem, evaluate each patch per dimension, compare, then select

You are an independent evaluation agent; your vote contributes to a majority decision.`

const userPromptTemplate = `Issue Information:
%s

Fix Context:
%s

Candidate Patch List:
%s

Evaluate each patch in detail based on the above information and select the best solution.`

// SystemPrompt renders the evaluator system prompt for one agent.
func SystemPrompt(cfg Config) string {
	return fmt.Sprintf(systemPromptTemplate, cfg.FocusAspect, cfg.AgentID, cfg.FocusAspect)
}

// UserPrompt renders the evaluation request: issue summary, fix
// context blocks, and each candidate patch, annotated with its
// normalization metrics when available.
func UserPrompt(req Request) string {
	return fmt.Sprintf(userPromptTemplate,
		formatIssue(req.Issue),
		strings.Join(req.Context, "\n\n"),
		FormatPatches(req.Patches, req.Normalized),
	)
}

func formatIssue(issue IssueInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", issue.Title)
	fmt.Fprintf(&b, "Body:\n%s\n", issue.Body)
	if len(issue.Comments) > 0 {
		b.WriteString("Comments:\n")
		for _, c := range issue.Comments {
			fmt.Fprintf(&b, "- %s: %s\n", c.Author, c.Text)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatPatches renders the candidate list for the prompt. When
// normalized metadata is present for a candidate it is summarized
// above the diff so the agent sees complexity and duplication signals.
// The normalized slice is parallel to patches; a shorter (or nil)
// slice simply leaves the remaining candidates unannotated.
func FormatPatches(patches []string, normalized []patch.NormalizedPatch) string {
	var b strings.Builder
	for i, p := range patches {
		fmt.Fprintf(&b, "\nPatch %d:\n", i)

		if i < len(normalized) {
			m := normalized[i].Metrics
			fmt.Fprintf(&b, "  Complexity: %.1f/10, modified %d lines (%d+/%d-), %d files\n",
				m.ComplexityScore, m.TotalChanges, m.LinesAdded, m.LinesRemoved, m.FilesModified)
			if normalized[i].OccurrenceCount > 1 {
				fmt.Fprintf(&b, "  Duplicate occurrences: %d\n", normalized[i].OccurrenceCount)
			}
		}

		preview := p
		if len(preview) > patchPreviewLimit {
			preview = preview[:patchPreviewLimit] + "..."
		}
		fmt.Fprintf(&b, "```diff\n%s\n```\n", preview)
	}
	return b.String()
}
