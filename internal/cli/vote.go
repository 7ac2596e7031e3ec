package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/patchquorum/internal/agent"
	"github.com/Dicklesworthstone/patchquorum/internal/llm"
	"github.com/Dicklesworthstone/patchquorum/internal/voting"
)

var (
	voteIssueTitle    string
	voteIssueBody     string
	voteIssueBodyFile string
	voteContextFiles  []string
	voteModel         string
	voteAgents        int
	voteParallel      bool
	voteDBPath        string
	voteShowPatch     bool
)

func newVoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote <patch-file>...",
		Short: "Run a multi-agent vote over candidate patch files",
		Long: `Normalize and deduplicate the given patch files, then have a panel of
evaluation agents vote on the best fix for the described issue.

Examples:
  patchquorum vote fix-*.diff --issue-title "nil deref in parser"
  patchquorum vote a.diff b.diff --preset aggressive --parallel
  patchquorum vote a.diff b.diff --db history.db --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runVote,
	}

	cmd.Flags().StringVar(&voteIssueTitle, "issue-title", "", "Title of the issue being fixed")
	cmd.Flags().StringVar(&voteIssueBody, "issue-body", "", "Description of the issue being fixed")
	cmd.Flags().StringVar(&voteIssueBodyFile, "issue-body-file", "", "File holding the issue description")
	cmd.Flags().StringArrayVar(&voteContextFiles, "context-file", nil, "File holding a fix-context block (repeatable)")
	cmd.Flags().StringVar(&voteModel, "model", "gpt-4o", "Model used by the evaluation agents")
	cmd.Flags().IntVar(&voteAgents, "agents", 0, "Override the configured number of voting agents")
	cmd.Flags().BoolVar(&voteParallel, "parallel", false, "Dispatch agents concurrently")
	cmd.Flags().StringVar(&voteDBPath, "db", "", "SQLite database to record the decision in")
	cmd.Flags().BoolVar(&voteShowPatch, "show-patch", false, "Print the winning patch content")

	return cmd
}

type voteOutput struct {
	*voting.Result
	Fallback  bool  `json:"fallback,omitempty"`
	HistoryID int64 `json:"history_id,omitempty"`
}

func runVote(cmd *cobra.Command, args []string) error {
	patches, err := readFiles(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if voteAgents > 0 {
		cfg.NumVotingAgents = voteAgents
	}
	if voteParallel {
		cfg.ParallelAgentExecution = true
	}

	issue := agent.IssueInfo{Title: voteIssueTitle, Body: voteIssueBody}
	if voteIssueBodyFile != "" {
		body, err := os.ReadFile(voteIssueBodyFile)
		if err != nil {
			return fmt.Errorf("read issue body: %w", err)
		}
		issue.Body = string(body)
	}

	contextBlocks, err := readFiles(voteContextFiles)
	if err != nil {
		return err
	}

	client, err := llm.NewClient(voteModel)
	if err != nil {
		return err
	}
	evaluator := agent.NewRetrying(llm.NewEvaluator(client, slog.Default()), slog.Default())

	session, err := voting.NewSession(cfg, evaluator, voting.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	out := voteOutput{}
	res, err := session.Run(cmd.Context(), voting.Input{
		Issue:   issue,
		Patches: patches,
		Context: contextBlocks,
	})
	switch {
	case err == nil:
		out.Result = res
	case errors.Is(err, voting.ErrNoPatches) || !cfg.FallbackToOriginalSelector:
		return err
	default:
		// The session failed outright; fall back to the first patch
		// rather than leaving the issue unfixed.
		slog.Default().Warn("voting failed, falling back to the first patch", "error", err)
		out.Fallback = true
		out.Result = &voting.Result{
			SelectedPatchIndex:   0,
			SelectedPatchContent: patches[0],
			VoteDistribution:     map[int]int{},
		}
	}

	if voteDBPath != "" && !out.Fallback {
		id, err := saveHistory(cmd, issue.Title, out.Result)
		if err != nil {
			return err
		}
		out.HistoryID = id
	}

	if IsJSONOutput() {
		return printJSON(cmd, out)
	}
	displayVoteOutput(cmd, out)
	return nil
}

func displayVoteOutput(cmd *cobra.Command, out voteOutput) {
	w := cmd.OutOrStdout()
	res := out.Result

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle().Render("Patch Selection Result"))
	fmt.Fprintln(w, strings.Repeat("━", 50))

	if out.Fallback {
		fmt.Fprintln(w, warnStyle().Render("Voting failed; selected the first candidate as a fallback."))
	} else {
		m := res.ConsensusMetrics
		fmt.Fprintf(w, "Voters: %d", res.TotalVoters)
		if res.EarlyStopped {
			fmt.Fprint(w, " (stopped early)")
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Consensus: %.0f%% strength, %d distinct choices", m.ConsensusStrength*100, m.VoteDiversity)
		if m.Unanimous {
			fmt.Fprint(w, ", unanimous")
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Confidence: min %.2f / avg %.2f / max %.2f\n", m.MinConfidence, m.AvgConfidence, m.MaxConfidence)

		fmt.Fprintln(w)
		fmt.Fprintln(w, titleStyle().Render("Vote Distribution:"))
		for _, idx := range sortedKeys(res.VoteDistribution) {
			marker := "  "
			if idx == res.SelectedPatchIndex {
				marker = winnerStyle().Render("→ ")
			}
			votes := res.VoteDistribution[idx]
			fmt.Fprintf(w, "%sPatch %d: %s (%d)\n", marker, idx, strings.Repeat("█", votes), votes)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, winnerStyle().Render(fmt.Sprintf("Selected patch: %d", res.SelectedPatchIndex)))
	if out.HistoryID != 0 {
		fmt.Fprintln(w, subtitleStyle().Render(fmt.Sprintf("Recorded as history entry %d", out.HistoryID)))
	}
	if voteShowPatch {
		fmt.Fprintln(w)
		fmt.Fprintln(w, res.SelectedPatchContent)
	}
}

func readFiles(paths []string) ([]string, error) {
	contents := make([]string, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		contents = append(contents, string(data))
	}
	return contents, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
