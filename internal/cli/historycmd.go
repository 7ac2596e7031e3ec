package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/patchquorum/internal/history"
	"github.com/Dicklesworthstone/patchquorum/internal/voting"
)

var (
	historyDBPath string
	historyLimit  int
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded voting decisions",
	}

	cmd.PersistentFlags().StringVar(&historyDBPath, "db", "patchquorum.db", "SQLite database holding voting history")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent voting decisions, newest first",
		Args:  cobra.NoArgs,
		RunE:  runHistoryList,
	}
	list.Flags().IntVar(&historyLimit, "limit", 20, "Maximum records to show")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded voting decision in full",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShow,
	}

	cmd.AddCommand(list, show)
	return cmd
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := history.Open(historyDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return printJSON(cmd, records)
	}

	w := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(w, subtitleStyle().Render("No voting decisions recorded."))
		return nil
	}
	for _, rec := range records {
		fmt.Fprintf(w, "%s  %s  %s\n",
			titleStyle().Render(fmt.Sprintf("#%d", rec.ID)),
			rec.CreatedAt.Format("2006-01-02 15:04"),
			rec.IssueTitle)
		fmt.Fprintf(w, "    patch %d, %d voters, %.0f%% consensus\n",
			rec.Result.SelectedPatchIndex,
			rec.Result.TotalVoters,
			rec.Result.ConsensusMetrics.ConsensusStrength*100)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid record id %q", args[0])
	}

	store, err := history.Open(historyDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return printJSON(cmd, rec)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, titleStyle().Render(fmt.Sprintf("Record #%d: %s", rec.ID, rec.IssueTitle)))
	fmt.Fprintln(w, strings.Repeat("━", 50))
	fmt.Fprintf(w, "Decided: %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Selected patch: %d (%d voters", rec.Result.SelectedPatchIndex, rec.Result.TotalVoters)
	if rec.Result.EarlyStopped {
		fmt.Fprint(w, ", stopped early")
	}
	fmt.Fprintln(w, ")")

	for _, ev := range rec.Result.AgentEvaluations {
		fmt.Fprintf(w, "\n  Vote for patch %d (score %.1f, confidence %.2f)\n",
			ev.PatchIndex, ev.WeightedScore(), ev.OverallConfidence)
		if ev.Reasoning != "" {
			fmt.Fprintf(w, "    %s\n", subtitleStyle().Render(ev.Reasoning))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rec.Result.SelectedPatchContent)
	return nil
}

// saveHistory records a completed vote in the database at voteDBPath.
func saveHistory(cmd *cobra.Command, issueTitle string, res *voting.Result) (int64, error) {
	store, err := history.Open(voteDBPath)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	return store.Save(cmd.Context(), issueTitle, res)
}
