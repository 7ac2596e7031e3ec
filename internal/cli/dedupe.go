package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/patchquorum/internal/patch"
)

var dedupeSimilarity float64

func newDedupeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dedupe <patch-file>...",
		Short: "Normalize and deduplicate patch files without voting",
		Long: `Normalize the given patches, collapse exact duplicates, and report the
unique candidates with their complexity metrics. Pairs of distinct
candidates whose normalized text is nearly identical are flagged as
near-duplicates.

Examples:
  patchquorum dedupe fix-*.diff
  patchquorum dedupe fix-*.diff --similarity 0.8 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runDedupe,
	}

	cmd.Flags().Float64Var(&dedupeSimilarity, "similarity", 0.9, "Near-duplicate similarity threshold in [0, 1]")

	return cmd
}

type dedupeOutput struct {
	InputPatches   int                     `json:"input_patches"`
	UniquePatches  []patch.NormalizedPatch `json:"unique_patches"`
	NearDuplicates []patch.NearDuplicate   `json:"near_duplicates,omitempty"`
}

func runDedupe(cmd *cobra.Command, args []string) error {
	if dedupeSimilarity < 0 || dedupeSimilarity > 1 {
		return fmt.Errorf("similarity threshold %v outside [0, 1]", dedupeSimilarity)
	}

	patches, err := readFiles(args)
	if err != nil {
		return err
	}

	unique := patch.Deduplicate(patches)
	out := dedupeOutput{
		InputPatches:   len(patches),
		UniquePatches:  unique,
		NearDuplicates: patch.NearDuplicates(unique, dedupeSimilarity),
	}

	if IsJSONOutput() {
		return printJSON(cmd, out)
	}
	displayDedupeOutput(cmd, args, out)
	return nil
}

func displayDedupeOutput(cmd *cobra.Command, args []string, out dedupeOutput) {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle().Render(fmt.Sprintf("Deduplication: %d patches, %d unique", out.InputPatches, len(out.UniquePatches))))
	fmt.Fprintln(w, strings.Repeat("━", 50))

	for i, p := range out.UniquePatches {
		fmt.Fprintf(w, "\nCandidate %d (from %s):\n", i, args[p.OriginalIndex])
		fmt.Fprintf(w, "  Complexity %.1f/10, %d lines changed (%d+/%d-), %d files\n",
			p.Metrics.ComplexityScore, p.Metrics.TotalChanges,
			p.Metrics.LinesAdded, p.Metrics.LinesRemoved, p.Metrics.FilesModified)
		if p.OccurrenceCount > 1 {
			fmt.Fprintf(w, "  Submitted %d times\n", p.OccurrenceCount)
		}
	}

	if len(out.NearDuplicates) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, warnStyle().Render("Near-duplicates:"))
		for _, nd := range out.NearDuplicates {
			fmt.Fprintf(w, "  %s and %s are %.0f%% similar\n",
				args[nd.IndexA], args[nd.IndexB], nd.Similarity*100)
		}
	}
}
