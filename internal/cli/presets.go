package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/patchquorum/internal/config"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the named configuration presets",
		Args:  cobra.NoArgs,
		RunE:  runPresets,
	}
}

func runPresets(cmd *cobra.Command, args []string) error {
	type namedPreset struct {
		Name   string        `json:"name"`
		Config config.Config `json:"config"`
	}

	presets := make([]namedPreset, 0, len(config.PresetNames()))
	for _, name := range config.PresetNames() {
		cfg, err := config.Preset(name)
		if err != nil {
			return err
		}
		presets = append(presets, namedPreset{Name: name, Config: cfg})
	}

	if IsJSONOutput() {
		return printJSON(cmd, presets)
	}

	w := cmd.OutOrStdout()
	for _, p := range presets {
		fmt.Fprintln(w, titleStyle().Render(p.Name))
		if !p.Config.EnableAgentVoting {
			fmt.Fprintln(w, "  voting disabled, single selector")
			fmt.Fprintln(w)
			continue
		}
		fmt.Fprintf(w, "  %d agents, early stop at %.0f%% participation, up to %d candidates\n",
			p.Config.NumVotingAgents,
			p.Config.EarlyStoppingThreshold*100,
			p.Config.MaxPatchesForVoting)
		if !p.Config.EnableContextEnhancement {
			fmt.Fprintln(w, "  context enhancement off")
		}
		fmt.Fprintln(w)
	}
	return nil
}
