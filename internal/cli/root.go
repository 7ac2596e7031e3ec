// Package cli wires the patchquorum commands: vote runs a full
// selection session, dedupe reports on a candidate set without
// spending model calls, presets lists the tuning profiles, and
// history inspects past decisions.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/patchquorum/internal/config"
)

var (
	jsonOutput bool
	configPath string
	presetName string
	logLevel   string
)

// IsJSONOutput reports whether --json was requested.
func IsJSONOutput() bool {
	return jsonOutput
}

// NewRootCmd builds the patchquorum command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "patchquorum",
		Short: "Select the best bug-fix patch by multi-agent vote",
		Long: `patchquorum normalizes and deduplicates candidate patches, then has a
panel of differently-focused evaluation agents vote on the best one.

Sessions stop early once the outcome is mathematically certain, ties
break deterministically, and every decision can be stored for audit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if presetName != "" {
				if _, err := config.Preset(presetName); err != nil {
					return err
				}
			}
			return setupLogging()
		},
	}

	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML voting config")
	root.PersistentFlags().StringVar(&presetName, "preset", "", "Named config preset: "+strings.Join(config.PresetNames(), ", "))
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(
		newVoteCmd(),
		newDedupeCmd(),
		newPresetsCmd(),
		newHistoryCmd(),
	)
	return root
}

// Execute runs the CLI and returns a process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle().Render("Error: ")+err.Error())
		return 1
	}
	return 0
}

func setupLogging() error {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", logLevel)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig resolves the session config from --config, --preset, or
// the balanced defaults, in that order of precedence.
func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	if presetName != "" {
		return config.Preset(presetName)
	}
	return config.Default(), nil
}
