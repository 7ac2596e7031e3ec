// Package config holds the voting-session configuration, its named
// presets, and YAML loading for deployments that tune the knobs.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Config controls one voting session.
type Config struct {
	// EnableAgentVoting turns the multi-agent vote on. When false the
	// caller should fall back to its single-selector path.
	EnableAgentVoting bool `yaml:"enable_agent_voting" json:"enable_agent_voting"`

	// NumVotingAgents is how many evaluators participate (minimum 1).
	NumVotingAgents int `yaml:"num_voting_agents" json:"num_voting_agents"`

	// EarlyStoppingThreshold is the fraction of agents that must have
	// voted before an early stop is allowed, in (0, 1].
	EarlyStoppingThreshold float64 `yaml:"early_stopping_threshold" json:"early_stopping_threshold"`

	// EnableEarlyStopping stops dispatching agents once the outcome is
	// mathematically certain.
	EnableEarlyStopping bool `yaml:"enable_early_stopping" json:"enable_early_stopping"`

	// EnableContextEnhancement passes the fix-context blocks to every
	// evaluator; disabling it trades quality for speed.
	EnableContextEnhancement bool `yaml:"enable_context_enhancement" json:"enable_context_enhancement"`

	// EnablePatchNormalization runs deduplication before voting.
	EnablePatchNormalization bool `yaml:"enable_patch_normalization" json:"enable_patch_normalization"`

	// MaxPatchesForVoting caps the candidate set; surplus candidates
	// are dropped from the end of the deduplicated ordering.
	MaxPatchesForVoting int `yaml:"max_patches_for_voting" json:"max_patches_for_voting"`

	// ParallelAgentExecution dispatches evaluators concurrently while
	// committing their votes in agent-id order.
	ParallelAgentExecution bool `yaml:"parallel_agent_execution" json:"parallel_agent_execution"`

	// FallbackToOriginalSelector lets the caller substitute the first
	// candidate when the whole session fails.
	FallbackToOriginalSelector bool `yaml:"fallback_to_original_selector" json:"fallback_to_original_selector"`

	// MinPatchesForVoting is the smallest candidate set worth a full
	// vote; below it the single-candidate fast path applies.
	MinPatchesForVoting int `yaml:"min_patches_for_voting" json:"min_patches_for_voting"`
}

// Default returns the balanced preset.
func Default() Config {
	return Config{
		EnableAgentVoting:          true,
		NumVotingAgents:            5,
		EarlyStoppingThreshold:     0.6,
		EnableEarlyStopping:        true,
		EnableContextEnhancement:   true,
		EnablePatchNormalization:   true,
		MaxPatchesForVoting:        8,
		FallbackToOriginalSelector: true,
		MinPatchesForVoting:        2,
	}
}

// Validate checks the invariants every session relies on.
func (c Config) Validate() error {
	if c.NumVotingAgents < 1 {
		return fmt.Errorf("num_voting_agents must be at least 1, got %d", c.NumVotingAgents)
	}
	if c.EarlyStoppingThreshold <= 0 || c.EarlyStoppingThreshold > 1 {
		return fmt.Errorf("early_stopping_threshold must be in (0, 1], got %v", c.EarlyStoppingThreshold)
	}
	if c.MinPatchesForVoting < 1 {
		return fmt.Errorf("min_patches_for_voting must be at least 1, got %d", c.MinPatchesForVoting)
	}
	if c.MaxPatchesForVoting < 1 {
		return fmt.Errorf("max_patches_for_voting must be at least 1, got %d", c.MaxPatchesForVoting)
	}
	return nil
}

// Named presets.
const (
	PresetConservative = "conservative"
	PresetBalanced     = "balanced"
	PresetAggressive   = "aggressive"
	PresetFast         = "fast"
	PresetDisabled     = "disabled"
)

func presets() map[string]Config {
	conservative := Default()
	conservative.NumVotingAgents = 3
	conservative.EarlyStoppingThreshold = 0.7
	conservative.MaxPatchesForVoting = 5

	aggressive := Default()
	aggressive.NumVotingAgents = 7
	aggressive.EarlyStoppingThreshold = 0.5
	aggressive.MaxPatchesForVoting = 10

	fast := conservative
	fast.EnableContextEnhancement = false

	disabled := Config{
		EnableAgentVoting:          false,
		NumVotingAgents:            1,
		EarlyStoppingThreshold:     1.0,
		EnablePatchNormalization:   true,
		MaxPatchesForVoting:        1,
		FallbackToOriginalSelector: true,
		MinPatchesForVoting:        1,
	}

	return map[string]Config{
		PresetConservative: conservative,
		PresetBalanced:     Default(),
		PresetAggressive:   aggressive,
		PresetFast:         fast,
		PresetDisabled:     disabled,
	}
}

// Preset returns the named preset configuration.
func Preset(name string) (Config, error) {
	cfg, ok := presets()[name]
	if !ok {
		return Config{}, fmt.Errorf("unknown preset %q (available: %v)", name, PresetNames())
	}
	return cfg, nil
}

// PresetNames lists the available preset names, sorted.
func PresetNames() []string {
	all := presets()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads a config from a YAML file, starting from the defaults so
// absent keys keep their balanced values, then validates it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
