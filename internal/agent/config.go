// Package agent defines the evaluator contract for the voting system:
// per-agent configuration, the structured evaluation each agent
// returns, prompt construction, and the bounded-retry boundary that
// guarantees every dispatched agent attempt yields some evaluation.
package agent

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is one evaluator instance's identity for a voting session.
// Configs are generated once per session and never mutated.
type Config struct {
	AgentID        int     `json:"agent_id"`
	FocusAspect    string  `json:"focus_aspect"`
	Temperature    float64 `json:"temperature"`
	EmphasisWeight float64 `json:"emphasis_weight"`
}

// AspectCatalog is the seed data agent configs are generated from: a
// cyclic list of focus aspects and a monotonically increasing
// temperature progression capped at a maximum. It is configuration,
// not code, so deployments can tune diversity without a rebuild.
type AspectCatalog struct {
	Aspects         []string `toml:"aspects"`
	BaseTemperature float64  `toml:"base_temperature"`
	TemperatureStep float64  `toml:"temperature_step"`
	MaxTemperature  float64  `toml:"max_temperature"`
	EmphasisWeight  float64  `toml:"emphasis_weight"`
}

// DefaultAspectCatalog returns the built-in five-aspect catalog.
func DefaultAspectCatalog() AspectCatalog {
	return AspectCatalog{
		Aspects: []string{
			"Fix Effectiveness",
			"Function Preservation",
			"Test Execution",
			"Code Quality",
			"Repository Impact",
		},
		BaseTemperature: 0.7,
		TemperatureStep: 0.05,
		MaxTemperature:  1.0,
		EmphasisWeight:  1.2,
	}
}

// LoadAspectCatalog reads a catalog from a TOML file. Missing fields
// fall back to the built-in defaults.
func LoadAspectCatalog(path string) (AspectCatalog, error) {
	catalog := DefaultAspectCatalog()
	if _, err := toml.DecodeFile(path, &catalog); err != nil {
		return AspectCatalog{}, fmt.Errorf("decode aspect catalog: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return AspectCatalog{}, err
	}
	return catalog, nil
}

// Validate checks the catalog can generate usable configs.
func (c AspectCatalog) Validate() error {
	if len(c.Aspects) == 0 {
		return fmt.Errorf("aspect catalog has no aspects")
	}
	if c.TemperatureStep < 0 {
		return fmt.Errorf("temperature_step must be non-negative, got %v", c.TemperatureStep)
	}
	if c.MaxTemperature < c.BaseTemperature {
		return fmt.Errorf("max_temperature %v below base_temperature %v",
			c.MaxTemperature, c.BaseTemperature)
	}
	return nil
}

// Generate produces n agent configs. Aspects cycle through the catalog
// list and the temperature climbs by one step per agent until it hits
// the cap, so every agent sees the problem a little differently.
func (c AspectCatalog) Generate(n int) []Config {
	configs := make([]Config, 0, n)
	for i := 0; i < n; i++ {
		temp := c.BaseTemperature + float64(i)*c.TemperatureStep
		if temp > c.MaxTemperature {
			temp = c.MaxTemperature
		}
		configs = append(configs, Config{
			AgentID:        i,
			FocusAspect:    c.Aspects[i%len(c.Aspects)],
			Temperature:    temp,
			EmphasisWeight: c.EmphasisWeight,
		})
	}
	return configs
}

// GenerateConfigs produces n agent configs from the default catalog.
func GenerateConfigs(n int) []Config {
	return DefaultAspectCatalog().Generate(n)
}
