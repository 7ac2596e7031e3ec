package agent

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateConfigsCyclesAspects(t *testing.T) {
	configs := GenerateConfigs(7)
	if len(configs) != 7 {
		t.Fatalf("expected 7 configs, got %d", len(configs))
	}

	aspects := DefaultAspectCatalog().Aspects
	for i, cfg := range configs {
		if cfg.AgentID != i {
			t.Errorf("config %d: AgentID = %d, want %d", i, cfg.AgentID, i)
		}
		if want := aspects[i%len(aspects)]; cfg.FocusAspect != want {
			t.Errorf("config %d: FocusAspect = %q, want %q", i, cfg.FocusAspect, want)
		}
		if cfg.EmphasisWeight != 1.2 {
			t.Errorf("config %d: EmphasisWeight = %v, want 1.2", i, cfg.EmphasisWeight)
		}
	}

	// Aspect list wraps after five agents.
	if configs[5].FocusAspect != configs[0].FocusAspect {
		t.Errorf("aspect cycle broken: %q vs %q", configs[5].FocusAspect, configs[0].FocusAspect)
	}
}

func TestGenerateConfigsTemperatureProgression(t *testing.T) {
	configs := GenerateConfigs(10)

	if configs[0].Temperature != 0.7 {
		t.Errorf("first temperature = %v, want 0.7", configs[0].Temperature)
	}
	for i := 1; i < len(configs); i++ {
		if configs[i].Temperature < configs[i-1].Temperature {
			t.Errorf("temperature decreased at agent %d: %v < %v",
				i, configs[i].Temperature, configs[i-1].Temperature)
		}
		if configs[i].Temperature > 1.0 {
			t.Errorf("temperature %v exceeds cap at agent %d", configs[i].Temperature, i)
		}
	}
	// 0.7 + 9*0.05 would be 1.15; the cap holds it at 1.0.
	if configs[9].Temperature != 1.0 {
		t.Errorf("capped temperature = %v, want 1.0", configs[9].Temperature)
	}
}

func TestLoadAspectCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aspects.toml")
	content := `aspects = ["Security", "Performance"]
base_temperature = 0.5
temperature_step = 0.1
max_temperature = 0.8
emphasis_weight = 1.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	catalog, err := LoadAspectCatalog(path)
	if err != nil {
		t.Fatalf("LoadAspectCatalog: %v", err)
	}

	configs := catalog.Generate(4)
	if configs[0].FocusAspect != "Security" || configs[1].FocusAspect != "Performance" {
		t.Errorf("aspects not loaded: %q, %q", configs[0].FocusAspect, configs[1].FocusAspect)
	}
	if configs[2].FocusAspect != "Security" {
		t.Errorf("two-aspect cycle broken: %q", configs[2].FocusAspect)
	}
	if configs[3].Temperature != 0.8 {
		t.Errorf("capped temperature = %v, want 0.8", configs[3].Temperature)
	}
	if configs[0].EmphasisWeight != 1.5 {
		t.Errorf("emphasis weight = %v, want 1.5", configs[0].EmphasisWeight)
	}
}

func TestAspectCatalogValidate(t *testing.T) {
	tests := []struct {
		name    string
		catalog AspectCatalog
		wantErr bool
	}{
		{"default is valid", DefaultAspectCatalog(), false},
		{"no aspects", AspectCatalog{BaseTemperature: 0.7, MaxTemperature: 1.0}, true},
		{
			"negative step",
			AspectCatalog{Aspects: []string{"A"}, TemperatureStep: -0.1, MaxTemperature: 1.0},
			true,
		},
		{
			"cap below base",
			AspectCatalog{Aspects: []string{"A"}, BaseTemperature: 0.9, MaxTemperature: 0.5},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.catalog.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
