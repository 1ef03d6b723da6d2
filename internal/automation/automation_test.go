package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/trusslab/internal/config"
	"github.com/san-kum/trusslab/internal/scene"
)

const scenarioYAML = `name: smoke
description: two short runs
steps:
  - scene: triangle
    preset: static
    duration: 0.5
  - scene: pair
    beam_model: spring
    integrator: rk4
    duration: 0.5
`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeFile(t, scenarioYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.Name != "smoke" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}
	if sc.Steps[1].Integrator != "rk4" {
		t.Errorf("expected rk4, got %s", sc.Steps[1].Integrator)
	}

	if _, err := LoadScenario(writeFile(t, "name: empty\n")); !errors.Is(err, ErrEmptyScenario) {
		t.Errorf("expected ErrEmptyScenario, got %v", err)
	}
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestStepConfig(t *testing.T) {
	base := config.DefaultConfig()

	cfg, err := ScenarioStep{Scene: "triangle", Preset: "static", Duration: 2}.Config(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MoveNodes {
		t.Error("expected static preset to disable node motion")
	}
	if cfg.Duration != 2 || cfg.Scene != "triangle" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if base.Scene != "" {
		t.Error("expected base config untouched")
	}

	if _, err := (ScenarioStep{Scene: "triangle", Preset: "nope"}).Config(base); err == nil {
		t.Error("expected error for unknown preset")
	}
	if _, err := (ScenarioStep{Scene: "pair", Integrator: "leapfrog"}).Config(base); err == nil {
		t.Error("expected validation error for unknown integrator")
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeFile(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	results, err := RunScenario(context.Background(), sc, config.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Result.StepsTaken != 30 {
			t.Errorf("step %d: expected 30 frames, got %d", i+1, r.Result.StepsTaken)
		}
	}
	if results[1].Config.BeamModel != "spring" {
		t.Errorf("expected spring model, got %s", results[1].Config.BeamModel)
	}
}

func TestRunScenarioStopsOnError(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{{Scene: "pair", Duration: 0.1}, {Scene: "castle"}}}
	results, err := RunScenario(context.Background(), sc, config.DefaultConfig(), nil)
	if !errors.Is(err, scene.ErrUnknownScene) {
		t.Fatalf("expected ErrUnknownScene, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected the first result to be kept, got %d", len(results))
	}
}

func TestRunMonteCarlo(t *testing.T) {
	base := config.GetPreset("triangle", "static")
	base.Duration = 0.1

	results, err := RunMonteCarlo(context.Background(), MonteCarloConfig{Base: base, Perturbation: 0.5, Trials: 4, Seed: 7}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 trials, got %d", len(results))
	}
	for _, r := range results {
		if r.Scale < 0.5 || r.Scale > 1.5 {
			t.Errorf("trial %d: scale %f out of range", r.Trial, r.Scale)
		}
	}
	intact, failed := MonteCarloStats(results)
	if intact+failed != 4 {
		t.Errorf("expected 4 trials counted, got %d", intact+failed)
	}
}

func TestRunMonteCarloWithoutPerturbation(t *testing.T) {
	base := config.GetPreset("triangle", "static")
	base.Duration = 0.1

	results, err := RunMonteCarlo(context.Background(), MonteCarloConfig{Base: base, Trials: 3, Seed: 1}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range results {
		if r.Scale != 1 || r.PeakStress != results[0].PeakStress {
			t.Errorf("trial %d: expected identical runs, got scale %f stress %f", r.Trial, r.Scale, r.PeakStress)
		}
	}

	if _, err := RunMonteCarlo(context.Background(), MonteCarloConfig{Base: base}, nil); err == nil {
		t.Error("expected error for zero trials")
	}
}
