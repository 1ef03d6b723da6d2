// Package automation runs scripted batches of headless scene runs and
// randomised load trials.
package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/trusslab/internal/config"
	"github.com/san-kum/trusslab/internal/metrics"
	"github.com/san-kum/trusslab/internal/scene"
	"github.com/san-kum/trusslab/internal/sim"
	"github.com/san-kum/trusslab/internal/structure"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// NewSimulator builds cfg.Scene into a fresh manager and returns a
// simulator with the standard metrics attached.
func NewSimulator(cfg *config.Config, logger *slog.Logger) (*sim.Simulator, error) {
	mgr := structure.NewManager(cfg.World(), cfg.NodeDefaults(), logger)
	if err := scene.NewRegistry().Build(cfg.Scene, mgr); err != nil {
		return nil, err
	}
	stepper, err := cfg.NewStepper()
	if err != nil {
		return nil, err
	}
	s := sim.New(mgr, stepper, logger)
	s.AddMetric(metrics.NewKineticEnergy())
	s.AddMetric(metrics.NewPeakStress())
	s.AddMetric(metrics.NewMaxUtilization())
	s.AddMetric(metrics.NewRestTime())
	return s, nil
}

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides the base configuration for one run. Zero values
// keep the base value.
type ScenarioStep struct {
	Scene      string  `yaml:"scene"`
	Preset     string  `yaml:"preset"`
	BeamModel  string  `yaml:"beam_model"`
	Integrator string  `yaml:"integrator"`
	Material   string  `yaml:"material"`
	Duration   float64 `yaml:"duration"`
	Dt         float64 `yaml:"dt"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyScenario, path)
	}
	return &scenario, nil
}

// Config resolves the step over base: preset first, then the explicit
// fields of the step.
func (s ScenarioStep) Config(base *config.Config) (*config.Config, error) {
	cfg := *base
	if s.Preset != "" {
		p := config.GetPreset(s.Scene, s.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %s for scene %s", s.Preset, s.Scene)
		}
		cfg = *p
	}
	cfg.Scene = s.Scene
	if s.BeamModel != "" {
		cfg.BeamModel = s.BeamModel
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Material != "" {
		cfg.Material = s.Material
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.FrameDt = s.Dt
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type StepResult struct {
	Step   ScenarioStep
	Config *config.Config
	Result *sim.Result
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the results gathered so far.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	results := make([]StepResult, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		cfg, err := step.Config(base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		s, err := NewSimulator(cfg, logger)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "scene", cfg.Scene, "model", cfg.BeamModel)
		r, err := s.Run(ctx, sim.Config{Dt: cfg.FrameDt, Duration: cfg.Duration, ValidateState: true})
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, StepResult{Step: step, Config: cfg, Result: r})
	}
	return results, nil
}

// MonteCarloConfig scales the loads of a scene by a random factor in
// [1-Perturbation, 1+Perturbation] per trial.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	Trials       int
	Seed         int64
}

type TrialResult struct {
	Trial          int
	Scale          float64
	PeakStress     float64
	MaxUtilization float64
	// Failed is set when some beam exceeded its strength or the run
	// diverged.
	Failed bool
}

// RunMonteCarlo runs the trials concurrently through sim.Sweep. A zero
// seed draws one from the clock.
func RunMonteCarlo(ctx context.Context, cfg MonteCarloConfig, logger *slog.Logger) ([]TrialResult, error) {
	if cfg.Trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", cfg.Trials)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	scales := make([]float64, cfg.Trials)
	jobs := make([]sim.Job, cfg.Trials)
	for i := range jobs {
		scales[i] = 1 + (rng.Float64()-0.5)*2*cfg.Perturbation
		scale := scales[i]
		jobs[i] = sim.Job{
			Name: fmt.Sprintf("trial %d", i),
			Setup: func() (*sim.Simulator, error) {
				s, err := NewSimulator(cfg.Base, logger)
				if err != nil {
					return nil, err
				}
				for _, n := range s.Manager().Nodes() {
					if f := n.Force(); f != (r3.Vec{}) {
						n.SetMotion(r3.Vec{}, r3.Vec{})
						n.SetForce(r3.Scale(scale, f))
					}
				}
				return s, nil
			},
		}
	}

	runCfg := sim.Config{Dt: cfg.Base.FrameDt, Duration: cfg.Base.Duration, ValidateState: true}
	results, err := sim.Sweep(ctx, jobs, runCfg)
	if err != nil {
		return nil, err
	}

	out := make([]TrialResult, len(results))
	for i, r := range results {
		util := r.Metrics["max_utilization"]
		out[i] = TrialResult{
			Trial:          i,
			Scale:          scales[i],
			PeakStress:     r.Metrics["peak_stress"],
			MaxUtilization: util,
			Failed:         util > 1 || len(r.Errors) > 0,
		}
	}
	return out, nil
}

// MonteCarloStats counts intact and failed trials.
func MonteCarloStats(results []TrialResult) (intact, failed int) {
	for _, r := range results {
		if r.Failed {
			failed++
		} else {
			intact++
		}
	}
	return intact, failed
}
