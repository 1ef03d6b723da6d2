// Package sim drives a structure frame by frame, either from a host
// render loop through [Simulator.Tick] or headless through [Simulator.Run].
package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/san-kum/trusslab/internal/metrics"
	"github.com/san-kum/trusslab/internal/physics"
	"github.com/san-kum/trusslab/internal/structure"
)

// Simulator is not safe for concurrent use; it shares the manager with
// whatever goroutine handles input.
type Simulator struct {
	mgr       *structure.Manager
	stepper   *physics.Stepper
	logger    *slog.Logger
	metrics   []Metric
	observers []Observer
	t         float64
	frames    int
}

func New(mgr *structure.Manager, stepper *physics.Stepper, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Simulator{mgr: mgr, stepper: stepper, logger: logger}
}

func (s *Simulator) AddMetric(m Metric)             { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)         { s.observers = append(s.observers, o) }
func (s *Simulator) Manager() *structure.Manager    { return s.mgr }
func (s *Simulator) Time() float64                  { return s.t }
func (s *Simulator) Frames() int                    { return s.frames }
func (s *Simulator) Settings() physics.Settings     { return s.stepper.Settings() }
func (s *Simulator) SetStepper(st *physics.Stepper) { s.stepper = st }

// Tick advances one frame. Forces set by input handlers before Tick are
// seen by this frame's beam update.
func (s *Simulator) Tick(dt float64) error {
	if err := s.stepper.Step(s.mgr, dt); err != nil {
		return err
	}
	s.t += dt
	s.frames++
	for _, m := range s.metrics {
		m.Observe(s.mgr, s.t)
	}
	for _, o := range s.observers {
		o.OnFrame(s.mgr, s.t)
	}
	return nil
}

// Run steps the structure for cfg.Duration. Divergence ends the run early
// and is reported in Result.Errors rather than as the returned error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		Times:         make([]float64, 0, steps+1),
		KineticEnergy: make([]float64, 0, steps+1),
		PeakStress:    make([]float64, 0, steps+1),
		Metrics:       make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	s.logger.Debug("run started", "steps", steps, "dt", cfg.Dt, "model", s.stepper.Settings().Model,
		"nodes", s.mgr.NodeCount(), "beams", s.mgr.BeamCount())
	s.record(result)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := s.Tick(cfg.Dt); err != nil {
			result.Errors = append(result.Errors, SimError{Time: s.t, Step: i, Message: err.Error()})
			break
		}
		if cfg.ValidateState && !s.valid() {
			result.Errors = append(result.Errors, SimError{Time: s.t, Step: i, Message: "invalid state (NaN/Inf)"})
			break
		}
		result.StepsTaken++
		s.record(result)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	s.logger.Debug("run finished", "steps", result.StepsTaken, "errors", len(result.Errors))
	return result, nil
}

func (s *Simulator) record(r *Result) {
	r.Times = append(r.Times, s.t)
	r.KineticEnergy = append(r.KineticEnergy, metrics.KineticEnergyOf(s.mgr))
	r.PeakStress = append(r.PeakStress, metrics.PeakStressOf(s.mgr))
}

func (s *Simulator) valid() bool {
	for _, n := range s.mgr.Nodes() {
		p, v := n.Position(), n.Velocity()
		if !physics.State([]float64{p.X, p.Y, p.Z, v.X, v.Y, v.Z}).IsValid() {
			return false
		}
	}
	return true
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Dt > cfg.Duration {
		return fmt.Errorf("dt %f exceeds duration %f", cfg.Dt, cfg.Duration)
	}
	return nil
}
