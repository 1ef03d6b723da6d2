package sim

import (
	"fmt"

	"github.com/san-kum/trusslab/internal/structure"
)

// Metric accumulates a scalar over the frames of a run.
type Metric interface {
	Name() string
	Observe(m *structure.Manager, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every frame, before rendering.
type Observer interface {
	OnFrame(m *structure.Manager, t float64)
}

type ObserverFunc func(m *structure.Manager, t float64)

func (f ObserverFunc) OnFrame(m *structure.Manager, t float64) { f(m, t) }

type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60,
		Duration:      10,
		ValidateState: true,
	}
}

// Result holds the per-frame series of a headless run. Index 0 is the
// state before the first frame.
type Result struct {
	Times         []float64
	KineticEnergy []float64
	PeakStress    []float64
	Metrics       map[string]float64
	StepsTaken    int
	Errors        []error
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
