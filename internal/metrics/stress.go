package metrics

import (
	"math"

	"github.com/san-kum/trusslab/internal/structure"
)

// PeakStress tracks the largest beam stress seen during a run.
type PeakStress struct {
	name string
	peak float64
}

func NewPeakStress() *PeakStress {
	return &PeakStress{name: "peak_stress"}
}

func (p *PeakStress) Name() string { return p.name }

func (p *PeakStress) Observe(m *structure.Manager, t float64) {
	p.peak = math.Max(p.peak, PeakStressOf(m))
}

func (p *PeakStress) Value() float64 { return p.peak }
func (p *PeakStress) Reset()         { p.peak = 0 }

// MaxUtilization tracks the worst stress-to-strength ratio over all beams.
// Values above 1 mean some beam failed at some point.
type MaxUtilization struct {
	name  string
	worst float64
}

func NewMaxUtilization() *MaxUtilization {
	return &MaxUtilization{name: "max_utilization"}
}

func (u *MaxUtilization) Name() string { return u.name }

func (u *MaxUtilization) Observe(m *structure.Manager, t float64) {
	for _, b := range m.Beams() {
		u.worst = math.Max(u.worst, b.Utilization())
	}
}

func (u *MaxUtilization) Value() float64 { return u.worst }
func (u *MaxUtilization) Reset()         { u.worst = 0 }
