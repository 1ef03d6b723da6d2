package metrics

import (
	"math"

	"github.com/san-kum/trusslab/internal/structure"
	"gonum.org/v1/gonum/spatial/r3"
)

// KineticEnergyOf is the summed kinetic energy of every node.
func KineticEnergyOf(m *structure.Manager) float64 {
	total := 0.0
	for _, n := range m.Nodes() {
		v := n.Velocity()
		total += 0.5 * n.Mass() * r3.Dot(v, v)
	}
	return total
}

// PeakStressOf is the largest beam stress in the structure.
func PeakStressOf(m *structure.Manager) float64 {
	peak := 0.0
	for _, b := range m.Beams() {
		peak = math.Max(peak, math.Abs(b.Stress()))
	}
	return peak
}

// KineticEnergy averages the structure's kinetic energy over a run.
type KineticEnergy struct {
	name    string
	samples int
	total   float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(m *structure.Manager, t float64) {
	k.total += KineticEnergyOf(m)
	k.samples++
}

func (k *KineticEnergy) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return k.total / float64(k.samples)
}

func (k *KineticEnergy) Reset() {
	k.total = 0
	k.samples = 0
}
