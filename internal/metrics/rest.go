package metrics

import (
	"github.com/san-kum/trusslab/internal/structure"
	"gonum.org/v1/gonum/spatial/r3"
)

// RestTime records the first time at which every free node is slower than
// structure.RestSpeed. Its value is -1 until that happens.
type RestTime struct {
	name string
	at   float64
	seen bool
}

func NewRestTime() *RestTime {
	return &RestTime{name: "rest_time", at: -1}
}

func (r *RestTime) Name() string { return r.name }

func (r *RestTime) Observe(m *structure.Manager, t float64) {
	if r.seen {
		return
	}
	for _, n := range m.FreeNodes() {
		if r3.Norm(n.Velocity()) >= structure.RestSpeed {
			return
		}
	}
	r.at = t
	r.seen = true
}

func (r *RestTime) Value() float64 { return r.at }

func (r *RestTime) Reset() {
	r.at = -1
	r.seen = false
}
