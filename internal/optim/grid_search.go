// Package optim searches configuration grids for the values that minimise
// a run metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/trusslab/internal/sim"
)

var (
	ErrShape       = errors.New("optim: parameter names and ranges differ in length")
	ErrNoCandidate = errors.New("optim: no grid point produced a usable metric")
)

// Point is one combination of parameter values.
type Point map[string]float64

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d names, %d ranges", ErrShape, len(params), len(ranges))
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Points is the cartesian product of the ranges, the last parameter
// varying fastest.
func (g *GridSearch) Points() []Point {
	points := []Point{{}}
	for i, name := range g.paramNames {
		next := make([]Point, 0, len(points)*len(g.ranges[i]))
		for _, p := range points {
			for _, v := range g.ranges[i] {
				q := make(Point, len(p)+1)
				for k, pv := range p {
					q[k] = pv
				}
				q[name] = v
				next = append(next, q)
			}
		}
		points = next
	}
	return points
}

// Candidate is the outcome of one grid point.
type Candidate struct {
	Params Point
	Value  float64
	Usable bool
}

// Search runs every grid point concurrently and returns the point with
// the smallest metric. Runs that report errors or a negative metric, such
// as a rest time that was never reached, are not usable.
func (g *GridSearch) Search(ctx context.Context, build func(Point) (*sim.Simulator, error), cfg sim.Config, metric string) (Point, float64, []Candidate, error) {
	points := g.Points()
	jobs := make([]sim.Job, len(points))
	for i, p := range points {
		jobs[i] = sim.Job{
			Name:  fmt.Sprint(p),
			Setup: func() (*sim.Simulator, error) { return build(p) },
		}
	}
	results, err := sim.Sweep(ctx, jobs, cfg)
	if err != nil {
		return nil, 0, nil, err
	}

	best := math.Inf(1)
	var bestParams Point
	candidates := make([]Candidate, len(points))
	for i, r := range results {
		val, ok := r.Metrics[metric]
		usable := ok && len(r.Errors) == 0 && val >= 0
		candidates[i] = Candidate{Params: points[i], Value: val, Usable: usable}
		if usable && val < best {
			best, bestParams = val, points[i]
		}
	}
	if bestParams == nil {
		return nil, 0, candidates, ErrNoCandidate
	}
	return bestParams, best, candidates, nil
}
