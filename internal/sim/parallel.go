package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Job sets up one independent simulation. Each job must own its manager.
type Job struct {
	Name  string
	Setup func() (*Simulator, error)
}

// Sweep runs the jobs concurrently and returns their results in job order.
// The first setup or run error cancels the remaining jobs.
func Sweep(ctx context.Context, jobs []Job, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		g.Go(func() error {
			s, err := job.Setup()
			if err != nil {
				return fmt.Errorf("%s: %w", job.Name, err)
			}
			r, err := s.Run(ctx, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", job.Name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
