// Package inject provides dependency injected structures for mocking the
// pipeline's collaborator interfaces.
package inject

import (
	"context"

	"go.viam.com/sam/posegraph"
	"go.viam.com/sam/solver"
)

// Solver is an injected solver.
type Solver struct {
	solver.Solver
	SolveFunc func(ctx context.Context, graph *posegraph.Graph, initial *solver.Values, opts solver.Options) (*solver.Values, solver.Marginals, error)
}

// Solve calls the injected Solve or the real version.
func (s *Solver) Solve(ctx context.Context, graph *posegraph.Graph, initial *solver.Values, opts solver.Options) (*solver.Values, solver.Marginals, error) {
	if s.SolveFunc == nil {
		return s.Solver.Solve(ctx, graph, initial, opts)
	}
	return s.SolveFunc(ctx, graph, initial, opts)
}
