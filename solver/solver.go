// Package solver defines the black-box optimization interface of the pipeline
// and a deterministic chain solver used as the in-tree default.
package solver

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"go.viam.com/sam/posegraph"
	"go.viam.com/sam/symbol"
)

// Options tunes an optimization run.
type Options struct {
	// RelativeErrorTol is the relative error decrease below which an
	// iterative solver stops.
	RelativeErrorTol float64 `json:"relative_error_tol"`
	// MaxIterations bounds the solver's iterations.
	MaxIterations int `json:"max_iterations"`
}

// DefaultOptions returns the optimizer defaults.
func DefaultOptions() Options {
	return Options{RelativeErrorTol: 1e-5, MaxIterations: 100}
}

// Marginals exposes the per-variable covariances of a solution.
type Marginals interface {
	// MarginalCovariance returns the covariance of one variable, 6x6 for
	// poses and 3x3 for points.
	MarginalCovariance(id symbol.Symbol) (*mat.Dense, error)
}

// A Solver estimates every variable of a factor graph.
type Solver interface {
	// Solve returns estimates and marginals for all variables referenced by
	// the graph's factors. It fails when the graph is disconnected from its
	// anchors or the initial estimate omits a referenced variable.
	Solve(ctx context.Context, graph *posegraph.Graph, initial *Values, opts Options) (*Values, Marginals, error)
}
