// Package posegraph stores the factors of a pose graph and mirrors every
// two-variable factor as a transform edge in the spatial graph, so spatial
// queries and the solver always see the same constraints.
package posegraph

import (
	"fmt"
	"strings"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/sam/spatialgraph"
	"go.viam.com/sam/spatialmath"
	"go.viam.com/sam/symbol"
)

// Graph is an append-only factor store. It is not safe for concurrent use.
type Graph struct {
	factors []Factor
	spatial *spatialgraph.Graph
	logger  golog.Logger
}

// NewGraph returns an empty factor graph mirroring into the given spatial
// graph.
func NewGraph(spatial *spatialgraph.Graph, logger golog.Logger) *Graph {
	return &Graph{spatial: spatial, logger: logger}
}

// InsertPrior appends an absolute pose anchor on one variable. Priors are not
// mirrored as transform edges.
func (g *Graph) InsertPrior(id symbol.Symbol, pose spatialmath.Pose, noise Noise) error {
	if noise.Dim() != poseDim {
		return NewDimensionMismatchError(poseDim, noise.Dim())
	}
	g.factors = append(g.factors, &PriorFactor{Key: id, Pose: pose, noise: noise})
	g.logger.Debugf("added prior factor on %s", id)
	return nil
}

// InsertBetween appends a relative pose factor and mirrors it as a transform
// edge carrying the full covariance.
func (g *Graph) InsertBetween(at time.Time, from, to symbol.Symbol, delta spatialmath.Pose, noise Noise) error {
	if noise.Dim() != poseDim {
		return NewDimensionMismatchError(poseDim, noise.Dim())
	}
	g.factors = append(g.factors, &BetweenFactor{From: from, To: to, Delta: delta, noise: noise})
	g.spatial.AddTransform(from, to, spatialgraph.Transform{
		At:         at,
		Pose:       delta,
		Covariance: noise.Covariance(),
	})
	g.logger.Debugf("added between factor %s -> %s", from, to)
	return nil
}

// InsertBearingRange appends a planar bearing/range factor and mirrors it as
// a transform edge, translation (range, 0, 0) rotated to the bearing about Z.
// The edge covariance carries the range variance in the first translation slot
// and the bearing variance in the last rotation slot.
func (g *Graph) InsertBearingRange(at time.Time, pose, lm symbol.Symbol, bearing, rng float64, noise Noise) error {
	if noise.Dim() != bearingRangeDim {
		return NewDimensionMismatchError(bearingRangeDim, noise.Dim())
	}
	g.factors = append(g.factors, &BearingRangeFactor{
		Pose:     pose,
		Landmark: lm,
		Bearing:  bearing,
		Range:    rng,
		noise:    noise,
	})
	cov := noise.Covariance()
	edgeCov := mat.NewDense(spatialmath.CovarianceDim, spatialmath.CovarianceDim, nil)
	edgeCov.Set(0, 0, cov.At(1, 1))
	edgeCov.Set(5, 5, cov.At(0, 0))
	g.spatial.AddTransform(pose, lm, spatialgraph.Transform{
		At:         at,
		Pose:       spatialmath.NewPose(r3.Vector{X: rng}, &spatialmath.EulerAngles{Yaw: bearing}),
		Covariance: edgeCov,
	})
	g.logger.Debugf("added bearing/range factor %s -> %s", pose, lm)
	return nil
}

// InsertLandmark appends a landmark position factor and mirrors it as a
// transform edge with the offset translation, identity rotation and the noise
// covariance in the translation block.
func (g *Graph) InsertLandmark(at time.Time, pose, lm symbol.Symbol, offset r3.Vector, noise Noise) error {
	if noise.Dim() != landmarkDim {
		return NewDimensionMismatchError(landmarkDim, noise.Dim())
	}
	g.factors = append(g.factors, &LandmarkFactor{Pose: pose, Landmark: lm, Offset: offset, noise: noise})
	cov := noise.Covariance()
	edgeCov := mat.NewDense(spatialmath.CovarianceDim, spatialmath.CovarianceDim, nil)
	for i := 0; i < landmarkDim; i++ {
		for j := 0; j < landmarkDim; j++ {
			edgeCov.Set(i, j, cov.At(i, j))
		}
	}
	g.spatial.AddTransform(pose, lm, spatialgraph.Transform{
		At:         at,
		Pose:       spatialmath.NewPoseFromPoint(offset),
		Covariance: edgeCov,
	})
	g.logger.Debugf("added landmark factor %s -> %s", pose, lm)
	return nil
}

// Len returns the number of factors.
func (g *Graph) Len() int {
	return len(g.factors)
}

// Factor returns the i-th factor in insertion order.
func (g *Graph) Factor(i int) Factor {
	return g.factors[i]
}

// Factors returns a copy of all factors in insertion order.
func (g *Graph) Factors() []Factor {
	out := make([]Factor, len(g.factors))
	copy(out, g.factors)
	return out
}

// String renders the factor list, one factor per line.
func (g *Graph) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "factor graph with %d factors\n", len(g.factors))
	for i, f := range g.factors {
		fmt.Fprintf(&sb, "%4d: %s\n", i, f)
	}
	return sb.String()
}
