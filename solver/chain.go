package solver

import (
	"context"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/sam/posegraph"
	"go.viam.com/sam/spatialmath"
	"go.viam.com/sam/symbol"
)

type chainSolver struct{}

// NewChainSolver returns the deterministic chain solver. It composes each
// variable forward along the first factor that reaches it, which is exact for
// tree-shaped consistent graphs, and reports the noise accumulated along the
// composition chain as the variable's marginal covariance. Redundant factors
// on already-resolved variables are ignored, so repeated solves of the same
// graph yield identical results.
func NewChainSolver() Solver {
	return &chainSolver{}
}

type solvedMarginals struct {
	covs map[symbol.Symbol]*mat.Dense
}

func (m *solvedMarginals) MarginalCovariance(id symbol.Symbol) (*mat.Dense, error) {
	cov, ok := m.covs[id]
	if !ok {
		return nil, errors.Errorf("no marginal for %s", id)
	}
	return mat.DenseCopyOf(cov), nil
}

func (s *chainSolver) Solve(ctx context.Context, graph *posegraph.Graph, initial *Values, opts Options) (*Values, Marginals, error) {
	factors := graph.Factors()

	for _, f := range factors {
		for _, key := range f.Keys() {
			if initial == nil || !initial.Has(key) {
				return nil, nil, errors.Wrapf(ErrMissingEstimate, "variable %s", key)
			}
		}
	}

	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultOptions().MaxIterations
	}
	out := NewValues()
	margs := &solvedMarginals{covs: map[symbol.Symbol]*mat.Dense{}}

	for iter := 0; iter < opts.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		progressed := false
		for _, f := range factors {
			switch f := f.(type) {
			case *posegraph.PriorFactor:
				if out.Has(f.Key) {
					continue
				}
				out.SetPose(f.Key, f.Pose)
				margs.covs[f.Key] = f.Noise().Covariance()
				progressed = true
			case *posegraph.BetweenFactor:
				fromPose, fromOK := out.Pose(f.From)
				toPose, toOK := out.Pose(f.To)
				switch {
				case fromOK && !out.Has(f.To):
					out.SetPose(f.To, spatialmath.Compose(fromPose, f.Delta))
					margs.covs[f.To] = addCov(margs.covs[f.From], f.Noise().Covariance())
					progressed = true
				case toOK && !out.Has(f.From):
					out.SetPose(f.From, spatialmath.Compose(toPose, spatialmath.PoseInverse(f.Delta)))
					margs.covs[f.From] = addCov(margs.covs[f.To], f.Noise().Covariance())
					progressed = true
				}
			case *posegraph.LandmarkFactor:
				pose, ok := out.Pose(f.Pose)
				if !ok || out.Has(f.Landmark) {
					continue
				}
				out.SetPoint(f.Landmark, spatialmath.TransformPoint(pose, f.Offset))
				margs.covs[f.Landmark] = addCov(positionBlock(margs.covs[f.Pose]), f.Noise().Covariance())
				progressed = true
			case *posegraph.BearingRangeFactor:
				pose, ok := out.Pose(f.Pose)
				if !ok || out.Has(f.Landmark) {
					continue
				}
				sin, cos := math.Sincos(f.Bearing)
				local := r3.Vector{X: f.Range * cos, Y: f.Range * sin}
				out.SetPoint(f.Landmark, spatialmath.TransformPoint(pose, local))
				margs.covs[f.Landmark] = addCov(positionBlock(margs.covs[f.Pose]), bearingRangeCov(f))
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}

	for _, f := range factors {
		for _, key := range f.Keys() {
			if !out.Has(key) {
				return nil, nil, errors.Wrapf(ErrGraphDisconnected, "variable %s", key)
			}
		}
	}
	return out, margs, nil
}

func addCov(a, b *mat.Dense) *mat.Dense {
	var sum mat.Dense
	sum.Add(a, b)
	return &sum
}

func positionBlock(cov *mat.Dense) *mat.Dense {
	return mat.DenseCopyOf(cov.Slice(0, 3, 0, 3))
}

// bearingRangeCov linearizes polar measurement noise into a cartesian
// covariance in the observing pose's frame.
func bearingRangeCov(f *posegraph.BearingRangeFactor) *mat.Dense {
	cov := f.Noise().Covariance()
	bearingVar, rangeVar := cov.At(0, 0), cov.At(1, 1)
	sin, cos := math.Sincos(f.Bearing)
	jBearing := []float64{-f.Range * sin, f.Range * cos, 0}
	jRange := []float64{cos, sin, 0}
	out := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, bearingVar*jBearing[i]*jBearing[j]+rangeVar*jRange[i]*jRange[j])
		}
	}
	return out
}
