package sam_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/sam"
	"go.viam.com/sam/posegraph"
	"go.viam.com/sam/solver"
	"go.viam.com/sam/spatialgraph"
	"go.viam.com/sam/spatialmath"
	"go.viam.com/sam/symbol"
	"go.viam.com/sam/testutils/inject"
)

func TestOptimizeRefinesEstimates(t *testing.T) {
	ctx := context.Background()
	m := newTestMapper(t, sam.DefaultConfig())
	x0, x1 := symbol.New('x', 0), symbol.New('x', 1)

	// stored estimates deliberately disagree with the factors
	test.That(t, m.AddPose(poseEstimate(t, r3.Vector{X: 5, Y: 5, Z: 5})), test.ShouldBeNil)
	_, err := m.AddDeltaPose(time.Unix(1, 0), spatialmath.NewPoseFromPoint(r3.Vector{X: 1}), poseNoise(t, 0.01))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.AddPose(poseEstimate(t, r3.Vector{X: 9, Y: 9, Z: 9})), test.ShouldBeNil)

	test.That(t, m.Optimize(ctx), test.ShouldBeNil)

	est, err := m.Pose(x0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, est.Pose.Point().Norm(), test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, est.Covariance.At(0, 0), test.ShouldAlmostEqual, 0.01, 1e-9)

	est, err = m.Pose(x1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, est.Pose.Point().X, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, est.Covariance.At(0, 0), test.ShouldAlmostEqual, 0.02, 1e-9)

	cov, err := m.Marginals().MarginalCovariance(x1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cov.At(0, 0), test.ShouldAlmostEqual, 0.02, 1e-9)
}

func TestOptimizeResolvesBearingRangeLandmark(t *testing.T) {
	ctx := context.Background()
	m := newTestMapper(t, sam.DefaultConfig())
	x0 := symbol.New('x', 0)

	test.That(t, m.AddPose(poseEstimate(t, r3.Vector{})), test.ShouldBeNil)
	l0, err := m.AddBearingRange(time.Unix(1, 0), x0, 0, 3, diagNoise(t, 0.01, 0.04))
	test.That(t, err, test.ShouldBeNil)
	// a rough initial guess, refined by the solve
	test.That(t, m.SetLandmarkPosition(l0, r3.Vector{X: 2.5}), test.ShouldBeNil)

	test.That(t, m.Optimize(ctx), test.ShouldBeNil)

	pos, err := m.LandmarkPosition(l0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos.X, test.ShouldAlmostEqual, 3, 1e-9)
	test.That(t, pos.Y, test.ShouldAlmostEqual, 0, 1e-9)
}

func TestOptimizeMissingEstimates(t *testing.T) {
	ctx := context.Background()

	t.Run("pose frame never created", func(t *testing.T) {
		// pose 0 only has its prior, which mirrors no edge, so the frame
		// does not exist until AddPose creates it
		m := newTestMapper(t, sam.DefaultConfig())

		err := m.Optimize(ctx)
		test.That(t, err, test.ShouldWrap, spatialgraph.ErrUnknownFrame)
		test.That(t, m.Marginals(), test.ShouldBeNil)
	})

	t.Run("pose estimate never stored", func(t *testing.T) {
		m := newTestMapper(t, sam.DefaultConfig())
		test.That(t, m.AddPose(poseEstimate(t, r3.Vector{})), test.ShouldBeNil)
		_, err := m.AddDeltaPose(time.Unix(1, 0), spatialmath.NewPoseFromPoint(r3.Vector{X: 1}), poseNoise(t, 0.01))
		test.That(t, err, test.ShouldBeNil)

		err = m.Optimize(ctx)
		test.That(t, err, test.ShouldWrap, spatialgraph.ErrItemNotFound)
		test.That(t, m.Marginals(), test.ShouldBeNil)
	})

	t.Run("landmark position never stored", func(t *testing.T) {
		m := newTestMapper(t, sam.DefaultConfig())
		test.That(t, m.AddPose(poseEstimate(t, r3.Vector{})), test.ShouldBeNil)
		_, err := m.AddBearingRange(time.Unix(1, 0), symbol.New('x', 0), 0, 1, diagNoise(t, 0.01, 0.01))
		test.That(t, err, test.ShouldBeNil)

		err = m.Optimize(ctx)
		test.That(t, err, test.ShouldWrap, spatialgraph.ErrItemNotFound)
		test.That(t, m.Marginals(), test.ShouldBeNil)

		// nothing was mutated
		est, err := m.Pose(symbol.New('x', 0))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, est.Covariance.At(0, 0), test.ShouldEqual, 0)
	})
}

func TestOptimizeSolverFailure(t *testing.T) {
	ctx := context.Background()
	injectSolver := &inject.Solver{}
	injectSolver.SolveFunc = func(
		ctx context.Context,
		graph *posegraph.Graph,
		initial *solver.Values,
		opts solver.Options,
	) (*solver.Values, solver.Marginals, error) {
		return nil, nil, errors.Wrap(solver.ErrSolverFailure, "diverged")
	}
	m := newTestMapper(t, sam.DefaultConfig(), sam.WithSolver(injectSolver))
	test.That(t, m.AddPose(poseEstimate(t, r3.Vector{X: 5})), test.ShouldBeNil)

	err := m.Optimize(ctx)
	test.That(t, err, test.ShouldWrap, solver.ErrSolverFailure)
	test.That(t, m.Marginals(), test.ShouldBeNil)

	// the stored estimate survived the failed solve
	est, err := m.Pose(symbol.New('x', 0))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, est.Pose.Point(), test.ShouldResemble, r3.Vector{X: 5})
	test.That(t, est.Covariance.At(0, 0), test.ShouldEqual, 0)
}

func TestOptimizeFixedPoint(t *testing.T) {
	ctx := context.Background()
	m := newTestMapper(t, sam.DefaultConfig())

	test.That(t, m.AddPose(poseEstimate(t, r3.Vector{})), test.ShouldBeNil)
	for i := 1; i <= 3; i++ {
		_, err := m.AddDeltaPose(
			time.Unix(int64(i), 0),
			spatialmath.NewPoseFromPoint(r3.Vector{X: 1}),
			poseNoise(t, 0.01),
		)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, m.AddPose(poseEstimate(t, r3.Vector{X: float64(i)})), test.ShouldBeNil)
	}
	l0, err := m.AddLandmark(time.Unix(4, 0), symbol.New('x', 2), r3.Vector{Y: 1}, diagNoise(t, 0.01, 0.01, 0.01))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.SetLandmarkPosition(l0, r3.Vector{X: 2, Y: 1}), test.ShouldBeNil)

	test.That(t, m.Optimize(ctx), test.ShouldBeNil)
	first := m.Poses()
	firstLandmark, err := m.LandmarkPosition(l0)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, m.Optimize(ctx), test.ShouldBeNil)
	second := m.Poses()
	secondLandmark, err := m.LandmarkPosition(l0)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, second, test.ShouldHaveLength, len(first))
	for i := range first {
		test.That(t, spatialmath.PoseAlmostEqual(first[i].Pose, second[i].Pose, 1e-12), test.ShouldBeTrue)
		test.That(t, mat64Equal(first[i].Covariance.RawMatrix().Data, second[i].Covariance.RawMatrix().Data), test.ShouldBeTrue)
	}
	test.That(t, secondLandmark, test.ShouldResemble, firstLandmark)
}

func mat64Equal(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMarginalReport(t *testing.T) {
	ctx := context.Background()
	m := newTestMapper(t, sam.DefaultConfig())
	test.That(t, m.MarginalReport(), test.ShouldEqual, "no marginals available\n")

	test.That(t, m.AddPose(poseEstimate(t, r3.Vector{})), test.ShouldBeNil)
	_, err := m.AddDeltaPose(time.Unix(1, 0), spatialmath.NewPoseFromPoint(r3.Vector{X: 1}), poseNoise(t, 0.01))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.AddPose(poseEstimate(t, r3.Vector{X: 1})), test.ShouldBeNil)
	test.That(t, m.Optimize(ctx), test.ShouldBeNil)

	report := m.MarginalReport()
	test.That(t, report, test.ShouldContainSubstring, "x0 covariance:")
	test.That(t, report, test.ShouldContainSubstring, "x1 covariance:")
}
