package sam

import (
	"context"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"go.viam.com/sam/posegraph"
	"go.viam.com/sam/solver"
	"go.viam.com/sam/spatialgraph"
	"go.viam.com/sam/spatialmath"
	"go.viam.com/sam/symbol"
)

// Optimize assembles the initial estimate from the stored items, runs the
// solver over the whole factor graph and writes every refined estimate and
// its marginal covariance back. Write-back is staged, so a failed solve
// leaves the graphs untouched.
func (m *Mapper) Optimize(ctx context.Context) error {
	initial := solver.NewValues()
	for i := uint64(0); i < m.registry.PoseCount(); i++ {
		id := m.registry.PoseAt(i)
		item, err := m.spatial.Pose(id)
		if err != nil {
			m.logger.Errorw("pose estimate missing, cannot optimize", "frame", id.String(), "error", err)
			return err
		}
		initial.SetPose(id, item.Estimate.Pose)
	}
	for i := uint64(0); i < m.registry.LandmarkCount(); i++ {
		id := m.registry.LandmarkAt(i)
		item, err := m.spatial.Pose(id)
		if err != nil {
			m.logger.Errorw("landmark estimate missing, cannot optimize", "frame", id.String(), "error", err)
			return err
		}
		initial.SetPoint(id, item.Estimate.Pose.Point())
	}

	solution, marginals, err := m.solver.Solve(ctx, m.factors, initial, m.cfg.Solver)
	if err != nil {
		m.logger.Errorw("solve failed", "error", err)
		return err
	}

	type update struct {
		id       symbol.Symbol
		estimate spatialmath.PoseWithCovariance
	}
	updates := make([]update, 0, solution.Len())
	for _, id := range solution.Symbols() {
		cov, err := marginals.MarginalCovariance(id)
		if err != nil {
			return err
		}
		var refined spatialmath.Pose
		if pose, ok := solution.Pose(id); ok {
			refined = pose
		} else if point, ok := solution.Point(id); ok {
			refined = spatialmath.NewPoseFromPoint(point)
			cov = expandPointCovariance(cov)
		} else {
			continue
		}
		estimate, err := spatialmath.NewPoseWithCovariance(refined, cov)
		if err != nil {
			return err
		}
		updates = append(updates, update{id: id, estimate: estimate})
	}

	now := m.clock.Now()
	for _, u := range updates {
		if !m.spatial.HasPose(u.id) {
			continue
		}
		if err := m.spatial.SetPose(u.id, now, u.estimate); err != nil {
			return err
		}
	}
	m.marginals = marginals
	m.lastSolution = solution
	m.posesSinceSolve = 0
	return nil
}

// expandPointCovariance pads a point covariance into the pose covariance
// layout, top left.
func expandPointCovariance(cov *mat.Dense) *mat.Dense {
	if cov == nil {
		return nil
	}
	rows, cols := cov.Dims()
	if rows >= spatialmath.CovarianceDim && cols >= spatialmath.CovarianceDim {
		return cov
	}
	out := mat.NewDense(spatialmath.CovarianceDim, spatialmath.CovarianceDim, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, cov.At(i, j))
		}
	}
	return out
}

// Marginals returns the marginals of the last successful solve, nil before
// any solve.
func (m *Mapper) Marginals() solver.Marginals {
	return m.marginals
}

// MarginalReport formats the per-variable covariances of the last solve.
func (m *Mapper) MarginalReport() string {
	if m.lastSolution == nil {
		return "no marginals available\n"
	}
	var sb strings.Builder
	for _, id := range m.lastSolution.Symbols() {
		cov, err := m.marginals.MarginalCovariance(id)
		if err != nil {
			continue
		}
		fmt.Fprintf(&sb, "%s covariance:\n%v\n", id, mat.Formatted(cov, mat.Squeeze()))
	}
	return sb.String()
}

// FactorGraph exposes the accumulated factors.
func (m *Mapper) FactorGraph() *posegraph.Graph {
	return m.factors
}

// SpatialGraph exposes the spatial bookkeeping graph.
func (m *Mapper) SpatialGraph() *spatialgraph.Graph {
	return m.spatial
}
