// Package loopclose finds revisit candidates for a finalized pose and turns
// feature matches against those candidates into landmark constraints.
package loopclose

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"go.viam.com/sam/spatialgraph"
	"go.viam.com/sam/spatialmath"
	"go.viam.com/sam/symbol"
)

// DefaultLongRangeGap is the index gap beyond which a candidate is reported as
// a potential loop closure.
const DefaultLongRangeGap = 10

// boxMarginFloors are the per-axis lower bounds on the bounding box margins.
var boxMarginFloors = [3]float64{0.05, 0.4, 1.0}

// CandidatePolicy can force extra candidates into a search result. It is
// consulted once per scanned frame, after the containment check; returning
// true appends the frame even if containment already did.
type CandidatePolicy func(container, candidate symbol.Symbol) bool

// SearchConfig tunes the candidate search.
type SearchConfig struct {
	// LongRangeGap is the index gap beyond which accepted candidates are
	// logged as potential loop closures. Zero selects the default.
	LongRangeGap int
	// ExtraCandidates optionally forces frames into the result.
	ExtraCandidates CandidatePolicy
}

// CandidateSearch computes per-node bounding boxes and scans them for frames
// worth running data association against.
type CandidateSearch struct {
	spatial *spatialgraph.Graph
	cfg     SearchConfig
	logger  golog.Logger
}

// NewCandidateSearch returns a search over the given spatial graph.
func NewCandidateSearch(spatial *spatialgraph.Graph, cfg SearchConfig, logger golog.Logger) *CandidateSearch {
	if cfg.LongRangeGap <= 0 {
		cfg.LongRangeGap = DefaultLongRangeGap
	}
	return &CandidateSearch{spatial: spatial, cfg: cfg, logger: logger}
}

// ComputeBoundingBox spans a box between the finalized pose and its successor,
// inflated per axis by each node's own position uncertainty, and stores it on
// the finalized node. Margins never shrink below the per-axis floors.
func (s *CandidateSearch) ComputeBoundingBox(finalized, next symbol.Symbol) error {
	fItem, err := s.spatial.Pose(finalized)
	if err != nil {
		return err
	}
	nItem, err := s.spatial.Pose(next)
	if err != nil {
		return err
	}
	fMargin := poseMargins(fItem.Estimate)
	nMargin := poseMargins(nItem.Estimate)
	fT := vectorAxes(fItem.Estimate.Pose.Point())
	nT := vectorAxes(nItem.Estimate.Pose.Point())

	var lo, hi [3]float64
	for a := 0; a < 3; a++ {
		if fT[a] >= nT[a] {
			hi[a] = fT[a] + fMargin[a]
			lo[a] = nT[a] - nMargin[a]
		} else {
			hi[a] = nT[a] + nMargin[a]
			lo[a] = fT[a] - fMargin[a]
		}
	}
	box := spatialmath.NewAxisAlignedBox(axesVector(lo), axesVector(hi))
	return s.spatial.SetBoundingBox(finalized, box)
}

// Contains reports whether the query frame falls inside the container frame's
// bounding box. The query's translation is always tested; for revisit-ordered
// pairs the center of the query's own box counts as well.
func (s *CandidateSearch) Contains(container, query symbol.Symbol) bool {
	box, err := s.spatial.BoundingBox(container)
	if err != nil {
		return false
	}
	qItem, err := s.spatial.Pose(query)
	if err != nil {
		return false
	}
	if box.Contains(qItem.Estimate.Pose.Point()) {
		return true
	}
	if revisitBias(container, query) {
		qBox, err := s.spatial.BoundingBox(query)
		if err == nil && box.Contains(qBox.Center()) {
			return true
		}
	}
	return false
}

// ContainsFrames scans all frames of the container's kind in index order and
// returns those whose position falls inside the container's box, container
// excluded. Frames forced in by the candidate policy are appended after the
// containment check, so a frame can appear twice.
func (s *CandidateSearch) ContainsFrames(container symbol.Symbol) ([]symbol.Symbol, error) {
	if !s.spatial.HasFrame(container) {
		return nil, spatialgraph.NewUnknownFrameError(container)
	}
	var out []symbol.Symbol
	for _, f := range s.spatial.FramesOfKind(container.Kind()) {
		if f == container {
			continue
		}
		if s.Contains(container, f) {
			out = append(out, f)
			if indexGap(container, f) > s.cfg.LongRangeGap {
				s.logger.Infof("frame %s is a long range candidate for %s, potential loop closure", f, container)
			}
		}
		if s.cfg.ExtraCandidates != nil && s.cfg.ExtraCandidates(container, f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// revisitBias reports whether the pair is ordered container-after-query within
// one kind. For such pairs the search also accepts the query's box center,
// biasing candidates toward places the platform has come back to.
func revisitBias(container, query symbol.Symbol) bool {
	return container.Kind() == query.Kind() && container.Index() > query.Index()
}

func indexGap(a, b symbol.Symbol) int {
	gap := int64(a.Index()) - int64(b.Index())
	if gap < 0 {
		gap = -gap
	}
	return int(gap)
}

func poseMargins(est spatialmath.PoseWithCovariance) [3]float64 {
	cov := est.PositionCovariance()
	var m [3]float64
	for a := 0; a < 3; a++ {
		m[a] = math.Max(math.Sqrt(cov.At(a, a)), boxMarginFloors[a])
	}
	return m
}

func vectorAxes(v r3.Vector) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func axesVector(a [3]float64) r3.Vector {
	return r3.Vector{X: a[0], Y: a[1], Z: a[2]}
}
