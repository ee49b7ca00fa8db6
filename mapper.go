// Package sam implements an incremental smoothing-and-mapping front end.
//
// A Mapper accumulates odometry and landmark observations as factors in a
// pose graph while per-frame sensor data lives on the matching frames of a
// spatial graph. Bounding box containment proposes loop closure candidates
// and descriptor matching turns them into landmark factors. A pluggable
// solver periodically refines every stored estimate in place.
package sam

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/sam/features"
	"go.viam.com/sam/loopclose"
	"go.viam.com/sam/posegraph"
	"go.viam.com/sam/solver"
	"go.viam.com/sam/spatialgraph"
	"go.viam.com/sam/spatialmath"
	"go.viam.com/sam/symbol"
)

// A Mapper is the single-writer front end of the pipeline. Its methods are
// not safe for concurrent use; callers serialize access.
type Mapper struct {
	cfg    Config
	logger golog.Logger
	clock  clock.Clock

	registry *symbol.Registry
	spatial  *spatialgraph.Graph
	factors  *posegraph.Graph
	search   *loopclose.CandidateSearch
	assoc    *loopclose.Associator

	solver    solver.Solver
	extractor features.Extractor
	matcher   features.Matcher
	ingester  CloudIngester
	policy    loopclose.CandidatePolicy

	// staged search pair, handed over one finalize round late
	searchFrame      symbol.Symbol
	searchCandidates []symbol.Symbol
	nextFrame        symbol.Symbol
	nextCandidates   []symbol.Symbol

	marginals       solver.Marginals
	lastSolution    *solver.Values
	posesSinceSolve int
}

// NewMapper validates the config, allocates pose 0 and anchors it with a
// prior factor on origin. The caller still stores pose 0's estimate through
// AddPose before the first solve.
func NewMapper(
	origin spatialmath.Pose,
	originNoise posegraph.Noise,
	cfg Config,
	logger golog.Logger,
	opts ...Option,
) (*Mapper, error) {
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	registry, err := symbol.NewRegistry(cfg.PoseKind[0], cfg.LandmarkKind[0])
	if err != nil {
		return nil, err
	}

	spatial := spatialgraph.NewGraph(logger)
	factors := posegraph.NewGraph(spatial, logger)
	m := &Mapper{
		cfg:         cfg,
		logger:      logger,
		clock:       clock.New(),
		registry:    registry,
		spatial:     spatial,
		factors:     factors,
		searchFrame: symbol.Invalid(),
		nextFrame:   symbol.Invalid(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.solver == nil {
		m.solver = solver.NewChainSolver()
	}
	if m.matcher == nil {
		m.matcher = features.NewBruteForceMatcher()
	}
	if m.ingester == nil {
		m.ingester = newDefaultIngester(cfg, logger)
	}
	m.search = loopclose.NewCandidateSearch(spatial, loopclose.SearchConfig{
		LongRangeGap:    cfg.LongRangeGap,
		ExtraCandidates: m.policy,
	}, logger)
	m.assoc = loopclose.NewAssociator(spatial, factors, registry, loopclose.AssociationConfig{
		MatchPercentage:   cfg.MatchPercentage,
		Gate:              cfg.GateCorrespondences,
		LandmarkVariances: cfg.LandmarkVariances,
	}, m.matcher, logger)

	first := registry.NextPose()
	if err := factors.InsertPrior(first, origin, originNoise); err != nil {
		return nil, err
	}
	return m, nil
}

// AddDeltaPose allocates the next pose and chains it to the previous one
// with a between factor. A zero at is stamped from the mapper's clock.
func (m *Mapper) AddDeltaPose(at time.Time, delta spatialmath.Pose, noise posegraph.Noise) (symbol.Symbol, error) {
	prev, ok := m.registry.CurrentPose()
	if !ok {
		return symbol.Invalid(), errors.New("no pose allocated")
	}
	if at.IsZero() {
		at = m.clock.Now()
	}
	next := m.registry.NextPose()
	if err := m.factors.InsertBetween(at, prev, next, delta, noise); err != nil {
		return symbol.Invalid(), err
	}
	m.posesSinceSolve++
	return next, nil
}

// AddPose stores the current pose's estimate, creating its frame when the
// factor mirror has not already. A second estimate for the same pose is
// rejected.
func (m *Mapper) AddPose(estimate spatialmath.PoseWithCovariance) error {
	current, ok := m.registry.CurrentPose()
	if !ok {
		return errors.New("no pose allocated")
	}
	if m.spatial.HasPose(current) {
		return errors.Errorf("pose %s already has a stored estimate", current)
	}
	if !m.spatial.HasFrame(current) {
		if err := m.spatial.AddFrame(current); err != nil {
			return err
		}
	}
	return m.spatial.AddPose(current, m.clock.Now(), estimate)
}

// AddBearingRange allocates a landmark observed from pose by a planar
// bearing and range reading and returns its symbol.
func (m *Mapper) AddBearingRange(
	at time.Time,
	pose symbol.Symbol,
	bearing, rng float64,
	noise posegraph.Noise,
) (symbol.Symbol, error) {
	if at.IsZero() {
		at = m.clock.Now()
	}
	lm := m.registry.NextLandmark()
	if err := m.factors.InsertBearingRange(at, pose, lm, bearing, rng, noise); err != nil {
		return symbol.Invalid(), err
	}
	return lm, nil
}

// AddLandmark allocates a landmark observed from pose at a body-frame
// offset and returns its symbol.
func (m *Mapper) AddLandmark(
	at time.Time,
	pose symbol.Symbol,
	offset r3.Vector,
	noise posegraph.Noise,
) (symbol.Symbol, error) {
	if at.IsZero() {
		at = m.clock.Now()
	}
	lm := m.registry.NextLandmark()
	if err := m.factors.InsertLandmark(at, pose, lm, offset, noise); err != nil {
		return symbol.Invalid(), err
	}
	return lm, nil
}

// SetLandmarkPosition stores a world-frame position estimate for a landmark.
// The first stored estimate stays authoritative for reads until the solver
// refines it.
func (m *Mapper) SetLandmarkPosition(id symbol.Symbol, position r3.Vector) error {
	est, err := spatialmath.NewPoseWithCovariance(spatialmath.NewPoseFromPoint(position), nil)
	if err != nil {
		return err
	}
	return m.spatial.AddPose(id, m.clock.Now(), est)
}

// Pose returns the stored estimate of a frame.
func (m *Mapper) Pose(id symbol.Symbol) (spatialmath.PoseWithCovariance, error) {
	item, err := m.spatial.Pose(id)
	if err != nil {
		return spatialmath.PoseWithCovariance{}, err
	}
	return item.Estimate, nil
}

// Poses returns the stored pose estimates in allocation order. Poses that
// never got an estimate are skipped.
func (m *Mapper) Poses() []spatialmath.PoseWithCovariance {
	out := make([]spatialmath.PoseWithCovariance, 0, m.registry.PoseCount())
	for i := uint64(0); i < m.registry.PoseCount(); i++ {
		item, err := m.spatial.Pose(m.registry.PoseAt(i))
		if err != nil {
			continue
		}
		out = append(out, item.Estimate)
	}
	return out
}

// LastPose returns the estimate and symbol of the newest pose.
func (m *Mapper) LastPose() (spatialmath.PoseWithCovariance, symbol.Symbol, error) {
	current, ok := m.registry.CurrentPose()
	if !ok {
		return spatialmath.PoseWithCovariance{}, symbol.Invalid(), errors.New("no pose allocated")
	}
	item, err := m.spatial.Pose(current)
	if err != nil {
		return spatialmath.PoseWithCovariance{}, current, err
	}
	return item.Estimate, current, nil
}

// LandmarkPosition returns the stored world-frame position of a landmark.
func (m *Mapper) LandmarkPosition(id symbol.Symbol) (r3.Vector, error) {
	item, err := m.spatial.Pose(id)
	if err != nil {
		return r3.Vector{}, err
	}
	return item.Estimate.Pose.Point(), nil
}

// CurrentPoseSymbol returns the newest allocated pose symbol.
func (m *Mapper) CurrentPoseSymbol() (symbol.Symbol, bool) {
	return m.registry.CurrentPose()
}

// CurrentLandmarkSymbol returns the newest allocated landmark symbol.
func (m *Mapper) CurrentLandmarkSymbol() (symbol.Symbol, bool) {
	return m.registry.CurrentLandmark()
}
