package loopclose

import (
	"sort"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/sam/features"
	"go.viam.com/sam/posegraph"
	"go.viam.com/sam/spatialgraph"
	"go.viam.com/sam/spatialmath"
	"go.viam.com/sam/symbol"
)

// chiSquare95 holds the upper 5% critical values of the chi-square
// distribution by degrees of freedom.
var chiSquare95 = map[int]float64{1: 3.84, 2: 5.99, 3: 7.81, 4: 9.49}

// AssociationConfig tunes data association.
type AssociationConfig struct {
	// MatchPercentage scales the per-candidate match median; only matches
	// with squared distance at or below percentage x median survive. Zero
	// selects the default of 1.
	MatchPercentage float64
	// Gate enables the Mahalanobis acceptance test on each surviving match.
	Gate bool
	// LandmarkVariances is the per-axis measurement variance of a landmark
	// observation. The zero vector selects the default of 0.01 per axis.
	LandmarkVariances r3.Vector
}

// DefaultAssociationConfig returns the association defaults, gate enabled.
func DefaultAssociationConfig() AssociationConfig {
	return AssociationConfig{
		MatchPercentage:   1.0,
		Gate:              true,
		LandmarkVariances: r3.Vector{X: 0.01, Y: 0.01, Z: 0.01},
	}
}

// Associator matches a frame's descriptors against candidate frames and
// inserts a landmark for every accepted correspondence.
type Associator struct {
	spatial  *spatialgraph.Graph
	factors  *posegraph.Graph
	registry *symbol.Registry
	cfg      AssociationConfig
	matcher  features.Matcher
	logger   golog.Logger
}

// NewAssociator returns an associator over the given graphs. A nil matcher
// selects the brute-force matcher.
func NewAssociator(
	spatial *spatialgraph.Graph,
	factors *posegraph.Graph,
	registry *symbol.Registry,
	cfg AssociationConfig,
	matcher features.Matcher,
	logger golog.Logger,
) *Associator {
	if cfg.MatchPercentage <= 0 {
		cfg.MatchPercentage = 1.0
	}
	if cfg.LandmarkVariances == (r3.Vector{}) {
		cfg.LandmarkVariances = r3.Vector{X: 0.01, Y: 0.01, Z: 0.01}
	}
	if matcher == nil {
		matcher = features.NewBruteForceMatcher()
	}
	return &Associator{
		spatial:  spatial,
		factors:  factors,
		registry: registry,
		cfg:      cfg,
		matcher:  matcher,
		logger:   logger,
	}
}

// DetectLandmarks associates the source frame's features against each
// candidate frame and returns how many landmarks were accepted. A source
// without usable features is skipped with a log; candidates without usable
// features are skipped silently.
func (a *Associator) DetectLandmarks(at time.Time, source symbol.Symbol, candidates []symbol.Symbol) (int, error) {
	if !a.spatial.HasKeypoints(source) || !a.spatial.HasDescriptors(source) {
		a.logger.Debugf("frame %s has no features, skipping association", source)
		return 0, nil
	}
	srcKps, err := a.spatial.Keypoints(source)
	if err != nil {
		return 0, err
	}
	srcDescs, err := a.spatial.Descriptors(source)
	if err != nil {
		return 0, err
	}
	if len(srcKps.Keypoints) == 0 || len(srcKps.Keypoints) != len(srcDescs.Descriptors) {
		a.logger.Debugf("frame %s has no usable features, skipping association", source)
		return 0, nil
	}
	srcPose, err := a.spatial.Pose(source)
	if err != nil {
		return 0, err
	}
	noise, err := posegraph.NewDiagonalNoise([]float64{
		a.cfg.LandmarkVariances.X,
		a.cfg.LandmarkVariances.Y,
		a.cfg.LandmarkVariances.Z,
	})
	if err != nil {
		return 0, err
	}

	accepted := 0
	for _, cand := range candidates {
		if !a.spatial.HasKeypoints(cand) || !a.spatial.HasDescriptors(cand) {
			continue
		}
		candKps, err := a.spatial.Keypoints(cand)
		if err != nil {
			return accepted, err
		}
		candDescs, err := a.spatial.Descriptors(cand)
		if err != nil {
			return accepted, err
		}
		if len(candKps.Keypoints) == 0 || len(candKps.Keypoints) != len(candDescs.Descriptors) {
			continue
		}
		candPose, err := a.spatial.Pose(cand)
		if err != nil {
			return accepted, err
		}

		indices, dists, err := a.matcher.NearestNeighbors(srcDescs.Descriptors, candDescs.Descriptors)
		if err != nil {
			return accepted, err
		}
		median := upperMedian(dists)

		for i, kp := range srcKps.Keypoints {
			if dists[i] > a.cfg.MatchPercentage*median {
				continue
			}
			match := candKps.Keypoints[indices[i]]
			srcGlobal := spatialmath.TransformPoint(srcPose.Estimate.Pose, kp.Point)
			candGlobal := spatialmath.TransformPoint(candPose.Estimate.Pose, match.Point)
			innovation := srcGlobal.Sub(candGlobal)

			if a.cfg.Gate {
				gateCov := srcPose.Estimate.PositionCovariance()
				gateCov.Set(0, 0, gateCov.At(0, 0)+a.cfg.LandmarkVariances.X)
				gateCov.Set(1, 1, gateCov.At(1, 1)+a.cfg.LandmarkVariances.Y)
				gateCov.Set(2, 2, gateCov.At(2, 2)+a.cfg.LandmarkVariances.Z)
				d2, ok := mahalanobis(innovation, gateCov)
				if !ok {
					a.logger.Debugf("gate covariance for %s is singular, rejecting match", source)
					continue
				}
				if !acceptInnovation(d2, 3) {
					continue
				}
			}

			lm := a.registry.NextLandmark()
			if err := a.factors.InsertLandmark(at, source, lm, kp.Point, noise); err != nil {
				return accepted, err
			}
			if err := a.factors.InsertLandmark(at, cand, lm, match.Point, noise); err != nil {
				return accepted, err
			}
			est, err := spatialmath.NewPoseWithCovariance(spatialmath.NewPoseFromPoint(srcGlobal), nil)
			if err != nil {
				return accepted, err
			}
			if err := a.spatial.AddPose(lm, at, est); err != nil {
				return accepted, err
			}
			a.logger.Debugf("landmark %s associates %s keypoint %d with %s keypoint %d", lm, source, i, cand, indices[i])
			accepted++
		}
	}
	return accepted, nil
}

// upperMedian returns element n/2 of the sorted values.
func upperMedian(vals []float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

// acceptInnovation applies the 5% chi-square test to a squared Mahalanobis
// distance. Degrees of freedom outside the table reject.
func acceptInnovation(d2 float64, dof int) bool {
	crit, ok := chiSquare95[dof]
	if !ok {
		return false
	}
	return d2 < crit
}

// mahalanobis returns the squared Mahalanobis distance of the innovation under
// the given covariance. The second return is false when the covariance cannot
// be inverted.
func mahalanobis(innovation r3.Vector, cov *mat.Dense) (float64, bool) {
	var inv mat.Dense
	if err := inv.Inverse(cov); err != nil {
		return 0, false
	}
	v := mat.NewVecDense(3, []float64{innovation.X, innovation.Y, innovation.Z})
	var tmp mat.VecDense
	tmp.MulVec(&inv, v)
	return mat.Dot(v, &tmp), true
}
