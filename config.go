package sam

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/sam/features"
	"go.viam.com/sam/solver"
)

// Outlier removal stages the ingester understands. An empty type disables
// the stage.
const (
	OutlierRadius      = "radius"
	OutlierStatistical = "statistical"
)

// BilateralFilterConfig tunes the depth smoothing applied to organized point
// batches before any other filter.
type BilateralFilterConfig struct {
	SpatialSigma float64 `json:"spatial_sigma"`
	RangeSigma   float64 `json:"range_sigma"`
}

// OutlierConfig selects and parameterizes the outlier removal stage. For
// "radius", ParamOne is the search radius and ParamTwo the minimum neighbor
// count. For "statistical", ParamOne is the mean-k neighborhood size and
// ParamTwo the standard deviation multiplier.
type OutlierConfig struct {
	Type     string  `json:"type,omitempty"`
	ParamOne float64 `json:"param_one"`
	ParamTwo float64 `json:"param_two"`
}

// A Config holds every tunable of a Mapper.
type Config struct {
	PoseKind              string                  `json:"pose_kind"`
	LandmarkKind          string                  `json:"landmark_kind"`
	DownsampleSize        float64                 `json:"downsample_size"`
	Filter                BilateralFilterConfig   `json:"filter"`
	Outlier               OutlierConfig           `json:"outlier"`
	Keypoint              features.KeypointConfig `json:"keypoint"`
	Feature               features.FeatureConfig  `json:"feature"`
	LandmarkVariances     r3.Vector               `json:"landmark_variances"`
	MatchPercentage       float64                 `json:"match_percentage"`
	GateCorrespondences   bool                    `json:"gate_correspondences"`
	LongRangeGap          int                     `json:"long_range_gap"`
	Solver                solver.Options          `json:"solver"`
	MaxPosesBetweenSolves int                     `json:"max_poses_between_solves"`
}

// DefaultConfig returns a config with the stock tuning. Landmark detection
// still needs an extractor wired in via WithExtractor.
func DefaultConfig() Config {
	return Config{
		PoseKind:       "x",
		LandmarkKind:   "l",
		DownsampleSize: 0.01,
		Filter:         BilateralFilterConfig{SpatialSigma: 2, RangeSigma: 0.02},
		Outlier:        OutlierConfig{Type: OutlierStatistical, ParamOne: 20, ParamTwo: 2},
		Keypoint: features.KeypointConfig{
			MinScale:        0.02,
			NumOctaves:      4,
			ScalesPerOctave: 5,
			MinContrast:     0.3,
		},
		Feature: features.FeatureConfig{
			NormalRadius:  0.1,
			FeatureRadius: 0.2,
		},
		LandmarkVariances:   r3.Vector{X: 0.01, Y: 0.01, Z: 0.01},
		MatchPercentage:     1.0,
		GateCorrespondences: true,
		LongRangeGap:        10,
		Solver:              solver.DefaultOptions(),
	}
}

// Validate ensures all parts of the config are valid.
func (config *Config) Validate(path string) error {
	if config.PoseKind == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "pose_kind")
	}
	if len(config.PoseKind) != 1 {
		return utils.NewConfigValidationError(path, errors.New("pose_kind must be a single character"))
	}
	if config.LandmarkKind == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "landmark_kind")
	}
	if len(config.LandmarkKind) != 1 {
		return utils.NewConfigValidationError(path, errors.New("landmark_kind must be a single character"))
	}
	if config.PoseKind == config.LandmarkKind {
		return utils.NewConfigValidationError(path, errors.New("pose_kind and landmark_kind must differ"))
	}
	if config.DownsampleSize < 0 {
		return utils.NewConfigValidationError(path, errors.New("downsample_size cannot be negative"))
	}
	if config.Filter.SpatialSigma < 0 || config.Filter.RangeSigma < 0 {
		return utils.NewConfigValidationError(path, errors.New("filter sigmas cannot be negative"))
	}
	switch config.Outlier.Type {
	case "", OutlierRadius, OutlierStatistical:
	default:
		return utils.NewConfigValidationError(path,
			errors.Errorf("unknown outlier type %q", config.Outlier.Type))
	}
	if config.Outlier.Type == OutlierRadius && config.Outlier.ParamOne <= 0 {
		return utils.NewConfigValidationError(path, errors.New("radius outlier removal needs a positive radius"))
	}
	if config.Outlier.Type == OutlierStatistical && config.Outlier.ParamOne < 1 {
		return utils.NewConfigValidationError(path, errors.New("statistical outlier removal needs a mean-k of at least 1"))
	}
	if config.LandmarkVariances.X < 0 || config.LandmarkVariances.Y < 0 || config.LandmarkVariances.Z < 0 {
		return utils.NewConfigValidationError(path, errors.New("landmark_variances cannot be negative"))
	}
	if config.MatchPercentage < 0 {
		return utils.NewConfigValidationError(path, errors.New("match_percentage cannot be negative"))
	}
	if config.LongRangeGap < 0 {
		return utils.NewConfigValidationError(path, errors.New("long_range_gap cannot be negative"))
	}
	if config.Solver.RelativeErrorTol < 0 {
		return utils.NewConfigValidationError(path, errors.New("solver relative_error_tol cannot be negative"))
	}
	if config.Solver.MaxIterations < 0 {
		return utils.NewConfigValidationError(path, errors.New("solver max_iterations cannot be negative"))
	}
	if config.MaxPosesBetweenSolves < 0 {
		return utils.NewConfigValidationError(path, errors.New("max_poses_between_solves cannot be negative"))
	}
	return nil
}
