package sam_test

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/sam"
)

func TestDefaultConfig(t *testing.T) {
	cfg := sam.DefaultConfig()
	test.That(t, cfg.Validate(""), test.ShouldBeNil)
	test.That(t, cfg.PoseKind, test.ShouldEqual, "x")
	test.That(t, cfg.LandmarkKind, test.ShouldEqual, "l")
	test.That(t, cfg.GateCorrespondences, test.ShouldBeTrue)
	test.That(t, cfg.MatchPercentage, test.ShouldEqual, 1.0)
	test.That(t, cfg.LongRangeGap, test.ShouldEqual, 10)
	test.That(t, cfg.Solver.RelativeErrorTol, test.ShouldEqual, 1e-5)
	test.That(t, cfg.Solver.MaxIterations, test.ShouldEqual, 100)
	test.That(t, cfg.MaxPosesBetweenSolves, test.ShouldEqual, 0)
}

func TestConfigValidate(t *testing.T) {
	for _, tc := range []struct {
		name    string
		mutate  func(cfg *sam.Config)
		errText string
	}{
		{"missing pose kind", func(cfg *sam.Config) { cfg.PoseKind = "" }, "pose_kind"},
		{"long pose kind", func(cfg *sam.Config) { cfg.PoseKind = "xx" }, "single character"},
		{"missing landmark kind", func(cfg *sam.Config) { cfg.LandmarkKind = "" }, "landmark_kind"},
		{"long landmark kind", func(cfg *sam.Config) { cfg.LandmarkKind = "lm" }, "single character"},
		{"equal kinds", func(cfg *sam.Config) { cfg.LandmarkKind = cfg.PoseKind }, "must differ"},
		{"negative leaf", func(cfg *sam.Config) { cfg.DownsampleSize = -1 }, "downsample_size"},
		{"negative sigma", func(cfg *sam.Config) { cfg.Filter.RangeSigma = -0.1 }, "sigmas"},
		{"unknown outlier", func(cfg *sam.Config) { cfg.Outlier.Type = "voxel" }, "unknown outlier type"},
		{
			"radius without radius",
			func(cfg *sam.Config) { cfg.Outlier = sam.OutlierConfig{Type: sam.OutlierRadius} },
			"positive radius",
		},
		{
			"statistical without neighborhood",
			func(cfg *sam.Config) { cfg.Outlier = sam.OutlierConfig{Type: sam.OutlierStatistical} },
			"mean-k",
		},
		{"negative variance", func(cfg *sam.Config) { cfg.LandmarkVariances.Y = -0.01 }, "landmark_variances"},
		{"negative match percentage", func(cfg *sam.Config) { cfg.MatchPercentage = -1 }, "match_percentage"},
		{"negative gap", func(cfg *sam.Config) { cfg.LongRangeGap = -1 }, "long_range_gap"},
		{"negative tolerance", func(cfg *sam.Config) { cfg.Solver.RelativeErrorTol = -1e-5 }, "relative_error_tol"},
		{"negative iterations", func(cfg *sam.Config) { cfg.Solver.MaxIterations = -1 }, "max_iterations"},
		{"negative solve bound", func(cfg *sam.Config) { cfg.MaxPosesBetweenSolves = -1 }, "max_poses_between_solves"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := sam.DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate("mapper")
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.errText)
		})
	}
}

func TestConfigValidateDisabledStages(t *testing.T) {
	cfg := sam.DefaultConfig()
	cfg.Outlier = sam.OutlierConfig{}
	cfg.Filter = sam.BilateralFilterConfig{}
	cfg.DownsampleSize = 0
	test.That(t, cfg.Validate(""), test.ShouldBeNil)
}
