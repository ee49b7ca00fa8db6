// Package features defines the point cloud keypoints and descriptors the
// mapping pipeline associates across frames, and the collaborator interfaces
// that produce and match them.
package features

import (
	"context"

	"github.com/golang/geo/r3"

	"go.viam.com/sam/pointcloud"
)

// Keypoint is a distinctive point detected in a point cloud, in the cloud's
// own frame.
type Keypoint struct {
	Point r3.Vector
	Scale float64
}

// Keypoints is an ordered set of keypoints. Order is significant: the i-th
// descriptor of a frame describes the i-th keypoint.
type Keypoints []Keypoint

// Descriptor is a real-valued feature descriptor, one histogram bin per
// element.
type Descriptor []float64

// Descriptors is an ordered set of descriptors, parallel to a Keypoints set.
type Descriptors []Descriptor

// Extractor detects keypoints in a cloud and computes their descriptors.
// Implementations live outside this module; frames without an extractor
// simply carry no features.
type Extractor interface {
	Extract(ctx context.Context, cloud pointcloud.PointCloud) (Keypoints, Descriptors, error)
}

// KeypointConfig holds the detection parameters handed to an Extractor.
type KeypointConfig struct {
	MinScale        float64 `json:"min_scale"`
	NumOctaves      int     `json:"num_octaves"`
	ScalesPerOctave int     `json:"scales_per_octave"`
	MinContrast     float64 `json:"min_contrast"`
}

// FeatureConfig holds the descriptor parameters handed to an Extractor.
type FeatureConfig struct {
	NormalRadius  float64 `json:"normal_radius"`
	FeatureRadius float64 `json:"feature_radius"`
}
