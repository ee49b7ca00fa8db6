package spatialgraph

import (
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/sam/features"
	"go.viam.com/sam/pointcloud"
	"go.viam.com/sam/spatialmath"
)

// PoseItem is a pose estimate attached to a frame.
type PoseItem struct {
	ID       uuid.UUID
	At       time.Time
	Estimate spatialmath.PoseWithCovariance
}

// CloudItem is a point cloud attached to a frame, in the frame's local
// coordinates.
type CloudItem struct {
	ID    uuid.UUID
	At    time.Time
	Cloud pointcloud.PointCloud
}

// KeypointItem is a set of keypoints attached to a frame.
type KeypointItem struct {
	ID        uuid.UUID
	At        time.Time
	Keypoints features.Keypoints
}

// DescriptorItem is a set of descriptors attached to a frame, parallel to the
// frame's keypoints.
type DescriptorItem struct {
	ID          uuid.UUID
	At          time.Time
	Descriptors features.Descriptors
}

// Transform is a directed relative transform between two frames.
type Transform struct {
	At         time.Time
	Pose       spatialmath.Pose
	Covariance *mat.Dense
}
