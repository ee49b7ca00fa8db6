package inject

import (
	"context"

	"go.viam.com/sam/features"
	"go.viam.com/sam/pointcloud"
)

// Extractor is an injected feature extractor.
type Extractor struct {
	features.Extractor
	ExtractFunc func(ctx context.Context, cloud pointcloud.PointCloud) (features.Keypoints, features.Descriptors, error)
}

// Extract calls the injected Extract or the real version.
func (e *Extractor) Extract(ctx context.Context, cloud pointcloud.PointCloud) (features.Keypoints, features.Descriptors, error) {
	if e.ExtractFunc == nil {
		return e.Extractor.Extract(ctx, cloud)
	}
	return e.ExtractFunc(ctx, cloud)
}
