package inject

import (
	"context"

	"go.viam.com/sam"
	"go.viam.com/sam/pointcloud"
)

// Ingester is an injected point cloud ingester.
type Ingester struct {
	sam.CloudIngester
	IngestFunc func(ctx context.Context, batch sam.PointBatch) (pointcloud.PointCloud, error)
}

// Ingest calls the injected Ingest or the real version.
func (i *Ingester) Ingest(ctx context.Context, batch sam.PointBatch) (pointcloud.PointCloud, error) {
	if i.IngestFunc == nil {
		return i.CloudIngester.Ingest(ctx, batch)
	}
	return i.IngestFunc(ctx, batch)
}
