package sam

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/sam/pointcloud"
	"go.viam.com/sam/spatialmath"
	"go.viam.com/sam/symbol"
)

// PushPointCloud runs a batch through the ingester and merges the result
// into the current pose's accumulated cloud. The first push stores the
// filtered cloud as is; later pushes concatenate with the stored cloud and
// re-downsample the union at twice the voxel leaf so repeated sweeps of the
// same spot do not pile up.
func (m *Mapper) PushPointCloud(ctx context.Context, batch PointBatch) error {
	current, ok := m.registry.CurrentPose()
	if !ok {
		return errors.New("no pose allocated")
	}
	cloud, err := m.ingester.Ingest(ctx, batch)
	if err != nil {
		return err
	}
	if !m.spatial.HasPointCloud(current) {
		return m.spatial.AddPointCloud(current, m.clock.Now(), cloud)
	}

	item, err := m.spatial.PointCloud(current)
	if err != nil {
		return err
	}
	union := pointcloud.NewBasicPointCloud(item.Cloud.Size() + cloud.Size())
	if err := pointcloud.ApplyOffset(item.Cloud, nil, union); err != nil {
		return err
	}
	if err := pointcloud.ApplyOffset(cloud, nil, union); err != nil {
		return err
	}
	if m.cfg.DownsampleSize > 0 {
		union, err = pointcloud.UniformDownsample(union, 2*m.cfg.DownsampleSize)
		if err != nil {
			return err
		}
	}
	return m.spatial.SetPointCloud(current, m.clock.Now(), union)
}

// PointCloud returns the cloud stored on a frame.
func (m *Mapper) PointCloud(id symbol.Symbol) (pointcloud.PointCloud, error) {
	item, err := m.spatial.PointCloud(id)
	if err != nil {
		return nil, err
	}
	return item.Cloud, nil
}

// CurrentPointCloud returns the cloud of the last finalized pose, in that
// pose's own frame. It is empty while fewer than two poses exist or when the
// frame carries no cloud.
func (m *Mapper) CurrentPointCloud(downsample bool) (pointcloud.PointCloud, error) {
	if m.registry.PoseCount() < 2 {
		return pointcloud.NewBasicEmpty(), nil
	}
	id := m.registry.PoseAt(m.registry.PoseCount() - 2)
	if !m.spatial.HasPointCloud(id) {
		return pointcloud.NewBasicEmpty(), nil
	}
	item, err := m.spatial.PointCloud(id)
	if err != nil {
		return nil, err
	}
	if downsample && m.cfg.DownsampleSize > 0 {
		return pointcloud.VoxelDownsample(item.Cloud, m.cfg.DownsampleSize)
	}
	return item.Cloud, nil
}

// MergedPointCloud transforms every frame's cloud by its stored pose
// estimate and merges them into one world-frame cloud. Frames without a
// cloud are skipped; a frame with a cloud but no pose estimate fails.
func (m *Mapper) MergedPointCloud(ctx context.Context, downsample bool) (pointcloud.PointCloud, error) {
	var funcs []pointcloud.CloudAndOffsetFunc
	for i := uint64(0); i < m.registry.PoseCount(); i++ {
		id := m.registry.PoseAt(i)
		if !m.spatial.HasPointCloud(id) {
			continue
		}
		cloudItem, err := m.spatial.PointCloud(id)
		if err != nil {
			return nil, err
		}
		poseItem, err := m.spatial.Pose(id)
		if err != nil {
			return nil, err
		}
		cloud, offset := cloudItem.Cloud, poseItem.Estimate.Pose
		funcs = append(funcs, func(ctx context.Context) (pointcloud.PointCloud, spatialmath.Pose, error) {
			return cloud, offset, nil
		})
	}
	merged := pointcloud.NewBasicEmpty()
	if err := pointcloud.MergePointClouds(ctx, funcs, merged); err != nil {
		return nil, err
	}
	if downsample && m.cfg.DownsampleSize > 0 {
		return pointcloud.VoxelDownsample(merged, m.cfg.DownsampleSize)
	}
	return merged, nil
}
