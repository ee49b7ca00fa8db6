package pointcloud

import (
	"context"

	"github.com/golang/geo/r3"

	"go.viam.com/sam/spatialmath"
)

// CloudAndOffsetFunc is a function that returns a PointCloud with a pose that
// represents an offset to be applied to every point.
type CloudAndOffsetFunc func(ctx context.Context) (PointCloud, spatialmath.Pose, error)

// ApplyOffset takes a point cloud and applies an offset pose to each of its
// points, storing the result in targetpc. A nil offset copies the points
// unchanged.
func ApplyOffset(srcpc PointCloud, offset spatialmath.Pose, targetpc PointCloud) error {
	if offset == nil {
		return copyCloud(srcpc, targetpc)
	}
	var err error
	srcpc.Iterate(0, 0, func(p r3.Vector, d Data) bool {
		err = targetpc.Set(spatialmath.TransformPoint(offset, p), d)
		return err == nil
	})
	return err
}

// MergePointClouds merges the clouds produced by the given functions into
// out, transforming each by its offset. Duplicate positions collapse to the
// last write.
func MergePointClouds(ctx context.Context, cloudFuncs []CloudAndOffsetFunc, out PointCloud) error {
	for _, cloudFunc := range cloudFuncs {
		if err := ctx.Err(); err != nil {
			return err
		}
		cloud, offset, err := cloudFunc(ctx)
		if err != nil {
			return err
		}
		if err := ApplyOffset(cloud, offset, out); err != nil {
			return err
		}
	}
	return nil
}

// CalculateMeanOfPointCloud returns the spatial average center of a given
// point cloud.
func CalculateMeanOfPointCloud(cloud PointCloud) r3.Vector {
	if cloud.Size() == 0 {
		return r3.Vector{}
	}
	var x, y, z float64
	cloud.Iterate(0, 0, func(p r3.Vector, d Data) bool {
		x += p.X
		y += p.Y
		z += p.Z
		return true
	})
	n := float64(cloud.Size())
	return r3.Vector{X: x / n, Y: y / n, Z: z / n}
}

// PrunePointClouds removes point clouds from the slice that have fewer points
// than nMinPoints.
func PrunePointClouds(clouds []PointCloud, nMinPoints int) []PointCloud {
	pruned := make([]PointCloud, 0, len(clouds))
	for _, cloud := range clouds {
		if cloud.Size() >= nMinPoints {
			pruned = append(pruned, cloud)
		}
	}
	return pruned
}
