package pointcloud

import (
	"image/color"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// VoxelCoords stores voxel coordinates in voxel grid axes.
type VoxelCoords struct {
	I, J, K int64
}

// IsEqual tests if two VoxelCoords are the same.
func (c VoxelCoords) IsEqual(c2 VoxelCoords) bool {
	return c.I == c2.I && c.J == c2.J && c.K == c2.K
}

// GetVoxelCoordinates computes voxel coordinates in the grid anchored at
// ptMin with cubic voxels of the given size.
func GetVoxelCoordinates(pt, ptMin r3.Vector, voxelSize float64) VoxelCoords {
	ptVoxel := pt.Sub(ptMin)
	return VoxelCoords{
		I: int64(math.Floor(ptVoxel.X / voxelSize)),
		J: int64(math.Floor(ptVoxel.Y / voxelSize)),
		K: int64(math.Floor(ptVoxel.Z / voxelSize)),
	}
}

// voxelBucket accumulates the points binned into one voxel.
type voxelBucket struct {
	points  []PointAndData
	sum     r3.Vector
	rSum    float64
	gSum    float64
	bSum    float64
	colored int
}

func bucketCloud(cloud PointCloud, voxelSize float64) (map[VoxelCoords]*voxelBucket, []VoxelCoords) {
	meta := cloud.MetaData()
	ptMin := r3.Vector{X: meta.MinX, Y: meta.MinY, Z: meta.MinZ}

	buckets := map[VoxelCoords]*voxelBucket{}
	// key order follows first appearance so downsampled output is
	// deterministic for ordered storage
	order := []VoxelCoords{}
	cloud.Iterate(0, 0, func(p r3.Vector, d Data) bool {
		coords := GetVoxelCoordinates(p, ptMin, voxelSize)
		bucket, ok := buckets[coords]
		if !ok {
			bucket = &voxelBucket{}
			buckets[coords] = bucket
			order = append(order, coords)
		}
		bucket.points = append(bucket.points, PointAndData{P: p, D: d})
		bucket.sum = bucket.sum.Add(p)
		if d != nil && d.HasColor() {
			r, g, b := d.RGB255()
			bucket.rSum += float64(r)
			bucket.gSum += float64(g)
			bucket.bSum += float64(b)
			bucket.colored++
		}
		return true
	})
	return buckets, order
}

// VoxelDownsample bins the cloud into cubic voxels of the given size and
// replaces each occupied voxel with the centroid of its points. Colors are
// averaged over the colored points of the voxel.
func VoxelDownsample(cloud PointCloud, voxelSize float64) (PointCloud, error) {
	if voxelSize <= 0 {
		return nil, errors.Errorf("voxel size must be positive, got %f", voxelSize)
	}
	if cloud.Size() == 0 {
		return NewBasicEmpty(), nil
	}

	buckets, order := bucketCloud(cloud, voxelSize)
	out := NewBasicPointCloud(len(order))
	for _, coords := range order {
		bucket := buckets[coords]
		n := float64(len(bucket.points))
		centroid := bucket.sum.Mul(1 / n)
		var d Data
		if bucket.colored > 0 {
			nc := float64(bucket.colored)
			d = NewColoredData(color.NRGBA{
				R: uint8(bucket.rSum / nc),
				G: uint8(bucket.gSum / nc),
				B: uint8(bucket.bSum / nc),
				A: 255,
			})
		} else {
			d = NewBasicData()
		}
		if err := out.Set(centroid, d); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UniformDownsample bins the cloud into cubic voxels of the given size and
// keeps, for each occupied voxel, the original point nearest the voxel's
// centroid. Unlike VoxelDownsample no synthetic points are produced and the
// surviving points keep their payloads.
func UniformDownsample(cloud PointCloud, voxelSize float64) (PointCloud, error) {
	if voxelSize <= 0 {
		return nil, errors.Errorf("voxel size must be positive, got %f", voxelSize)
	}
	if cloud.Size() == 0 {
		return NewBasicEmpty(), nil
	}

	buckets, order := bucketCloud(cloud, voxelSize)
	out := NewBasicPointCloud(len(order))
	for _, coords := range order {
		bucket := buckets[coords]
		centroid := bucket.sum.Mul(1 / float64(len(bucket.points)))
		best := bucket.points[0]
		bestDist := best.P.Sub(centroid).Norm2()
		for _, pd := range bucket.points[1:] {
			if dist := pd.P.Sub(centroid).Norm2(); dist < bestDist {
				best, bestDist = pd, dist
			}
		}
		if err := out.Set(best.P, best.D); err != nil {
			return nil, err
		}
	}
	return out, nil
}
