package pointcloud

import (
	"sort"

	"github.com/golang/geo/r3"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// StatisticalOutlierRemoval removes points whose mean distance to their meanK
// nearest neighbors exceeds the global mean of those distances by more than
// stddevMul standard deviations. Neighbor search is brute force.
func StatisticalOutlierRemoval(cloud PointCloud, meanK int, stddevMul float64) (PointCloud, error) {
	if meanK < 1 {
		return nil, errors.Errorf("need at least one neighbor, got meanK %d", meanK)
	}
	if cloud.Size() <= meanK {
		// every point would be its own neighborhood, nothing to cut
		out := NewBasicPointCloud(cloud.Size())
		err := copyCloud(cloud, out)
		return out, err
	}

	pts := flattenCloud(cloud)
	meanDists := make([]float64, len(pts))
	dists := make([]float64, 0, len(pts)-1)
	for i, pd := range pts {
		dists = dists[:0]
		for j, other := range pts {
			if i == j {
				continue
			}
			dists = append(dists, pd.P.Sub(other.P).Norm())
		}
		sort.Float64s(dists)
		sum := 0.0
		for _, d := range dists[:meanK] {
			sum += d
		}
		meanDists[i] = sum / float64(meanK)
	}

	mean, err := stats.Mean(meanDists)
	if err != nil {
		return nil, err
	}
	stddev, err := stats.StandardDeviation(meanDists)
	if err != nil {
		return nil, err
	}
	threshold := mean + stddevMul*stddev

	out := NewBasicPointCloud(len(pts))
	for i, pd := range pts {
		if meanDists[i] > threshold {
			continue
		}
		if err := out.Set(pd.P, pd.D); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RadiusOutlierRemoval removes points with fewer than minNeighbors other
// points within the given radius. Neighbor search is brute force.
func RadiusOutlierRemoval(cloud PointCloud, radius float64, minNeighbors int) (PointCloud, error) {
	if radius <= 0 {
		return nil, errors.Errorf("radius must be positive, got %f", radius)
	}

	pts := flattenCloud(cloud)
	radiusSq := radius * radius
	out := NewBasicPointCloud(len(pts))
	for i, pd := range pts {
		neighbors := 0
		for j, other := range pts {
			if i == j {
				continue
			}
			if pd.P.Sub(other.P).Norm2() <= radiusSq {
				neighbors++
				if neighbors >= minNeighbors {
					break
				}
			}
		}
		if neighbors < minNeighbors {
			continue
		}
		if err := out.Set(pd.P, pd.D); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RemoveColorless returns a cloud holding only the points that carry color.
func RemoveColorless(cloud PointCloud) (PointCloud, error) {
	out := NewBasicPointCloud(cloud.Size())
	var err error
	cloud.Iterate(0, 0, func(p r3.Vector, d Data) bool {
		if d == nil || !d.HasColor() {
			return true
		}
		err = out.Set(p, d)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func flattenCloud(cloud PointCloud) []PointAndData {
	pts := make([]PointAndData, 0, cloud.Size())
	cloud.Iterate(0, 0, func(p r3.Vector, d Data) bool {
		pts = append(pts, PointAndData{P: p, D: d})
		return true
	})
	return pts
}

func copyCloud(src, dst PointCloud) error {
	var err error
	src.Iterate(0, 0, func(p r3.Vector, d Data) bool {
		err = dst.Set(p, d)
		return err == nil
	})
	return err
}
