package features

import (
	"github.com/pkg/errors"
)

// Matcher finds, for every source descriptor, its nearest neighbor in a
// target set.
type Matcher interface {
	// NearestNeighbors returns, per source descriptor, the index of its
	// nearest target descriptor and the squared distance to it.
	NearestNeighbors(source, target Descriptors) (indices []int, squaredDists []float64, err error)
}

type bruteForceMatcher struct{}

// NewBruteForceMatcher returns a Matcher that computes the full distance
// matrix and takes the argmin per source row. Exact, no indexing structures.
func NewBruteForceMatcher() Matcher {
	return &bruteForceMatcher{}
}

func (m *bruteForceMatcher) NearestNeighbors(source, target Descriptors) ([]int, []float64, error) {
	if len(source) == 0 || len(target) == 0 {
		return nil, nil, errors.New("descriptor sets must be non-empty")
	}
	dim := len(source[0])
	if dim == 0 {
		return nil, nil, errors.New("descriptors must have at least one dimension")
	}
	for i, d := range source {
		if len(d) != dim {
			return nil, nil, errors.Errorf("source descriptor %d has dimension %d, want %d", i, len(d), dim)
		}
	}
	for i, d := range target {
		if len(d) != dim {
			return nil, nil, errors.Errorf("target descriptor %d has dimension %d, want %d", i, len(d), dim)
		}
	}

	indices := make([]int, len(source))
	squaredDists := make([]float64, len(source))
	for i, src := range source {
		bestIdx := 0
		bestDist := squaredDistance(src, target[0])
		for j := 1; j < len(target); j++ {
			if dist := squaredDistance(src, target[j]); dist < bestDist {
				bestIdx, bestDist = j, dist
			}
		}
		indices[i] = bestIdx
		squaredDists[i] = bestDist
	}
	return indices, squaredDists, nil
}

func squaredDistance(a, b Descriptor) float64 {
	sum := 0.0
	for k := range a {
		diff := a[k] - b[k]
		sum += diff * diff
	}
	return sum
}
