package inject

import "go.viam.com/sam/features"

// Matcher is an injected descriptor matcher.
type Matcher struct {
	features.Matcher
	NearestNeighborsFunc func(source, target features.Descriptors) ([]int, []float64, error)
}

// NearestNeighbors calls the injected NearestNeighbors or the real version.
func (m *Matcher) NearestNeighbors(source, target features.Descriptors) ([]int, []float64, error) {
	if m.NearestNeighborsFunc == nil {
		return m.Matcher.NearestNeighbors(source, target)
	}
	return m.NearestNeighborsFunc(source, target)
}
