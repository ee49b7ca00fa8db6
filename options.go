package sam

import (
	"github.com/benbjohnson/clock"

	"go.viam.com/sam/features"
	"go.viam.com/sam/loopclose"
	"go.viam.com/sam/solver"
)

// An Option overrides one of the mapper's collaborators.
type Option func(*Mapper)

// WithSolver replaces the default chain solver.
func WithSolver(s solver.Solver) Option {
	return func(m *Mapper) { m.solver = s }
}

// WithExtractor sets the keypoint extractor. Without one, frames carry no
// features and landmark detection never fires.
func WithExtractor(e features.Extractor) Option {
	return func(m *Mapper) { m.extractor = e }
}

// WithMatcher replaces the default brute-force descriptor matcher.
func WithMatcher(matcher features.Matcher) Option {
	return func(m *Mapper) { m.matcher = matcher }
}

// WithIngester replaces the default point cloud filter chain.
func WithIngester(ing CloudIngester) Option {
	return func(m *Mapper) { m.ingester = ing }
}

// WithCandidatePolicy forces extra loop closure candidates past the
// containment test.
func WithCandidatePolicy(policy loopclose.CandidatePolicy) Option {
	return func(m *Mapper) { m.policy = policy }
}

// WithClock sets the clock used to stamp inserts that arrive without a
// timestamp.
func WithClock(c clock.Clock) Option {
	return func(m *Mapper) { m.clock = c }
}
