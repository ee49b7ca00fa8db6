package sam

import (
	"context"
	"time"

	"go.viam.com/sam/symbol"
)

// FinalizeFrame closes out the previous pose's frame once the next pose
// exists: it computes the frame's search bounding box and, when the frame
// has a cloud, extracts features and advances the candidate handoff. The
// candidates found now are searched one round later, so landmark detection
// for a frame runs once two more poses exist. With fewer than two poses it
// is a no-op returning the invalid symbol.
func (m *Mapper) FinalizeFrame(ctx context.Context) (symbol.Symbol, error) {
	count := m.registry.PoseCount()
	if count < 2 {
		return symbol.Invalid(), nil
	}
	finalized := m.registry.PoseAt(count - 2)
	next := m.registry.PoseAt(count - 1)

	if err := m.search.ComputeBoundingBox(finalized, next); err != nil {
		return symbol.Invalid(), err
	}
	if !m.spatial.HasPointCloud(finalized) {
		return finalized, nil
	}
	if m.extractor != nil {
		if err := m.extractFeatures(ctx, finalized); err != nil {
			return symbol.Invalid(), err
		}
	}

	// hand over last round's candidates, then compute this round's
	m.searchFrame, m.searchCandidates = m.nextFrame, m.nextCandidates
	candidates, err := m.search.ContainsFrames(finalized)
	if err != nil {
		return symbol.Invalid(), err
	}
	m.nextFrame, m.nextCandidates = finalized, candidates
	return finalized, nil
}

func (m *Mapper) extractFeatures(ctx context.Context, id symbol.Symbol) error {
	item, err := m.spatial.PointCloud(id)
	if err != nil {
		return err
	}
	keypoints, descriptors, err := m.extractor.Extract(ctx, item.Cloud)
	if err != nil {
		return err
	}
	if len(keypoints) == 0 {
		m.logger.Debugf("no keypoints in frame %s", id)
		return nil
	}
	now := m.clock.Now()
	if err := m.spatial.AddKeypoints(id, now, keypoints); err != nil {
		return err
	}
	return m.spatial.AddDescriptors(id, now, descriptors)
}

// DetectLandmarks runs descriptor association over the staged search pair.
// When at least one landmark is accepted, or more poses than
// MaxPosesBetweenSolves accumulated unsolved, the whole graph is
// re-optimized once.
func (m *Mapper) DetectLandmarks(ctx context.Context, at time.Time) error {
	if at.IsZero() {
		at = m.clock.Now()
	}
	accepted := 0
	if m.searchFrame.IsValid() && len(m.searchCandidates) > 0 {
		n, err := m.assoc.DetectLandmarks(at, m.searchFrame, m.searchCandidates)
		if err != nil {
			return err
		}
		accepted = n
	}
	overdue := m.cfg.MaxPosesBetweenSolves > 0 && m.posesSinceSolve > m.cfg.MaxPosesBetweenSolves
	if accepted == 0 && !overdue {
		return nil
	}
	return m.Optimize(ctx)
}

// PendingSearch returns the staged pair the next DetectLandmarks call will
// process: the frame to search landmarks for and its candidate frames.
func (m *Mapper) PendingSearch() (symbol.Symbol, []symbol.Symbol) {
	candidates := make([]symbol.Symbol, len(m.searchCandidates))
	copy(candidates, m.searchCandidates)
	return m.searchFrame, candidates
}
