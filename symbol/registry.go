package symbol

import "github.com/pkg/errors"

// A Registry hands out pose and landmark indices 0,1,2,... with no gaps.
// Indices are never reused. The zero value is unusable, construct with
// NewRegistry.
type Registry struct {
	poseKind     byte
	landmarkKind byte
	poses        uint64
	landmarks    uint64
}

// NewRegistry returns a registry allocating symbols with the two given kind
// tags. The tags must be distinct and must not collide with the invalid
// sentinel's kind.
func NewRegistry(poseKind, landmarkKind byte) (*Registry, error) {
	if poseKind == 0 || landmarkKind == 0 {
		return nil, errors.New("kind tags must be non-zero characters")
	}
	if poseKind == landmarkKind {
		return nil, errors.Errorf("pose and landmark kinds must differ, both are %q", poseKind)
	}
	if poseKind == invalidKind || landmarkKind == invalidKind {
		return nil, errors.Errorf("kind %q is reserved for the invalid symbol", byte(invalidKind))
	}
	return &Registry{poseKind: poseKind, landmarkKind: landmarkKind}, nil
}

// NextPose allocates and returns the next pose symbol.
func (r *Registry) NextPose() Symbol {
	s := New(r.poseKind, r.poses)
	r.poses++
	return s
}

// NextLandmark allocates and returns the next landmark symbol.
func (r *Registry) NextLandmark() Symbol {
	s := New(r.landmarkKind, r.landmarks)
	r.landmarks++
	return s
}

// CurrentPose returns the most recently allocated pose symbol. The second
// return is false when no pose has been allocated yet.
func (r *Registry) CurrentPose() (Symbol, bool) {
	if r.poses == 0 {
		return Invalid(), false
	}
	return New(r.poseKind, r.poses-1), true
}

// CurrentLandmark returns the most recently allocated landmark symbol. The
// second return is false when no landmark has been allocated yet.
func (r *Registry) CurrentLandmark() (Symbol, bool) {
	if r.landmarks == 0 {
		return Invalid(), false
	}
	return New(r.landmarkKind, r.landmarks-1), true
}

// PoseCount returns how many pose symbols have been allocated.
func (r *Registry) PoseCount() uint64 {
	return r.poses
}

// LandmarkCount returns how many landmark symbols have been allocated.
func (r *Registry) LandmarkCount() uint64 {
	return r.landmarks
}

// PoseAt builds the pose symbol with the given index without allocating.
func (r *Registry) PoseAt(index uint64) Symbol {
	return New(r.poseKind, index)
}

// LandmarkAt builds the landmark symbol with the given index without
// allocating.
func (r *Registry) LandmarkAt(index uint64) Symbol {
	return New(r.landmarkKind, index)
}

// PoseKind returns the kind tag used for pose symbols.
func (r *Registry) PoseKind() byte {
	return r.poseKind
}

// LandmarkKind returns the kind tag used for landmark symbols.
func (r *Registry) LandmarkKind() byte {
	return r.landmarkKind
}
