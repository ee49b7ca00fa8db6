package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a 6dof pose, position and orientation, of an object or a
// frame of reference.
//
// Definitions of "forward", "left", "up", etc. are relative to the frame the
// pose is expressed in.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

// NewZeroPose returns a pose at (0,0,0) with the same orientation as whatever
// frame it is placed in.
func NewZeroPose() Pose {
	return newDualQuaternion()
}

// NewPose takes in a position and orientation and returns a Pose.
func NewPose(p r3.Vector, o Orientation) Pose {
	if o == nil {
		return NewPoseFromPoint(p)
	}
	return newDualQuaternionFromPose(p, o)
}

// NewPoseFromPoint takes in a cartesian (x,y,z) and stores it as a vector. It
// will have the same orientation as the frame it is in reference to.
func NewPoseFromPoint(point r3.Vector) Pose {
	q := newDualQuaternion()
	q.SetTranslation(point)
	return q
}

// NewPoseFromOrientation takes in an orientation and returns a Pose at the
// origin with that orientation.
func NewPoseFromOrientation(o Orientation) Pose {
	if o == nil {
		return NewZeroPose()
	}
	return newDualQuaternionFromPose(r3.Vector{}, o)
}

// Compose treats Poses as functions A(x) and B(x), and produces a new function
// C(x) = A(B(x)). It converts the poses to dual quaternions and multiplies
// them together, normalizing the result.
func Compose(a, b Pose) Pose {
	aq := dualQuaternionFromPose(a)
	bq := dualQuaternionFromPose(b)
	return &dualQuaternion{aq.transformation(bq.Number)}
}

// PoseInverse returns the inverse of the given pose: composing a pose with its
// inverse yields the zero pose.
func PoseInverse(p Pose) Pose {
	rInv := quat.Conj(p.Orientation().Quaternion())
	t := p.Point()
	tInv := quatRotate(rInv, r3.Vector{X: -t.X, Y: -t.Y, Z: -t.Z})
	return newDualQuaternionFromPose(tInv, NewOrientationFromQuaternion(rInv))
}

// PoseBetween returns the difference between two poses: the pose that, composed
// with a, yields b.
func PoseBetween(a, b Pose) Pose {
	return Compose(PoseInverse(a), b)
}

// TransformPoint applies a pose to a point: rotating it and then offsetting by
// the pose's translation.
func TransformPoint(p Pose, pt r3.Vector) r3.Vector {
	return quatRotate(p.Orientation().Quaternion(), pt).Add(p.Point())
}

// PoseAlmostEqual checks if two poses are approximately the same, within the
// given absolute tolerance on position coordinates and the standard orientation
// tolerance.
func PoseAlmostEqual(a, b Pose, tol float64) bool {
	ap, bp := a.Point(), b.Point()
	return floats.EqualWithinAbs(ap.X, bp.X, tol) &&
		floats.EqualWithinAbs(ap.Y, bp.Y, tol) &&
		floats.EqualWithinAbs(ap.Z, bp.Z, tol) &&
		OrientationAlmostEqual(a.Orientation(), b.Orientation())
}

// dualQuaternionFromPose returns the pose as a dual quaternion, converting
// other implementations of Pose as needed.
func dualQuaternionFromPose(p Pose) *dualQuaternion {
	if q, ok := p.(*dualQuaternion); ok {
		return q
	}
	return newDualQuaternionFromPose(p.Point(), p.Orientation())
}
