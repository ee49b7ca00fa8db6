package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"
)

// dualQuaternion defines a pose that is implemented as a dual quaternion: the
// real part carries the rotation, the dual part encodes the translation.
type dualQuaternion struct {
	dualquat.Number
}

// newDualQuaternion returns a pointer to a new dualQuaternion whose rotation
// is an identity and whose translation is zero.
func newDualQuaternion() *dualQuaternion {
	return &dualQuaternion{dualquat.Number{
		Real: quat.Number{Real: 1},
		Dual: quat.Number{},
	}}
}

// newDualQuaternionFromPose returns a dual quaternion with the same rotation
// and translation as the given pose parts.
func newDualQuaternionFromPose(pt r3.Vector, o Orientation) *dualQuaternion {
	q := newDualQuaternion()
	q.Real = o.Quaternion()
	q.SetTranslation(pt)
	return q
}

// SetTranslation correctly sets the translation of the transform, keeping its
// current rotation.
func (q *dualQuaternion) SetTranslation(pt r3.Vector) {
	q.Dual = quat.Scale(0.5, quat.Mul(quat.Number{Imag: pt.X, Jmag: pt.Y, Kmag: pt.Z}, q.Real))
}

// Translation returns the translation of the transform.
func (q *dualQuaternion) Translation() r3.Vector {
	t := quat.Scale(2, quat.Mul(q.Dual, quat.Conj(q.Real)))
	return r3.Vector{X: t.Imag, Y: t.Jmag, Z: t.Kmag}
}

// Point returns the transform's translation as a Pose method.
func (q *dualQuaternion) Point() r3.Vector {
	return q.Translation()
}

// Orientation returns the rotation of the transform.
func (q *dualQuaternion) Orientation() Orientation {
	o := quaternion(q.Real)
	return &o
}

// transformation multiplies by another dual quaternion, renormalizing the real
// part to guard against accumulated floating point drift.
func (q *dualQuaternion) transformation(by dualquat.Number) dualquat.Number {
	if vecLen := quat.Abs(by.Real); math.Abs(vecLen-1) > 1e-10 {
		by.Real = quat.Scale(1/vecLen, by.Real)
	}
	return dualquat.Mul(q.Number, by)
}
