package solver

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/sam/spatialmath"
	"go.viam.com/sam/symbol"
)

func TestValues(t *testing.T) {
	vals := NewValues()
	x0 := symbol.New('x', 0)
	l0 := symbol.New('l', 0)

	test.That(t, vals.Len(), test.ShouldEqual, 0)
	test.That(t, vals.Has(x0), test.ShouldBeFalse)
	_, ok := vals.Pose(x0)
	test.That(t, ok, test.ShouldBeFalse)

	vals.SetPose(x0, spatialmath.NewPoseFromPoint(r3.Vector{X: 1}))
	vals.SetPoint(l0, r3.Vector{Y: 2})
	test.That(t, vals.Len(), test.ShouldEqual, 2)
	test.That(t, vals.Has(x0), test.ShouldBeTrue)
	test.That(t, vals.Has(l0), test.ShouldBeTrue)

	pose, ok := vals.Pose(x0)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, pose.Point(), test.ShouldResemble, r3.Vector{X: 1})
	pt, ok := vals.Point(l0)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, pt, test.ShouldResemble, r3.Vector{Y: 2})

	test.That(t, vals.Symbols(), test.ShouldResemble, []symbol.Symbol{l0, x0})

	// a symbol holds one kind of estimate at a time
	vals.SetPoint(x0, r3.Vector{Z: 3})
	_, ok = vals.Pose(x0)
	test.That(t, ok, test.ShouldBeFalse)
	pt, ok = vals.Point(x0)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, pt, test.ShouldResemble, r3.Vector{Z: 3})
	test.That(t, vals.Len(), test.ShouldEqual, 2)
}
