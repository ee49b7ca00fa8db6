package spatialmath

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestEmptyAxisAlignedBox(t *testing.T) {
	box := NewEmptyAxisAlignedBox()
	test.That(t, box.IsEmpty(), test.ShouldBeTrue)
	test.That(t, box.Contains(r3.Vector{}), test.ShouldBeFalse)

	box = box.Extend(r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, box.IsEmpty(), test.ShouldBeFalse)
	test.That(t, box.Min(), test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, box.Max(), test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, box.Contains(r3.Vector{X: 1, Y: 2, Z: 3}), test.ShouldBeTrue)
}

func TestAxisAlignedBoxContains(t *testing.T) {
	box := NewAxisAlignedBox(r3.Vector{X: 2, Y: 3, Z: 4}, r3.Vector{X: -1, Y: -1, Z: -1})
	test.That(t, box.Min(), test.ShouldResemble, r3.Vector{X: -1, Y: -1, Z: -1})
	test.That(t, box.Max(), test.ShouldResemble, r3.Vector{X: 2, Y: 3, Z: 4})

	for _, tc := range []struct {
		name string
		pt   r3.Vector
		want bool
	}{
		{"interior", r3.Vector{X: 0, Y: 0, Z: 0}, true},
		{"min corner", r3.Vector{X: -1, Y: -1, Z: -1}, true},
		{"max corner", r3.Vector{X: 2, Y: 3, Z: 4}, true},
		{"face", r3.Vector{X: 2, Y: 0, Z: 0}, true},
		{"outside x", r3.Vector{X: 2.01, Y: 0, Z: 0}, false},
		{"outside y", r3.Vector{X: 0, Y: -1.5, Z: 0}, false},
		{"outside z", r3.Vector{X: 0, Y: 0, Z: 5}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			test.That(t, box.Contains(tc.pt), test.ShouldEqual, tc.want)
		})
	}
}

func TestAxisAlignedBoxCenter(t *testing.T) {
	box := NewAxisAlignedBox(r3.Vector{X: -2, Y: 0, Z: 2}, r3.Vector{X: 4, Y: 2, Z: 6})
	test.That(t, box.Center(), test.ShouldResemble, r3.Vector{X: 1, Y: 1, Z: 4})

	box = box.Extend(r3.Vector{X: 10, Y: 2, Z: 6})
	test.That(t, box.Center(), test.ShouldResemble, r3.Vector{X: 4, Y: 1, Z: 4})
	test.That(t, box.String(), test.ShouldContainSubstring, "min")
}
