package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// AxisAlignedBox is an axis aligned bounding box in world coordinates. The
// zero-extent empty box contains nothing.
type AxisAlignedBox struct {
	min r3.Vector
	max r3.Vector
}

// NewEmptyAxisAlignedBox returns a box that contains no points. Extending it
// with any point yields a degenerate box at that point.
func NewEmptyAxisAlignedBox() AxisAlignedBox {
	return AxisAlignedBox{
		min: r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		max: r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
}

// NewAxisAlignedBox returns the box spanning the two corner points. The
// corners may be given in any order.
func NewAxisAlignedBox(a, b r3.Vector) AxisAlignedBox {
	box := NewEmptyAxisAlignedBox()
	box = box.Extend(a)
	return box.Extend(b)
}

// IsEmpty reports whether the box contains no points.
func (b AxisAlignedBox) IsEmpty() bool {
	return b.min.X > b.max.X || b.min.Y > b.max.Y || b.min.Z > b.max.Z
}

// Extend grows the box to include the given point.
func (b AxisAlignedBox) Extend(pt r3.Vector) AxisAlignedBox {
	return AxisAlignedBox{
		min: r3.Vector{X: math.Min(b.min.X, pt.X), Y: math.Min(b.min.Y, pt.Y), Z: math.Min(b.min.Z, pt.Z)},
		max: r3.Vector{X: math.Max(b.max.X, pt.X), Y: math.Max(b.max.Y, pt.Y), Z: math.Max(b.max.Z, pt.Z)},
	}
}

// Contains reports whether the point lies inside the box, boundary included.
// An empty box contains nothing.
func (b AxisAlignedBox) Contains(pt r3.Vector) bool {
	if b.IsEmpty() {
		return false
	}
	return pt.X >= b.min.X && pt.X <= b.max.X &&
		pt.Y >= b.min.Y && pt.Y <= b.max.Y &&
		pt.Z >= b.min.Z && pt.Z <= b.max.Z
}

// Center returns the midpoint of the box. The center of an empty box is not
// meaningful.
func (b AxisAlignedBox) Center() r3.Vector {
	return b.min.Add(b.max).Mul(0.5)
}

// Min returns the minimum corner.
func (b AxisAlignedBox) Min() r3.Vector {
	return b.min
}

// Max returns the maximum corner.
func (b AxisAlignedBox) Max() r3.Vector {
	return b.max
}

func (b AxisAlignedBox) String() string {
	if b.IsEmpty() {
		return "aabb(empty)"
	}
	return fmt.Sprintf("aabb(min %v, max %v)", b.min, b.max)
}
