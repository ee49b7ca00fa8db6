package solver

import (
	"github.com/golang/geo/r3"

	"go.viam.com/sam/spatialmath"
	"go.viam.com/sam/symbol"
)

// Values maps graph variables to their estimates. A symbol holds either a pose
// or a point; setting one kind replaces the other.
type Values struct {
	poses  map[symbol.Symbol]spatialmath.Pose
	points map[symbol.Symbol]r3.Vector
}

// NewValues returns an empty estimate map.
func NewValues() *Values {
	return &Values{
		poses:  map[symbol.Symbol]spatialmath.Pose{},
		points: map[symbol.Symbol]r3.Vector{},
	}
}

// SetPose stores a pose estimate for the symbol.
func (v *Values) SetPose(id symbol.Symbol, pose spatialmath.Pose) {
	delete(v.points, id)
	v.poses[id] = pose
}

// Pose returns the pose estimate for the symbol, if one is stored.
func (v *Values) Pose(id symbol.Symbol) (spatialmath.Pose, bool) {
	pose, ok := v.poses[id]
	return pose, ok
}

// SetPoint stores a point estimate for the symbol.
func (v *Values) SetPoint(id symbol.Symbol, pt r3.Vector) {
	delete(v.poses, id)
	v.points[id] = pt
}

// Point returns the point estimate for the symbol, if one is stored.
func (v *Values) Point(id symbol.Symbol) (r3.Vector, bool) {
	pt, ok := v.points[id]
	return pt, ok
}

// Has reports whether any estimate is stored for the symbol.
func (v *Values) Has(id symbol.Symbol) bool {
	if _, ok := v.poses[id]; ok {
		return true
	}
	_, ok := v.points[id]
	return ok
}

// Len returns the number of stored estimates.
func (v *Values) Len() int {
	return len(v.poses) + len(v.points)
}

// Symbols returns every estimated symbol in symbol order.
func (v *Values) Symbols() []symbol.Symbol {
	syms := make([]symbol.Symbol, 0, v.Len())
	for id := range v.poses {
		syms = append(syms, id)
	}
	for id := range v.points {
		syms = append(syms, id)
	}
	symbol.Sort(syms)
	return syms
}
