package posegraph

import (
	"fmt"

	"github.com/golang/geo/r3"

	"go.viam.com/sam/spatialmath"
	"go.viam.com/sam/symbol"
)

// Measurement dimensions per factor type.
const (
	poseDim         = 6
	bearingRangeDim = 2
	landmarkDim     = 3
)

// A Factor constrains one or two graph variables by a measurement.
type Factor interface {
	// Keys returns the symbols of the constrained variables.
	Keys() []symbol.Symbol
	// Noise returns the measurement noise model.
	Noise() Noise
	// Dim returns the measurement dimension.
	Dim() int

	fmt.Stringer
}

// PriorFactor anchors a single pose variable to an absolute pose.
type PriorFactor struct {
	Key  symbol.Symbol
	Pose spatialmath.Pose

	noise Noise
}

// Keys returns the anchored symbol.
func (f *PriorFactor) Keys() []symbol.Symbol { return []symbol.Symbol{f.Key} }

// Noise returns the measurement noise model.
func (f *PriorFactor) Noise() Noise { return f.noise }

// Dim returns the measurement dimension.
func (f *PriorFactor) Dim() int { return poseDim }

func (f *PriorFactor) String() string {
	return fmt.Sprintf("prior(%s) dim=%d", f.Key, f.Dim())
}

// BetweenFactor constrains the relative pose between two pose variables.
type BetweenFactor struct {
	From  symbol.Symbol
	To    symbol.Symbol
	Delta spatialmath.Pose

	noise Noise
}

// Keys returns the two pose symbols.
func (f *BetweenFactor) Keys() []symbol.Symbol { return []symbol.Symbol{f.From, f.To} }

// Noise returns the measurement noise model.
func (f *BetweenFactor) Noise() Noise { return f.noise }

// Dim returns the measurement dimension.
func (f *BetweenFactor) Dim() int { return poseDim }

func (f *BetweenFactor) String() string {
	return fmt.Sprintf("between(%s -> %s) dim=%d", f.From, f.To, f.Dim())
}

// BearingRangeFactor constrains a landmark by a planar bearing and range
// observed from a pose. Noise order is bearing then range.
type BearingRangeFactor struct {
	Pose     symbol.Symbol
	Landmark symbol.Symbol
	Bearing  float64
	Range    float64

	noise Noise
}

// Keys returns the pose and landmark symbols.
func (f *BearingRangeFactor) Keys() []symbol.Symbol { return []symbol.Symbol{f.Pose, f.Landmark} }

// Noise returns the measurement noise model.
func (f *BearingRangeFactor) Noise() Noise { return f.noise }

// Dim returns the measurement dimension.
func (f *BearingRangeFactor) Dim() int { return bearingRangeDim }

func (f *BearingRangeFactor) String() string {
	return fmt.Sprintf("bearing_range(%s, %s) dim=%d", f.Pose, f.Landmark, f.Dim())
}

// LandmarkFactor constrains a landmark by its position observed in a pose's
// local frame.
type LandmarkFactor struct {
	Pose     symbol.Symbol
	Landmark symbol.Symbol
	Offset   r3.Vector

	noise Noise
}

// Keys returns the pose and landmark symbols.
func (f *LandmarkFactor) Keys() []symbol.Symbol { return []symbol.Symbol{f.Pose, f.Landmark} }

// Noise returns the measurement noise model.
func (f *LandmarkFactor) Noise() Noise { return f.noise }

// Dim returns the measurement dimension.
func (f *LandmarkFactor) Dim() int { return landmarkDim }

func (f *LandmarkFactor) String() string {
	return fmt.Sprintf("landmark(%s, %s) dim=%d", f.Pose, f.Landmark, f.Dim())
}
