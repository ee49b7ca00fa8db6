package posegraph

import "github.com/pkg/errors"

// ErrDimensionMismatch is returned when a noise model's dimension does not
// match the factor it is attached to.
var ErrDimensionMismatch = errors.New("noise dimension mismatch")

// NewDimensionMismatchError returns an error for a noise model of the wrong
// dimension.
func NewDimensionMismatchError(want, got int) error {
	return errors.Wrapf(ErrDimensionMismatch, "want dim %d, got %d", want, got)
}
