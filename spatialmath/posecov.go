package spatialmath

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// CovarianceDim is the dimension of a pose covariance: three translation then
// three orientation degrees of freedom.
const CovarianceDim = 6

// PoseWithCovariance pairs a pose estimate with its 6x6 covariance. The
// translation block occupies rows and columns 0-2, the orientation block 3-5.
type PoseWithCovariance struct {
	Pose       Pose
	Covariance *mat.Dense
}

// NewPoseWithCovariance returns the pair after validating the covariance
// shape. A nil covariance is replaced with a zero matrix.
func NewPoseWithCovariance(p Pose, cov *mat.Dense) (PoseWithCovariance, error) {
	if cov == nil {
		cov = mat.NewDense(CovarianceDim, CovarianceDim, nil)
	}
	if r, c := cov.Dims(); r != CovarianceDim || c != CovarianceDim {
		return PoseWithCovariance{}, errors.Errorf("covariance must be %dx%d, got %dx%d", CovarianceDim, CovarianceDim, r, c)
	}
	return PoseWithCovariance{Pose: p, Covariance: cov}, nil
}

// PositionCovariance returns a copy of the 3x3 translation block.
func (pc PoseWithCovariance) PositionCovariance() *mat.Dense {
	return mat.DenseCopyOf(pc.Covariance.Slice(0, 3, 0, 3))
}

// OrientationCovariance returns a copy of the 3x3 orientation block.
func (pc PoseWithCovariance) OrientationCovariance() *mat.Dense {
	return mat.DenseCopyOf(pc.Covariance.Slice(3, CovarianceDim, 3, CovarianceDim))
}
