package posegraph

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Noise models the uncertainty of one measurement as a covariance matrix.
type Noise interface {
	// Dim returns the measurement dimension.
	Dim() int
	// Covariance returns a copy of the dim x dim covariance matrix.
	Covariance() *mat.Dense
}

type diagonalNoise struct {
	variances []float64
}

// NewDiagonalNoise builds a noise model from independent per-axis variances.
func NewDiagonalNoise(variances []float64) (Noise, error) {
	if len(variances) == 0 {
		return nil, errors.New("at least one variance is required")
	}
	vs := make([]float64, len(variances))
	copy(vs, variances)
	return &diagonalNoise{variances: vs}, nil
}

func (n *diagonalNoise) Dim() int {
	return len(n.variances)
}

func (n *diagonalNoise) Covariance() *mat.Dense {
	d := len(n.variances)
	cov := mat.NewDense(d, d, nil)
	for i, v := range n.variances {
		cov.Set(i, i, v)
	}
	return cov
}

type gaussianNoise struct {
	cov *mat.Dense
}

// NewGaussianNoise builds a noise model from a full covariance matrix. The
// matrix must be square.
func NewGaussianNoise(cov *mat.Dense) (Noise, error) {
	if cov == nil {
		return nil, errors.New("a covariance matrix is required")
	}
	r, c := cov.Dims()
	if r != c {
		return nil, errors.Errorf("covariance must be square, got %dx%d", r, c)
	}
	return &gaussianNoise{cov: mat.DenseCopyOf(cov)}, nil
}

func (n *gaussianNoise) Dim() int {
	r, _ := n.cov.Dims()
	return r
}

func (n *gaussianNoise) Covariance() *mat.Dense {
	return mat.DenseCopyOf(n.cov)
}
