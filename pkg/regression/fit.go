package regression

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/models"
)

// ErrTooFewSamples is returned when a fit is attempted with fewer than two rows.
var ErrTooFewSamples = errors.New("at least 2 samples are required to fit a linear model")

// ModelType identifies the only estimator this package produces.
const ModelType = "LinearRegression"

// Fit estimates ordinary least squares coefficients for the housing features.
// The solution comes from the thin-SVD pseudoinverse, so rank-deficient
// systems (fewer rows than coefficients) still yield the minimum-norm
// solution instead of an error.
func Fit(features [][]float64, targets []float64) (*Model, error) {
	n := len(features)
	if n != len(targets) {
		return nil, fmt.Errorf("feature rows (%d) and targets (%d) do not match", n, len(targets))
	}
	if n < 2 {
		return nil, ErrTooFewSamples
	}
	p := len(models.FeatureColumns)
	for i, row := range features {
		if len(row) != p {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), p)
		}
	}

	// Design matrix with a leading intercept column of ones.
	x := mat.NewDense(n, p+1, nil)
	y := mat.NewVecDense(n, nil)
	for i, row := range features {
		x.Set(i, 0, 1)
		for j, v := range row {
			x.Set(i, j+1, v)
		}
		y.SetVec(i, targets[i])
	}

	beta, err := solveLeastSquares(x, y)
	if err != nil {
		return nil, err
	}

	intercept := beta.AtVec(0)
	coeffs := make([]float64, p)
	for j := 0; j < p; j++ {
		coeffs[j] = beta.AtVec(j + 1)
	}
	if !isFinite(intercept) {
		return nil, fmt.Errorf("least squares produced a non-finite intercept")
	}
	for j, c := range coeffs {
		if !isFinite(c) {
			return nil, fmt.Errorf("least squares produced a non-finite coefficient for %s", models.FeatureColumns[j])
		}
	}

	return &Model{
		ModelType:    ModelType,
		Coefficients: coeffs,
		Intercept:    intercept,
		Features:     append([]string{}, models.FeatureColumns...),
		Signature:    models.HousePriceSignature(),
		TrainingRows: n,
		TrainedAt:    time.Now().UTC(),
	}, nil
}

// solveLeastSquares computes the minimum-norm least squares solution of
// x*beta = y through the thin SVD pseudoinverse.
func solveLeastSquares(x *mat.Dense, y *mat.VecDense) (*mat.VecDense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, fmt.Errorf("svd factorization did not converge")
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	// Singular values below tol count as zero for rank purposes.
	rows, cols := x.Dims()
	tol := float64(max(rows, cols)) * s[0] * 2.220446049250313e-16

	var uty mat.VecDense
	uty.MulVec(u.T(), y)
	for i := range s {
		if s[i] > tol {
			uty.SetVec(i, uty.AtVec(i)/s[i])
		} else {
			uty.SetVec(i, 0)
		}
	}

	var beta mat.VecDense
	beta.MulVec(&v, &uty)
	return &beta, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
