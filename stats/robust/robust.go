// Package robust provides outlier-resistant estimators for real-valued
// spectra, such as the local noise level of a measured frequency series.
package robust

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// MADScale converts a median absolute deviation into a Gaussian standard
// deviation estimate (the 0.75 quantile of the standard normal).
const MADScale = 0.67449

var (
	ErrEmptyInput    = errors.New("robust: input is empty")
	ErrInvalidWindow = errors.New("robust: half window must be > 0")
)

// Median returns the median of x. For an even length it averages the two
// middle values. x is not modified.
func Median(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, ErrEmptyInput
	}
	s := make([]float64, len(x))
	copy(s, x)
	return medianInPlace(s), nil
}

func medianInPlace(s []float64) float64 {
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return 0.5 * (s[n/2-1] + s[n/2])
}

// MAD returns the median absolute deviation of x around its median.
func MAD(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, ErrEmptyInput
	}
	buf := make([]float64, len(x))
	return mad(x, buf), nil
}

// mad uses buf (len(x)) as scratch.
func mad(x, buf []float64) float64 {
	copy(buf, x)
	med := medianInPlace(buf)
	copy(buf, x)
	floats.AddConst(-med, buf)
	for i, v := range buf {
		buf[i] = math.Abs(v)
	}
	return medianInPlace(buf)
}

// MADSigma estimates the standard deviation of y over a sliding window of
// 2*half samples:
//
//	sigma[k] = MAD(y[k-half : k+half]) / MADScale
//
// for half <= k < len(y)-half. The first and last half samples have no full
// window and are left at zero.
func MADSigma(y []float64, half int) ([]float64, error) {
	if len(y) == 0 {
		return nil, ErrEmptyInput
	}
	if half <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWindow, half)
	}
	sigma := make([]float64, len(y))
	buf := make([]float64, 2*half)
	for k := half; k < len(y)-half; k++ {
		sigma[k] = mad(y[k-half:k+half], buf) / MADScale
	}
	return sigma, nil
}
