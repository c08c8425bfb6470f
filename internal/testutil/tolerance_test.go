package testutil

import (
	"testing"
)

func TestRequireHelpersPass(t *testing.T) {
	RequireSliceNearlyEqual(t, []float64{1, 2}, []float64{1, 2 + 1e-12}, 1e-9)
	RequireComplexNearlyEqual(t, []complex128{1 + 1i}, []complex128{1 + 1i}, 0)
	RequireFinite(t, []float64{0, -1, 1e300})
	RequireFiniteComplex(t, []complex128{0, 1i})
	RequireZero(t, make([]complex128, 4))
}
