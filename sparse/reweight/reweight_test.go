package reweight

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-sparse/internal/testutil"
	"github.com/cwbudde/algo-sparse/sparse/block"
	"github.com/cwbudde/algo-sparse/sparse/signal"
)

func TestElementwise(t *testing.T) {
	x := signal.Signal{
		A: []complex128{0, 3 + 4i},
		E: []complex128{1, 0},
	}
	ga, ge, err := Elementwise(x, []float64{2, 2}, WithCoeff(0.5))
	require.NoError(t, err)
	// gammaA: 4/(0+2)=2, 4/(2.5+2); gammaE: 4/(0.5+2), 4/2.
	testutil.RequireSliceNearlyEqual(t, ga, []float64{2, 4 / 4.5}, 1e-12)
	testutil.RequireSliceNearlyEqual(t, ge, []float64{4 / 2.5, 2}, 1e-12)
}

func TestJointUsesMixedNorm(t *testing.T) {
	x := signal.Signal{
		A: []complex128{3, 0},
		E: []complex128{4i, 0},
	}
	g, err := Joint(x, []float64{1, 1})
	require.NoError(t, err)
	testutil.RequireSliceNearlyEqual(t, g, []float64{1.0 / 6, 1}, 1e-12)
}

func TestJointStrictlyDecreasingInMagnitude(t *testing.T) {
	const n = 50
	x := signal.New(n)
	for i := range x.A {
		x.A[i] = complex(0.1*float64(i), 0)
		x.E[i] = complex(0, 0.05*float64(i))
	}
	g, err := Joint(x, testutil.Fill(n, 0.7), WithCoeff(2))
	require.NoError(t, err)
	assert.InDelta(t, 0.7, g[0], 1e-12)
	for i := 1; i < n; i++ {
		assert.Less(t, g[i], g[i-1])
	}
	testutil.RequireFinite(t, g)
}

func TestZeroGammaStaysZero(t *testing.T) {
	g, err := Joint(signal.New(3), make([]float64, 3))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, g)

	ga, ge, err := Elementwise(signal.New(2), make([]float64, 2))
	require.NoError(t, err)
	testutil.RequireFinite(t, ga)
	testutil.RequireFinite(t, ge)
}

func TestBlocks(t *testing.T) {
	x := signal.Signal{
		A: []complex128{0, 0, 1, 1},
		E: []complex128{0, 0, 1, 1i},
	}
	part := block.Partition{{Min: 0, Max: 1}, {Min: 2, Max: 3}}
	g, err := Blocks(x, []float64{3, 3}, part, WithCoeff(0.5))
	require.NoError(t, err)
	// Block 1 mixed norm is 2: 9 / (0.5*2 + 3).
	testutil.RequireSliceNearlyEqual(t, g, []float64{3, 9.0 / 4}, 1e-12)
}

func TestBlocksRejectsBrokenPartition(t *testing.T) {
	_, err := Blocks(signal.New(4), []float64{1, 1}, block.Partition{{Min: 0, Max: 1}, {Min: 3, Max: 3}})
	assert.ErrorIs(t, err, block.ErrNotContiguous)
	_, err = Blocks(signal.New(4), []float64{1}, block.Partition{{Min: 0, Max: 1}, {Min: 2, Max: 3}})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestRecalibrate(t *testing.T) {
	x := signal.Signal{
		A: []complex128{0, 0, 2, 0},
		E: []complex128{0, 0, 0, 0},
	}
	part := block.Partition{{Min: 0, Max: 1}, {Min: 2, Max: 3}}
	w := []float64{0.5, 0.5, 0.5, 1}

	g, err := Recalibrate([]float64{4, 4}, part, w, x)
	require.NoError(t, err)
	// Block 0 holds no estimate and keeps its threshold.
	// Block 1: sqrt(1/0.25 + 1) = sqrt(5).
	testutil.RequireSliceNearlyEqual(t, g, []float64{4, 4 / math.Sqrt(5)}, 1e-12)
}

func TestRecalibrateKeepsActiveBlockActive(t *testing.T) {
	x := signal.Signal{
		A: []complex128{5, 4, 0, 0},
		E: []complex128{0, 3i, 0, 0},
	}
	part := block.Partition{{Min: 0, Max: 1}, {Min: 2, Max: 3}}
	gamma0 := []float64{6, 6}

	w, err := Joint(x, testutil.Fill(4, 1))
	require.NoError(t, err)
	g, err := Recalibrate(gamma0, part, w, x)
	require.NoError(t, err)

	var weightedEnergy float64
	for i := 0; i <= 1; i++ {
		a, e := x.A[i]*complex(w[i], 0), x.E[i]*complex(w[i], 0)
		weightedEnergy += real(a)*real(a) + imag(a)*imag(a) + real(e)*real(e) + imag(e)*imag(e)
	}
	assert.Greater(t, math.Sqrt(weightedEnergy), g[0])
	assert.Equal(t, 6.0, g[1])
}

func TestRecalibrateValidation(t *testing.T) {
	x := signal.New(2)
	part := block.Partition{{Min: 0, Max: 1}}
	_, err := Recalibrate([]float64{1}, part, []float64{1, 0}, x)
	assert.ErrorIs(t, err, ErrInvalidWeight)
	_, err = Recalibrate([]float64{1}, part, []float64{1}, x)
	assert.ErrorIs(t, err, ErrLengthMismatch)
	_, err = Recalibrate([]float64{-1}, part, []float64{1, 1}, x)
	assert.ErrorIs(t, err, ErrNegativeThreshold)
	_, err = Recalibrate([]float64{1}, block.Partition{{Min: 0, Max: 0}}, []float64{1, 1}, x)
	assert.ErrorIs(t, err, block.ErrCoverage)
}

func TestBlockElementWeights(t *testing.T) {
	x := signal.Signal{
		A: []complex128{3, 0, 1},
		E: []complex128{4, 0, 0},
	}
	gamma := []float64{2, 2, 0}
	w0 := []float64{1, 0.5, 3}

	w, err := BlockElementWeights(x, gamma, w0)
	require.NoError(t, err)
	// (2*1)^2/(2*(5+2)) = 2/7; (2*0.5)^2/(2*(0+1)) = 0.5; gamma 0 keeps w0.
	testutil.RequireSliceNearlyEqual(t, w, []float64{2.0 / 7, 0.5, 3}, 1e-12)
}

func TestBlockElementWeightsFromExpandedThresholds(t *testing.T) {
	x := signal.Signal{
		A: testutil.ComplexNoise(4, 1, 12),
		E: testutil.ComplexNoise(5, 1, 12),
	}
	part, err := block.Regular(4, 12)
	require.NoError(t, err)
	gamma, err := block.Expand(part, []float64{1, 2, 3})
	require.NoError(t, err)

	w, err := BlockElementWeights(x, gamma, testutil.Ones(12))
	require.NoError(t, err)
	testutil.RequireFinite(t, w)
	for i, v := range w {
		assert.Positive(t, v)
		assert.LessOrEqualf(t, v, 1.0, "bin %d", i)
	}
}

func TestInvalidCoeff(t *testing.T) {
	_, err := Joint(signal.New(1), []float64{1}, WithCoeff(0))
	assert.ErrorIs(t, err, ErrInvalidCoeff)
	_, _, err = Elementwise(signal.New(1), []float64{1}, WithCoeff(-1))
	assert.ErrorIs(t, err, ErrInvalidCoeff)
	_, err = Blocks(signal.New(1), []float64{1}, block.Partition{{Min: 0, Max: 0}}, WithCoeff(math.Inf(1)))
	assert.ErrorIs(t, err, ErrInvalidCoeff)
	_, err = BlockElementWeights(signal.New(1), []float64{1}, []float64{1}, WithCoeff(math.NaN()))
	assert.ErrorIs(t, err, ErrInvalidCoeff)
}

func TestLengthValidation(t *testing.T) {
	_, err := Joint(signal.New(2), []float64{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)
	_, _, err = Elementwise(signal.Signal{A: make([]complex128, 1)}, nil)
	assert.ErrorIs(t, err, signal.ErrLengthMismatch)
	_, err = BlockElementWeights(signal.New(2), []float64{1, 1}, []float64{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}
