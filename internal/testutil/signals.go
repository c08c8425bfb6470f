package testutil

import (
	"math/rand/v2"
)

// GaussianNoise returns n samples of zero-mean Gaussian noise with standard
// deviation sigma, reproducible for a given seed.
func GaussianNoise(seed uint64, sigma float64, n int) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, n)
	for i := range out {
		out[i] = sigma * rng.NormFloat64()
	}
	return out
}

// ComplexNoise returns n complex bins whose real and imaginary parts are
// independent N(0, sigma^2). Two such channels give |A|^2+|E|^2 distributed
// as sigma^2 * Chi^2(4) per bin.
func ComplexNoise(seed uint64, sigma float64, n int) []complex128 {
	parts := GaussianNoise(seed, sigma, 2*n)
	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(parts[2*i], parts[2*i+1])
	}
	return out
}

// Tone returns n zero bins with amp placed at each of the given indices.
// Out-of-range indices are ignored.
func Tone(n int, amp complex128, idx ...int) []complex128 {
	out := make([]complex128, n)
	for _, i := range idx {
		if i >= 0 && i < n {
			out[i] = amp
		}
	}
	return out
}

// Ramp returns 0, 1, ..., n-1.
func Ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// Fill returns a slice of length n filled with v.
func Fill(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Ones returns a slice of length n filled with 1.0.
func Ones(n int) []float64 {
	return Fill(n, 1)
}
