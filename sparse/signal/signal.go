package signal

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrLengthMismatch = errors.New("signal: channel lengths differ")
	ErrEmptyInput     = errors.New("signal: input is empty")
	ErrZeroReference  = errors.New("signal: reference has zero energy")
)

// Signal is a two-channel complex frequency series.
type Signal struct {
	A []complex128
	E []complex128
}

// New returns an all-zero signal of n bins.
func New(n int) Signal {
	return Signal{
		A: make([]complex128, n),
		E: make([]complex128, n),
	}
}

// FromChannels wraps a and e without copying.
func FromChannels(a, e []complex128) (Signal, error) {
	s := Signal{A: a, E: e}
	if err := s.Validate(); err != nil {
		return Signal{}, err
	}
	return s, nil
}

// Len returns the number of bins.
func (s Signal) Len() int { return len(s.A) }

// Validate reports whether both channels have the same length.
func (s Signal) Validate() error {
	if len(s.A) != len(s.E) {
		return fmt.Errorf("%w: A=%d E=%d", ErrLengthMismatch, len(s.A), len(s.E))
	}
	return nil
}

// Clone returns a deep copy of s.
func (s Signal) Clone() Signal {
	out := Signal{
		A: make([]complex128, len(s.A)),
		E: make([]complex128, len(s.E)),
	}
	copy(out.A, s.A)
	copy(out.E, s.E)
	return out
}

// Sub returns s - o bin by bin.
func (s Signal) Sub(o Signal) (Signal, error) {
	if err := s.Validate(); err != nil {
		return Signal{}, err
	}
	if err := o.Validate(); err != nil {
		return Signal{}, err
	}
	if s.Len() != o.Len() {
		return Signal{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, s.Len(), o.Len())
	}
	out := New(s.Len())
	for i := range s.A {
		out.A[i] = s.A[i] - o.A[i]
		out.E[i] = s.E[i] - o.E[i]
	}
	return out, nil
}

// IsZero reports whether every bin of both channels is exactly zero.
func (s Signal) IsZero() bool {
	for i := range s.A {
		if s.A[i] != 0 || s.E[i] != 0 {
			return false
		}
	}
	return true
}

// Power returns |A[i]|^2 + |E[i]|^2 for every bin, or nil when s is empty
// or its channels differ in length.
func Power(s Signal) []float64 {
	n := s.Len()
	if n == 0 {
		return nil
	}
	out := make([]float64, n)
	if err := PowerInto(out, s); err != nil {
		return nil
	}
	return out
}

// PowerInto writes the joint power of s into dst, which must have s.Len()
// elements.
func PowerInto(dst []float64, s Signal) error {
	if err := s.Validate(); err != nil {
		return err
	}
	n := s.Len()
	if len(dst) != n {
		return fmt.Errorf("%w: dst=%d signal=%d", ErrLengthMismatch, len(dst), n)
	}
	scratch := make([]float64, 3*n)
	re, im, pe := scratch[:n], scratch[n:2*n], scratch[2*n:]

	split(re, im, s.A)
	vecmath.Power(dst, re, im)
	split(re, im, s.E)
	vecmath.Power(pe, re, im)
	vecmath.AddBlockInPlace(dst, pe)
	return nil
}

func split(re, im []float64, c []complex128) {
	for i, v := range c {
		re[i] = real(v)
		im[i] = imag(v)
	}
}

// MixedNorm returns the per-bin joint magnitude sqrt(|A[i]|^2 + |E[i]|^2).
func MixedNorm(s Signal) []float64 {
	p := Power(s)
	for i, v := range p {
		p[i] = math.Sqrt(v)
	}
	return p
}

// L12 returns the mixed norm ||s||_12 = sum_i sqrt(|A[i]|^2 + |E[i]|^2).
func L12(s Signal) float64 {
	if s.Len() == 0 {
		return 0
	}
	return floats.Sum(MixedNorm(s))
}

// Energy returns sum_i |A[i]|^2 + |E[i]|^2.
func Energy(s Signal) float64 {
	if s.Len() == 0 {
		return 0
	}
	return floats.Sum(Power(s))
}

// LogError scores an estimate against a reference in decibels:
//
//	-10 * log10(||ref - est||^2 / ||ref||^2)
//
// Larger is better. An exact estimate scores +Inf and an all-zero estimate
// scores 0 dB.
func LogError(ref, est Signal) (float64, error) {
	if err := ref.Validate(); err != nil {
		return 0, err
	}
	if ref.Len() == 0 {
		return 0, ErrEmptyInput
	}
	diff, err := ref.Sub(est)
	if err != nil {
		return 0, err
	}
	refEnergy := Energy(ref)
	if refEnergy == 0 {
		return 0, ErrZeroReference
	}
	return -10 * math.Log10(Energy(diff)/refEnergy), nil
}
