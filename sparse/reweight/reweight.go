// Package reweight updates proximal thresholds between iterations of a
// reweighted L1 scheme.
//
// Every update has the form
//
//	gamma = gamma0^2 / (coeff*m + gamma0)
//
// where m is a magnitude of the current estimate (per channel, per bin or
// per block). Thresholds shrink where the estimate is strong, which sharpens
// the contrast between signal-bearing and noise-only bins over iterations.
package reweight

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-sparse/sparse/block"
	"github.com/cwbudde/algo-sparse/sparse/signal"
)

var (
	ErrInvalidCoeff      = errors.New("reweight: coeff must be > 0")
	ErrLengthMismatch    = errors.New("reweight: vector length does not match")
	ErrNegativeThreshold = errors.New("reweight: threshold must be finite and >= 0")
	ErrInvalidWeight     = errors.New("reweight: weights must be finite and non-zero")
)

type config struct {
	coeff float64
}

// Option mutates reweighting settings.
type Option func(*config)

// WithCoeff sets the weight given to the estimate magnitude.
func WithCoeff(coeff float64) Option {
	return func(cfg *config) {
		cfg.coeff = coeff
	}
}

func applyOptions(opts []Option) (config, error) {
	cfg := config{coeff: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if !(cfg.coeff > 0) || math.IsInf(cfg.coeff, 0) {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidCoeff, cfg.coeff)
	}
	return cfg, nil
}

func checkThresholds(name string, gamma []float64, want int) error {
	if len(gamma) != want {
		return fmt.Errorf("%w: %s has %d values, want %d", ErrLengthMismatch, name, len(gamma), want)
	}
	for i, g := range gamma {
		if !(g >= 0) || math.IsInf(g, 0) {
			return fmt.Errorf("%w: %s[%d] = %v", ErrNegativeThreshold, name, i, g)
		}
	}
	return nil
}

// shrink returns gamma0^2 / (coeff*m + gamma0), or 0 for gamma0 == 0.
func shrink(gamma0, m, coeff float64) float64 {
	if gamma0 == 0 {
		return 0
	}
	return gamma0 * gamma0 / (coeff*m + gamma0)
}

// Elementwise reweights each channel independently:
//
//	gammaA[i] = gamma0[i]^2 / (coeff*|A[i]| + gamma0[i])
//	gammaE[i] = gamma0[i]^2 / (coeff*|E[i]| + gamma0[i])
func Elementwise(x signal.Signal, gamma0 []float64, opts ...Option) (gammaA, gammaE []float64, err error) {
	if err := x.Validate(); err != nil {
		return nil, nil, err
	}
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, nil, err
	}
	if err := checkThresholds("gamma0", gamma0, x.Len()); err != nil {
		return nil, nil, err
	}

	gammaA = make([]float64, x.Len())
	gammaE = make([]float64, x.Len())
	for i, g := range gamma0 {
		gammaA[i] = shrink(g, cmplx.Abs(x.A[i]), cfg.coeff)
		gammaE[i] = shrink(g, cmplx.Abs(x.E[i]), cfg.coeff)
	}
	return gammaA, gammaE, nil
}

// Joint reweights each bin by its joint magnitude sqrt(|A|^2 + |E|^2). Use it
// when one threshold is shared by both channels.
func Joint(x signal.Signal, gamma0 []float64, opts ...Option) ([]float64, error) {
	if err := x.Validate(); err != nil {
		return nil, err
	}
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := checkThresholds("gamma0", gamma0, x.Len()); err != nil {
		return nil, err
	}

	out := signal.MixedNorm(x)
	for i, m := range out {
		out[i] = shrink(gamma0[i], m, cfg.coeff)
	}
	return out, nil
}

// Blocks reweights one threshold per block by the block mixed norm of the
// estimate.
func Blocks(x signal.Signal, gamma0 []float64, part block.Partition, opts ...Option) ([]float64, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := checkThresholds("gamma0", gamma0, len(part)); err != nil {
		return nil, err
	}
	out, err := block.MixedNorm(x, part)
	if err != nil {
		return nil, fmt.Errorf("reweight: %w", err)
	}
	for k, m := range out {
		out[k] = shrink(gamma0[k], m, cfg.coeff)
	}
	return out, nil
}

// Recalibrate rescales block thresholds after per-bin weights have been
// applied, so that a block that was active stays active. For every block
// holding a non-zero estimate,
//
//	gamma[b] = gamma0[b] / sqrt(sum_{i in b} 1/weights[i]^2)
//
// Blocks with an all-zero estimate keep gamma0[b]. A degenerate weight norm
// (zero or non-finite) also leaves the threshold unchanged.
func Recalibrate(gamma0 []float64, part block.Partition, weights []float64, x signal.Signal) ([]float64, error) {
	if err := x.Validate(); err != nil {
		return nil, err
	}
	if err := part.Validate(x.Len()); err != nil {
		return nil, fmt.Errorf("reweight: %w", err)
	}
	if err := checkThresholds("gamma0", gamma0, len(part)); err != nil {
		return nil, err
	}
	if err := checkWeights(weights, x.Len()); err != nil {
		return nil, err
	}

	out := make([]float64, len(gamma0))
	copy(out, gamma0)
	for k, b := range part {
		if !hasSignal(x, b) {
			continue
		}
		var sum float64
		for _, w := range weights[b.Min : b.Max+1] {
			sum += 1 / (w * w)
		}
		norm := math.Sqrt(sum)
		if norm == 0 || math.IsInf(norm, 0) || math.IsNaN(norm) {
			continue
		}
		out[k] = gamma0[k] / norm
	}
	return out, nil
}

// BlockElementWeights updates per-bin weights when a block threshold is
// applied value by value inside each block. gamma holds the block thresholds
// expanded to bins (see [block.Expand]) and w0 the weights of the previous
// iteration:
//
//	w[i] = (gamma[i]*w0[i])^2 / (gamma[i]*(coeff*|x_i|_12 + gamma[i]*w0[i]))
//
// Bins with gamma[i]*w0[i] == 0 keep w0[i].
func BlockElementWeights(x signal.Signal, gamma, w0 []float64, opts ...Option) ([]float64, error) {
	if err := x.Validate(); err != nil {
		return nil, err
	}
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := checkThresholds("gamma", gamma, x.Len()); err != nil {
		return nil, err
	}
	if err := checkWeights(w0, x.Len()); err != nil {
		return nil, err
	}

	out := signal.MixedNorm(x)
	for i, m := range out {
		gw := gamma[i] * w0[i]
		if gw == 0 {
			out[i] = w0[i]
			continue
		}
		out[i] = gw * gw / (gamma[i] * (cfg.coeff*m + gw))
	}
	return out, nil
}

func checkWeights(w []float64, n int) error {
	if len(w) != n {
		return fmt.Errorf("%w: weights has %d values, want %d", ErrLengthMismatch, len(w), n)
	}
	for i, v := range w {
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: index %d is %v", ErrInvalidWeight, i, v)
		}
	}
	return nil
}

func hasSignal(x signal.Signal, b block.Block) bool {
	for i := b.Min; i <= b.Max; i++ {
		if x.A[i] != 0 || x.E[i] != 0 {
			return true
		}
	}
	return false
}
