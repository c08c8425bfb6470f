// Package prox implements the closed-form proximal operators of the joint
// (L12) and block-L12 penalties on two-channel frequency series.
//
// [Elementwise] solves, independently for every bin,
//
//	argmin_x alpha*gamma*||x||_12 + 1/2*||u - x||_2^2
//
// and [Block] solves the same problem with one shared threshold per block
// of a [block.Partition].
package prox

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-sparse/sparse/block"
	"github.com/cwbudde/algo-sparse/sparse/signal"
)

// DefaultMaxActiveBlockSize is the largest block allowed to stay active.
const DefaultMaxActiveBlockSize = 10

var (
	ErrThresholdLength   = errors.New("prox: threshold length does not match")
	ErrNegativeThreshold = errors.New("prox: threshold must be >= 0")
	ErrInvalidAlpha      = errors.New("prox: alpha must be > 0")
	ErrWeightLength      = errors.New("prox: weight length does not match signal")
	ErrInvalidWeight     = errors.New("prox: weights must be finite and non-zero")
	ErrInvalidMaxSize    = errors.New("prox: max active block size must be > 0")
)

type config struct {
	alpha   float64
	weights []float64
	maxSize int
}

// Option mutates proximal operator settings.
type Option func(*config)

// WithAlpha sets the dilation applied to every threshold.
func WithAlpha(alpha float64) Option {
	return func(cfg *config) {
		cfg.alpha = alpha
	}
}

// WithWeights sets per-bin weights. [Block] multiplies both channels by the
// weights before thresholding and divides the result by them afterwards.
func WithWeights(w []float64) Option {
	return func(cfg *config) {
		cfg.weights = w
	}
}

// WithMaxActiveBlockSize sets the size above which [Block] zeroes a block
// even when its energy exceeds the threshold.
func WithMaxActiveBlockSize(n int) Option {
	return func(cfg *config) {
		cfg.maxSize = n
	}
}

func applyOptions(opts []Option) (config, error) {
	cfg := config{alpha: 1, maxSize: DefaultMaxActiveBlockSize}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if !(cfg.alpha > 0) || math.IsInf(cfg.alpha, 0) {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidAlpha, cfg.alpha)
	}
	if cfg.maxSize <= 0 {
		return cfg, fmt.Errorf("%w: %d", ErrInvalidMaxSize, cfg.maxSize)
	}
	return cfg, nil
}

func checkThresholds(gamma []float64, want int) error {
	if len(gamma) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrThresholdLength, len(gamma), want)
	}
	for i, g := range gamma {
		if !(g >= 0) || math.IsInf(g, 0) {
			return fmt.Errorf("%w: index %d is %v", ErrNegativeThreshold, i, g)
		}
	}
	return nil
}

func checkWeights(w []float64, n int) error {
	if len(w) != n {
		return fmt.Errorf("%w: got %d, want %d", ErrWeightLength, len(w), n)
	}
	for i, v := range w {
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: index %d is %v", ErrInvalidWeight, i, v)
		}
	}
	return nil
}

// Elementwise applies joint soft thresholding to every bin of u with its own
// threshold gamma[i]:
//
//	X = sqrt(|A|^2 + |E|^2) - alpha*gamma[i]
//
// A bin with X > 0 is scaled by X / (X + alpha*gamma[i]); every other bin is
// set to zero. u is not modified. [WithMaxActiveBlockSize] and [WithWeights]
// are ignored.
func Elementwise(u signal.Signal, gamma []float64, opts ...Option) (signal.Signal, error) {
	if err := u.Validate(); err != nil {
		return signal.Signal{}, err
	}
	cfg, err := applyOptions(opts)
	if err != nil {
		return signal.Signal{}, err
	}
	if err := checkThresholds(gamma, u.Len()); err != nil {
		return signal.Signal{}, err
	}

	out := signal.New(u.Len())
	norm := signal.MixedNorm(u)
	for i, m := range norm {
		ag := cfg.alpha * gamma[i]
		x := m - ag
		if !(x > 0) {
			continue
		}
		c := complex(x/(x+ag), 0)
		out.A[i] = u.A[i] * c
		out.E[i] = u.E[i] * c
	}
	return out, nil
}

// Block applies block soft thresholding with one threshold per block:
//
//	Xb = sqrt(sum_{i in b} |A[i]|^2 + |E[i]|^2) - alpha*gamma[b]
//
// A block with Xb > 0 and at most the maximum active size is scaled by
// 1 / (1 + alpha*gamma[b]/Xb); every other block is set to zero. u is not
// modified.
func Block(u signal.Signal, part block.Partition, gamma []float64, opts ...Option) (signal.Signal, error) {
	if err := u.Validate(); err != nil {
		return signal.Signal{}, err
	}
	if err := part.Validate(u.Len()); err != nil {
		return signal.Signal{}, fmt.Errorf("prox: %w", err)
	}
	cfg, err := applyOptions(opts)
	if err != nil {
		return signal.Signal{}, err
	}
	if err := checkThresholds(gamma, len(part)); err != nil {
		return signal.Signal{}, err
	}

	in := u
	if cfg.weights != nil {
		if err := checkWeights(cfg.weights, u.Len()); err != nil {
			return signal.Signal{}, err
		}
		in = weighted(u, cfg.weights)
	}

	norms, err := block.MixedNorm(in, part)
	if err != nil {
		return signal.Signal{}, fmt.Errorf("prox: %w", err)
	}

	out := signal.New(u.Len())
	for k, b := range part {
		ag := cfg.alpha * gamma[k]
		xb := norms[k] - ag
		if !(xb > 0) || b.Size() > cfg.maxSize {
			continue
		}
		c := complex(1/(1+ag/xb), 0)
		for i := b.Min; i <= b.Max; i++ {
			out.A[i] = in.A[i] * c
			out.E[i] = in.E[i] * c
		}
	}

	if cfg.weights != nil {
		for i, w := range cfg.weights {
			inv := complex(1/w, 0)
			out.A[i] *= inv
			out.E[i] *= inv
		}
	}
	return out, nil
}

func weighted(u signal.Signal, w []float64) signal.Signal {
	out := signal.New(u.Len())
	for i, v := range w {
		c := complex(v, 0)
		out.A[i] = u.A[i] * c
		out.E[i] = u.E[i] * c
	}
	return out
}
