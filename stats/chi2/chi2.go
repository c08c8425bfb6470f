package chi2

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mathext"
)

var (
	ErrInvalidProbability = errors.New("chi2: probability must be in (0,1)")
	ErrInvalidBlockSize   = errors.New("chi2: block size must be > 0")
	ErrInvalidDegrees     = errors.New("chi2: degrees of freedom must be > 0")
	ErrInvalidScale       = errors.New("chi2: scale must be > 0")
)

// Config describes the per-bin null-noise law |A|^2+|E|^2 ~ Scale*Chi^2(DegreesOfFreedom).
type Config struct {
	DegreesOfFreedom int
	Scale            float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns four degrees of freedom per bin (two complex
// channels) at unit scale.
func DefaultConfig() Config {
	return Config{
		DegreesOfFreedom: 4,
		Scale:            1,
	}
}

// WithDegreesOfFreedom sets the degrees of freedom contributed by one bin.
func WithDegreesOfFreedom(dof int) Option {
	return func(cfg *Config) {
		cfg.DegreesOfFreedom = dof
	}
}

// WithScale sets the chi-squared scale parameter.
func WithScale(scale float64) Option {
	return func(cfg *Config) {
		cfg.Scale = scale
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate reports whether the config can be used for threshold computation.
func (c Config) Validate() error {
	if c.DegreesOfFreedom <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDegrees, c.DegreesOfFreedom)
	}
	if !(c.Scale > 0) || math.IsInf(c.Scale, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidScale, c.Scale)
	}
	return nil
}

// ISF is the inverse survival function of Scale*Chi^2(dof): it returns x0
// such that P(X > x0) = q.
func ISF(q, dof, scale float64) (float64, error) {
	if !(q > 0 && q < 1) {
		return 0, fmt.Errorf("%w: survival %v", ErrInvalidProbability, q)
	}
	if !(dof > 0) || math.IsInf(dof, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDegrees, dof)
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}
	return scale * 2 * mathext.GammaIncRegCompInv(dof/2, q), nil
}

// Threshold returns the energy level x0 of a block of blockSize bins such
// that pure noise exceeds x0 with probability 1-p.
func Threshold(blockSize int, p float64, cfg Config) (float64, error) {
	if blockSize <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}
	if !(p > 0 && p < 1) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidProbability, p)
	}
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	return ISF(1-p, float64(cfg.DegreesOfFreedom*blockSize), cfg.Scale)
}

// Gamma returns the proximal threshold of a block of blockSize bins:
//
//	gamma = sqrt(blockSize * Threshold(blockSize, p, cfg))
func Gamma(blockSize int, p float64, cfg Config) (float64, error) {
	x0, err := Threshold(blockSize, p, cfg)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(float64(blockSize) * x0), nil
}

// Gammas applies [Gamma] to every block size.
func Gammas(sizes []int, p float64, cfg Config) ([]float64, error) {
	t, err := NewTable(p, cfg)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(sizes))
	for i, n := range sizes {
		x0, err := t.At(n)
		if err != nil {
			return nil, fmt.Errorf("chi2: block %d: %w", i, err)
		}
		out[i] = math.Sqrt(float64(n) * x0)
	}
	return out, nil
}

// Table memoizes [Threshold] by block size for a fixed probability and
// config. It is not safe for concurrent use.
type Table struct {
	p     float64
	cfg   Config
	cache map[int]float64
}

// NewTable validates p and cfg once and returns an empty table.
func NewTable(p float64, cfg Config) (*Table, error) {
	if !(p > 0 && p < 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProbability, p)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Table{p: p, cfg: cfg, cache: make(map[int]float64)}, nil
}

// Probability returns the miss probability the table was built for.
func (t *Table) Probability() float64 { return t.p }

// Config returns the chi-squared config the table was built for.
func (t *Table) Config() Config { return t.cfg }

// At returns the threshold for a block of blockSize bins.
func (t *Table) At(blockSize int) (float64, error) {
	if x0, ok := t.cache[blockSize]; ok {
		return x0, nil
	}
	x0, err := Threshold(blockSize, t.p, t.cfg)
	if err != nil {
		return 0, err
	}
	t.cache[blockSize] = x0
	return x0, nil
}
