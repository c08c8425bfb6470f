package blocktree

import (
	"log/slog"

	"github.com/cwbudde/algo-sparse/stats/chi2"
)

// DefaultComparabilityRatio bounds the size ratio of two blocks merged after
// the first pass.
const DefaultComparabilityRatio = 5.0

type config struct {
	ratio  float64
	chi2   chi2.Config
	logger *slog.Logger
}

// Option mutates the tree construction settings.
type Option func(*config)

func defaultConfig() config {
	return config{
		ratio:  DefaultComparabilityRatio,
		chi2:   chi2.DefaultConfig(),
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithComparabilityRatio sets the strict upper bound on larger/smaller block
// size for pairwise merges.
func WithComparabilityRatio(ratio float64) Option {
	return func(cfg *config) {
		cfg.ratio = ratio
	}
}

// WithChi2 sets the null-noise law used for every threshold.
func WithChi2(c chi2.Config) Option {
	return func(cfg *config) {
		cfg.chi2 = c
	}
}

// WithLogger sets the logger receiving one debug record per merge pass.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
