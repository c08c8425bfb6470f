// Package config loads the parameter set of a block-sparse recovery run
// from a YAML file and SPARSE_* environment variables, and turns it into
// options for the recovery packages.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-sparse/sparse/blocktree"
	"github.com/cwbudde/algo-sparse/sparse/prox"
	"github.com/cwbudde/algo-sparse/sparse/reweight"
	"github.com/cwbudde/algo-sparse/stats/chi2"
)

// Sentinel validation errors.
var (
	ErrInvalidProbability = errors.New("config: invalid miss probability")
	ErrInvalidBlockSize   = errors.New("config: min block size must be positive")
	ErrInvalidRatio       = errors.New("config: comparability ratio must be > 1")
	ErrInvalidAlpha       = errors.New("config: prox alpha must be positive")
	ErrInvalidMaxSize     = errors.New("config: max active block size must be positive")
	ErrInvalidCoeff       = errors.New("config: reweight coeff must be positive")
	ErrInvalidLogLevel    = errors.New("config: invalid log level")
	ErrInvalidLogFormat   = errors.New("config: invalid log format")
)

// Default configuration values.
const (
	DefaultProbability        = 0.99
	DefaultMinBlockSize       = 2
	DefaultDegreesOfFreedom   = 4
	DefaultScale              = 1.0
	DefaultAlpha              = 1.0
	DefaultReweightCoeff      = 1.0
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
	envPrefix                 = "SPARSE"
	defaultConfigName         = "sparse"
	DefaultMaxActiveBlockSize = prox.DefaultMaxActiveBlockSize
)

// Config holds every tunable of a recovery run.
type Config struct {
	Tree     TreeConfig     `mapstructure:"tree" yaml:"tree"`
	Chi2     Chi2Config     `mapstructure:"chi2" yaml:"chi2"`
	Prox     ProxConfig     `mapstructure:"prox" yaml:"prox"`
	Reweight ReweightConfig `mapstructure:"reweight" yaml:"reweight"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// TreeConfig holds adaptive block construction settings.
type TreeConfig struct {
	Probability        float64 `mapstructure:"probability" yaml:"probability"`
	MinBlockSize       int     `mapstructure:"min_block_size" yaml:"min_block_size"`
	ComparabilityRatio float64 `mapstructure:"comparability_ratio" yaml:"comparability_ratio"`
}

// Chi2Config holds the per-bin null-noise law.
type Chi2Config struct {
	DegreesOfFreedom int     `mapstructure:"degrees_of_freedom" yaml:"degrees_of_freedom"`
	Scale            float64 `mapstructure:"scale" yaml:"scale"`
}

// ProxConfig holds proximal operator settings.
type ProxConfig struct {
	Alpha              float64 `mapstructure:"alpha" yaml:"alpha"`
	MaxActiveBlockSize int     `mapstructure:"max_active_block_size" yaml:"max_active_block_size"`
}

// ReweightConfig holds reweighting settings.
type ReweightConfig struct {
	Coeff float64 `mapstructure:"coeff" yaml:"coeff"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Tree: TreeConfig{
			Probability:        DefaultProbability,
			MinBlockSize:       DefaultMinBlockSize,
			ComparabilityRatio: blocktree.DefaultComparabilityRatio,
		},
		Chi2: Chi2Config{
			DegreesOfFreedom: DefaultDegreesOfFreedom,
			Scale:            DefaultScale,
		},
		Prox: ProxConfig{
			Alpha:              DefaultAlpha,
			MaxActiveBlockSize: DefaultMaxActiveBlockSize,
		},
		Reweight: ReweightConfig{Coeff: DefaultReweightCoeff},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load reads configuration from configPath (or sparse.yaml in the working
// directory when empty) and SPARSE_* environment variables, then validates
// it. A missing file in the search path is not an error.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(defaultConfigName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &cfg, nil
}

func setDefaults(viperCfg *viper.Viper) {
	def := Default()

	viperCfg.SetDefault("tree.probability", def.Tree.Probability)
	viperCfg.SetDefault("tree.min_block_size", def.Tree.MinBlockSize)
	viperCfg.SetDefault("tree.comparability_ratio", def.Tree.ComparabilityRatio)

	viperCfg.SetDefault("chi2.degrees_of_freedom", def.Chi2.DegreesOfFreedom)
	viperCfg.SetDefault("chi2.scale", def.Chi2.Scale)

	viperCfg.SetDefault("prox.alpha", def.Prox.Alpha)
	viperCfg.SetDefault("prox.max_active_block_size", def.Prox.MaxActiveBlockSize)

	viperCfg.SetDefault("reweight.coeff", def.Reweight.Coeff)

	viperCfg.SetDefault("logging.level", def.Logging.Level)
	viperCfg.SetDefault("logging.format", def.Logging.Format)
}

// Validate checks every section.
func (c *Config) Validate() error {
	if !(c.Tree.Probability > 0 && c.Tree.Probability < 1) {
		return fmt.Errorf("%w: %v", ErrInvalidProbability, c.Tree.Probability)
	}
	if c.Tree.MinBlockSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, c.Tree.MinBlockSize)
	}
	if !(c.Tree.ComparabilityRatio > 1) {
		return fmt.Errorf("%w: %v", ErrInvalidRatio, c.Tree.ComparabilityRatio)
	}
	if err := c.Chi2Config().Validate(); err != nil {
		return err
	}
	if !(c.Prox.Alpha > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidAlpha, c.Prox.Alpha)
	}
	if c.Prox.MaxActiveBlockSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxSize, c.Prox.MaxActiveBlockSize)
	}
	if !(c.Reweight.Coeff > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidCoeff, c.Reweight.Coeff)
	}
	if _, err := c.logLevel(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}
	return nil
}

// Chi2Config returns the null-noise law as a [chi2.Config].
func (c *Config) Chi2Config() chi2.Config {
	return chi2.ApplyOptions(
		chi2.WithDegreesOfFreedom(c.Chi2.DegreesOfFreedom),
		chi2.WithScale(c.Chi2.Scale),
	)
}

// TreeOptions returns the options for [blocktree.Build] and
// [blocktree.Refine]. logger may be nil.
func (c *Config) TreeOptions(logger *slog.Logger) []blocktree.Option {
	return []blocktree.Option{
		blocktree.WithComparabilityRatio(c.Tree.ComparabilityRatio),
		blocktree.WithChi2(c.Chi2Config()),
		blocktree.WithLogger(logger),
	}
}

// ProxOptions returns the options for [prox.Block] and [prox.Elementwise].
func (c *Config) ProxOptions() []prox.Option {
	return []prox.Option{
		prox.WithAlpha(c.Prox.Alpha),
		prox.WithMaxActiveBlockSize(c.Prox.MaxActiveBlockSize),
	}
}

// ReweightOptions returns the options for the reweight package.
func (c *Config) ReweightOptions() []reweight.Option {
	return []reweight.Option{reweight.WithCoeff(c.Reweight.Coeff)}
}

func (c *Config) logLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}
	return level, nil
}

// Logger returns a logger writing to w at the configured level and format.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := c.logLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch c.Logging.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}
}

// WriteYAML writes the configuration as YAML.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
