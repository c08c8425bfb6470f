// Command chi2info prints chi-squared block activation thresholds.
//
// Usage:
//
//	chi2info [flags] [block-size ...]
//
// Without arguments it prints powers of two from 1 to 64.
//
// Examples:
//
//	chi2info
//	chi2info -p 0.95 2 4 10
//	chi2info -dof 2 -scale 0.5 1 8
//	chi2info -config sparse.yaml
//	chi2info -config sparse.yaml -dump
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-sparse/config"
	"github.com/cwbudde/algo-sparse/stats/chi2"
)

var defaultSizes = []int{1, 2, 4, 8, 16, 32, 64}

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults to ./sparse.yaml when present)")
	prob := flag.Float64("p", math.NaN(), "miss probability, overrides config")
	dof := flag.Int("dof", 0, "per-bin degrees of freedom, overrides config")
	scale := flag.Float64("scale", math.NaN(), "per-bin noise scale, overrides config")
	dump := flag.Bool("dump", false, "print the effective configuration as YAML and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: chi2info [flags] [block-size ...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints block energy thresholds and proximal gammas.\n")
		fmt.Fprintf(os.Stderr, "Without block sizes, prints powers of two up to 64.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  chi2info -p 0.95 2 4 10\n")
		fmt.Fprintf(os.Stderr, "  chi2info -dof 2 -scale 0.5 1 8\n")
		fmt.Fprintf(os.Stderr, "  chi2info -config sparse.yaml -dump\n")
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if !math.IsNaN(*prob) {
		cfg.Tree.Probability = *prob
	}
	if *dof != 0 {
		cfg.Chi2.DegreesOfFreedom = *dof
	}
	if !math.IsNaN(*scale) {
		cfg.Chi2.Scale = *scale
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *dump {
		if err := cfg.WriteYAML(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	sizes, err := parseSizes(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := printTable(os.Stdout, sizes, cfg.Tree.Probability, cfg.Chi2Config()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseSizes(args []string) ([]int, error) {
	if len(args) == 0 {
		return defaultSizes, nil
	}
	sizes := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return nil, fmt.Errorf("invalid block size %q: %w", arg, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("invalid block size %d: %w", n, chi2.ErrInvalidBlockSize)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

func printTable(w io.Writer, sizes []int, p float64, cfg chi2.Config) error {
	table, err := chi2.NewTable(p, cfg)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Size\tDoF\tThreshold\tPer Bin\tGamma\n"); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}
	if _, err := fmt.Fprintf(tw, "----\t---\t---------\t-------\t-----\n"); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}

	for _, n := range sizes {
		x0, err := table.At(n)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(tw, "%d\t%d\t%.4f\t%.4f\t%.4f\n",
			n,
			n*cfg.DegreesOfFreedom,
			x0,
			x0/float64(n),
			math.Sqrt(float64(n)*x0),
		); err != nil {
			return fmt.Errorf("failed to write output row: %w", err)
		}
	}
	return tw.Flush()
}
