package blocktree

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/algo-sparse/sparse/block"
	"github.com/cwbudde/algo-sparse/sparse/signal"
	"github.com/cwbudde/algo-sparse/stats/chi2"
)

var (
	ErrEmptySignal  = errors.New("blocktree: signal is empty")
	ErrInvalidRatio = errors.New("blocktree: comparability ratio must be > 1")
)

// Row is one block of the tree together with its merge statistics.
type Row struct {
	block.Block

	// Energy is the observed sum of |A|^2+|E|^2 over the block.
	Energy float64
	// Threshold is the chi-squared activation level at the block's size.
	Threshold float64
	// Active reports Energy > Threshold.
	Active bool
	// Merged counts the initial blocks absorbed into this row.
	Merged int
}

// Tree is the terminal state of a construction run.
type Tree struct {
	rows   []Row
	passes int
	table  *chi2.Table
}

// Build partitions s into blocks of minBlockSize bins and merges them until
// a pairwise pass leaves the tree unchanged. p is the miss probability of the
// chi-squared test.
func Build(s signal.Signal, p float64, minBlockSize int, opts ...Option) (*Tree, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Len() == 0 {
		return nil, ErrEmptySignal
	}
	part, err := block.Regular(minBlockSize, s.Len())
	if err != nil {
		return nil, fmt.Errorf("blocktree: %w", err)
	}
	b, err := newBuilder(p, opts)
	if err != nil {
		return nil, err
	}
	return b.build(s, part, 0)
}

// Refine treats every block of part as a minimal unit and runs pairwise
// merge passes only. Refining the partition of a built tree produces no
// further merges.
func Refine(s signal.Signal, p float64, part block.Partition, opts ...Option) (*Tree, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Len() == 0 {
		return nil, ErrEmptySignal
	}
	b, err := newBuilder(p, opts)
	if err != nil {
		return nil, err
	}
	return b.build(s, part, 1)
}

type builder struct {
	table  *chi2.Table
	ratio  float64
	logger *slog.Logger
}

func newBuilder(p float64, opts []Option) (*builder, error) {
	cfg := applyOptions(opts)
	if !(cfg.ratio > 1) || math.IsInf(cfg.ratio, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRatio, cfg.ratio)
	}
	table, err := chi2.NewTable(p, cfg.chi2)
	if err != nil {
		return nil, fmt.Errorf("blocktree: %w", err)
	}
	return &builder{table: table, ratio: cfg.ratio, logger: cfg.logger}, nil
}

func (b *builder) build(s signal.Signal, part block.Partition, firstPass int) (*Tree, error) {
	rows, err := b.initRows(s, part)
	if err != nil {
		return nil, err
	}

	pass := firstPass
	for {
		var next []Row
		if pass == 0 {
			next, err = b.quadPass(rows)
		} else {
			next, err = b.pairPass(rows)
		}
		if err != nil {
			return nil, err
		}
		b.logger.Debug("blocktree: merge pass",
			"pass", pass, "rows_in", len(rows), "rows_out", len(next))
		pairwise := pass > 0
		pass++

		// The quad pass only tests aligned neighbours, so the fixed point
		// is an unchanged pair pass.
		done := pairwise && sameBlocks(rows, next)
		rows = next
		if done {
			break
		}
	}

	// Incremental sums drift over many merges.
	if err := b.refresh(s, rows); err != nil {
		return nil, err
	}
	b.logger.Debug("blocktree: converged",
		"passes", pass-firstPass, "blocks", len(rows), "bins", s.Len())

	return &Tree{rows: rows, passes: pass - firstPass, table: b.table}, nil
}

func (b *builder) initRows(s signal.Signal, part block.Partition) ([]Row, error) {
	energy, err := block.Energy(s, part)
	if err != nil {
		return nil, fmt.Errorf("blocktree: %w", err)
	}
	rows := make([]Row, len(part))
	for k, blk := range part {
		x0, err := b.table.At(blk.Size())
		if err != nil {
			return nil, fmt.Errorf("blocktree: %w", err)
		}
		rows[k] = Row{
			Block:     blk,
			Energy:    energy[k],
			Threshold: x0,
			Active:    energy[k] > x0,
			Merged:    1,
		}
	}
	return rows, nil
}

func (b *builder) refresh(s signal.Signal, rows []Row) error {
	part := make(block.Partition, len(rows))
	for k, r := range rows {
		part[k] = r.Block
	}
	energy, err := block.Energy(s, part)
	if err != nil {
		return fmt.Errorf("blocktree: %w", err)
	}
	for k := range rows {
		rows[k].Energy = energy[k]
		rows[k].Active = energy[k] > rows[k].Threshold
	}
	return nil
}

// tryMerge tests the combined energy of consecutive rows against the
// threshold of their combined extent and returns the merged row when it
// lies below.
func (b *builder) tryMerge(group []Row) (Row, bool, error) {
	var energy float64
	merged := 0
	for _, r := range group {
		energy += r.Energy
		merged += r.Merged
	}
	blk := block.Block{Min: group[0].Min, Max: group[len(group)-1].Max}
	x0, err := b.table.At(blk.Size())
	if err != nil {
		return Row{}, false, fmt.Errorf("blocktree: %w", err)
	}
	if energy >= x0 {
		return Row{}, false, nil
	}
	return Row{
		Block:     blk,
		Energy:    energy,
		Threshold: x0,
		Active:    energy > x0,
		Merged:    merged,
	}, true, nil
}

// mergeOrKeep appends either the merged group or its rows unchanged.
func (b *builder) mergeOrKeep(next, group []Row) ([]Row, bool, error) {
	m, ok, err := b.tryMerge(group)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return append(next, m), true, nil
	}
	return append(next, group...), false, nil
}

// quadPass scans rows in strides of four. A group of four is merged as a
// whole when possible, otherwise its two pairs are tried independently.
// The one to three rows left after the last full stride are merged together
// when their combined energy allows it.
func (b *builder) quadPass(rows []Row) ([]Row, error) {
	next := make([]Row, 0, len(rows))
	i := 0
	for ; i+4 <= len(rows); i += 4 {
		group := rows[i : i+4]
		m, ok, err := b.tryMerge(group)
		if err != nil {
			return nil, err
		}
		if ok {
			next = append(next, m)
			continue
		}
		if next, _, err = b.mergeOrKeep(next, group[:2]); err != nil {
			return nil, err
		}
		if next, _, err = b.mergeOrKeep(next, group[2:]); err != nil {
			return nil, err
		}
	}

	rest := rows[i:]
	if len(rest) < 2 {
		return append(next, rest...), nil
	}
	next, _, err := b.mergeOrKeep(next, rest)
	return next, err
}

// pairPass scans rows one at a time and merges a row with its right
// neighbour when their sizes are comparable and their combined energy lies
// below the merged threshold.
func (b *builder) pairPass(rows []Row) ([]Row, error) {
	next := make([]Row, 0, len(rows))
	i := 0
	for i < len(rows)-1 {
		if b.comparable(rows[i].Size(), rows[i+1].Size()) {
			m, ok, err := b.tryMerge(rows[i : i+2])
			if err != nil {
				return nil, err
			}
			if ok {
				next = append(next, m)
				i += 2
				continue
			}
		}
		next = append(next, rows[i])
		i++
	}
	if i == len(rows)-1 {
		next = append(next, rows[i])
	}
	return next, nil
}

func (b *builder) comparable(s1, s2 int) bool {
	lo, hi := min(s1, s2), max(s1, s2)
	return float64(hi)/float64(lo) < b.ratio
}

func sameBlocks(a, b []Row) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if a[k].Block != b[k].Block {
			return false
		}
	}
	return true
}

// Len returns the number of blocks.
func (t *Tree) Len() int { return len(t.rows) }

// Passes returns the number of merge passes run, including the final pass
// that changed nothing.
func (t *Tree) Passes() int { return t.passes }

// Rows returns a copy of the tree rows.
func (t *Tree) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Partition returns the block decomposition of the tree.
func (t *Tree) Partition() block.Partition {
	out := make(block.Partition, len(t.rows))
	for k, r := range t.rows {
		out[k] = r.Block
	}
	return out
}

// Thresholds returns the chi-squared energy threshold of every block.
func (t *Tree) Thresholds() []float64 {
	out := make([]float64, len(t.rows))
	for k, r := range t.rows {
		out[k] = r.Threshold
	}
	return out
}

// Energies returns the observed energy of every block.
func (t *Tree) Energies() []float64 {
	out := make([]float64, len(t.rows))
	for k, r := range t.rows {
		out[k] = r.Energy
	}
	return out
}

// Active returns the activity flag of every block.
func (t *Tree) Active() []bool {
	out := make([]bool, len(t.rows))
	for k, r := range t.rows {
		out[k] = r.Active
	}
	return out
}

// Gammas returns initial proximal thresholds sqrt(size * Threshold) for
// every block, at the probability and noise law the tree was built with.
func (t *Tree) Gammas() ([]float64, error) {
	return chi2.Gammas(t.Partition().Sizes(), t.table.Probability(), t.table.Config())
}
