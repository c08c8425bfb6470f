// Package block describes decompositions of a frequency index range into
// contiguous blocks and computes block-wise mixed norms of two-channel
// signals.
//
// A [Partition] of n bins is an ordered list of blocks covering [0, n-1]
// exactly once: blocks[k].Max+1 == blocks[k+1].Min and every block holds at
// least one bin.
package block

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-sparse/sparse/signal"
)

var (
	ErrInvalidBlockSize = errors.New("block: block size must be > 0")
	ErrInvalidLength    = errors.New("block: total length must be > 0")
	ErrEmptyPartition   = errors.New("block: partition has no blocks")
	ErrEmptyBlock       = errors.New("block: block has zero size")
	ErrNotContiguous    = errors.New("block: blocks are not contiguous")
	ErrCoverage         = errors.New("block: partition does not cover the signal")
	ErrLengthMismatch   = errors.New("block: vector length does not match partition")
)

// Block is the inclusive index range [Min, Max].
type Block struct {
	Min int
	Max int
}

// Size returns the number of bins in the block.
func (b Block) Size() int { return b.Max - b.Min + 1 }

// Partition is an ordered, gap-free decomposition of [0, n-1].
type Partition []Block

// Regular splits n bins into ceil(n/blockSize) blocks of blockSize bins.
// The last block is truncated to end at n-1.
func Regular(blockSize, n int) (Partition, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}
	count := (n + blockSize - 1) / blockSize
	p := make(Partition, count)
	for k := range p {
		p[k] = Block{
			Min: k * blockSize,
			Max: min((k+1)*blockSize-1, n-1),
		}
	}
	return p, nil
}

// Validate checks that p covers [0, n-1] exactly once with non-empty blocks.
func (p Partition) Validate(n int) error {
	if len(p) == 0 {
		return ErrEmptyPartition
	}
	if p[0].Min != 0 {
		return fmt.Errorf("%w: first block starts at %d", ErrCoverage, p[0].Min)
	}
	for k, b := range p {
		if b.Size() < 1 {
			return fmt.Errorf("%w: block %d [%d,%d]", ErrEmptyBlock, k, b.Min, b.Max)
		}
		if k > 0 && p[k-1].Max+1 != b.Min {
			return fmt.Errorf("%w: block %d ends at %d, block %d starts at %d",
				ErrNotContiguous, k-1, p[k-1].Max, k, b.Min)
		}
	}
	if last := p[len(p)-1].Max; last != n-1 {
		return fmt.Errorf("%w: last block ends at %d, want %d", ErrCoverage, last, n-1)
	}
	return nil
}

// Total returns the number of bins covered by p.
func (p Partition) Total() int {
	total := 0
	for _, b := range p {
		total += b.Size()
	}
	return total
}

// Sizes returns the size of every block.
func (p Partition) Sizes() []int {
	out := make([]int, len(p))
	for k, b := range p {
		out[k] = b.Size()
	}
	return out
}

// Equal reports whether p and q hold the same blocks in the same order.
func (p Partition) Equal(q Partition) bool {
	if len(p) != len(q) {
		return false
	}
	for k := range p {
		if p[k] != q[k] {
			return false
		}
	}
	return true
}

// Energy returns, for each block, sum_{i in block} |A[i]|^2 + |E[i]|^2.
func Energy(s signal.Signal, p Partition) ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(s.Len()); err != nil {
		return nil, err
	}
	power := signal.Power(s)
	out := make([]float64, len(p))
	for k, b := range p {
		var sum float64
		for _, v := range power[b.Min : b.Max+1] {
			sum += v
		}
		out[k] = sum
	}
	return out, nil
}

// MixedNorm returns, for each block, sqrt(sum_{i in block} |A[i]|^2 + |E[i]|^2).
// The norm is not normalized by the block size.
func MixedNorm(s signal.Signal, p Partition) ([]float64, error) {
	out, err := Energy(s, p)
	if err != nil {
		return nil, err
	}
	for k, v := range out {
		out[k] = math.Sqrt(v)
	}
	return out, nil
}

// Expand broadcasts one value per block to one value per bin.
func Expand(p Partition, perBlock []float64) ([]float64, error) {
	if len(perBlock) != len(p) {
		return nil, fmt.Errorf("%w: %d values for %d blocks", ErrLengthMismatch, len(perBlock), len(p))
	}
	if err := p.Validate(p.Total()); err != nil {
		return nil, err
	}
	out := make([]float64, p.Total())
	for k, b := range p {
		for i := b.Min; i <= b.Max; i++ {
			out[i] = perBlock[k]
		}
	}
	return out, nil
}
