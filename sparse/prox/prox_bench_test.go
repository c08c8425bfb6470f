package prox

import (
	"strconv"
	"testing"

	"github.com/cwbudde/algo-sparse/internal/testutil"
	"github.com/cwbudde/algo-sparse/sparse/block"
	"github.com/cwbudde/algo-sparse/sparse/signal"
)

func makeBenchSignal(n int) signal.Signal {
	return signal.Signal{
		A: testutil.ComplexNoise(1, 1, n),
		E: testutil.ComplexNoise(2, 1, n),
	}
}

func BenchmarkElementwise(b *testing.B) {
	sizes := []int{256, 4096, 65536}
	for _, n := range sizes {
		u := makeBenchSignal(n)
		gamma := testutil.Fill(n, 1.5)
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(n * 32))

			for range b.N {
				if _, err := Elementwise(u, gamma); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkBlock(b *testing.B) {
	sizes := []int{256, 4096, 65536}
	for _, n := range sizes {
		u := makeBenchSignal(n)
		part, err := block.Regular(4, n)
		if err != nil {
			b.Fatal(err)
		}
		gamma := testutil.Fill(len(part), 3)
		w := testutil.Ones(n)
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(n * 32))

			for range b.N {
				if _, err := Block(u, part, gamma, WithWeights(w)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
