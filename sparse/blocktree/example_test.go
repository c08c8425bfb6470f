package blocktree_test

import (
	"fmt"

	"github.com/cwbudde/algo-sparse/internal/testutil"
	"github.com/cwbudde/algo-sparse/sparse/blocktree"
	"github.com/cwbudde/algo-sparse/sparse/signal"
)

func ExampleBuild() {
	s := signal.Signal{
		A: testutil.Tone(16, 10, 6, 7),
		E: testutil.Tone(16, 10, 6, 7),
	}

	tree, err := blocktree.Build(s, 0.99, 2)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, r := range tree.Rows() {
		fmt.Printf("[%d,%d] active=%v\n", r.Min, r.Max, r.Active)
	}

	// Output:
	// [0,5] active=false
	// [6,7] active=true
	// [8,15] active=false
}
