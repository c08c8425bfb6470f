package prox_test

import (
	"fmt"

	"github.com/cwbudde/algo-sparse/sparse/prox"
	"github.com/cwbudde/algo-sparse/sparse/signal"
)

func ExampleElementwise() {
	u := signal.Signal{
		A: []complex128{3, 0.5},
		E: []complex128{4, 0},
	}

	x, err := prox.Elementwise(u, []float64{1, 1})
	if err != nil {
		fmt.Println(err)
		return
	}
	for i := range x.Len() {
		fmt.Printf("bin%d A=%.2f E=%.2f\n", i, real(x.A[i]), real(x.E[i]))
	}

	// Output:
	// bin0 A=2.40 E=3.20
	// bin1 A=0.00 E=0.00
}
