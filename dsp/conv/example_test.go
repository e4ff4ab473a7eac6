package conv_test

import (
	"fmt"

	"github.com/cwbudde/algo-mix/dsp/conv"
)

func ExampleConvolveTruncated() {
	signal := []float64{1, 0, 0, 0, 0, 0}
	kernel := []float64{1, 0, 0.5, 0, 0.25}

	out, err := conv.ConvolveTruncated(signal, kernel)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(out, conv.SelectStrategy(kernel))
	// Output:
	// [1 0 0.5 0 0.25 0] direct
}
