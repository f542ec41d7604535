package blockmesh

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// gradingLambdas returns the n+1 parametric positions of an edge divided into n segments whose lengths
// follow a geometric progression. The ratio is last segment length over first segment length.
func gradingLambdas(n int, ratio float64) (lambda []float64) {
	var (
		seg = make([]float64, n)
		exp = 1.
	)
	if n > 1 && ratio != 1 {
		exp = math.Pow(ratio, 1/float64(n-1))
	}
	seg[0] = 1
	for i := 1; i < n; i++ {
		seg[i] = seg[i-1] * exp
	}
	lambda = make([]float64, n+1)
	floats.CumSum(lambda[1:], seg)
	total := lambda[n]
	for i := 1; i < n; i++ {
		lambda[i] /= total
	}
	lambda[n] = 1
	return
}

// chordLambdas parametrises a point sequence by accumulated chord length, ends pinned to 0 and 1
func chordLambdas(lengths []float64) (lambda []float64) {
	var (
		n = len(lengths)
	)
	lambda = make([]float64, n+1)
	floats.CumSum(lambda[1:], lengths)
	total := lambda[n]
	if total <= 0 {
		for i := range lambda {
			lambda[i] = float64(i) / float64(n)
		}
		return
	}
	for i := 1; i < n; i++ {
		lambda[i] /= total
	}
	lambda[n] = 1
	return
}
