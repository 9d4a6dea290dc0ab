package cluster

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/crossplot/pkg/errors"
)

// MetricFunc computes the distance between two observations of equal length.
type MetricFunc func(a, b []float64) float64

// DefaultMetric is used when no metric name is given.
const DefaultMetric = "euclidean"

// Metrics is a registry of distance functions, initialized with the
// standard options. Callers may register additional metrics at startup.
var Metrics = map[string]MetricFunc{
	"euclidean":   Euclidean,
	"sqeuclidean": SqEuclidean,
	"cityblock":   CityBlock,
	"chebyshev":   Chebyshev,
	"cosine":      Cosine,
	"correlation": Correlation,
	"hamming":     Hamming,
}

// Euclidean is the L2 distance.
func Euclidean(a, b []float64) float64 { return floats.Distance(a, b, 2) }

// SqEuclidean is the squared L2 distance.
func SqEuclidean(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

// CityBlock is the L1 (Manhattan) distance.
func CityBlock(a, b []float64) float64 { return floats.Distance(a, b, 1) }

// Chebyshev is the L-infinity distance.
func Chebyshev(a, b []float64) float64 { return floats.Distance(a, b, math.Inf(1)) }

// Cosine is one minus the cosine similarity. Zero vectors are at distance 0
// from each other and 1 from everything else.
func Cosine(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		if na == nb {
			return 0
		}
		return 1
	}
	return 1 - floats.Dot(a, b)/(na*nb)
}

// Correlation is one minus the Pearson correlation. Constant vectors have no
// defined correlation and are treated as uncorrelated.
func Correlation(a, b []float64) float64 {
	c := stat.Correlation(a, b, nil)
	if math.IsNaN(c) {
		return 1
	}
	return 1 - c
}

// Hamming is the fraction of positions that differ.
func Hamming(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	n := 0
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return float64(n) / float64(len(a))
}

// LookupMetric returns the registered metric, or a validation error listing
// the known names.
func LookupMetric(name string) (MetricFunc, error) {
	if name == "" {
		name = DefaultMetric
	}
	fn, ok := Metrics[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidOption, "unknown distance metric %q (known: %v)", name, names(Metrics))
	}
	return fn, nil
}

// Pairwise returns the condensed n x n distance matrix as a full square
// slice of slices.
func Pairwise(vectors [][]float64, metric MetricFunc) ([][]float64, error) {
	n := len(vectors)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		if len(vectors[i]) != len(vectors[0]) {
			return nil, errors.New(errors.ErrCodeSizeMismatch,
				"observation %d has %d features, want %d", i, len(vectors[i]), len(vectors[0]))
		}
		for j := i + 1; j < n; j++ {
			v := metric(vectors[i], vectors[j])
			if math.IsNaN(v) {
				return nil, errors.New(errors.ErrCodeInvalidInput, "distance between %d and %d is NaN", i, j)
			}
			d[i][j], d[j][i] = v, v
		}
	}
	return d, nil
}

func names[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
