package binning

import (
	"math"
	"sort"
)

// Quantile returns the p-quantile of values by linear interpolation
// between closest ranks: h = (n-1)p, q = v[floor h] + (h - floor h)(v[ceil h] - v[floor h]).
// ok is false for an empty input. values is not modified.
func Quantile(values []float64, p float64) (float64, bool) {
	if len(values) == 0 || math.IsNaN(p) {
		return 0, false
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return quantileSorted(sorted, p), true
}

func quantileSorted(sorted []float64, p float64) float64 {
	switch {
	case p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[len(sorted)-1]
	}

	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[i]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Median is the 0.5 quantile
func Median(values []float64) (float64, bool) {
	return Quantile(values, 0.5)
}
