// internal/metrics/stats.go
package metrics

import (
	"math"
	"sort"
	"strconv"
)

// PercentileLevels are the percentiles recorded for every run.
var PercentileLevels = []int{10, 20, 25, 30, 40, 50, 60, 70, 75, 80, 90}

// Summary describes the score distribution of one repetition.
type Summary struct {
	Average     float64            `json:"average"`
	Median      float64            `json:"median"`
	Std         float64            `json:"std"`
	Percentiles map[string]float64 `json:"percentiles"`
	NTests      int                `json:"n_tests"`
}

// Summarize computes mean, population standard deviation, median and the
// fixed percentile set. An empty input yields zero values.
func Summarize(scores []float64) Summary {
	s := Summary{
		Percentiles: make(map[string]float64, len(PercentileLevels)),
		NTests:      len(scores),
	}
	for _, p := range PercentileLevels {
		s.Percentiles[strconv.Itoa(p)] = 0
	}
	if len(scores) == 0 {
		return s
	}

	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)

	s.Average = Mean(sorted)
	s.Std = StdDev(sorted)
	s.Median = Percentile(sorted, 50)
	for _, p := range PercentileLevels {
		s.Percentiles[strconv.Itoa(p)] = Percentile(sorted, float64(p))
	}
	return s
}

// Mean returns the arithmetic mean of values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation of values.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// Percentile returns the p-th percentile of sorted values, interpolating
// linearly between the two closest ranks.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		lo = 0
	}
	if hi >= n {
		hi = n - 1
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
