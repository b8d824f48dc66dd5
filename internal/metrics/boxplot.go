// internal/metrics/boxplot.go
package metrics

import (
	"math"
	"sort"
)

// BoxStats holds the summary drawn as one box.
type BoxStats struct {
	Q1          float64
	Median      float64
	Q3          float64
	WhiskerLow  float64
	WhiskerHigh float64
	NotchLow    float64
	NotchHigh   float64
	Fliers      []float64
	N           int
}

// ComputeBox derives quartiles, whiskers reaching the furthest points within
// 1.5 IQR of the box, the points beyond them, and a median notch of
// 1.57 IQR / sqrt(n).
func ComputeBox(values []float64) BoxStats {
	if len(values) == 0 {
		return BoxStats{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	b := BoxStats{
		Q1:     Percentile(sorted, 25),
		Median: Percentile(sorted, 50),
		Q3:     Percentile(sorted, 75),
		N:      len(sorted),
	}
	iqr := b.Q3 - b.Q1
	lowLimit := b.Q1 - 1.5*iqr
	highLimit := b.Q3 + 1.5*iqr

	b.WhiskerLow = b.Q1
	b.WhiskerHigh = b.Q3
	for _, v := range sorted {
		if v >= lowLimit {
			b.WhiskerLow = math.Min(v, b.Q1)
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] <= highLimit {
			b.WhiskerHigh = math.Max(sorted[i], b.Q3)
			break
		}
	}
	for _, v := range sorted {
		if v < b.WhiskerLow || v > b.WhiskerHigh {
			b.Fliers = append(b.Fliers, v)
		}
	}

	notch := 1.57 * iqr / math.Sqrt(float64(len(sorted)))
	b.NotchLow = b.Median - notch
	b.NotchHigh = b.Median + notch
	return b
}
