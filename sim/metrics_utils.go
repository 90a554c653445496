// sim/metrics_utils.go
package sim

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Bin represents a single histogram bin with its integer key and count.
type Bin struct {
	Key   int `json:"key"`
	Count int `json:"count"`
}

// CalculatePercentile returns the p-th percentile (0-100) of data,
// interpolating linearly between the two nearest ranks. NaN for empty data.
func CalculatePercentile(data []float64, p float64) float64 {
	n := len(data)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)

	rank := p / 100.0 * float64(n-1)
	lowerIdx := int(math.Floor(rank))
	upperIdx := int(math.Ceil(rank))
	if upperIdx >= n {
		return sorted[n-1]
	}
	if lowerIdx == upperIdx {
		return sorted[lowerIdx]
	}
	return sorted[lowerIdx] + (sorted[upperIdx]-sorted[lowerIdx])*(rank-float64(lowerIdx))
}

// CalculateMean returns the arithmetic mean. NaN for empty data.
func CalculateMean(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	return stat.Mean(data, nil)
}

// CalculateStdDev returns the sample (n-1) standard deviation. NaN for fewer
// than two values.
func CalculateStdDev(data []float64) float64 {
	if len(data) < 2 {
		return math.NaN()
	}
	return stat.StdDev(data, nil)
}

// CalculateMin returns the smallest value. NaN for empty data.
func CalculateMin(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	return floats.Min(data)
}

// CalculateMax returns the largest value. NaN for empty data.
func CalculateMax(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	return floats.Max(data)
}

// CompletionsByHour counts completed units per wall-clock hour of day,
// ordered by hour.
func (rt *ResultTable) CompletionsByHour() []Bin {
	counts := make(map[int]int)
	for _, r := range rt.Records {
		counts[r.CompletedAt.Hour()]++
	}
	bins := make([]Bin, 0, len(counts))
	for hour, n := range counts {
		bins = append(bins, Bin{Key: hour, Count: n})
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].Key < bins[j].Key })
	return bins
}

// ByID returns the records sorted by unit id.
func (rt *ResultTable) ByID() []UnitRecord {
	out := make([]UnitRecord, len(rt.Records))
	copy(out, rt.Records)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
