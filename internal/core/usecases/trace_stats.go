package usecases

import (
	"math"
	"sort"

	"github.com/nthds/segyscope/internal/core/domain"
)

// ComputeAmplitudeStats returns basic statistics over decoded sample values,
// or nil when there are none.
func ComputeAmplitudeStats(samples []float64) *domain.AmplitudeStats {
	if len(samples) == 0 {
		return nil
	}

	stats := domain.AmplitudeStats{
		Min:         samples[0],
		Max:         samples[0],
		SampleCount: len(samples),
	}

	var sum, sumSq float64
	for _, v := range samples {
		sum += v
		sumSq += v * v
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
	}

	n := float64(len(samples))
	stats.Mean = sum / n
	stats.RMS = math.Sqrt(sumSq / n)
	// Population standard deviation, guarding against tiny negative values
	// from floating-point cancellation.
	variance := sumSq/n - stats.Mean*stats.Mean
	if variance > 0 {
		stats.StdDev = math.Sqrt(variance)
	}

	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	stats.Median = percentile(sorted, 50)

	return &stats
}

// AmplitudeHistogram bins sample values after trimming IQR outliers:
// values outside [Q1 - 1.5*IQR, Q3 + 1.5*IQR] are excluded before binning.
func AmplitudeHistogram(samples []float64, bins int) []domain.HistogramBin {
	if len(samples) == 0 || bins <= 0 {
		return nil
	}

	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)
	iqr := q3 - q1
	lo := q1 - 1.5*iqr
	hi := q3 + 1.5*iqr

	var filtered []float64
	for _, v := range sorted {
		if v >= lo && v <= hi {
			filtered = append(filtered, v)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	min := filtered[0]
	max := filtered[len(filtered)-1]
	if min == max {
		return []domain.HistogramBin{{Low: min, High: max, Count: len(filtered)}}
	}

	width := (max - min) / float64(bins)
	out := make([]domain.HistogramBin, bins)
	for i := range out {
		out[i].Low = min + float64(i)*width
		out[i].High = out[i].Low + width
	}
	out[bins-1].High = max

	for _, v := range filtered {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

// percentile computes the p-th percentile of sorted values with linear
// interpolation between closest ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
