// Package metrics holds the free-standing phase-alignment statistics
// shared by every experiment, plus the generic series recorder.
package metrics

import "math"

const twoPi = 2 * math.Pi

// #region cross-coherence

// PairwiseCrossCoherence is the mean over all unordered pairs of
// 1 - (|Δphase| mod 2π) / 2π: a phase-difference-normalized similarity
// in [0, 1]. Fewer than 2 phases returns 1.0 by convention.
func PairwiseCrossCoherence(phases []float64) float64 {
	if len(phases) < 2 {
		return 1.0
	}
	var sum float64
	var pairs int
	for i := 0; i < len(phases); i++ {
		for j := i + 1; j < len(phases); j++ {
			diff := math.Abs(phases[i] - phases[j])
			v := 1.0 - math.Mod(diff, twoPi)/twoPi
			if math.IsNaN(v) {
				v = 0.0
			}
			sum += v
			pairs++
		}
	}
	return sum / float64(pairs)
}

// #endregion cross-coherence

// #region harmonic-depth

// HarmonicDepth measures how close all pairwise frequency ratios are
// to integers: 1 - min(1, mean residual), where each pair's ratio is
// taken larger over smaller. 1.0 means perfectly harmonic. Fewer than
// 2 frequencies returns 1.0.
func HarmonicDepth(freqs []float64) float64 {
	if len(freqs) < 2 {
		return 1.0
	}
	var sum float64
	var pairs int
	for i := 0; i < len(freqs); i++ {
		for j := i + 1; j < len(freqs); j++ {
			lo, hi := math.Abs(freqs[i]), math.Abs(freqs[j])
			if lo > hi {
				lo, hi = hi, lo
			}
			if lo == 0 {
				sum += 1.0
				pairs++
				continue
			}
			ratio := hi / lo
			sum += math.Abs(ratio - math.Round(ratio))
			pairs++
		}
	}
	mean := sum / float64(pairs)
	return 1.0 - math.Min(1.0, mean)
}

// #endregion harmonic-depth

// #region alignment

// AlignmentScores scores each phase against a consensus phase as
// 1 - min(1, |phase - consensus| / 2π). NaN inputs score 0.
func AlignmentScores(phases []float64, consensus float64) []float64 {
	scores := make([]float64, len(phases))
	for i, p := range phases {
		d := math.Abs(p-consensus) / twoPi
		if math.IsNaN(d) {
			scores[i] = 0.0
			continue
		}
		scores[i] = 1.0 - math.Min(1.0, d)
	}
	return scores
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the middle value (mean of the middle two for even
// lengths), 0 for an empty slice.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0.0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	for i := 1; i < n; i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}

// #endregion alignment
