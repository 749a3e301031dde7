package policy

import (
	"math"

	"github.com/kdalton/phase-ensemble/internal/metrics"
)

// #region federation

// Federation reconciles two independently governed phase groups: each
// group's phases are nudged toward the other group's median, scaled by
// a small coupling constant, on a coarser cadence than the intra-group
// correction. The sync score between the two medians is exp(-|Δ|);
// this is deliberately a different metric from the canonical pairwise
// cross-coherence.
type Federation struct {
	// SyncStrength is the coupling constant. Zero disables the nudge
	// (independent mode) while still recording sync scores.
	SyncStrength float64

	syncHistory []float64
}

// NewFederation creates a reconciler with the given coupling.
func NewFederation(syncStrength float64) *Federation {
	return &Federation{SyncStrength: syncStrength}
}

// Reconcile nudges each group toward the other's median and returns
// the corrected phase vectors plus this round's sync score.
func (f *Federation) Reconcile(phasesA, phasesB []float64) ([]float64, []float64, float64) {
	medianA := metrics.Median(phasesA)
	medianB := metrics.Median(phasesB)

	outA := make([]float64, len(phasesA))
	for i, p := range phasesA {
		outA[i] = p + f.SyncStrength*(medianB-medianA)
	}
	outB := make([]float64, len(phasesB))
	for i, p := range phasesB {
		outB[i] = p + f.SyncStrength*(medianA-medianB)
	}

	sync := math.Exp(-math.Abs(medianA - medianB))
	f.syncHistory = append(f.syncHistory, sync)
	return outA, outB, sync
}

// SyncHistory returns every recorded sync score in order.
func (f *Federation) SyncHistory() []float64 {
	out := make([]float64, len(f.syncHistory))
	copy(out, f.syncHistory)
	return out
}

// SyncIndex is the mean sync score, 0 before any reconciliation.
func (f *Federation) SyncIndex() float64 {
	return metrics.Mean(f.syncHistory)
}

// #endregion federation
