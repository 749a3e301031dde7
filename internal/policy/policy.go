// Package policy holds the closed set of phase-correction rules.
// Each policy maps a vector of participant phases to one consensus
// phase; the driver writes that value back into designated oscillators
// on a fixed cadence. Out-of-range and NaN phases degrade gracefully
// through the bounded transforms; no policy returns an error for them.
package policy

import (
	"fmt"
	"math"

	"github.com/kdalton/phase-ensemble/internal/field"
	"github.com/kdalton/phase-ensemble/internal/trust"
)

// #region interface

// Policy computes a consensus phase from participant phases.
type Policy interface {
	Apply(phases []float64) (float64, error)
}

// #endregion interface

// #region simple-average

// SimpleAverage is the stateless unweighted mean.
type SimpleAverage struct{}

// Apply returns mean(phases), 0 for an empty vector.
func (SimpleAverage) Apply(phases []float64) (float64, error) {
	if len(phases) == 0 {
		return 0.0, nil
	}
	var sum float64
	for _, p := range phases {
		sum += p
	}
	return sum / float64(len(phases)), nil
}

// #endregion simple-average

// #region threshold-blend

// ThresholdBlend handles exactly two participants: above the alignment
// threshold it uses the plain mean; below it, a fixed-ratio blend
// biased toward the primary participant. Models graceful degradation
// under partial disagreement.
type ThresholdBlend struct {
	// Threshold on the alignment score 1 - min(1, |a-b|/2π).
	Threshold float64
	// PrimaryWeight is the blend weight of phases[0] under
	// disagreement; phases[1] receives the remainder.
	PrimaryWeight float64
}

// DefaultThresholdBlend matches the asynchronous-observer driver:
// alignment threshold 0.85, 0.7/0.3 blend toward the first observer.
func DefaultThresholdBlend() ThresholdBlend {
	return ThresholdBlend{Threshold: 0.85, PrimaryWeight: 0.7}
}

// Apply blends two phases by alignment.
func (p ThresholdBlend) Apply(phases []float64) (float64, error) {
	if len(phases) != 2 {
		return 0, fmt.Errorf("%w: threshold blend requires exactly 2 phases, got %d", field.ErrConfig, len(phases))
	}
	a, b := phases[0], phases[1]
	alignment := 1.0 - math.Min(1.0, math.Abs(a-b)/(2*math.Pi))
	if alignment > p.Threshold {
		return (a + b) / 2.0, nil
	}
	return p.PrimaryWeight*a + (1.0-p.PrimaryWeight)*b, nil
}

// Alignment exposes the pairwise score the blend decision is based on.
func (p ThresholdBlend) Alignment(a, b float64) float64 {
	return 1.0 - math.Min(1.0, math.Abs(a-b)/(2*math.Pi))
}

// #endregion threshold-blend

// #region trust-weighted

// TrustWeighted weights phases by a trust tracker. The tracker is
// updated by the driver once per step from each participant's
// alignment to the freshly computed consensus, giving a one-step
// delayed feedback loop.
type TrustWeighted struct {
	Tracker *trust.Tracker
}

// Apply returns the tracker-weighted phase.
func (p TrustWeighted) Apply(phases []float64) (float64, error) {
	if p.Tracker == nil {
		return 0, fmt.Errorf("%w: trust-weighted policy has no tracker", field.ErrState)
	}
	return p.Tracker.WeightedValue(phases)
}

// #endregion trust-weighted
