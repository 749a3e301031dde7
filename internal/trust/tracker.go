// Package trust maintains per-participant influence weights on the
// probability simplex: exponential smoothing toward an alignment
// signal, optional participation decay, a hard per-weight floor, and
// an optional hysteresis lag between target and published weights.
// This is plain exponential smoothing, not a consensus protocol.
package trust

import (
	"fmt"

	"github.com/kdalton/phase-ensemble/internal/field"
)

// #region config

// Config tunes a Tracker.
type Config struct {
	// Floor is the minimum weight any participant can hold after an
	// update: no voice is ever fully silenced.
	Floor float64

	// Hysteresis is the lag coefficient lambda. Zero publishes the
	// freshly computed target directly; in (0,1] the published weights
	// exponentially approach the target: w = (1-lambda)*w + lambda*t.
	Hysteresis float64
}

// DefaultConfig matches the plain council tracker.
func DefaultConfig() Config {
	return Config{Floor: 0.05}
}

// #endregion config

// #region tracker

// Tracker holds the normalized weight vector for a fixed participant
// set. Weights are always non-negative, each at least the floor, and
// sum to 1.
type Tracker struct {
	weights []float64
	target  []float64
	floor   float64
	lag     float64
}

// New creates a tracker from initial weights, which are normalized
// onto the floored simplex. At least one participant is required, no
// initial weight may be negative, and the floor must leave room for a
// valid simplex (n*floor < 1).
func New(initial []float64, cfg Config) (*Tracker, error) {
	if len(initial) == 0 {
		return nil, fmt.Errorf("%w: tracker requires at least one participant", field.ErrConfig)
	}
	for i, w := range initial {
		if w < 0 {
			return nil, fmt.Errorf("%w: initial weight %d is negative (%.4f)", field.ErrConfig, i, w)
		}
	}
	if cfg.Floor < 0 || cfg.Floor*float64(len(initial)) >= 1 {
		return nil, fmt.Errorf("%w: floor %.4f infeasible for %d participants", field.ErrConfig, cfg.Floor, len(initial))
	}
	if cfg.Hysteresis < 0 || cfg.Hysteresis > 1 {
		return nil, fmt.Errorf("%w: hysteresis %.4f outside [0,1]", field.ErrConfig, cfg.Hysteresis)
	}

	t := &Tracker{
		weights: make([]float64, len(initial)),
		target:  make([]float64, len(initial)),
		floor:   cfg.Floor,
		lag:     cfg.Hysteresis,
	}
	copy(t.target, initial)
	projectSimplex(t.target, t.floor)
	copy(t.weights, t.target)
	return t, nil
}

// Len returns the participant count.
func (t *Tracker) Len() int {
	return len(t.weights)
}

// Weights returns a copy of the published weight vector.
func (t *Tracker) Weights() []float64 {
	out := make([]float64, len(t.weights))
	copy(out, t.weights)
	return out
}

// Update blends the target weights toward the alignment signal:
// target = (1-lr)*target + lr*alignment, minus a decay penalty of
// decayRate*(1-participation) per member when participation is given
// (nil means every member fully participated). The target is then
// projected back onto the floored simplex, and the published weights
// either adopt it directly or lag toward it under hysteresis.
func (t *Tracker) Update(alignments, participation []float64, learningRate, decayRate float64) error {
	if len(alignments) != len(t.target) {
		return fmt.Errorf("%w: %d alignment scores for %d participants", field.ErrState, len(alignments), len(t.target))
	}
	if participation != nil && len(participation) != len(t.target) {
		return fmt.Errorf("%w: %d participation scores for %d participants", field.ErrState, len(participation), len(t.target))
	}

	for i := range t.target {
		next := (1.0-learningRate)*t.target[i] + learningRate*alignments[i]
		if participation != nil {
			next -= decayRate * (1.0 - participation[i])
		}
		t.target[i] = next
	}
	projectSimplex(t.target, t.floor)

	if t.lag <= 0 {
		copy(t.weights, t.target)
		return nil
	}
	for i := range t.weights {
		t.weights[i] = (1.0-t.lag)*t.weights[i] + t.lag*t.target[i]
	}
	projectSimplex(t.weights, t.floor)
	return nil
}

// WeightedValue is the dot product of values with the published
// weights: the consensus phase for phase inputs, the consensus
// alignment index for alignment inputs.
func (t *Tracker) WeightedValue(values []float64) (float64, error) {
	if len(values) != len(t.weights) {
		return 0, fmt.Errorf("%w: %d values for %d participants", field.ErrState, len(values), len(t.weights))
	}
	var sum float64
	for i, v := range values {
		sum += v * t.weights[i]
	}
	return sum, nil
}

// #endregion tracker

// #region projection

// projectSimplex rescales w in place so every entry is at least floor
// and the vector sums to 1. Mass above the floor is redistributed
// proportionally; a degenerate vector falls back to uniform.
func projectSimplex(w []float64, floor float64) {
	n := float64(len(w))
	budget := 1.0 - floor*n

	var excess float64
	for _, v := range w {
		if v > floor {
			excess += v - floor
		}
	}
	if excess <= 0 {
		for i := range w {
			w[i] = 1.0 / n
		}
		return
	}
	for i := range w {
		over := w[i] - floor
		if over < 0 {
			over = 0
		}
		w[i] = floor + budget*over/excess
	}
}

// #endregion projection
