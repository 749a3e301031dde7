package field

import (
	"fmt"
	"math"
	"math/rand"
)

// #region oscillator

// noPartner marks an oscillator with no entanglement link.
const noPartner = -1

// unobservedAmplitude is the faint background presence of an
// oscillator that has not yet collapsed.
const unobservedAmplitude = 0.1

// Oscillator is a single phase/frequency state. It starts in
// superposition and collapses to a binary value on first observation;
// the observed flag never reverts. Phase is unbounded radians and is
// wrapped modulo 2π only when compared.
type Oscillator struct {
	Frequency float64
	Phase     float64
	Depth     int
	MaxDepth  int

	observed      bool
	superposition float64
	partner       int

	deadline    float64
	hasDeadline bool
}

// NewOscillator creates an unobserved oscillator. The hidden
// superposition value is drawn from rng so runs stay reproducible.
func NewOscillator(frequency float64, depth, maxDepth int, rng *rand.Rand) (*Oscillator, error) {
	if frequency <= 0 {
		return nil, fmt.Errorf("%w: frequency %.4f must be > 0", ErrConfig, frequency)
	}
	if depth < 0 || maxDepth < 0 {
		return nil, fmt.Errorf("%w: depth %d / max depth %d must be >= 0", ErrConfig, depth, maxDepth)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrConfig)
	}
	return &Oscillator{
		Frequency:     frequency,
		Depth:         depth,
		MaxDepth:      maxDepth,
		superposition: rng.Float64(),
		partner:       noPartner,
	}, nil
}

// Observed reports whether the oscillator has collapsed.
func (o *Oscillator) Observed() bool {
	return o.observed
}

// Observe collapses the superposition to a binary value and returns it.
// Idempotent: later calls return the same value without re-randomizing.
// Entanglement propagation is handled by the owning Ensemble; see
// Ensemble.Observe.
func (o *Oscillator) Observe() float64 {
	o.observed = true
	if o.superposition > 0.5 {
		return 1.0
	}
	return 0.0
}

// SetDecoherenceDeadline arms a time-triggered forced collapse at the
// given absolute timestamp on the caller's simulated clock.
func (o *Oscillator) SetDecoherenceDeadline(at float64) {
	o.deadline = at
	o.hasDeadline = true
}

// MaybeDecohere forces collapse when a deadline is set and now has
// reached it. Returns true only when this call performed the collapse.
func (o *Oscillator) MaybeDecohere(now float64) bool {
	if o.observed || !o.hasDeadline {
		return false
	}
	if now >= o.deadline {
		o.Observe()
		return true
	}
	return false
}

// Wave samples amplitude*sin(2πft + phase) at each point of t.
// Observed oscillators have full presence; unobserved ones contribute
// a faint background signal.
func (o *Oscillator) Wave(t []float64) []float64 {
	amp := unobservedAmplitude
	if o.observed {
		amp = 1.0
	}
	out := make([]float64, len(t))
	for i, ti := range t {
		out[i] = amp * math.Sin(2*math.Pi*o.Frequency*ti+o.Phase)
	}
	return out
}

// SpawnChildren creates the two octave harmonics (2x and 3x frequency)
// one depth deeper. Returns nil, nil at max depth.
func (o *Oscillator) SpawnChildren(rng *rand.Rand) (*Oscillator, *Oscillator) {
	if o.Depth >= o.MaxDepth {
		return nil, nil
	}
	a, err := NewOscillator(o.Frequency*2, o.Depth+1, o.MaxDepth, rng)
	if err != nil {
		return nil, nil
	}
	b, err := NewOscillator(o.Frequency*3, o.Depth+1, o.MaxDepth, rng)
	if err != nil {
		return nil, nil
	}
	return a, b
}

// #endregion oscillator
