package field

import (
	"fmt"
	"math"
	"math/rand"
)

// #region ensemble

// Ensemble is an ordered collection of Oscillators plus a cumulative
// omega-time counter. It owns the oscillators and the single seedable
// random source that every stochastic operation (superposition draws,
// noise, probabilistic observation, entanglement) flows through.
// Insertion order is significant for display only; coherence is
// order-independent.
type Ensemble struct {
	oscillators []*Oscillator
	omegaTime   float64
	rng         *rand.Rand
}

// NewEnsemble creates an empty ensemble with its own seeded generator.
func NewEnsemble(seed int64) *Ensemble {
	return &Ensemble{rng: rand.New(rand.NewSource(seed))}
}

// Rand exposes the ensemble's generator so callers constructing
// oscillators outside Spawn share the same stream.
func (e *Ensemble) Rand() *rand.Rand {
	return e.rng
}

// Add appends an oscillator. No validation: duplicates are permitted
// and each appearance counts once in coherence averages, so callers
// must avoid unintentional duplication.
func (e *Ensemble) Add(o *Oscillator) {
	e.oscillators = append(e.oscillators, o)
}

// AddAll appends every oscillator in order.
func (e *Ensemble) AddAll(os []*Oscillator) {
	e.oscillators = append(e.oscillators, os...)
}

// Spawn constructs an oscillator from the ensemble's generator,
// appends it, and returns the shared handle.
func (e *Ensemble) Spawn(frequency float64, depth, maxDepth int) (*Oscillator, error) {
	o, err := NewOscillator(frequency, depth, maxDepth, e.rng)
	if err != nil {
		return nil, err
	}
	e.Add(o)
	return o, nil
}

// Len returns the number of oscillators.
func (e *Ensemble) Len() int {
	return len(e.oscillators)
}

// At returns the oscillator at index i. Policies mutate state through
// these shared handles so written-back phases are visible to every
// subsequent coherence computation in the same step.
func (e *Ensemble) At(i int) *Oscillator {
	return e.oscillators[i]
}

// Oscillators returns the backing slice. Callers must not reorder it.
func (e *Ensemble) Oscillators() []*Oscillator {
	return e.oscillators
}

// #endregion ensemble

// #region coherence

// Coherence is the global order parameter |mean(exp(i*phase))|.
// Strictly in [0, 1]: 1 means all phases identical modulo 2π, 0 means
// uniformly scattered. An empty ensemble is vacuously fully coherent
// by documented convention and returns 1.0.
func (e *Ensemble) Coherence() float64 {
	if len(e.oscillators) == 0 {
		return 1.0
	}
	var sumCos, sumSin float64
	for _, o := range e.oscillators {
		sumCos += math.Cos(o.Phase)
		sumSin += math.Sin(o.Phase)
	}
	n := float64(len(e.oscillators))
	return math.Hypot(sumCos/n, sumSin/n)
}

// ObservedCount reports how many oscillators have collapsed.
func (e *Ensemble) ObservedCount() int {
	count := 0
	for _, o := range e.oscillators {
		if o.observed {
			count++
		}
	}
	return count
}

// EmergentTime is the mean absolute phase across the field: 0 for a
// static system, growing with activity.
func (e *Ensemble) EmergentTime() float64 {
	if len(e.oscillators) == 0 {
		return 0.0
	}
	var sum float64
	for _, o := range e.oscillators {
		sum += math.Abs(o.Phase)
	}
	return sum / float64(len(e.oscillators))
}

// #endregion coherence

// #region noise

// ApplyNoise adds an independent N(0, entropyFactor) perturbation to
// every oscillator's phase using the ensemble generator. This is the
// sole entropy source: drift is i.i.d. per call, not scaled by dt, so
// variance accumulates linearly in call count.
func (e *Ensemble) ApplyNoise(entropyFactor float64) {
	e.ApplyNoiseWith(entropyFactor, e.rng)
}

// ApplyNoiseWith applies the same perturbation from an explicit
// generator, for drivers that need identical noise across ensembles.
func (e *Ensemble) ApplyNoiseWith(entropyFactor float64, rng *rand.Rand) {
	for _, o := range e.oscillators {
		o.Phase += rng.NormFloat64() * entropyFactor
	}
}

// AdvanceTime increments omega time by dt times the summed absolute
// frequency: a monotonically non-decreasing activity-weighted clock.
// An empty ensemble leaves it unchanged.
func (e *Ensemble) AdvanceTime(dt float64) {
	if len(e.oscillators) == 0 {
		return
	}
	var total float64
	for _, o := range e.oscillators {
		total += math.Abs(o.Frequency)
	}
	e.omegaTime += dt * total
}

// OmegaTime returns the accumulated activity-weighted time.
func (e *Ensemble) OmegaTime() float64 {
	return e.omegaTime
}

// #endregion noise

// #region observation

// Observe collapses the oscillator at index i and returns its binary
// value. If the oscillator is entangled, the shared superposition
// value and the observed flag propagate to the partner atomically
// from the caller's point of view.
func (e *Ensemble) Observe(i int) float64 {
	o := e.oscillators[i]
	val := o.Observe()
	if o.partner != noPartner && o.partner < len(e.oscillators) {
		p := e.oscillators[o.partner]
		p.superposition = o.superposition
		p.observed = true
	}
	return val
}

// ObserveAll independently observes each unobserved oscillator with
// the given probability (clamped to [0,1]) and returns how many were
// newly observed. probability <= 0 or an empty ensemble is a no-op.
func (e *Ensemble) ObserveAll(probability float64) int {
	if len(e.oscillators) == 0 || probability <= 0 {
		return 0
	}
	if probability > 1 {
		probability = 1
	}
	count := 0
	for i, o := range e.oscillators {
		if !o.observed && e.rng.Float64() < probability {
			e.Observe(i)
			count++
		}
	}
	return count
}

// Entangle links oscillators i and j to share a collapse outcome,
// drawing one shared superposition value. Must precede any observation
// on either side: entangling an observed oscillator is an ErrState.
func (e *Ensemble) Entangle(i, j int) error {
	if i < 0 || j < 0 || i >= len(e.oscillators) || j >= len(e.oscillators) {
		return fmt.Errorf("%w: entangle indices %d, %d out of range [0,%d)", ErrConfig, i, j, len(e.oscillators))
	}
	if i == j {
		return fmt.Errorf("%w: cannot entangle oscillator %d with itself", ErrConfig, i)
	}
	a, b := e.oscillators[i], e.oscillators[j]
	if a.observed || b.observed {
		return fmt.Errorf("%w: cannot entangle an observed oscillator", ErrState)
	}
	shared := e.rng.Float64()
	a.superposition = shared
	b.superposition = shared
	a.partner = j
	b.partner = i
	return nil
}

// MaybeDecohereAll forces time-triggered collapse on every oscillator
// whose deadline has passed, routing through Observe so entangled
// partners follow. Returns how many collapsed this call.
func (e *Ensemble) MaybeDecohereAll(now float64) int {
	count := 0
	for i, o := range e.oscillators {
		if o.observed || !o.hasDeadline {
			continue
		}
		if now >= o.deadline {
			e.Observe(i)
			count++
		}
	}
	return count
}

// #endregion observation

// #region harmonics

// HarmonicMembers returns the observed oscillators whose frequency is
// within tolerance of an integer multiple of refFreq.
func (e *Ensemble) HarmonicMembers(refFreq, tolerance float64) []*Oscillator {
	if refFreq <= 0 {
		return nil
	}
	var members []*Oscillator
	for _, o := range e.oscillators {
		if !o.observed {
			continue
		}
		ratio := o.Frequency / refFreq
		if math.Abs(ratio-math.Round(ratio)) < tolerance {
			members = append(members, o)
		}
	}
	return members
}

// Render samples the interference pattern: the elementwise sum of
// every oscillator's wave. Pure function of current state.
func (e *Ensemble) Render(t []float64) []float64 {
	out := make([]float64, len(t))
	for _, o := range e.oscillators {
		w := o.Wave(t)
		for i := range out {
			out[i] += w[i]
		}
	}
	return out
}

// #endregion harmonics
