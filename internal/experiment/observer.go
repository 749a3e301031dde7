package experiment

import (
	"math"

	"github.com/kdalton/phase-ensemble/internal/field"
)

// #region observer

// Observer is the external tuning agent: it injects new frequencies
// into an ensemble and, in the convergence loop, retunes its own
// frequency toward a target in proportion to the field's dissonance.
type Observer struct {
	Frequency    float64
	LearningRate float64
}

// NewObserver creates an observer. Frequency only matters to the
// convergence loop; injection-only callers may pass zero.
func NewObserver(frequency, learningRate float64) *Observer {
	return &Observer{Frequency: frequency, LearningRate: learningRate}
}

// InjectFrequency spawns a fresh oscillator at the given frequency and
// phase into the ensemble, optionally collapsing it immediately so it
// contributes at full amplitude. The new oscillator inherits the
// ensemble's max depth (from its first member, 6 when empty).
func (o *Observer) InjectFrequency(ens *field.Ensemble, frequency, phase float64, autoObserve bool) (*field.Oscillator, error) {
	maxDepth := 6
	if ens.Len() > 0 {
		maxDepth = ens.At(0).MaxDepth
	}
	osc, err := ens.Spawn(frequency, 0, maxDepth)
	if err != nil {
		return nil, err
	}
	osc.Phase = phase
	if autoObserve {
		ens.Observe(ens.Len() - 1)
	}
	return osc, nil
}

// ResonanceConvergenceLoop runs the closed feedback loop: each step
// measures coherence, derives dissonance = 1 - coherence, retunes the
// observer's frequency toward targetFreq by learningRate*dissonance,
// collapses unobserved members with that same step size as the
// probability, and advances omega time. Returns the per-step coherence
// trace (measured before that step's collapses).
func (o *Observer) ResonanceConvergenceLoop(ens *field.Ensemble, steps int, targetFreq, dt float64) []float64 {
	history := make([]float64, 0, steps)
	for i := 0; i < steps; i++ {
		coherence := ens.Coherence()
		dissonance := 1.0 - coherence
		step := o.LearningRate * dissonance
		o.Frequency -= step * (o.Frequency - targetFreq)
		ens.ObserveAll(math.Min(1.0, step))
		ens.AdvanceTime(dt)
		history = append(history, coherence)
	}
	return history
}

// #endregion observer
