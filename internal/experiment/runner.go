// Package experiment wires the field, metrics, trust, and policy
// layers into the named experiment drivers. Each driver builds its
// ensembles from the run seed, steps the shared noise/consensus/lock
// loop (or its own variant), and returns a Result: scalar summary,
// full per-step series, final trust vectors, and a one-line finding.
package experiment

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kdalton/phase-ensemble/internal/field"
	"github.com/kdalton/phase-ensemble/internal/metrics"
	"github.com/kdalton/phase-ensemble/internal/policy"
	"github.com/kdalton/phase-ensemble/internal/trust"
)

// #region result

// Result is everything a run produces.
type Result struct {
	Experiment string               `json:"experiment"`
	Seed       int64                `json:"seed"`
	Iterations int                  `json:"iterations"`
	Summary    map[string]float64   `json:"summary"`
	Series     map[string][]float64 `json:"series"`
	Weights    map[string][]float64 `json:"weights,omitempty"`
	Finding    string               `json:"finding"`
}

// #endregion result

// #region registry

// Names lists every runnable experiment in display order.
func Names() []string {
	return []string{
		"council",
		"self_healing",
		"federation",
		"async_observers",
		"standing_wave",
		"chronos",
		"convergence",
		"first_word",
		"harmonic_interaction",
		"polyphony",
	}
}

// Run dispatches to the named driver. A nil logger is replaced with a
// no-op logger so drivers can log unconditionally.
func Run(name string, cfg Config, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch name {
	case "council":
		return runCouncil(cfg, logger)
	case "self_healing":
		return runSelfHealing(cfg, logger)
	case "federation":
		return runFederation(cfg, logger)
	case "async_observers":
		return runAsyncObservers(cfg, logger)
	case "standing_wave":
		return runStandingWave(cfg, logger)
	case "chronos":
		return runChronos(cfg, logger)
	case "convergence":
		return runConvergence(cfg, logger)
	case "first_word":
		return runFirstWord(cfg, logger)
	case "harmonic_interaction":
		return runHarmonicInteraction(cfg, logger)
	case "polyphony":
		return runPolyphony(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: unknown experiment %q", field.ErrConfig, name)
	}
}

// #endregion registry

// #region shared-loop

// councilLoop is the step engine shared by the council-style drivers:
// background noise, observer phases from a schedule, one consensus
// phase from the policy, alignment-driven trust updates, and a
// periodic lock of the consensus into designated oscillators.
type councilLoop struct {
	ens       *field.Ensemble
	wordIdx   []int
	pol       policy.Policy
	tracker   *trust.Tracker
	lr        float64
	decay     float64
	lockEvery int
	entropy   float64

	// phasesFn yields the observer phases for a step. participationFn
	// is optional; nil means full participation every step. When
	// participationAsAlignment is set the tracker decays by alignment
	// shortfall instead (the hysteresis-council rule).
	phasesFn                 func(iter int) []float64
	participationFn          func(iter int) []float64
	participationAsAlignment bool
}

// step advances one iteration and records into rec under the prefix.
func (l *councilLoop) step(iter int, rec *metrics.Recorder, prefix string) error {
	l.ens.ApplyNoise(l.entropy)

	phases := l.phasesFn(iter)
	consensus, err := l.pol.Apply(phases)
	if err != nil {
		return err
	}
	aligns := metrics.AlignmentScores(phases, consensus)

	if l.tracker != nil {
		part := aligns
		if !l.participationAsAlignment {
			part = nil
			if l.participationFn != nil {
				part = l.participationFn(iter)
			}
		}
		if err := l.tracker.Update(aligns, part, l.lr, l.decay); err != nil {
			return err
		}
	}

	if l.lockEvery > 0 && iter%l.lockEvery == 0 {
		for _, idx := range l.wordIdx {
			l.ens.At(idx).Phase = consensus
			l.ens.Observe(idx)
		}
	}

	wordPhases := make([]float64, len(l.wordIdx))
	for i, idx := range l.wordIdx {
		wordPhases[i] = l.ens.At(idx).Phase
	}

	rec.Append(prefix+"system_coherence", l.ens.Coherence())
	rec.Append(prefix+"cross_coherence", metrics.PairwiseCrossCoherence(wordPhases))
	rec.Append(prefix+"consensus_index", metrics.Mean(aligns))
	rec.Append(prefix+"consensus_phase", consensus)
	return nil
}

// run steps the loop for the full iteration count.
func (l *councilLoop) run(iterations int, rec *metrics.Recorder, prefix string, logger *zap.Logger) error {
	for iter := 0; iter < iterations; iter++ {
		if err := l.step(iter, rec, prefix); err != nil {
			return fmt.Errorf("step %d: %w", iter, err)
		}
		if (iter+1)%200 == 0 {
			logger.Debug("loop progress",
				zap.String("mode", prefix),
				zap.Int("iteration", iter+1),
				zap.Float64("system_coherence", rec.Final(prefix+"system_coherence")),
				zap.Float64("consensus_index", rec.Final(prefix+"consensus_index")),
			)
		}
	}
	return nil
}

// #endregion shared-loop

// #region universe-builders

// buildCouncilUniverse seeds an ensemble with an observed low-frequency
// bed plus the injected council triad (phase 0, auto-observed) and
// returns the triad's indices.
func buildCouncilUniverse(seed int64, bedFreqs, triadFreqs []float64) (*field.Ensemble, []int, error) {
	ens := field.NewEnsemble(seed)
	for _, f := range bedFreqs {
		if _, err := ens.Spawn(f, 0, 6); err != nil {
			return nil, nil, err
		}
		ens.Observe(ens.Len() - 1)
	}
	obs := NewObserver(0, 0)
	wordIdx := make([]int, 0, len(triadFreqs))
	for _, f := range triadFreqs {
		if _, err := obs.InjectFrequency(ens, f, 0.0, true); err != nil {
			return nil, nil, err
		}
		wordIdx = append(wordIdx, ens.Len()-1)
	}
	return ens, wordIdx, nil
}

// lastWindowMean averages the final window samples of a series.
func lastWindowMean(series []float64, window int) float64 {
	if len(series) == 0 {
		return 0.0
	}
	if window > len(series) {
		window = len(series)
	}
	return metrics.Mean(series[len(series)-window:])
}

// growthRate is (final-first)/steps for a series, 0 when too short.
func growthRate(series []float64) float64 {
	if len(series) < 2 {
		return 0.0
	}
	return (series[len(series)-1] - series[0]) / float64(len(series)-1)
}

func boolMetric(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

// #endregion universe-builders
