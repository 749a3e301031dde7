package experiment

import (
	"math"

	"go.uber.org/zap"

	"github.com/kdalton/phase-ensemble/internal/field"
	"github.com/kdalton/phase-ensemble/internal/metrics"
)

// #region convergence

// runConvergence runs the full lifecycle: grow a fractal universe, let
// noise tear its coherence down for the first half of the run, then
// hand it to an observer whose convergence loop collapses members and
// retunes itself toward the target frequency for the second half.
func runConvergence(cfg Config, logger *zap.Logger) (*Result, error) {
	cv := cfg.Convergence

	ens := field.NewEnsemble(cfg.Run.Seed)
	particles, err := field.GenerateFractalUniverse(1.0, cv.Octaves, ens.Rand())
	if err != nil {
		return nil, err
	}
	ens.AddAll(particles)
	initialCoherence := ens.Coherence()

	rec := metrics.NewRecorder("coherence")
	noiseSteps := cfg.Run.Iterations / 2
	for iter := 0; iter < noiseSteps; iter++ {
		ens.ApplyNoise(cv.EntropyFactor)
		ens.AdvanceTime(cv.DT)
		rec.Append("coherence", ens.Coherence())
	}
	fallenCoherence := ens.Coherence()

	observer := NewObserver(cv.ObserverFreq, cv.LearningRate)
	convergeSteps := cfg.Run.Iterations - noiseSteps
	history := observer.ResonanceConvergenceLoop(ens, convergeSteps, cv.TargetFreq, cv.DT)
	for _, c := range history {
		rec.Append("coherence", c)
	}
	finalCoherence := ens.Coherence()
	observedFraction := float64(ens.ObservedCount()) / float64(ens.Len())

	logger.Info("convergence complete",
		zap.Float64("initial_coherence", initialCoherence),
		zap.Float64("fallen_coherence", fallenCoherence),
		zap.Float64("final_coherence", finalCoherence),
		zap.Float64("observer_frequency", observer.Frequency),
		zap.Float64("observed_fraction", observedFraction),
	)

	summary := map[string]float64{
		"initial_coherence":  initialCoherence,
		"fallen_coherence":   fallenCoherence,
		"final_coherence":    finalCoherence,
		"observer_frequency": observer.Frequency,
		"observed_fraction":  observedFraction,
		"omega_time":         ens.OmegaTime(),
	}

	finding := "the convergence loop could not move the observer toward the target"
	if math.Abs(observer.Frequency-cv.TargetFreq) < math.Abs(cv.ObserverFreq-cv.TargetFreq) {
		finding = "the observer converged toward the target frequency in proportion to the field's dissonance"
	}

	return &Result{
		Experiment: "convergence",
		Seed:       cfg.Run.Seed,
		Iterations: cfg.Run.Iterations,
		Summary:    summary,
		Series:     rec.AllSeries(),
		Finding:    finding,
	}, nil
}

// #endregion convergence
