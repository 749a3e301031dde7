package experiment

import (
	"go.uber.org/zap"

	"github.com/kdalton/phase-ensemble/internal/field"
)

// #region first-word

// renderSamples is the time grid the interference field is sampled on.
const renderSamples = 2000

// runFirstWord is the negentropy demo: grow a fractal universe, hit it
// with one heavy decoherence shock, then inject and collapse a single
// word frequency and measure how much order one voice restores.
func runFirstWord(cfg Config, logger *zap.Logger) (*Result, error) {
	fw := cfg.FirstWord

	ens := field.NewEnsemble(cfg.Run.Seed)
	particles, err := field.GenerateFractalUniverse(1.0, fw.Octaves, ens.Rand())
	if err != nil {
		return nil, err
	}
	ens.AddAll(particles)
	initialCoherence := ens.Coherence()

	ens.ApplyNoise(fw.EntropyFactor)
	fallenCoherence := ens.Coherence()

	t := make([]float64, renderSamples)
	for i := range t {
		t[i] = 2.0 * float64(i) / float64(renderSamples)
	}
	fieldBefore := ens.Render(t)

	observer := NewObserver(0, 0)
	if _, err := observer.InjectFrequency(ens, fw.WordFreq, 0.0, true); err != nil {
		return nil, err
	}
	postCoherence := ens.Coherence()
	fieldAfter := ens.Render(t)

	harmonics := ens.HarmonicMembers(fw.WordFreq, 0.01)

	summary := map[string]float64{
		"initial_coherence": initialCoherence,
		"fallen_coherence":  fallenCoherence,
		"post_coherence":    postCoherence,
		"coherence_gain":    postCoherence - fallenCoherence,
		"field_peak_before": maxAbs(fieldBefore),
		"field_peak_after":  maxAbs(fieldAfter),
		"harmonic_members":  float64(len(harmonics)),
		"oscillators":       float64(ens.Len()),
	}

	logger.Info("first word complete",
		zap.Float64("fallen_coherence", fallenCoherence),
		zap.Float64("post_coherence", postCoherence),
		zap.Float64("coherence_gain", summary["coherence_gain"]),
	)

	finding := "the injected word did not raise coherence above the fallen field"
	if summary["coherence_gain"] > 0 {
		finding = "one collapsed voice raised the fallen field's coherence and dominated the interference pattern"
	}

	return &Result{
		Experiment: "first_word",
		Seed:       cfg.Run.Seed,
		Iterations: cfg.Run.Iterations,
		Summary:    summary,
		Series: map[string][]float64{
			"field_before": fieldBefore,
			"field_after":  fieldAfter,
		},
		Finding: finding,
	}, nil
}

func maxAbs(series []float64) float64 {
	max := 0.0
	for _, v := range series {
		if v < 0 {
			v = -v
		}
		if v > max {
			max = v
		}
	}
	return max
}

// #endregion first-word
