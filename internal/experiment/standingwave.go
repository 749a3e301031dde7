package experiment

import (
	"math"

	"go.uber.org/zap"

	"github.com/kdalton/phase-ensemble/internal/field"
	"github.com/kdalton/phase-ensemble/internal/metrics"
)

// #region standing-wave

// swiWindow is how many trailing coherence samples the standing-wave
// index compares against.
const swiWindow = 10

// standingWaveIndex scores coherence stability: 1 when the newest
// sample sits on the trailing mean, falling linearly to 0 as it
// deviates by 0.1 or more.
func standingWaveIndex(history []float64, current float64) float64 {
	if len(history) == 0 {
		return 1.0
	}
	window := history
	if len(window) > swiWindow {
		window = window[len(window)-swiWindow:]
	}
	return 1.0 - math.Min(1.0, math.Abs(current-metrics.Mean(window))*10.0)
}

// runStandingWave compares four universes under identical noise
// schedules: no injected word, a word left alone, a word re-locked to
// phase zero on a fixed cadence, and a word at an exact harmonic of
// the bed. Persistence is how many steps coherence stays above the
// threshold.
func runStandingWave(cfg Config, logger *zap.Logger) (*Result, error) {
	sw := cfg.StandingWave
	rec := metrics.NewRecorder()
	summary := make(map[string]float64)

	modes := []struct {
		name     string
		wordFreq float64 // 0 means no word
		lock     bool
	}{
		{"baseline", 0, false},
		{"simple", sw.WordFreq, false},
		{"locked", sw.WordFreq, true},
		{"harmonic", sw.HarmonicFreq, false},
	}

	for _, mode := range modes {
		ens := field.NewEnsemble(cfg.Run.Seed)
		for _, f := range cfg.Council.BedFreqs {
			if _, err := ens.Spawn(f, 0, 6); err != nil {
				return nil, err
			}
			ens.Observe(ens.Len() - 1)
		}
		wordIdx := -1
		if mode.wordFreq > 0 {
			obs := NewObserver(0, 0)
			if _, err := obs.InjectFrequency(ens, mode.wordFreq, 0.0, true); err != nil {
				return nil, err
			}
			wordIdx = ens.Len() - 1
		}

		persistence := cfg.Run.Iterations
		for iter := 0; iter < cfg.Run.Iterations; iter++ {
			ens.ApplyNoise(sw.EntropyFactor)
			if mode.lock && wordIdx >= 0 && sw.LockInterval > 0 && iter%sw.LockInterval == 0 {
				ens.At(wordIdx).Phase = 0.0
			}

			coherence := ens.Coherence()
			swi := standingWaveIndex(rec.Series(mode.name+"_coherence"), coherence)
			rec.Append(mode.name+"_coherence", coherence)
			rec.Append(mode.name+"_swi", swi)
			wordPhase := 0.0
			if wordIdx >= 0 {
				wordPhase = ens.At(wordIdx).Phase
			}
			rec.Append(mode.name+"_word_phase", wordPhase)

			if coherence < sw.CoherenceThreshold && persistence == cfg.Run.Iterations {
				persistence = iter
			}
		}

		coh := rec.Series(mode.name + "_coherence")
		active := lastWindowMean(rec.Series(mode.name+"_swi"), 5) > sw.SWIThreshold
		summary[mode.name+"_coherence_peak"] = rec.Max(mode.name + "_coherence")
		summary[mode.name+"_coherence_final"] = rec.Final(mode.name + "_coherence")
		summary[mode.name+"_coherence_min"] = minOf(coh)
		summary[mode.name+"_persistence"] = float64(persistence)
		summary[mode.name+"_swi_final"] = rec.Final(mode.name + "_swi")
		summary[mode.name+"_standing"] = boolMetric(active)

		logger.Info("standing wave mode complete",
			zap.String("mode", mode.name),
			zap.Int("persistence", persistence),
			zap.Bool("standing", active),
		)
	}

	finding := "locking did not extend persistence over the free-running word"
	if summary["locked_persistence"] >= summary["simple_persistence"] &&
		summary["locked_standing"] == 1.0 {
		finding = "periodic phase locking sustained a standing wave longer than the free-running word"
	}

	return &Result{
		Experiment: "standing_wave",
		Seed:       cfg.Run.Seed,
		Iterations: cfg.Run.Iterations,
		Summary:    summary,
		Series:     rec.AllSeries(),
		Finding:    finding,
	}, nil
}

func minOf(series []float64) float64 {
	if len(series) == 0 {
		return 0.0
	}
	min := math.Inf(1)
	for _, v := range series {
		if v < min {
			min = v
		}
	}
	return min
}

// #endregion standing-wave
