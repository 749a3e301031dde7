package experiment

import (
	"math"

	"go.uber.org/zap"

	"github.com/kdalton/phase-ensemble/internal/field"
	"github.com/kdalton/phase-ensemble/internal/metrics"
	"github.com/kdalton/phase-ensemble/internal/policy"
	"github.com/kdalton/phase-ensemble/internal/trust"
)

// #region federation

// federationPhasesA is council A's schedule: two steady members and one
// that spikes for part of every 70-step cycle.
func federationPhasesA(iter int) []float64 {
	i := float64(iter)
	a := 0.02 * math.Sin(i/9.0)
	b := 0.02 * math.Cos(i/11.0)
	c := 0.05 * math.Sin(i/6.0)
	if iter%70 < 15 {
		c = 0.3
	}
	return []float64{a, b, c}
}

// federationPhasesB is council B's schedule, centered on its offset.
func federationPhasesB(iter int, offset float64) []float64 {
	i := float64(iter)
	return []float64{
		offset + 0.02*math.Sin(i/10.0),
		offset + 0.02*math.Cos(i/12.0),
		offset + 0.1*math.Sin(i/7.0),
	}
}

// fedCouncil is one side of the federation: its universe, locked triad
// indices, and hysteresis trust tracker.
type fedCouncil struct {
	ens     *field.Ensemble
	wordIdx []int
	tracker *trust.Tracker
}

func newFedCouncil(seed int64, cfg Config, phaseOffset float64) (*fedCouncil, error) {
	ens := field.NewEnsemble(seed)
	obs := NewObserver(0, 0)
	wordIdx := make([]int, 0, len(cfg.Council.TriadFreqs))
	for _, f := range cfg.Council.TriadFreqs {
		if _, err := obs.InjectFrequency(ens, f, phaseOffset, true); err != nil {
			return nil, err
		}
		wordIdx = append(wordIdx, ens.Len()-1)
	}
	tracker, err := trust.New([]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, trust.Config{
		Floor:      cfg.Federation.WeightFloor,
		Hysteresis: cfg.Federation.Hysteresis,
	})
	if err != nil {
		return nil, err
	}
	return &fedCouncil{ens: ens, wordIdx: wordIdx, tracker: tracker}, nil
}

// stepConsensus applies noise, computes the council's trust-weighted
// consensus from already-reconciled phases, updates the tracker with
// the alignment-shortfall decay rule, and locks on cadence.
func (c *fedCouncil) stepConsensus(iter int, phases []float64, cfg FederationConfig) (consensus, alignIndex float64, err error) {
	c.ens.ApplyNoise(cfg.EntropyFactor)

	pol := policy.TrustWeighted{Tracker: c.tracker}
	consensus, err = pol.Apply(phases)
	if err != nil {
		return 0, 0, err
	}
	aligns := metrics.AlignmentScores(phases, consensus)
	if err := c.tracker.Update(aligns, aligns, cfg.LearningRate, cfg.DecayRate); err != nil {
		return 0, 0, err
	}

	if cfg.LockInterval > 0 && iter%cfg.LockInterval == 0 {
		for _, idx := range c.wordIdx {
			c.ens.At(idx).Phase = consensus
			c.ens.Observe(idx)
		}
	}
	return consensus, metrics.Mean(aligns), nil
}

func (c *fedCouncil) wordPhases() []float64 {
	out := make([]float64, len(c.wordIdx))
	for i, idx := range c.wordIdx {
		out[i] = c.ens.At(idx).Phase
	}
	return out
}

// runFederation compares two councils evolving independently against
// the same pair coupled by a median nudge on a coarse cadence. The
// independent mode runs the reconciler with zero strength on the same
// cadence as the federated mode, so both sync indices average samples
// taken at the same steps.
func runFederation(cfg Config, logger *zap.Logger) (*Result, error) {
	fc := cfg.Federation
	rec := metrics.NewRecorder()
	weights := make(map[string][]float64)
	syncIndex := make(map[string]float64)

	for _, mode := range []string{"independent", "federated"} {
		councilA, err := newFedCouncil(cfg.Run.Seed, cfg, 0.0)
		if err != nil {
			return nil, err
		}
		councilB, err := newFedCouncil(cfg.Run.Seed+1, cfg, fc.OffsetB)
		if err != nil {
			return nil, err
		}

		strength := 0.0
		if mode == "federated" {
			strength = fc.SyncStrength
		}
		fed := policy.NewFederation(strength)

		for iter := 0; iter < cfg.Run.Iterations; iter++ {
			phasesA := federationPhasesA(iter)
			phasesB := federationPhasesB(iter, fc.OffsetB)

			if fc.ReconcileInterval > 0 && iter%fc.ReconcileInterval == 0 {
				var sync float64
				phasesA, phasesB, sync = fed.Reconcile(phasesA, phasesB)
				rec.Append(mode+"_sync", sync)
			}

			_, alignA, err := councilA.stepConsensus(iter, phasesA, fc)
			if err != nil {
				return nil, err
			}
			_, alignB, err := councilB.stepConsensus(iter, phasesB, fc)
			if err != nil {
				return nil, err
			}

			crossFed := metrics.PairwiseCrossCoherence(
				append(councilA.wordPhases(), councilB.wordPhases()...))

			rec.Append(mode+"_system_coherence_a", councilA.ens.Coherence())
			rec.Append(mode+"_system_coherence_b", councilB.ens.Coherence())
			rec.Append(mode+"_cross_federation", crossFed)
			rec.Append(mode+"_consensus_index", (alignA+alignB)/2.0)
			rec.Append(mode+"_autonomy", 1.0-crossFed)
		}

		weights[mode+"_a"] = councilA.tracker.Weights()
		weights[mode+"_b"] = councilB.tracker.Weights()
		syncIndex[mode] = fed.SyncIndex()
		logger.Info("federation mode complete",
			zap.String("mode", mode),
			zap.Float64("sync_index", fed.SyncIndex()),
			zap.Float64("cross_federation_avg", rec.Mean(mode+"_cross_federation")),
		)
	}

	summary := map[string]float64{
		"independent_cross_federation": rec.Mean("independent_cross_federation"),
		"independent_consensus_index":  rec.Mean("independent_consensus_index"),
		"independent_autonomy":         rec.Mean("independent_autonomy"),
		"independent_sync_index":       syncIndex["independent"],
		"federated_cross_federation":   rec.Mean("federated_cross_federation"),
		"federated_consensus_index":    rec.Mean("federated_consensus_index"),
		"federated_autonomy":           rec.Mean("federated_autonomy"),
		"federated_sync_index":         syncIndex["federated"],
	}

	finding := "the median nudge did not raise cross-federation coherence"
	if summary["federated_cross_federation"] > summary["independent_cross_federation"] {
		finding = "a small median nudge on a coarse cadence raised cross-federation coherence while both councils kept local autonomy"
	}

	return &Result{
		Experiment: "federation",
		Seed:       cfg.Run.Seed,
		Iterations: cfg.Run.Iterations,
		Summary:    summary,
		Series:     rec.AllSeries(),
		Weights:    weights,
		Finding:    finding,
	}, nil
}

// #endregion federation
