package experiment

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/kdalton/phase-ensemble/internal/field"
)

// #region config-types

// Config bundles the run selector and every experiment's parameters.
// Defaults mirror the reference runs; a TOML file overrides them.
type Config struct {
	Run          RunConfig          `toml:"run"`
	Council      CouncilConfig      `toml:"council"`
	SelfHealing  SelfHealingConfig  `toml:"self_healing"`
	Federation   FederationConfig   `toml:"federation"`
	Async        AsyncConfig        `toml:"async_observers"`
	StandingWave StandingWaveConfig `toml:"standing_wave"`
	Chronos      ChronosConfig      `toml:"chronos"`
	Convergence  ConvergenceConfig  `toml:"convergence"`
	FirstWord    FirstWordConfig    `toml:"first_word"`
	Harmonic     HarmonicConfig     `toml:"harmonic_interaction"`
	Polyphony    PolyphonyConfig    `toml:"polyphony"`
}

// RunConfig selects what to run and how long.
type RunConfig struct {
	Experiment string `toml:"experiment"`
	Iterations int    `toml:"iterations"`
	Seed       int64  `toml:"seed"`
}

// CouncilConfig drives the trust-weighted council comparison.
type CouncilConfig struct {
	EntropyFactor float64   `toml:"entropy_factor"`
	LearningRate  float64   `toml:"learning_rate"`
	LockInterval  int       `toml:"lock_interval"`
	WeightFloor   float64   `toml:"weight_floor"`
	BedFreqs      []float64 `toml:"bed_freqs"`
	TriadFreqs    []float64 `toml:"triad_freqs"`
}

// SelfHealingConfig drives the trust-decay council comparison.
type SelfHealingConfig struct {
	EntropyFactor float64 `toml:"entropy_factor"`
	LearningRate  float64 `toml:"learning_rate"`
	DecayRate     float64 `toml:"decay_rate"`
	LockInterval  int     `toml:"lock_interval"`
	WeightFloor   float64 `toml:"weight_floor"`
}

// FederationConfig drives the two-council hysteresis federation.
type FederationConfig struct {
	EntropyFactor     float64 `toml:"entropy_factor"`
	LearningRate      float64 `toml:"learning_rate"`
	DecayRate         float64 `toml:"decay_rate"`
	Hysteresis        float64 `toml:"hysteresis"`
	SyncStrength      float64 `toml:"sync_strength"`
	LockInterval      int     `toml:"lock_interval"`
	ReconcileInterval int     `toml:"reconcile_interval"`
	OffsetB           float64 `toml:"offset_b"`
	WeightFloor       float64 `toml:"weight_floor"`
}

// AsyncConfig drives the asynchronous-observers threshold blend.
type AsyncConfig struct {
	EntropyFactor float64 `toml:"entropy_factor"`
	Threshold     float64 `toml:"threshold"`
	PrimaryWeight float64 `toml:"primary_weight"`
	LockInterval  int     `toml:"lock_interval"`
}

// StandingWaveConfig drives the resonance-locking persistence test.
type StandingWaveConfig struct {
	EntropyFactor      float64 `toml:"entropy_factor"`
	WordFreq           float64 `toml:"word_freq"`
	HarmonicFreq       float64 `toml:"harmonic_freq"`
	LockInterval       int     `toml:"lock_interval"`
	CoherenceThreshold float64 `toml:"coherence_threshold"`
	SWIThreshold       float64 `toml:"swi_threshold"`
}

// ChronosConfig drives the paired-universe temporal-drag comparison.
type ChronosConfig struct {
	Octaves       int     `toml:"octaves"`
	DT            float64 `toml:"dt"`
	EntropyFactor float64 `toml:"entropy_factor"`
	InjectedFreq  float64 `toml:"injected_freq"`
}

// ConvergenceConfig drives the resonance convergence loop.
type ConvergenceConfig struct {
	Octaves       int     `toml:"octaves"`
	DT            float64 `toml:"dt"`
	EntropyFactor float64 `toml:"entropy_factor"`
	ObserverFreq  float64 `toml:"observer_freq"`
	LearningRate  float64 `toml:"learning_rate"`
	TargetFreq    float64 `toml:"target_freq"`
}

// FirstWordConfig drives the frequency-injection negentropy demo.
type FirstWordConfig struct {
	Octaves       int     `toml:"octaves"`
	EntropyFactor float64 `toml:"entropy_factor"`
	WordFreq      float64 `toml:"word_freq"`
}

// HarmonicConfig drives the two-word interaction comparison.
type HarmonicConfig struct {
	EntropyFactor float64   `toml:"entropy_factor"`
	LockInterval  int       `toml:"lock_interval"`
	PhaseDrift    float64   `toml:"phase_drift"`
	SyncThreshold float64   `toml:"sync_threshold"`
	IsolatedFreqs []float64 `toml:"isolated_freqs"`
	CoupledFreqs  []float64 `toml:"coupled_freqs"`
	BondedFreqs   []float64 `toml:"bonded_freqs"`
}

// PolyphonyConfig drives the dyad-versus-triad solidification test.
type PolyphonyConfig struct {
	EntropyFactor float64   `toml:"entropy_factor"`
	LockInterval  int       `toml:"lock_interval"`
	DyadFreqs     []float64 `toml:"dyad_freqs"`
	TriadFreqs    []float64 `toml:"triad_freqs"`
}

// #endregion config-types

// #region defaults

// DefaultConfig returns the reference parameters for every experiment.
func DefaultConfig() Config {
	return Config{
		Run: RunConfig{
			Experiment: "council",
			Iterations: 600,
			Seed:       42,
		},
		Council: CouncilConfig{
			EntropyFactor: 0.002,
			LearningRate:  0.05,
			LockInterval:  4,
			WeightFloor:   0.05,
			BedFreqs:      []float64{1.0, 2.0, 3.0, 4.0},
			TriadFreqs:    []float64{8.0, 10.0, 12.0},
		},
		SelfHealing: SelfHealingConfig{
			EntropyFactor: 0.002,
			LearningRate:  0.05,
			DecayRate:     0.02,
			LockInterval:  4,
			WeightFloor:   0.02,
		},
		Federation: FederationConfig{
			EntropyFactor:     0.002,
			LearningRate:      0.05,
			DecayRate:         0.02,
			Hysteresis:        0.1,
			SyncStrength:      0.02,
			LockInterval:      4,
			ReconcileInterval: 8,
			OffsetB:           0.1,
			WeightFloor:       0.02,
		},
		Async: AsyncConfig{
			EntropyFactor: 0.002,
			Threshold:     0.85,
			PrimaryWeight: 0.7,
			LockInterval:  4,
		},
		StandingWave: StandingWaveConfig{
			EntropyFactor:      0.002,
			WordFreq:           13.0,
			HarmonicFreq:       5.0,
			LockInterval:       5,
			CoherenceThreshold: 0.5,
			SWIThreshold:       0.7,
		},
		Chronos: ChronosConfig{
			Octaves:       3,
			DT:            0.01,
			EntropyFactor: 0.05,
			InjectedFreq:  5.5,
		},
		Convergence: ConvergenceConfig{
			Octaves:       3,
			DT:            0.01,
			EntropyFactor: 0.05,
			ObserverFreq:  7.83,
			LearningRate:  0.05,
			TargetFreq:    1.0,
		},
		FirstWord: FirstWordConfig{
			Octaves:       3,
			EntropyFactor: 0.4,
			WordFreq:      5.5,
		},
		Harmonic: HarmonicConfig{
			EntropyFactor: 0.002,
			LockInterval:  5,
			PhaseDrift:    0.01,
			SyncThreshold: 0.8,
			IsolatedFreqs: []float64{13.0, 11.0},
			CoupledFreqs:  []float64{13.0, 11.0},
			BondedFreqs:   []float64{8.0, 12.0},
		},
		Polyphony: PolyphonyConfig{
			EntropyFactor: 0.002,
			LockInterval:  5,
			DyadFreqs:     []float64{8.0, 12.0},
			TriadFreqs:    []float64{8.0, 10.0, 12.0},
		},
	}
}

// LoadConfig reads a TOML file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects parameters no experiment can run with.
func (c Config) Validate() error {
	if c.Run.Iterations <= 0 {
		return fmt.Errorf("%w: iterations %d must be > 0", field.ErrConfig, c.Run.Iterations)
	}
	if len(c.Council.TriadFreqs) == 0 {
		return fmt.Errorf("%w: council triad requires at least one frequency", field.ErrConfig)
	}
	if c.Chronos.Octaves < 0 || c.Convergence.Octaves < 0 || c.FirstWord.Octaves < 0 {
		return fmt.Errorf("%w: octaves must be >= 0", field.ErrConfig)
	}
	for _, freqs := range [][]float64{c.Harmonic.IsolatedFreqs, c.Harmonic.CoupledFreqs, c.Harmonic.BondedFreqs} {
		if len(freqs) < 2 {
			return fmt.Errorf("%w: harmonic interaction modes need at least two frequencies", field.ErrConfig)
		}
	}
	if len(c.Polyphony.DyadFreqs) < 2 || len(c.Polyphony.TriadFreqs) < 2 {
		return fmt.Errorf("%w: polyphony chords need at least two frequencies", field.ErrConfig)
	}
	return nil
}

// #endregion defaults
