package field

import (
	"errors"
	"math"
	"testing"
)

func seededEnsemble(t *testing.T, seed int64, freqs ...float64) *Ensemble {
	t.Helper()
	ens := NewEnsemble(seed)
	for _, f := range freqs {
		if _, err := ens.Spawn(f, 0, 6); err != nil {
			t.Fatalf("Spawn(%f): %v", f, err)
		}
	}
	return ens
}

func TestCoherenceBounds(t *testing.T) {
	empty := NewEnsemble(1)
	if c := empty.Coherence(); c != 1.0 {
		t.Fatalf("empty ensemble coherence: got %f, want 1.0", c)
	}

	ens := NewEnsemble(7)
	for i := 0; i < 50; i++ {
		if _, err := ens.Spawn(float64(i+1), 0, 6); err != nil {
			t.Fatalf("Spawn: %v", err)
		}
	}
	// All phases zero: perfectly coherent
	if c := ens.Coherence(); math.Abs(c-1.0) > 1e-12 {
		t.Fatalf("aligned coherence: got %f, want 1.0", c)
	}

	ens.ApplyNoise(0.1)
	c := ens.Coherence()
	if c >= 1.0 || c < 0.0 {
		t.Fatalf("noisy coherence out of range: %f", c)
	}
}

func TestNoiseAccumulationDegradesCoherence(t *testing.T) {
	// Averaged over many seeds, a perfectly aligned ensemble loses
	// coherence as noise applications accumulate: each call adds fresh
	// phase variance, so expected coherence falls with the call count.
	const trials = 30
	const members = 40
	callCounts := []int{1, 5, 25}

	means := make([]float64, len(callCounts))
	for ci, calls := range callCounts {
		var sum float64
		for trial := 0; trial < trials; trial++ {
			ens := NewEnsemble(int64(1000 + trial))
			for i := 0; i < members; i++ {
				if _, err := ens.Spawn(float64(i+1), 0, 6); err != nil {
					t.Fatalf("Spawn: %v", err)
				}
			}
			for k := 0; k < calls; k++ {
				ens.ApplyNoise(0.2)
			}
			sum += ens.Coherence()
		}
		means[ci] = sum / trials
	}

	for i := 1; i < len(means); i++ {
		if means[i] >= means[i-1] {
			t.Fatalf("mean coherence did not fall from %d to %d noise calls: %v",
				callCounts[i-1], callCounts[i], means)
		}
	}
}

func TestApplyNoiseZeroIsNoOp(t *testing.T) {
	ens := seededEnsemble(t, 3, 1.0, 2.0, 3.0)
	before := make([]float64, ens.Len())
	for i := range before {
		before[i] = ens.At(i).Phase
	}

	ens.ApplyNoise(0.0)
	for i := range before {
		if ens.At(i).Phase != before[i] {
			t.Fatalf("phase %d changed under zero noise", i)
		}
	}
}

func TestAdvanceTime(t *testing.T) {
	empty := NewEnsemble(1)
	empty.AdvanceTime(0.5)
	if empty.OmegaTime() != 0.0 {
		t.Fatalf("empty ensemble advanced omega time to %f", empty.OmegaTime())
	}

	ens := seededEnsemble(t, 3, 1.0, 2.0, 3.0)
	ens.AdvanceTime(0.1)
	want := 0.1 * (1.0 + 2.0 + 3.0)
	if math.Abs(ens.OmegaTime()-want) > 1e-12 {
		t.Fatalf("omega time: got %f, want %f", ens.OmegaTime(), want)
	}
	ens.AdvanceTime(0.1)
	if math.Abs(ens.OmegaTime()-2*want) > 1e-12 {
		t.Fatalf("omega time should accumulate: got %f, want %f", ens.OmegaTime(), 2*want)
	}
}

func TestEmergentTime(t *testing.T) {
	ens := seededEnsemble(t, 3, 1.0, 2.0)
	if ens.EmergentTime() != 0.0 {
		t.Fatalf("static field emergent time: got %f, want 0", ens.EmergentTime())
	}
	ens.At(0).Phase = 0.4
	ens.At(1).Phase = -0.2
	if math.Abs(ens.EmergentTime()-0.3) > 1e-12 {
		t.Fatalf("emergent time: got %f, want 0.3", ens.EmergentTime())
	}
}

func TestObserveAll(t *testing.T) {
	ens := seededEnsemble(t, 11, 1.0, 2.0, 3.0, 4.0, 5.0)

	if n := ens.ObserveAll(0.0); n != 0 {
		t.Fatalf("probability 0 observed %d", n)
	}
	if n := ens.ObserveAll(-0.5); n != 0 {
		t.Fatalf("negative probability observed %d", n)
	}

	n := ens.ObserveAll(1.0)
	if n != 5 {
		t.Fatalf("probability 1 observed %d of 5", n)
	}
	if ens.ObservedCount() != 5 {
		t.Fatalf("observed count: got %d, want 5", ens.ObservedCount())
	}
	// Everything already collapsed
	if n := ens.ObserveAll(1.0); n != 0 {
		t.Fatalf("second pass observed %d", n)
	}
}

func TestEntangleSharesCollapse(t *testing.T) {
	// Same seed twice: identical shared superposition, so both runs
	// must collapse to the same pair of values.
	var firstA, firstB float64
	for run := 0; run < 2; run++ {
		ens := seededEnsemble(t, 99, 1.0, 2.0)
		if err := ens.Entangle(0, 1); err != nil {
			t.Fatalf("Entangle: %v", err)
		}

		a := ens.Observe(0)
		if !ens.At(1).Observed() {
			t.Fatal("partner should collapse with the observed oscillator")
		}
		b := ens.At(1).Observe()
		if a != b {
			t.Fatalf("entangled pair disagreed: %f vs %f", a, b)
		}
		if run == 0 {
			firstA, firstB = a, b
		} else if a != firstA || b != firstB {
			t.Fatalf("entangled collapse not reproducible: (%f,%f) vs (%f,%f)", a, b, firstA, firstB)
		}
	}
}

func TestEntangleErrors(t *testing.T) {
	ens := seededEnsemble(t, 5, 1.0, 2.0)

	if err := ens.Entangle(0, 5); !errors.Is(err, ErrConfig) {
		t.Fatalf("out of range: expected ErrConfig, got %v", err)
	}
	if err := ens.Entangle(-1, 0); !errors.Is(err, ErrConfig) {
		t.Fatalf("negative index: expected ErrConfig, got %v", err)
	}
	if err := ens.Entangle(1, 1); !errors.Is(err, ErrConfig) {
		t.Fatalf("self entangle: expected ErrConfig, got %v", err)
	}

	ens.Observe(0)
	if err := ens.Entangle(0, 1); !errors.Is(err, ErrState) {
		t.Fatalf("entangle after observe: expected ErrState, got %v", err)
	}
}

func TestMaybeDecohereAll(t *testing.T) {
	ens := seededEnsemble(t, 13, 1.0, 2.0, 3.0)
	ens.At(0).SetDecoherenceDeadline(1.0)
	ens.At(1).SetDecoherenceDeadline(10.0)

	if n := ens.MaybeDecohereAll(0.5); n != 0 {
		t.Fatalf("before any deadline: collapsed %d", n)
	}
	if n := ens.MaybeDecohereAll(2.0); n != 1 {
		t.Fatalf("after first deadline: collapsed %d, want 1", n)
	}
	if !ens.At(0).Observed() || ens.At(1).Observed() || ens.At(2).Observed() {
		t.Fatal("wrong oscillator collapsed")
	}
}

func TestHarmonicMembers(t *testing.T) {
	ens := seededEnsemble(t, 17, 1.0, 2.0, 2.5, 10.0)
	for i := 0; i < ens.Len(); i++ {
		ens.Observe(i)
	}

	members := ens.HarmonicMembers(1.0, 0.01)
	if len(members) != 3 {
		t.Fatalf("harmonic members of 1.0: got %d, want 3", len(members))
	}
	if members := ens.HarmonicMembers(0.0, 0.01); members != nil {
		t.Fatal("non-positive reference should return nil")
	}
}

func TestRenderSumsWaves(t *testing.T) {
	ens := seededEnsemble(t, 19, 1.0, 3.0)
	ens.Observe(0)
	ens.Observe(1)

	ts := []float64{0.0, 0.125, 0.25}
	got := ens.Render(ts)
	for i, ti := range ts {
		want := math.Sin(2*math.Pi*1.0*ti) + math.Sin(2*math.Pi*3.0*ti)
		if math.Abs(got[i]-want) > 1e-9 {
			t.Fatalf("render[%d]: got %f, want %f", i, got[i], want)
		}
	}
}
