package field

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func TestNewOscillatorValidation(t *testing.T) {
	rng := testRNG()

	if _, err := NewOscillator(0, 0, 3, rng); !errors.Is(err, ErrConfig) {
		t.Fatalf("zero frequency: expected ErrConfig, got %v", err)
	}
	if _, err := NewOscillator(-2.0, 0, 3, rng); !errors.Is(err, ErrConfig) {
		t.Fatalf("negative frequency: expected ErrConfig, got %v", err)
	}
	if _, err := NewOscillator(1.0, -1, 3, rng); !errors.Is(err, ErrConfig) {
		t.Fatalf("negative depth: expected ErrConfig, got %v", err)
	}
	if _, err := NewOscillator(1.0, 0, 3, nil); !errors.Is(err, ErrConfig) {
		t.Fatalf("nil rng: expected ErrConfig, got %v", err)
	}

	o, err := NewOscillator(1.0, 0, 3, rng)
	if err != nil {
		t.Fatalf("NewOscillator: %v", err)
	}
	if o.Observed() {
		t.Fatal("new oscillator should start unobserved")
	}
}

func TestObserveIdempotent(t *testing.T) {
	o, err := NewOscillator(2.0, 0, 3, testRNG())
	if err != nil {
		t.Fatalf("NewOscillator: %v", err)
	}

	first := o.Observe()
	if first != 0.0 && first != 1.0 {
		t.Fatalf("expected binary collapse value, got %f", first)
	}
	if !o.Observed() {
		t.Fatal("oscillator should be observed after Observe")
	}
	for i := 0; i < 10; i++ {
		if v := o.Observe(); v != first {
			t.Fatalf("observe call %d returned %f, want %f", i, v, first)
		}
	}
}

func TestDecoherenceDeadline(t *testing.T) {
	o, err := NewOscillator(1.0, 0, 3, testRNG())
	if err != nil {
		t.Fatalf("NewOscillator: %v", err)
	}

	// No deadline armed: never decoheres
	if o.MaybeDecohere(1e9) {
		t.Fatal("decohered without a deadline")
	}

	o.SetDecoherenceDeadline(5.0)
	if o.MaybeDecohere(4.9) {
		t.Fatal("decohered before the deadline")
	}
	if !o.MaybeDecohere(5.0) {
		t.Fatal("expected collapse at the deadline")
	}
	if !o.Observed() {
		t.Fatal("oscillator should be observed after decoherence")
	}
	// Already observed: no second collapse
	if o.MaybeDecohere(6.0) {
		t.Fatal("second MaybeDecohere should be a no-op")
	}
}

func TestWaveAmplitude(t *testing.T) {
	o, err := NewOscillator(1.0, 0, 3, testRNG())
	if err != nil {
		t.Fatalf("NewOscillator: %v", err)
	}
	// Phase 0, f=1: peak at t=0.25
	ts := []float64{0.25}

	before := o.Wave(ts)[0]
	if math.Abs(before-0.1) > 1e-9 {
		t.Fatalf("unobserved amplitude: got %f, want 0.1", before)
	}

	o.Observe()
	after := o.Wave(ts)[0]
	if math.Abs(after-1.0) > 1e-9 {
		t.Fatalf("observed amplitude: got %f, want 1.0", after)
	}
}

func TestSpawnChildren(t *testing.T) {
	rng := testRNG()
	o, err := NewOscillator(2.0, 0, 1, rng)
	if err != nil {
		t.Fatalf("NewOscillator: %v", err)
	}

	a, b := o.SpawnChildren(rng)
	if a == nil || b == nil {
		t.Fatal("expected two children below max depth")
	}
	if a.Frequency != 4.0 || b.Frequency != 6.0 {
		t.Fatalf("child frequencies: got %f, %f, want 4, 6", a.Frequency, b.Frequency)
	}
	if a.Depth != 1 || b.Depth != 1 {
		t.Fatalf("child depths: got %d, %d, want 1", a.Depth, b.Depth)
	}

	// Children are at max depth: no grandchildren
	ga, gb := a.SpawnChildren(rng)
	if ga != nil || gb != nil {
		t.Fatal("expected nil children at max depth")
	}
}
