package policy

import (
	"errors"
	"math"
	"testing"

	"github.com/kdalton/phase-ensemble/internal/field"
	"github.com/kdalton/phase-ensemble/internal/trust"
)

func TestSimpleAverage(t *testing.T) {
	var p SimpleAverage

	got, err := p.Apply(nil)
	if err != nil {
		t.Fatalf("Apply(nil): %v", err)
	}
	if got != 0.0 {
		t.Fatalf("empty: got %f, want 0", got)
	}

	got, err = p.Apply([]float64{0.1, 0.2, 0.3})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if math.Abs(got-0.2) > 1e-12 {
		t.Fatalf("mean: got %f, want 0.2", got)
	}
}

func TestThresholdBlendAgreement(t *testing.T) {
	p := DefaultThresholdBlend()

	// Close phases: alignment near 1, mean path
	got, err := p.Apply([]float64{0.1, 0.2})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if math.Abs(got-0.15) > 1e-12 {
		t.Fatalf("agreement path: got %f, want 0.15", got)
	}
}

func TestThresholdBlendDisagreement(t *testing.T) {
	p := DefaultThresholdBlend()

	// |Δ| = 2 → alignment 1 - 2/2π ≈ 0.68, below 0.85
	a, b := 0.0, 2.0
	if align := p.Alignment(a, b); align > p.Threshold {
		t.Fatalf("test phases unexpectedly aligned: %f", align)
	}
	got, err := p.Apply([]float64{a, b})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := 0.7*a + 0.3*b
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("blend path: got %f, want %f", got, want)
	}
}

func TestThresholdBlendArity(t *testing.T) {
	p := DefaultThresholdBlend()
	if _, err := p.Apply([]float64{0.1}); !errors.Is(err, field.ErrConfig) {
		t.Fatalf("one phase: expected ErrConfig, got %v", err)
	}
	if _, err := p.Apply([]float64{0.1, 0.2, 0.3}); !errors.Is(err, field.ErrConfig) {
		t.Fatalf("three phases: expected ErrConfig, got %v", err)
	}
}

func TestTrustWeighted(t *testing.T) {
	var empty TrustWeighted
	if _, err := empty.Apply([]float64{0.1}); !errors.Is(err, field.ErrState) {
		t.Fatalf("nil tracker: expected ErrState, got %v", err)
	}

	tracker, err := trust.New([]float64{0.5, 0.5}, trust.Config{Floor: 0.05})
	if err != nil {
		t.Fatalf("trust.New: %v", err)
	}
	p := TrustWeighted{Tracker: tracker}
	got, err := p.Apply([]float64{0.2, 0.4})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if math.Abs(got-0.3) > 1e-12 {
		t.Fatalf("equal weights: got %f, want 0.3", got)
	}
}

func TestFederationReconcile(t *testing.T) {
	fed := NewFederation(0.02)

	phasesA := []float64{0.0, 0.0, 0.0}
	phasesB := []float64{0.1, 0.1, 0.1}
	outA, outB, sync := fed.Reconcile(phasesA, phasesB)

	// Medians 0 and 0.1: each side nudged 0.02*0.1 toward the other
	if math.Abs(outA[0]-0.002) > 1e-12 {
		t.Fatalf("A nudge: got %f, want 0.002", outA[0])
	}
	if math.Abs(outB[0]-0.098) > 1e-12 {
		t.Fatalf("B nudge: got %f, want 0.098", outB[0])
	}
	if want := math.Exp(-0.1); math.Abs(sync-want) > 1e-12 {
		t.Fatalf("sync: got %f, want %f", sync, want)
	}
	// Inputs untouched
	if phasesA[0] != 0.0 || phasesB[0] != 0.1 {
		t.Fatal("Reconcile mutated its inputs")
	}
}

func TestFederationZeroStrength(t *testing.T) {
	fed := NewFederation(0.0)

	outA, outB, sync := fed.Reconcile([]float64{0.0}, []float64{0.0})
	if outA[0] != 0.0 || outB[0] != 0.0 {
		t.Fatal("zero strength should not move phases")
	}
	if sync != 1.0 {
		t.Fatalf("identical medians: sync %f, want 1.0", sync)
	}

	fed.Reconcile([]float64{0.0}, []float64{1.0})
	hist := fed.SyncHistory()
	if len(hist) != 2 {
		t.Fatalf("history length: got %d, want 2", len(hist))
	}
	if idx := fed.SyncIndex(); math.Abs(idx-(1.0+math.Exp(-1.0))/2.0) > 1e-12 {
		t.Fatalf("sync index: got %f", idx)
	}
}
