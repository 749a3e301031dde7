package field

import (
	"errors"
	"math/rand"
	"testing"
)

func TestGenerateFractalUniverseCount(t *testing.T) {
	for _, octaves := range []int{0, 1, 3, 5} {
		rng := rand.New(rand.NewSource(42))
		particles, err := GenerateFractalUniverse(1.0, octaves, rng)
		if err != nil {
			t.Fatalf("octaves %d: %v", octaves, err)
		}
		want := (1 << (octaves + 1)) - 1
		if len(particles) != want {
			t.Fatalf("octaves %d: got %d particles, want %d", octaves, len(particles), want)
		}
	}
}

func TestGenerateFractalUniverseDepths(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	particles, err := GenerateFractalUniverse(2.0, 2, rng)
	if err != nil {
		t.Fatalf("GenerateFractalUniverse: %v", err)
	}

	if particles[0].Frequency != 2.0 || particles[0].Depth != 0 {
		t.Fatalf("root: f=%f depth=%d", particles[0].Frequency, particles[0].Depth)
	}
	// Generation order: root, then depth 1 pair at 2x/3x
	if particles[1].Frequency != 4.0 || particles[2].Frequency != 6.0 {
		t.Fatalf("first generation: f=%f, %f, want 4, 6", particles[1].Frequency, particles[2].Frequency)
	}
	for _, p := range particles {
		if p.Depth > 2 {
			t.Fatalf("particle exceeded octave limit: depth %d", p.Depth)
		}
	}
}

func TestGenerateFractalUniverseErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	if _, err := GenerateFractalUniverse(1.0, -1, rng); !errors.Is(err, ErrConfig) {
		t.Fatalf("negative octaves: expected ErrConfig, got %v", err)
	}
	if _, err := GenerateFractalUniverse(0.0, 2, rng); !errors.Is(err, ErrConfig) {
		t.Fatalf("zero base frequency: expected ErrConfig, got %v", err)
	}
}
