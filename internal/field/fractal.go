package field

import (
	"fmt"
	"math/rand"
)

// #region fractal

// GenerateFractalUniverse grows a complete binary tree of oscillators:
// each node at depth d spawns children at 2x and 3x its frequency down
// to the given octave count. Returns the flat generation-ordered list,
// exactly 2^(octaves+1) - 1 oscillators.
func GenerateFractalUniverse(baseFreq float64, octaves int, rng *rand.Rand) ([]*Oscillator, error) {
	if octaves < 0 {
		return nil, fmt.Errorf("%w: octaves %d must be >= 0", ErrConfig, octaves)
	}
	root, err := NewOscillator(baseFreq, 0, octaves, rng)
	if err != nil {
		return nil, err
	}

	particles := []*Oscillator{root}
	generation := []*Oscillator{root}

	for depth := 0; depth < octaves; depth++ {
		var next []*Oscillator
		for _, parent := range generation {
			a, b := parent.SpawnChildren(rng)
			if a == nil || b == nil {
				continue
			}
			particles = append(particles, a, b)
			next = append(next, a, b)
		}
		generation = next
	}

	return particles, nil
}

// #endregion fractal
