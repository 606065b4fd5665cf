package scriptgen

import (
	"math/rand"

	"github.com/bobarin/kobanashi/internal/models"
)

// Sample implements section 4.9's persona-pool pre-selection: deterministic
// under a fixed seed, so that two runs with the same seed produce the same
// subset and downstream dialogue stays reproducible. An unseeded call draws
// fresh randomness every time, by design.
func Sample(personas []models.Persona, count int, seed *int) []models.Persona {
	if count <= 0 || count >= len(personas) {
		out := make([]models.Persona, len(personas))
		copy(out, personas)
		return out
	}

	var rng *rand.Rand
	if seed != nil {
		rng = rand.New(rand.NewSource(int64(*seed)))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	indices := rng.Perm(len(personas))[:count]
	out := make([]models.Persona, count)
	for i, idx := range indices {
		out[i] = personas[idx]
	}
	return out
}
