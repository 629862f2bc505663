// Package randoms provides the seeded pseudo-random source shared by every
// model of a simulation.
//
// A single [Generator] is handed by pointer to each model at construction
// time and is drawn from again while stepping. The order of draws across
// models is therefore part of the reproducibility contract: two runs with
// the same seed, configuration and model order produce identical values.
//
// # Thread Safety
//
// Generator is NOT safe for concurrent use. Draws must be serialized by the
// fixed step order of the enclosing model list.
package randoms

import "math/rand/v2"

// stream decorrelates the second PCG word from the seed.
const stream = 0x9e3779b97f4a7c15

type Generator struct {
	seed  uint64
	rng   *rand.Rand
	draws uint64
}

func New(seed uint64) *Generator {
	return &Generator{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^stream)),
	}
}

func (g *Generator) Seed() uint64 { return g.seed }

// Draws reports how many values have been consumed since construction.
func (g *Generator) Draws() uint64 { return g.draws }

// Normal returns a standard normal deviate.
func (g *Generator) Normal() float64 {
	g.draws++
	return g.rng.NormFloat64()
}

// NormalVector returns n independent normal deviates scaled by sigma.
func (g *Generator) NormalVector(n int, sigma float64) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = sigma * g.Normal()
	}
	return v
}

// Uint64 draws a full-width value, used to seed child generators.
func (g *Generator) Uint64() uint64 {
	g.draws++
	return g.rng.Uint64()
}
