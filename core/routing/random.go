package routing

import "math/rand/v2"

// SeedSource supplies rotation seeds for randomized iteration. Implementations
// must be safe for concurrent use.
type SeedSource interface {
	Seed() int
}

// SeedFunc adapts a function to SeedSource.
type SeedFunc func() int

func (f SeedFunc) Seed() int { return f() }

type globalSeedSource struct{}

// Seed draws from the process-wide math/rand/v2 generator, which is safe for
// concurrent use. Values carry no reproducibility or security guarantee.
func (globalSeedSource) Seed() int { return rand.Int() }

// DefaultSeedSource returns the process-wide randomness source.
func DefaultSeedSource() SeedSource { return globalSeedSource{} }

// FixedSeeds returns a SeedSource cycling through seeds. It is meant for tests
// and is safe for concurrent use.
func FixedSeeds(seeds ...int) SeedSource {
	if len(seeds) == 0 {
		seeds = []int{0}
	}
	var c counter
	return SeedFunc(func() int {
		return seeds[c.next()%uint64(len(seeds))]
	})
}
