// Package rng provides the seeded linear congruential generator that makes
// splits, bootstrap samples and k-means initialisation reproducible. The
// recurrence s ← (9301·s + 49297) mod 233280 is reproduced bit for bit, so
// the same seed yields the same draws on every platform.
package rng

const (
	multiplier = 9301
	increment  = 49297
	modulus    = 233280
)

// LCG is a tiny deterministic generator. The zero value is seeded with 0.
type LCG struct {
	state int64
}

// New returns a generator seeded with seed. Negative seeds are folded into
// the modulus range.
func New(seed int64) *LCG {
	s := seed % modulus
	if s < 0 {
		s += modulus
	}
	return &LCG{state: s}
}

// Float64 advances the generator and returns a value in [0, 1).
func (g *LCG) Float64() float64 {
	g.state = (multiplier*g.state + increment) % modulus
	return float64(g.state) / modulus
}

// Intn returns a value in [0, n). n must be positive.
func (g *LCG) Intn(n int) int {
	i := int(g.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Perm returns a permutation of 0..n−1 produced by a Fisher–Yates shuffle
// driven from the last position down.
func (g *LCG) Perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	g.Shuffle(p)
	return p
}

// Shuffle permutes idx in place.
func (g *LCG) Shuffle(idx []int) {
	for i := len(idx) - 1; i > 0; i-- {
		j := g.Intn(i + 1)
		idx[i], idx[j] = idx[j], idx[i]
	}
}
