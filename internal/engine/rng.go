package engine

// RNG is a deterministic pseudo-random source seeded with an integer.
// It implements the mulberry32 mixing algorithm on wrapping 32-bit
// arithmetic, so a fixed seed yields the exact same sequence on every
// platform. Replays and event draws depend on this being bit-exact.
type RNG struct {
	state uint32
}

// NewRNG creates a generator from an integer seed. Only the low 32 bits
// of the seed participate, matching two's-complement truncation.
func NewRNG(seed int64) *RNG {
	return &RNG{state: uint32(seed)}
}

// Next returns the next float in [0, 1).
func (r *RNG) Next() float64 {
	r.state += 0x6d2b79f5
	t := r.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return float64(t^t>>14) / 4294967296.0
}

// RandInt returns an integer in [min, max).
func (r *RNG) RandInt(min, max int) int {
	return int(r.Next()*float64(max-min)) + min
}

// Choice returns a uniformly chosen element of list.
// Panics on an empty list; callers guard against that.
func (r *RNG) Choice(list []string) string {
	return list[int(r.Next()*float64(len(list)))]
}

// Shuffle returns a new slice holding a Fisher-Yates permutation of list.
// The input is not modified.
func (r *RNG) Shuffle(list []string) []string {
	result := make([]string, len(list))
	copy(result, list)
	for i := len(result) - 1; i > 0; i-- {
		j := int(r.Next() * float64(i+1))
		result[i], result[j] = result[j], result[i]
	}
	return result
}

// Chance reports whether an event with probability p triggers.
func (r *RNG) Chance(p float64) bool {
	return r.Next() < p
}

// State returns the current internal state for saving.
func (r *RNG) State() uint32 {
	return r.state
}

// SetState restores a previously saved state.
func (r *RNG) SetState(state uint32) {
	r.state = state
}
