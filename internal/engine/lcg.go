package engine

// lcgMultiplier and lcgIncrement are the classic glibc rand constants.
// The map generators use this generator rather than mulberry32 so that
// node jitter and edge layout are a pure function of (template, seed)
// with no shared stream between map generation and event draws.
const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgModulus    = 1 << 31
)

// LCG is a 31-bit linear congruential generator. All arithmetic is
// exact int64, so sequences are identical on every platform.
type LCG struct {
	state int64
}

// NewLCG creates a generator from an integer seed.
func NewLCG(seed int64) *LCG {
	return &LCG{state: seed}
}

// Next returns the next float in [0, 1).
func (l *LCG) Next() float64 {
	l.state = (l.state*lcgMultiplier + lcgIncrement) & (lcgModulus - 1)
	return float64(l.state) / float64(lcgModulus-1)
}

// step advances the raw state and returns it.
func (l *LCG) step() int64 {
	l.state = (l.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return l.state
}

// ShuffleIndexes returns a Fisher-Yates permutation of [0, n) driven by
// the raw LCG state, matching the index-modulo selection the scenario
// name pools are shuffled with.
func (l *LCG) ShuffleIndexes(n int) []int {
	result := make([]int, n)
	for i := range result {
		result[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := int(l.step() % int64(i+1))
		result[i], result[j] = result[j], result[i]
	}
	return result
}
