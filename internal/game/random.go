package game

import (
	"math/rand/v2"
	"sync"
)

const (
	DrawMin = 1
	DrawMax = 10000
)

// Randomizer supplies the round's draw and tie-breaks. Implementations must
// be safe for concurrent use since rooms evaluate independently.
type Randomizer interface {
	// Draw returns a uniform integer in [DrawMin, DrawMax].
	Draw() int
	// Pick returns a uniform index in [0, n).
	Pick(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewRandomizer() Randomizer {
	return &lockedRand{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

func NewSeededRandomizer(seed uint64) Randomizer {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) Draw() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return DrawMin + l.r.IntN(DrawMax-DrawMin+1)
}

func (l *lockedRand) Pick(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
