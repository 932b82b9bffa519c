package game

import (
	"sync"
	"sync/atomic"
)

type RoundState int32

const (
	RoundAccepting RoundState = iota
	RoundEvaluating
	RoundSettled
)

func (s RoundState) String() string {
	switch s {
	case RoundAccepting:
		return "accepting_actions"
	case RoundEvaluating:
		return "evaluating"
	case RoundSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Rounds serialises evaluation per room within this process. Actions run
// under a shared lock and evaluations under the exclusive one, so a bet can
// never land in a log that is being settled and cleared.
type Rounds struct {
	mu     sync.Mutex
	rounds map[string]*round
}

type round struct {
	mu        sync.RWMutex
	state     atomic.Int32
	completed atomic.Int64
}

func NewRounds() *Rounds {
	return &Rounds{rounds: map[string]*round{}}
}

func (r *Rounds) get(roomID string) *round {
	r.mu.Lock()
	defer r.mu.Unlock()
	rd, ok := r.rounds[roomID]
	if !ok {
		rd = &round{}
		r.rounds[roomID] = rd
	}
	return rd
}

// Act runs fn while the room accepts actions, waiting out any evaluation in
// progress.
func (r *Rounds) Act(roomID string, fn func() error) error {
	rd := r.get(roomID)
	rd.mu.RLock()
	defer rd.mu.RUnlock()
	return fn()
}

// Settle runs fn exclusively for roomID. A failed fn leaves the round open
// for another attempt; a successful one closes it and opens the next.
func (r *Rounds) Settle(roomID string, fn func() error) error {
	rd := r.get(roomID)
	rd.mu.Lock()
	defer rd.mu.Unlock()
	rd.state.Store(int32(RoundEvaluating))
	if err := fn(); err != nil {
		rd.state.Store(int32(RoundAccepting))
		return err
	}
	rd.state.Store(int32(RoundSettled))
	rd.completed.Add(1)
	rd.state.Store(int32(RoundAccepting))
	return nil
}

func (r *Rounds) State(roomID string) RoundState {
	return RoundState(r.get(roomID).state.Load())
}

// Completed is the number of rounds settled in roomID by this process.
func (r *Rounds) Completed(roomID string) int64 {
	return r.get(roomID).completed.Load()
}
