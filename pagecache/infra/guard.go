package infra

import (
	"sync"

	"go.uber.org/atomic"
)

// AtomicGuard é um try-lock: compare-and-swap de idle para in-progress.
// Nunca bloqueia; quem perde o CAS recebe ok=false.
type AtomicGuard struct {
	busy atomic.Bool
}

func NewAtomicGuard() *AtomicGuard {
	return &AtomicGuard{}
}

func (g *AtomicGuard) TryAcquire() (func(), bool) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, false
	}
	var once sync.Once
	return func() {
		once.Do(func() { g.busy.Store(false) })
	}, true
}

func (g *AtomicGuard) Busy() bool { return g.busy.Load() }
