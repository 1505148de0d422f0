package projects

import "sync/atomic"

// opLock provides non-blocking lock semantics using atomic operations.
// Mutating operations acquire it for their full duration so an accidental
// concurrent mutation fails fast instead of interleaving filesystem and
// store writes.
type opLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// tryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *opLock) tryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *opLock) release() {
	l.state.Store(0)
}
