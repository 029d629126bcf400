//go:build debug_locks

package forkchoice

import mutexasserts "github.com/trailofbits/go-mutexasserts"

// assertWriteLocked panics if s.mu is not currently write-locked. It is
// compiled in only under the debug_locks build tag, the same opt-in the
// single-writer assumption elsewhere in the store relies on instead of
// paying for this check in production builds.
func (s *Store) assertWriteLocked() {
	if !mutexasserts.RWMutexLocked(&s.mu) {
		panic("forkchoice: Store method called without holding the write lock")
	}
}
