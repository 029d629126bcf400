//go:build !debug_locks

package forkchoice

// assertWriteLocked is a no-op in production builds; see assert_debug.go
// for the debug_locks build that actually checks the lock state.
func (s *Store) assertWriteLocked() {}
