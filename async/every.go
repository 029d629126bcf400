// Package async collects small scheduling primitives used by long-running
// full-node components. RunEvery and Debounce are not part of the store's
// core invariants (see the store packages for those); they're the ambient
// glue a node uses to drive optional maintenance, such as periodically
// sweeping stale future-cache entries.
package async

import (
	"context"
	"time"
)

// RunEvery runs the given function on the provided interval in its own
// goroutine, until the context is canceled. It does not run the function
// immediately; the first invocation happens after the first tick.
func RunEvery(ctx context.Context, interval time.Duration, f func()) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				f()
			case <-ctx.Done():
				return
			}
		}
	}()
}
