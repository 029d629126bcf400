// Package cache holds the staging store's lookup tables: the unfinished,
// candidate and disconnected block indexes, the seen-unfinished set, and
// the four future caches that defer messages whose parent sub-slot hasn't
// arrived yet (spec.md §4.3, "Future caches"). Every table here is plain
// data; locking and traversal order live in forkchoice.Store.
package cache

import (
	"github.com/chia-network/gochia/chia/consensus"
)

// DeferredCache defers values keyed by a reward-chain challenge hash until
// the sub-slot carrying that challenge is seen. The original store kept
// four separate dict-of-list tables for this (future_eos_cache,
// future_sp_cache, future_ip_cache, and the block future cache); they are
// instantiated here as one generic type parameterized on the deferred
// value's type (spec.md §4.3).
type DeferredCache[T any] struct {
	byChallenge map[consensus.Hash32][]T
}

// NewDeferredCache builds an empty DeferredCache.
func NewDeferredCache[T any]() *DeferredCache[T] {
	return &DeferredCache[T]{byChallenge: make(map[consensus.Hash32][]T)}
}

// Add appends value to the list deferred under challenge.
func (d *DeferredCache[T]) Add(challenge consensus.Hash32, value T) {
	d.byChallenge[challenge] = append(d.byChallenge[challenge], value)
}

// Pop removes and returns every value deferred under challenge, in the
// order they were added. It reports false if nothing was deferred there.
func (d *DeferredCache[T]) Pop(challenge consensus.Hash32) ([]T, bool) {
	values, ok := d.byChallenge[challenge]
	if !ok {
		return nil, false
	}
	delete(d.byChallenge, challenge)
	return values, true
}

// Len returns the number of distinct challenges currently holding deferred
// values.
func (d *DeferredCache[T]) Len() int {
	return len(d.byChallenge)
}

// Prune drops every entry whose challenge is not in keep. The original
// store has no equivalent by-challenge prune for its future caches; this
// takes a snapshot of the keys before deleting, which Go's map semantics
// don't actually require but which keeps the loop obviously safe.
func (d *DeferredCache[T]) Prune(keep map[consensus.Hash32]struct{}) {
	keys := make([]consensus.Hash32, 0, len(d.byChallenge))
	for k := range d.byChallenge {
		keys = append(keys, k)
	}
	for _, k := range keys {
		if _, ok := keep[k]; !ok {
			delete(d.byChallenge, k)
		}
	}
}
