package forkchoice

import (
	"github.com/prysmaticlabs/go-bitfield"

	"github.com/chia-network/gochia/chia/consensus"
	"github.com/chia-network/gochia/chia/types"
)

// slotEntry is one ring position: a finished sub-slot, the signage points
// observed within it so far (indexed by checkpoint index 1..N-1; index 0
// is the implicit start-of-slot sentinel), and the cumulative iteration
// count at the end of the slot.
//
// The original store kept this as a bare tuple and, depending on call
// site, unpacked it as either a 3-tuple (sub_slot, sps, total_iters) or a
// 4-tuple (sub_slot, sps_cc, sps_rc, total_iters) — the two shapes never
// actually diverged in content, only in whether the cc/rc halves of a
// checkpoint were split into separate dicts. Here there is one shape:
// checkpoints holds the already-paired SignagePoint, so a reader is never
// tempted to index by tuple position (spec.md §9, open question 2).
type slotEntry struct {
	eos         *types.EndOfSubSlotBundle
	checkpoints map[uint8][]*types.SignagePoint
	totalIters  *consensus.Uint128

	// seen marks, one bit per checkpoint index, which signage points have
	// been recorded in this slot. It is a presence map only — the actual
	// SignagePoint values still live in checkpoints, since more than one
	// can land at the same index (two timelords racing the same VDF).
	seen bitfield.Bitlist
}

func newSlotEntry(eos *types.EndOfSubSlotBundle, totalIters *consensus.Uint128, numCheckpoints uint8) *slotEntry {
	return &slotEntry{
		eos:         eos,
		checkpoints: make(map[uint8][]*types.SignagePoint),
		totalIters:  totalIters,
		seen:        bitfield.NewBitlist(uint64(numCheckpoints)),
	}
}

// checkpointsSeen returns the number of distinct checkpoint indices that
// have at least one recorded signage point.
func (e *slotEntry) checkpointsSeen() int {
	count := 0
	for i := uint64(0); i < e.seen.Len(); i++ {
		if e.seen.BitAt(i) {
			count++
		}
	}
	return count
}

// slotRing is the ordered sequence of finished sub-slots the store holds,
// starting from the peak's slot onward (spec.md §4, "finished_sub_slots").
type slotRing struct {
	entries []*slotEntry
}

func (r *slotRing) clear() {
	r.entries = nil
}

func (r *slotRing) last() (*slotEntry, bool) {
	if len(r.entries) == 0 {
		return nil, false
	}
	return r.entries[len(r.entries)-1], true
}

func (r *slotRing) append(e *slotEntry) {
	r.entries = append(r.entries, e)
}

// indexByChallengeHash returns the ring index of the entry whose challenge
// chain segment hashes to challengeHash, or -1 if none does.
func (r *slotRing) indexByChallengeHash(challengeHash consensus.Hash32) (int, error) {
	for i, e := range r.entries {
		h, err := e.eos.ChallengeChainHash()
		if err != nil {
			return -1, err
		}
		if h == challengeHash {
			return i, nil
		}
	}
	return -1, nil
}
