// Package consensus holds the immutable, chain-wide parameters that the
// full-node staging store treats as a read-only collaborator (spec.md §3,
// "Consensus constants"). Nothing here is mutated after construction, so a
// single *Constants value may be shared by every Store without locking.
package consensus

import "github.com/holiman/uint256"

// Hash32 is a 32-byte identifier: a challenge hash, a block header hash, a
// VDF challenge hash, or a quality string. It mirrors chia's bytes32.
type Hash32 [32]byte

// Uint128 is the iteration-count type used throughout the timing skeleton
// (chia's uint128). Iteration counts accumulate for the lifetime of the
// chain and can exceed 64 bits on a long-lived network, so arithmetic on
// them goes through holiman/uint256 rather than a native Go integer.
type Uint128 = uint256.Int

// NewUint128 builds a Uint128 from a uint64, the common case for test
// fixtures and for values that originate from a single VDF's iteration
// count.
func NewUint128(v uint64) *Uint128 {
	return new(uint256.Int).SetUint64(v)
}

// Constants are the consensus parameters a full node is configured with.
// They are supplied once at store construction and treated as immutable
// for the lifetime of the process (spec.md §5, "Shared resources").
type Constants struct {
	// NumCheckpointsPerSlot is the number of signage-point checkpoints a
	// sub-slot is partitioned into (spec.md's NUM_CHECKPOINTS_PER_SLOT).
	// Checkpoint index 0 is always the empty sentinel.
	NumCheckpointsPerSlot uint8

	// MinSubBlocksPerChallengeBlock is the minimum number of sub-blocks a
	// challenge chain segment must span before a deficit resets to zero.
	MinSubBlocksPerChallengeBlock uint8

	// FirstCCChallenge anchors the chain's initial challenge hash, used by
	// GetFinishedSubSlots when there is no parent sub-block yet (spec.md §6,
	// "Genesis interplay").
	FirstCCChallenge Hash32

	// SubSlotItersPerIP is the number of sub-slot iterations at an ips of
	// 1_000_000_000; CalculateSubSlotIters scales it linearly by ips.
	SubSlotItersPerIP uint64

	// NumSignagePointIntervalsExtra is the number of signage-point
	// intervals of buffer chia inserts between a signage point and its
	// matching infusion point, to give plot lookups time to complete. It
	// feeds CalculateIPIters.
	NumSignagePointIntervalsExtra uint64
}

// Mainnet returns the production consensus constants. Concrete numeric
// defaults are set the way src/simulator/simulator_constants.py sets its
// own constants dict: as plain data, not derived.
func Mainnet() *Constants {
	return &Constants{
		NumCheckpointsPerSlot:         32,
		MinSubBlocksPerChallengeBlock: 16,
		FirstCCChallenge:              Hash32{},
		SubSlotItersPerIP:             64_000_000_000,
		NumSignagePointIntervalsExtra: 3,
	}
}

// Simulator returns consensus constants tuned for fast local testing:
// fewer checkpoints per slot and a far smaller sub-slot-iters budget, the
// same role src/simulator/simulator_constants.py plays for the original
// node.
func Simulator() *Constants {
	c := Mainnet()
	c.NumCheckpointsPerSlot = 8
	c.MinSubBlocksPerChallengeBlock = 4
	c.SubSlotItersPerIP = 1000
	return c
}

// CalculateSubSlotIters returns the number of VDF iterations a sub-slot at
// the given iterations-per-second rate is expected to span. The original
// pot_iterations.py formula was not part of the retrieved source; this is
// the simplified form spec.md §4.2 describes ("compute sub_slot_iters from
// peak.ips"), recorded as an Open Question resolution in DESIGN.md.
func CalculateSubSlotIters(c *Constants, ips uint64) uint64 {
	return ips * c.SubSlotItersPerIP / 1_000_000_000
}

// CalculateIPIters returns the number of iterations from the start of a
// sub-slot to a sub-block's infusion point, given the farmer's required
// iterations for that sub-block. It is always strictly less than
// sub-slot-iters (spec.md uses it to derive sps_to_keep in §4.2).
func CalculateIPIters(c *Constants, subSlotIters uint64, requiredIters uint64) uint64 {
	extra := c.NumSignagePointIntervalsExtra * (subSlotIters / uint64(c.NumCheckpointsPerSlot))
	return (requiredIters + extra) % subSlotIters
}
