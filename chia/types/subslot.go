package types

import (
	ssz "github.com/ferranbt/fastssz"

	"github.com/chia-network/gochia/chia/consensus"
)

// ChallengeChainSubSlot carries the challenge chain's contribution to an
// end-of-sub-slot bundle: the VDF that was run across the whole sub-slot,
// plus the icc/difficulty/iters fields that only appear when the sub-slot
// also ends an epoch.
type ChallengeChainSubSlot struct {
	ChallengeChainEndOfSlotVDF      VDFInfo
	InfusedChallengeChainSubSlotHash *consensus.Hash32
	SubepochSummaryHash              *consensus.Hash32
	NewSubSlotIters                  *uint64
	NewDifficulty                    *uint64
}

// HashTreeRoot computes the SSZ hash tree root.
func (c *ChallengeChainSubSlot) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(c)
}

// HashTreeRootWith ssz hashes the object with a hasher.
func (c *ChallengeChainSubSlot) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	if err := c.ChallengeChainEndOfSlotVDF.HashTreeRootWith(hh); err != nil {
		return err
	}
	hashOptionalHash32(hh, c.InfusedChallengeChainSubSlotHash)
	hashOptionalHash32(hh, c.SubepochSummaryHash)
	hashOptionalUint64(hh, c.NewSubSlotIters)
	hashOptionalUint64(hh, c.NewDifficulty)
	hh.Merkleize(indx)
	return nil
}

// InfusedChallengeChainSubSlot carries the infused challenge chain's VDF
// for a sub-slot. It is present only when the previous sub-block had a
// deficit below the challenge-block threshold (spec.md §2, "icc presence").
type InfusedChallengeChainSubSlot struct {
	InfusedChallengeChainEndOfSlotVDF VDFInfo
}

// HashTreeRoot computes the SSZ hash tree root.
func (i *InfusedChallengeChainSubSlot) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(i)
}

// HashTreeRootWith ssz hashes the object with a hasher.
func (i *InfusedChallengeChainSubSlot) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	if err := i.InfusedChallengeChainEndOfSlotVDF.HashTreeRootWith(hh); err != nil {
		return err
	}
	hh.Merkleize(indx)
	return nil
}

// RewardChainSubSlot is the reward chain's contribution to an
// end-of-sub-slot bundle, and the only one of the three that carries the
// per-sub-slot deficit.
type RewardChainSubSlot struct {
	EndOfSlotVDF              VDFInfo
	ChallengeChainSubSlotHash consensus.Hash32
	InfusedChallengeChainSubSlotHash *consensus.Hash32
	Deficit                   uint8
}

// HashTreeRoot computes the SSZ hash tree root.
func (r *RewardChainSubSlot) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(r)
}

// HashTreeRootWith ssz hashes the object with a hasher.
func (r *RewardChainSubSlot) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	if err := r.EndOfSlotVDF.HashTreeRootWith(hh); err != nil {
		return err
	}
	hh.PutBytes(r.ChallengeChainSubSlotHash[:])
	hashOptionalHash32(hh, r.InfusedChallengeChainSubSlotHash)
	hh.PutUint8(r.Deficit)
	hh.Merkleize(indx)
	return nil
}

// EndOfSubSlotBundle is the full proof that a sub-slot elapsed: the
// challenge chain segment, the optional infused challenge chain segment,
// the reward chain segment, and proofs for each VDF. The store indexes
// these by ChallengeChainHash; its identity is its challenge chain
// segment's hash (spec.md §3, "EOS key").
type EndOfSubSlotBundle struct {
	ChallengeChain           ChallengeChainSubSlot
	InfusedChallengeChain    *InfusedChallengeChainSubSlot
	RewardChain              RewardChainSubSlot
	ChallengeChainVDFProof   VDFProof
	InfusedChallengeChainVDFProof *VDFProof
	RewardChainVDFProof      VDFProof
}

// RewardChainHash is the hash tree root of the reward chain segment, used
// to check that a following sub-slot or signage point chains from this
// one's reward chain (the store's own indexing key is ChallengeChainHash,
// not this).
func (e *EndOfSubSlotBundle) RewardChainHash() (consensus.Hash32, error) {
	root, err := e.RewardChain.HashTreeRoot()
	return consensus.Hash32(root), err
}

// ChallengeChainHash is the identity a new sub-slot's challenge chain
// segment must chain from: the hash tree root of the prior challenge chain
// segment.
func (e *EndOfSubSlotBundle) ChallengeChainHash() (consensus.Hash32, error) {
	root, err := e.ChallengeChain.HashTreeRoot()
	return consensus.Hash32(root), err
}

func hashOptionalHash32(hh *ssz.Hasher, h *consensus.Hash32) {
	if h == nil {
		hh.PutBytes(make([]byte, 32))
		hh.PutUint64(0)
		return
	}
	hh.PutBytes(h[:])
	hh.PutUint64(1)
}

func hashOptionalUint64(hh *ssz.Hasher, v *uint64) {
	if v == nil {
		hh.PutUint64(0)
		hh.PutUint64(0)
		return
	}
	hh.PutUint64(*v)
	hh.PutUint64(1)
}
