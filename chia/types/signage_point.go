package types

import (
	ssz "github.com/ferranbt/fastssz"

	"github.com/chia-network/gochia/chia/consensus"
)

// SignagePoint is a single checkpoint within a sub-slot: a challenge chain
// VDF plus its matching reward chain VDF and their proofs. Index 0 is
// never stored directly — it is the "start of sub-slot" sentinel produced
// implicitly by GetSignagePointByIndex (spec.md §6, "checkpoint 0").
type SignagePoint struct {
	ChallengeChainVDF      VDFInfo
	ChallengeChainVDFProof VDFProof
	RewardChainVDF         VDFInfo
	RewardChainVDFProof    VDFProof
}

// HashTreeRoot computes the SSZ hash tree root.
func (s *SignagePoint) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(s)
}

// HashTreeRootWith ssz hashes the object with a hasher.
func (s *SignagePoint) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	if err := s.ChallengeChainVDF.HashTreeRootWith(hh); err != nil {
		return err
	}
	if err := s.RewardChainVDF.HashTreeRootWith(hh); err != nil {
		return err
	}
	hh.Merkleize(indx)
	return nil
}

// RewardChainHash is the reward-chain VDF's challenge, the value
// GetSignagePointByIndex matches against the caller's last reward-chain
// infusion.
func (s *SignagePoint) RewardChainHash() consensus.Hash32 {
	return s.RewardChainVDF.Challenge
}
