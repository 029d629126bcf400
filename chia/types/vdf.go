// Package types defines the wire-level value objects the staging store
// keeps in memory: VDF proofs, end-of-sub-slot bundles, signage points and
// the block family that eventually gets infused. Identity for all of these
// is their SSZ hash tree root (spec.md §2, "Identity: every hash is a
// HashTreeRoot, never a struct-equality check"), computed with
// ferranbt/fastssz the way prysm generates it for beacon-chain types.
package types

import (
	ssz "github.com/ferranbt/fastssz"

	"github.com/chia-network/gochia/chia/consensus"
)

// VDFInfo is the public output of a verifiable delay function run: the
// challenge it was seeded with, the number of iterations computed, and the
// resulting class-group element.
type VDFInfo struct {
	Challenge          consensus.Hash32
	NumberOfIterations uint64
	Output             [100]byte
}

// HashTreeRoot computes the SSZ hash tree root of VDFInfo.
func (v *VDFInfo) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(v)
}

// HashTreeRootWith ssz hashes the VDFInfo object with a hasher.
func (v *VDFInfo) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutBytes(v.Challenge[:])
	hh.PutUint64(v.NumberOfIterations)
	hh.PutBytes(v.Output[:])
	hh.Merkleize(indx)
	return nil
}

// VDFProof is the proof (witness) that a VDF's output was computed
// honestly, and whether it was produced by a normalized-to-disk
// ("compressed") class-group form. The VDFInfo it proves is held
// separately.
type VDFProof struct {
	WitnessType         uint8
	Witness             []byte
	NormalizedToDisk    bool
}

// HashTreeRoot computes the SSZ hash tree root of VDFProof.
func (p *VDFProof) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(p)
}

// HashTreeRootWith ssz hashes the VDFProof object with a hasher.
func (p *VDFProof) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()
	hh.PutUint8(p.WitnessType)
	hh.PutBytes(p.Witness)
	hh.PutBool(p.NormalizedToDisk)
	hh.Merkleize(indx)
	return nil
}
