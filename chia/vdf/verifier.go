// Package vdf verifies the VDF proofs that back every end-of-sub-slot,
// signage point, and infusion point the store accepts. Verification is the
// one CPU-bound step in the store's otherwise cheap bookkeeping, so a
// verified proof's result is cached by content hash the way
// VDFChain.verifiedChains caches chain verification in the reference VDF
// package this is grounded on.
package vdf

import (
	"crypto/sha256"
	"errors"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"

	"github.com/chia-network/gochia/chia/types"
)

// ErrInvalidProof is returned when a VDF proof fails verification.
var ErrInvalidProof = errors.New("vdf: invalid proof")

// defaultCacheSize bounds the number of verified-proof results retained.
// A sub-slot produces at most three proofs (cc, icc, rc) and the store
// only ever needs to re-check a proof once per observed message, so a few
// thousand entries comfortably covers a node's working set.
const defaultCacheSize = 4096

// Verifier checks VDF proofs against their claimed info. Implementations
// must be safe for concurrent use.
type Verifier interface {
	Verify(info *types.VDFInfo, proof *types.VDFProof) (bool, error)
}

// CachingVerifier wraps a Verifier with an LRU cache keyed by the sha256 of
// the info+proof bytes, so a proof that arrives on multiple gossip paths
// (or is replayed from a future cache) is verified at most once.
type CachingVerifier struct {
	inner Verifier
	cache *lru.Cache
	log   logrus.FieldLogger
}

// NewCachingVerifier builds a CachingVerifier around inner, sized to hold
// defaultCacheSize verified results.
func NewCachingVerifier(inner Verifier, log logrus.FieldLogger) *CachingVerifier {
	cache, err := lru.New(defaultCacheSize)
	if err != nil {
		// lru.New only errors on a non-positive size, which defaultCacheSize never is.
		panic(err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CachingVerifier{inner: inner, cache: cache, log: log}
}

// Verify returns whether proof is a valid VDF proof for info, consulting
// and populating the verified-proof cache.
func (c *CachingVerifier) Verify(info *types.VDFInfo, proof *types.VDFProof) (bool, error) {
	key, err := cacheKey(info, proof)
	if err != nil {
		return false, err
	}
	if v, ok := c.cache.Get(key); ok {
		return v.(bool), nil
	}
	ok, err := c.inner.Verify(info, proof)
	if err != nil {
		return false, err
	}
	c.cache.Add(key, ok)
	if !ok {
		c.log.WithField("challenge", info.Challenge).Warn("vdf: proof failed verification")
	}
	return ok, nil
}

// CacheSize returns the number of verified results currently cached.
func (c *CachingVerifier) CacheSize() int {
	return c.cache.Len()
}

// ClearCache evicts every cached verification result.
func (c *CachingVerifier) ClearCache() {
	c.cache.Purge()
}

func cacheKey(info *types.VDFInfo, proof *types.VDFProof) ([32]byte, error) {
	root, err := info.HashTreeRoot()
	if err != nil {
		return [32]byte{}, err
	}
	h := sha256.New()
	h.Write(root[:])
	h.Write([]byte{proof.WitnessType})
	h.Write(proof.Witness)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}
