package forkchoice

import "errors"

// Outcome classifies how the store resolved an incoming message, mirroring
// the three-tier handling a full node applies to anything it is asked to
// stage (spec.md §7, "Reject / Defer / Fatal").
type Outcome int

const (
	// Accepted means the message was validated and staged.
	Accepted Outcome = iota
	// Rejected means the message failed validation and was dropped; it is
	// safe, and expected, for misbehaving or lagging peers to produce
	// these.
	Rejected
	// Deferred means the message is well-formed but depends on an
	// infusion the store hasn't observed yet; it is parked in a future
	// cache and replayed from NewPeak.
	Deferred
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Deferred:
		return "deferred"
	default:
		return "unknown"
	}
}

// ErrEndpointNotFound is returned by lookups (GetSubSlot, GetSignagePoint,
// GetSignagePointByIndex) that find no matching entry. Callers that need
// to distinguish "not found" from a hard failure should compare against
// this value with errors.Is.
var ErrEndpointNotFound = errors.New("forkchoice: no matching entry in store")

// ErrNoPeak reports that the store has not yet accepted a peak. No Store
// method in this package returns it.
var ErrNoPeak = errors.New("forkchoice: store has no peak yet")
