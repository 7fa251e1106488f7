package types

import "time"

// Slot is an absolute ledger slot number.
type Slot uint64

// ChainSlot is the slot component of a ChainPoint, used by LocalChainState
// rollback (spec.md §4.E "rollback(toSlot: ChainSlot)").
type ChainSlot = Slot

// UtcTime is wall-clock time, used at the TimeHandle boundary (spec.md
// §4.A). A distinct alias (rather than bare time.Time) marks every site
// that crosses the slot/UTC conversion boundary.
type UtcTime = time.Time

// ChainPoint identifies a position on chain: a slot plus the hash of the
// block at that slot. The genesis/initial ChainStateAt has no ChainPoint
// (spec.md §3 "recordedAt = None only for the genesis/initial state").
type ChainPoint struct {
	Slot    Slot `json:"slot"`
	BlockId Hash `json:"blockId"`
}

// IsZero reports whether this is the zero ChainPoint (slot 0, no block).
func (p ChainPoint) IsZero() bool {
	return p.Slot == 0 && p.BlockId.IsZero()
}

// ContestationPeriod is a non-negative duration, expressed in whole
// seconds (spec.md §3 "ContestationPeriod").
type ContestationPeriod time.Duration

// DefaultMaxGraceTime is the default upper bound on how far into the
// future a time-sensitive transaction's validity interval may reach
// (spec.md §4.C "maxGraceTime (default 200s)").
const DefaultMaxGraceTime = ContestationPeriod(200 * time.Second)

// Seconds returns the contestation period as whole seconds.
func (cp ContestationPeriod) Seconds() int64 {
	return int64(time.Duration(cp) / time.Second)
}

// Valid reports whether cp obeys 0 <= cp <= maxGraceTime.
func (cp ContestationPeriod) Valid(maxGraceTime ContestationPeriod) bool {
	return cp >= 0 && cp <= maxGraceTime
}

// EffectiveDelay caps cp at maxGraceTime, per spec.md §4.C's upper-bound
// computation for time-sensitive actions (Close/Contest/Fanout validity
// intervals).
func EffectiveDelay(cp, maxGraceTime ContestationPeriod) ContestationPeriod {
	if cp > maxGraceTime {
		return maxGraceTime
	}
	return cp
}
