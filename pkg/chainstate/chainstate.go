package chainstate

import (
	"errors"

	"github.com/hydra-onchain/chainwatch/pkg/types"
)

// ChainStateAt is the Head-relevant chain state as of a given point: the
// thread/commit/initial UTxO slice plus where on chain it was recorded
// (spec.md §3 "ChainStateAt"). RecordedAt is the zero ChainPoint only for
// the genesis/initial state, before anything has been observed.
type ChainStateAt struct {
	UTxO       UTxO
	RecordedAt types.ChainPoint
	IsInitial  bool
}

// NewInitialChainStateAt returns the genesis/initial ChainStateAt: no
// RecordedAt point, an empty UTxO slice.
func NewInitialChainStateAt() ChainStateAt {
	return ChainStateAt{UTxO: NewUTxO(), IsInitial: true}
}

// Slot returns the slot this state was recorded at, or 0 for the initial
// state (callers that need to distinguish the two should check IsInitial).
func (s ChainStateAt) Slot() types.Slot {
	return s.RecordedAt.Slot
}

// ErrEmptyHistory is returned by operations that require at least one
// entry; ChainStateHistory is never constructed empty, so this should
// only ever surface from a misused zero-value History.
var ErrEmptyHistory = errors.New("chain state history is empty")

// History is an ordered, non-empty sequence of ChainStateAt, newest last
// (spec.md §3 "ChainStateHistory"). The first entry is a pinned safety
// anchor that rollback never discards; the last entry is always "the
// current state". Slots strictly increase along the sequence (after the
// anchor, which may itself have slot 0).
type History struct {
	entries []ChainStateAt
}

// NewHistory starts a history pinned at the given anchor state.
func NewHistory(anchor ChainStateAt) *History {
	return &History{entries: []ChainStateAt{anchor}}
}

// Current returns the most recent (tail) entry.
func (h *History) Current() ChainStateAt {
	return h.entries[len(h.entries)-1]
}

// Anchor returns the pinned first entry, never rolled past.
func (h *History) Anchor() ChainStateAt {
	return h.entries[0]
}

// Len returns the number of entries in the history.
func (h *History) Len() int {
	return len(h.entries)
}

// Push appends a new state to the history. Returns an error if the new
// state's slot does not strictly exceed the current tail's slot, keeping
// the strictly-increasing-slots invariant intact.
func (h *History) Push(next ChainStateAt) error {
	current := h.Current()
	if !next.IsInitial && !current.IsInitial && next.Slot() <= current.Slot() {
		return errors.New("chainstate: push must strictly increase slot")
	}
	h.entries = append(h.entries, next)
	return nil
}

// Rollback drops every entry with slot strictly greater than toSlot,
// returning the new tail (spec.md §4.E "rollback(toSlot) -> ChainStateAt:
// drop every entry with slot > toSlot; the last remaining entry becomes
// current and is returned"). If toSlot predates the anchor, the anchor is
// returned unchanged — a hard rollback limit the caller must treat as
// fatal for the in-flight rollback.
func (h *History) Rollback(toSlot types.ChainSlot) ChainStateAt {
	anchor := h.Anchor()
	if !anchor.IsInitial && toSlot < anchor.Slot() {
		h.entries = []ChainStateAt{anchor}
		return anchor
	}

	kept := []ChainStateAt{anchor}
	for _, e := range h.entries[1:] {
		if e.Slot() > toSlot {
			break
		}
		kept = append(kept, e)
	}
	h.entries = kept
	return h.Current()
}

// Entries returns a copy of the full history, oldest first.
func (h *History) Entries() []ChainStateAt {
	out := make([]ChainStateAt, len(h.entries))
	copy(out, h.entries)
	return out
}
