// Package chainstate defines the pure data types that describe what the
// on-chain interface layer has observed on the ledger: UTxO entries and
// the rollback-safe history of Head-relevant chain state (spec.md §3
// "UTxO", "ChainStateAt", "ChainStateHistory").
package chainstate

import (
	"sort"

	"github.com/hydra-onchain/chainwatch/pkg/types"
)

// TxOut is a single ledger output: an address, a value, an optional
// Head-relevant datum, and an optional reference script (spec.md §3
// "UTxO: a mapping from TxIn ... to TxOut (address, value, datum,
// reference script)").
type TxOut struct {
	Address         types.Address `json:"address"`
	Value           uint64        `json:"value"`
	Datum           types.Datum   `json:"datum"`
	ReferenceScript []byte        `json:"referenceScript,omitempty"`
}

// HasReferenceScript reports whether this output carries a reference
// script. The observers recognise Head outputs by datum tag, not by this.
func (o TxOut) HasReferenceScript() bool {
	return len(o.ReferenceScript) > 0
}

// UTxO is a mapping from TxIn to TxOut. Keys are unique; iteration order
// is irrelevant except where the wallet's fee-coverage algorithm imposes
// its own deterministic ordering over TxIn byte order (spec.md §4.B).
type UTxO map[types.TxIn]TxOut

// NewUTxO returns an empty UTxO set.
func NewUTxO() UTxO {
	return make(UTxO)
}

// Clone returns a shallow copy of the set: independent map, shared TxOut
// values (TxOut is a value type with no shared mutable state).
func (u UTxO) Clone() UTxO {
	out := make(UTxO, len(u))
	for k, v := range u {
		out[k] = v
	}
	return out
}

// Merge returns a new UTxO combining u with other; entries in other
// override entries in u on key collision.
func (u UTxO) Merge(other UTxO) UTxO {
	out := u.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Without returns a new UTxO with the given inputs removed.
func (u UTxO) Without(ins ...types.TxIn) UTxO {
	out := u.Clone()
	for _, in := range ins {
		delete(out, in)
	}
	return out
}

// TotalValue sums the value of every entry in the set.
func (u UTxO) TotalValue() uint64 {
	var total uint64
	for _, out := range u {
		total += out.Value
	}
	return total
}

// SortedKeys returns the set's TxIn keys ordered by TxIn.Less, giving
// callers a deterministic iteration order (spec.md §4.B "Tie-break by
// TxIn byte order to keep results reproducible across nodes").
func (u UTxO) SortedKeys() []types.TxIn {
	keys := make([]types.TxIn, 0, len(u))
	for k := range u {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})
	return keys
}

// FindByDatumTag returns every entry whose datum carries the given tag.
// The result is a map and has no order; callers that need one sort its
// keys. Used by the constructors to pick out thread/initial/commit
// outputs from the Head-relevant UTxO slice.
func (u UTxO) FindByDatumTag(tag types.DatumTag) map[types.TxIn]TxOut {
	matches := make(map[types.TxIn]TxOut)
	for in, out := range u {
		if out.Datum.Tag == tag {
			matches[in] = out
		}
	}
	return matches
}
