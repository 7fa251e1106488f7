// Package tx defines the unbalanced-then-balanced-then-signed transaction
// type produced by the constructors (spec.md §4.C) and consumed by the
// wallet (§4.B) and the poster (§4.G). Ledger validation itself is out of
// scope (spec.md §1 Non-goals) — the scripts are opaque to this layer.
package tx

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/hydra-onchain/chainwatch/pkg/chainstate"
	"github.com/hydra-onchain/chainwatch/pkg/crypto"
	"github.com/hydra-onchain/chainwatch/pkg/types"
)

// Witness is one party's signature over a transaction's signing bytes.
type Witness struct {
	VerificationKey types.VerificationKey `json:"verificationKey"`
	Signature       types.Signature       `json:"signature"`
}

// witnessJSON is the JSON representation of Witness with a hex-encoded signature.
type witnessJSON struct {
	VerificationKey types.VerificationKey `json:"verificationKey"`
	Signature       string                `json:"signature"`
}

// MarshalJSON encodes the witness with a hex-encoded signature.
func (w Witness) MarshalJSON() ([]byte, error) {
	return json.Marshal(witnessJSON{
		VerificationKey: w.VerificationKey,
		Signature:       hex.EncodeToString(w.Signature),
	})
}

// UnmarshalJSON decodes a witness with a hex-encoded signature.
func (w *Witness) UnmarshalJSON(data []byte) error {
	var j witnessJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	w.VerificationKey = j.VerificationKey
	if j.Signature != "" {
		b, err := hex.DecodeString(j.Signature)
		if err != nil {
			return err
		}
		w.Signature = b
	}
	return nil
}

// Tx is a ledger transaction as built by the constructors: zero or more
// inputs, zero or more outputs, an optional validity interval, and a set
// of witnesses collected as it is signed. Balancing (fee coverage,
// change) is applied by the wallet before Witnesses are populated.
type Tx struct {
	Inputs        []types.TxIn       `json:"inputs"`
	Outputs       []chainstate.TxOut `json:"outputs"`
	ValidityStart *types.Slot        `json:"validityStart,omitempty"`
	ValidityEnd   *types.Slot        `json:"validityEnd,omitempty"`
	Witnesses     []Witness          `json:"witnesses,omitempty"`
}

// Hash computes the transaction id: the BLAKE3 hash of the signing bytes.
// Witnesses are excluded so a transaction's id is stable across signing.
func (t *Tx) Hash() types.Hash {
	return crypto.Hash(t.SigningBytes())
}

// SigningBytes returns the canonical byte representation used for
// signing and hashing: inputs, outputs, and the validity interval, in a
// fixed binary layout. Witnesses are never included.
func (t *Tx) SigningBytes() []byte {
	var buf []byte

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(t.Inputs)))
	for _, in := range t.Inputs {
		buf = append(buf, in.TxID[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, in.Index)
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(t.Outputs)))
	for _, out := range t.Outputs {
		buf = append(buf, out.Address[:]...)
		buf = binary.LittleEndian.AppendUint64(buf, out.Value)
		buf = append(buf, byte(out.Datum.Tag))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(out.Datum.Payload)))
		buf = append(buf, out.Datum.Payload...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(out.ReferenceScript)))
		buf = append(buf, out.ReferenceScript...)
	}

	var start, end uint64
	if t.ValidityStart != nil {
		start = uint64(*t.ValidityStart)
	}
	if t.ValidityEnd != nil {
		end = uint64(*t.ValidityEnd)
	}
	buf = binary.LittleEndian.AppendUint64(buf, start)
	buf = binary.LittleEndian.AppendUint64(buf, end)

	return buf
}

// TotalOutputValue returns the sum of all output values.
func (t *Tx) TotalOutputValue() (uint64, error) {
	var total uint64
	for _, out := range t.Outputs {
		if total > math.MaxUint64-out.Value {
			return 0, fmt.Errorf("output value overflow")
		}
		total += out.Value
	}
	return total, nil
}

// ErrDuplicateInput is returned when a transaction spends the same TxIn
// twice; a structural defect, not a ledger-validation concern.
var ErrDuplicateInput = errors.New("duplicate input")

// CheckStructure verifies the minimal structural invariant every
// constructed transaction must hold before it is balanced: no duplicate
// inputs. It does not check the number of inputs. Full ledger validation
// (script execution, value conservation) is the chain's job, not ours.
func (t *Tx) CheckStructure() error {
	seen := make(map[types.TxIn]bool, len(t.Inputs))
	for _, in := range t.Inputs {
		if seen[in] {
			return fmt.Errorf("input %s: %w", in, ErrDuplicateInput)
		}
		seen[in] = true
	}
	return nil
}
