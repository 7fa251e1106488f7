package tx

import (
	"fmt"

	"github.com/hydra-onchain/chainwatch/pkg/chainstate"
	"github.com/hydra-onchain/chainwatch/pkg/crypto"
	"github.com/hydra-onchain/chainwatch/pkg/types"
)

// Builder constructs a Tx incrementally. Used by the transaction
// constructors (spec.md §4.C) to assemble unbalanced bodies before the
// wallet balances and signs them.
type Builder struct {
	tx *Tx
}

// NewBuilder creates a new, empty transaction builder.
func NewBuilder() *Builder {
	return &Builder{tx: &Tx{}}
}

// AddInput adds an input spending the given TxIn.
func (b *Builder) AddInput(in types.TxIn) *Builder {
	b.tx.Inputs = append(b.tx.Inputs, in)
	return b
}

// AddOutput adds a plain output with no datum.
func (b *Builder) AddOutput(address types.Address, value uint64) *Builder {
	b.tx.Outputs = append(b.tx.Outputs, chainstate.TxOut{Address: address, Value: value})
	return b
}

// AddDatumOutput adds an output carrying a Head-relevant datum (thread,
// initial, or commit output).
func (b *Builder) AddDatumOutput(address types.Address, value uint64, datum types.Datum) *Builder {
	b.tx.Outputs = append(b.tx.Outputs, chainstate.TxOut{Address: address, Value: value, Datum: datum})
	return b
}

// AddOutputs appends pre-built outputs verbatim (used when the
// constructor already produced chainstate.TxOut values, e.g. when
// redistributing a snapshot's UTxO during Fanout).
func (b *Builder) AddOutputs(outs ...chainstate.TxOut) *Builder {
	b.tx.Outputs = append(b.tx.Outputs, outs...)
	return b
}

// SetValidityInterval sets the transaction's validity interval. A nil
// bound leaves that side of the interval open.
func (b *Builder) SetValidityInterval(start, end *types.Slot) *Builder {
	b.tx.ValidityStart = start
	b.tx.ValidityEnd = end
	return b
}

// Sign adds a witness from a single signing key, covering every input
// (single-key spending, used by the wallet's own fuel inputs).
func (b *Builder) Sign(key *crypto.PrivateKey) error {
	hash := b.tx.Hash()
	sig, err := key.SignHash(hash)
	if err != nil {
		return fmt.Errorf("sign tx: %w", err)
	}
	b.tx.Witnesses = append(b.tx.Witnesses, Witness{
		VerificationKey: key.VerificationKey(),
		Signature:       sig,
	})
	return nil
}

// SignMulti adds one witness per signer, used when a transaction needs
// signatures from several parties (e.g. a CollectCom or Close tx that
// also needs the fuel-input owner's signature).
func (b *Builder) SignMulti(keys ...*crypto.PrivateKey) error {
	hash := b.tx.Hash()
	for _, key := range keys {
		sig, err := key.SignHash(hash)
		if err != nil {
			return fmt.Errorf("sign tx: %w", err)
		}
		b.tx.Witnesses = append(b.tx.Witnesses, Witness{
			VerificationKey: key.VerificationKey(),
			Signature:       sig,
		})
	}
	return nil
}

// Build returns the constructed transaction. Does not check structure —
// call tx.CheckStructure() separately.
func (b *Builder) Build() *Tx {
	return b.tx
}
