// Package wallet implements the TinyWallet component (spec.md §4.B): a
// minimal internal wallet that holds a single fuel keypair, used to sign
// chain transactions and cover their fees. It never spends Head-owned
// funds and never manages arbitrary addresses — it is a helper for
// posting transactions, not a general ledger wallet.
package wallet

import (
	"github.com/hydra-onchain/chainwatch/pkg/chainstate"
	"github.com/hydra-onchain/chainwatch/pkg/crypto"
	"github.com/hydra-onchain/chainwatch/pkg/tx"
	"github.com/hydra-onchain/chainwatch/pkg/types"

	"github.com/hydra-onchain/chainwatch/internal/log"
)

// TinyWallet holds the fuel keypair used to sign and pay for the
// transactions the on-chain interface layer posts on the Head's behalf.
type TinyWallet struct {
	key     *crypto.PrivateKey
	address types.Address
}

// NewTinyWallet derives a TinyWallet's address from its signing key.
func NewTinyWallet(key *crypto.PrivateKey) *TinyWallet {
	return &TinyWallet{
		key:     key,
		address: crypto.AddressFromVerificationKey(key.VerificationKey()),
	}
}

// Address returns the wallet's fuel address.
func (w *TinyWallet) Address() types.Address {
	return w.address
}

// VerificationKey returns the wallet's verification key.
func (w *TinyWallet) VerificationKey() types.VerificationKey {
	return w.key.VerificationKey()
}

// GetUTxO returns the subset of the given chain UTxO set owned by this
// wallet, used by the wallet to find candidate fuel inputs.
func (w *TinyWallet) GetUTxO(all chainstate.UTxO) chainstate.UTxO {
	owned := chainstate.NewUTxO()
	for in, out := range all {
		if out.Address == w.address {
			owned[in] = out
		}
	}
	return owned
}

// GetSeedInput picks a deterministic arbitrary input from the wallet's
// own UTxO to serve as a Head's seed input (spec.md §3, HeadSeed), so
// that distinct Initialize calls reliably pick distinct inputs when
// the wallet holds more than one.
func (w *TinyWallet) GetSeedInput(all chainstate.UTxO) (types.TxIn, bool) {
	owned := w.GetUTxO(all)
	keys := owned.SortedKeys()
	if len(keys) == 0 {
		return types.TxIn{}, false
	}
	return keys[0], true
}

// Sign adds the wallet's witness to a transaction builder.
func (w *TinyWallet) Sign(b *tx.Builder) error {
	log.Wallet.Debug().Str("address", w.address.String()).Msg("signing transaction")
	return b.Sign(w.key)
}

// FinalizeTx covers the fee of the transaction under construction from
// the wallet's own UTxO and adds the wallet's witness. The poster calls
// it to turn an unbalanced body from the transaction constructors
// (spec.md §4.C) into a postable transaction. Inputs the transaction
// already spends (such as an Init seed input) are not offered as fuel.
func (w *TinyWallet) FinalizeTx(b *tx.Builder, all chainstate.UTxO, feeRate uint64) ([]types.TxIn, error) {
	owned := w.GetUTxO(all).Without(b.Build().Inputs...)
	picked, err := CoverFee(b, owned, feeRate)
	if err != nil {
		return nil, err
	}
	if err := w.Sign(b); err != nil {
		return nil, err
	}
	return picked, nil
}
