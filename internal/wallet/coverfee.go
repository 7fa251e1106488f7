package wallet

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hydra-onchain/chainwatch/pkg/chainstate"
	"github.com/hydra-onchain/chainwatch/pkg/tx"
	"github.com/hydra-onchain/chainwatch/pkg/types"
)

// ErrNoFuelUTxO is returned when the wallet owns no UTxO at all to draw
// fee-covering inputs from, mapped to NoFuelUTXOFound at the poster
// boundary (spec.md §4.G).
var ErrNoFuelUTxO = errors.New("wallet: no fuel utxo available")

// ErrNotEnoughFunds is returned when the wallet owns some UTxO but it
// cannot cover the fee of a transaction under construction, mapped to
// NotEnoughFuel at the poster boundary (spec.md §4.G).
var ErrNotEnoughFunds = errors.New("not enough funds to cover fee")

// CoverFee adds wallet-owned inputs to an in-progress transaction
// builder until their total value covers the transaction's fee at the
// given rate. It picks the largest-value candidates first and re-prices
// the required fee after each addition, since adding an input grows the
// transaction's signing bytes and therefore its own fee. Any excess
// above the required fee is left as extra fee rather than returned as
// change — the difference is never large enough to be worth a change
// output's own weight in the transaction.
//
// Candidates of equal value are ordered deterministically by TxIn.Less
// so that CoverFee picks the same inputs given the same UTxO set.
func CoverFee(builder *tx.Builder, walletUTxO chainstate.UTxO, feeRate uint64) ([]types.TxIn, error) {
	candidates := walletUTxO.SortedKeys()
	if len(candidates) == 0 {
		return nil, ErrNoFuelUTxO
	}

	sort.Slice(candidates, func(i, j int) bool {
		vi := walletUTxO[candidates[i]].Value
		vj := walletUTxO[candidates[j]].Value
		if vi != vj {
			return vi > vj
		}
		return candidates[i].Less(candidates[j])
	})

	var picked []types.TxIn
	var total uint64
	for _, in := range candidates {
		builder.AddInput(in)
		picked = append(picked, in)
		total += walletUTxO[in].Value

		needed := tx.RequiredFee(builder.Build(), feeRate)
		if total >= needed {
			return picked, nil
		}
	}

	needed := tx.RequiredFee(builder.Build(), feeRate)
	return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughFunds, total, needed)
}
