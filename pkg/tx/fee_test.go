package tx

import (
	"testing"

	"github.com/hydra-onchain/chainwatch/pkg/types"
)

func TestEstimateFee_GrowsWithInputsAndOutputs(t *testing.T) {
	base := EstimateFee(1, 1, 1)
	moreInputs := EstimateFee(2, 1, 1)
	moreOutputs := EstimateFee(1, 2, 1)

	if moreInputs <= base {
		t.Errorf("adding an input should increase the estimate: %d <= %d", moreInputs, base)
	}
	if moreOutputs <= base {
		t.Errorf("adding an output should increase the estimate: %d <= %d", moreOutputs, base)
	}
}

func TestEstimateFee_ScalesWithFeeRate(t *testing.T) {
	low := EstimateFee(1, 1, 1)
	high := EstimateFee(1, 1, 10)

	if high != low*10 {
		t.Errorf("EstimateFee should scale linearly with feeRate: got %d, want %d", high, low*10)
	}
}

func TestEstimateFee_ExtraDatumBytes(t *testing.T) {
	plain := EstimateFee(1, 1, 1)
	withDatum := EstimateFee(1, 1, 1, 64)

	if withDatum <= plain {
		t.Errorf("extra datum bytes should increase the estimate: %d <= %d", withDatum, plain)
	}
}

func TestEstimateFee_ZeroRate(t *testing.T) {
	if got := EstimateFee(3, 2, 0); got != 0 {
		t.Errorf("EstimateFee at rate 0 = %d, want 0", got)
	}
}

func TestRequiredFee_MatchesSigningBytesLength(t *testing.T) {
	txn := NewBuilder().
		AddInput(types.TxIn{TxID: types.Hash{0x01}, Index: 0}).
		AddOutput(types.Address{0x02}, 1000).
		Build()

	fee := RequiredFee(txn, 2)
	want := uint64(len(txn.SigningBytes())) * 2
	if fee != want {
		t.Errorf("RequiredFee = %d, want %d", fee, want)
	}
}
