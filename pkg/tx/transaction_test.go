package tx

import (
	"math"
	"testing"

	"github.com/hydra-onchain/chainwatch/pkg/chainstate"
	"github.com/hydra-onchain/chainwatch/pkg/types"
)

func TestTx_Hash_Deterministic(t *testing.T) {
	txn := &Tx{
		Inputs:  []types.TxIn{{TxID: types.Hash{0x01}, Index: 0}},
		Outputs: []chainstate.TxOut{{Value: 1000}},
	}

	h1 := txn.Hash()
	h2 := txn.Hash()
	if h1 != h2 {
		t.Error("Hash() should be deterministic")
	}
	if h1.IsZero() {
		t.Error("Hash() should not be zero")
	}
}

func TestTx_Hash_ChangesWithContent(t *testing.T) {
	tx1 := &Tx{
		Inputs:  []types.TxIn{{TxID: types.Hash{0x01}, Index: 0}},
		Outputs: []chainstate.TxOut{{Value: 1000}},
	}
	tx2 := &Tx{
		Inputs:  []types.TxIn{{TxID: types.Hash{0x01}, Index: 0}},
		Outputs: []chainstate.TxOut{{Value: 2000}},
	}

	if tx1.Hash() == tx2.Hash() {
		t.Error("different transactions should have different hashes")
	}
}

func TestTx_Hash_IgnoresWitnesses(t *testing.T) {
	txn := &Tx{
		Inputs:  []types.TxIn{{TxID: types.Hash{0x01}, Index: 0}},
		Outputs: []chainstate.TxOut{{Value: 1000}},
	}

	h1 := txn.Hash()
	txn.Witnesses = append(txn.Witnesses, Witness{Signature: types.Signature("sig")})
	h2 := txn.Hash()

	if h1 != h2 {
		t.Error("Hash() should not change when witnesses are added")
	}
}

func TestTx_TotalOutputValue(t *testing.T) {
	txn := &Tx{
		Outputs: []chainstate.TxOut{
			{Value: 1000},
			{Value: 2000},
			{Value: 3000},
		},
	}
	got, err := txn.TotalOutputValue()
	if err != nil {
		t.Fatalf("TotalOutputValue() error: %v", err)
	}
	if got != 6000 {
		t.Errorf("TotalOutputValue() = %d, want 6000", got)
	}
}

func TestTx_TotalOutputValue_Empty(t *testing.T) {
	txn := &Tx{}
	got, err := txn.TotalOutputValue()
	if err != nil {
		t.Fatalf("TotalOutputValue() error: %v", err)
	}
	if got != 0 {
		t.Errorf("TotalOutputValue() empty = %d, want 0", got)
	}
}

func TestTx_TotalOutputValue_Overflow(t *testing.T) {
	txn := &Tx{
		Outputs: []chainstate.TxOut{
			{Value: math.MaxUint64},
			{Value: 1},
		},
	}
	_, err := txn.TotalOutputValue()
	if err == nil {
		t.Error("TotalOutputValue() should return error on overflow")
	}
}

func TestTx_CheckStructure_DuplicateInput(t *testing.T) {
	in := types.TxIn{TxID: types.Hash{0x01}, Index: 0}
	txn := &Tx{Inputs: []types.TxIn{in, in}}

	if err := txn.CheckStructure(); err == nil {
		t.Error("expected duplicate-input error")
	}
}

func TestTx_CheckStructure_Ok(t *testing.T) {
	txn := &Tx{Inputs: []types.TxIn{
		{TxID: types.Hash{0x01}, Index: 0},
		{TxID: types.Hash{0x02}, Index: 0},
	}}

	if err := txn.CheckStructure(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
