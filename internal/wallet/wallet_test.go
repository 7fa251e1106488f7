package wallet

import (
	"testing"

	"github.com/hydra-onchain/chainwatch/pkg/chainstate"
	"github.com/hydra-onchain/chainwatch/pkg/crypto"
	"github.com/hydra-onchain/chainwatch/pkg/tx"
	"github.com/hydra-onchain/chainwatch/pkg/types"
)

func newTestWallet(t *testing.T) (*TinyWallet, *crypto.PrivateKey) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return NewTinyWallet(key), key
}

func TestTinyWallet_GetUTxO_FiltersByAddress(t *testing.T) {
	w, _ := newTestWallet(t)
	other := types.Address{0xAA}

	owned := types.TxIn{TxID: types.Hash{0x01}, Index: 0}
	foreign := types.TxIn{TxID: types.Hash{0x02}, Index: 0}

	all := chainstate.UTxO{
		owned:   {Address: w.Address(), Value: 1000},
		foreign: {Address: other, Value: 2000},
	}

	got := w.GetUTxO(all)
	if len(got) != 1 {
		t.Fatalf("expected 1 owned utxo, got %d", len(got))
	}
	if _, ok := got[owned]; !ok {
		t.Error("expected the wallet-owned input to be present")
	}
}

func TestTinyWallet_GetSeedInput_Deterministic(t *testing.T) {
	w, _ := newTestWallet(t)
	all := chainstate.UTxO{
		{TxID: types.Hash{0x02}, Index: 0}: {Address: w.Address(), Value: 1000},
		{TxID: types.Hash{0x01}, Index: 0}: {Address: w.Address(), Value: 500},
	}

	in1, ok1 := w.GetSeedInput(all)
	in2, ok2 := w.GetSeedInput(all)
	if !ok1 || !ok2 {
		t.Fatal("expected a seed input to be found")
	}
	if in1 != in2 {
		t.Error("GetSeedInput should be deterministic given the same UTxO set")
	}
}

func TestTinyWallet_GetSeedInput_Empty(t *testing.T) {
	w, _ := newTestWallet(t)
	_, ok := w.GetSeedInput(chainstate.NewUTxO())
	if ok {
		t.Error("expected no seed input when the wallet owns nothing")
	}
}

func TestTinyWallet_FinalizeTx_SignsAndCoversFee(t *testing.T) {
	w, _ := newTestWallet(t)
	fuel := types.TxIn{TxID: types.Hash{0x05}, Index: 0}
	all := chainstate.UTxO{
		fuel: {Address: w.Address(), Value: 1_000_000},
	}

	b := tx.NewBuilder().AddOutput(types.Address{0x77}, 500)

	picked, err := w.FinalizeTx(b, all, 1)
	if err != nil {
		t.Fatalf("FinalizeTx: %v", err)
	}
	if len(picked) != 1 || picked[0] != fuel {
		t.Errorf("picked = %v, want [%v]", picked, fuel)
	}

	built := b.Build()
	if len(built.Witnesses) != 1 {
		t.Fatalf("expected 1 witness, got %d", len(built.Witnesses))
	}
	hash := built.Hash()
	wit := built.Witnesses[0]
	if !crypto.VerifyHash(hash, wit.Signature, wit.VerificationKey) {
		t.Error("wallet witness should verify")
	}
}

func TestTinyWallet_FinalizeTx_NotEnoughFunds(t *testing.T) {
	w, _ := newTestWallet(t)
	fuel := types.TxIn{TxID: types.Hash{0x09}, Index: 0}
	all := chainstate.UTxO{
		fuel: {Address: w.Address(), Value: 1},
	}

	b := tx.NewBuilder().AddOutput(types.Address{0x22}, 500)

	_, err := w.FinalizeTx(b, all, 1_000_000)
	if err == nil {
		t.Fatal("expected ErrNotEnoughFunds")
	}
}
