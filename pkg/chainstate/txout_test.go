package chainstate

import (
	"testing"

	"github.com/hydra-onchain/chainwatch/pkg/types"
)

func txIn(b byte, idx uint32) types.TxIn {
	return types.TxIn{TxID: types.Hash{b}, Index: idx}
}

func TestUTxO_CloneIndependence(t *testing.T) {
	u := NewUTxO()
	in := txIn(0x01, 0)
	u[in] = TxOut{Value: 10}

	clone := u.Clone()
	clone[in] = TxOut{Value: 20}

	if u[in].Value != 10 {
		t.Errorf("original mutated via clone: got %d, want 10", u[in].Value)
	}
}

func TestUTxO_Merge(t *testing.T) {
	a := UTxO{txIn(0x01, 0): {Value: 1}}
	b := UTxO{txIn(0x02, 0): {Value: 2}, txIn(0x01, 0): {Value: 99}}

	merged := a.Merge(b)
	if len(merged) != 2 {
		t.Fatalf("merged length = %d, want 2", len(merged))
	}
	if merged[txIn(0x01, 0)].Value != 99 {
		t.Error("merge should let other override on collision")
	}
}

func TestUTxO_Without(t *testing.T) {
	in1, in2 := txIn(0x01, 0), txIn(0x02, 0)
	u := UTxO{in1: {Value: 1}, in2: {Value: 2}}

	remaining := u.Without(in1)
	if _, ok := remaining[in1]; ok {
		t.Error("in1 should be removed")
	}
	if _, ok := remaining[in2]; !ok {
		t.Error("in2 should remain")
	}
	if _, ok := u[in1]; !ok {
		t.Error("Without should not mutate the receiver")
	}
}

func TestUTxO_TotalValue(t *testing.T) {
	u := UTxO{
		txIn(0x01, 0): {Value: 5},
		txIn(0x02, 0): {Value: 7},
	}
	if got := u.TotalValue(); got != 12 {
		t.Errorf("TotalValue() = %d, want 12", got)
	}
}

func TestUTxO_SortedKeys_Deterministic(t *testing.T) {
	u := UTxO{
		txIn(0x03, 0): {},
		txIn(0x01, 0): {},
		txIn(0x02, 0): {},
	}

	keys1 := u.SortedKeys()
	keys2 := u.SortedKeys()

	for i := range keys1 {
		if keys1[i] != keys2[i] {
			t.Fatalf("SortedKeys not deterministic at index %d", i)
		}
	}
	if !(keys1[0].Less(keys1[1]) && keys1[1].Less(keys1[2])) {
		t.Errorf("SortedKeys not ordered: %+v", keys1)
	}
}

func TestUTxO_FindByDatumTag(t *testing.T) {
	in1, in2, in3 := txIn(0x01, 0), txIn(0x02, 0), txIn(0x03, 0)
	u := UTxO{
		in1: {Datum: types.Datum{Tag: types.DatumInitial}},
		in2: {Datum: types.Datum{Tag: types.DatumCommit}},
		in3: {Datum: types.Datum{Tag: types.DatumInitial}},
	}

	matches := u.FindByDatumTag(types.DatumInitial)
	if len(matches) != 2 {
		t.Fatalf("FindByDatumTag(Initial) returned %d entries, want 2", len(matches))
	}
	if _, ok := matches[in2]; ok {
		t.Error("commit output should not match Initial tag")
	}
}
