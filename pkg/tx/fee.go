package tx

// EstimateFee returns an estimated minimum fee for a transaction with the
// given number of inputs and outputs at the given fee rate (base units
// per byte), before the transaction's exact SigningBytes are known. The
// wallet's fee-coverage loop (spec.md §4.B) does not use it: it re-prices
// with RequiredFee after each candidate input is added.
//
//	inputCount(4) + inputs(36*n) + outputCount(4) + outputs(perOut*m) + validity(16)
//
// perOutput defaults to a plain address + value output (28 + 8 + datum
// tag/len overhead); pass extraDatumBytes for outputs carrying a
// Head-relevant datum payload (initial/commit/thread outputs).
func EstimateFee(numInputs, numOutputs int, feeRate uint64, extraDatumBytes ...int) uint64 {
	const overhead = 4 + 4 + 16           // inputCount + outputCount + validity interval
	const perInput = 32 + 4               // txID + index
	const perOutput = 28 + 8 + 1 + 4 + 4  // address + value + datumTag + datumLen + refScriptLen

	extra := 0
	if len(extraDatumBytes) > 0 {
		extra = extraDatumBytes[0]
	}

	size := overhead + perInput*numInputs + (perOutput+extra)*numOutputs
	return uint64(size) * feeRate
}

// RequiredFee returns the exact minimum fee for a fully built transaction
// at the given fee rate, computed from its actual SigningBytes length.
// More accurate than EstimateFee once outputs (and their datums) are
// finalised.
func RequiredFee(transaction *Tx, feeRate uint64) uint64 {
	return uint64(len(transaction.SigningBytes())) * feeRate
}
