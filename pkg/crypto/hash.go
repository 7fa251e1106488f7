// Package crypto provides the cryptographic primitives used by the
// on-chain interface layer: hashing, head-id derivation, and Schnorr
// signing over secp256k1 keys.
package crypto

import (
	"github.com/hydra-onchain/chainwatch/pkg/types"
	"github.com/zeebo/blake3"
)

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// DoubleHash computes Hash(Hash(data)).
func DoubleHash(data []byte) types.Hash {
	first := Hash(data)
	return Hash(first[:])
}

// AddressFromVerificationKey derives a payment address from a compressed
// public key. Address = BLAKE3(compressed_pubkey)[:AddressSize].
func AddressFromVerificationKey(vk types.VerificationKey) types.Address {
	h := Hash(vk.Bytes())
	var addr types.Address
	copy(addr[:], h[:types.AddressSize])
	return addr
}

// HeadIdFromTxIn derives a HeadId from the seed TxIn consumed by InitTx:
// HeadId = BLAKE3(seed.TxID || seed.Index)[:HeadIdSize] (spec.md §3
// "HeadId: opaque 28-byte identifier derived from the seed input's
// transaction-id hash").
func HeadIdFromTxIn(seed types.TxIn) types.HeadId {
	buf := make([]byte, types.HashSize+4)
	copy(buf, seed.TxID[:])
	buf[types.HashSize] = byte(seed.Index >> 24)
	buf[types.HashSize+1] = byte(seed.Index >> 16)
	buf[types.HashSize+2] = byte(seed.Index >> 8)
	buf[types.HashSize+3] = byte(seed.Index)
	h := Hash(buf)
	var id types.HeadId
	copy(id[:], h[:types.HeadIdSize])
	return id
}

// HashConcat hashes the concatenation of two hashes.
func HashConcat(a, b types.Hash) types.Hash {
	var buf [64]byte
	copy(buf[:32], a[:])
	copy(buf[32:], b[:])
	return Hash(buf[:])
}
