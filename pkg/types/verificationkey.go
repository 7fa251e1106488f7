package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// VerificationKeySize is the length of a compressed secp256k1 public key.
const VerificationKeySize = 33

// VerificationKey is an on-chain participant's public key. Parties are
// derived from verification keys (spec.md §3 "Party"); ChainContext holds
// our own key plus all parties' keys.
type VerificationKey [VerificationKeySize]byte

// IsZero returns true if the key is all zeros.
func (k VerificationKey) IsZero() bool {
	return k == VerificationKey{}
}

// Bytes returns a copy of the key as a byte slice.
func (k VerificationKey) Bytes() []byte {
	b := make([]byte, VerificationKeySize)
	copy(b, k[:])
	return b
}

// String returns the hex-encoded key.
func (k VerificationKey) String() string {
	return hex.EncodeToString(k[:])
}

// MarshalJSON encodes the key as a hex string.
func (k VerificationKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a hex string into a key.
func (k *VerificationKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid verification key hex: %w", err)
	}
	if len(decoded) != VerificationKeySize {
		return fmt.Errorf("verification key must be %d bytes, got %d", VerificationKeySize, len(decoded))
	}
	copy(k[:], decoded)
	return nil
}

// VerificationKeyFromBytes builds a VerificationKey from a compressed
// public key byte slice, as returned by a Signer.
func VerificationKeyFromBytes(b []byte) (VerificationKey, error) {
	if len(b) != VerificationKeySize {
		return VerificationKey{}, fmt.Errorf("verification key must be %d bytes, got %d", VerificationKeySize, len(b))
	}
	var k VerificationKey
	copy(k[:], b)
	return k, nil
}

// Signature is a detached Schnorr signature over a 32-byte message hash.
type Signature []byte

// String returns the hex-encoded signature.
func (s Signature) String() string {
	return hex.EncodeToString(s)
}
