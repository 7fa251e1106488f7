// Package types defines the core primitive types shared by the on-chain
// interface layer: hashes, head identifiers, transaction inputs, addresses,
// and datum payloads.
package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// HashSize is the length of a generic hash in bytes.
const HashSize = 32

// Hash represents a 256-bit hash value (transaction id, block hash, ...).
type Hash [HashSize]byte

// IsZero returns true if the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String returns the hex-encoded hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// MarshalJSON encodes the hash as a hex string.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON decodes a hex string into a hash.
func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*h = Hash{}
		return nil
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hash hex: %w", err)
	}
	if len(decoded) != HashSize {
		return fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(decoded))
	}
	copy(h[:], decoded)
	return nil
}

// HexToHash converts a hex string to a Hash.
// Returns an error if the string is not exactly 64 hex characters.
func HexToHash(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(b))
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

// HeadIdSize is the length of a HeadId: a truncated hash of the Init
// transaction's seed input (spec.md §3 "HeadId").
const HeadIdSize = 28

// HeadId is an opaque identifier for a Head instance, derived from the
// transaction-id hash of its seed input. Equality and ordering are by bytes.
type HeadId [HeadIdSize]byte

// IsZero returns true if the id is all zeros.
func (id HeadId) IsZero() bool {
	return id == HeadId{}
}

// String returns the hex-encoded head id.
func (id HeadId) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns a copy of the head id as a byte slice.
func (id HeadId) Bytes() []byte {
	b := make([]byte, HeadIdSize)
	copy(b, id[:])
	return b
}

// Less reports whether id sorts before other, byte by byte.
func (id HeadId) Less(other HeadId) bool {
	for i := 0; i < HeadIdSize; i++ {
		if id[i] != other[i] {
			return id[i] < other[i]
		}
	}
	return false
}

// MarshalJSON encodes the head id as a hex string.
func (id HeadId) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON decodes a hex string into a head id.
func (id *HeadId) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid head id hex: %w", err)
	}
	if len(decoded) != HeadIdSize {
		return fmt.Errorf("head id must be %d bytes, got %d", HeadIdSize, len(decoded))
	}
	copy(id[:], decoded)
	return nil
}

// HexToHeadId converts a hex string to a HeadId.
func HexToHeadId(s string) (HeadId, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return HeadId{}, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != HeadIdSize {
		return HeadId{}, fmt.Errorf("head id must be %d bytes, got %d", HeadIdSize, len(b))
	}
	var id HeadId
	copy(id[:], b)
	return id, nil
}
