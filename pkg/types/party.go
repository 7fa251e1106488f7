package types

// Party is an off-chain participant identity, derived from an on-chain
// verification key (spec.md §3 "Party"). A Head has an ordered list of
// Parties fixed at Init; ordering matters for snapshot multi-signature
// verification and for deterministic datum encoding.
type Party struct {
	VerificationKey VerificationKey `json:"verificationKey"`
}

// NewParty derives a Party from a verification key.
func NewParty(vk VerificationKey) Party {
	return Party{VerificationKey: vk}
}

// Id returns the party's stable textual identity: the hex encoding of its
// verification key.
func (p Party) Id() string {
	return p.VerificationKey.String()
}

// Equal reports whether two parties share the same verification key.
func (p Party) Equal(other Party) bool {
	return p.VerificationKey == other.VerificationKey
}

// PartyList is an ordered, fixed-at-Init list of Parties.
type PartyList []Party

// Contains reports whether the list contains a party with the same
// verification key.
func (l PartyList) Contains(p Party) bool {
	for _, existing := range l {
		if existing.Equal(p) {
			return true
		}
	}
	return false
}

// IndexOf returns the position of p in the list, or -1 if absent. Used to
// line up a party's signature with its slot in a multi-signature set.
func (l PartyList) IndexOf(p Party) int {
	for i, existing := range l {
		if existing.Equal(p) {
			return i
		}
	}
	return -1
}
