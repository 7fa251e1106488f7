package types

import (
	"encoding/hex"
	"encoding/json"
)

// DatumTag identifies the shape of a Head-relevant datum attached to a
// UTxO (spec.md §3 "TxOut": "address, value, datum, reference script").
// Scripts and their datum/redeemer shapes are opaque validators external
// to this layer (spec.md §1) — these tags only let the observers (§4.D)
// recognise which Head-lifecycle output they are looking at.
type DatumTag uint8

const (
	DatumNone     DatumTag = 0x00 // plain output, no Head-relevant datum
	DatumHead     DatumTag = 0x01 // thread output datum (open/closed state)
	DatumInitial  DatumTag = 0x02 // initial output, one per party, awaiting commit
	DatumCommit   DatumTag = 0x03 // commit output, wraps a party's committed UTxO
	DatumClosed   DatumTag = 0x04 // thread output datum after Close, carries contestationDeadline
)

// String returns a human-readable name for the datum tag.
func (t DatumTag) String() string {
	switch t {
	case DatumNone:
		return "None"
	case DatumHead:
		return "Head"
	case DatumInitial:
		return "Initial"
	case DatumCommit:
		return "Commit"
	case DatumClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Datum is the opaque, tagged inline datum carried by a Head-relevant
// TxOut. Payload is the script's own encoding (never interpreted here,
// only matched against known shapes by the observers).
type Datum struct {
	Tag     DatumTag `json:"tag"`
	Payload []byte   `json:"payload"`
}

// IsEmpty reports whether this is a plain output with no datum.
func (d Datum) IsEmpty() bool {
	return d.Tag == DatumNone && len(d.Payload) == 0
}

type datumJSON struct {
	Tag     DatumTag `json:"tag"`
	Payload string   `json:"payload"`
}

// MarshalJSON encodes the datum with a hex-encoded payload.
func (d Datum) MarshalJSON() ([]byte, error) {
	return json.Marshal(datumJSON{
		Tag:     d.Tag,
		Payload: hex.EncodeToString(d.Payload),
	})
}

// UnmarshalJSON decodes a datum with a hex-encoded payload.
func (d *Datum) UnmarshalJSON(data []byte) error {
	var j datumJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	d.Tag = j.Tag
	if j.Payload != "" {
		b, err := hex.DecodeString(j.Payload)
		if err != nil {
			return err
		}
		d.Payload = b
	}
	return nil
}
