package types

import (
	"encoding/json"
	"testing"
)

func TestDatumTag_String(t *testing.T) {
	tests := []struct {
		tag  DatumTag
		want string
	}{
		{DatumNone, "None"},
		{DatumHead, "Head"},
		{DatumInitial, "Initial"},
		{DatumCommit, "Commit"},
		{DatumClosed, "Closed"},
		{DatumTag(0xFF), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.tag.String(); got != tt.want {
				t.Errorf("DatumTag(%#x).String() = %q, want %q", uint8(tt.tag), got, tt.want)
			}
		})
	}
}

func TestDatum_IsEmpty(t *testing.T) {
	var d Datum
	if !d.IsEmpty() {
		t.Error("zero-value Datum should be empty")
	}

	d = Datum{Tag: DatumHead, Payload: []byte{0x01}}
	if d.IsEmpty() {
		t.Error("tagged Datum should not be empty")
	}
}

func TestDatum_JSON_RoundTrip(t *testing.T) {
	d := Datum{Tag: DatumCommit, Payload: []byte{0xde, 0xad, 0xbe, 0xef}}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded Datum
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.Tag != d.Tag {
		t.Errorf("Tag mismatch: got %v, want %v", decoded.Tag, d.Tag)
	}
	if string(decoded.Payload) != string(d.Payload) {
		t.Errorf("Payload mismatch: got %x, want %x", decoded.Payload, d.Payload)
	}
}

func TestDatum_JSON_EmptyPayload(t *testing.T) {
	d := Datum{Tag: DatumNone}
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded Datum
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.IsEmpty() {
		t.Error("round-tripped empty datum should remain empty")
	}
}
