package construct

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/hydra-onchain/chainwatch/pkg/chainstate"
	"github.com/hydra-onchain/chainwatch/pkg/types"
)

// The Head-relevant on-chain outputs carry a small JSON payload inside
// their Datum (types.Datum), tagged by kind. This mirrors how the
// transaction builder already treats a datum as an opaque, tagged byte
// string (pkg/types/datum.go) — construct is the one package that knows
// how to read and write what's inside; the View types and Decode
// functions are exported so the observers (internal/observe) can
// recognize the same outputs without duplicating the encoding.

// HeadView is the decoded payload of a DatumHead output: the Head's
// parties and contestation period, fixed at Init.
type HeadView struct {
	HeadId             string   `json:"headId"`
	Parties            []string `json:"parties"`
	ContestationPeriod int64    `json:"contestationPeriod"`
}

// InitialView is the decoded payload of a DatumInitial output: one per
// party, awaiting that party's Commit.
type InitialView struct {
	HeadId string `json:"headId"`
	Party  string `json:"party"`
}

// CommittedEntry is one UTxO entry wrapped inside a Commit output.
type CommittedEntry struct {
	TxIn types.TxIn       `json:"txIn"`
	Out  chainstate.TxOut `json:"txOut"`
}

// CommitView is the decoded payload of a DatumCommit output.
type CommitView struct {
	HeadId    string           `json:"headId"`
	Party     string           `json:"party"`
	Committed []CommittedEntry `json:"committed"`
}

// ClosedView is the decoded payload of a DatumClosed thread output.
type ClosedView struct {
	HeadId               string `json:"headId"`
	SnapshotNumber       uint64 `json:"snapshotNumber"`
	UTxOHash             string `json:"utxoHash"`
	ContestationDeadline int64  `json:"contestationDeadline"`
}

func encodeHeadDatum(headId types.HeadId, parties types.PartyList, cp types.ContestationPeriod) types.Datum {
	p := HeadView{HeadId: headId.String(), ContestationPeriod: cp.Seconds()}
	for _, party := range parties {
		p.Parties = append(p.Parties, party.VerificationKey.String())
	}
	data, _ := json.Marshal(p)
	return types.Datum{Tag: types.DatumHead, Payload: data}
}

// DecodeHeadDatum decodes a DatumHead output's payload.
func DecodeHeadDatum(d types.Datum) (HeadView, error) {
	var p HeadView
	if d.Tag != types.DatumHead {
		return p, fmt.Errorf("construct: expected head datum, got %s", d.Tag)
	}
	if err := json.Unmarshal(d.Payload, &p); err != nil {
		return p, fmt.Errorf("decode head datum: %w", err)
	}
	return p, nil
}

func encodeInitialDatum(headId types.HeadId, party types.Party) types.Datum {
	p := InitialView{HeadId: headId.String(), Party: party.VerificationKey.String()}
	data, _ := json.Marshal(p)
	return types.Datum{Tag: types.DatumInitial, Payload: data}
}

// DecodeInitialDatum decodes a DatumInitial output's payload.
func DecodeInitialDatum(d types.Datum) (InitialView, error) {
	var p InitialView
	if d.Tag != types.DatumInitial {
		return p, fmt.Errorf("construct: expected initial datum, got %s", d.Tag)
	}
	if err := json.Unmarshal(d.Payload, &p); err != nil {
		return p, fmt.Errorf("decode initial datum: %w", err)
	}
	return p, nil
}

func encodeCommitDatum(headId types.HeadId, party types.Party, committed chainstate.UTxO) types.Datum {
	p := CommitView{HeadId: headId.String(), Party: party.VerificationKey.String()}
	for _, in := range committed.SortedKeys() {
		p.Committed = append(p.Committed, CommittedEntry{TxIn: in, Out: committed[in]})
	}
	data, _ := json.Marshal(p)
	return types.Datum{Tag: types.DatumCommit, Payload: data}
}

// DecodeCommitDatum decodes a DatumCommit output's payload.
func DecodeCommitDatum(d types.Datum) (CommitView, error) {
	var p CommitView
	if d.Tag != types.DatumCommit {
		return p, fmt.Errorf("construct: expected commit datum, got %s", d.Tag)
	}
	if err := json.Unmarshal(d.Payload, &p); err != nil {
		return p, fmt.Errorf("decode commit datum: %w", err)
	}
	return p, nil
}

func encodeClosedDatum(headId types.HeadId, snapshotNumber uint64, utxoHash types.Hash, deadline types.UtcTime) types.Datum {
	p := ClosedView{
		HeadId:               headId.String(),
		SnapshotNumber:       snapshotNumber,
		UTxOHash:             utxoHash.String(),
		ContestationDeadline: deadline.Unix(),
	}
	data, _ := json.Marshal(p)
	return types.Datum{Tag: types.DatumClosed, Payload: data}
}

// DecodeClosedDatum decodes a DatumClosed output's payload.
func DecodeClosedDatum(d types.Datum) (ClosedView, error) {
	var p ClosedView
	if d.Tag != types.DatumClosed {
		return p, fmt.Errorf("construct: expected closed datum, got %s", d.Tag)
	}
	if err := json.Unmarshal(d.Payload, &p); err != nil {
		return p, fmt.Errorf("decode closed datum: %w", err)
	}
	return p, nil
}

// ParsePartyKey decodes the hex-encoded verification key recorded in a
// datum payload (the textual form produced by VerificationKey.String)
// back into a typed VerificationKey.
func ParsePartyKey(hexKey string) (types.VerificationKey, error) {
	b, err := hex.DecodeString(hexKey)
	if err != nil {
		return types.VerificationKey{}, fmt.Errorf("invalid verification key hex: %w", err)
	}
	return types.VerificationKeyFromBytes(b)
}
