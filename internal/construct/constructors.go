// Package construct implements the transaction constructors (spec.md
// §4.C): the pure functions that build each Head-lifecycle transaction
// (Init, Commit, Abort, CollectCom, Close, Contest, Fanout) as an
// unbalanced pkg/tx.Builder, ready for the wallet to cover its fee and
// sign. Constructors never touch the network or the wallet's keys
// directly — that happens at the poster boundary (spec.md §4.G).
package construct

import (
	"errors"
	"fmt"
	"time"

	"github.com/hydra-onchain/chainwatch/pkg/chainstate"
	"github.com/hydra-onchain/chainwatch/pkg/crypto"
	"github.com/hydra-onchain/chainwatch/pkg/tx"
	"github.com/hydra-onchain/chainwatch/pkg/types"

	"github.com/hydra-onchain/chainwatch/internal/log"
)

var (
	// ErrNoSeedInput is returned when Initialize is given a zero TxIn.
	ErrNoSeedInput = errors.New("construct: no seed input available")
	// ErrPartyNotFound reports that a party is not a member of the Head a
	// construction operates against. No constructor in this package
	// returns it: Commit takes the party as given.
	ErrPartyNotFound = errors.New("construct: party not a member of this head")
	// ErrNoOwnInitial reports that the calling party's own Initial output
	// is missing from the Head's UTxO. No constructor in this package
	// returns it: Commit spends the Initial input it is given, and Abort
	// refunds whichever Initial outputs it finds.
	ErrNoOwnInitial = errors.New("construct: no own initial output found")
	// ErrContestationPeriodInvalid is returned when a requested
	// contestation period violates 0 <= cp <= maxGraceTime.
	ErrContestationPeriodInvalid = errors.New("construct: contestation period invalid")
	// ErrNotAllCommitted is returned when CollectCom is attempted before
	// every party has a Commit output on chain.
	ErrNotAllCommitted = errors.New("construct: not every party has committed")
)

// Params carries the immutable, per-Head configuration every
// constructor needs (spec.md §3 "ChainContext").
type Params struct {
	HeadAddress  types.Address
	MaxGraceTime types.ContestationPeriod
}

// Initialize builds the Init transaction that opens a new Head. The
// HeadId is derived from the seed input (spec.md §3 "HeadId", §4.C
// "initialize"), and one Initial output is created per party.
func Initialize(p Params, seedInput types.TxIn, parties types.PartyList, cp types.ContestationPeriod) (*tx.Builder, types.HeadId, error) {
	if seedInput.IsZero() {
		return nil, types.HeadId{}, ErrNoSeedInput
	}
	if !cp.Valid(p.MaxGraceTime) {
		return nil, types.HeadId{}, fmt.Errorf("%w: %ds exceeds max grace time %ds",
			ErrContestationPeriodInvalid, cp.Seconds(), p.MaxGraceTime.Seconds())
	}

	headId := crypto.HeadIdFromTxIn(seedInput)

	b := tx.NewBuilder().
		AddInput(seedInput).
		AddDatumOutput(p.HeadAddress, 0, encodeHeadDatum(headId, parties, cp))

	for _, party := range parties {
		b.AddDatumOutput(p.HeadAddress, 0, encodeInitialDatum(headId, party))
	}

	log.Construct.Info().
		Str("head_id", headId.String()).
		Int("parties", len(parties)).
		Msg("constructed init tx")
	return b, headId, nil
}

// Commit builds the Commit transaction by which a party locks its own
// UTxO into the Head (spec.md §4.C "commit"). toCommit may be empty —
// a party is allowed to commit nothing.
func Commit(p Params, headId types.HeadId, party types.Party, ownInitial types.TxIn, toCommit chainstate.UTxO) *tx.Builder {
	b := tx.NewBuilder().AddInput(ownInitial)
	for in := range toCommit {
		b.AddInput(in)
	}
	b.AddDatumOutput(p.HeadAddress, 0, encodeCommitDatum(headId, party, toCommit))

	log.Construct.Info().
		Str("head_id", headId.String()).
		Str("party", party.Id()).
		Int("committed_inputs", len(toCommit)).
		Msg("constructed commit tx")
	return b
}

// Abort builds the Abort transaction, returning every Initial and
// Commit output observed so far to its owner without ever opening the
// Head (spec.md §4.C "abort").
func Abort(p Params, headId types.HeadId, headUTxO chainstate.UTxO) (*tx.Builder, error) {
	b := tx.NewBuilder()

	refunded := 0
	initials := chainstate.UTxO(headUTxO.FindByDatumTag(types.DatumInitial))
	for _, in := range initials.SortedKeys() {
		out := initials[in]
		ip, err := DecodeInitialDatum(out.Datum)
		if err != nil {
			return nil, err
		}
		vk, err := ParsePartyKey(ip.Party)
		if err != nil {
			return nil, fmt.Errorf("construct: decode initial owner key: %w", err)
		}
		b.AddInput(in).AddOutput(crypto.AddressFromVerificationKey(vk), out.Value)
		refunded++
	}
	commits := chainstate.UTxO(headUTxO.FindByDatumTag(types.DatumCommit))
	for _, in := range commits.SortedKeys() {
		out := commits[in]
		cp, err := DecodeCommitDatum(out.Datum)
		if err != nil {
			return nil, err
		}
		vk, err := ParsePartyKey(cp.Party)
		if err != nil {
			return nil, fmt.Errorf("construct: decode commit owner key: %w", err)
		}
		b.AddInput(in)
		for _, entry := range cp.Committed {
			b.AddOutputs(entry.Out)
		}
		b.AddOutput(crypto.AddressFromVerificationKey(vk), out.Value)
		refunded++
	}

	log.Construct.Info().Str("head_id", headId.String()).Int("refunded", refunded).Msg("constructed abort tx")
	return b, nil
}

// CollectCom builds the CollectCom transaction, merging every party's
// Commit output into the open Head's thread output once all parties
// have committed (spec.md §4.C "collect").
func CollectCom(p Params, headId types.HeadId, parties types.PartyList, headUTxO chainstate.UTxO) (*tx.Builder, chainstate.UTxO, error) {
	commits := headUTxO.FindByDatumTag(types.DatumCommit)
	if len(commits) < len(parties) {
		return nil, nil, ErrNotAllCommitted
	}

	threadIn, threadOut, err := findThreadOutput(headUTxO)
	if err != nil {
		return nil, nil, err
	}

	merged := chainstate.NewUTxO()
	b := tx.NewBuilder().AddInput(threadIn)
	for _, in := range chainstate.UTxO(commits).SortedKeys() {
		cp, err := DecodeCommitDatum(commits[in].Datum)
		if err != nil {
			return nil, nil, err
		}
		b.AddInput(in)
		for _, entry := range cp.Committed {
			merged[entry.TxIn] = entry.Out
		}
	}
	b.AddDatumOutput(threadOut.Address, threadOut.Value, types.Datum{Tag: types.DatumHead, Payload: threadOut.Datum.Payload})

	log.Construct.Info().Str("head_id", headId.String()).Int("merged_utxo", len(merged)).Msg("constructed collectcom tx")
	return b, merged, nil
}

// Close builds the Close transaction, posting the latest confirmed
// snapshot and starting the contestation period (spec.md §4.C "close").
// now is the current point in time (TimeHandle); the contestation
// deadline is now + the Head's contestation period, capped at
// maxGraceTime.
func Close(p Params, headId types.HeadId, headUTxO chainstate.UTxO, snapshotNumber uint64, finalUTxO chainstate.UTxO, cp types.ContestationPeriod, now types.UtcTime) (*tx.Builder, error) {
	threadIn, threadOut, err := findThreadOutput(headUTxO)
	if err != nil {
		return nil, err
	}

	delay := types.EffectiveDelay(cp, p.MaxGraceTime)
	deadline := now.Add(time.Duration(delay))
	utxoHash := hashUTxO(finalUTxO)

	b := tx.NewBuilder().
		AddInput(threadIn).
		AddDatumOutput(threadOut.Address, threadOut.Value, encodeClosedDatum(headId, snapshotNumber, utxoHash, deadline))

	log.Construct.Info().
		Str("head_id", headId.String()).
		Uint64("snapshot", snapshotNumber).
		Time("deadline", deadline).
		Msg("constructed close tx")
	return b, nil
}

// Contest builds the Contest transaction, replacing a Close's posted
// snapshot with a newer one during the contestation period (spec.md
// §4.C "contest").
func Contest(p Params, headId types.HeadId, headUTxO chainstate.UTxO, snapshotNumber uint64, finalUTxO chainstate.UTxO, cp types.ContestationPeriod, now types.UtcTime) (*tx.Builder, error) {
	threadIn, threadOut, err := findThreadOutput(headUTxO)
	if err != nil {
		return nil, err
	}
	closed, err := DecodeClosedDatum(threadOut.Datum)
	if err != nil {
		return nil, fmt.Errorf("construct: contest requires a closed head: %w", err)
	}
	if snapshotNumber <= closed.SnapshotNumber {
		return nil, fmt.Errorf("construct: contest snapshot %d must exceed posted snapshot %d", snapshotNumber, closed.SnapshotNumber)
	}

	delay := types.EffectiveDelay(cp, p.MaxGraceTime)
	deadline := now.Add(time.Duration(delay))
	utxoHash := hashUTxO(finalUTxO)

	b := tx.NewBuilder().
		AddInput(threadIn).
		AddDatumOutput(threadOut.Address, threadOut.Value, encodeClosedDatum(headId, snapshotNumber, utxoHash, deadline))

	log.Construct.Info().Str("head_id", headId.String()).Uint64("snapshot", snapshotNumber).Msg("constructed contest tx")
	return b, nil
}

// Fanout builds the Fanout transaction, distributing the final closed
// UTxO set back onto the main chain once the contestation period has
// elapsed (spec.md §4.C "fanout").
func Fanout(p Params, headId types.HeadId, headUTxO chainstate.UTxO, finalUTxO chainstate.UTxO) (*tx.Builder, error) {
	threadIn, _, err := findThreadOutput(headUTxO)
	if err != nil {
		return nil, err
	}

	b := tx.NewBuilder().AddInput(threadIn)
	for _, in := range finalUTxO.SortedKeys() {
		b.AddOutputs(finalUTxO[in])
	}

	log.Construct.Info().Str("head_id", headId.String()).Int("outputs", len(finalUTxO)).Msg("constructed fanout tx")
	return b, nil
}

func findThreadOutput(headUTxO chainstate.UTxO) (types.TxIn, chainstate.TxOut, error) {
	for _, tag := range []types.DatumTag{types.DatumHead, types.DatumClosed} {
		matches := headUTxO.FindByDatumTag(tag)
		for in, out := range matches {
			return in, out, nil
		}
	}
	return types.TxIn{}, chainstate.TxOut{}, errors.New("construct: no thread output found in head utxo")
}

func hashUTxO(u chainstate.UTxO) types.Hash {
	var buf []byte
	for _, in := range u.SortedKeys() {
		out := u[in]
		buf = append(buf, in.TxID[:]...)
		buf = append(buf, byte(in.Index>>24), byte(in.Index>>16), byte(in.Index>>8), byte(in.Index))
		buf = append(buf, out.Address[:]...)
	}
	return crypto.Hash(buf)
}
