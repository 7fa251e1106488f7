// Package observe implements the transaction observers (spec.md §4.D):
// the pure functions that recognize a Head-relevant transaction among a
// block's outputs and convert it into the event API's OnChainTx shape.
// Observers never touch the network or persisted state directly — they
// are given a block's produced UTxO and hand back what, if anything,
// happened to a given Head.
package observe

import (
	"fmt"
	"time"

	"github.com/hydra-onchain/chainwatch/pkg/chainstate"
	"github.com/hydra-onchain/chainwatch/pkg/crypto"
	"github.com/hydra-onchain/chainwatch/pkg/types"

	"github.com/hydra-onchain/chainwatch/internal/construct"
	"github.com/hydra-onchain/chainwatch/internal/event"
	"github.com/hydra-onchain/chainwatch/internal/log"
)

// ObserveTx inspects a single transaction's produced outputs (and the
// head's prior known UTxO, for inputs it may have consumed) and
// recognizes which Head-lifecycle transition, if any, it represents. A
// nil OnChainTx with a nil error means the transaction is not
// Head-relevant.
func ObserveTx(headId types.HeadId, priorUTxO chainstate.UTxO, consumed []types.TxIn, produced chainstate.UTxO) (*event.OnChainTx, error) {
	if obs, err := observeHeadOrClosed(headId, priorUTxO, consumed, produced); obs != nil || err != nil {
		return obs, err
	}
	if obs, err := observeCommit(headId, produced); obs != nil || err != nil {
		return obs, err
	}
	if obs := observeAbortOrFanout(headId, priorUTxO, consumed, produced); obs != nil {
		return obs, nil
	}
	return nil, nil
}

// observeHeadOrClosed recognizes Init, CollectCom, Close, and Contest —
// all of which post a thread output tagged DatumHead or DatumClosed. A
// DatumHead output is Init the first time this HeadId's thread appears
// (no prior thread output among the consumed inputs) and CollectCom
// thereafter (it replaces an already-open DatumHead thread output). A
// DatumClosed output is Close the first time the thread closes (no
// consumed input was already DatumClosed) and Contest when it replaces an
// already-closed one with a higher snapshot number; a DatumClosed
// output that does not advance the snapshot number is a stale/duplicate
// observation and is not reported (spec.md testable property #2,
// scenario S3).
func observeHeadOrClosed(headId types.HeadId, priorUTxO chainstate.UTxO, consumed []types.TxIn, produced chainstate.UTxO) (*event.OnChainTx, error) {
	for _, in := range produced.SortedKeys() {
		out := produced[in]
		switch out.Datum.Tag {
		case types.DatumHead:
			hd, err := construct.DecodeHeadDatum(out.Datum)
			if err != nil {
				continue
			}
			if hd.HeadId != headId.String() {
				continue
			}

			if consumedHeadThread(priorUTxO, consumed, headId) {
				collected := chainstate.NewUTxO()
				for _, c := range consumed {
					prev, ok := priorUTxO[c]
					if !ok || prev.Datum.Tag != types.DatumCommit {
						continue
					}
					if cv, err := construct.DecodeCommitDatum(prev.Datum); err == nil {
						for _, entry := range cv.Committed {
							collected[entry.TxIn] = entry.Out
						}
					}
				}
				obs := &event.OnChainTx{Kind: event.KindCollectCom, HeadId: headId, UTxO: collected}
				log.Observe.Debug().Str("head_id", headId.String()).Str("input", in.String()).Msg("observed collectcom")
				return obs, nil
			}

			seed, ok := headSeedFromConsumed(headId, consumed)
			if !ok {
				return nil, fmt.Errorf("observe: init tx for head %s consumed no matching seed input", headId.String())
			}
			parties, err := partiesFromHex(hd.Parties)
			if err != nil {
				return nil, err
			}
			obs := &event.OnChainTx{
				Kind:               event.KindInit,
				HeadId:             headId,
				HeadSeed:           seed,
				ContestationPeriod: types.ContestationPeriod(time.Duration(hd.ContestationPeriod) * time.Second),
				Parties:            parties,
				UTxO:               chainstate.UTxO{in: out},
			}
			log.Observe.Debug().Str("head_id", headId.String()).Int("parties", len(parties)).Msg("observed init")
			return obs, nil

		case types.DatumClosed:
			cd, err := construct.DecodeClosedDatum(out.Datum)
			if err != nil {
				return nil, err
			}
			if cd.HeadId != headId.String() {
				continue
			}

			priorClosed, hadPriorClosed := consumedClosedDatum(priorUTxO, consumed, headId)
			if hadPriorClosed && cd.SnapshotNumber <= priorClosed.SnapshotNumber {
				// Stale or duplicate: this closed output never advanced
				// the tracked snapshot number, so nothing happened.
				continue
			}

			deadline := time.Unix(cd.ContestationDeadline, 0).UTC()
			if hadPriorClosed {
				obs := &event.OnChainTx{
					Kind:           event.KindContest,
					HeadId:         headId,
					SnapshotNumber: cd.SnapshotNumber,
					UTxO:           chainstate.UTxO{in: out},
				}
				log.Observe.Debug().Str("head_id", headId.String()).Uint64("snapshot", cd.SnapshotNumber).Msg("observed contest")
				return obs, nil
			}
			obs := &event.OnChainTx{
				Kind:                 event.KindClose,
				HeadId:               headId,
				SnapshotNumber:       cd.SnapshotNumber,
				ContestationDeadline: deadline,
				UTxO:                 chainstate.UTxO{in: out},
			}
			log.Observe.Debug().Str("head_id", headId.String()).Uint64("snapshot", cd.SnapshotNumber).Msg("observed close")
			return obs, nil
		}
	}
	return nil, nil
}

// observeCommit recognizes a Commit transaction: a new output tagged
// DatumCommit for this HeadId.
func observeCommit(headId types.HeadId, produced chainstate.UTxO) (*event.OnChainTx, error) {
	for _, in := range produced.SortedKeys() {
		out := produced[in]
		if out.Datum.Tag != types.DatumCommit {
			continue
		}
		cd, err := construct.DecodeCommitDatum(out.Datum)
		if err != nil {
			return nil, err
		}
		if cd.HeadId != headId.String() {
			continue
		}
		party, err := partyFromHex(cd.Party)
		if err != nil {
			return nil, err
		}
		committed := chainstate.NewUTxO()
		for _, entry := range cd.Committed {
			committed[entry.TxIn] = entry.Out
		}
		log.Observe.Debug().Str("head_id", headId.String()).Str("party", party.Id()).Msg("observed commit")
		return &event.OnChainTx{
			Kind:   event.KindCommit,
			HeadId: headId,
			Party:  party,
			UTxO:   committed,
		}, nil
	}
	return nil, nil
}

// observeAbortOrFanout recognizes Abort and Fanout: both consume every
// Initial/Commit (Abort) or the closed thread output (Fanout) without
// producing any further Head-tagged output, so they are told apart by
// which inputs were consumed.
func observeAbortOrFanout(headId types.HeadId, priorUTxO chainstate.UTxO, consumed []types.TxIn, produced chainstate.UTxO) *event.OnChainTx {
	if len(consumed) == 0 {
		return nil
	}
	sawThread, sawInitialOrCommit := false, false
	for _, in := range consumed {
		out, ok := priorUTxO[in]
		if !ok {
			continue
		}
		switch out.Datum.Tag {
		case types.DatumHead, types.DatumClosed:
			sawThread = true
		case types.DatumInitial, types.DatumCommit:
			sawInitialOrCommit = true
		}
	}
	for _, out := range produced {
		if !out.Datum.IsEmpty() {
			// a Head-tagged output survives, so this isn't Abort/Fanout.
			return nil
		}
	}
	switch {
	case sawThread && !sawInitialOrCommit:
		log.Observe.Debug().Str("head_id", headId.String()).Msg("observed fanout")
		return &event.OnChainTx{Kind: event.KindFanout, HeadId: headId, UTxO: produced}
	case sawInitialOrCommit:
		log.Observe.Debug().Str("head_id", headId.String()).Msg("observed abort")
		return &event.OnChainTx{Kind: event.KindAbort, HeadId: headId, UTxO: produced}
	default:
		return nil
	}
}

// consumedHeadThread reports whether one of the consumed inputs was a
// prior DatumHead thread output for this HeadId.
func consumedHeadThread(priorUTxO chainstate.UTxO, consumed []types.TxIn, headId types.HeadId) bool {
	for _, in := range consumed {
		out, ok := priorUTxO[in]
		if !ok || out.Datum.Tag != types.DatumHead {
			continue
		}
		if hd, err := construct.DecodeHeadDatum(out.Datum); err == nil && hd.HeadId == headId.String() {
			return true
		}
	}
	return false
}

// consumedClosedDatum returns the decoded payload of a consumed prior
// DatumClosed thread output for this HeadId, if any.
func consumedClosedDatum(priorUTxO chainstate.UTxO, consumed []types.TxIn, headId types.HeadId) (construct.ClosedView, bool) {
	for _, in := range consumed {
		out, ok := priorUTxO[in]
		if !ok || out.Datum.Tag != types.DatumClosed {
			continue
		}
		if cd, err := construct.DecodeClosedDatum(out.Datum); err == nil && cd.HeadId == headId.String() {
			return cd, true
		}
	}
	return construct.ClosedView{}, false
}

// headSeedFromConsumed finds the consumed input whose hash this HeadId
// was derived from — an Init transaction spends exactly one such input
// (spec.md §3 "HeadId").
func headSeedFromConsumed(headId types.HeadId, consumed []types.TxIn) (types.TxIn, bool) {
	for _, in := range consumed {
		if crypto.HeadIdFromTxIn(in) == headId {
			return in, true
		}
	}
	return types.TxIn{}, false
}

func partiesFromHex(hexKeys []string) (types.PartyList, error) {
	var parties types.PartyList
	for _, hexKey := range hexKeys {
		party, err := partyFromHex(hexKey)
		if err != nil {
			return nil, err
		}
		parties = append(parties, party)
	}
	return parties, nil
}

func partyFromHex(hexKey string) (types.Party, error) {
	vk, err := construct.ParsePartyKey(hexKey)
	if err != nil {
		return types.Party{}, err
	}
	return types.NewParty(vk), nil
}
