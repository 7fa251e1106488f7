// Package event implements the Event API (spec.md §6): the sum types
// the transaction constructors, observers, and ChainSyncHandler use to
// describe Head-relevant transactions and chain events, plus the
// strictly-monotonic event queue the rest of the on-chain interface
// layer drains to learn what happened.
package event

import (
	"fmt"

	"github.com/hydra-onchain/chainwatch/pkg/chainstate"
	"github.com/hydra-onchain/chainwatch/pkg/tx"
	"github.com/hydra-onchain/chainwatch/pkg/types"
)

// TxKind enumerates the Head-relevant transaction kinds the
// constructors produce and the observers recognize (spec.md §4.C,
// §4.D).
type TxKind string

const (
	KindInit       TxKind = "Init"
	KindCommit     TxKind = "Commit"
	KindAbort      TxKind = "Abort"
	KindCollectCom TxKind = "CollectCom"
	KindClose      TxKind = "Close"
	KindContest    TxKind = "Contest"
	KindFanout     TxKind = "Fanout"
)

// PostChainTx is a constructed, ready-to-post transaction plus the kind
// of Head transition it represents (spec.md §6 "PostChainTx").
type PostChainTx struct {
	Kind   TxKind
	HeadId types.HeadId
	Tx     *tx.Tx
}

// OnChainTx is a Head-relevant transaction recognized on chain by the
// transaction observers (spec.md §4.D, §6 "OnChainTx"). Only the fields
// relevant to Kind are meaningful, mirroring the spec's tagged union:
//
//	OnInitTx{headId, headSeed, contestationPeriod, parties}
//	OnCommitTx{party, committed}
//	OnAbortTx | OnCollectComTx{utxo}
//	OnCloseTx{headId, snapshotNumber, contestationDeadline}
//	OnContestTx{snapshotNumber} | OnFanoutTx
type OnChainTx struct {
	Kind   TxKind
	HeadId types.HeadId

	// HeadSeed, ContestationPeriod, and Parties are set only for
	// Kind == KindInit: the seed input the HeadId was derived from, and
	// the Head parameters fixed at that point.
	HeadSeed           types.TxIn
	ContestationPeriod types.ContestationPeriod
	Parties            types.PartyList

	// Party is set only for Kind == KindCommit: the party that committed.
	Party types.Party

	// SnapshotNumber is set for Kind == KindClose and Kind == KindContest:
	// the snapshot number carried by the closed/contested thread output.
	SnapshotNumber uint64

	// ContestationDeadline is set only for Kind == KindClose: the instant
	// after which no further Contest is accepted.
	ContestationDeadline types.UtcTime

	// UTxO is the Head-relevant UTxO this transaction contributes
	// (Commit), collects (CollectCom), or distributes (Fanout).
	UTxO          chainstate.UTxO
	NewChainState chainstate.ChainStateAt
}

// PostTxErrorKind enumerates the ways posting a transaction can fail
// (spec.md §6 "PostTxError"):
//
//	NoSeedInput | InvalidSeed{headSeed}
//	NoFuelUTXOFound | NotEnoughFuel
//	ScriptFailedInWallet{redeemerPtr, failureReason}
//	InternalWalletError{headUTxO, reason, tx}
//	FailedToConstructCloseTx | FailedToConstructAbortTx
//	SpendingNodeUtxoForbidden
type PostTxErrorKind string

const (
	// ErrKindNoSeedInput is raised when Init is requested with no seed
	// input at all (a zero TxIn).
	ErrKindNoSeedInput PostTxErrorKind = "NoSeedInput"
	// ErrKindInvalidSeed is raised when the supplied seed input does not
	// exist in the currently known chain state (PostTxError.HeadSeed).
	ErrKindInvalidSeed PostTxErrorKind = "InvalidSeed"

	// ErrKindNoFuelUTxOFound and ErrKindNotEnoughFuel are CoverFeeErr
	// mapped per spec.md §4.G: "NoFuelUTxOFound→NoFuelUTXOFound;
	// NotEnoughFunds→NotEnoughFuel".
	ErrKindNoFuelUTxOFound PostTxErrorKind = "NoFuelUTXOFound"
	ErrKindNotEnoughFuel   PostTxErrorKind = "NotEnoughFuel"
	// ErrKindScriptFailedInWallet is the CoverFeeErr mapping for
	// ScriptExecutionFailed (PostTxError.RedeemerPtr/FailureReason). This
	// on-chain interface layer performs no script evaluation of its own,
	// so the wallet never produces this kind today — it is defined to
	// keep the PostTxError contract complete for callers.
	ErrKindScriptFailedInWallet PostTxErrorKind = "ScriptFailedInWallet"
	// ErrKindInternalWalletError is the CoverFeeErr mapping for
	// "everything else" (PostTxError.HeadUTxO/Reason).
	ErrKindInternalWalletError PostTxErrorKind = "InternalWalletError"

	// ErrKindFailedToConstructCloseTx and ErrKindFailedToConstructAbortTx
	// are raised when the Close/Abort constructors reject a request.
	ErrKindFailedToConstructCloseTx PostTxErrorKind = "FailedToConstructCloseTx"
	ErrKindFailedToConstructAbortTx PostTxErrorKind = "FailedToConstructAbortTx"

	// ErrKindSpendingNodeUtxoForbidden is raised by draft_commit_tx when
	// the caller's userUtxo contains an input the wallet itself owns
	// (spec.md §4.C "commit", §4.G "draft_commit_tx").
	ErrKindSpendingNodeUtxoForbidden PostTxErrorKind = "SpendingNodeUtxoForbidden"

	// ErrKindInternal is a catch-all for construction/submission failures
	// the spec's PostTxError union has no dedicated slot for (e.g. a
	// Commit/CollectCom/Contest/Fanout construction rejection, or a
	// submission error).
	ErrKindInternal PostTxErrorKind = "Internal"
)

// PostTxError is the typed error the poster returns when it fails to
// construct, cover the fee for, or submit a transaction. It wraps the
// underlying cause so callers can still errors.Is/As through it. Only
// the fields relevant to Kind are meaningful, the same flattening
// OnChainTx uses for its own tagged union.
type PostTxError struct {
	Kind PostTxErrorKind
	Tx   TxKind
	Err  error

	// HeadSeed is set only for Kind == ErrKindInvalidSeed.
	HeadSeed types.TxIn

	// RedeemerPtr and FailureReason are set only for
	// Kind == ErrKindScriptFailedInWallet.
	RedeemerPtr   string
	FailureReason string

	// HeadUTxO and Reason are set only for Kind == ErrKindInternalWalletError.
	HeadUTxO chainstate.UTxO
	Reason   string
}

func (e *PostTxError) Error() string {
	return fmt.Sprintf("post %s tx: %s: %v", e.Tx, e.Kind, e.Err)
}

func (e *PostTxError) Unwrap() error {
	return e.Err
}

// EventKind enumerates the three kinds of event the ChainSyncHandler
// emits (spec.md §4.F).
type EventKind string

const (
	EventTick        EventKind = "Tick"
	EventObservation EventKind = "Observation"
	EventRollback    EventKind = "Rollback"
)

// ChainEvent is a single item on the event queue. Observation is
// meaningful only for EventObservation and RollbackTo only for
// EventRollback; an EventTick carries neither.
type ChainEvent struct {
	ID          uint64
	Kind        EventKind
	Time        types.UtcTime
	Slot        types.Slot
	Observation *OnChainTx
	RollbackTo  types.ChainSlot
}
