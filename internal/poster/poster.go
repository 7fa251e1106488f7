// Package poster implements the ChainPoster component (spec.md §4.G,
// historically "mkChain"): the single entry point that turns a
// PostChainTx request into a constructed, fee-covered, signed
// transaction and hands it to an injected submitter. It is the only
// component that calls both the transaction constructors (§4.C) and the
// wallet (§4.B) in sequence, and it is where every constructor/wallet
// failure gets mapped onto the upward-facing PostTxError boundary.
package poster

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hydra-onchain/chainwatch/pkg/chainstate"
	"github.com/hydra-onchain/chainwatch/pkg/tx"
	"github.com/hydra-onchain/chainwatch/pkg/types"

	"github.com/hydra-onchain/chainwatch/internal/construct"
	"github.com/hydra-onchain/chainwatch/internal/event"
	"github.com/hydra-onchain/chainwatch/internal/localstate"
	"github.com/hydra-onchain/chainwatch/internal/log"
	"github.com/hydra-onchain/chainwatch/internal/timehandle"
	"github.com/hydra-onchain/chainwatch/internal/wallet"
)

// SubmitFunc hands a built transaction to the environment (spec.md §6,
// the downward "SubmitTx" callback). Submission is best-effort: the
// poster never retries, and inclusion is confirmed only when the
// transaction observers later see it on roll-forward.
type SubmitFunc func(*tx.Tx) error

// Request is a single PostChainTx request (spec.md §6). Only the
// fields relevant to Kind are read; it is the Go-idiomatic flattening
// of the original tagged union, since every constructor takes a
// different subset of arguments.
type Request struct {
	Kind   event.TxKind
	HeadId types.HeadId

	// Init
	SeedInput          types.TxIn
	Parties            types.PartyList
	ContestationPeriod types.ContestationPeriod

	// Commit
	Party      types.Party
	OwnInitial types.TxIn
	ToCommit   chainstate.UTxO

	// Close / Contest / Fanout
	SnapshotNumber uint64
	FinalUTxO      chainstate.UTxO
}

// Poster is the ChainPoster for a single Head.
type Poster struct {
	params  construct.Params
	wallet  *wallet.TinyWallet
	state   *localstate.LocalChainState
	time    *timehandle.TimeHandle
	submit  SubmitFunc
	feeRate uint64
}

// New builds a Poster. submit may be nil, in which case Post constructs
// and signs a transaction but never hands it anywhere — useful for
// dry runs and tests.
func New(params construct.Params, w *wallet.TinyWallet, state *localstate.LocalChainState, th *timehandle.TimeHandle, submit SubmitFunc, feeRate uint64) *Poster {
	return &Poster{params: params, wallet: w, state: state, time: th, submit: submit, feeRate: feeRate}
}

// Post constructs, balances, signs, and (if a submitter is configured)
// submits the transaction for req, returning the Head-transition record
// the caller can pass upward (spec.md §4.G "post_tx").
func (p *Poster) Post(req Request) (*event.PostChainTx, error) {
	correlationId := uuid.New()
	logger := log.Poster.With().Str("request_id", correlationId.String()).Str("kind", string(req.Kind)).Logger()

	builder, headId, err := p.constructFor(req)
	if err != nil {
		logger.Warn().Err(err).Msg("construction failed")
		return nil, mapConstructError(req, err)
	}

	all := p.state.GetLatest().UTxO
	if _, err := p.wallet.FinalizeTx(builder, all, p.feeRate); err != nil {
		logger.Warn().Err(err).Msg("cover fee failed")
		return nil, mapWalletError(req.Kind, all, err)
	}

	built := builder.Build()
	if p.submit != nil {
		if err := p.submit(built); err != nil {
			logger.Warn().Err(err).Msg("submission failed")
			return nil, &event.PostTxError{Kind: event.ErrKindInternal, Tx: req.Kind, Err: fmt.Errorf("submit: %w", err)}
		}
	}

	logger.Info().Str("head_id", headId.String()).Str("tx_hash", built.Hash().String()).Msg("posted transaction")
	return &event.PostChainTx{Kind: req.Kind, HeadId: headId, Tx: built}, nil
}

// DraftCommitTx builds a commit transaction for a user-supplied UTxO
// and returns it unsigned and unsubmitted: the caller, not this node's
// own wallet, owns and signs the committed funds (spec.md §4.G
// "draft_commit_tx").
func (p *Poster) DraftCommitTx(headId types.HeadId, party types.Party, ownInitial types.TxIn, userUTxO chainstate.UTxO) (*tx.Tx, error) {
	if owned := p.wallet.GetUTxO(userUTxO); len(owned) > 0 {
		err := errors.New("poster: spending this node's own fuel utxo in a user commit is forbidden")
		return nil, &event.PostTxError{Kind: event.ErrKindSpendingNodeUtxoForbidden, Tx: event.KindCommit, Err: err}
	}
	builder := construct.Commit(p.params, headId, party, ownInitial, userUTxO)
	return builder.Build(), nil
}

// ErrInvalidSeed is returned when a requested Init's seed input is not
// present in the currently known chain state (spec.md §4.G "post_tx"
// step 1 reads latest chain state before constructing).
var ErrInvalidSeed = errors.New("poster: seed input not found in known chain state")

func (p *Poster) constructFor(req Request) (*tx.Builder, types.HeadId, error) {
	switch req.Kind {
	case event.KindInit:
		if !req.SeedInput.IsZero() {
			if _, ok := p.state.GetLatest().UTxO[req.SeedInput]; !ok {
				return nil, types.HeadId{}, ErrInvalidSeed
			}
		}
		builder, headId, err := construct.Initialize(p.params, req.SeedInput, req.Parties, req.ContestationPeriod)
		return builder, headId, err
	case event.KindCommit:
		builder := construct.Commit(p.params, req.HeadId, req.Party, req.OwnInitial, req.ToCommit)
		return builder, req.HeadId, nil
	case event.KindAbort:
		builder, err := construct.Abort(p.params, req.HeadId, p.headUTxO())
		return builder, req.HeadId, err
	case event.KindCollectCom:
		builder, _, err := construct.CollectCom(p.params, req.HeadId, req.Parties, p.headUTxO())
		return builder, req.HeadId, err
	case event.KindClose:
		_, now, err := p.time.CurrentPointInTime()
		if err != nil {
			return nil, types.HeadId{}, fmt.Errorf("acquire time handle: %w", err)
		}
		builder, err := construct.Close(p.params, req.HeadId, p.headUTxO(), req.SnapshotNumber, req.FinalUTxO, req.ContestationPeriod, now)
		return builder, req.HeadId, err
	case event.KindContest:
		_, now, err := p.time.CurrentPointInTime()
		if err != nil {
			return nil, types.HeadId{}, fmt.Errorf("acquire time handle: %w", err)
		}
		builder, err := construct.Contest(p.params, req.HeadId, p.headUTxO(), req.SnapshotNumber, req.FinalUTxO, req.ContestationPeriod, now)
		return builder, req.HeadId, err
	case event.KindFanout:
		builder, err := construct.Fanout(p.params, req.HeadId, p.headUTxO(), req.FinalUTxO)
		return builder, req.HeadId, err
	default:
		return nil, types.HeadId{}, fmt.Errorf("poster: unknown request kind %q", req.Kind)
	}
}

// headUTxO returns the subset of the latest known chain state that
// belongs to this Head's script address, the view every constructor
// (other than Initialize) needs as its starting point.
func (p *Poster) headUTxO() chainstate.UTxO {
	all := p.state.GetLatest().UTxO
	out := chainstate.NewUTxO()
	for _, in := range all.SortedKeys() {
		o := all[in]
		if o.Address == p.params.HeadAddress {
			out[in] = o
		}
	}
	return out
}

// mapConstructError maps a transaction constructor's failure onto the
// PostTxError boundary (spec.md §4.G, §6). NoSeedInput and InvalidSeed
// are named independently of Tx kind since they can only arise from
// Init; Close and Abort get their own named
// FailedToConstructCloseTx/AbortTx kinds per the spec's external
// interface. Every other constructor's rejection (Commit, CollectCom,
// Contest, Fanout) has no dedicated slot in that closed union and
// falls back to Internal.
func mapConstructError(req Request, err error) *event.PostTxError {
	switch {
	case errors.Is(err, ErrInvalidSeed):
		return &event.PostTxError{Kind: event.ErrKindInvalidSeed, Tx: req.Kind, Err: err, HeadSeed: req.SeedInput}
	case errors.Is(err, construct.ErrNoSeedInput):
		return &event.PostTxError{Kind: event.ErrKindNoSeedInput, Tx: req.Kind, Err: err}
	}

	switch req.Kind {
	case event.KindClose:
		return &event.PostTxError{Kind: event.ErrKindFailedToConstructCloseTx, Tx: req.Kind, Err: err}
	case event.KindAbort:
		return &event.PostTxError{Kind: event.ErrKindFailedToConstructAbortTx, Tx: req.Kind, Err: err}
	default:
		return &event.PostTxError{Kind: event.ErrKindInternal, Tx: req.Kind, Err: err}
	}
}

// mapWalletError maps a CoverFee/Sign failure onto the PostTxError
// boundary per spec.md §4.G's explicit CoverFeeErr mapping:
// NoFuelUTxOFound→NoFuelUTXOFound, NotEnoughFunds→NotEnoughFuel,
// ScriptExecutionFailed→ScriptFailedInWallet{ptr,reason}, everything
// else→InternalWalletError{headUTxO,reason,tx}.
func mapWalletError(kind event.TxKind, headUTxO chainstate.UTxO, err error) *event.PostTxError {
	switch {
	case errors.Is(err, wallet.ErrNoFuelUTxO):
		return &event.PostTxError{Kind: event.ErrKindNoFuelUTxOFound, Tx: kind, Err: err}
	case errors.Is(err, wallet.ErrNotEnoughFunds):
		return &event.PostTxError{Kind: event.ErrKindNotEnoughFuel, Tx: kind, Err: err}
	default:
		return &event.PostTxError{
			Kind:     event.ErrKindInternalWalletError,
			Tx:       kind,
			Err:      err,
			HeadUTxO: headUTxO,
			Reason:   err.Error(),
		}
	}
}
