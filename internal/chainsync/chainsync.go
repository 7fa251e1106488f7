// Package chainsync implements the ChainSyncHandler (spec.md §4.F): the
// component that drives LocalChainState forward and backward as blocks
// roll forward or are rolled back, and turns every recognized
// Head-relevant transaction into an event on the shared event queue.
package chainsync

import (
	"fmt"

	"github.com/hydra-onchain/chainwatch/pkg/chainstate"
	"github.com/hydra-onchain/chainwatch/pkg/types"

	"github.com/hydra-onchain/chainwatch/internal/event"
	"github.com/hydra-onchain/chainwatch/internal/localstate"
	"github.com/hydra-onchain/chainwatch/internal/log"
	"github.com/hydra-onchain/chainwatch/internal/observe"
	"github.com/hydra-onchain/chainwatch/internal/timehandle"
)

// Block is the minimal view of a rolled-forward block the handler
// needs: where it is on chain, which inputs it consumed, and which
// outputs it produced. Full block/ledger detail is out of scope
// (spec.md §1 Non-goals) — the poster's view of "a transaction" already
// collapses to this.
type Block struct {
	Point    types.ChainPoint
	Consumed []types.TxIn
	Produced chainstate.UTxO
}

// Handler drives LocalChainState and the event queue from a sequence of
// roll-forward/roll-backward notifications (spec.md §4.F).
type Handler struct {
	headId types.HeadId
	state  *localstate.LocalChainState
	time   *timehandle.TimeHandle
	queue  *event.Queue
}

// New creates a ChainSyncHandler for a single Head.
func New(headId types.HeadId, state *localstate.LocalChainState, th *timehandle.TimeHandle, queue *event.Queue) *Handler {
	return &Handler{headId: headId, state: state, time: th, queue: queue}
}

// OnRollForward advances local state by one block: recognizes any
// Head-relevant transaction in it, pushes the resulting chain state,
// and enqueues a Tick plus (if anything was recognized) an Observation
// event, in that order (spec.md §4.F "on_roll_forward").
func (h *Handler) OnRollForward(b Block) error {
	at, err := h.time.SlotToUTC(b.Point.Slot)
	if err != nil {
		// A conversion past the known horizon is fatal: the handler has
		// no way to assign a wall-clock time to this block, and guessing
		// would violate the event queue's ordering guarantees.
		return fmt.Errorf("chainsync: %w", err)
	}

	prior := h.state.GetLatest()
	obs, err := observe.ObserveTx(h.headId, prior.UTxO, b.Consumed, b.Produced)
	if err != nil {
		return fmt.Errorf("chainsync: observe roll-forward: %w", err)
	}

	next := chainstate.ChainStateAt{
		UTxO:       prior.UTxO.Without(b.Consumed...).Merge(b.Produced),
		RecordedAt: b.Point,
	}
	if obs != nil {
		obs.NewChainState = next
	}

	if err := h.state.PushNew(next); err != nil {
		return fmt.Errorf("chainsync: push chain state: %w", err)
	}

	h.queue.PushTick(b.Point.Slot, at)
	if obs != nil {
		h.queue.PushObservation(obs, b.Point.Slot, at)
	}

	log.ChainSync.Debug().
		Str("head_id", h.headId.String()).
		Uint64("slot", uint64(b.Point.Slot)).
		Bool("observed", obs != nil).
		Msg("rolled forward")
	return nil
}

// OnRollBackward rolls local state back to toSlot and enqueues a
// Rollback event (spec.md §4.F "on_roll_backward").
func (h *Handler) OnRollBackward(toSlot types.ChainSlot) error {
	if _, err := h.state.Rollback(toSlot); err != nil {
		return fmt.Errorf("chainsync: rollback: %w", err)
	}

	at, err := h.time.SlotToUTC(toSlot)
	if err != nil {
		return fmt.Errorf("chainsync: %w", err)
	}

	h.queue.PushRollback(toSlot, at)
	log.ChainSync.Debug().
		Str("head_id", h.headId.String()).
		Uint64("to_slot", uint64(toSlot)).
		Msg("rolled back")
	return nil
}
