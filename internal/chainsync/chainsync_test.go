package chainsync

import (
	"testing"
	"time"

	"github.com/hydra-onchain/chainwatch/pkg/chainstate"
	"github.com/hydra-onchain/chainwatch/pkg/crypto"
	"github.com/hydra-onchain/chainwatch/pkg/types"

	"github.com/hydra-onchain/chainwatch/internal/construct"
	"github.com/hydra-onchain/chainwatch/internal/event"
	"github.com/hydra-onchain/chainwatch/internal/localstate"
	"github.com/hydra-onchain/chainwatch/internal/storage"
	"github.com/hydra-onchain/chainwatch/internal/timehandle"
)

func newHandler(t *testing.T, headId types.HeadId) (*Handler, *event.Queue) {
	t.Helper()
	state, err := localstate.New(storage.NewMemory(), chainstate.NewInitialChainStateAt())
	if err != nil {
		t.Fatalf("localstate.New: %v", err)
	}
	genesis := timehandle.Era{
		StartSlot:  0,
		EndSlot:    1_000_000,
		StartTime:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		SlotLength: time.Second,
	}
	th := timehandle.New(genesis)
	queue := event.NewQueue()
	return New(headId, state, th, queue), queue
}

func TestOnRollForward_PushesTickAndAdvancesState(t *testing.T) {
	headId := types.HeadId{1}
	h, queue := newHandler(t, headId)

	produced := chainstate.UTxO{
		{TxID: types.Hash{1}, Index: 0}: {Value: 1000},
	}
	err := h.OnRollForward(Block{Point: types.ChainPoint{Slot: 10}, Produced: produced})
	if err != nil {
		t.Fatalf("OnRollForward: %v", err)
	}

	events := queue.Drain()
	if len(events) != 1 || events[0].Kind != event.EventTick {
		t.Fatalf("expected a single Tick event, got %+v", events)
	}

	latest := h.state.GetLatest()
	if latest.Slot() != 10 {
		t.Errorf("latest slot = %d, want 10", latest.Slot())
	}
	if len(latest.UTxO) != 1 {
		t.Errorf("latest utxo count = %d, want 1", len(latest.UTxO))
	}
}

func TestOnRollForward_PushesObservationForCommit(t *testing.T) {
	headId := types.HeadId{2}
	h, queue := newHandler(t, headId)

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	party := types.NewParty(key.VerificationKey())
	addr := crypto.AddressFromVerificationKey(key.VerificationKey())

	commitBuilder := construct.Commit(construct.Params{HeadAddress: addr}, headId, party, types.TxIn{TxID: types.Hash{9}}, chainstate.NewUTxO())
	built := commitBuilder.Build()
	produced := chainstate.UTxO{{TxID: types.Hash{3}, Index: 0}: built.Outputs[0]}

	if err := h.OnRollForward(Block{Point: types.ChainPoint{Slot: 5}, Produced: produced}); err != nil {
		t.Fatalf("OnRollForward: %v", err)
	}

	events := queue.Drain()
	if len(events) != 2 {
		t.Fatalf("expected Tick+Observation, got %d events", len(events))
	}
	if events[0].Kind != event.EventTick {
		t.Errorf("first event kind = %s, want Tick", events[0].Kind)
	}
	if events[1].Kind != event.EventObservation {
		t.Fatalf("second event kind = %s, want Observation", events[1].Kind)
	}
	if events[1].Observation.Kind != event.KindCommit {
		t.Errorf("observed tx kind = %s, want Commit", events[1].Observation.Kind)
	}
}

func TestOnRollBackward_PushesRollbackAndRewindsState(t *testing.T) {
	headId := types.HeadId{3}
	h, queue := newHandler(t, headId)

	for _, slot := range []types.Slot{5, 10, 15} {
		if err := h.OnRollForward(Block{Point: types.ChainPoint{Slot: slot}, Produced: chainstate.NewUTxO()}); err != nil {
			t.Fatalf("OnRollForward(%d): %v", slot, err)
		}
	}
	queue.Drain()

	if err := h.OnRollBackward(types.ChainSlot(10)); err != nil {
		t.Fatalf("OnRollBackward: %v", err)
	}

	events := queue.Drain()
	if len(events) != 1 || events[0].Kind != event.EventRollback {
		t.Fatalf("expected a single Rollback event, got %+v", events)
	}
	if h.state.GetLatest().Slot() != 10 {
		t.Errorf("latest slot after rollback = %d, want 10", h.state.GetLatest().Slot())
	}
}

func TestOnRollForward_PastHorizonIsFatal(t *testing.T) {
	headId := types.HeadId{4}
	h, _ := newHandler(t, headId)

	err := h.OnRollForward(Block{Point: types.ChainPoint{Slot: 10_000_000}, Produced: chainstate.NewUTxO()})
	if err == nil {
		t.Fatal("expected an error for a slot past the known horizon")
	}
}
