package event

import (
	"sync"

	"github.com/hydra-onchain/chainwatch/pkg/types"

	"github.com/hydra-onchain/chainwatch/internal/log"
)

// Queue is the strictly-monotonic event queue the ChainSyncHandler
// writes to and every other component drains from (spec.md §6, testable
// property "event ids are strictly monotonic regardless of kind").
type Queue struct {
	mu     sync.Mutex
	nextID uint64
	events []ChainEvent
}

// NewQueue creates an empty event queue.
func NewQueue() *Queue {
	return &Queue{nextID: 1}
}

// PushTick enqueues a Tick event for the given point in time.
func (q *Queue) PushTick(slot types.Slot, at types.UtcTime) ChainEvent {
	return q.push(ChainEvent{Kind: EventTick, Slot: slot, Time: at})
}

// PushObservation enqueues an Observation event for a recognized
// Head-relevant transaction.
func (q *Queue) PushObservation(obs *OnChainTx, slot types.Slot, at types.UtcTime) ChainEvent {
	return q.push(ChainEvent{Kind: EventObservation, Slot: slot, Time: at, Observation: obs})
}

// PushRollback enqueues a Rollback event down to the given slot.
func (q *Queue) PushRollback(toSlot types.ChainSlot, at types.UtcTime) ChainEvent {
	return q.push(ChainEvent{Kind: EventRollback, Slot: toSlot, Time: at, RollbackTo: toSlot})
}

func (q *Queue) push(e ChainEvent) ChainEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	e.ID = q.nextID
	q.nextID++
	q.events = append(q.events, e)
	log.Event.Debug().Uint64("id", e.ID).Str("kind", string(e.Kind)).Msg("enqueued event")
	return e
}

// Drain returns every queued event in arrival order and empties the
// queue. IDs already assigned are never reused.
func (q *Queue) Drain() []ChainEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.events
	q.events = nil
	return out
}

// Len returns the number of events currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
