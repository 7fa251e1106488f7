// Package timehandle implements the TimeHandle component (spec.md §4.A):
// conversion between absolute ledger slots and wall-clock time. Chains
// like the ones Hydra runs against periodically revise how long a slot
// lasts (an "era" change at an epoch boundary); TimeHandle keeps a
// contiguous history of these eras so that conversions for slots already
// covered by a known era never need to guess. A slot or time outside
// every known era's range is reported as ErrPastHorizon rather than
// extrapolated, since extrapolating past an era boundary can silently
// produce a wrong answer once the real boundary is announced.
package timehandle

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hydra-onchain/chainwatch/pkg/types"
)

// ErrPastHorizon is returned when a conversion falls outside every era
// currently known to the TimeHandle (spec.md §4.A "PastHorizon").
var ErrPastHorizon = errors.New("timehandle: past known horizon")

// timeNow is indirected so tests can pin wall-clock time.
var timeNow = time.Now

// Era describes a contiguous stretch of slots with a fixed slot length,
// anchored at a known wall-clock start time. EndSlot is exclusive: the
// next era (if any) must start exactly there.
type Era struct {
	StartSlot  types.Slot
	EndSlot    types.Slot
	StartTime  types.UtcTime
	SlotLength time.Duration
}

func (e Era) timeAt(slot types.Slot) types.UtcTime {
	delta := int64(slot - e.StartSlot)
	return e.StartTime.Add(time.Duration(delta) * e.SlotLength)
}

func (e Era) slotAt(utc types.UtcTime) types.Slot {
	delta := utc.Sub(e.StartTime)
	return e.StartSlot + types.Slot(delta/e.SlotLength)
}

func (e Era) contains(slot types.Slot) bool {
	return slot >= e.StartSlot && slot < e.EndSlot
}

func (e Era) containsTime(utc types.UtcTime) bool {
	return !utc.Before(e.StartTime) && utc.Before(e.timeAt(e.EndSlot))
}

// TimeHandle converts between slots and wall-clock time over a
// known, mutex-guarded history of eras.
type TimeHandle struct {
	mu   sync.RWMutex
	eras []Era
}

// New starts a TimeHandle with the single era known at genesis.
func New(genesis Era) *TimeHandle {
	return &TimeHandle{eras: []Era{genesis}}
}

// ExtendHorizon appends a newly-learned era once its parameters are
// announced on chain. The new era must start exactly where the known
// horizon currently ends.
func (t *TimeHandle) ExtendHorizon(next Era) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	last := t.eras[len(t.eras)-1]
	if next.StartSlot != last.EndSlot {
		return fmt.Errorf("timehandle: new era must start at horizon %d, got %d", last.EndSlot, next.StartSlot)
	}
	t.eras = append(t.eras, next)
	return nil
}

// SlotToUTC converts a slot to wall-clock time.
func (t *TimeHandle) SlotToUTC(slot types.Slot) (types.UtcTime, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, e := range t.eras {
		if e.contains(slot) {
			return e.timeAt(slot), nil
		}
	}
	return types.UtcTime{}, fmt.Errorf("%w: slot %d", ErrPastHorizon, slot)
}

// SlotFromUTC converts wall-clock time to the slot active at that time.
func (t *TimeHandle) SlotFromUTC(utc types.UtcTime) (types.Slot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, e := range t.eras {
		if e.containsTime(utc) {
			return e.slotAt(utc), nil
		}
	}
	return 0, fmt.Errorf("%w: time %s", ErrPastHorizon, utc)
}

// CurrentPointInTime returns the current slot and wall-clock time,
// per spec.md §4.A "current_point_in_time".
func (t *TimeHandle) CurrentPointInTime() (types.Slot, types.UtcTime, error) {
	now := timeNow().UTC()
	slot, err := t.SlotFromUTC(now)
	if err != nil {
		return 0, types.UtcTime{}, err
	}
	return slot, now, nil
}
