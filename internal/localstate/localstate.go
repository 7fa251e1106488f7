// Package localstate implements the LocalChainState component (spec.md
// §4.E): the single-writer, mutex-guarded view of chain state that every
// other component reads from and that the ChainSyncHandler updates as
// new blocks roll forward or are rolled back. It persists the chain
// state history to a storage.DB so a restart resumes from the last
// observed point rather than re-scanning the chain from genesis.
package localstate

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hydra-onchain/chainwatch/pkg/chainstate"
	"github.com/hydra-onchain/chainwatch/pkg/types"

	"github.com/hydra-onchain/chainwatch/internal/log"
	"github.com/hydra-onchain/chainwatch/internal/storage"
)

// prefixHistory keys persisted chain-state entries: h/<slot big-endian uint64>.
var prefixHistory = []byte("h/")

// LocalChainState wraps a chainstate.History with a mutex and a
// storage.DB-backed persistence layer. All reads and writes go through
// a single instance, matching the single-writer discipline the rest of
// the on-chain interface layer assumes of its local state.
type LocalChainState struct {
	mu      sync.RWMutex
	db      storage.DB
	history *chainstate.History
}

// New loads a LocalChainState from db if it holds a persisted history,
// otherwise initializes one from anchor and persists it immediately.
func New(db storage.DB, anchor chainstate.ChainStateAt) (*LocalChainState, error) {
	entries, err := loadEntries(db)
	if err != nil {
		return nil, fmt.Errorf("load local chain state: %w", err)
	}

	if len(entries) == 0 {
		h := chainstate.NewHistory(anchor)
		if err := persistEntry(db, anchor); err != nil {
			return nil, fmt.Errorf("persist anchor: %w", err)
		}
		return &LocalChainState{db: db, history: h}, nil
	}

	h := chainstate.NewHistory(entries[0])
	for _, e := range entries[1:] {
		if err := h.Push(e); err != nil {
			return nil, fmt.Errorf("replay persisted history: %w", err)
		}
	}
	return &LocalChainState{db: db, history: h}, nil
}

// GetLatest returns the most recently observed chain state.
func (s *LocalChainState) GetLatest() chainstate.ChainStateAt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Current()
}

// Anchor returns the pinned, rollback-proof floor of the history.
func (s *LocalChainState) Anchor() chainstate.ChainStateAt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Anchor()
}

// History returns a copy of every entry currently held, oldest first.
func (s *LocalChainState) History() []chainstate.ChainStateAt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Entries()
}

// PushNew appends a newly observed chain state, persisting it before
// it becomes visible to readers.
func (s *LocalChainState) PushNew(next chainstate.ChainStateAt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := persistEntry(s.db, next); err != nil {
		return fmt.Errorf("persist chain state: %w", err)
	}
	if err := s.history.Push(next); err != nil {
		return err
	}
	log.LocalState.Debug().Uint64("slot", uint64(next.Slot())).Msg("pushed chain state")
	return nil
}

// Rollback discards every entry observed after toSlot, both in memory
// and in storage, and returns the new current state.
func (s *LocalChainState) Rollback(toSlot types.ChainSlot) (chainstate.ChainStateAt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := s.history.Rollback(toSlot)
	if err := deleteEntriesAfter(s.db, toSlot); err != nil {
		return chainstate.ChainStateAt{}, fmt.Errorf("persist rollback: %w", err)
	}
	log.LocalState.Debug().Uint64("to_slot", uint64(toSlot)).Msg("rolled back chain state")
	return dropped, nil
}

func slotKey(slot types.ChainSlot) []byte {
	key := make([]byte, len(prefixHistory)+8)
	copy(key, prefixHistory)
	binary.BigEndian.PutUint64(key[len(prefixHistory):], uint64(slot))
	return key
}

type utxoEntry struct {
	TxIn types.TxIn       `json:"txIn"`
	Out  chainstate.TxOut `json:"txOut"`
}

type persistedEntry struct {
	UTxO       []utxoEntry      `json:"utxo"`
	RecordedAt types.ChainPoint `json:"recordedAt"`
	IsInitial  bool             `json:"isInitial"`
}

func persistEntry(db storage.DB, e chainstate.ChainStateAt) error {
	p := persistedEntry{RecordedAt: e.RecordedAt, IsInitial: e.IsInitial}
	for in, out := range e.UTxO {
		p.UTxO = append(p.UTxO, utxoEntry{TxIn: in, Out: out})
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal chain state: %w", err)
	}
	return db.Put(slotKey(e.Slot()), data)
}

func loadEntries(db storage.DB) ([]chainstate.ChainStateAt, error) {
	var entries []chainstate.ChainStateAt
	err := db.ForEach(prefixHistory, func(_, value []byte) error {
		var p persistedEntry
		if err := json.Unmarshal(value, &p); err != nil {
			return fmt.Errorf("unmarshal chain state: %w", err)
		}
		u := chainstate.NewUTxO()
		for _, e := range p.UTxO {
			u[e.TxIn] = e.Out
		}
		entries = append(entries, chainstate.ChainStateAt{
			UTxO:       u,
			RecordedAt: p.RecordedAt,
			IsInitial:  p.IsInitial,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortEntriesBySlot(entries)
	return entries, nil
}

func sortEntriesBySlot(entries []chainstate.ChainStateAt) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Slot() < entries[j-1].Slot(); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

func deleteEntriesAfter(db storage.DB, toSlot types.ChainSlot) error {
	var stale [][]byte
	err := db.ForEach(prefixHistory, func(key, value []byte) error {
		var p persistedEntry
		if err := json.Unmarshal(value, &p); err != nil {
			return fmt.Errorf("unmarshal chain state: %w", err)
		}
		if p.RecordedAt.Slot > toSlot && !p.IsInitial {
			k := make([]byte, len(key))
			copy(k, key)
			stale = append(stale, k)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, k := range stale {
		if err := db.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
