// Command chainwatch-demo drives a single Head through its full
// lifecycle — Init, Commit, CollectCom, Close, Fanout — against an
// in-process simulated ledger, wiring together all eight on-chain
// interface layer components (spec.md §2) end to end: TimeHandle,
// TinyWallet, the transaction constructors, the transaction observers,
// LocalChainState, ChainSyncHandler, ChainPoster, and the Event API.
//
// Usage: go run ./cmd/chainwatch-demo
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hydra-onchain/chainwatch/pkg/chainstate"
	"github.com/hydra-onchain/chainwatch/pkg/crypto"
	"github.com/hydra-onchain/chainwatch/pkg/tx"
	"github.com/hydra-onchain/chainwatch/pkg/types"

	"github.com/hydra-onchain/chainwatch/config"
	"github.com/hydra-onchain/chainwatch/internal/chainsync"
	"github.com/hydra-onchain/chainwatch/internal/construct"
	"github.com/hydra-onchain/chainwatch/internal/event"
	klog "github.com/hydra-onchain/chainwatch/internal/log"
	"github.com/hydra-onchain/chainwatch/internal/localstate"
	"github.com/hydra-onchain/chainwatch/internal/poster"
	"github.com/hydra-onchain/chainwatch/internal/storage"
	"github.com/hydra-onchain/chainwatch/internal/timehandle"
	"github.com/hydra-onchain/chainwatch/internal/wallet"
)

// ledger is a toy stand-in for the real chain: a flat UTxO set plus a
// slot counter. Posting a transaction "submits" it by applying its
// inputs/outputs here and immediately rolling it forward, since there
// is no real network to wait on.
type ledger struct {
	utxo chainstate.UTxO
	slot types.Slot
}

func (l *ledger) apply(built *tx.Tx) (consumed []types.TxIn, produced chainstate.UTxO) {
	consumed = built.Inputs
	produced = chainstate.NewUTxO()
	for in := range l.utxo {
		for _, spent := range consumed {
			if in == spent {
				delete(l.utxo, in)
			}
		}
	}
	for i, out := range built.Outputs {
		in := types.TxIn{TxID: built.Hash(), Index: uint32(i)}
		l.utxo[in] = out
		produced[in] = out
	}
	l.slot += 5
	return consumed, produced
}

func main() {
	if err := klog.Init("info", false, ""); err != nil {
		fmt.Fprintln(os.Stderr, "init logging:", err)
		os.Exit(1)
	}
	logger := klog.WithComponent("demo")
	cfg := config.DefaultTestnet()

	headKey, err := crypto.GenerateKey()
	if err != nil {
		logger.Fatal().Err(err).Msg("generate head key")
	}
	headAddr := crypto.AddressFromVerificationKey(headKey.VerificationKey())
	params := construct.Params{HeadAddress: headAddr, MaxGraceTime: cfg.Chain.MaxGraceTime}

	keyFilePath := cfg.Wallet.KeyFile
	if keyFilePath == "" {
		dir, err := os.MkdirTemp("", "chainwatch-demo-wallet")
		if err != nil {
			logger.Fatal().Err(err).Msg("create wallet dir")
		}
		keyFilePath = filepath.Join(dir, "fuel.key")
	}
	fuelKey, err := wallet.LoadOrCreateKeyFile(keyFilePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load fuel key")
	}
	fuelWallet := wallet.NewTinyWallet(fuelKey)

	aliceKey, _ := crypto.GenerateKey()
	bobKey, _ := crypto.GenerateKey()
	alice := types.NewParty(aliceKey.VerificationKey())
	bob := types.NewParty(bobKey.VerificationKey())
	aliceAddr := crypto.AddressFromVerificationKey(aliceKey.VerificationKey())

	// A throwaway address distinct from the fuel wallet's own, so
	// cover_fee never mistakes the seed input for spendable fuel.
	seedKey, _ := crypto.GenerateKey()
	seedAddr := crypto.AddressFromVerificationKey(seedKey.VerificationKey())

	seedInput := types.TxIn{TxID: types.Hash{1}, Index: 0}
	aliceFunds := types.TxIn{TxID: types.Hash{2}, Index: 0}

	chain := &ledger{
		utxo: chainstate.UTxO{
			seedInput:  {Address: seedAddr, Value: 0},
			aliceFunds: {Address: aliceAddr, Value: 1_000_000},
		},
	}
	// CoverFee returns no change, so each of the six posted transactions
	// spends a whole fuel output of its own.
	for i := uint32(0); i < 6; i++ {
		chain.utxo[types.TxIn{TxID: types.Hash{99}, Index: i}] = chainstate.TxOut{Address: fuelWallet.Address(), Value: 100_000_000}
	}

	// The local view starts from the ledger's UTxO so the poster can find
	// the seed input and the wallet its fuel.
	state, err := localstate.New(storage.NewMemory(), chainstate.ChainStateAt{UTxO: chain.utxo.Clone(), IsInitial: true})
	if err != nil {
		logger.Fatal().Err(err).Msg("init local chain state")
	}

	genesis := timehandle.Era{
		StartSlot:  0,
		EndSlot:    1_000_000,
		StartTime:  time.Now(),
		SlotLength: time.Second,
	}
	th := timehandle.New(genesis)
	queue := event.NewQueue()

	headId := crypto.HeadIdFromTxIn(seedInput)
	sync := chainsync.New(headId, state, th, queue)

	rollForward := func(consumed []types.TxIn, produced chainstate.UTxO) {
		if err := sync.OnRollForward(chainsync.Block{
			Point:    types.ChainPoint{Slot: chain.slot},
			Consumed: consumed,
			Produced: produced,
		}); err != nil {
			logger.Fatal().Err(err).Msg("roll forward")
		}
	}

	submit := func(built *tx.Tx) error {
		consumed, produced := chain.apply(built)
		rollForward(consumed, produced)
		return nil
	}

	chainPoster := poster.New(params, fuelWallet, state, th, submit, cfg.Chain.FeeRate)

	logger.Info().Str("head_id", headId.String()).Msg("initializing head")
	if _, err := chainPoster.Post(poster.Request{
		Kind:               event.KindInit,
		SeedInput:          seedInput,
		Parties:            types.PartyList{alice, bob},
		ContestationPeriod: cfg.Chain.ContestationPeriod,
	}); err != nil {
		logger.Fatal().Err(err).Msg("post init")
	}

	aliceOwnInitial, bobOwnInitial := findOwnInitials(state, params, alice, bob)

	logger.Info().Msg("alice committing funds")
	if _, err := chainPoster.Post(poster.Request{
		Kind:       event.KindCommit,
		HeadId:     headId,
		Party:      alice,
		OwnInitial: aliceOwnInitial,
		ToCommit:   chainstate.UTxO{aliceFunds: {Address: aliceAddr, Value: 1_000_000}},
	}); err != nil {
		logger.Fatal().Err(err).Msg("post alice commit")
	}

	logger.Info().Msg("bob committing nothing")
	if _, err := chainPoster.Post(poster.Request{
		Kind:       event.KindCommit,
		HeadId:     headId,
		Party:      bob,
		OwnInitial: bobOwnInitial,
		ToCommit:   chainstate.NewUTxO(),
	}); err != nil {
		logger.Fatal().Err(err).Msg("post bob commit")
	}

	logger.Info().Msg("collecting commits")
	if _, err := chainPoster.Post(poster.Request{
		Kind:    event.KindCollectCom,
		HeadId:  headId,
		Parties: types.PartyList{alice, bob},
	}); err != nil {
		logger.Fatal().Err(err).Msg("post collectcom")
	}

	finalUTxO := chainstate.UTxO{
		{TxID: types.Hash{50}, Index: 0}: {Address: aliceAddr, Value: 1_000_000},
	}

	logger.Info().Msg("closing head")
	if _, err := chainPoster.Post(poster.Request{
		Kind:               event.KindClose,
		HeadId:             headId,
		SnapshotNumber:     1,
		FinalUTxO:          finalUTxO,
		ContestationPeriod: cfg.Chain.ContestationPeriod,
	}); err != nil {
		logger.Fatal().Err(err).Msg("post close")
	}

	logger.Info().Msg("fanning out")
	if _, err := chainPoster.Post(poster.Request{
		Kind:      event.KindFanout,
		HeadId:    headId,
		FinalUTxO: finalUTxO,
	}); err != nil {
		logger.Fatal().Err(err).Msg("post fanout")
	}

	fmt.Println()
	fmt.Println("Head lifecycle events:")
	for _, ev := range queue.Drain() {
		switch ev.Kind {
		case event.EventObservation:
			fmt.Printf("  [slot %d] %s\n", ev.Slot, ev.Observation.Kind)
		case event.EventTick:
			fmt.Printf("  [slot %d] tick\n", ev.Slot)
		case event.EventRollback:
			fmt.Printf("  [slot %d] rollback\n", ev.Slot)
		}
	}
}

// findOwnInitials locates Alice's and Bob's Initial outputs among the
// Head's current UTxO, the way a real node would before constructing a
// Commit (spec.md §4.C "commit" reads the caller's own Initial output).
func findOwnInitials(state *localstate.LocalChainState, params construct.Params, alice, bob types.Party) (types.TxIn, types.TxIn) {
	var aliceIn, bobIn types.TxIn
	all := state.GetLatest().UTxO
	for _, in := range all.SortedKeys() {
		out := all[in]
		if out.Address != params.HeadAddress || out.Datum.Tag != types.DatumInitial {
			continue
		}
		view, err := construct.DecodeInitialDatum(out.Datum)
		if err != nil {
			continue
		}
		switch view.Party {
		case alice.VerificationKey.String():
			aliceIn = in
		case bob.VerificationKey.String():
			bobIn = in
		}
	}
	return aliceIn, bobIn
}
