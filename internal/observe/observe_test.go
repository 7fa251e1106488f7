package observe

import (
	"testing"
	"time"

	"github.com/hydra-onchain/chainwatch/pkg/chainstate"
	"github.com/hydra-onchain/chainwatch/pkg/crypto"
	"github.com/hydra-onchain/chainwatch/pkg/types"

	"github.com/hydra-onchain/chainwatch/internal/construct"
	"github.com/hydra-onchain/chainwatch/internal/event"
)

func testParty(t *testing.T) types.Party {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return types.NewParty(key.VerificationKey())
}

func TestObserveTx_RecognizesCommit(t *testing.T) {
	headId := types.HeadId{1}
	party := testParty(t)
	addr := crypto.AddressFromVerificationKey(party.VerificationKey)

	committed := chainstate.UTxO{
		{TxID: types.Hash{9}, Index: 0}: {Address: addr, Value: 500},
	}

	commitBuilder := construct.Commit(construct.Params{HeadAddress: addr}, headId, party, types.TxIn{TxID: types.Hash{2}, Index: 1}, committed)
	built := commitBuilder.Build()

	produced := chainstate.NewUTxO()
	for i, out := range built.Outputs {
		produced[types.TxIn{TxID: types.Hash{byte(100 + i)}, Index: uint32(i)}] = out
	}

	obs, err := ObserveTx(headId, chainstate.NewUTxO(), nil, produced)
	if err != nil {
		t.Fatalf("ObserveTx: %v", err)
	}
	if obs == nil {
		t.Fatal("expected a commit observation")
	}
	if obs.Kind != event.KindCommit {
		t.Errorf("kind = %s, want Commit", obs.Kind)
	}
	if !obs.Party.Equal(party) {
		t.Errorf("observed party does not match committer")
	}
}

func TestObserveTx_IgnoresUnrelatedHead(t *testing.T) {
	headId := types.HeadId{1}
	otherHeadId := types.HeadId{2}
	party := testParty(t)
	addr := crypto.AddressFromVerificationKey(party.VerificationKey)

	commitBuilder := construct.Commit(construct.Params{HeadAddress: addr}, otherHeadId, party, types.TxIn{TxID: types.Hash{2}, Index: 1}, chainstate.NewUTxO())
	built := commitBuilder.Build()

	produced := chainstate.NewUTxO()
	for i, out := range built.Outputs {
		produced[types.TxIn{TxID: types.Hash{byte(100 + i)}, Index: uint32(i)}] = out
	}

	obs, err := ObserveTx(headId, chainstate.NewUTxO(), nil, produced)
	if err != nil {
		t.Fatalf("ObserveTx: %v", err)
	}
	if obs != nil {
		t.Fatalf("expected no observation for a different head's commit, got %+v", obs)
	}
}

func TestObserveTx_RecognizesClosed(t *testing.T) {
	headId := types.HeadId{3}
	addr := crypto.AddressFromVerificationKey(testParty(t).VerificationKey)
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

	p := construct.Params{HeadAddress: addr, MaxGraceTime: types.ContestationPeriod(200 * time.Second)}
	headUTxO := chainstate.UTxO{
		{TxID: types.Hash{1}, Index: 0}: {Address: addr, Value: 1000, Datum: types.Datum{Tag: types.DatumHead}},
	}
	b, err := construct.Close(p, headId, headUTxO, 1, chainstate.NewUTxO(), types.ContestationPeriod(30*time.Second), now)
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	built := b.Build()

	produced := chainstate.UTxO{{TxID: types.Hash{4}, Index: 0}: built.Outputs[0]}
	obs, err := ObserveTx(headId, chainstate.NewUTxO(), nil, produced)
	if err != nil {
		t.Fatalf("ObserveTx: %v", err)
	}
	if obs == nil || obs.Kind != event.KindClose {
		t.Fatalf("expected a Close observation, got %+v", obs)
	}
}

func TestObserveTx_RecognizesInit(t *testing.T) {
	addr := crypto.AddressFromVerificationKey(testParty(t).VerificationKey)
	seed := types.TxIn{TxID: types.Hash{11}, Index: 0}
	parties := types.PartyList{testParty(t), testParty(t)}
	cp := types.ContestationPeriod(60 * time.Second)

	p := construct.Params{HeadAddress: addr}
	builder, headId, err := construct.Initialize(p, seed, parties, cp)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	built := builder.Build()

	produced := chainstate.UTxO{{TxID: types.Hash{12}, Index: 0}: built.Outputs[0]}
	obs, err := ObserveTx(headId, chainstate.NewUTxO(), []types.TxIn{seed}, produced)
	if err != nil {
		t.Fatalf("ObserveTx: %v", err)
	}
	if obs == nil || obs.Kind != event.KindInit {
		t.Fatalf("expected an Init observation, got %+v", obs)
	}
	if obs.HeadSeed != seed {
		t.Errorf("HeadSeed = %v, want %v", obs.HeadSeed, seed)
	}
	if obs.ContestationPeriod != cp {
		t.Errorf("ContestationPeriod = %v, want %v", obs.ContestationPeriod, cp)
	}
	if len(obs.Parties) != len(parties) {
		t.Fatalf("Parties = %d entries, want %d", len(obs.Parties), len(parties))
	}
}

func TestObserveTx_RecognizesCollectComAfterPriorHeadThread(t *testing.T) {
	addr := crypto.AddressFromVerificationKey(testParty(t).VerificationKey)
	p := construct.Params{HeadAddress: addr}

	seed := types.TxIn{TxID: types.Hash{13}, Index: 0}
	// No parties, so CollectCom's "all committed" check (commits >=
	// parties) is trivially satisfied without needing Commit outputs.
	initBuilder, headId, err := construct.Initialize(p, seed, types.PartyList{}, types.ContestationPeriod(30*time.Second))
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	threadIn := types.TxIn{TxID: types.Hash{14}, Index: 0}
	priorUTxO := chainstate.UTxO{threadIn: initBuilder.Build().Outputs[0]}

	builder, _, err := construct.CollectCom(p, headId, types.PartyList{}, priorUTxO)
	if err != nil {
		t.Fatalf("CollectCom: %v", err)
	}
	built := builder.Build()
	produced := chainstate.UTxO{{TxID: types.Hash{15}, Index: 0}: built.Outputs[0]}

	obs, err := ObserveTx(headId, priorUTxO, []types.TxIn{threadIn}, produced)
	if err != nil {
		t.Fatalf("ObserveTx: %v", err)
	}
	if obs == nil || obs.Kind != event.KindCollectCom {
		t.Fatalf("expected a CollectCom observation, got %+v", obs)
	}
}

func TestObserveTx_RecognizesContestAfterPriorClose(t *testing.T) {
	headId := types.HeadId{16}
	addr := crypto.AddressFromVerificationKey(testParty(t).VerificationKey)
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	p := construct.Params{HeadAddress: addr, MaxGraceTime: types.ContestationPeriod(200 * time.Second)}

	closedIn := types.TxIn{TxID: types.Hash{17}, Index: 0}
	headUTxO := chainstate.UTxO{
		{TxID: types.Hash{18}, Index: 0}: {Address: addr, Value: 1000, Datum: types.Datum{Tag: types.DatumHead}},
	}
	closeBuilder, err := construct.Close(p, headId, headUTxO, 4, chainstate.NewUTxO(), types.ContestationPeriod(30*time.Second), now)
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	priorUTxO := chainstate.UTxO{closedIn: closeBuilder.Build().Outputs[0]}

	contestBuilder, err := construct.Contest(p, headId, priorUTxO, 5, chainstate.NewUTxO(), types.ContestationPeriod(30*time.Second), now)
	if err != nil {
		t.Fatalf("Contest: %v", err)
	}
	produced := chainstate.UTxO{{TxID: types.Hash{19}, Index: 0}: contestBuilder.Build().Outputs[0]}

	obs, err := ObserveTx(headId, priorUTxO, []types.TxIn{closedIn}, produced)
	if err != nil {
		t.Fatalf("ObserveTx: %v", err)
	}
	if obs == nil || obs.Kind != event.KindContest {
		t.Fatalf("expected a Contest observation, got %+v", obs)
	}
	if obs.SnapshotNumber != 5 {
		t.Errorf("SnapshotNumber = %d, want 5", obs.SnapshotNumber)
	}
}

func TestObserveTx_SuppressesStaleContest(t *testing.T) {
	headId := types.HeadId{20}
	addr := crypto.AddressFromVerificationKey(testParty(t).VerificationKey)
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	p := construct.Params{HeadAddress: addr, MaxGraceTime: types.ContestationPeriod(200 * time.Second)}

	closedIn := types.TxIn{TxID: types.Hash{21}, Index: 0}
	headUTxO := chainstate.UTxO{
		{TxID: types.Hash{22}, Index: 0}: {Address: addr, Value: 1000, Datum: types.Datum{Tag: types.DatumHead}},
	}
	closeBuilder, err := construct.Close(p, headId, headUTxO, 5, chainstate.NewUTxO(), types.ContestationPeriod(30*time.Second), now)
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	priorUTxO := chainstate.UTxO{closedIn: closeBuilder.Build().Outputs[0]}

	// A stale re-submission of a snapshot #4 closed output after #5 was
	// already observed must not be reported as a new transition.
	staleBuilder, err := construct.Close(p, headId, headUTxO, 4, chainstate.NewUTxO(), types.ContestationPeriod(30*time.Second), now)
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	produced := chainstate.UTxO{{TxID: types.Hash{23}, Index: 0}: staleBuilder.Build().Outputs[0]}

	obs, err := ObserveTx(headId, priorUTxO, []types.TxIn{closedIn}, produced)
	if err != nil {
		t.Fatalf("ObserveTx: %v", err)
	}
	if obs != nil {
		t.Fatalf("expected no observation for a stale snapshot, got %+v", obs)
	}
}

func TestObserveTx_RecognizesAbortByConsumedInitials(t *testing.T) {
	headId := types.HeadId{5}
	party := testParty(t)
	addr := crypto.AddressFromVerificationKey(party.VerificationKey)

	initialIn := types.TxIn{TxID: types.Hash{6}, Index: 0}
	priorUTxO := chainstate.UTxO{
		initialIn: {Address: addr, Value: 100, Datum: types.Datum{Tag: types.DatumInitial}},
	}
	produced := chainstate.UTxO{
		{TxID: types.Hash{7}, Index: 0}: {Address: addr, Value: 100},
	}

	obs := observeAbortOrFanout(headId, priorUTxO, []types.TxIn{initialIn}, produced)
	if obs == nil || obs.Kind != event.KindAbort {
		t.Fatalf("expected an Abort observation, got %+v", obs)
	}
}

func TestObserveTx_RecognizesFanoutByConsumedThread(t *testing.T) {
	headId := types.HeadId{6}
	party := testParty(t)
	addr := crypto.AddressFromVerificationKey(party.VerificationKey)

	threadIn := types.TxIn{TxID: types.Hash{8}, Index: 0}
	priorUTxO := chainstate.UTxO{
		threadIn: {Address: addr, Value: 1000, Datum: types.Datum{Tag: types.DatumClosed}},
	}
	produced := chainstate.UTxO{
		{TxID: types.Hash{9}, Index: 0}:  {Address: addr, Value: 400},
		{TxID: types.Hash{10}, Index: 0}: {Address: addr, Value: 600},
	}

	obs := observeAbortOrFanout(headId, priorUTxO, []types.TxIn{threadIn}, produced)
	if obs == nil || obs.Kind != event.KindFanout {
		t.Fatalf("expected a Fanout observation, got %+v", obs)
	}
}

func TestObserveTx_NoObservationForUnrelatedTx(t *testing.T) {
	headId := types.HeadId{9}
	addr := crypto.AddressFromVerificationKey(testParty(t).VerificationKey)
	produced := chainstate.UTxO{
		{TxID: types.Hash{1}, Index: 0}: {Address: addr, Value: 100},
	}
	obs, err := ObserveTx(headId, chainstate.NewUTxO(), nil, produced)
	if err != nil {
		t.Fatalf("ObserveTx: %v", err)
	}
	if obs != nil {
		t.Fatalf("expected no observation for a plain output, got %+v", obs)
	}
}
