package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civisuite/vitals-ledger/internal/models"
	appErrors "github.com/civisuite/vitals-ledger/pkg/errors"
)

func putRegistrar(t *testing.T, l *Ledger, account string) {
	t.Helper()
	_, err := l.Execute(Target{}, func(txn *Txn) error {
		txn.Registrars().Put(account, &models.Registrar{Account: account, Active: true, AddedAt: time.Now().UTC()})
		txn.Emit(models.Event{Kind: models.EventRegistrarAdded, RecordIDs: []string{account}, Actor: "root"})
		return nil
	})
	require.NoError(t, err)
}

func TestExecuteAssignsSequentialNumbers(t *testing.T) {
	l := New(0)

	putRegistrar(t, l, "acc-1")
	putRegistrar(t, l, "acc-2")

	events := l.Events(0, 10)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(1), events[0].Seq)
	assert.Equal(t, uint64(2), events[1].Seq)
}

func TestExecuteRejectionDiscardsStagedWrites(t *testing.T) {
	l := New(0)

	_, err := l.Execute(Target{}, func(txn *Txn) error {
		txn.Registrars().Put("acc-1", &models.Registrar{Account: "acc-1", Active: true})
		txn.Emit(models.Event{Kind: models.EventRegistrarAdded, RecordIDs: []string{"acc-1"}})
		return errors.New("validation failed")
	})
	require.Error(t, err)

	err = l.View(SourceProduction, func(txn *Txn) error {
		assert.False(t, txn.Registrars().Has("acc-1"))
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, l.Events(0, 10))
}

func TestExecutePartialCascadeNeverCommits(t *testing.T) {
	l := New(0)
	putRegistrar(t, l, "reg-1")

	// Stage several writes then fail: none of them may land.
	_, err := l.Execute(Target{}, func(txn *Txn) error {
		txn.Districts().Put("d1", &models.District{ID: "d1", Name: "First"})
		txn.RosterAdd("d1", "acc-9")
		txn.StageBirthLink("acc-9", "bc_feed")
		return errors.New("late failure")
	})
	require.Error(t, err)

	err = l.View(SourceProduction, func(txn *Txn) error {
		assert.False(t, txn.Districts().Has("d1"))
		assert.False(t, txn.RosterHas("d1", "acc-9"))
		_, linked := txn.BirthLink("acc-9")
		assert.False(t, linked)
		return nil
	})
	require.NoError(t, err)
}

func TestEventsAfterAndLimit(t *testing.T) {
	l := New(0)
	for i := 0; i < 5; i++ {
		putRegistrar(t, l, DeriveID("ml", uint64(i), "acc"))
	}

	events := l.Events(2, 2)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(3), events[0].Seq)
	assert.Equal(t, uint64(4), events[1].Seq)
}

func TestJournalCapDropsOldest(t *testing.T) {
	l := New(3)
	for i := 0; i < 5; i++ {
		putRegistrar(t, l, DeriveID("ml", uint64(i), "acc"))
	}

	events := l.Events(0, 10)
	require.Len(t, events, 3)
	assert.Equal(t, uint64(3), events[0].Seq)
	assert.Equal(t, uint64(5), events[2].Seq)
}

func TestSimulationIsolatesProduction(t *testing.T) {
	l := New(0)
	putRegistrar(t, l, "reg-1")

	require.NoError(t, l.StartSimulation(&models.SimulationSession{
		ID:                "sim-1",
		Scenario:          models.ScenarioDisaster,
		AffectedDistricts: []string{"d1"},
	}))

	// Targeting an affected district routes the write into the snapshot.
	_, err := l.Execute(TargetDistricts("d1"), func(txn *Txn) error {
		txn.Districts().Put("d1", &models.District{ID: "d1", Name: "Flooded"})
		txn.Emit(models.Event{Kind: models.EventDistrictAdded, RecordIDs: []string{"d1"}})
		return nil
	})
	require.NoError(t, err)

	err = l.View(SourceProduction, func(txn *Txn) error {
		assert.False(t, txn.Districts().Has("d1"))
		return nil
	})
	require.NoError(t, err)

	err = l.View(SourceSimulation, func(txn *Txn) error {
		assert.True(t, txn.Districts().Has("d1"))
		return nil
	})
	require.NoError(t, err)

	// Simulation events never reach the production journal.
	assert.Len(t, l.Events(0, 10), 1)

	session := l.RunningSimulation()
	require.NotNil(t, session)
	assert.Equal(t, 1, session.Stats.OperationsApplied)
	assert.Equal(t, 1, session.Stats.ByEventKind[string(models.EventDistrictAdded)])
}

func TestUnaffectedTargetsHitProductionDuringSimulation(t *testing.T) {
	l := New(0)
	require.NoError(t, l.StartSimulation(&models.SimulationSession{
		ID:                "sim-1",
		AffectedDistricts: []string{"d1"},
	}))

	_, err := l.Execute(TargetDistricts("d2"), func(txn *Txn) error {
		txn.Districts().Put("d2", &models.District{ID: "d2", Name: "Elsewhere"})
		txn.Emit(models.Event{Kind: models.EventDistrictAdded, RecordIDs: []string{"d2"}})
		return nil
	})
	require.NoError(t, err)

	err = l.View(SourceProduction, func(txn *Txn) error {
		assert.True(t, txn.Districts().Has("d2"))
		return nil
	})
	require.NoError(t, err)
}

func TestNestedSimulationRejected(t *testing.T) {
	l := New(0)
	require.NoError(t, l.StartSimulation(&models.SimulationSession{ID: "sim-1"}))

	err := l.StartSimulation(&models.SimulationSession{ID: "sim-2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSimulationRunning.Code, appErrors.FromError(err).Code)
}

func TestEndSimulationDiscardsSnapshot(t *testing.T) {
	l := New(0)
	require.NoError(t, l.StartSimulation(&models.SimulationSession{
		ID:                "sim-1",
		AffectedDistricts: []string{"d1"},
	}))

	_, err := l.Execute(TargetDistricts("d1"), func(txn *Txn) error {
		txn.Districts().Put("d1", &models.District{ID: "d1"})
		return nil
	})
	require.NoError(t, err)

	endedAt := time.Now().UTC()
	session, err := l.EndSimulation(endedAt)
	require.NoError(t, err)
	require.NotNil(t, session.EndedAt)
	assert.Equal(t, endedAt, *session.EndedAt)

	err = l.View(SourceProduction, func(txn *Txn) error {
		assert.False(t, txn.Districts().Has("d1"))
		return nil
	})
	require.NoError(t, err)

	assert.Nil(t, l.RunningSimulation())
	err = l.View(SourceSimulation, func(*Txn) error { return nil })
	require.Error(t, err)
}

func TestPromoteSimulationReplacesProduction(t *testing.T) {
	l := New(0)
	putRegistrar(t, l, "reg-1")

	require.NoError(t, l.StartSimulation(&models.SimulationSession{
		ID:                "sim-1",
		AffectedDistricts: []string{"d1"},
	}))
	_, err := l.Execute(TargetDistricts("d1"), func(txn *Txn) error {
		txn.Districts().Put("d1", &models.District{ID: "d1"})
		txn.Emit(models.Event{Kind: models.EventDistrictAdded, RecordIDs: []string{"d1"}})
		return nil
	})
	require.NoError(t, err)

	_, err = l.PromoteSimulation(time.Now().UTC())
	require.NoError(t, err)

	err = l.View(SourceProduction, func(txn *Txn) error {
		assert.True(t, txn.Districts().Has("d1"))
		assert.True(t, txn.Registrars().Has("reg-1"))
		return nil
	})
	require.NoError(t, err)

	// Sequence numbering stays monotonic past the promoted snapshot.
	events, err := l.Execute(Target{}, func(txn *Txn) error {
		txn.Emit(models.Event{Kind: models.EventRegistrarAdded, RecordIDs: []string{"reg-2"}})
		return nil
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(3), events[0].Seq)
}

func TestTableGetReturnsCopies(t *testing.T) {
	l := New(0)
	_, err := l.Execute(Target{}, func(txn *Txn) error {
		txn.Births().Put("bc_1", &models.BirthCertificate{ID: "bc_1", Parents: []string{"p1", "p2"}})
		return nil
	})
	require.NoError(t, err)

	err = l.View(SourceProduction, func(txn *Txn) error {
		first, ok := txn.Births().Get("bc_1")
		require.True(t, ok)
		first.Parents[0] = "mutated"

		second, ok := txn.Births().Get("bc_1")
		require.True(t, ok)
		assert.Equal(t, "p1", second.Parents[0])
		return nil
	})
	require.NoError(t, err)
}

func TestTableKeysSortedWithStagedWrites(t *testing.T) {
	state := NewState()
	txn := newTxn(state)
	txn.Districts().Put("d3", &models.District{ID: "d3"})
	txn.Districts().Put("d1", &models.District{ID: "d1"})
	txn.commit()

	txn = newTxn(state)
	txn.Districts().Put("d2", &models.District{ID: "d2"})
	assert.Equal(t, []string{"d1", "d2", "d3"}, txn.Districts().Keys())
}

func TestDeriveIDDeterministic(t *testing.T) {
	a := DeriveID(KindMarriage, 0, "alice", "bob")
	b := DeriveID(KindMarriage, 0, "alice", "bob")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, DeriveID(KindMarriage, 1, "alice", "bob"))
	assert.NotEqual(t, a, DeriveID(KindBirth, 0, "alice", "bob"))

	// Delimited hashing keeps adjacent fields from bleeding together.
	assert.NotEqual(t, DeriveID(KindBirth, 0, "ab", "c"), DeriveID(KindBirth, 0, "a", "bc"))
}

func TestPairKeyCanonical(t *testing.T) {
	assert.Equal(t, PairKey("bob", "alice"), PairKey("alice", "bob"))
	assert.Equal(t, "alice|bob", PairKey("bob", "alice"))
}

func TestCloneIsDeep(t *testing.T) {
	state := NewState()
	txn := newTxn(state)
	txn.Districts().Put("d1", &models.District{ID: "d1", Name: "Original"})
	txn.RosterAdd("d1", "acc-1")
	txn.commit()

	clone := state.Clone()
	txn = newTxn(clone)
	district, ok := txn.Districts().Get("d1")
	require.True(t, ok)
	district.Name = "Changed"
	txn.Districts().Put("d1", district)
	txn.RosterRemove("d1", "acc-1")
	txn.commit()

	original := newTxn(state)
	district, ok = original.Districts().Get("d1")
	require.True(t, ok)
	assert.Equal(t, "Original", district.Name)
	assert.True(t, original.RosterHas("d1", "acc-1"))
}
